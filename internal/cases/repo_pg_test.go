package cases

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoDeleteCascadeRunsInOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	caseID := "case-1"

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT storage_key FROM file_entries").
		WithArgs(caseID).
		WillReturnRows(sqlmock.NewRows([]string{"storage_key"}).
			AddRow("abc/one.pdf").
			AddRow("abc/two.pdf"))
	mock.ExpectExec("DELETE FROM extracted_metadata").
		WithArgs(caseID).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM file_entries").
		WithArgs(caseID).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM case_folders").
		WithArgs(caseID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	keys, err := repo.DeleteCascade(context.Background(), caseID)
	if err != nil {
		t.Fatalf("DeleteCascade: %v", err)
	}
	if len(keys) != 2 || keys[0] != "abc/one.pdf" || keys[1] != "abc/two.pdf" {
		t.Fatalf("unexpected storage keys: %v", keys)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoDeleteCascadeMissingCaseRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	caseID := "missing"

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT storage_key FROM file_entries").
		WithArgs(caseID).
		WillReturnRows(sqlmock.NewRows([]string{"storage_key"}))
	mock.ExpectExec("DELETE FROM extracted_metadata").
		WithArgs(caseID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM file_entries").
		WithArgs(caseID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM case_folders").
		WithArgs(caseID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err = repo.DeleteCascade(context.Background(), caseID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoAppendImportantDatesNoopOnEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	if err := repo.AppendImportantDates(context.Background(), "case-1", nil); err != nil {
		t.Fatalf("AppendImportantDates: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
