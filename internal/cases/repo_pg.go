package cases

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo using Postgres. Notes and important dates live in
// JSONB columns; the cascade delete spans three tables in one transaction.
type PGRepo struct {
	DB *sql.DB
}

const caseColumns = `id, lawyer_id, client_id, title, description, case_number, status, priority, court_name, judge_name, next_hearing_date, notes, important_dates, created_at, updated_at`

// Create inserts a new case folder.
func (r *PGRepo) Create(ctx context.Context, cf CaseFolder) error {
	const query = `
INSERT INTO case_folders (` + caseColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	notes, dates, err := marshalJSONColumns(cf)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(
		ctx,
		query,
		cf.ID,
		cf.LawyerID,
		cf.ClientID,
		cf.Title,
		nullString(cf.Description),
		nullString(cf.CaseNumber),
		cf.Status,
		cf.Priority,
		nullString(cf.CourtName),
		nullString(cf.JudgeName),
		nullTime(cf.NextHearingDate),
		notes,
		dates,
		cf.CreatedAt,
		cf.UpdatedAt,
	)
	return err
}

// GetByID fetches a case folder.
func (r *PGRepo) GetByID(ctx context.Context, caseID string) (CaseFolder, error) {
	const query = `
SELECT ` + caseColumns + `
FROM case_folders
WHERE id = $1`
	cf, err := scanCase(r.DB.QueryRowContext(ctx, query, caseID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CaseFolder{}, ErrNotFound
		}
		return CaseFolder{}, err
	}
	return cf, nil
}

// ListByUser lists cases where the user is either the lawyer or the client,
// newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]CaseFolder, error) {
	const query = `
SELECT ` + caseColumns + `
FROM case_folders
WHERE lawyer_id = $1 OR client_id = $1
ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CaseFolder
	for rows.Next() {
		cf, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cf)
	}
	return out, rows.Err()
}

// Update rewrites the mutable fields of a case folder.
func (r *PGRepo) Update(ctx context.Context, cf CaseFolder) error {
	const query = `
UPDATE case_folders
SET title = $2,
    description = $3,
    case_number = $4,
    status = $5,
    priority = $6,
    court_name = $7,
    judge_name = $8,
    next_hearing_date = $9,
    notes = $10,
    important_dates = $11,
    updated_at = $12
WHERE id = $1`

	notes, dates, err := marshalJSONColumns(cf)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(
		ctx,
		query,
		cf.ID,
		cf.Title,
		nullString(cf.Description),
		nullString(cf.CaseNumber),
		cf.Status,
		cf.Priority,
		nullString(cf.CourtName),
		nullString(cf.JudgeName),
		nullTime(cf.NextHearingDate),
		notes,
		dates,
		cf.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCascade removes the metadata records, file entries and the case
// folder inside one transaction. Blob deletion happens outside the
// transaction; the returned storage keys tell the caller what to remove.
func (r *PGRepo) DeleteCascade(ctx context.Context, caseID string) ([]string, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT storage_key FROM file_entries WHERE case_id = $1`, caseID)
	if err != nil {
		return nil, err
	}
	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			rows.Close()
			return nil, err
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if _, err := tx.ExecContext(ctx, `DELETE FROM extracted_metadata WHERE case_id = $1`, caseID); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM file_entries WHERE case_id = $1`, caseID); err != nil {
		return nil, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM case_folders WHERE id = $1`, caseID)
	if err != nil {
		return nil, err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return keys, nil
}

// BackfillSummary fills case number, title and next hearing date only where
// the case has no value yet.
func (r *PGRepo) BackfillSummary(ctx context.Context, caseID string, fields SummaryFields) error {
	const query = `
UPDATE case_folders
SET case_number = COALESCE(NULLIF(case_number, ''), NULLIF($2, '')),
    title = COALESCE(NULLIF(title, ''), NULLIF($3, ''), title),
    next_hearing_date = COALESCE(next_hearing_date, $4),
    updated_at = $5
WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, query, caseID, fields.CaseNumber, fields.Title, nullTime(fields.NextHearingDate), time.Now().UTC())
	return err
}

// AppendImportantDates appends entries to the JSONB calendar column.
func (r *PGRepo) AppendImportantDates(ctx context.Context, caseID string, dates []ImportantDate) error {
	if len(dates) == 0 {
		return nil
	}
	payload, err := json.Marshal(dates)
	if err != nil {
		return fmt.Errorf("marshal important dates: %w", err)
	}
	const query = `
UPDATE case_folders
SET important_dates = important_dates || $2::jsonb,
    updated_at = $3
WHERE id = $1`
	_, err = r.DB.ExecContext(ctx, query, caseID, payload, time.Now().UTC())
	return err
}

func marshalJSONColumns(cf CaseFolder) ([]byte, []byte, error) {
	if cf.Notes == nil {
		cf.Notes = []Note{}
	}
	if cf.ImportantDates == nil {
		cf.ImportantDates = []ImportantDate{}
	}
	notes, err := json.Marshal(cf.Notes)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal notes: %w", err)
	}
	dates, err := json.Marshal(cf.ImportantDates)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal important dates: %w", err)
	}
	return notes, dates, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCase(row rowScanner) (CaseFolder, error) {
	var cf CaseFolder
	var description, caseNumber, courtName, judgeName sql.NullString
	var nextHearing sql.NullTime
	var notes, dates []byte
	err := row.Scan(
		&cf.ID,
		&cf.LawyerID,
		&cf.ClientID,
		&cf.Title,
		&description,
		&caseNumber,
		&cf.Status,
		&cf.Priority,
		&courtName,
		&judgeName,
		&nextHearing,
		&notes,
		&dates,
		&cf.CreatedAt,
		&cf.UpdatedAt,
	)
	if err != nil {
		return CaseFolder{}, err
	}
	cf.Description = description.String
	cf.CaseNumber = caseNumber.String
	cf.CourtName = courtName.String
	cf.JudgeName = judgeName.String
	if nextHearing.Valid {
		t := nextHearing.Time
		cf.NextHearingDate = &t
	}
	if len(notes) > 0 {
		if err := json.Unmarshal(notes, &cf.Notes); err != nil {
			return CaseFolder{}, fmt.Errorf("unmarshal notes: %w", err)
		}
	}
	if len(dates) > 0 {
		if err := json.Unmarshal(dates, &cf.ImportantDates); err != nil {
			return CaseFolder{}, fmt.Errorf("unmarshal important dates: %w", err)
		}
	}
	if cf.Notes == nil {
		cf.Notes = []Note{}
	}
	if cf.ImportantDates == nil {
		cf.ImportantDates = []ImportantDate{}
	}
	return cf, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
