package files

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const fileColumns = `id, case_id, uploaded_by, storage_key, original_name, content_type, size_bytes, page_count, metadata_id, is_shared_with_client, comments, upload_date`

// Create inserts a new file entry.
func (r *PGRepo) Create(ctx context.Context, fe FileEntry) error {
	const query = `
INSERT INTO file_entries (` + fileColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	comments, err := marshalComments(fe.Comments)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(
		ctx,
		query,
		fe.ID,
		fe.CaseID,
		fe.UploadedBy,
		fe.StorageKey,
		fe.OriginalName,
		fe.ContentType,
		fe.SizeBytes,
		nullInt(fe.PageCount),
		nullStr(fe.MetadataID),
		fe.IsSharedWithClient,
		comments,
		fe.UploadDate,
	)
	return err
}

// GetByID fetches a file entry scoped to its case.
func (r *PGRepo) GetByID(ctx context.Context, caseID, fileID string) (FileEntry, error) {
	const query = `
SELECT ` + fileColumns + `
FROM file_entries
WHERE case_id = $1 AND id = $2`
	fe, err := scanFile(r.DB.QueryRowContext(ctx, query, caseID, fileID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return FileEntry{}, ErrNotFound
		}
		return FileEntry{}, err
	}
	return fe, nil
}

// ListByCase lists file entries of a case, newest first.
func (r *PGRepo) ListByCase(ctx context.Context, caseID string) ([]FileEntry, error) {
	const query = `
SELECT ` + fileColumns + `
FROM file_entries
WHERE case_id = $1
ORDER BY upload_date DESC`

	rows, err := r.DB.QueryContext(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FileEntry
	for rows.Next() {
		fe, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, fe)
	}
	return out, rows.Err()
}

// Update rewrites the mutable fields of a file entry.
func (r *PGRepo) Update(ctx context.Context, fe FileEntry) error {
	const query = `
UPDATE file_entries
SET is_shared_with_client = $2,
    comments = $3
WHERE id = $1`
	comments, err := marshalComments(fe.Comments)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query, fe.ID, fe.IsSharedWithClient, comments)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetMetadataID links a file entry to its metadata record.
func (r *PGRepo) SetMetadataID(ctx context.Context, fileID, metadataID string) error {
	const query = `
UPDATE file_entries
SET metadata_id = $2
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, fileID, metadataID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCascade removes the metadata record and the file entry in one
// transaction. Blob removal is the caller's concern.
func (r *PGRepo) DeleteCascade(ctx context.Context, caseID, fileID string) (FileEntry, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return FileEntry{}, err
	}
	defer tx.Rollback()

	const query = `
SELECT ` + fileColumns + `
FROM file_entries
WHERE case_id = $1 AND id = $2`
	fe, err := scanFile(tx.QueryRowContext(ctx, query, caseID, fileID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return FileEntry{}, ErrNotFound
		}
		return FileEntry{}, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM extracted_metadata WHERE file_id = $1`, fileID); err != nil {
		return FileEntry{}, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM file_entries WHERE id = $1`, fileID); err != nil {
		return FileEntry{}, err
	}
	if err := tx.Commit(); err != nil {
		return FileEntry{}, err
	}
	return fe, nil
}

// ExistsByStorageKey reports whether a blob is still referenced.
func (r *PGRepo) ExistsByStorageKey(ctx context.Context, storageKey string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM file_entries WHERE storage_key = $1)`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, storageKey).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func marshalComments(comments []Comment) ([]byte, error) {
	if comments == nil {
		comments = []Comment{}
	}
	out, err := json.Marshal(comments)
	if err != nil {
		return nil, fmt.Errorf("marshal comments: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (FileEntry, error) {
	var fe FileEntry
	var pageCount sql.NullInt64
	var metadataID sql.NullString
	var comments []byte
	err := row.Scan(
		&fe.ID,
		&fe.CaseID,
		&fe.UploadedBy,
		&fe.StorageKey,
		&fe.OriginalName,
		&fe.ContentType,
		&fe.SizeBytes,
		&pageCount,
		&metadataID,
		&fe.IsSharedWithClient,
		&comments,
		&fe.UploadDate,
	)
	if err != nil {
		return FileEntry{}, err
	}
	if pageCount.Valid {
		fe.PageCount = int(pageCount.Int64)
	}
	fe.MetadataID = metadataID.String
	if len(comments) > 0 {
		if err := json.Unmarshal(comments, &fe.Comments); err != nil {
			return FileEntry{}, fmt.Errorf("unmarshal comments: %w", err)
		}
	}
	if fe.Comments == nil {
		fe.Comments = []Comment{}
	}
	return fe, nil
}

func nullInt(v int) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(v), Valid: true}
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
