package metadata

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres. The whole field set lives in one
// JSONB payload column so the record round-trips exactly as extracted.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a metadata record. A file carries at most one record, so
// on conflict the new extraction replaces the old record wholesale; the
// caller relinks file_entries.metadata_id to the new id right after.
func (r *PGRepo) Create(ctx context.Context, rec Record) error {
	payload, err := json.Marshal(rec.Fields)
	if err != nil {
		return fmt.Errorf("marshal metadata payload: %w", err)
	}
	const query = `
INSERT INTO extracted_metadata (id, file_id, case_id, payload, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)
ON CONFLICT (file_id) DO UPDATE
SET id = EXCLUDED.id, payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`
	_, err = r.DB.ExecContext(ctx, query, rec.ID, rec.FileID, rec.CaseID, payload, rec.CreatedAt)
	return err
}

// GetByFile returns the metadata record owned by a file entry.
func (r *PGRepo) GetByFile(ctx context.Context, fileID string) (Record, error) {
	const query = `
SELECT id, file_id, case_id, payload, created_at
FROM extracted_metadata
WHERE file_id = $1`
	var rec Record
	var payload []byte
	err := r.DB.QueryRowContext(ctx, query, fileID).Scan(
		&rec.ID,
		&rec.FileID,
		&rec.CaseID,
		&payload,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	if err := json.Unmarshal(payload, &rec.Fields); err != nil {
		return Record{}, fmt.Errorf("unmarshal metadata payload: %w", err)
	}
	return rec, nil
}

// DeleteByFile removes the metadata record of a file entry.
func (r *PGRepo) DeleteByFile(ctx context.Context, fileID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM extracted_metadata WHERE file_id = $1`, fileID)
	return err
}

// DeleteByCase removes every metadata record of a case.
func (r *PGRepo) DeleteByCase(ctx context.Context, caseID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM extracted_metadata WHERE case_id = $1`, caseID)
	return err
}

var _ Repo = (*PGRepo)(nil)
