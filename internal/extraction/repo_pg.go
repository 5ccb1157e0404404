package extraction

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new extraction job.
func (r *PGRepo) Create(ctx context.Context, job Job) error {
	const query = `
INSERT INTO extraction_jobs (id, file_id, case_id, status, created_at)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.DB.ExecContext(ctx, query, job.ID, job.FileID, job.CaseID, job.Status, job.CreatedAt)
	return err
}

// GetByID fetches a job by id.
func (r *PGRepo) GetByID(ctx context.Context, jobID string) (Job, error) {
	const query = `
SELECT id, file_id, case_id, status, error_code, error_message, retryable, started_at, completed_at, created_at
FROM extraction_jobs
WHERE id = $1`
	var job Job
	var errorCode, errorMessage sql.NullString
	var retryable sql.NullBool
	var startedAt, completedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, jobID).Scan(
		&job.ID,
		&job.FileID,
		&job.CaseID,
		&job.Status,
		&errorCode,
		&errorMessage,
		&retryable,
		&startedAt,
		&completedAt,
		&job.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, err
	}
	job.ErrorCode = errorCode.String
	job.ErrorMessage = errorMessage.String
	if retryable.Valid {
		v := retryable.Bool
		job.Retryable = &v
	}
	if startedAt.Valid {
		t := startedAt.Time
		job.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		job.CompletedAt = &t
	}
	return job, nil
}

// MarkProcessing transitions a job to processing. Completed jobs are left
// untouched and reported as ErrAlreadyFinished so a redelivered queue
// message acks instead of rerunning finished work. Jobs stuck in
// processing or failed may be retaken.
func (r *PGRepo) MarkProcessing(ctx context.Context, jobID string, startedAt time.Time) error {
	const query = `
UPDATE extraction_jobs
SET status = $2, started_at = $3
WHERE id = $1 AND status <> $4`
	res, err := r.DB.ExecContext(ctx, query, jobID, StatusProcessing, startedAt, StatusCompleted)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		var status string
		err := r.DB.QueryRowContext(ctx, `SELECT status FROM extraction_jobs WHERE id = $1`, jobID).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return ErrAlreadyFinished
	}
	return nil
}

// MarkCompleted transitions a job to completed.
func (r *PGRepo) MarkCompleted(ctx context.Context, jobID string, completedAt time.Time) error {
	const query = `
UPDATE extraction_jobs
SET status = $2, completed_at = $3
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, jobID, StatusCompleted, completedAt)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkFailed transitions a job to failed with its classified error.
func (r *PGRepo) MarkFailed(ctx context.Context, jobID, code, message string, retryable bool, completedAt time.Time) error {
	const query = `
UPDATE extraction_jobs
SET status = $2, error_code = $3, error_message = $4, retryable = $5, completed_at = $6
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, jobID, StatusFailed, code, message, retryable, completedAt)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
