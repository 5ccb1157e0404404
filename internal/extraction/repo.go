package extraction

import (
	"context"
	"time"
)

// Repo stores extraction jobs.
type Repo interface {
	Create(ctx context.Context, job Job) error
	GetByID(ctx context.Context, jobID string) (Job, error)
	MarkProcessing(ctx context.Context, jobID string, startedAt time.Time) error
	MarkCompleted(ctx context.Context, jobID string, completedAt time.Time) error
	MarkFailed(ctx context.Context, jobID, code, message string, retryable bool, completedAt time.Time) error
}
