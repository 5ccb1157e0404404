package extraction

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu    sync.RWMutex
	items map[string]Job
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: make(map[string]Job)}
}

// Create stores a new job.
func (r *MemoryRepo) Create(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[job.ID] = job
	return nil
}

// GetByID returns a job by id.
func (r *MemoryRepo) GetByID(ctx context.Context, jobID string) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.items[jobID]
	if !ok {
		return Job{}, ErrNotFound
	}
	return job, nil
}

// MarkProcessing transitions a job to processing. Completed jobs stay
// completed and report ErrAlreadyFinished.
func (r *MemoryRepo) MarkProcessing(ctx context.Context, jobID string, startedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.items[jobID]
	if !ok {
		return ErrNotFound
	}
	if job.Status == StatusCompleted {
		return ErrAlreadyFinished
	}
	job.Status = StatusProcessing
	t := startedAt
	job.StartedAt = &t
	r.items[jobID] = job
	return nil
}

// MarkCompleted transitions a job to completed.
func (r *MemoryRepo) MarkCompleted(ctx context.Context, jobID string, completedAt time.Time) error {
	return r.update(ctx, jobID, func(job *Job) {
		job.Status = StatusCompleted
		t := completedAt
		job.CompletedAt = &t
	})
}

// MarkFailed transitions a job to failed.
func (r *MemoryRepo) MarkFailed(ctx context.Context, jobID, code, message string, retryable bool, completedAt time.Time) error {
	return r.update(ctx, jobID, func(job *Job) {
		job.Status = StatusFailed
		job.ErrorCode = code
		job.ErrorMessage = message
		v := retryable
		job.Retryable = &v
		t := completedAt
		job.CompletedAt = &t
	})
}

func (r *MemoryRepo) update(ctx context.Context, jobID string, apply func(*Job)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.items[jobID]
	if !ok {
		return ErrNotFound
	}
	apply(&job)
	r.items[jobID] = job
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
