package metadata

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu     sync.RWMutex
	byFile map[string]Record
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byFile: make(map[string]Record)}
}

// Create stores a metadata record keyed by its owning file.
func (r *MemoryRepo) Create(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byFile[rec.FileID] = rec
	return nil
}

// GetByFile returns the metadata record owned by a file entry.
func (r *MemoryRepo) GetByFile(ctx context.Context, fileID string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byFile[fileID]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// DeleteByFile removes the metadata record of a file entry.
func (r *MemoryRepo) DeleteByFile(ctx context.Context, fileID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byFile, fileID)
	return nil
}

// DeleteByCase removes every metadata record of a case.
func (r *MemoryRepo) DeleteByCase(ctx context.Context, caseID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for fileID, rec := range r.byFile {
		if rec.CaseID == caseID {
			delete(r.byFile, fileID)
		}
	}
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
