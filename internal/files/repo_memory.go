package files

import (
	"context"
	"sort"
	"sync"
)

// MetadataPurger removes extracted metadata records when file entries go
// away. The in-memory metadata repo implements it.
type MetadataPurger interface {
	DeleteByFile(ctx context.Context, fileID string) error
	DeleteByCase(ctx context.Context, caseID string) error
}

// MemoryRepo is an in-memory implementation of Repo. It also implements
// the case-level purge used by the in-memory case repo's cascade.
type MemoryRepo struct {
	mu       sync.RWMutex
	items    map[string]FileEntry
	Metadata MetadataPurger
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: make(map[string]FileEntry)}
}

// Create stores a new file entry.
func (r *MemoryRepo) Create(ctx context.Context, fe FileEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[fe.ID] = fe
	return nil
}

// GetByID returns a file entry scoped to its case.
func (r *MemoryRepo) GetByID(ctx context.Context, caseID, fileID string) (FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return FileEntry{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	fe, ok := r.items[fileID]
	if !ok || fe.CaseID != caseID {
		return FileEntry{}, ErrNotFound
	}
	return fe, nil
}

// ListByCase lists file entries of a case, newest first.
func (r *MemoryRepo) ListByCase(ctx context.Context, caseID string) ([]FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []FileEntry
	for _, fe := range r.items {
		if fe.CaseID == caseID {
			out = append(out, fe)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadDate.After(out[j].UploadDate) })
	return out, nil
}

// Update replaces a stored file entry.
func (r *MemoryRepo) Update(ctx context.Context, fe FileEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[fe.ID]; !ok {
		return ErrNotFound
	}
	r.items[fe.ID] = fe
	return nil
}

// SetMetadataID links a file entry to its metadata record.
func (r *MemoryRepo) SetMetadataID(ctx context.Context, fileID, metadataID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fe, ok := r.items[fileID]
	if !ok {
		return ErrNotFound
	}
	fe.MetadataID = metadataID
	r.items[fileID] = fe
	return nil
}

// DeleteCascade removes the file entry and its metadata record.
func (r *MemoryRepo) DeleteCascade(ctx context.Context, caseID, fileID string) (FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return FileEntry{}, err
	}
	r.mu.Lock()
	fe, ok := r.items[fileID]
	if !ok || fe.CaseID != caseID {
		r.mu.Unlock()
		return FileEntry{}, ErrNotFound
	}
	delete(r.items, fileID)
	r.mu.Unlock()

	if r.Metadata != nil {
		if err := r.Metadata.DeleteByFile(ctx, fileID); err != nil {
			return FileEntry{}, err
		}
	}
	return fe, nil
}

// PurgeCase removes every file entry of a case together with the metadata
// records, returning the storage keys of the removed blobs.
func (r *MemoryRepo) PurgeCase(ctx context.Context, caseID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	var keys []string
	for id, fe := range r.items {
		if fe.CaseID == caseID {
			keys = append(keys, fe.StorageKey)
			delete(r.items, id)
		}
	}
	r.mu.Unlock()

	if r.Metadata != nil {
		if err := r.Metadata.DeleteByCase(ctx, caseID); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// ExistsByStorageKey reports whether a blob is still referenced.
func (r *MemoryRepo) ExistsByStorageKey(ctx context.Context, storageKey string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, fe := range r.items {
		if fe.StorageKey == storageKey {
			return true, nil
		}
	}
	return false, nil
}

var _ Repo = (*MemoryRepo)(nil)
