package cases

import (
	"context"
	"sort"
	"sync"
	"time"
)

// FilePurger removes every file entry and metadata record belonging to a
// case and returns the storage keys of the purged blobs. The in-memory
// files repo implements it so the memory cascade mirrors the SQL one.
type FilePurger interface {
	PurgeCase(ctx context.Context, caseID string) ([]string, error)
}

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu     sync.RWMutex
	items  map[string]CaseFolder
	Purger FilePurger
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: make(map[string]CaseFolder)}
}

// Create stores a new case folder.
func (r *MemoryRepo) Create(ctx context.Context, cf CaseFolder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[cf.ID] = cf
	return nil
}

// GetByID returns a case folder by id.
func (r *MemoryRepo) GetByID(ctx context.Context, caseID string) (CaseFolder, error) {
	if err := ctx.Err(); err != nil {
		return CaseFolder{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	cf, ok := r.items[caseID]
	if !ok {
		return CaseFolder{}, ErrNotFound
	}
	return cf, nil
}

// ListByUser lists cases for a lawyer or client, newest first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]CaseFolder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []CaseFolder
	for _, cf := range r.items {
		if cf.AccessibleBy(userID) {
			out = append(out, cf)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Update replaces a stored case folder.
func (r *MemoryRepo) Update(ctx context.Context, cf CaseFolder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[cf.ID]; !ok {
		return ErrNotFound
	}
	r.items[cf.ID] = cf
	return nil
}

// DeleteCascade removes the case and, through the configured purger, its
// file entries and metadata. Returns the storage keys of removed blobs.
func (r *MemoryRepo) DeleteCascade(ctx context.Context, caseID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	if _, ok := r.items[caseID]; !ok {
		r.mu.Unlock()
		return nil, ErrNotFound
	}
	delete(r.items, caseID)
	r.mu.Unlock()

	if r.Purger == nil {
		return nil, nil
	}
	return r.Purger.PurgeCase(ctx, caseID)
}

// BackfillSummary fills case number, title and next hearing date only where
// the stored case has no value yet.
func (r *MemoryRepo) BackfillSummary(ctx context.Context, caseID string, fields SummaryFields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cf, ok := r.items[caseID]
	if !ok {
		return ErrNotFound
	}
	if cf.CaseNumber == "" && fields.CaseNumber != "" {
		cf.CaseNumber = fields.CaseNumber
	}
	if cf.Title == "" && fields.Title != "" {
		cf.Title = fields.Title
	}
	if cf.NextHearingDate == nil && fields.NextHearingDate != nil {
		t := *fields.NextHearingDate
		cf.NextHearingDate = &t
	}
	cf.UpdatedAt = time.Now().UTC()
	r.items[caseID] = cf
	return nil
}

// AppendImportantDates adds entries to the case calendar.
func (r *MemoryRepo) AppendImportantDates(ctx context.Context, caseID string, dates []ImportantDate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(dates) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cf, ok := r.items[caseID]
	if !ok {
		return ErrNotFound
	}
	cf.ImportantDates = append(cf.ImportantDates, dates...)
	cf.UpdatedAt = time.Now().UTC()
	r.items[caseID] = cf
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
