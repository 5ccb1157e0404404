package users

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu      sync.RWMutex
	byID    map[string]User
	byEmail map[string]string // email -> id
	links   map[string]map[string]struct{} // lawyerID -> clientIDs
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:    make(map[string]User),
		byEmail: make(map[string]string),
		links:   make(map[string]map[string]struct{}),
	}
}

// Create stores a new user.
func (r *MemoryRepo) Create(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[user.Email]; exists {
		return ErrEmailTaken
	}
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user.ID
	return nil
}

// GetByID returns a user by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, userID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

// GetByEmail returns a user by email.
func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return User{}, ErrNotFound
	}
	return r.byID[id], nil
}

// Link records a lawyer-client association.
func (r *MemoryRepo) Link(ctx context.Context, lawyerID, clientID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.links[lawyerID] == nil {
		r.links[lawyerID] = make(map[string]struct{})
	}
	r.links[lawyerID][clientID] = struct{}{}
	return nil
}

// ListLinked returns the counterpart users linked to the given user.
func (r *MemoryRepo) ListLinked(ctx context.Context, userID, role string) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []User
	if role == RoleClient {
		for lawyerID, clients := range r.links {
			if _, ok := clients[userID]; ok {
				if lawyer, exists := r.byID[lawyerID]; exists {
					out = append(out, lawyer)
				}
			}
		}
	} else {
		for clientID := range r.links[userID] {
			if client, exists := r.byID[clientID]; exists {
				out = append(out, client)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
