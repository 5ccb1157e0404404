package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("user already exists")
)

// Repo defines persistence operations for users and lawyer-client links.
type Repo interface {
	Create(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Link(ctx context.Context, lawyerID, clientID string) error
	ListLinked(ctx context.Context, userID, role string) ([]User, error)
}
