package metadata

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no metadata record exists for a file.
var ErrNotFound = errors.New("metadata not found")

// Repo stores extraction results.
type Repo interface {
	Create(ctx context.Context, rec Record) error
	GetByFile(ctx context.Context, fileID string) (Record, error)
	DeleteByFile(ctx context.Context, fileID string) error
	DeleteByCase(ctx context.Context, caseID string) error
}
