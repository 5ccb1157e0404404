package files

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a file entry does not exist.
var ErrNotFound = errors.New("file not found")

// Repo stores file entries.
type Repo interface {
	Create(ctx context.Context, fe FileEntry) error
	GetByID(ctx context.Context, caseID, fileID string) (FileEntry, error)
	ListByCase(ctx context.Context, caseID string) ([]FileEntry, error)
	Update(ctx context.Context, fe FileEntry) error

	// SetMetadataID links a file entry to its extracted metadata record.
	SetMetadataID(ctx context.Context, fileID, metadataID string) error

	// DeleteCascade removes the file entry and its metadata record in one
	// transaction and returns the deleted entry so the caller can remove
	// the blob afterwards.
	DeleteCascade(ctx context.Context, caseID, fileID string) (FileEntry, error)

	// ExistsByStorageKey reports whether any file entry references the
	// given blob. Used by the orphan sweep.
	ExistsByStorageKey(ctx context.Context, storageKey string) (bool, error)
}
