package object

import (
	"context"
	"io"
)

// ObjectStore defines the contract for saving and retrieving binary objects.
//
// Delete is idempotent: removing an object that is already absent is not an
// error. List enumerates every stored object key and exists to support the
// orphan sweep; implementations need not guarantee a point-in-time snapshot.
type ObjectStore interface {
	Save(ctx context.Context, caseID string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
	List(ctx context.Context) ([]string, error)
}
