package cases

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a case folder does not exist.
var ErrNotFound = errors.New("case not found")

// SummaryFields are values lifted from an extracted document and written
// onto the parent case only where the case does not already have them.
type SummaryFields struct {
	CaseNumber      string
	Title           string
	NextHearingDate *time.Time
}

// Repo stores case folders.
type Repo interface {
	Create(ctx context.Context, cf CaseFolder) error
	GetByID(ctx context.Context, caseID string) (CaseFolder, error)
	ListByUser(ctx context.Context, userID string) ([]CaseFolder, error)
	Update(ctx context.Context, cf CaseFolder) error

	// DeleteCascade removes the case, its file entries and their metadata
	// records in one transaction and returns the storage keys of the blobs
	// that belonged to the deleted file entries.
	DeleteCascade(ctx context.Context, caseID string) ([]string, error)

	// BackfillSummary sets case number, title and next hearing date only
	// where the case has no value yet.
	BackfillSummary(ctx context.Context, caseID string, fields SummaryFields) error

	// AppendImportantDates adds dated entries to the case calendar.
	AppendImportantDates(ctx context.Context, caseID string, dates []ImportantDate) error
}
