package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"casemate-backend/internal/cases"
	"casemate-backend/internal/shared/telemetry"
)

// FileLinker points a file entry at its metadata record. The files repo
// implements it.
type FileLinker interface {
	SetMetadataID(ctx context.Context, fileID, metadataID string) error
}

// CaseLinker receives summary values and calendar entries lifted from an
// extracted document. The cases repo implements it.
type CaseLinker interface {
	BackfillSummary(ctx context.Context, caseID string, fields cases.SummaryFields) error
	AppendImportantDates(ctx context.Context, caseID string, dates []cases.ImportantDate) error
}

// Linker persists extraction results and propagates them onto the owning
// file entry and case folder.
type Linker struct {
	Repo  Repo
	Files FileLinker
	Cases CaseLinker
}

func NewLinker(repo Repo, files FileLinker, caseRepo CaseLinker) *Linker {
	return &Linker{Repo: repo, Files: files, Cases: caseRepo}
}

// Persist stores the raw extraction payload as a metadata record, links it
// to the file entry, backfills unset case summary fields and appends any
// parseable deadlines to the case calendar. Unparseable deadline strings
// are dropped without failing the rest of the step.
func (l *Linker) Persist(ctx context.Context, caseID, fileID string, raw json.RawMessage) (Record, error) {
	var fields Fields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Record{}, fmt.Errorf("decode extraction payload: %w", err)
	}

	rec := Record{
		ID:        uuid.NewString(),
		FileID:    fileID,
		CaseID:    caseID,
		Fields:    fields,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.Repo.Create(ctx, rec); err != nil {
		return Record{}, fmt.Errorf("persist metadata: %w", err)
	}
	if err := l.Files.SetMetadataID(ctx, fileID, rec.ID); err != nil {
		return Record{}, fmt.Errorf("link metadata to file: %w", err)
	}

	summary := cases.SummaryFields{
		CaseNumber: fields.CaseNumber,
		Title:      fields.CaseTitle,
	}
	if t, ok := parseDate(fields.NextHearingDate); ok {
		summary.NextHearingDate = &t
	}
	if err := l.Cases.BackfillSummary(ctx, caseID, summary); err != nil {
		telemetry.Warn("metadata.link.backfill", map[string]any{
			"case_id": caseID,
			"file_id": fileID,
			"error":   err.Error(),
		})
	}

	var dates []cases.ImportantDate
	for _, deadline := range fields.Deadlines {
		t, ok := parseDate(deadline)
		if !ok {
			continue
		}
		dates = append(dates, cases.ImportantDate{
			Date:        t,
			Description: deadline,
			Type:        "deadline",
		})
	}
	if len(dates) > 0 {
		if err := l.Cases.AppendImportantDates(ctx, caseID, dates); err != nil {
			telemetry.Warn("metadata.link.deadlines", map[string]any{
				"case_id": caseID,
				"file_id": fileID,
				"error":   err.Error(),
			})
		}
	}
	return rec, nil
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"02/01/2006",
	"02-01-2006",
	"January 2, 2006",
	"2 January 2006",
}

func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
