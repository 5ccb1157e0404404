package cases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"casemate-backend/internal/shared/storage/object"
	"casemate-backend/internal/shared/telemetry"
)

// ErrAccessDenied is returned when a user may not touch a case.
var ErrAccessDenied = errors.New("access denied")

// CreateInput carries the fields for a new case folder.
type CreateInput struct {
	ClientID        string
	Title           string
	Description     string
	CaseNumber      string
	Status          string
	Priority        string
	CourtName       string
	JudgeName       string
	NextHearingDate *time.Time
}

// UpdateInput carries a partial update. Nil fields are left unchanged.
type UpdateInput struct {
	Title           *string
	Description     *string
	CaseNumber      *string
	Status          *string
	Priority        *string
	CourtName       *string
	JudgeName       *string
	NextHearingDate *time.Time
}

type Service struct {
	Repo  Repo
	Store object.ObjectStore
}

func NewService(repo Repo, store object.ObjectStore) *Service {
	return &Service{Repo: repo, Store: store}
}

// Create opens a new case folder owned by the given lawyer.
func (s *Service) Create(ctx context.Context, lawyerID string, in CreateInput) (CaseFolder, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.ClientID = strings.TrimSpace(in.ClientID)
	if in.Title == "" {
		return CaseFolder{}, fmt.Errorf("title is required")
	}
	if in.ClientID == "" {
		return CaseFolder{}, fmt.Errorf("clientId is required")
	}
	if in.Status == "" {
		in.Status = StatusActive
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !validStatus(in.Status) {
		return CaseFolder{}, fmt.Errorf("status must be one of active, closed, pending")
	}
	if !validPriority(in.Priority) {
		return CaseFolder{}, fmt.Errorf("priority must be one of low, medium, high")
	}

	now := time.Now().UTC()
	cf := CaseFolder{
		ID:              uuid.NewString(),
		LawyerID:        lawyerID,
		ClientID:        in.ClientID,
		Title:           in.Title,
		Description:     strings.TrimSpace(in.Description),
		CaseNumber:      strings.TrimSpace(in.CaseNumber),
		Status:          in.Status,
		Priority:        in.Priority,
		CourtName:       strings.TrimSpace(in.CourtName),
		JudgeName:       strings.TrimSpace(in.JudgeName),
		NextHearingDate: in.NextHearingDate,
		Notes:           []Note{},
		ImportantDates:  []ImportantDate{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Repo.Create(ctx, cf); err != nil {
		return CaseFolder{}, err
	}
	return cf, nil
}

// Get returns a case if the user is its lawyer or client.
func (s *Service) Get(ctx context.Context, userID, caseID string) (CaseFolder, error) {
	cf, err := s.Repo.GetByID(ctx, caseID)
	if err != nil {
		return CaseFolder{}, err
	}
	if !cf.AccessibleBy(userID) {
		return CaseFolder{}, ErrAccessDenied
	}
	return cf, nil
}

// List returns the cases the user participates in.
func (s *Service) List(ctx context.Context, userID string) ([]CaseFolder, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// Update applies a partial update. Only the owning lawyer may update.
func (s *Service) Update(ctx context.Context, lawyerID, caseID string, in UpdateInput) (CaseFolder, error) {
	cf, err := s.Repo.GetByID(ctx, caseID)
	if err != nil {
		return CaseFolder{}, err
	}
	if cf.LawyerID != lawyerID {
		return CaseFolder{}, ErrAccessDenied
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return CaseFolder{}, fmt.Errorf("title cannot be empty")
		}
		cf.Title = title
	}
	if in.Description != nil {
		cf.Description = strings.TrimSpace(*in.Description)
	}
	if in.CaseNumber != nil {
		cf.CaseNumber = strings.TrimSpace(*in.CaseNumber)
	}
	if in.Status != nil {
		if !validStatus(*in.Status) {
			return CaseFolder{}, fmt.Errorf("status must be one of active, closed, pending")
		}
		cf.Status = *in.Status
	}
	if in.Priority != nil {
		if !validPriority(*in.Priority) {
			return CaseFolder{}, fmt.Errorf("priority must be one of low, medium, high")
		}
		cf.Priority = *in.Priority
	}
	if in.CourtName != nil {
		cf.CourtName = strings.TrimSpace(*in.CourtName)
	}
	if in.JudgeName != nil {
		cf.JudgeName = strings.TrimSpace(*in.JudgeName)
	}
	if in.NextHearingDate != nil {
		t := *in.NextHearingDate
		cf.NextHearingDate = &t
	}
	cf.UpdatedAt = time.Now().UTC()

	if err := s.Repo.Update(ctx, cf); err != nil {
		return CaseFolder{}, err
	}
	return cf, nil
}

// AddNote appends a note to the case. Either participant may comment.
func (s *Service) AddNote(ctx context.Context, userID, caseID, text string) (CaseFolder, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return CaseFolder{}, fmt.Errorf("note text is required")
	}
	cf, err := s.Repo.GetByID(ctx, caseID)
	if err != nil {
		return CaseFolder{}, err
	}
	if !cf.AccessibleBy(userID) {
		return CaseFolder{}, ErrAccessDenied
	}
	cf.Notes = append(cf.Notes, Note{AuthorID: userID, Text: text, CreatedAt: time.Now().UTC()})
	cf.UpdatedAt = time.Now().UTC()
	if err := s.Repo.Update(ctx, cf); err != nil {
		return CaseFolder{}, err
	}
	return cf, nil
}

// Delete removes the case with its file entries and metadata in one
// transaction, then best-effort deletes the blobs. Blob failures are
// logged and left to the orphan sweep.
func (s *Service) Delete(ctx context.Context, lawyerID, caseID string) error {
	cf, err := s.Repo.GetByID(ctx, caseID)
	if err != nil {
		return err
	}
	if cf.LawyerID != lawyerID {
		return ErrAccessDenied
	}

	keys, err := s.Repo.DeleteCascade(ctx, caseID)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := s.Store.Delete(ctx, key); err != nil {
			telemetry.Warn("case.delete.blob", map[string]any{
				"case_id":     caseID,
				"storage_key": key,
				"error":       err.Error(),
			})
		}
	}
	return nil
}
