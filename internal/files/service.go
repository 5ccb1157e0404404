package files

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"casemate-backend/internal/cases"
	"casemate-backend/internal/shared/metrics"
	"casemate-backend/internal/shared/storage/object"
	"casemate-backend/internal/shared/telemetry"
)

// ErrNotPDF is returned when an upload is not an acceptable PDF.
var ErrNotPDF = errors.New("only PDF files are accepted")

// CaseGuard resolves cases and enforces participant access. The cases
// service implements it.
type CaseGuard interface {
	Get(ctx context.Context, userID, caseID string) (cases.CaseFolder, error)
	List(ctx context.Context, userID string) ([]cases.CaseFolder, error)
}

// Extractor starts metadata extraction for an uploaded file and returns
// the identifier of the durable extraction job.
type Extractor interface {
	Enqueue(ctx context.Context, caseID, fileID string) (string, error)
}

type Service struct {
	Repo      Repo
	Store     object.ObjectStore
	Cases     CaseGuard
	Extractor Extractor
}

func NewService(repo Repo, store object.ObjectStore, guard CaseGuard, extractor Extractor) *Service {
	return &Service{Repo: repo, Store: store, Cases: guard, Extractor: extractor}
}

// Upload validates the payload as a PDF, writes the blob, records the file
// entry and kicks off extraction. The returned job id is empty when no
// extractor is configured.
func (s *Service) Upload(ctx context.Context, userID, caseID, fileName, declaredType string, data []byte) (FileEntry, string, error) {
	if _, err := s.Cases.Get(ctx, userID, caseID); err != nil {
		return FileEntry{}, "", err
	}

	if len(data) == 0 {
		return FileEntry{}, "", fmt.Errorf("empty file")
	}
	if !acceptableType(declaredType, fileName) {
		return FileEntry{}, "", ErrNotPDF
	}
	pageCount, err := pdfPageCount(data)
	if err != nil {
		return FileEntry{}, "", ErrNotPDF
	}

	key, size, _, err := s.Store.Save(ctx, caseID, fileName, bytes.NewReader(data))
	if err != nil {
		return FileEntry{}, "", fmt.Errorf("store blob: %w", err)
	}

	fe := FileEntry{
		ID:           uuid.NewString(),
		CaseID:       caseID,
		UploadedBy:   userID,
		StorageKey:   key,
		OriginalName: fileName,
		ContentType:  "application/pdf",
		SizeBytes:    size,
		PageCount:    pageCount,
		Comments:     []Comment{},
		UploadDate:   time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, fe); err != nil {
		if delErr := s.Store.Delete(ctx, key); delErr != nil {
			telemetry.Warn("file.upload.rollback_blob", map[string]any{
				"storage_key": key,
				"error":       delErr.Error(),
			})
		}
		return FileEntry{}, "", fmt.Errorf("create file entry: %w", err)
	}

	metrics.IncUploads()

	var jobID string
	if s.Extractor != nil {
		jobID, err = s.Extractor.Enqueue(ctx, caseID, fe.ID)
		if err != nil {
			// Extraction is best-effort at upload time; the entry
			// stands on its own without metadata.
			telemetry.Warn("file.upload.enqueue_extraction", map[string]any{
				"case_id": caseID,
				"file_id": fe.ID,
				"error":   err.Error(),
			})
			jobID = ""
		}
	}
	return fe, jobID, nil
}

// Get returns a single file entry if the user may see it.
func (s *Service) Get(ctx context.Context, userID, caseID, fileID string) (FileEntry, error) {
	cf, err := s.Cases.Get(ctx, userID, caseID)
	if err != nil {
		return FileEntry{}, err
	}
	fe, err := s.Repo.GetByID(ctx, caseID, fileID)
	if err != nil {
		return FileEntry{}, err
	}
	if userID == cf.ClientID && userID != cf.LawyerID && !fe.IsSharedWithClient {
		return FileEntry{}, cases.ErrAccessDenied
	}
	return fe, nil
}

// List returns the file entries of a case. Clients only see shared files.
func (s *Service) List(ctx context.Context, userID, caseID string) ([]FileEntry, error) {
	cf, err := s.Cases.Get(ctx, userID, caseID)
	if err != nil {
		return nil, err
	}
	items, err := s.Repo.ListByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if userID == cf.ClientID && userID != cf.LawyerID {
		shared := items[:0]
		for _, fe := range items {
			if fe.IsSharedWithClient {
				shared = append(shared, fe)
			}
		}
		items = shared
	}
	return items, nil
}

const defaultRecentLimit = 5

// RecentFile pairs a file entry with the case folder it belongs to.
type RecentFile struct {
	CaseID    string    `json:"caseId"`
	CaseTitle string    `json:"caseTitle"`
	File      FileEntry `json:"file"`
}

// Recent returns the newest uploads across every case the user
// participates in, newest first. Clients only see shared files.
func (s *Service) Recent(ctx context.Context, userID string, limit int) ([]RecentFile, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	folders, err := s.Cases.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := []RecentFile{}
	for _, cf := range folders {
		items, err := s.Repo.ListByCase(ctx, cf.ID)
		if err != nil {
			return nil, err
		}
		clientView := userID == cf.ClientID && userID != cf.LawyerID
		for _, fe := range items {
			if clientView && !fe.IsSharedWithClient {
				continue
			}
			out = append(out, RecentFile{CaseID: cf.ID, CaseTitle: cf.Title, File: fe})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].File.UploadDate.After(out[j].File.UploadDate)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Download returns the file entry and the fully drained blob bytes.
func (s *Service) Download(ctx context.Context, userID, caseID, fileID string) (FileEntry, []byte, error) {
	fe, err := s.Get(ctx, userID, caseID, fileID)
	if err != nil {
		return FileEntry{}, nil, err
	}

	rc, err := s.Store.Open(ctx, fe.StorageKey)
	if err != nil {
		return FileEntry{}, nil, fmt.Errorf("open blob: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return FileEntry{}, nil, fmt.Errorf("read blob: %w", err)
	}
	return fe, data, nil
}

// Delete removes the file entry and its metadata in one transaction, then
// best-effort deletes the blob. Blob failures go to the orphan sweep.
func (s *Service) Delete(ctx context.Context, userID, caseID, fileID string) error {
	cf, err := s.Cases.Get(ctx, userID, caseID)
	if err != nil {
		return err
	}
	if cf.LawyerID != userID {
		return cases.ErrAccessDenied
	}

	fe, err := s.Repo.DeleteCascade(ctx, caseID, fileID)
	if err != nil {
		return err
	}
	if err := s.Store.Delete(ctx, fe.StorageKey); err != nil {
		telemetry.Warn("file.delete.blob", map[string]any{
			"file_id":     fileID,
			"storage_key": fe.StorageKey,
			"error":       err.Error(),
		})
	}
	return nil
}

// SetShared toggles client visibility of a file. Lawyer only.
func (s *Service) SetShared(ctx context.Context, userID, caseID, fileID string, shared bool) (FileEntry, error) {
	cf, err := s.Cases.Get(ctx, userID, caseID)
	if err != nil {
		return FileEntry{}, err
	}
	if cf.LawyerID != userID {
		return FileEntry{}, cases.ErrAccessDenied
	}
	fe, err := s.Repo.GetByID(ctx, caseID, fileID)
	if err != nil {
		return FileEntry{}, err
	}
	fe.IsSharedWithClient = shared
	if err := s.Repo.Update(ctx, fe); err != nil {
		return FileEntry{}, err
	}
	return fe, nil
}

// AddComment appends a comment to a file the user can see.
func (s *Service) AddComment(ctx context.Context, userID, caseID, fileID, text string) (FileEntry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return FileEntry{}, fmt.Errorf("comment text is required")
	}
	fe, err := s.Get(ctx, userID, caseID, fileID)
	if err != nil {
		return FileEntry{}, err
	}
	fe.Comments = append(fe.Comments, Comment{AuthorID: userID, Text: text, CreatedAt: time.Now().UTC()})
	if err := s.Repo.Update(ctx, fe); err != nil {
		return FileEntry{}, err
	}
	return fe, nil
}

func acceptableType(declaredType, fileName string) bool {
	mt := strings.ToLower(strings.TrimSpace(declaredType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if mt == "application/pdf" {
		return true
	}
	if mt == "" || mt == "application/octet-stream" {
		return strings.HasSuffix(strings.ToLower(fileName), ".pdf")
	}
	return false
}

// pdfPageCount is a var so tests can substitute parsed fixtures.
var pdfPageCount = func(data []byte) (int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}
	return reader.NumPage(), nil
}
