package extraction

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"casemate-backend/internal/files"
	"casemate-backend/internal/llm"
	"casemate-backend/internal/metadata"
	"casemate-backend/internal/shared/metrics"
	"casemate-backend/internal/shared/storage/object"
	"casemate-backend/internal/shared/telemetry"
)

// JobQueue hands a job id to an external worker. When nil, jobs run in a
// detached goroutine inside the API process.
type JobQueue interface {
	Push(ctx context.Context, jobID, requestID string) error
}

// Service owns the extraction pipeline: durable job rows, the model call
// with one retry, schema validation and metadata linkage.
type Service struct {
	Repo   Repo
	Files  files.Repo
	Store  object.ObjectStore
	LLM    llm.Client
	Linker *metadata.Linker
	Queue  JobQueue
}

// Enqueue creates a durable job for the file and starts processing. It
// implements the extractor hook used by the upload path.
func (s *Service) Enqueue(ctx context.Context, caseID, fileID string) (string, error) {
	if caseID == "" || fileID == "" {
		return "", errors.New("caseID and fileID are required")
	}

	job := Job{
		ID:        uuid.NewString(),
		FileID:    fileID,
		CaseID:    caseID,
		Status:    StatusQueued,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, job); err != nil {
		return "", err
	}

	requestID := requestIDFromContext(ctx)
	if s.Queue != nil {
		if err := s.Queue.Push(ctx, job.ID, requestID); err != nil {
			telemetry.Warn("extraction.queue.push", map[string]any{
				"request_id": requestID,
				"job_id":     job.ID,
				"error":      err.Error(),
			})
			go s.processDetached(backgroundWithRequestID(ctx), job.ID)
		}
		return job.ID, nil
	}

	go s.processDetached(backgroundWithRequestID(ctx), job.ID)
	return job.ID, nil
}

// Get returns a job by id.
func (s *Service) Get(ctx context.Context, jobID string) (Job, error) {
	if jobID == "" {
		return Job{}, errors.New("jobID is required")
	}
	return s.Repo.GetByID(ctx, jobID)
}

func (s *Service) processDetached(ctx context.Context, jobID string) {
	defer func() {
		if r := recover(); r != nil {
			s.failJob(ctx, jobID, Job{}, fmt.Errorf("panic: %v", r), nil)
		}
	}()
	_ = s.Process(ctx, jobID)
}

// Process runs one extraction job to completion. Called from the detached
// goroutine in the API process or from the queue worker.
func (s *Service) Process(ctx context.Context, jobID string) error {
	startedAt := time.Now().UTC()
	if err := s.Repo.MarkProcessing(ctx, jobID, startedAt); err != nil {
		if errors.Is(err, ErrAlreadyFinished) {
			// Redelivery after a lost queue ack. The job finished and its
			// metadata is persisted; report success so the message is acked.
			telemetry.Info("extraction.redelivered", map[string]any{
				"request_id": requestIDFromContext(ctx),
				"job_id":     jobID,
			})
			return nil
		}
		s.failJob(ctx, jobID, Job{}, fmt.Errorf("set processing failed: %w", err), &startedAt)
		return err
	}

	job, err := s.Repo.GetByID(ctx, jobID)
	if err != nil {
		s.failJob(ctx, jobID, Job{}, fmt.Errorf("job lookup: %w", err), &startedAt)
		return err
	}
	metrics.IncExtractionStarted()
	telemetry.Info("extraction.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"case_id":           job.CaseID,
		"file_id":           job.FileID,
		"job_id":            job.ID,
		"status":            StatusProcessing,
		"status_transition": "queued->processing",
	})

	if s.Files == nil || s.Store == nil || s.Linker == nil {
		err := errors.New("missing storage dependencies")
		s.failJob(ctx, jobID, job, err, &startedAt)
		return err
	}
	if s.LLM == nil {
		err := errors.New("missing llm client")
		s.failJob(ctx, jobID, job, err, &startedAt)
		return err
	}

	fe, err := s.Files.GetByID(ctx, job.CaseID, job.FileID)
	if err != nil {
		wrapped := fmt.Errorf("file lookup id=%s: %w", job.FileID, err)
		s.failJob(ctx, jobID, job, wrapped, &startedAt)
		return wrapped
	}

	data, err := loadBlob(ctx, s.Store, fe.StorageKey)
	if err != nil {
		wrapped := fmt.Errorf("load blob key=%s: %w", fe.StorageKey, err)
		s.failJob(ctx, jobID, job, wrapped, &startedAt)
		return wrapped
	}

	llmClient := newRetryingLLM(s.LLM, job.ID, requestIDFromContext(ctx))
	raw, err := llmClient.ExtractMetadata(ctx, llm.ExtractInput{
		Data:     data,
		MimeType: fe.ContentType,
	})
	if err != nil {
		wrapped := fmt.Errorf("llm extract: %w", err)
		s.failJob(ctx, jobID, job, wrapped, &startedAt)
		return wrapped
	}

	if err := ValidateMetadata(raw); err != nil {
		wrapped := fmt.Errorf("llm output invalid: %w", err)
		s.failJob(ctx, jobID, job, wrapped, &startedAt)
		return wrapped
	}

	if _, err := s.Linker.Persist(ctx, job.CaseID, job.FileID, raw); err != nil {
		wrapped := fmt.Errorf("persist metadata: %w", err)
		s.failJob(ctx, jobID, job, wrapped, &startedAt)
		return wrapped
	}

	completedAt := time.Now().UTC()
	if err := s.Repo.MarkCompleted(ctx, jobID, completedAt); err != nil {
		s.failJob(ctx, jobID, job, fmt.Errorf("set completed failed: %w", err), &startedAt)
		return err
	}
	metrics.IncExtractionCompleted()
	metrics.ObserveExtractionDurationMs(durationMs(&startedAt, &completedAt))
	telemetry.Info("extraction.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"case_id":           job.CaseID,
		"file_id":           job.FileID,
		"job_id":            job.ID,
		"status":            StatusCompleted,
		"status_transition": "processing->completed",
		"duration_ms":       durationMs(&startedAt, &completedAt),
	})
	return nil
}

func (s *Service) failJob(ctx context.Context, jobID string, job Job, err error, startedAt *time.Time) {
	code, retryable := classifyFailure(err)
	msg := failureMessage(err)
	completedAt := time.Now().UTC()
	if updateErr := s.Repo.MarkFailed(context.Background(), jobID, code, msg, retryable, completedAt); updateErr != nil {
		telemetry.Error("extraction.mark_failed", map[string]any{
			"request_id": requestIDFromContext(ctx),
			"job_id":     jobID,
			"error":      updateErr.Error(),
			"cause":      sanitizeError(err),
		})
	}
	metrics.IncExtractionFailed()
	if startedAt != nil {
		metrics.ObserveExtractionDurationMs(durationMs(startedAt, &completedAt))
	}
	telemetry.Info("extraction.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"case_id":           job.CaseID,
		"file_id":           job.FileID,
		"job_id":            jobID,
		"status":            StatusFailed,
		"status_transition": "processing->failed",
		"error_code":        code,
		"duration_ms":       durationMs(startedAt, &completedAt),
	})
}

func durationMs(startedAt, completedAt *time.Time) float64 {
	if startedAt == nil || completedAt == nil {
		return 0
	}
	return float64(completedAt.Sub(*startedAt).Microseconds()) / 1000.0
}

func classifyFailure(err error) (string, bool) {
	if err == nil {
		return ErrorCodeInternal, false
	}
	if errors.Is(err, llm.ErrServiceUnavailable) {
		return ErrorCodeLLMUnavailable, true
	}
	if errors.Is(err, llm.ErrNoJSON) {
		return ErrorCodeParse, false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorCodeLLMTimeout, true
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") && strings.Contains(msg, "llm") {
		return ErrorCodeLLMTimeout, true
	}
	if strings.Contains(msg, "schema") || strings.Contains(msg, "llm output invalid") {
		return ErrorCodeSchemaMismatch, false
	}
	if strings.Contains(msg, "file lookup") || strings.Contains(msg, "load blob") ||
		strings.Contains(msg, "persist metadata") || strings.Contains(msg, "set processing") ||
		strings.Contains(msg, "set completed") || strings.Contains(msg, "job lookup") {
		return ErrorCodeStorage, true
	}
	return ErrorCodeInternal, false
}

// failureMessage keeps the user-facing translation for a missing model
// endpoint; everything else is the sanitized original error.
func failureMessage(err error) string {
	if errors.Is(err, llm.ErrServiceUnavailable) {
		return llm.ErrServiceUnavailable.Error()
	}
	return sanitizeError(err)
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}

func loadBlob(ctx context.Context, store object.ObjectStore, key string) ([]byte, error) {
	body, err := store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(body)
}
