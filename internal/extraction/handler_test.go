package extraction

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"casemate-backend/internal/cases"
)

type fakeGuard struct {
	allowed map[string]bool // userID -> allowed
}

func (g fakeGuard) Get(ctx context.Context, userID, caseID string) (cases.CaseFolder, error) {
	if !g.allowed[userID] {
		return cases.CaseFolder{}, cases.ErrAccessDenied
	}
	return cases.CaseFolder{ID: caseID, LawyerID: userID}, nil
}

func newJobRouter(t *testing.T, repo Repo, guard CaseGuard, userID string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Next()
	})
	h := NewHandler(&Service{Repo: repo}, guard)
	h.RegisterRoutes(r.Group("/"))
	return r
}

func TestGetJobReturnsStatus(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Now().UTC()
	job := Job{ID: "job-1", FileID: "file-1", CaseID: "case-1", Status: StatusQueued, CreatedAt: now}
	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("Create: %v", err)
	}

	r := newJobRouter(t, repo, fakeGuard{allowed: map[string]bool{"lawyer-1": true}}, "lawyer-1")
	req := httptest.NewRequest(http.MethodGet, "/extractions/job-1", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var got Job
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != "job-1" || got.Status != StatusQueued {
		t.Fatalf("unexpected job: %+v", got)
	}
}

func TestGetJobUnknownIDIs404(t *testing.T) {
	r := newJobRouter(t, NewMemoryRepo(), fakeGuard{allowed: map[string]bool{"lawyer-1": true}}, "lawyer-1")
	req := httptest.NewRequest(http.MethodGet, "/extractions/nope", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestGetJobOutsiderIs403(t *testing.T) {
	repo := NewMemoryRepo()
	job := Job{ID: "job-1", FileID: "file-1", CaseID: "case-1", Status: StatusProcessing, CreatedAt: time.Now().UTC()}
	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("Create: %v", err)
	}

	r := newJobRouter(t, repo, fakeGuard{allowed: map[string]bool{}}, "stranger")
	req := httptest.NewRequest(http.MethodGet, "/extractions/job-1", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}
