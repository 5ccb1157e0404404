package files

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"casemate-backend/internal/cases"
	"casemate-backend/internal/shared/storage/object"
	"casemate-backend/internal/shared/storage/object/local"
)

type testEnv struct {
	store    object.ObjectStore
	fileRepo *MemoryRepo
	caseRepo *cases.MemoryRepo
	caseID   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := local.New(t.TempDir())
	fileRepo := NewMemoryRepo()
	caseRepo := cases.NewMemoryRepo()
	caseRepo.Purger = fileRepo

	cf := cases.CaseFolder{
		ID:        "case-1",
		LawyerID:  "lawyer-1",
		ClientID:  "client-1",
		Title:     "Test matter",
		Status:    cases.StatusActive,
		Priority:  cases.PriorityMedium,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := caseRepo.Create(context.Background(), cf); err != nil {
		t.Fatalf("create case: %v", err)
	}
	return &testEnv{store: store, fileRepo: fileRepo, caseRepo: caseRepo, caseID: cf.ID}
}

func (e *testEnv) router(t *testing.T, userID string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	guard := cases.NewService(e.caseRepo, e.store)
	svc := NewService(e.fileRepo, e.store, guard, nil)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Next()
	})
	api := router.Group("/api/v1")
	NewHandler(svc).RegisterRoutes(api)
	return router
}

func stubPageCount(t *testing.T) {
	t.Helper()
	orig := pdfPageCount
	pdfPageCount = func(data []byte) (int, error) {
		if !bytes.HasPrefix(data, []byte("%PDF-")) {
			return 0, fmt.Errorf("not a pdf")
		}
		return 3, nil
	}
	t.Cleanup(func() { pdfPageCount = orig })
}

func multipartBody(t *testing.T, fieldName, fileName, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fieldName, fileName))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestUploadRejectsNonPDFWithoutSideEffects(t *testing.T) {
	stubPageCount(t)
	env := newTestEnv(t)
	router := env.router(t, "lawyer-1")

	body, contentType := multipartBody(t, "file", "notes.txt", "text/plain", []byte("plain text"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/"+env.caseID+"/files", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", resp.Code, resp.Body.String())
	}

	entries, err := env.fileRepo.ListByCase(context.Background(), env.caseID)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no file entries, got %d", len(entries))
	}
	keys, err := env.store.List(context.Background())
	if err != nil {
		t.Fatalf("list blobs: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("expected no blobs, got %v", keys)
	}
}

func TestUploadAndDownloadRoundTrip(t *testing.T) {
	stubPageCount(t)
	env := newTestEnv(t)
	router := env.router(t, "lawyer-1")

	payload := []byte("%PDF-1.4 fake judgment body")
	body, contentType := multipartBody(t, "file", "judgment.pdf", "application/pdf", payload)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/"+env.caseID+"/files", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var uploaded uploadResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &uploaded); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if uploaded.File.StorageKey == "" {
		t.Fatal("expected a storage key")
	}
	if uploaded.File.PageCount != 3 {
		t.Fatalf("expected page count 3, got %d", uploaded.File.PageCount)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/api/v1/cases/"+env.caseID+"/files/"+uploaded.File.ID+"/download", nil)
	resp2 := httptest.NewRecorder()
	router.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp2.Code)
	}
	if !bytes.Equal(resp2.Body.Bytes(), payload) {
		t.Fatal("downloaded bytes differ from uploaded bytes")
	}
	if got := resp2.Header().Get("Content-Disposition"); got != `attachment; filename="judgment.pdf"` {
		t.Fatalf("unexpected content disposition: %s", got)
	}
	if got := resp2.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("unexpected content type: %s", got)
	}
}

func TestUploadMissingFileField(t *testing.T) {
	env := newTestEnv(t)
	router := env.router(t, "lawyer-1")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/"+env.caseID+"/files", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestUploadToUnknownCase(t *testing.T) {
	stubPageCount(t)
	env := newTestEnv(t)
	router := env.router(t, "lawyer-1")

	body, contentType := multipartBody(t, "file", "doc.pdf", "application/pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/nope/files", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestDeleteFileRemovesRecordAndBlob(t *testing.T) {
	stubPageCount(t)
	env := newTestEnv(t)
	router := env.router(t, "lawyer-1")

	body, contentType := multipartBody(t, "file", "doc.pdf", "application/pdf", []byte("%PDF-1.4 body"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/"+env.caseID+"/files", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	var uploaded uploadResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &uploaded); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}

	req2 := httptest.NewRequest(http.MethodDelete, "/api/v1/cases/"+env.caseID+"/files/"+uploaded.File.ID, nil)
	resp2 := httptest.NewRecorder()
	router.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp2.Code, resp2.Body.String())
	}

	if _, err := env.fileRepo.GetByID(context.Background(), env.caseID, uploaded.File.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	keys, err := env.store.List(context.Background())
	if err != nil {
		t.Fatalf("list blobs: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("expected blob removed, still have %v", keys)
	}
}

func TestDeleteFileForbiddenForClient(t *testing.T) {
	stubPageCount(t)
	env := newTestEnv(t)
	lawyer := env.router(t, "lawyer-1")

	body, contentType := multipartBody(t, "file", "doc.pdf", "application/pdf", []byte("%PDF-1.4 body"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/"+env.caseID+"/files", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	lawyer.ServeHTTP(resp, req)
	var uploaded uploadResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &uploaded); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}

	client := env.router(t, "client-1")
	req2 := httptest.NewRequest(http.MethodDelete, "/api/v1/cases/"+env.caseID+"/files/"+uploaded.File.ID, nil)
	resp2 := httptest.NewRecorder()
	client.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", resp2.Code)
	}
}

func TestClientOnlySeesSharedFiles(t *testing.T) {
	stubPageCount(t)
	env := newTestEnv(t)
	lawyer := env.router(t, "lawyer-1")

	for _, name := range []string{"a.pdf", "b.pdf"} {
		body, contentType := multipartBody(t, "file", name, "application/pdf", []byte("%PDF-1.4 "+name))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/"+env.caseID+"/files", body)
		req.Header.Set("Content-Type", contentType)
		resp := httptest.NewRecorder()
		lawyer.ServeHTTP(resp, req)
		if resp.Code != http.StatusCreated {
			t.Fatalf("upload %s: status %d", name, resp.Code)
		}
	}

	entries, err := env.fileRepo.ListByCase(context.Background(), env.caseID)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	shareBody, _ := json.Marshal(shareRequest{Shared: true})
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/cases/"+env.caseID+"/files/"+entries[0].ID+"/share", bytes.NewReader(shareBody))
	resp := httptest.NewRecorder()
	lawyer.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("share: status %d: %s", resp.Code, resp.Body.String())
	}

	client := env.router(t, "client-1")
	req2 := httptest.NewRequest(http.MethodGet, "/api/v1/cases/"+env.caseID+"/files", nil)
	resp2 := httptest.NewRecorder()
	client.ServeHTTP(resp2, req2)
	var listed listResponse
	if err := json.Unmarshal(resp2.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed.Files) != 1 {
		t.Fatalf("expected client to see 1 shared file, got %d", len(listed.Files))
	}

	lawyerList := httptest.NewRecorder()
	lawyer.ServeHTTP(lawyerList, httptest.NewRequest(http.MethodGet, "/api/v1/cases/"+env.caseID+"/files", nil))
	var all listResponse
	if err := json.Unmarshal(lawyerList.Body.Bytes(), &all); err != nil {
		t.Fatalf("decode lawyer list: %v", err)
	}
	if len(all.Files) != 2 {
		t.Fatalf("expected lawyer to see 2 files, got %d", len(all.Files))
	}
}

func TestRecentFilesSpanCasesNewestFirst(t *testing.T) {
	env := newTestEnv(t)

	cf2 := cases.CaseFolder{
		ID:        "case-2",
		LawyerID:  "lawyer-1",
		ClientID:  "client-2",
		Title:     "Second matter",
		Status:    cases.StatusActive,
		Priority:  cases.PriorityMedium,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := env.caseRepo.Create(context.Background(), cf2); err != nil {
		t.Fatalf("create case: %v", err)
	}

	base := time.Now().UTC()
	seed := []FileEntry{
		{ID: "f-old", CaseID: env.caseID, UploadedBy: "lawyer-1", StorageKey: "k1", OriginalName: "old.pdf", ContentType: "application/pdf", IsSharedWithClient: true, UploadDate: base.Add(-2 * time.Hour)},
		{ID: "f-mid", CaseID: cf2.ID, UploadedBy: "lawyer-1", StorageKey: "k2", OriginalName: "mid.pdf", ContentType: "application/pdf", UploadDate: base.Add(-time.Hour)},
		{ID: "f-new", CaseID: env.caseID, UploadedBy: "lawyer-1", StorageKey: "k3", OriginalName: "new.pdf", ContentType: "application/pdf", UploadDate: base},
	}
	for _, fe := range seed {
		if err := env.fileRepo.Create(context.Background(), fe); err != nil {
			t.Fatalf("seed file %s: %v", fe.ID, err)
		}
	}

	lawyer := env.router(t, "lawyer-1")
	resp := httptest.NewRecorder()
	lawyer.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/files/recent?limit=2", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var recent recentResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &recent); err != nil {
		t.Fatalf("decode recent: %v", err)
	}
	if len(recent.Files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(recent.Files))
	}
	if recent.Files[0].File.ID != "f-new" || recent.Files[1].File.ID != "f-mid" {
		t.Fatalf("wrong order: %s, %s", recent.Files[0].File.ID, recent.Files[1].File.ID)
	}
	if recent.Files[1].CaseTitle != "Second matter" {
		t.Fatalf("expected case title carried, got %q", recent.Files[1].CaseTitle)
	}

	// client-1 participates in case-1 only and sees only shared files.
	client := env.router(t, "client-1")
	resp2 := httptest.NewRecorder()
	client.ServeHTTP(resp2, httptest.NewRequest(http.MethodGet, "/api/v1/files/recent", nil))
	var clientRecent recentResponse
	if err := json.Unmarshal(resp2.Body.Bytes(), &clientRecent); err != nil {
		t.Fatalf("decode client recent: %v", err)
	}
	if len(clientRecent.Files) != 1 || clientRecent.Files[0].File.ID != "f-old" {
		t.Fatalf("expected client to see only the shared file, got %+v", clientRecent.Files)
	}
}

func TestRecentFilesRejectsBadLimit(t *testing.T) {
	env := newTestEnv(t)
	router := env.router(t, "lawyer-1")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/files/recent?limit=zero", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestUploadEnqueuesExtraction(t *testing.T) {
	stubPageCount(t)
	env := newTestEnv(t)

	gin.SetMode(gin.TestMode)
	guard := cases.NewService(env.caseRepo, env.store)
	fake := &fakeExtractor{jobID: "job-1"}
	svc := NewService(env.fileRepo, env.store, guard, fake)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", "lawyer-1")
		c.Next()
	})
	api := router.Group("/api/v1")
	NewHandler(svc).RegisterRoutes(api)

	body, contentType := multipartBody(t, "file", "doc.pdf", "application/pdf", []byte("%PDF-1.4 body"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/"+env.caseID+"/files", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var uploaded uploadResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &uploaded); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if uploaded.ExtractionJobID != "job-1" {
		t.Fatalf("expected extraction job id job-1, got %q", uploaded.ExtractionJobID)
	}
	if fake.fileID != uploaded.File.ID {
		t.Fatalf("extractor saw file %q, want %q", fake.fileID, uploaded.File.ID)
	}
}

type fakeExtractor struct {
	jobID  string
	fileID string
}

func (f *fakeExtractor) Enqueue(ctx context.Context, caseID, fileID string) (string, error) {
	f.fileID = fileID
	return f.jobID, nil
}
