package users

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(svc *Service, authedUserID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if authedUserID != "" {
			c.Set("userId", authedUserID)
			c.Set("userRole", role)
		}
		c.Next()
	})
	api := router.Group("/api/v1")
	NewHandler(svc).RegisterRoutes(api)
	return router
}

func TestSignupAndLogin(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	router := newTestRouter(svc, "", "")

	body, _ := json.Marshal(signupRequest{
		Name:         "Asha Rao",
		Email:        "Asha@Example.com",
		Password:     "s3cret-pw",
		Role:         RoleLawyer,
		BarCouncilID: "KAR/123/2019",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created AuthResult
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode signup response: %v", err)
	}
	if created.Token == "" {
		t.Fatal("expected a token in signup response")
	}
	if created.User.Email != "asha@example.com" {
		t.Fatalf("expected lowercased email, got %q", created.User.Email)
	}

	loginBody, _ := json.Marshal(loginRequest{Email: "asha@example.com", Password: "s3cret-pw"})
	req2 := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(loginBody))
	req2.Header.Set("Content-Type", "application/json")
	resp2 := httptest.NewRecorder()
	router.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp2.Code, resp2.Body.String())
	}

	badBody, _ := json.Marshal(loginRequest{Email: "asha@example.com", Password: "wrong"})
	req3 := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(badBody))
	req3.Header.Set("Content-Type", "application/json")
	resp3 := httptest.NewRecorder()
	router.ServeHTTP(resp3, req3)
	if resp3.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for bad password, got %d", resp3.Code)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	router := newTestRouter(svc, "", "")

	body, _ := json.Marshal(signupRequest{
		Name: "First", Email: "dup@example.com", Password: "pw123456", Role: RoleClient,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", resp.Code)
	}

	req2 := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewReader(body))
	resp2 := httptest.NewRecorder()
	router.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusConflict {
		t.Fatalf("expected status 409 for duplicate email, got %d", resp2.Code)
	}
}

func TestSignupLawyerRequiresBarCouncilID(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	router := newTestRouter(svc, "", "")

	body, _ := json.Marshal(signupRequest{
		Name: "No Bar", Email: "nobar@example.com", Password: "pw123456", Role: RoleLawyer,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestLinkClientAndListLinked(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	lawyer, err := svc.Signup(context.Background(), SignupInput{
		Name: "Lawyer", Email: "lawyer@example.com", Password: "pw123456",
		Role: RoleLawyer, BarCouncilID: "DEL/42/2020",
	})
	if err != nil {
		t.Fatalf("signup lawyer: %v", err)
	}
	client, err := svc.Signup(context.Background(), SignupInput{
		Name: "Client", Email: "client@example.com", Password: "pw123456", Role: RoleClient,
	})
	if err != nil {
		t.Fatalf("signup client: %v", err)
	}

	router := newTestRouter(svc, lawyer.User.ID, RoleLawyer)

	body, _ := json.Marshal(linkRequest{ClientEmail: "client@example.com"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/links", bytes.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	req2 := httptest.NewRequest(http.MethodGet, "/api/v1/links", nil)
	resp2 := httptest.NewRecorder()
	router.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp2.Code)
	}
	var listed struct {
		Users []User `json:"users"`
	}
	if err := json.Unmarshal(resp2.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode linked users: %v", err)
	}
	if len(listed.Users) != 1 || listed.Users[0].ID != client.User.ID {
		t.Fatalf("expected the linked client, got %+v", listed.Users)
	}

	clientRouter := newTestRouter(svc, client.User.ID, RoleClient)
	req3 := httptest.NewRequest(http.MethodGet, "/api/v1/links", nil)
	resp3 := httptest.NewRecorder()
	clientRouter.ServeHTTP(resp3, req3)
	var fromClient struct {
		Users []User `json:"users"`
	}
	if err := json.Unmarshal(resp3.Body.Bytes(), &fromClient); err != nil {
		t.Fatalf("decode linked lawyers: %v", err)
	}
	if len(fromClient.Users) != 1 || fromClient.Users[0].ID != lawyer.User.ID {
		t.Fatalf("expected the linked lawyer, got %+v", fromClient.Users)
	}
}

func TestLinkClientRejectsNonLawyer(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	client, err := svc.Signup(context.Background(), SignupInput{
		Name: "Client", Email: "c2@example.com", Password: "pw123456", Role: RoleClient,
	})
	if err != nil {
		t.Fatalf("signup client: %v", err)
	}

	router := newTestRouter(svc, client.User.ID, RoleClient)
	body, _ := json.Marshal(linkRequest{ClientEmail: "c2@example.com"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/links", bytes.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", resp.Code)
	}
}

func TestMeReturnsUserWithoutPasswordHash(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	created, err := svc.Signup(context.Background(), SignupInput{
		Name: "Me", Email: "me@example.com", Password: "pw123456", Role: RoleClient,
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	router := newTestRouter(svc, created.User.ID, RoleClient)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var raw map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode me response: %v", err)
	}
	if _, leaked := raw["passwordHash"]; leaked {
		t.Fatal("password hash must not be serialized")
	}
}
