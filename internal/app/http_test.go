package app

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gigboard/api/internal/auth"
	"gigboard/api/internal/store"
)

func bearerFor(t *testing.T, svc *Service, email, name, role string) string {
	t.Helper()
	token, err := auth.IssueToken([]byte(svc.cfg.JWTSecret), auth.Claims{
		Sub:   "usr_" + email,
		Email: email,
		Name:  name,
		Role:  role,
		JTI:   "jti_test",
		Exp:   time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + token
}

func TestHealthEndpoint(t *testing.T) {
	server := NewHTTPServer(newTestService(&fakeStore{}), "*")

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var response map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if ok, exists := response["ok"]; !exists || ok != true {
		t.Errorf("expected ok=true, got %v", ok)
	}
}

func TestPreflightRequest(t *testing.T) {
	server := NewHTTPServer(newTestService(&fakeStore{}), "http://localhost:5173")

	req := httptest.NewRequest(http.MethodOptions, "/api/projects", nil)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestProtectedRouteWithoutBearerReturnsUnauthorized(t *testing.T) {
	server := NewHTTPServer(newTestService(&fakeStore{}), "*")

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestApplyEndpointCreatesApplication(t *testing.T) {
	fs := &fakeStore{
		getProjectFn: func(_ context.Context, title string) (store.Project, error) {
			return store.Project{Title: title, ClientEmail: "client@example.com", Status: store.ProjectPending}, nil
		},
	}
	svc := newTestService(fs)
	server := NewHTTPServer(svc, "*")

	body := bytes.NewBufferString(`{"proposedAmount":500,"deadline":"2 weeks","pitch":"I build landing pages"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/projects/Landing%20Page/applications", body)
	req.Header.Set("Authorization", bearerFor(t, svc, "dev@example.com", "Dev", auth.RoleFreelancer))
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	var payload struct {
		Application ApplicationView `json:"application"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if payload.Application.ProjectTitle != "Landing Page" {
		t.Errorf("project title = %q, want %q", payload.Application.ProjectTitle, "Landing Page")
	}
	if payload.Application.State != string(store.StatePending) {
		t.Errorf("state = %q, want PENDING", payload.Application.State)
	}
}

func TestAcceptEndpointMapsStateConflict(t *testing.T) {
	fs := &fakeStore{
		getApplicationFn: func(context.Context, string, string) (store.Application, error) {
			return store.Application{State: store.StateAccepted, Version: 2}, nil
		},
	}
	svc := newTestService(fs)
	server := NewHTTPServer(svc, "*")

	req := httptest.NewRequest(http.MethodPost, "/api/projects/Landing%20Page/applications/dev@example.com/accept", bytes.NewBufferString(`{}`))
	req.Header.Set("Authorization", bearerFor(t, svc, "client@example.com", "Client", auth.RoleClient))
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d body=%s", rr.Code, rr.Body.String())
	}
	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if payload["code"] != "ALREADY_ACCEPTED" {
		t.Errorf("code = %v, want ALREADY_ACCEPTED", payload["code"])
	}
}

func TestRejectEndpointRequiresReason(t *testing.T) {
	fs := &fakeStore{
		getApplicationFn: func(context.Context, string, string) (store.Application, error) {
			return store.Application{State: store.StatePending, Version: 1}, nil
		},
	}
	svc := newTestService(fs)
	server := NewHTTPServer(svc, "*")

	req := httptest.NewRequest(http.MethodPost, "/api/projects/Landing%20Page/applications/dev@example.com/reject", bytes.NewBufferString(`{"reason":""}`))
	req.Header.Set("Authorization", bearerFor(t, svc, "client@example.com", "Client", auth.RoleClient))
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d body=%s", rr.Code, rr.Body.String())
	}
	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if payload["code"] != "REASON_REQUIRED" {
		t.Errorf("code = %v, want REASON_REQUIRED", payload["code"])
	}
}

func TestProposeEndpointRejectsUnknownStatus(t *testing.T) {
	fs := &fakeStore{
		getApplicationFn: func(context.Context, string, string) (store.Application, error) {
			return store.Application{State: store.StateAccepted, ProjectStatus: store.ProjectActive, Version: 2}, nil
		},
	}
	svc := newTestService(fs)
	server := NewHTTPServer(svc, "*")

	req := httptest.NewRequest(http.MethodPost, "/api/applications/Landing%20Page/propose", bytes.NewBufferString(`{"status":"Done"}`))
	req.Header.Set("Authorization", bearerFor(t, svc, "dev@example.com", "Dev", auth.RoleFreelancer))
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d body=%s", rr.Code, rr.Body.String())
	}
	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if payload["code"] != "INVALID_STATUS" {
		t.Errorf("code = %v, want INVALID_STATUS", payload["code"])
	}
}

func TestPurgeEndpointRequiresConfirmation(t *testing.T) {
	svc := newTestService(&fakeStore{})
	server := NewHTTPServer(svc, "*")

	req := httptest.NewRequest(http.MethodPost, "/api/trash/purge", bytes.NewBufferString(`{"projectTitles":["Landing Page"],"confirmation":"yes"}`))
	req.Header.Set("Authorization", bearerFor(t, svc, "dev@example.com", "Dev", auth.RoleFreelancer))
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d body=%s", rr.Code, rr.Body.String())
	}
	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if payload["code"] != "CONFIRMATION_REQUIRED" {
		t.Errorf("code = %v, want CONFIRMATION_REQUIRED", payload["code"])
	}
}

func TestUnknownProjectReturnsNotFound(t *testing.T) {
	fs := &fakeStore{
		getProjectFn: func(context.Context, string) (store.Project, error) {
			return store.Project{}, sql.ErrNoRows
		},
	}
	svc := newTestService(fs)
	server := NewHTTPServer(svc, "*")

	req := httptest.NewRequest(http.MethodGet, "/api/projects/Nope", nil)
	req.Header.Set("Authorization", bearerFor(t, svc, "dev@example.com", "Dev", auth.RoleFreelancer))
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSearchRejectsBadLimit(t *testing.T) {
	svc := newTestService(&fakeStore{})
	server := NewHTTPServer(svc, "*")

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=landing&limit=abc", nil)
	req.Header.Set("Authorization", bearerFor(t, svc, "dev@example.com", "Dev", auth.RoleFreelancer))
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestRequestIDPropagation(t *testing.T) {
	server := NewHTTPServer(newTestService(&fakeStore{}), "*")

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if got := rr.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("X-Request-ID = %q, want req-42", got)
	}
}
