package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/imlinkk/QLNS/internal/platform/config"
	"github.com/imlinkk/QLNS/internal/platform/metrics"
)

// testApp wires the router without a live database. Requests that would touch
// the pool are blocked by the auth gate before any query runs.
func testApp() *App {
	app := &App{
		Config: config.Config{
			SessionSecret:      "test-secret",
			SessionTTL:         time.Hour,
			FrontendDir:        "frontend-does-not-exist",
			Environment:        "test",
			MaxBodyBytes:       1048576,
			RateLimitPerMinute: 1000,
			MetricsEnabled:     true,
		},
		Metrics: metrics.New(),
	}
	app.Router = app.buildRouter()
	return app
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func TestHealthz(t *testing.T) {
	app := testApp()
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app := testApp()
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var snapshot map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("metrics response is not JSON: %v", err)
	}
	if _, ok := snapshot["requests_total"]; !ok {
		t.Fatalf("expected requests_total in snapshot, got %v", snapshot)
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	app := testApp()
	paths := []string{
		"/api/v1/employees",
		"/api/v1/departments",
		"/api/v1/positions",
		"/api/v1/salaries",
		"/api/v1/attendance",
		"/api/v1/leaves",
		"/api/v1/performance",
	}

	for _, path := range paths {
		path := path
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			var body envelope
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("response is not the JSON envelope: %v", err)
			}
			if body.Success {
				t.Fatal("expected success=false")
			}
		})
	}
}

func TestNonNumericIDDoesNotMatch(t *testing.T) {
	app := testApp()
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/employees/abc", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for non-numeric id, got %d", rec.Code)
	}
}

func TestLoginValidatesBeforeTouchingStorage(t *testing.T) {
	app := testApp()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(`{"username":"admin"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	var body envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not the JSON envelope: %v", err)
	}
	if body.Message != "Missing required fields: password" {
		t.Fatalf("unexpected message: %q", body.Message)
	}
}

func TestLoginRejectsMalformedJSON(t *testing.T) {
	app := testApp()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(`{"username":`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRequestIDHeaderOnResponses(t *testing.T) {
	app := testApp()
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID on response")
	}
}
