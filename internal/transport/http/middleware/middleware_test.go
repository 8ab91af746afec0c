package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/imlinkk/QLNS/internal/domain/auth"
	"github.com/imlinkk/QLNS/internal/requestctx"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestIDGenerated(t *testing.T) {
	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = requestctx.GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if captured == "" {
		t.Fatal("expected a request id in context")
	}
	if rec.Header().Get("X-Request-ID") != captured {
		t.Fatalf("header %q does not match context %q", rec.Header().Get("X-Request-ID"), captured)
	}
}

func TestRequestIDHonorsIncoming(t *testing.T) {
	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = requestctx.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-id")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if captured != "upstream-id" {
		t.Fatalf("expected upstream id to survive, got %q", captured)
	}
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	handler := RequireAuth(okHandler())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/employees", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name string
		role string
		want int
	}{
		{name: "admin allowed", role: "admin", want: http.StatusOK},
		{name: "manager allowed", role: "manager", want: http.StatusOK},
		{name: "employee forbidden", role: "employee", want: http.StatusForbidden},
	}

	handler := RequireRole("admin", "manager")(okHandler())
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/employees/1", nil)
			req = req.WithContext(WithUser(req.Context(), auth.UserContext{UserID: 1, Role: tc.role}))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestRateLimitBlocksOverLimit(t *testing.T) {
	limited := 0
	handler := RateLimit(2, time.Minute, func() { limited++ })(okHandler())

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d should pass, got %d", i, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.9:1234"
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if limited != 1 {
		t.Fatalf("expected limiter callback once, got %d", limited)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.10:1234"
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("other clients must not share the bucket, got %d", rec.Code)
	}
}

func TestRateLimitKeysByAuthenticatedUser(t *testing.T) {
	limiter := RateLimit(2, time.Minute, nil)(okHandler())
	// Simulates session resolution upstream of the limiter, as wired in the
	// router: the user bucket must win over the client address.
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter.ServeHTTP(w, r.WithContext(WithUser(r.Context(), auth.UserContext{UserID: 42, Role: "admin"})))
	})

	for i, addr := range []string{"10.0.0.1:1", "10.0.0.2:1", "10.0.0.3:1"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		req.Header.Set("X-Forwarded-For", addr)
		handler.ServeHTTP(rec, req)

		want := http.StatusOK
		if i == 2 {
			want = http.StatusTooManyRequests
		}
		if rec.Code != want {
			t.Fatalf("request %d: expected %d, got %d", i, want, rec.Code)
		}
	}
}

func TestClientIPForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "127.0.0.1:9999"
	req.Header.Set("X-Forwarded-For", "203.0.113.8, 10.0.0.1")
	if ip := ClientIP(req); ip != "203.0.113.8" {
		t.Fatalf("expected first forwarded hop, got %q", ip)
	}
}

func TestSessionTokenSources(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if sessionToken(req) != "" {
		t.Fatal("expected no token on bare request")
	}

	req.Header.Set("Authorization", "Bearer tok-abc")
	if sessionToken(req) != "tok-abc" {
		t.Fatalf("expected bearer token, got %q", sessionToken(req))
	}

	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "tok-cookie"})
	if sessionToken(req) != "tok-cookie" {
		t.Fatalf("cookie should win over header, got %q", sessionToken(req))
	}
}
