package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DukeRupert/plantcheck/internal/domain"
)

func newTestLimiter(t *testing.T, max int, window time.Duration) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(max, window, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(rl.Stop)
	return rl
}

// =============================================================================
// Rate Limiter Tests
// =============================================================================

func TestRateLimiter_Allow(t *testing.T) {
	rl := newTestLimiter(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("fourth request should be rate limited")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("other IPs should have their own budget")
	}
}

func TestRateLimiter_WindowExpiry(t *testing.T) {
	rl := newTestLimiter(t, 1, time.Minute)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.Allow("10.0.0.1") {
		t.Fatal("first request should be allowed")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("second request should be limited")
	}
	if got := rl.TimeUntilReset("10.0.0.1"); got != time.Minute {
		t.Errorf("expected reset in 1m, got %v", got)
	}

	now = now.Add(61 * time.Second)

	if !rl.Allow("10.0.0.1") {
		t.Error("request after window should be allowed")
	}
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := newTestLimiter(t, 1, time.Minute)
	rl.Stop()
	rl.Stop()
}

// =============================================================================
// Rate Limit Middleware Tests
// =============================================================================

func TestRateLimitMiddleware_BlocksAfterLimit(t *testing.T) {
	rl := newTestLimiter(t, 2, time.Minute)
	mw := NewRateLimitMiddleware(rl, slog.New(slog.NewTextHandler(io.Discard, nil)))

	wrapped := mw.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var rec *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/equipment", nil)
		req.RemoteAddr = "10.0.0.9:5555"
		rec = httptest.NewRecorder()
		wrapped.ServeHTTP(rec, req)
	}

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
	if !strings.Contains(rec.Body.String(), `"code":"`+domain.ERATELIMIT+`"`) {
		t.Errorf("expected JSON rate limit error, got: %s", rec.Body.String())
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr", nil, "10.1.1.1:4000", "10.1.1.1"},
		{"remote addr without port", nil, "10.1.1.1", "10.1.1.1"},
		{"x-forwarded-for first hop", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, "10.0.0.1:80", "203.0.113.5"},
		{"x-real-ip", map[string]string{"X-Real-IP": " 203.0.113.7 "}, "10.0.0.1:80", "203.0.113.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
