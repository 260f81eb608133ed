package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// =============================================================================
// Request Logging Middleware Tests
// =============================================================================

func TestRequestLoggingMiddleware_LogsBasicInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	mw := NewRequestLoggingMiddleware(logger)

	wrapped := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest("POST", "/equipment", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	req.Header.Set("User-Agent", "fleet-app/2.1")
	rec := httptest.NewRecorder()

	wrapped.ServeHTTP(rec, req)

	logOutput := buf.String()

	for _, want := range []string{"POST", "/equipment", "status=201", "duration_ms", "ip=192.168.1.1", "fleet-app/2.1", "request_id="} {
		if !strings.Contains(logOutput, want) {
			t.Errorf("log should contain %q, got: %s", want, logOutput)
		}
	}
}

func TestRequestLoggingMiddleware_LogsErrorStatusAsWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	wrapped := NewRequestLoggingMiddleware(logger).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/compliance", nil))

	logOutput := buf.String()
	if !strings.Contains(logOutput, "level=WARN") {
		t.Errorf("5xx should be logged at WARN, got: %s", logOutput)
	}
	if !strings.Contains(logOutput, "status=500") {
		t.Errorf("log should contain status 500, got: %s", logOutput)
	}
}

func TestRequestLoggingMiddleware_RedactsSensitiveQueryParams(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	wrapped := NewRequestLoggingMiddleware(logger).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest("GET", "/equipment?limit=20&api_key=abc123&token=xyz789", nil)
	wrapped.ServeHTTP(httptest.NewRecorder(), req)

	logOutput := buf.String()
	if strings.Contains(logOutput, "abc123") || strings.Contains(logOutput, "xyz789") {
		t.Errorf("log should not contain secret values, got: %s", logOutput)
	}
	if !strings.Contains(logOutput, "limit=20") {
		t.Errorf("log should keep non-sensitive params, got: %s", logOutput)
	}
	if !strings.Contains(logOutput, "[REDACTED]") {
		t.Errorf("log should show redaction marker, got: %s", logOutput)
	}
}

func TestRequestLoggingMiddleware_RequestID(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	var seen string
	wrapped := NewRequestLoggingMiddleware(logger).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	}))

	t.Run("propagates incoming id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/equipment", nil)
		req.Header.Set(RequestIDHeader, "req-42")
		rec := httptest.NewRecorder()

		wrapped.ServeHTTP(rec, req)

		if seen != "req-42" {
			t.Errorf("expected request id req-42 in context, got %q", seen)
		}
		if got := rec.Header().Get(RequestIDHeader); got != "req-42" {
			t.Errorf("expected response header req-42, got %q", got)
		}
	})

	t.Run("generates id when missing", func(t *testing.T) {
		rec := httptest.NewRecorder()

		wrapped.ServeHTTP(rec, httptest.NewRequest("GET", "/equipment", nil))

		if seen == "" {
			t.Error("expected generated request id")
		}
		if rec.Header().Get(RequestIDHeader) != seen {
			t.Errorf("response header %q does not match context id %q", rec.Header().Get(RequestIDHeader), seen)
		}
	})
}

func TestRequestLoggingMiddleware_RecoversPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	wrapped := NewRequestLoggingMiddleware(logger).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("nil map write")
	}))

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest("POST", "/inspections/1/submit", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "nil map write") {
		t.Errorf("response exposes panic value: %s", rec.Body.String())
	}
	if !strings.Contains(buf.String(), "panic serving request") {
		t.Errorf("panic should be logged, got: %s", buf.String())
	}
}

func TestRequestLoggingMiddleware_SkipsNoisyPaths(t *testing.T) {
	for _, path := range []string{"/health", "/metrics"} {
		t.Run(path, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			called := false
			wrapped := NewRequestLoggingMiddleware(logger).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))

			if !called {
				t.Error("handler should still be called")
			}
			if buf.Len() != 0 {
				t.Errorf("expected no log output, got: %s", buf.String())
			}
		})
	}
}
