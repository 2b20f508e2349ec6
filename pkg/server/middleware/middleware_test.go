package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sentinel-hq/sentinel/pkg/telemetry/logging"
)

func TestRecoveryMiddleware(t *testing.T) {
	t.Run("recovers from panic", func(t *testing.T) {
		wrapped := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("test panic")
		}))

		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Status code = %v, want %v", w.Code, http.StatusInternalServerError)
		}
		if !strings.Contains(w.Body.String(), "internal_error") {
			t.Errorf("Expected JSON error body, got %s", w.Body.String())
		}
	})

	t.Run("passes through normal requests", func(t *testing.T) {
		wrapped := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("OK"))
		}))

		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		if w.Code != http.StatusOK || w.Body.String() != "OK" {
			t.Errorf("Expected 200 OK, got %d %q", w.Code, w.Body.String())
		}
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	wrapped := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.GetRequestID(r.Context())
	}))

	t.Run("generates request ID when not provided", func(t *testing.T) {
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		id := w.Header().Get(RequestIDHeader)
		if len(id) != 36 {
			t.Errorf("Expected a UUID request ID, got %q", id)
		}
		if seen != id {
			t.Errorf("Expected context ID %q, got %q", id, seen)
		}
	})

	t.Run("uses provided request ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, "custom-request-id-12345")
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, req)

		if got := w.Header().Get(RequestIDHeader); got != "custom-request-id-12345" {
			t.Errorf("Expected provided ID echoed, got %q", got)
		}
		if seen != "custom-request-id-12345" {
			t.Errorf("Expected provided ID in context, got %q", seen)
		}
	})
}

func TestLoggingMiddleware_CapturesStatus(t *testing.T) {
	wrapped := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	if w.Code != http.StatusTeapot {
		t.Errorf("Expected first status kept, got %d", w.Code)
	}
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		allowed    []string
		method     string
		origin     string
		preflight  bool
		wantStatus int
		wantOrigin string
	}{
		{"disabled", nil, http.MethodGet, "https://app.example", false, http.StatusOK, ""},
		{"allowed origin", []string{"https://app.example"}, http.MethodGet, "https://app.example", false, http.StatusOK, "https://app.example"},
		{"other origin", []string{"https://app.example"}, http.MethodGet, "https://evil.example", false, http.StatusOK, ""},
		{"wildcard", []string{"*"}, http.MethodGet, "https://any.example", false, http.StatusOK, "*"},
		{"preflight", []string{"https://app.example"}, http.MethodOptions, "https://app.example", true, http.StatusNoContent, "https://app.example"},
		{"no origin", []string{"*"}, http.MethodGet, "", false, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/v1/insights", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}

			w := httptest.NewRecorder()
			CORSMiddleware(tt.allowed)(next).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Expected allow origin %q, got %q", tt.wantOrigin, got)
			}
			if tt.preflight && w.Header().Get("Access-Control-Allow-Methods") == "" {
				t.Error("Expected allow methods on preflight")
			}
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("limits per client", func(t *testing.T) {
		mw, err := RateLimitMiddleware("2-M")
		if err != nil {
			t.Fatalf("RateLimitMiddleware failed: %v", err)
		}
		handler := mw(next)

		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/ask", nil))
			codes = append(codes, w.Code)
		}
		if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
			t.Errorf("Expected first two requests allowed, got %v", codes)
		}
		if codes[2] != http.StatusTooManyRequests {
			t.Errorf("Expected third request limited, got %d", codes[2])
		}
	})

	t.Run("empty rate disables", func(t *testing.T) {
		mw, err := RateLimitMiddleware("")
		if err != nil {
			t.Fatalf("RateLimitMiddleware failed: %v", err)
		}
		for i := 0; i < 5; i++ {
			w := httptest.NewRecorder()
			mw(next).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/ask", nil))
			if w.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", w.Code)
			}
		}
	})

	t.Run("invalid rate", func(t *testing.T) {
		if _, err := RateLimitMiddleware("lots"); err == nil {
			t.Error("Expected error for invalid rate")
		}
	})
}
