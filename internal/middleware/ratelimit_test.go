package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRateLimiter_CapsWithinWindow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 1; i <= 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sync", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("Request %d: expected 200, got %d", i, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sync", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429 past the limit, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "RATE_LIMITED") {
		t.Errorf("Expected RATE_LIMITED code, got %s", rec.Body.String())
	}
}

func TestRateLimiter_BucketsIgnoreSourcePort(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest(http.MethodPost, "/api/sync", nil)
	first.RemoteAddr = "203.0.113.9:40001"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	// Same client on a new connection shares the bucket.
	second := httptest.NewRequest(http.MethodPost, "/api/sync", nil)
	second.RemoteAddr = "203.0.113.9:40002"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429 for same host on a new port, got %d", rec.Code)
	}
}

func TestRateLimiter_CustomKeyFunc(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	rl.SetKeyFunc(func(r *http.Request) string {
		return r.Header.Get("Authorization")
	})
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(token string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/sync", nil)
		req.Header.Set("Authorization", token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("Bearer a"); code != http.StatusOK {
		t.Fatalf("Expected 200 for first caller, got %d", code)
	}
	if code := send("Bearer b"); code != http.StatusOK {
		t.Fatalf("Expected 200 for a distinct caller, got %d", code)
	}
	if code := send("Bearer a"); code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429 for the repeat caller, got %d", code)
	}
}
