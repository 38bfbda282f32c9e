package server

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiter_AllowsWithinBurst(t *testing.T) {
	t.Parallel()

	rl, stop := newRateLimiter(1, 3, slog.Default())
	t.Cleanup(stop)
	h := rl.middleware(okHandler)

	for i := range 3 {
		req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}
}

func TestRateLimiter_RejectsBeyondBurst(t *testing.T) {
	t.Parallel()

	rl, stop := newRateLimiter(0.001, 2, slog.Default())
	t.Cleanup(stop)
	h := rl.middleware(okHandler)

	for range 2 {
		req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
		req.RemoteAddr = "10.0.0.2:1234"
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

func TestRateLimiter_PerIPIsolation(t *testing.T) {
	t.Parallel()

	rl, stop := newRateLimiter(0.001, 1, slog.Default())
	t.Cleanup(stop)
	h := rl.middleware(okHandler)

	// Exhaust the first IP's bucket.
	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	req.RemoteAddr = "10.0.0.3:1234"
	h.ServeHTTP(httptest.NewRecorder(), req)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("first IP should be limited, got %d", w.Code)
	}

	// A different IP still has a full bucket.
	req2 := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	req2.RemoteAddr = "10.0.0.4:1234"
	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, req2)
	if w2.Code != http.StatusOK {
		t.Errorf("second IP should not be limited, got %d", w2.Code)
	}
}

func TestRateLimiter_EvictsStaleEntries(t *testing.T) {
	t.Parallel()

	rl, stop := newRateLimiter(1, 1, slog.Default())
	t.Cleanup(stop)

	rl.getLimiter("10.0.0.5")
	rl.mu.Lock()
	rl.limiters["10.0.0.5"].lastSeen = time.Now().Add(-10 * time.Minute)
	rl.mu.Unlock()

	rl.evict()

	rl.mu.Lock()
	_, ok := rl.limiters["10.0.0.5"]
	rl.mu.Unlock()
	if ok {
		t.Error("stale entry should have been evicted")
	}
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	cases := []struct {
		addr string
		want string
	}{
		{"10.0.0.1:1234", "10.0.0.1"},
		{"[::1]:8080", "[::1]"},
		{"noport", "noport"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tc.addr
		if got := clientIP(req); got != tc.want {
			t.Errorf("clientIP(%q) = %q, want %q", tc.addr, got, tc.want)
		}
	}
}
