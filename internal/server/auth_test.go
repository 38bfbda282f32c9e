package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// okHandler responds 200 to anything.
var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestAuthMiddleware_DisabledWhenNoKey(t *testing.T) {
	t.Parallel()

	h := authMiddleware("", okHandler)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/reports", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with auth disabled, got %d", w.Code)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	t.Parallel()

	h := authMiddleware("secret", okHandler)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/reports", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if w.Header().Get("WWW-Authenticate") == "" {
		t.Error("expected WWW-Authenticate challenge")
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	t.Parallel()

	h := authMiddleware("secret", okHandler)
	req := httptest.NewRequest(http.MethodGet, "/api/reports", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	t.Parallel()

	h := authMiddleware("secret", okHandler)
	req := httptest.NewRequest(http.MethodGet, "/api/reports", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	cases := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"Bearer  padded ", "padded"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		if got := bearerToken(req); got != tc.want {
			t.Errorf("bearerToken(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

// TestAuth_HealthAndMetricsStayOpen verifies the exemption routing: probes and
// scrapers must work without credentials while API routes stay protected.
func TestAuth_HealthAndMetricsStayOpen(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeStreamer{}, &Config{APIKey: "secret"})
	h := s.Handler()

	for _, path := range []string{"/api/health", "/metrics"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected 200 without credentials, got %d", path, w.Code)
		}
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/reports", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("/api/reports: expected 401 without credentials, got %d", w.Code)
	}
}
