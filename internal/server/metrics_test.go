package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/RichieRish05/ImmiAI/internal/rag"
)

func TestMetrics_ChatOutcomeCounted(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	s, err := New(&fakeStreamer{response: "hi", origin: rag.OriginFallback}, &Config{Registry: reg})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.stopRL)

	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"messages":[{"role":"user","content":"rights?"}]}`))
	s.handleChat(httptest.NewRecorder(), req)

	if got := testutil.ToFloat64(s.metrics.chatRequestsTotal.WithLabelValues("ok")); got != 1 {
		t.Errorf("chat ok counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(s.metrics.retrievalRequestsTotal.WithLabelValues("fallback")); got != 1 {
		t.Errorf("retrieval fallback counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(s.metrics.chatActiveStreams); got != 0 {
		t.Errorf("active streams gauge = %v, want 0 after completion", got)
	}
}

func TestMetrics_ErrorOutcomeCounted(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	s, err := New(&fakeStreamer{err: http.ErrAbortHandler, origin: rag.OriginNone}, &Config{Registry: reg})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.stopRL)

	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"messages":[{"role":"user","content":"hi"}]}`))
	s.handleChat(httptest.NewRecorder(), req)

	if got := testutil.ToFloat64(s.metrics.chatRequestsTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("chat error counter = %v, want 1", got)
	}
}

func TestMetrics_Endpoint(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeStreamer{response: "hi"}, nil)
	h := s.Handler()

	// Generate one instrumented request first.
	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"messages":[{"role":"user","content":"hi"}]}`))
	h.ServeHTTP(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", w.Code)
	}
	body := w.Body.String()
	for _, metric := range []string{
		"immiai_chat_requests_total",
		"immiai_retrieval_requests_total",
		"immiai_http_requests_total",
	} {
		if !strings.Contains(body, metric) {
			t.Errorf("metrics output missing %s", metric)
		}
	}
}
