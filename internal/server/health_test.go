package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakePinger implements Pinger with a configurable result.
type fakePinger struct {
	name string
	err  error
}

func (p *fakePinger) Ping(_ context.Context) error { return p.err }
func (p *fakePinger) Name() string                 { return p.name }

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeStreamer{}, nil)
	w := httptest.NewRecorder()
	s.handleHealth(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

func TestHandleReady_NoPingers(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeStreamer{}, nil)
	w := httptest.NewRecorder()
	s.handleReady(w, httptest.NewRequest(http.MethodGet, "/api/ready", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200 in liveness-only mode, got %d", w.Code)
	}
}

func TestHandleReady_AllHealthy(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeStreamer{}, &Config{
		Pingers: []Pinger{
			&fakePinger{name: "qdrant"},
			&fakePinger{name: "openai"},
		},
	})
	w := httptest.NewRecorder()
	s.handleReady(w, httptest.NewRequest(http.MethodGet, "/api/ready", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp readyResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !resp.Ready || len(resp.Checks) != 2 {
		t.Errorf("response = %+v", resp)
	}
}

func TestHandleReady_DependencyDown(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeStreamer{}, &Config{
		Pingers: []Pinger{
			&fakePinger{name: "qdrant"},
			&fakePinger{name: "openai", err: fmt.Errorf("connection refused")},
		},
	})
	w := httptest.NewRecorder()
	s.handleReady(w, httptest.NewRequest(http.MethodGet, "/api/ready", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	var resp readyResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Ready {
		t.Error("ready must be false when a probe fails")
	}
	if len(resp.Checks) != 2 || resp.Checks[1].OK || resp.Checks[1].Error == "" {
		t.Errorf("checks = %+v", resp.Checks)
	}
}

func TestMultiPinger_FirstErrorWins(t *testing.T) {
	t.Parallel()

	mp := NewMultiPinger(
		&fakePinger{name: "a"},
		&fakePinger{name: "b", err: fmt.Errorf("down")},
		&fakePinger{name: "c", err: fmt.Errorf("also down")},
	)
	err := mp.Ping(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got != "b: down" {
		t.Errorf("error = %q, want prefix from first failing pinger", got)
	}
}
