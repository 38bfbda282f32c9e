package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/RichieRish05/ImmiAI/internal/reports"
)

// openTestReports opens an in-memory reports store.
func openTestReports(t *testing.T) *reports.SQLiteStore {
	t.Helper()
	store, err := reports.Open(":memory:")
	if err != nil {
		t.Fatalf("open reports store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestHandleReports_CreateAndList(t *testing.T) {
	t.Parallel()

	store := openTestReports(t)
	s := newTestServer(t, &fakeStreamer{}, &Config{Reports: store})

	req := httptest.NewRequest(http.MethodPost, "/api/reports",
		strings.NewReader(`{"lat":34.05,"lon":-118.24,"city":"Los Angeles","description":"checkpoint"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.handleReportsCreate(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("create: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var created createReportResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if !created.Success || created.ID == "" {
		t.Errorf("create response = %+v", created)
	}

	w = httptest.NewRecorder()
	s.handleReportsList(w, httptest.NewRequest(http.MethodGet, "/api/reports", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}
	var list []reports.Report
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(list) != 1 || list[0].City != "Los Angeles" {
		t.Errorf("list = %+v", list)
	}
	if list[0].Verified {
		t.Error("new reports must be unverified")
	}
}

func TestHandleReports_CreateMissingFields(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeStreamer{}, &Config{Reports: openTestReports(t)})

	cases := []string{
		`{"lon":-118.24,"city":"LA"}`,
		`{"lat":34.05,"city":"LA"}`,
		`{"lat":34.05,"lon":-118.24}`,
	}
	for _, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/reports", strings.NewReader(body))
		w := httptest.NewRecorder()
		s.handleReportsCreate(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, w.Code)
		}
		if !strings.Contains(w.Body.String(), "Missing required fields") {
			t.Errorf("body %s: expected missing-fields error, got %s", body, w.Body.String())
		}
	}
}

func TestHandleReports_ZeroCoordinatesAccepted(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeStreamer{}, &Config{Reports: openTestReports(t)})

	req := httptest.NewRequest(http.MethodPost, "/api/reports",
		strings.NewReader(`{"lat":0,"lon":0,"city":"Null Island"}`))
	w := httptest.NewRecorder()
	s.handleReportsCreate(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("explicit zero coordinates must be valid, got %d: %s", w.Code, w.Body.String())
	}
}

func TestHandleReports_EmptyListIsArray(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeStreamer{}, &Config{Reports: openTestReports(t)})

	w := httptest.NewRecorder()
	s.handleReportsList(w, httptest.NewRequest(http.MethodGet, "/api/reports", nil))

	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("empty store must serialize as [], got %q", got)
	}
}

func TestHandleReports_StoreNotConfigured(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeStreamer{}, nil)

	w := httptest.NewRecorder()
	s.handleReportsList(w, httptest.NewRequest(http.MethodGet, "/api/reports", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("list: expected 503, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	s.handleReportsCreate(w, httptest.NewRequest(http.MethodPost, "/api/reports",
		strings.NewReader(`{"lat":1,"lon":1,"city":"x"}`)))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("create: expected 503, got %d", w.Code)
	}
}
