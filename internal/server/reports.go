package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/RichieRish05/ImmiAI/internal/logging"
	"github.com/RichieRish05/ImmiAI/internal/reports"
)

// handleReportsList handles GET /api/reports. It returns the 100 most recent
// activity reports, newest-first, for the safety map.
func (s *Server) handleReportsList(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Reports == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Reports store not configured", "")
		return
	}

	list, err := s.cfg.Reports.Recent(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("reports list failed", slog.Any("error", err))
		writeJSONError(w, http.StatusInternalServerError, "Failed to fetch reports", "")
		return
	}
	if list == nil {
		// Clients expect an array, not null.
		list = []reports.Report{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// handleReportsCreate handles POST /api/reports. New reports are anonymous
// and always start unverified.
func (s *Server) handleReportsCreate(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Reports == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Reports store not configured", "")
		return
	}

	var req createReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}
	if req.Lat == nil || req.Lon == nil || req.City == "" {
		writeJSONError(w, http.StatusBadRequest, "Missing required fields: lat, lon, city", "")
		return
	}

	report := &reports.Report{
		Lat:         *req.Lat,
		Lon:         *req.Lon,
		City:        req.City,
		Description: req.Description,
	}
	id, err := s.cfg.Reports.Create(r.Context(), report)
	if err != nil {
		logging.FromContext(r.Context()).Error("report create failed", slog.Any("error", err))
		writeJSONError(w, http.StatusInternalServerError, "Failed to create report", "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(createReportResponse{
		Success: true,
		ID:      strconv.FormatInt(id, 10),
	})
}
