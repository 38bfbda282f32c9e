package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/RichieRish05/ImmiAI/internal/logging"
)

// handleChat handles POST /api/chat requests. It streams the assistant's
// response using Server-Sent Events (SSE) so the UI can render tokens as
// they arrive.
//
// SSE headers are written lazily on the first streamed chunk. Failures before
// anything was streamed produce a plain JSON 500; failures mid-stream are
// reported in-band with an "event: error" frame since the status line is
// already gone.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid messages format", "")
		return
	}
	if len(req.Messages) == 0 {
		writeJSONError(w, http.StatusBadRequest, "Invalid messages format", "")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "streaming not supported", "")
		return
	}

	sw := &sseWriter{w: w, flusher: flusher}

	s.metrics.chatActiveStreams.Inc()
	defer s.metrics.chatActiveStreams.Dec()

	start := time.Now()
	origin, err := s.streamer.Chat(r.Context(), req.Messages, sw)
	elapsed := time.Since(start)

	s.metrics.retrievalRequestsTotal.WithLabelValues(string(origin)).Inc()

	if err != nil {
		s.metrics.chatRequestsTotal.WithLabelValues("error").Inc()
		s.metrics.chatDurationSeconds.WithLabelValues("error").Observe(elapsed.Seconds())
		logging.FromContext(r.Context()).Error("chat failed", slog.Any("error", err))

		if !sw.started {
			writeJSONError(w, http.StatusInternalServerError, "Internal server error", err.Error())
			return
		}
		fmt.Fprintf(w, "event: error\ndata: %s\n\n", err.Error())
		flusher.Flush()
		return
	}

	s.metrics.chatRequestsTotal.WithLabelValues("ok").Inc()
	s.metrics.chatDurationSeconds.WithLabelValues("ok").Observe(elapsed.Seconds())

	sw.begin()
	// Signal stream completion.
	fmt.Fprintf(w, "event: done\ndata: [DONE]\n\n")
	flusher.Flush()
}

// writeJSONError writes a JSON error body with the given status.
func writeJSONError(w http.ResponseWriter, status int, msg, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg, Details: details})
}

// sseWriter wraps an http.ResponseWriter to emit Server-Sent Event data
// frames. The SSE response headers are deferred until the first write so the
// handler can still return a regular error response when the stream never
// produced any output.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	// started is true once the SSE headers have been written.
	started bool
}

// begin writes the SSE response headers if they have not been written yet.
func (s *sseWriter) begin() {
	if s.started {
		return
	}
	s.started = true
	s.w.Header().Set("Content-Type", "text/event-stream")
	s.w.Header().Set("Cache-Control", "no-cache")
	s.w.Header().Set("Connection", "keep-alive")
	s.w.Header().Set("Access-Control-Allow-Origin", "*")
	s.w.WriteHeader(http.StatusOK)
}

// Write formats p as one SSE event and flushes to the client. Every newline
// in p becomes a line break between "data:" lines, including trailing ones:
// the SSE decoder joins data lines with "\n" and strips exactly one trailing
// newline from the event, so the split below round-trips the chunk bytes
// exactly. Trimming here would drop paragraph breaks that land on a chunk
// boundary.
func (s *sseWriter) Write(p []byte) (n int, err error) {
	s.begin()

	lines := strings.Split(string(p), "\n")
	var buf strings.Builder
	for _, line := range lines {
		buf.WriteString("data: ")
		buf.WriteString(line)
		buf.WriteString("\n")
	}
	buf.WriteString("\n")
	if _, err = fmt.Fprint(s.w, buf.String()); err != nil {
		return 0, err
	}
	s.flusher.Flush()
	return len(p), nil
}
