package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/RichieRish05/ImmiAI/internal/assistant"
	"github.com/RichieRish05/ImmiAI/internal/mailer"
	"github.com/RichieRish05/ImmiAI/internal/rag"
	"github.com/RichieRish05/ImmiAI/internal/reports"
	"github.com/RichieRish05/ImmiAI/internal/translate"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8080).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, [logging.New] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on rate-limited
	// endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// APIKey is the Bearer token required on all protected /api/* routes.
	// If empty, authentication is disabled (development mode).
	APIKey string
	// Reports is the activity report store backing /api/reports.
	// If nil, the report endpoints return 503.
	Reports reports.Store
	// Mailer sends the emergency video email. If nil, POST /api/emergency-video
	// returns 500 "email service not configured", matching an unset RESEND key.
	Mailer *mailer.Client
	// Translator handles legal document translation. If nil,
	// POST /api/translate-pdf returns 500 "Translation service not configured".
	Translator pdfTranslator
	// Registry receives the server's Prometheus metrics. If nil, the default
	// registry is used. Tests inject a fresh registry to stay hermetic.
	Registry *prometheus.Registry
}

// pdfTranslator is the interface handleTranslatePDF calls to translate an
// uploaded document. *translate.Translator satisfies it; tests inject a fake.
type pdfTranslator interface {
	// TranslatePDF extracts the document text and translates it to the target
	// language.
	TranslatePDF(ctx context.Context, doc io.ReaderAt, size int64, targetLanguage string) (*translate.Result, error)
}

// chatStreamer is the interface handleChat calls to stream a response.
// *assistant.Assistant satisfies it; tests inject a fake.
type chatStreamer interface {
	// Chat streams the assistant response for msgs to w and reports where the
	// injected context came from.
	Chat(ctx context.Context, msgs []assistant.Message, w io.Writer) (rag.Origin, error)
}

// Server is the HTTP server that exposes the assistant, report map, and
// emergency endpoints.
type Server struct {
	// streamer handles chat requests; the assistant in production, a fake in tests.
	streamer chatStreamer
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// metrics holds the Prometheus instruments owned by this server.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// chatRequest is the JSON body for POST /api/chat.
type chatRequest struct {
	// Messages is the full conversation so far, oldest first. The last entry
	// is the message being answered.
	Messages []assistant.Message `json:"messages"`
}

// errorResponse is the JSON error body returned by all non-streaming failures.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// createReportRequest is the JSON body for POST /api/reports.
// Lat and Lon are pointers so missing fields are distinguishable from zero.
type createReportRequest struct {
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
	City        string   `json:"city"`
	Description string   `json:"description,omitempty"`
}

// createReportResponse is the JSON response for POST /api/reports.
type createReportResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// emergencyVideoRequest is the JSON body for POST /api/emergency-video.
type emergencyVideoRequest struct {
	// VideoBase64 is the recording, optionally prefixed with a data URL header
	// (data:video/webm;base64,).
	VideoBase64 string `json:"videoBase64"`
	// LawyerEmail is the recipient attorney address.
	LawyerEmail string `json:"lawyerEmail"`
	// Timestamp is the recording start time in Unix milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// emergencyVideoResponse is the JSON response for POST /api/emergency-video.
type emergencyVideoResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Message   string `json:"message"`
}

// translateResponse is the JSON response for POST /api/translate-pdf.
// Field names match the translation UI's expectations.
type translateResponse struct {
	Success        bool   `json:"success"`
	TranslatedText string `json:"translated_text"`
	Text           string `json:"text"`
}
