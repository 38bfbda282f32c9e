// Package server implements the HTTP server that exposes the immigration
// rights assistant via a REST/SSE API, together with the activity report map
// and the emergency video endpoint.
// The server is started by the `immiai serve` CLI command.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RichieRish05/ImmiAI/internal/logging"
)

// New constructs a Server from the provided chat streamer and config.
func New(streamer chatStreamer, cfg *Config) (*Server, error) {
	if streamer == nil {
		return nil, fmt.Errorf("server: chat streamer must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		// WriteTimeout must be long enough for streaming responses.
		cfg.WriteTimeout = 5 * time.Minute
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.New()
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = defaultRateBurst
	}

	var reg prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if cfg.Registry != nil {
		reg = cfg.Registry
		gatherer = cfg.Registry
	}

	s := &Server{
		streamer: streamer,
		cfg:      cfg,
		log:      cfg.Logger,
		pingers:  cfg.Pingers,
		metrics:  newServerMetrics(reg),
	}

	if cfg.APIKey == "" {
		s.log.Warn("server: API key not set — authentication is disabled")
	}

	rl, stopRL := newRateLimiter(cfg.RateLimit, cfg.RateBurst, s.log)
	s.stopRL = stopRL

	mux := http.NewServeMux()
	mux.Handle("POST /api/chat", s.instrument("chat", http.HandlerFunc(s.handleChat)))
	mux.Handle("GET /api/reports", s.instrument("reports_list", http.HandlerFunc(s.handleReportsList)))
	mux.Handle("POST /api/reports", s.instrument("reports_create", http.HandlerFunc(s.handleReportsCreate)))
	mux.Handle("POST /api/emergency-video", s.instrument("emergency_video", http.HandlerFunc(s.handleEmergencyVideo)))
	mux.Handle("POST /api/translate-pdf", s.instrument("translate_pdf", http.HandlerFunc(s.handleTranslatePDF)))
	mux.Handle("GET /api/health", s.instrument("health", http.HandlerFunc(s.handleHealth)))
	mux.Handle("GET /api/ready", s.instrument("ready", http.HandlerFunc(s.handleReady)))
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Middleware order, outermost first: request logging (assigns request_id),
	// rate limiting, then auth. The health and metrics endpoints stay open so
	// probes and scrapers work without credentials.
	var handler http.Handler = mux
	handler = authExempt(map[string]bool{
		"GET /api/health": true,
		"GET /metrics":    true,
	}, authMiddleware(cfg.APIKey, handler), handler)
	handler = rl.middleware(handler)
	handler = requestLogger(s.log, handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s, nil
}

// Handler returns the server's root HTTP handler. Exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening and serving HTTP requests. It blocks until the
// context is cancelled, then performs a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("server listening", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.stopRL()
		return fmt.Errorf("server: listen error: %w", err)
	case <-ctx.Done():
		s.stopRL()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: graceful shutdown failed: %w", err)
		}
		return nil
	}
}

// authExempt routes the named "METHOD /path" patterns around the
// authenticated handler so probes and scrapers stay credential-free.
func authExempt(open map[string]bool, authed, direct http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if open[r.Method+" "+r.URL.Path] {
			direct.ServeHTTP(w, r)
			return
		}
		authed.ServeHTTP(w, r)
	})
}
