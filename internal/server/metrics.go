// Package server — metrics.go registers all Prometheus metrics for the HTTP
// server and exposes helpers used by handlers and middleware.
package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// serverMetrics holds all Prometheus metrics owned by the HTTP server.
// A single instance is created in New and stored on Server so that tests can
// inject a fresh prometheus.Registry without polluting the default one.
type serverMetrics struct {
	// chatRequestsTotal counts completed /api/chat requests, partitioned by
	// outcome: "ok" or "error".
	chatRequestsTotal *prometheus.CounterVec

	// chatDurationSeconds records the wall-clock duration of each /api/chat
	// request from first byte received to stream completion.
	chatDurationSeconds *prometheus.HistogramVec

	// chatActiveStreams is the number of /api/chat SSE streams currently open.
	chatActiveStreams prometheus.Gauge

	// retrievalRequestsTotal counts chat turns by the origin of the injected
	// context: "vector-store", "fallback", or "none".
	retrievalRequestsTotal *prometheus.CounterVec

	// httpRequestsTotal counts all HTTP requests handled by the mux,
	// partitioned by method, handler name, and status code.
	httpRequestsTotal *prometheus.CounterVec

	// httpDurationSeconds records the latency of all HTTP requests.
	httpDurationSeconds *prometheus.HistogramVec
}

// newServerMetrics registers all server metrics against reg and returns the
// populated serverMetrics. promauto.With(reg) registers into the provided
// registry rather than the global default, keeping unit tests hermetic.
func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	factory := promauto.With(reg)

	return &serverMetrics{
		chatRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "immiai",
			Subsystem: "chat",
			Name:      "requests_total",
			Help:      "Total number of /api/chat requests completed, partitioned by outcome.",
		}, []string{"outcome"}),

		chatDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "immiai",
			Subsystem: "chat",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of /api/chat requests from receipt to stream completion.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}, []string{"outcome"}),

		chatActiveStreams: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "immiai",
			Subsystem: "chat",
			Name:      "active_streams",
			Help:      "Number of /api/chat SSE streams currently open.",
		}),

		retrievalRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "immiai",
			Subsystem: "retrieval",
			Name:      "requests_total",
			Help:      "Total number of chat turns, partitioned by context origin.",
		}, []string{"origin"}),

		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "immiai",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled by the server, partitioned by method, handler, and status code.",
		}, []string{"method", "handler", "code"}),

		httpDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "immiai",
			Subsystem: "http",
			Name:      "duration_seconds",
			Help:      "Latency of HTTP requests handled by the server.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "handler"}),
	}
}

// instrument wraps an endpoint handler with request count and latency metrics
// labelled by the logical handler name rather than the raw URL path.
func (s *Server) instrument(name string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		start := time.Now()
		next.ServeHTTP(rw, r)
		elapsed := time.Since(start)

		s.metrics.httpRequestsTotal.WithLabelValues(r.Method, name, strconv.Itoa(rw.status)).Inc()
		s.metrics.httpDurationSeconds.WithLabelValues(r.Method, name).Observe(elapsed.Seconds())
	})
}
