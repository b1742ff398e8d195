// Package metrics provides Prometheus instrumentation for the diagram engine.
package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RendersTotal counts diagram draws, partitioned by kind and output format.
	RendersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "econgraph_renders_total",
		Help: "Total number of diagram renders",
	}, []string{"kind", "format"})

	// RenderLatency tracks draw plus encode time per kind and format.
	RenderLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "econgraph_render_latency_seconds",
		Help:    "Diagram render latency in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"kind", "format"})

	// RenderErrors counts renders that failed to draw or encode.
	RenderErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "econgraph_render_errors_total",
		Help: "Diagram renders that failed",
	}, []string{"kind", "format"})

	// SolverIterations is the distribution of bisection steps per solve.
	SolverIterations = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "econgraph_solver_iterations",
		Help:    "Bisection iterations per equilibrium solve",
		Buckets: []float64{1, 5, 10, 15, 20, 30, 50, 100},
	})

	// SolverNonConverged counts solves that exhausted their iteration budget
	// and fell back to the averaged estimate.
	SolverNonConverged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "econgraph_solver_nonconverged_total",
		Help: "Equilibrium solves that did not converge",
	})

	// ExportsTotal counts downloads by export format.
	ExportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "econgraph_exports_total",
		Help: "Total number of exports",
	}, []string{"format"})

	// SnapshotsCreated counts archived snapshots by kind.
	SnapshotsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "econgraph_snapshots_created_total",
		Help: "Snapshots archived",
	}, []string{"kind"})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "econgraph_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "econgraph_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "econgraph_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// ObserveRender records one render of kind in format that took d.
func ObserveRender(kind, format string, d time.Duration, err error) {
	RendersTotal.WithLabelValues(kind, format).Inc()
	RenderLatency.WithLabelValues(kind, format).Observe(d.Seconds())
	if err != nil {
		RenderErrors.WithLabelValues(kind, format).Inc()
	}
}

// ObserveSolve records one solver run.
func ObserveSolve(iterations int, converged bool) {
	SolverIterations.Observe(float64(iterations))
	if !converged {
		SolverNonConverged.Inc()
	}
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		// Use the route pattern for path label to avoid high cardinality.
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrader take over the connection.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("metrics: response writer does not support hijacking")
	}
	return h.Hijack()
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
