// Package metrics provides Prometheus metrics for the typesmith HTTP server.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNamespace prefixes every metric name when none is given.
const DefaultNamespace = "typesmith"

// Collector holds the HTTP request metrics.
type Collector struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	ResponseBytes    *prometheus.CounterVec
}

// NewWithRegistry creates a collector registered with reg.
// Tests pass a fresh registry to avoid global state.
func NewWithRegistry(reg prometheus.Registerer, namespace string) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)

	return &Collector{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests served",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests currently being served",
			},
		),
		ResponseBytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_response_bytes_total",
				Help:      "Total bytes written in HTTP responses",
			},
			[]string{"route"},
		),
	}
}

// Middleware records request metrics for every request except those to
// skipPaths. Routes are labelled with the chi route pattern once routing
// has resolved it, so /shapes/{name} is one series regardless of name.
func (c *Collector) Middleware(skipPaths ...string) func(next http.Handler) http.Handler {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			c.RequestsInFlight.Inc()
			defer c.RequestsInFlight.Dec()

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := routePattern(r)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			c.RequestsTotal.WithLabelValues(r.Method, route, StatusClass(status)).Inc()
			c.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
			c.ResponseBytes.WithLabelValues(route).Add(float64(ww.BytesWritten()))
		})
	}
}

// routePattern returns the matched chi pattern, falling back to a
// normalized request path when the router did not match.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return NormalizePath(r.URL.Path)
}

// StatusClass collapses a status code to its class, e.g. 404 -> "4xx".
func StatusClass(code int) string {
	if code < 100 || code > 599 {
		return strconv.Itoa(code)
	}
	return strconv.Itoa(code/100) + "xx"
}

// NormalizePath reduces cardinality for unmatched paths.
// Segments that look like numbers are replaced with :id and long paths
// are truncated.
// e.g., /shapes/123/x -> /shapes/:id/x
func NormalizePath(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if s == "" {
			continue
		}
		if _, err := strconv.ParseUint(s, 10, 64); err == nil {
			segments[i] = ":id"
		}
	}
	path = strings.Join(segments, "/")
	if len(path) > 50 {
		return path[:50] + "..."
	}
	return path
}
