package exporter

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusExporter exposes metrics for Prometheus scraping.
type PrometheusExporter struct {
	registry *prometheus.Registry
	prefix   string

	// Metrics
	unitsTotal      prometheus.Counter
	indexesTotal    prometheus.Counter
	runsTotal       *prometheus.CounterVec
	durationSeconds prometheus.Histogram
	instantiations  *prometheus.CounterVec
}

// PrometheusConfig configures the Prometheus exporter.
type PrometheusConfig struct {
	// Prefix is added to all metric names (default: "typesmith").
	Prefix string

	// Labels are added to all metrics.
	Labels map[string]string

	// Buckets for the generation duration histogram (in seconds).
	// Default: [0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10]
	Buckets []float64

	// RuntimeMetrics adds the Go and process collectors.
	RuntimeMetrics bool
}

// DefaultPrometheusBuckets returns default histogram buckets.
func DefaultPrometheusBuckets() []float64 {
	return []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
}

// NewPrometheusExporter creates a new Prometheus exporter with its own
// registry.
func NewPrometheusExporter(cfg PrometheusConfig) *PrometheusExporter {
	if cfg.Prefix == "" {
		cfg.Prefix = "typesmith"
	}
	if cfg.Buckets == nil {
		cfg.Buckets = DefaultPrometheusBuckets()
	}

	reg := prometheus.NewRegistry()
	labels := prometheus.Labels(cfg.Labels)

	e := &PrometheusExporter{
		registry: reg,
		prefix:   cfg.Prefix,
	}

	e.unitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name:        cfg.Prefix + "_generated_units_total",
		Help:        "Total number of generated type files",
		ConstLabels: labels,
	})

	e.indexesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name:        cfg.Prefix + "_generated_indexes_total",
		Help:        "Total number of generated index files",
		ConstLabels: labels,
	})

	e.runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        cfg.Prefix + "_generation_runs_total",
			Help:        "Total number of generation runs by outcome",
			ConstLabels: labels,
		},
		[]string{"outcome"},
	)

	e.durationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        cfg.Prefix + "_generation_duration_seconds",
		Help:        "Generation run duration in seconds",
		Buckets:     cfg.Buckets,
		ConstLabels: labels,
	})

	e.instantiations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        cfg.Prefix + "_instantiations_total",
			Help:        "Total number of instantiations by shape and outcome",
			ConstLabels: labels,
		},
		[]string{"shape", "outcome"},
	)

	// Register all metrics
	reg.MustRegister(
		e.unitsTotal,
		e.indexesTotal,
		e.runsTotal,
		e.durationSeconds,
		e.instantiations,
	)

	if cfg.RuntimeMetrics {
		reg.MustRegister(collectors.NewGoCollector())
		reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	return e
}

// Name returns the exporter name.
func (e *PrometheusExporter) Name() string {
	return "prometheus"
}

// ObserveGeneration records one generation run.
func (e *PrometheusExporter) ObserveGeneration(units, indexes int, elapsed time.Duration, err error) {
	e.unitsTotal.Add(float64(units))
	e.indexesTotal.Add(float64(indexes))
	e.runsTotal.WithLabelValues(Outcome(err)).Inc()
	e.durationSeconds.Observe(elapsed.Seconds())
}

// ObserveInstantiation records one instantiation.
func (e *PrometheusExporter) ObserveInstantiation(shape string, err error) {
	e.instantiations.WithLabelValues(shape, Outcome(err)).Inc()
}

// Handler returns the HTTP handler for the metrics endpoint.
func (e *PrometheusExporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the underlying Prometheus registry.
// Useful for adding custom metrics.
func (e *PrometheusExporter) Registry() *prometheus.Registry {
	return e.registry
}
