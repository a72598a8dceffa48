// Package exporter records generation and instantiation metrics.
// Implementations include Prometheus, a logger and a no-op recorder.
package exporter

import (
	"context"
	"errors"
	"time"

	"github.com/artpar/typesmith/core/schema"
)

// Outcome labels for recorded operations.
const (
	OutcomeOK                       = "ok"
	OutcomeUndefinedAttribute       = "undefined_attribute"
	OutcomeMissingRequiredAttribute = "missing_required_attribute"
	OutcomeInvalidValue             = "invalid_value"
	OutcomeInvalidType              = "invalid_type"
	OutcomeCanceled                 = "canceled"
	OutcomeError                    = "error"
)

// Recorder is the base interface for all metrics exporters.
type Recorder interface {
	// Name returns the exporter identifier (e.g., "prometheus", "log").
	Name() string

	// ObserveGeneration records one generation run.
	ObserveGeneration(units, indexes int, elapsed time.Duration, err error)

	// ObserveInstantiation records one instantiation of a named declaration.
	ObserveInstantiation(shape string, err error)
}

// Outcome classifies an error into an outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, schema.ErrUndefinedAttribute):
		return OutcomeUndefinedAttribute
	case errors.Is(err, schema.ErrMissingRequiredAttribute):
		return OutcomeMissingRequiredAttribute
	case errors.Is(err, schema.ErrInvalidValue):
		return OutcomeInvalidValue
	case errors.Is(err, schema.ErrInvalidType):
		return OutcomeInvalidType
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	default:
		return OutcomeError
	}
}

// Multi fans out to several recorders.
type Multi []Recorder

// Name returns the exporter name.
func (m Multi) Name() string { return "multi" }

// ObserveGeneration forwards to every recorder.
func (m Multi) ObserveGeneration(units, indexes int, elapsed time.Duration, err error) {
	for _, r := range m {
		r.ObserveGeneration(units, indexes, elapsed, err)
	}
}

// ObserveInstantiation forwards to every recorder.
func (m Multi) ObserveInstantiation(shape string, err error) {
	for _, r := range m {
		r.ObserveInstantiation(shape, err)
	}
}

// NoopExporter discards all metrics.
// Useful as a placeholder or for testing.
type NoopExporter struct{}

// NewNoopExporter creates a new noop exporter.
func NewNoopExporter() *NoopExporter {
	return &NoopExporter{}
}

// Name returns the exporter name.
func (e *NoopExporter) Name() string {
	return "noop"
}

// ObserveGeneration discards the run.
func (e *NoopExporter) ObserveGeneration(int, int, time.Duration, error) {}

// ObserveInstantiation discards the event.
func (e *NoopExporter) ObserveInstantiation(string, error) {}
