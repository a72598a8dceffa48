package exporter

import (
	"time"

	"github.com/rs/zerolog"
)

// LogExporter exports metrics to a logger.
// Useful for debugging and development.
type LogExporter struct {
	logger zerolog.Logger
}

// NewLogExporter creates a new log exporter.
func NewLogExporter(logger zerolog.Logger) *LogExporter {
	return &LogExporter{logger: logger}
}

// Name returns the exporter name.
func (e *LogExporter) Name() string {
	return "log"
}

// ObserveGeneration logs the run.
func (e *LogExporter) ObserveGeneration(units, indexes int, elapsed time.Duration, err error) {
	e.logger.Debug().
		Str("outcome", Outcome(err)).
		Int("units", units).
		Int("indexes", indexes).
		Dur("duration", elapsed).
		Msg("generation metrics")
}

// ObserveInstantiation logs the event.
func (e *LogExporter) ObserveInstantiation(shape string, err error) {
	e.logger.Debug().
		Str("shape", shape).
		Str("outcome", Outcome(err)).
		Msg("instantiation metrics")
}
