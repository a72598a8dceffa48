package formatter

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/artpar/typesmith/core/codegen"
	"github.com/artpar/typesmith/core/schema"
)

// JSONFormatter formats output as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Name returns the formatter name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Description returns the formatter description.
func (f *JSONFormatter) Description() string {
	return "JSON output format"
}

// FormatShapes formats a declaration listing as JSON.
func (f *JSONFormatter) FormatShapes(w io.Writer, shapes []Shape, opts FormatOptions) error {
	filtered := filterRecords(shapeRecords(shapes), opts.Columns)

	output := map[string]any{
		"count": len(filtered),
		"data":  filtered,
	}

	return f.encode(w, output, opts.Compact)
}

// FormatInstance formats an instance as JSON keyed by declared field names.
func (f *JSONFormatter) FormatInstance(w io.Writer, attrs schema.Attributes, opts FormatOptions) error {
	output := map[string]any{
		"shape": instanceName(attrs),
		"data":  filterRecord(attrs.Map(), opts.Columns),
	}

	return f.encode(w, output, opts.Compact)
}

// FormatSummaries formats generation results as JSON.
func (f *JSONFormatter) FormatSummaries(w io.Writer, summaries []codegen.Summary, opts FormatOptions) error {
	filtered := filterRecords(summaryRecords(summaries), opts.Columns)

	output := map[string]any{
		"count": len(filtered),
		"data":  filtered,
	}

	return f.encode(w, output, opts.Compact)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := map[string]any{
		"error": err.Error(),
	}
	return f.encode(w, output, false)
}

// encode writes JSON to the writer.
func (f *JSONFormatter) encode(w io.Writer, data any, compact bool) error {
	encoder := json.NewEncoder(w)
	if !compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

func init() {
	if err := Register(NewJSONFormatter()); err != nil {
		fmt.Printf("failed to register json formatter: %v\n", err)
	}
}
