package formatter

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/artpar/typesmith/core/codegen"
	"github.com/artpar/typesmith/core/schema"
)

// YAMLFormatter formats output as YAML.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Name returns the formatter name.
func (f *YAMLFormatter) Name() string {
	return "yaml"
}

// Description returns the formatter description.
func (f *YAMLFormatter) Description() string {
	return "YAML output format"
}

// FormatShapes formats a declaration listing as YAML.
func (f *YAMLFormatter) FormatShapes(w io.Writer, shapes []Shape, opts FormatOptions) error {
	filtered := filterRecords(shapeRecords(shapes), opts.Columns)

	output := map[string]any{
		"count": len(filtered),
		"data":  filtered,
	}

	return f.encode(w, output)
}

// FormatInstance formats an instance as YAML.
func (f *YAMLFormatter) FormatInstance(w io.Writer, attrs schema.Attributes, opts FormatOptions) error {
	output := map[string]any{
		"shape": instanceName(attrs),
		"data":  filterRecord(attrs.Map(), opts.Columns),
	}

	return f.encode(w, output)
}

// FormatSummaries formats generation results as YAML.
func (f *YAMLFormatter) FormatSummaries(w io.Writer, summaries []codegen.Summary, opts FormatOptions) error {
	filtered := filterRecords(summaryRecords(summaries), opts.Columns)

	output := map[string]any{
		"count": len(filtered),
		"data":  filtered,
	}

	return f.encode(w, output)
}

// FormatError formats an error as YAML.
func (f *YAMLFormatter) FormatError(w io.Writer, err error) error {
	output := map[string]any{
		"error": err.Error(),
	}
	return f.encode(w, output)
}

// encode writes YAML to the writer.
func (f *YAMLFormatter) encode(w io.Writer, data any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(data)
}

func init() {
	if err := Register(NewYAMLFormatter()); err != nil {
		fmt.Printf("failed to register yaml formatter: %v\n", err)
	}
}
