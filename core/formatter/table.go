package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/artpar/typesmith/core/codegen"
	"github.com/artpar/typesmith/core/schema"
)

// TableFormatter formats output as aligned text tables.
type TableFormatter struct{}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{}
}

// Name returns the formatter name.
func (f *TableFormatter) Name() string {
	return "table"
}

// Description returns the formatter description.
func (f *TableFormatter) Description() string {
	return "Aligned text table output"
}

// FormatShapes formats a declaration listing as a table.
func (f *TableFormatter) FormatShapes(w io.Writer, shapes []Shape, opts FormatOptions) error {
	if len(shapes) == 0 {
		fmt.Fprintln(w, "No declarations registered.")
		return nil
	}
	return f.formatList(w, shapeRecords(shapes), shapeColumns, opts)
}

// FormatSummaries formats generation results as a table.
func (f *TableFormatter) FormatSummaries(w io.Writer, summaries []codegen.Summary, opts FormatOptions) error {
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No types generated.")
		return nil
	}
	return f.formatList(w, summaryRecords(summaries), summaryColumns, opts)
}

// formatList writes one row per record.
func (f *TableFormatter) formatList(w io.Writer, records []map[string]any, defaults []string, opts FormatOptions) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	columns := defaults
	if len(opts.Columns) > 0 {
		columns = opts.Columns
	}

	// Print header
	if !opts.NoHeader {
		var headers []string
		for _, col := range columns {
			headers = append(headers, strings.ToUpper(col))
		}
		fmt.Fprintln(tw, strings.Join(headers, "\t"))
	}

	// Print rows
	for _, record := range records {
		var values []string
		for _, col := range columns {
			values = append(values, f.formatValue(record[col], opts.MaxWidth))
		}
		fmt.Fprintln(tw, strings.Join(values, "\t"))
	}

	return tw.Flush()
}

// FormatInstance formats an instance as key-value pairs in declaration order.
func (f *TableFormatter) FormatInstance(w io.Writer, attrs schema.Attributes, opts FormatOptions) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	columns := opts.Columns
	if len(columns) == 0 {
		columns = attrs.Keys()
	}

	values := attrs.Map()
	for _, col := range columns {
		label := f.formatLabel(col)
		val := f.formatValue(values[col], 0) // No truncation for detail view
		fmt.Fprintf(tw, "%s:\t%s\n", label, val)
	}

	return tw.Flush()
}

// FormatError formats an error message.
func (f *TableFormatter) FormatError(w io.Writer, err error) error {
	fmt.Fprintf(w, "Error: %s\n", err.Error())
	return nil
}

// formatLabel formats a field name as a label.
func (f *TableFormatter) formatLabel(name string) string {
	// Convert snake_case to Title Case
	words := strings.Split(name, "_")
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

// formatValue formats a value for display.
func (f *TableFormatter) formatValue(val any, maxWidth int) string {
	if val == nil {
		return "-"
	}

	var str string
	switch v := val.(type) {
	case string:
		str = v
	case bool:
		if v {
			str = "yes"
		} else {
			str = "no"
		}
	case int:
		str = fmt.Sprintf("%d", v)
	case float64:
		// Check if it's a whole number
		if v == float64(int64(v)) {
			str = fmt.Sprintf("%d", int64(v))
		} else {
			str = fmt.Sprintf("%.2f", v)
		}
	default:
		b, _ := json.Marshal(v)
		str = string(b)
	}

	// Truncate if needed
	if maxWidth > 3 && len(str) > maxWidth {
		str = str[:maxWidth-3] + "..."
	}

	return str
}

func init() {
	Register(NewTableFormatter())
}
