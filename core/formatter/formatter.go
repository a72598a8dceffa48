// Package formatter renders CLI output in a pluggable set of formats.
// Formatters turn declaration listings, instances and generation results
// into table, json or yaml text.
package formatter

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/artpar/typesmith/core/codegen"
	"github.com/artpar/typesmith/core/convention"
	"github.com/artpar/typesmith/core/schema"
)

// Formatter converts structured data to a specific output format.
type Formatter interface {
	// Name returns the formatter name (e.g., "table", "json", "yaml").
	Name() string

	// Description returns a human-readable description.
	Description() string

	// FormatShapes formats a declaration listing.
	FormatShapes(w io.Writer, shapes []Shape, opts FormatOptions) error

	// FormatInstance formats one instantiated declaration.
	FormatInstance(w io.Writer, attrs schema.Attributes, opts FormatOptions) error

	// FormatSummaries formats the result of a generation run.
	FormatSummaries(w io.Writer, summaries []codegen.Summary, opts FormatOptions) error

	// FormatError formats an error.
	FormatError(w io.Writer, err error) error
}

// FormatOptions configures formatting behavior.
type FormatOptions struct {
	// Columns specifies which fields to include (nil = all).
	Columns []string

	// NoHeader disables header row for tabular formats.
	NoHeader bool

	// Compact minimizes whitespace (for json).
	Compact bool

	// MaxWidth truncates long values (0 = no limit).
	MaxWidth int
}

// Shape describes a registered declaration for listings.
type Shape struct {
	Name     string `json:"name" yaml:"name"`
	TypeName string `json:"type_name" yaml:"type_name"`
	Module   string `json:"module" yaml:"module"`
	Fields   int    `json:"fields" yaml:"fields"`
}

// ShapeOf describes d.
func ShapeOf(d *schema.Declaration) Shape {
	return Shape{
		Name:     d.Name(),
		TypeName: d.TypeName(),
		Module:   strings.Join(convention.ModulePath(d.Name()), "/"),
		Fields:   d.Len(),
	}
}

// ShapesOf describes every declaration, keeping order.
func ShapesOf(decls []*schema.Declaration) []Shape {
	shapes := make([]Shape, len(decls))
	for i, d := range decls {
		shapes[i] = ShapeOf(d)
	}
	return shapes
}

// shapeColumns and summaryColumns are the default table columns.
var (
	shapeColumns   = []string{"name", "type_name", "module", "fields"}
	summaryColumns = []string{"type_name", "path"}
)

func shapeRecords(shapes []Shape) []map[string]any {
	records := make([]map[string]any, len(shapes))
	for i, s := range shapes {
		records[i] = map[string]any{
			"name":      s.Name,
			"type_name": s.TypeName,
			"module":    s.Module,
			"fields":    s.Fields,
		}
	}
	return records
}

func summaryRecords(summaries []codegen.Summary) []map[string]any {
	records := make([]map[string]any, len(summaries))
	for i, s := range summaries {
		records[i] = map[string]any{
			"type_name": s.TypeName,
			"path":      s.Path,
		}
	}
	return records
}

// filterRecords keeps only the requested columns.
func filterRecords(records []map[string]any, columns []string) []map[string]any {
	if len(columns) == 0 {
		return records
	}
	result := make([]map[string]any, len(records))
	for i, record := range records {
		result[i] = filterRecord(record, columns)
	}
	return result
}

func filterRecord(record map[string]any, columns []string) map[string]any {
	if len(columns) == 0 {
		return record
	}
	result := make(map[string]any)
	for _, col := range columns {
		if val, ok := record[col]; ok {
			result[col] = val
		}
	}
	return result
}

func instanceName(attrs schema.Attributes) string {
	if d := attrs.Declaration(); d != nil {
		return d.Name()
	}
	return ""
}

// Registry manages registered formatters.
type Registry struct {
	mu         sync.RWMutex
	formatters map[string]Formatter
	defaultFmt string
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		formatters: make(map[string]Formatter),
		defaultFmt: "table",
	}
}

// Register adds a formatter to the registry.
func (r *Registry) Register(f Formatter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.formatters[f.Name()]; exists {
		return fmt.Errorf("formatter %q already registered", f.Name())
	}

	r.formatters[f.Name()] = f
	return nil
}

// Get returns a formatter by name.
func (r *Registry) Get(name string) (Formatter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.formatters[name]
	return f, ok
}

// Lookup returns a formatter by name, or the default for an empty name.
func (r *Registry) Lookup(name string) (Formatter, error) {
	if name == "" {
		if f := r.Default(); f != nil {
			return f, nil
		}
		return nil, fmt.Errorf("no formatters registered")
	}
	f, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (available: %s)", name, strings.Join(r.List(), ", "))
	}
	return f, nil
}

// Default returns the default formatter.
func (r *Registry) Default() Formatter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.formatters[r.defaultFmt]
	if !ok {
		// Fallback to first available by name
		names := make([]string, 0, len(r.formatters))
		for name := range r.formatters {
			names = append(names, name)
		}
		if len(names) == 0 {
			return nil
		}
		sort.Strings(names)
		return r.formatters[names[0]]
	}
	return f
}

// SetDefault sets the default formatter.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.formatters[name]; !exists {
		return fmt.Errorf("formatter %q not registered", name)
	}

	r.defaultFmt = name
	return nil
}

// List returns all registered formatter names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.formatters))
	for name := range r.formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter to the default registry.
func Register(f Formatter) error {
	return DefaultRegistry.Register(f)
}

// Get returns a formatter from the default registry.
func Get(name string) (Formatter, bool) {
	return DefaultRegistry.Get(name)
}

// Lookup resolves a formatter from the default registry.
func Lookup(name string) (Formatter, error) {
	return DefaultRegistry.Lookup(name)
}

// Default returns the default formatter from the default registry.
func Default() Formatter {
	return DefaultRegistry.Default()
}

// List returns all formatter names from the default registry.
func List() []string {
	return DefaultRegistry.List()
}
