// Package codegen turns registered declarations into TypeScript files.
//
// Each named declaration becomes one unit at
// <snake_case dirs>/<snake_case name><ext> holding its imports and its
// interface block. Every directory that receives a unit also gets an index
// file re-exporting the types generated into it.
package codegen

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/artpar/typesmith/adapters/clock"
	"github.com/artpar/typesmith/adapters/idgen"
	"github.com/artpar/typesmith/core/convention"
	"github.com/artpar/typesmith/core/schema"
	"github.com/artpar/typesmith/core/sink"
	"github.com/artpar/typesmith/ports"
)

// DefaultExtension is the file extension of generated units.
const DefaultExtension = ".ts"

// Discoverer yields the declarations to generate, in generation order.
type Discoverer interface {
	Declarations() []*schema.Declaration
}

// Metrics receives generation statistics.
type Metrics interface {
	ObserveGeneration(units, indexes int, elapsed time.Duration, err error)
}

// Unit is one generated type file.
type Unit struct {
	// Dir holds the directory segments relative to the output base.
	Dir []string
	// File is the file name, e.g. line_item.ts.
	File string
	// Path is the slash-separated path relative to the output base.
	Path string
	// Name is the qualified declaration name.
	Name string
	// TypeName is the exported interface name.
	TypeName string
	// Imports lists the import lines in emission order.
	Imports []Import
	// Content is the full file text.
	Content string
}

// Import is one resolved import of a unit.
type Import struct {
	TypeName string
	Path     string
}

// Index is the re-export file of one directory.
type Index struct {
	Dir     []string
	Path    string
	Types   []string
	Content string
}

// Plan is the complete output of one generation run.
type Plan struct {
	Units   []Unit
	Indexes []Index
}

// Summary reports one generated type upward.
type Summary struct {
	Path     string `json:"path" yaml:"path"`
	TypeName string `json:"type_name" yaml:"type_name"`
}

// Generator plans and writes generated files.
type Generator struct {
	ext     string
	logger  zerolog.Logger
	metrics Metrics
	clock   ports.Clock
	ids     ports.IDGenerator
}

// Option configures a Generator.
type Option func(*Generator)

// WithExtension sets the file extension of units and index files.
func WithExtension(ext string) Option {
	return func(g *Generator) {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		g.ext = ext
	}
}

// WithLogger sets the logger for generation runs.
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m Metrics) Option {
	return func(g *Generator) {
		g.metrics = m
	}
}

// WithClock sets the clock used to time generation runs.
func WithClock(c ports.Clock) Option {
	return func(g *Generator) {
		g.clock = c
	}
}

// WithIDGenerator sets the source of run IDs.
func WithIDGenerator(ids ports.IDGenerator) Option {
	return func(g *Generator) {
		g.ids = ids
	}
}

// New creates a generator.
func New(opts ...Option) *Generator {
	g := &Generator{
		ext:    DefaultExtension,
		logger: zerolog.Nop(),
		clock:  clock.Real{},
		ids:    idgen.UUID{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Extension returns the configured file extension.
func (g *Generator) Extension() string { return g.ext }

// Plan renders every discovered declaration and the index files without
// writing anything. Units keep discovery order; index files are ordered by
// the first unit placed in their directory.
func (g *Generator) Plan(src Discoverer) (*Plan, error) {
	plan := &Plan{}
	claimed := make(map[string]string)
	indexByDir := make(map[string]int)

	for _, d := range src.Declarations() {
		if d == nil || d.IsAnonymous() {
			continue
		}

		unit, err := g.RenderUnit(d)
		if err != nil {
			return nil, err
		}
		if owner, ok := claimed[unit.Path]; ok {
			return nil, fmt.Errorf("%s and %s both generate %s", owner, d.Name(), unit.Path)
		}
		claimed[unit.Path] = d.Name()
		plan.Units = append(plan.Units, unit)

		dirKey := path.Join(unit.Dir...)
		i, ok := indexByDir[dirKey]
		if !ok {
			i = len(plan.Indexes)
			indexByDir[dirKey] = i
			plan.Indexes = append(plan.Indexes, Index{
				Dir:  unit.Dir,
				Path: path.Join(dirKey, "index"+g.ext),
			})
		}
		plan.Indexes[i].Types = append(plan.Indexes[i].Types, unit.TypeName)
	}

	// index content needs every unit of the directory
	entries := make(map[string][]indexEntry)
	for _, u := range plan.Units {
		dirKey := path.Join(u.Dir...)
		entries[dirKey] = append(entries[dirKey], indexEntry{
			TypeName: u.TypeName,
			Base:     strings.TrimSuffix(u.File, g.ext),
		})
	}
	for i := range plan.Indexes {
		var buf bytes.Buffer
		if err := indexTemplate.Execute(&buf, entries[path.Join(plan.Indexes[i].Dir...)]); err != nil {
			return nil, fmt.Errorf("executing index template: %w", err)
		}
		plan.Indexes[i].Content = buf.String()
	}

	return plan, nil
}

// RenderUnit renders the file for a single named declaration.
func (g *Generator) RenderUnit(d *schema.Declaration) (Unit, error) {
	if d.IsAnonymous() {
		return Unit{}, fmt.Errorf("cannot generate a file for an anonymous declaration")
	}

	if len(convention.Segments(d.Name())) == 0 {
		return Unit{}, fmt.Errorf("declaration %q has no usable name", d.Name())
	}
	dir := convention.Dir(d.Name())
	file := convention.BaseName(d.Name()) + g.ext

	refs, err := Imports(d)
	if err != nil {
		return Unit{}, fmt.Errorf("collect imports for %s: %w", d.Name(), err)
	}
	imports := make([]Import, 0, len(refs))
	names := map[string]string{d.TypeName(): d.Name()}
	for _, ref := range refs {
		if owner, ok := names[ref.TypeName()]; ok {
			return Unit{}, fmt.Errorf("%s: type name %s of %s collides with %s", d.Name(), ref.TypeName(), ref.Name(), owner)
		}
		names[ref.TypeName()] = ref.Name()
		imports = append(imports, Import{
			TypeName: ref.TypeName(),
			Path:     RelativePath(dir, convention.ModulePath(ref.Name())),
		})
	}

	body, err := d.RenderType()
	if err != nil {
		return Unit{}, err
	}

	var buf bytes.Buffer
	if err := unitTemplate.Execute(&buf, unitData{Imports: imports, Body: body}); err != nil {
		return Unit{}, fmt.Errorf("executing unit template: %w", err)
	}

	return Unit{
		Dir:      dir,
		File:     file,
		Path:     path.Join(path.Join(dir...), file),
		Name:     d.Name(),
		TypeName: d.TypeName(),
		Imports:  imports,
		Content:  buf.String(),
	}, nil
}

// Imports returns the declarations d must import: every distinct named
// declaration referenced by its fields, in first-encounter order, except
// d itself.
func Imports(d *schema.Declaration) ([]*schema.Declaration, error) {
	refs, err := d.References()
	if err != nil {
		return nil, err
	}
	out := refs[:0]
	for _, ref := range refs {
		if ref == d || ref.IsAnonymous() {
			continue
		}
		out = append(out, ref)
	}
	return out, nil
}

// RelativePath returns the import path from a file in fromDir to the
// module at to, where to is the full segment path of the target file
// without extension. Segments are compared pairwise from the start; each
// unmatched fromDir segment becomes "..".
//
//	RelativePath([a b c], [a d])  = ../../d
//	RelativePath([a], [a x])      = ./x
func RelativePath(fromDir, to []string) string {
	if len(to) == 0 {
		return "."
	}
	toDir := to[:len(to)-1]

	common := 0
	for common < len(fromDir) && common < len(toDir) && fromDir[common] == toDir[common] {
		common++
	}

	parts := make([]string, 0, len(fromDir)-common+len(to)-common)
	for i := common; i < len(fromDir); i++ {
		parts = append(parts, "..")
	}
	parts = append(parts, to[common:]...)

	if len(parts) > 0 && parts[0] == ".." {
		return strings.Join(parts, "/")
	}
	return "./" + strings.Join(parts, "/")
}

// Write writes a plan to s: for each unit its directory is ensured and the
// file written, then each index file. Files written before a failure are
// left in place.
func (g *Generator) Write(ctx context.Context, plan *Plan, s sink.Sink) ([]Summary, error) {
	runID := g.ids.New()
	logger := g.logger.With().Str("run_id", runID).Logger()
	start := g.clock.Now()

	summaries, err := g.write(ctx, logger, plan, s)

	elapsed := g.clock.Now().Sub(start)
	if g.metrics != nil {
		g.metrics.ObserveGeneration(len(summaries), len(plan.Indexes), elapsed, err)
	}
	if err != nil {
		logger.Error().Err(err).Int("written", len(summaries)).Msg("generation failed")
		return summaries, err
	}

	logger.Info().
		Int("types", len(summaries)).
		Int("indexes", len(plan.Indexes)).
		Dur("duration", elapsed).
		Msg("types and index files generated")
	return summaries, nil
}

func (g *Generator) write(ctx context.Context, logger zerolog.Logger, plan *Plan, s sink.Sink) ([]Summary, error) {
	summaries := make([]Summary, 0, len(plan.Units))

	for _, u := range plan.Units {
		if err := ctx.Err(); err != nil {
			return summaries, err
		}
		if err := s.EnsureDirectory(path.Join(u.Dir...)); err != nil {
			return summaries, err
		}
		if err := s.Write(u.Path, u.Content); err != nil {
			return summaries, err
		}
		logger.Info().Str("type", u.Name).Str("path", u.Path).Msg("generated type")
		summaries = append(summaries, Summary{Path: u.Path, TypeName: u.TypeName})
	}

	for _, idx := range plan.Indexes {
		if err := ctx.Err(); err != nil {
			return summaries, err
		}
		if err := s.Write(idx.Path, idx.Content); err != nil {
			return summaries, err
		}
		logger.Info().Str("path", idx.Path).Int("types", len(idx.Types)).Msg("generated index file")
	}

	return summaries, nil
}

// Generate plans and writes in one step.
func (g *Generator) Generate(ctx context.Context, src Discoverer, s sink.Sink) ([]Summary, error) {
	plan, err := g.Plan(src)
	if err != nil {
		if g.metrics != nil {
			g.metrics.ObserveGeneration(0, 0, 0, err)
		}
		return nil, err
	}
	return g.Write(ctx, plan, s)
}
