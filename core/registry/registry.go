// Package registry holds the set of declarations known to a process.
// It rejects duplicate names and declarations that would be generated into
// the same output file, and serves them to the code generator in
// registration order.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/artpar/typesmith/core/convention"
	"github.com/artpar/typesmith/core/schema"
)

// Registry manages registered declarations and their output path claims.
type Registry struct {
	mu sync.RWMutex

	// declarations by qualified name
	decls map[string]*schema.Declaration

	// registration order
	order []string

	// output paths to qualified names
	paths map[string]string
}

// New creates a new registry.
func New() *Registry {
	return &Registry{
		decls: make(map[string]*schema.Declaration),
		paths: make(map[string]string),
	}
}

// Default is the process-wide registry used by Declare.
var Default = New()

// Declare builds a declaration and registers it with Default.
func Declare(name string, build schema.BuildFunc) (*schema.Declaration, error) {
	d, err := schema.Declare(name, build)
	if err != nil {
		return nil, err
	}
	if err := Default.Register(d); err != nil {
		return nil, err
	}
	return d, nil
}

// MustDeclare is like Declare but panics on error.
func MustDeclare(name string, build schema.BuildFunc) *schema.Declaration {
	d, err := Declare(name, build)
	if err != nil {
		panic(err)
	}
	return d
}

// Register adds a named declaration.
// Returns an error if the name or its output path is already taken.
func (r *Registry) Register(d *schema.Declaration) error {
	if d == nil {
		return fmt.Errorf("declaration is nil")
	}
	if d.IsAnonymous() {
		return fmt.Errorf("anonymous declarations cannot be registered")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate name
	if _, exists := r.decls[d.Name()]; exists {
		return fmt.Errorf("declaration %q already registered", d.Name())
	}

	// Check for output path conflict
	key := pathKey(d.Name())
	if existing, exists := r.paths[key]; exists {
		return &ConflictError{Path: key, Claims: []string{existing, d.Name()}}
	}

	r.decls[d.Name()] = d
	r.paths[key] = d.Name()
	r.order = append(r.order, d.Name())
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(decls ...*schema.Declaration) {
	for _, d := range decls {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
}

// Unregister removes a declaration from the registry.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.decls[name]; !exists {
		return fmt.Errorf("declaration %q not registered", name)
	}

	delete(r.paths, pathKey(name))
	delete(r.decls, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns a registered declaration by qualified name.
func (r *Registry) Get(name string) (*schema.Declaration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.decls[name]
	return d, ok
}

// Lookup resolves a qualified name in any accepted spelling, so
// "billing/line_item" finds "Billing.LineItem".
func (r *Registry) Lookup(name string) (*schema.Declaration, bool) {
	if d, ok := r.Get(name); ok {
		return d, true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	owner, ok := r.paths[pathKey(name)]
	if !ok {
		return nil, false
	}
	return r.decls[owner], true
}

// Declarations returns every declaration in registration order.
func (r *Registry) Declarations() []*schema.Declaration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	decls := make([]*schema.Declaration, 0, len(r.order))
	for _, name := range r.order {
		decls = append(decls, r.decls[name])
	}
	return decls
}

// List returns all registered declarations sorted by name.
func (r *Registry) List() []*schema.Declaration {
	decls := r.Declarations()

	// Sort by name for consistent ordering
	sort.Slice(decls, func(i, j int) bool {
		return decls[i].Name() < decls[j].Name()
	})

	return decls
}

// Len returns the number of registered declarations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.decls)
}

func pathKey(name string) string {
	return strings.Join(convention.ModulePath(name), "/")
}

// ConflictError reports two declarations claiming the same output file.
type ConflictError struct {
	Path   string
	Claims []string
}

// Error returns the conflict error message.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("output path %q claimed by %s", e.Path, strings.Join(quoteAll(e.Claims), " and "))
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = fmt.Sprintf("%q", n)
	}
	return out
}
