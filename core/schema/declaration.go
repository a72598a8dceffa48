package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/artpar/typesmith/core/convention"
)

// indentUnit is the indentation of one nesting level in generated text.
const indentUnit = "  "

// BuildFunc populates a declaration through a Builder.
type BuildFunc func(b *Builder)

// Declaration is a named, ordered set of properties. Two declarations are
// distinct types even when structurally identical.
type Declaration struct {
	name  string
	props []Property
	index map[string]int
}

// New returns an empty declaration for a qualified name such as
// "Billing.Invoice". Fields are added with Field, Object or Apply, which
// lets declarations reference each other before either is complete.
func New(name string) *Declaration {
	return &Declaration{
		name:  name,
		index: make(map[string]int),
	}
}

// Declare builds a declaration in one step.
func Declare(name string, build BuildFunc) (*Declaration, error) {
	d := New(name)
	if err := d.Apply(build); err != nil {
		return nil, err
	}
	return d, nil
}

// MustDeclare is like Declare but panics on a construction error. It is
// intended for package-level declarations.
func MustDeclare(name string, build BuildFunc) *Declaration {
	d, err := Declare(name, build)
	if err != nil {
		panic(err)
	}
	return d
}

// Anonymous builds an unnamed declaration, as used for nested records.
func Anonymous(build BuildFunc) (*Declaration, error) {
	return Declare("", build)
}

// Apply runs build against d. The first construction error aborts the
// remaining statements of the block and is returned.
func (d *Declaration) Apply(build BuildFunc) error {
	if build == nil {
		return nil
	}
	b := &Builder{decl: d}
	build(b)
	if b.err != nil {
		if d.name == "" {
			return b.err
		}
		return fmt.Errorf("declare %s: %w", d.name, b.err)
	}
	return nil
}

// Name returns the qualified name. Anonymous declarations return "".
func (d *Declaration) Name() string { return d.name }

// TypeName returns the bare exported type name.
func (d *Declaration) TypeName() string { return convention.TypeName(d.name) }

// IsAnonymous reports whether d is an unnamed nested record.
func (d *Declaration) IsAnonymous() bool { return d.name == "" }

func (d *Declaration) isType() {}

// Field declares a typed field. The type expression selects the variant:
// nil declares an untyped any field, ArrayOf an array property, MapOf an
// indexed property, anything else a simple property.
func (d *Declaration) Field(name string, t Type, opts ...Option) error {
	if name == "" {
		return fmt.Errorf("property name is required")
	}

	var (
		p   Property
		err error
	)
	switch t := t.(type) {
	case nil:
		p, err = NewSimpleProperty(name, Any, opts...)
	case ArrayType:
		p, err = NewArrayProperty(name, t.Elem, opts...)
	case MapType:
		p, err = NewIndexedProperty(name, t.Key, t.Value, opts...)
	default:
		p, err = NewSimpleProperty(name, t, opts...)
	}
	if err != nil {
		return err
	}

	d.Add(p)
	return nil
}

// Object declares an inline anonymous record built by build.
func (d *Declaration) Object(name string, build BuildFunc, opts ...Option) error {
	if name == "" {
		return fmt.Errorf("property name is required")
	}
	p, err := NewNestedProperty(name, build, opts...)
	if err != nil {
		return err
	}
	d.Add(p)
	return nil
}

// Add registers a constructed property. A property with the same name
// replaces the earlier one in place.
func (d *Declaration) Add(p Property) {
	if i, ok := d.index[p.Name()]; ok {
		d.props[i] = p
		return
	}
	d.index[p.Name()] = len(d.props)
	d.props = append(d.props, p)
}

// Properties returns the properties in declaration order.
func (d *Declaration) Properties() []Property {
	out := make([]Property, len(d.props))
	copy(out, d.props)
	return out
}

// Property looks up a property by declared name.
func (d *Declaration) Property(name string) (Property, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.props[i], true
}

// Len returns the number of properties.
func (d *Declaration) Len() int { return len(d.props) }

// RenderType returns the interface definition:
//
//	export interface Name {
//	  field: type;
//	}
func (d *Declaration) RenderType() (string, error) {
	body, err := d.renderFields(1)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", d.name, err)
	}
	lines := []string{"export interface " + d.TypeName() + " {"}
	if body != "" {
		lines = append(lines, body)
	}
	lines = append(lines, "}")
	return strings.Join(lines, "\n"), nil
}

// renderFields renders every property indented by level.
func (d *Declaration) renderFields(level int) (string, error) {
	rendered := make([]string, 0, len(d.props))
	for _, p := range d.props {
		text, err := p.Render()
		if err != nil {
			return "", fmt.Errorf("property %q: %w", p.Name(), err)
		}
		rendered = append(rendered, indent(text, level))
	}
	return strings.Join(rendered, "\n"), nil
}

func indent(text string, level int) string {
	prefix := strings.Repeat(indentUnit, level)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

// Instantiate validates and normalizes input against d.
//
// Every input key must be a declared field, otherwise an
// *UndefinedAttributeError lists the offending keys. Each present value is
// processed by its property; a failure is returned as a *FieldError
// naming d and the field. Every required field must then be present,
// otherwise a *MissingRequiredAttributeError lists all missing names.
func (d *Declaration) Instantiate(input map[string]any) (Attributes, error) {
	var undefined []string
	for key := range input {
		if _, ok := d.index[key]; !ok {
			undefined = append(undefined, key)
		}
	}
	if len(undefined) > 0 {
		sort.Strings(undefined)
		return Attributes{}, &UndefinedAttributeError{Declaration: d.name, Keys: undefined}
	}

	values := make(map[string]any, len(input))
	for _, p := range d.props {
		raw, ok := input[p.Name()]
		if !ok {
			continue
		}
		processed, err := p.Process(raw)
		if err != nil {
			return Attributes{}, &FieldError{Declaration: d.name, Field: p.Name(), Err: err}
		}
		values[p.Name()] = processed
	}

	var missing []string
	for _, p := range d.props {
		if p.Optional() {
			continue
		}
		if _, ok := values[p.Name()]; !ok {
			missing = append(missing, p.Name())
		}
	}
	if len(missing) > 0 {
		return Attributes{}, &MissingRequiredAttributeError{Declaration: d.name, Keys: missing}
	}

	return Attributes{decl: d, values: values}, nil
}

// References returns the distinct declarations referenced by d's fields in
// first-encounter order. Array and map wrappers are looked through and
// nested blocks are descended into; the anonymous nested declarations
// themselves are not included. A self reference is reported like any other.
func (d *Declaration) References() ([]*Declaration, error) {
	seen := make(map[*Declaration]bool)
	var out []*Declaration
	if err := d.collectReferences(seen, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *Declaration) collectReferences(seen map[*Declaration]bool, out *[]*Declaration) error {
	for _, p := range d.props {
		var types []Type
		switch p := p.(type) {
		case *SimpleProperty:
			types = append(types, p.typ)
		case *ArrayProperty:
			types = append(types, p.elem)
		case *IndexedProperty:
			types = append(types, p.key, p.value)
		case *NestedProperty:
			nested, err := p.Materialize()
			if err != nil {
				return fmt.Errorf("property %q: %w", p.Name(), err)
			}
			if err := nested.collectReferences(seen, out); err != nil {
				return err
			}
		}
		for _, t := range types {
			for _, ref := range TypeReferences(t) {
				if !seen[ref] {
					seen[ref] = true
					*out = append(*out, ref)
				}
			}
		}
	}
	return nil
}

// String returns the qualified name, or "<anonymous>".
func (d *Declaration) String() string {
	if d.name == "" {
		return "<anonymous>"
	}
	return d.name
}

// Builder is the declaration DSL handed to a BuildFunc. After the first
// failing statement the remaining statements are ignored.
type Builder struct {
	decl *Declaration
	err  error
}

// Field declares a typed field; see Declaration.Field.
func (b *Builder) Field(name string, t Type, opts ...Option) {
	if b.err != nil {
		return
	}
	b.err = b.decl.Field(name, t, opts...)
}

// Untyped declares an any field.
func (b *Builder) Untyped(name string, opts ...Option) {
	b.Field(name, nil, opts...)
}

// Object declares an inline anonymous record.
func (b *Builder) Object(name string, build BuildFunc, opts ...Option) {
	if b.err != nil {
		return
	}
	b.err = b.decl.Object(name, build, opts...)
}

// Err returns the first construction error, if any.
func (b *Builder) Err() error { return b.err }
