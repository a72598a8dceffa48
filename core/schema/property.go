package schema

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/artpar/typesmith/core/convention"
)

// Property is one declared field of a Declaration.
type Property interface {
	// Name is the declared identifier, e.g. created_at.
	Name() string

	// Optional reports whether the field may be absent from input.
	Optional() bool

	// Render returns the field line(s) of the generated interface body,
	// e.g. "createdAt?: Date;". Nested properties render a multi-line block.
	Render() (string, error)

	// Process normalizes a runtime value for this field.
	Process(value any) (any, error)
}

// Option configures a property at construction.
type Option func(*base)

// Optional marks the property as optional.
func Optional() Option {
	return func(b *base) {
		b.optional = true
	}
}

// OptionalIf marks the property as optional when cond holds.
func OptionalIf(cond bool) Option {
	return func(b *base) {
		b.optional = cond
	}
}

type base struct {
	name     string
	optional bool
}

func newBase(name string, opts []Option) base {
	b := base{name: name}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b base) Name() string   { return b.name }
func (b base) Optional() bool { return b.optional }

// label renders "<camelName><?>".
func (b base) label() string {
	if b.optional {
		return convention.FieldName(b.name) + "?"
	}
	return convention.FieldName(b.name)
}

// line renders "<label>: <body>;".
func (b base) line(body string) string {
	return b.label() + ": " + body + ";"
}

func validateProperty(name string, types ...Type) error {
	for _, t := range types {
		if err := ValidateType(t); err != nil {
			if ite, ok := err.(*InvalidTypeError); ok {
				ite.Property = name
			}
			return err
		}
	}
	return nil
}

// SimpleProperty is a scalar or reference field.
type SimpleProperty struct {
	base
	typ Type
}

// NewSimpleProperty validates t and returns a simple property.
func NewSimpleProperty(name string, t Type, opts ...Option) (*SimpleProperty, error) {
	if err := validateProperty(name, t); err != nil {
		return nil, err
	}
	return &SimpleProperty{base: newBase(name, opts), typ: t}, nil
}

// Type returns the declared type expression.
func (p *SimpleProperty) Type() Type { return p.typ }

// Render returns the field line.
func (p *SimpleProperty) Render() (string, error) {
	return p.line(TypeString(p.typ)), nil
}

// Process instantiates referenced declarations and passes scalars through
// unchanged. Values are not coerced to the declared scalar type.
func (p *SimpleProperty) Process(value any) (any, error) {
	return processValue(p.typ, value)
}

// ArrayProperty is a homogeneous list field.
type ArrayProperty struct {
	base
	elem Type
}

// NewArrayProperty validates elem and returns an array property.
func NewArrayProperty(name string, elem Type, opts ...Option) (*ArrayProperty, error) {
	if err := validateProperty(name, elem); err != nil {
		return nil, err
	}
	return &ArrayProperty{base: newBase(name, opts), elem: elem}, nil
}

// Elem returns the element type expression.
func (p *ArrayProperty) Elem() Type { return p.elem }

// Render returns the field line.
func (p *ArrayProperty) Render() (string, error) {
	return p.line(TypeString(p.elem) + "[]"), nil
}

// Process normalizes every element, preserving order. Anything other than a
// slice or array fails with an *InvalidValueError.
func (p *ArrayProperty) Process(value any) (any, error) {
	return processValue(ArrayOf(p.elem), value)
}

// IndexedProperty is a keyed map field.
type IndexedProperty struct {
	base
	key   Type
	value Type
}

// NewIndexedProperty validates both key and value types and returns an
// indexed property.
func NewIndexedProperty(name string, key, value Type, opts ...Option) (*IndexedProperty, error) {
	if err := validateProperty(name, key, value); err != nil {
		return nil, err
	}
	return &IndexedProperty{base: newBase(name, opts), key: key, value: value}, nil
}

// Key returns the key type expression.
func (p *IndexedProperty) Key() Type { return p.key }

// Value returns the value type expression.
func (p *IndexedProperty) Value() Type { return p.value }

// Render returns the field line.
func (p *IndexedProperty) Render() (string, error) {
	return p.line(TypeString(MapOf(p.key, p.value))), nil
}

// Process normalizes every map value. Keys are passed through unchanged.
func (p *IndexedProperty) Process(value any) (any, error) {
	return processValue(MapOf(p.key, p.value), value)
}

// NestedProperty is an inline anonymous record. Its builder runs again on
// every Render and Process call, so it must be deterministic.
type NestedProperty struct {
	base
	build BuildFunc
}

// NewNestedProperty returns a nested property. The builder is run once here
// so that invalid field types fail at construction.
func NewNestedProperty(name string, build BuildFunc, opts ...Option) (*NestedProperty, error) {
	if build == nil {
		return nil, &InvalidTypeError{Property: name, Type: "<nil builder>"}
	}
	p := &NestedProperty{base: newBase(name, opts), build: build}
	if _, err := p.Materialize(); err != nil {
		return nil, fmt.Errorf("property %q: %w", name, err)
	}
	return p, nil
}

// Materialize builds a fresh anonymous declaration from the builder.
func (p *NestedProperty) Materialize() (*Declaration, error) {
	return Anonymous(p.build)
}

// Render returns the multi-line block for the nested record.
func (p *NestedProperty) Render() (string, error) {
	decl, err := p.Materialize()
	if err != nil {
		return "", err
	}
	body, err := decl.renderFields(1)
	if err != nil {
		return "", err
	}
	lines := []string{p.label() + ": {"}
	if body != "" {
		lines = append(lines, body)
	}
	lines = append(lines, "};")
	return strings.Join(lines, "\n"), nil
}

// Process instantiates a fresh anonymous declaration with value.
func (p *NestedProperty) Process(value any) (any, error) {
	decl, err := p.Materialize()
	if err != nil {
		return nil, err
	}
	return processValue(decl, value)
}

var anyType = reflect.TypeOf((*any)(nil)).Elem()

// processValue normalizes value against t: references are instantiated,
// arrays and maps are walked, other values pass through as deep copies so
// the result shares nothing with the input.
func processValue(t Type, value any) (any, error) {
	switch t := t.(type) {
	case *Declaration:
		input, ok := asMapping(value)
		if !ok {
			return nil, &InvalidValueError{Expected: "a mapping", Value: value}
		}
		return t.Instantiate(input)

	case ArrayType:
		rv := reflect.ValueOf(value)
		if value == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
			return nil, &InvalidValueError{Expected: "a sequence", Value: value}
		}
		out := make([]any, rv.Len())
		for i := range out {
			item, err := processValue(t.Elem, rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = item
		}
		return out, nil

	case MapType:
		rv := reflect.ValueOf(value)
		if value == nil || rv.Kind() != reflect.Map {
			return nil, &InvalidValueError{Expected: "a mapping", Value: value}
		}
		out := reflect.MakeMapWithSize(reflect.MapOf(rv.Type().Key(), anyType), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			item, err := processValue(t.Value, iter.Value().Interface())
			if err != nil {
				return nil, fmt.Errorf("[%v]: %w", iter.Key().Interface(), err)
			}
			out.SetMapIndex(iter.Key(), valueOf(item))
		}
		return out.Interface(), nil

	default:
		return clone(value), nil
	}
}

// asMapping converts a string-keyed map of any element type into the input
// form accepted by Instantiate.
func asMapping(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case Attributes:
		return v.Map(), true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// valueOf wraps v for storage in a map[K]any, keeping nil as the zero value.
func valueOf(v any) reflect.Value {
	if v == nil {
		return reflect.Zero(anyType)
	}
	return reflect.ValueOf(v)
}
