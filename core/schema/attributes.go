package schema

import (
	"encoding/json"
	"reflect"
)

// Attributes is the validated, normalized result of instantiating a
// declaration. It is keyed by declared field names and is never mutated
// after Instantiate returns it. Absent optional fields are not stored.
type Attributes struct {
	decl   *Declaration
	values map[string]any
}

// Declaration returns the declaration the instance was built from.
func (a Attributes) Declaration() *Declaration { return a.decl }

// Get returns the processed value of a field and whether it was present.
// Slices and maps are returned as copies; nested instances as they are.
func (a Attributes) Get(name string) (any, bool) {
	v, ok := a.values[name]
	return clone(v), ok
}

// Value returns the processed value of a field, or nil when absent.
func (a Attributes) Value(name string) any {
	return clone(a.values[name])
}

// Has reports whether a field was present in the input.
func (a Attributes) Has(name string) bool {
	_, ok := a.values[name]
	return ok
}

// Len returns the number of present fields.
func (a Attributes) Len() int { return len(a.values) }

// Keys returns the present field names in declaration order.
func (a Attributes) Keys() []string {
	if a.decl == nil {
		return nil
	}
	keys := make([]string, 0, len(a.values))
	for _, p := range a.decl.props {
		if _, ok := a.values[p.Name()]; ok {
			keys = append(keys, p.Name())
		}
	}
	return keys
}

// Map returns a deep copy of the instance as plain maps and slices, with
// nested instances converted to map[string]any.
func (a Attributes) Map() map[string]any {
	out := make(map[string]any, len(a.values))
	for k, v := range a.values {
		out[k] = plain(v)
	}
	return out
}

// MarshalJSON encodes the instance keyed by declared field names.
func (a Attributes) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Map())
}

// MarshalYAML implements yaml.Marshaler.
func (a Attributes) MarshalYAML() (any, error) {
	return a.Map(), nil
}

func plain(v any) any {
	switch v := v.(type) {
	case Attributes:
		return v.Map()
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = plain(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = plain(item)
		}
		return out
	case nil:
		return nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && rv.Type().Elem() == anyType {
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), valueOf(plain(iter.Value().Interface())))
		}
		return out.Interface()
	}
	return clone(v)
}

// clone deep-copies slices and maps, keeping their types. Attributes are
// immutable and returned as is.
func clone(v any) any {
	switch v := v.(type) {
	case nil:
		return nil
	case Attributes:
		return v
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = clone(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = clone(item)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(cloneAs(rv.Type().Elem(), rv.Index(i)))
		}
		return out.Interface()
	case reflect.Map:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), cloneAs(rv.Type().Elem(), iter.Value()))
		}
		return out.Interface()
	}
	return v
}

func cloneAs(typ reflect.Type, v reflect.Value) reflect.Value {
	c := clone(v.Interface())
	if c == nil {
		return reflect.Zero(typ)
	}
	return reflect.ValueOf(c)
}
