package schema

import (
	"fmt"
	"sort"
)

// Type is a closed type expression: a Primitive, a *Declaration reference,
// an ArrayType or a MapType. Type expressions are immutable once built.
type Type interface {
	isType()
}

// Primitive is a scalar type tag.
type Primitive string

// Primitive tags. Date is the one tag whose rendered text differs from its
// tag ("Date").
const (
	String    Primitive = "string"
	Number    Primitive = "number"
	Boolean   Primitive = "boolean"
	Any       Primitive = "any"
	Null      Primitive = "null"
	Undefined Primitive = "undefined"
	Void      Primitive = "void"
	Never     Primitive = "never"
	Unknown   Primitive = "unknown"
	Object    Primitive = "object"
	Date      Primitive = "date"
)

var primitiveText = map[Primitive]string{
	String:    "string",
	Number:    "number",
	Boolean:   "boolean",
	Any:       "any",
	Null:      "null",
	Undefined: "undefined",
	Void:      "void",
	Never:     "never",
	Unknown:   "unknown",
	Object:    "object",
	Date:      "Date",
}

func (Primitive) isType() {}

// Valid reports whether p is one of the known primitive tags.
func (p Primitive) Valid() bool {
	_, ok := primitiveText[p]
	return ok
}

// Primitives returns every primitive tag, sorted.
func Primitives() []Primitive {
	out := make([]Primitive, 0, len(primitiveText))
	for p := range primitiveText {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParsePrimitive returns the primitive for a tag. The rendered form "Date"
// is accepted as an alias of the date tag.
func ParsePrimitive(tag string) (Primitive, error) {
	if tag == "Date" {
		return Date, nil
	}
	p := Primitive(tag)
	if !p.Valid() {
		return "", &InvalidTypeError{Type: tag}
	}
	return p, nil
}

// ArrayType is a homogeneous list of Elem.
type ArrayType struct {
	Elem Type
}

func (ArrayType) isType() {}

// ArrayOf returns the array-of type expression for elem.
func ArrayOf(elem Type) ArrayType {
	return ArrayType{Elem: elem}
}

// MapType is a keyed map from Key to Value.
type MapType struct {
	Key   Type
	Value Type
}

func (MapType) isType() {}

// MapOf returns the map-of type expression.
func MapOf(key, value Type) MapType {
	return MapType{Key: key, Value: value}
}

// TypeString resolves a type expression to its textual signature.
//
//	string              -> string
//	date                -> Date
//	*Declaration        -> its bare type name
//	ArrayOf(T)          -> T[]
//	MapOf(K, V)         -> { [key: K]: V }
//
// It must only be called on expressions that passed ValidateType.
func TypeString(t Type) string {
	switch t := t.(type) {
	case Primitive:
		if text, ok := primitiveText[t]; ok {
			return text
		}
		return string(t)
	case *Declaration:
		return t.TypeName()
	case ArrayType:
		return TypeString(t.Elem) + "[]"
	case MapType:
		return "{ [key: " + TypeString(t.Key) + "]: " + TypeString(t.Value) + " }"
	default:
		return ""
	}
}

// ValidateType checks every leaf of t, descending through array and map
// wrappers. A leaf must be a known primitive tag or a named declaration;
// anonymous declarations have no type name to reference.
func ValidateType(t Type) error {
	switch t := t.(type) {
	case nil:
		return &InvalidTypeError{Type: "<nil>"}
	case Primitive:
		if !t.Valid() {
			return &InvalidTypeError{Type: string(t)}
		}
		return nil
	case *Declaration:
		if t == nil {
			return &InvalidTypeError{Type: "<nil declaration>"}
		}
		if t.IsAnonymous() {
			return &InvalidTypeError{Type: "<anonymous declaration>"}
		}
		return nil
	case ArrayType:
		return ValidateType(t.Elem)
	case MapType:
		if err := ValidateType(t.Key); err != nil {
			return err
		}
		return ValidateType(t.Value)
	default:
		return &InvalidTypeError{Type: fmt.Sprintf("%T", t)}
	}
}

// TypeReferences returns the declarations referenced by t, in order of
// appearance, descending through array and map wrappers.
func TypeReferences(t Type) []*Declaration {
	var refs []*Declaration
	var walk func(Type)
	walk = func(t Type) {
		switch t := t.(type) {
		case *Declaration:
			if t != nil {
				refs = append(refs, t)
			}
		case ArrayType:
			walk(t.Elem)
		case MapType:
			walk(t.Key)
			walk(t.Value)
		}
	}
	walk(t)
	return refs
}
