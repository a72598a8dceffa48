package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is checks against the typed errors below.
var (
	ErrInvalidType              = errors.New("invalid type")
	ErrUndefinedAttribute       = errors.New("undefined attribute")
	ErrMissingRequiredAttribute = errors.New("missing required attribute")
	ErrInvalidValue             = errors.New("invalid value")
)

// InvalidTypeError reports a type expression leaf that is neither a
// primitive tag nor a declaration reference.
type InvalidTypeError struct {
	// Property is the field being declared, empty when validating a bare type.
	Property string
	// Type describes the offending leaf.
	Type string
}

// Error returns the error message.
func (e *InvalidTypeError) Error() string {
	msg := fmt.Sprintf("invalid type: %s. Must be a primitive type or a declaration", e.Type)
	if e.Property != "" {
		return fmt.Sprintf("property %q: %s", e.Property, msg)
	}
	return msg
}

// Unwrap allows errors.Is(err, ErrInvalidType).
func (e *InvalidTypeError) Unwrap() error { return ErrInvalidType }

// UndefinedAttributeError reports input keys that are not declared fields.
type UndefinedAttributeError struct {
	Declaration string
	Keys        []string
}

// Error returns the error message.
func (e *UndefinedAttributeError) Error() string {
	return withDeclaration(e.Declaration, "undefined attributes: "+strings.Join(e.Keys, ", "))
}

// Unwrap allows errors.Is(err, ErrUndefinedAttribute).
func (e *UndefinedAttributeError) Unwrap() error { return ErrUndefinedAttribute }

// MissingRequiredAttributeError reports every required field absent from
// the processed input.
type MissingRequiredAttributeError struct {
	Declaration string
	Keys        []string
}

// Error returns the error message.
func (e *MissingRequiredAttributeError) Error() string {
	return withDeclaration(e.Declaration, "missing required attributes: "+strings.Join(e.Keys, ", "))
}

// Unwrap allows errors.Is(err, ErrMissingRequiredAttribute).
func (e *MissingRequiredAttributeError) Unwrap() error { return ErrMissingRequiredAttribute }

// InvalidValueError reports a runtime value whose shape cannot be processed,
// such as a scalar given to an array field.
type InvalidValueError struct {
	Expected string
	Value    any
}

// Error returns the error message.
func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value: expected %s, got %T", e.Expected, e.Value)
}

// Unwrap allows errors.Is(err, ErrInvalidValue).
func (e *InvalidValueError) Unwrap() error { return ErrInvalidValue }

// FieldError reports a value of one field that failed processing. Nested
// failures chain, so the message reads from the outermost declaration
// inward, e.g. "Shop.Order: lines: [0]: Shop.LineItem: missing required
// attributes: sku".
type FieldError struct {
	Declaration string
	Field       string
	Err         error
}

// Error returns the error message.
func (e *FieldError) Error() string {
	return withDeclaration(e.Declaration, e.Field+": "+e.Err.Error())
}

// Unwrap returns the underlying error.
func (e *FieldError) Unwrap() error { return e.Err }

func withDeclaration(name, msg string) string {
	if name == "" {
		return msg
	}
	return name + ": " + msg
}
