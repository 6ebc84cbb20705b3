package reify

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/ndisidore/molt/pkg/document"
)

// Contract sentinels represent programmer or schema misuse rather than bad
// input; they are not expected to be recovered from.
var (
	// ErrContract is the base error all contract violations wrap.
	ErrContract = errors.New("contract violation")
	// ErrAmbiguousKey indicates case-insensitive lookup matched more than
	// one input key for a single member.
	ErrAmbiguousKey = errors.New("ambiguous key")
	// ErrUnknownName indicates a registered enum has no member with the
	// given name.
	ErrUnknownName = errors.New("unknown name")
)

// ConversionError reports a value that could not be decoded into its target
// type: a shape mismatch, unparsable scalar text, or a failure bubbled up
// from a nested decode, custom decoder, or hook. It always carries the
// source position of the nearest enclosing node.
type ConversionError struct {
	Target reflect.Type
	Pos    document.Pos
	Err    error
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot decode into %s at %s: %v", e.Target, e.Pos, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ConversionError) Unwrap() error { return e.Err }

// MissingFieldsError reports required members left unset by a populate
// pass. Writes that happened before validation remain applied.
type MissingFieldsError struct {
	Type   reflect.Type
	Fields []string
	Pos    document.Pos
}

// Error implements the error interface.
func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("%s at %s: missing required fields: %s",
		e.Type, e.Pos, strings.Join(e.Fields, ", "))
}

// ExtraFieldsError reports input map keys that matched no target member.
// Writes that happened before validation remain applied.
type ExtraFieldsError struct {
	Type reflect.Type
	Keys []string
	Pos  document.Pos
}

// Error implements the error interface.
func (e *ExtraFieldsError) Error() string {
	return fmt.Sprintf("%s at %s: unrecognized fields: %s",
		e.Type, e.Pos, strings.Join(e.Keys, ", "))
}

// UnsupportedTypeError reports a target shape the engine cannot decode:
// anything outside scalars, pointers, arrays, slices, string-keyed-input
// maps, structs, and registered custom types.
type UnsupportedTypeError struct {
	Type reflect.Type
}

// Error implements the error interface.
func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported target type %s", e.Type)
}

// tagPos wraps err as a ConversionError carrying node's position, unless it
// is already one of the taxonomy errors (which carry their own position and
// structured data).
func tagPos(err error, target reflect.Type, node *document.Node) error {
	var (
		conv    *ConversionError
		missing *MissingFieldsError
		extra   *ExtraFieldsError
	)
	if errors.As(err, &conv) || errors.As(err, &missing) || errors.As(err, &extra) {
		return err
	}
	return &ConversionError{Target: target, Pos: node.Pos(), Err: err}
}
