// Package reify converts parsed document trees into statically-typed Go
// values, merge-updating existing instances in place: decoding into a value
// that already holds data preserves the identity of sub-objects whose input
// did not change, rather than reallocating the whole graph. This is what
// makes live config reloading cheap — a reload touches only the values the
// edited file actually changed.
//
// The engine dispatches on the target's shape: scalars, pointers
// (optional values, where a null input yields nil), encoding.TextUnmarshaler
// implementations, fixed arrays, slices, maps, and structs. Types outside
// that set decode through a registered custom decoder (RegisterDecoder,
// RegisterEnum) or fail with UnsupportedTypeError.
//
// Two independent safety policies guard struct decoding: input keys that
// match no member fail with ExtraFieldsError, and members with no input key
// fail with MissingFieldsError. Both are controlled by Options bits,
// per-type markers (Strict, Lenient), and per-member `molt` tag flags.
package reify

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"

	"github.com/ndisidore/molt/pkg/document"
)

// AfterReifier is the post-populate hook: a type implementing it (on the
// pointer receiver) has AfterReify called after every successful
// construction or update of a value of that type, whether decoded as a
// top-level target, a struct member, a collection element, or through a
// custom decoder. The hook may adjust the value in place; returning an
// error fails the decode.
type AfterReifier interface {
	AfterReify() error
}

// Reify decodes node into a freshly-constructed value of type T.
func Reify[T any](node *document.Node, opts ...Options) (T, error) {
	var out T
	err := Update(&out, node, opts...)
	return out, err
}

// Update merge-updates the value behind target, which must be a non-nil
// pointer to any supported shape. The pointed-to value is the "existing"
// instance: containers are resized and reconciled rather than replaced, and
// nested records are written through so their identity survives the update.
// After a validation failure the value may be partially updated; callers
// that need all-or-nothing behavior must decode into a scratch copy.
func Update(target any, node *document.Node, opts ...Options) error {
	rv := reflect.ValueOf(target)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: target must be a non-nil pointer, got %T", ErrContract, target)
	}
	if node == nil {
		return fmt.Errorf("%w: node must not be nil", ErrContract)
	}

	dst := rv.Elem()
	if err := reifyValue(dst, node, effective(opts), 0); err != nil {
		return tagPos(err, dst.Type(), node)
	}
	return nil
}

// Populate fills a struct from a map node through a non-nil struct pointer.
// It is Update restricted to the record case: a non-map node or a non-struct
// target is a contract violation rather than a conversion error.
func Populate(target any, node *document.Node, opts ...Options) error {
	rv := reflect.ValueOf(target)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: target must be a non-nil pointer, got %T", ErrContract, target)
	}
	if rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: target must point to a struct, got %s", ErrContract, rv.Elem().Type())
	}
	if node == nil || node.Kind() != document.KindMap {
		return fmt.Errorf("%w: node must be a map", ErrContract)
	}
	return Update(target, node, opts...)
}

// Recursion depth tracks document nesting, so this bounds input nesting.
// Deeper input fails with a ConversionError instead of exhausting the stack.
const _maxDepth = 1000

// reifyValue is the engine's recursive core: merge-update dst, which must
// be addressable, from node. Dispatch order: registered custom decoder,
// pointer, text unmarshaler, then built-in shape by kind.
func reifyValue(dst reflect.Value, node *document.Node, o Options, depth int) error {
	t := dst.Type()

	if depth > _maxDepth {
		return &ConversionError{Target: t, Pos: node.Pos(),
			Err: fmt.Errorf("input nesting exceeds %d levels", _maxDepth)}
	}

	if dec, ok := decoderFor(t); ok {
		out, err := dec(dst.Interface(), node)
		if err != nil {
			return tagPos(err, t, node)
		}
		if err := assign(dst, out); err != nil {
			return tagPos(err, t, node)
		}
		return runHook(dst, node)
	}

	if t.Kind() == reflect.Pointer {
		if node.IsNull() {
			dst.SetZero()
			return nil
		}
		if dst.IsNil() {
			dst.Set(reflect.New(t.Elem()))
		}
		return reifyValue(dst.Elem(), node, o, depth)
	}

	if node.Kind() == document.KindScalar {
		if tu, ok := dst.Addr().Interface().(encoding.TextUnmarshaler); ok {
			if err := tu.UnmarshalText([]byte(node.Text())); err != nil {
				return &ConversionError{Target: t, Pos: node.Pos(), Err: err}
			}
			return runHook(dst, node)
		}
	}

	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return setScalar(dst, node)
	case reflect.Array:
		return reifyArray(dst, node, o, depth)
	case reflect.Slice:
		return reifySlice(dst, node, o, depth)
	case reflect.Map:
		return reifyMap(dst, node, o, depth)
	case reflect.Struct:
		if err := reifyStruct(dst, node, o, depth); err != nil {
			return err
		}
		return runHook(dst, node)
	default:
		return &UnsupportedTypeError{Type: t}
	}
}

// assign stores a custom decoder's result into dst, tolerating a typed nil
// for nilable kinds.
func assign(dst reflect.Value, out any) error {
	if out == nil {
		switch dst.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
			dst.SetZero()
			return nil
		default:
			return fmt.Errorf("decoder for %s returned nil", dst.Type())
		}
	}
	rv := reflect.ValueOf(out)
	if !rv.Type().AssignableTo(dst.Type()) {
		return fmt.Errorf("decoder for %s returned %s", dst.Type(), rv.Type())
	}
	dst.Set(rv)
	return nil
}

// runHook invokes the post-populate hook if dst's type has one. For structs
// the check is memoized in the metadata cache; other shapes (reached via
// custom decoders) are type-asserted directly.
func runHook(dst reflect.Value, node *document.Node) error {
	if dst.Kind() == reflect.Struct && !metaFor(dst.Type()).afterReify {
		return nil
	}
	h, ok := dst.Addr().Interface().(AfterReifier)
	if !ok {
		return nil
	}
	if err := h.AfterReify(); err != nil {
		return tagPos(err, dst.Type(), node)
	}
	return nil
}

// setScalar parses a scalar node's text into a scalar target. Parsing is
// locale-invariant (strconv).
func setScalar(dst reflect.Value, node *document.Node) error {
	t := dst.Type()
	if node.Kind() != document.KindScalar {
		return &ConversionError{Target: t, Pos: node.Pos(),
			Err: fmt.Errorf("expected scalar, got %s", node.Kind())}
	}
	text := node.Text()

	var err error
	switch t.Kind() {
	case reflect.Bool:
		var v bool
		if v, err = strconv.ParseBool(text); err == nil {
			dst.SetBool(v)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var v int64
		if v, err = strconv.ParseInt(text, 10, t.Bits()); err == nil {
			dst.SetInt(v)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var v uint64
		if v, err = strconv.ParseUint(text, 10, t.Bits()); err == nil {
			dst.SetUint(v)
		}
	case reflect.Float32, reflect.Float64:
		var v float64
		if v, err = strconv.ParseFloat(text, t.Bits()); err == nil {
			dst.SetFloat(v)
		}
	case reflect.String:
		dst.SetString(text)
	}

	if err != nil {
		return &ConversionError{Target: t, Pos: node.Pos(), Err: err}
	}
	return nil
}

// reifyArray fills a fixed-length Go array. The node must be a sequence of
// exactly the array's length; for nested arrays this validates every rank,
// so jagged input fails instead of being silently truncated.
func reifyArray(dst reflect.Value, node *document.Node, o Options, depth int) error {
	t := dst.Type()
	if node.Kind() != document.KindSequence {
		return &ConversionError{Target: t, Pos: node.Pos(),
			Err: fmt.Errorf("expected sequence, got %s", node.Kind())}
	}
	if node.Len() != t.Len() {
		return &ConversionError{Target: t, Pos: node.Pos(),
			Err: fmt.Errorf("sequence has %d elements, array holds %d", node.Len(), t.Len())}
	}
	for i := 0; i < t.Len(); i++ {
		if err := reifyValue(dst.Index(i), node.Item(i), o, depth+1); err != nil {
			return tagPos(err, t.Elem(), node.Item(i))
		}
	}
	return nil
}

// reifySlice merge-updates a slice: the existing slice is truncated from
// the tail to the input length, surviving slots are updated in place (so
// records and nested containers keep their identity), and new elements are
// appended freshly constructed. A null input clears the slice.
func reifySlice(dst reflect.Value, node *document.Node, o Options, depth int) error {
	t := dst.Type()
	if node.IsNull() {
		dst.SetZero()
		return nil
	}
	if node.Kind() != document.KindSequence {
		return &ConversionError{Target: t, Pos: node.Pos(),
			Err: fmt.Errorf("expected sequence, got %s", node.Kind())}
	}

	n := node.Len()
	if dst.IsNil() {
		dst.Set(reflect.MakeSlice(t, 0, n))
	}
	if dst.Len() > n {
		dst.SetLen(n)
	}

	for i := 0; i < dst.Len(); i++ {
		if err := reifyValue(dst.Index(i), node.Item(i), o, depth+1); err != nil {
			return tagPos(err, t.Elem(), node.Item(i))
		}
	}
	for i := dst.Len(); i < n; i++ {
		elem := reflect.New(t.Elem()).Elem()
		if err := reifyValue(elem, node.Item(i), o, depth+1); err != nil {
			return tagPos(err, t.Elem(), node.Item(i))
		}
		dst.Set(reflect.Append(dst, elem))
	}
	return nil
}

// reifyMap merge-updates a map. Input keys (always text in the document)
// are decoded through the engine as synthesized scalar nodes, so any
// scalar-, enum-, or TextUnmarshaler-keyed map works. Values present under
// an existing key are merge-updated; after all pairs are applied, keys not
// present in the input are removed, making the final key set exactly the
// input's. A null input clears the map.
func reifyMap(dst reflect.Value, node *document.Node, o Options, depth int) error {
	t := dst.Type()
	if node.IsNull() {
		dst.SetZero()
		return nil
	}
	if node.Kind() != document.KindMap {
		return &ConversionError{Target: t, Pos: node.Pos(),
			Err: fmt.Errorf("expected map, got %s", node.Kind())}
	}

	pairs := node.Pairs()
	if dst.IsNil() {
		dst.Set(reflect.MakeMapWithSize(t, len(pairs)))
	}

	touched := make(map[any]struct{}, len(pairs))
	for _, p := range pairs {
		key := reflect.New(t.Key()).Elem()
		keyNode := document.NewScalar(p.Value.Pos(), p.Key)
		if err := reifyValue(key, keyNode, o, depth+1); err != nil {
			return tagPos(err, t.Key(), keyNode)
		}

		val := reflect.New(t.Elem()).Elem()
		if existing := dst.MapIndex(key); existing.IsValid() {
			val.Set(existing)
		}
		if err := reifyValue(val, p.Value, o, depth+1); err != nil {
			return tagPos(err, t.Elem(), p.Value)
		}
		dst.SetMapIndex(key, val)
		touched[key.Interface()] = struct{}{}
	}

	if dst.Len() > len(touched) {
		var stale []reflect.Value
		for _, k := range dst.MapKeys() {
			if _, ok := touched[k.Interface()]; !ok {
				stale = append(stale, k)
			}
		}
		for _, k := range stale {
			dst.SetMapIndex(k, reflect.Value{})
		}
	}
	return nil
}

// reifyStruct decodes into a struct. A map node goes through the populator;
// any other node uses wrapper sugar: a struct with exactly one decodable
// member takes the node directly into that member, which lets value-wrapper
// types appear as plain scalars or sequences in config files.
func reifyStruct(dst reflect.Value, node *document.Node, o Options, depth int) error {
	t := dst.Type()
	m := metaFor(t)

	if node.Kind() != document.KindMap {
		if m.decodable != 1 {
			return fmt.Errorf("%w: %s input for %s requires exactly one decodable member, type has %d",
				ErrContract, node.Kind(), t, m.decodable)
		}
		for i := range m.members {
			if m.members[i].ignore {
				continue
			}
			fld := dst.FieldByIndex(m.members[i].index)
			if err := reifyValue(fld, node, o, depth); err != nil {
				return tagPos(err, m.members[i].typ, node)
			}
			break
		}
		return nil
	}

	return populate(dst, m, node, o, depth)
}
