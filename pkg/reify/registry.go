package reify

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/ndisidore/molt/pkg/document"
)

// Decoder converts a document node into a value of a registered type,
// receiving the existing value (or the type's zero value) to merge into.
// A registered decoder fully replaces the engine's built-in shape handling
// for its type.
type Decoder func(existing any, node *document.Node) (any, error)

// The registry is written during program setup and read on every decode of
// a registered type, so reads take the cheap shared lock.
var _registry = struct {
	mu     sync.RWMutex
	byType map[reflect.Type]Decoder
}{byType: make(map[reflect.Type]Decoder)}

// RegisterDecoder installs fn as the decoder for T, replacing any previous
// registration. Each type holds at most one decoder. Registration is a
// setup-time operation: complete it before concurrent decoding begins.
func RegisterDecoder[T any](fn func(existing T, node *document.Node) (T, error)) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	register(t, func(existing any, node *document.Node) (any, error) {
		var prev T
		if existing != nil {
			if typed, ok := existing.(T); ok {
				prev = typed
			}
		}
		return fn(prev, node)
	})
}

// RegisterEnum installs a decoder for T that matches scalar text against
// the given member names, case-insensitively. Unknown names fail with
// ErrUnknownName.
func RegisterEnum[T any](names map[string]T) {
	folded := make(map[string]T, len(names))
	sorted := make([]string, 0, len(names))
	for name, v := range names {
		folded[strings.ToLower(name)] = v
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	RegisterDecoder(func(_ T, node *document.Node) (T, error) {
		var zero T
		if node.Kind() != document.KindScalar {
			return zero, fmt.Errorf("expected scalar, got %s", node.Kind())
		}
		v, ok := folded[strings.ToLower(node.Text())]
		if !ok {
			return zero, fmt.Errorf("%w: %q (known: %s)",
				ErrUnknownName, node.Text(), strings.Join(sorted, ", "))
		}
		return v, nil
	})
}

func register(t reflect.Type, d Decoder) {
	_registry.mu.Lock()
	defer _registry.mu.Unlock()
	_registry.byType[t] = d
}

func decoderFor(t reflect.Type) (Decoder, bool) {
	_registry.mu.RLock()
	defer _registry.mu.RUnlock()
	d, ok := _registry.byType[t]
	return d, ok
}
