// Package document defines the parsed configuration tree consumed by the
// reify engine: an immutable variant node that is either a map of named
// children, a sequence of children, or a scalar. Every node carries the
// source position it was parsed from, used only for diagnostics.
//
// Trees are produced by the format frontends in this package (YAML, KDL,
// JSONC) and never mutated afterward.
package document

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrDuplicateKey indicates a map node with two identical keys.
var ErrDuplicateKey = errors.New("duplicate map key")

// Kind identifies the variant a Node holds.
type Kind uint8

// Node kinds.
const (
	KindInvalid Kind = iota
	KindMap
	KindSequence
	KindScalar
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindMap:
		return "map"
	case KindSequence:
		return "sequence"
	case KindScalar:
		return "scalar"
	default:
		return "invalid"
	}
}

// Pos is a source position. A zero Pos means the position is unknown
// (some frontends cannot recover one).
type Pos struct {
	File   string
	Line   int
	Column int
}

// String formats the position as file:line:column, omitting unknown parts.
func (p Pos) String() string {
	switch {
	case p.Line == 0 && p.File == "":
		return "<unknown>"
	case p.Line == 0:
		return p.File
	case p.File == "":
		return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
	default:
		return p.File + ":" + strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
	}
}

// Pair is one key/value entry of a map node. Keys are unique within a node.
type Pair struct {
	Key   string
	Value *Node
}

// Node is one unit of parsed configuration data.
type Node struct {
	kind  Kind
	pairs []Pair
	items []*Node
	value string
	null  bool
	pos   Pos
}

// NewMap builds a map node from ordered key/value pairs. It returns
// ErrDuplicateKey if two pairs share a key; key uniqueness is a structural
// invariant the engine relies on.
func NewMap(pos Pos, pairs ...Pair) (*Node, error) {
	seen := make(map[string]struct{}, len(pairs))
	for i := range pairs {
		if _, dup := seen[pairs[i].Key]; dup {
			return nil, fmt.Errorf("%w: %q at %s", ErrDuplicateKey, pairs[i].Key, pos)
		}
		seen[pairs[i].Key] = struct{}{}
	}
	return &Node{kind: KindMap, pairs: pairs, pos: pos}, nil
}

// NewSequence builds a sequence node from ordered items.
func NewSequence(pos Pos, items ...*Node) *Node {
	return &Node{kind: KindSequence, items: items, pos: pos}
}

// NewScalar builds a scalar node holding the given text.
func NewScalar(pos Pos, text string) *Node {
	return &Node{kind: KindScalar, value: text, pos: pos}
}

// NewNull builds a scalar node representing an explicit null.
func NewNull(pos Pos) *Node {
	return &Node{kind: KindScalar, value: "null", null: true, pos: pos}
}

// Kind returns the node's variant.
func (n *Node) Kind() Kind { return n.kind }

// Pos returns the node's source position.
func (n *Node) Pos() Pos { return n.pos }

// Len returns the number of pairs for a map node or items for a sequence
// node, and 0 for scalars.
func (n *Node) Len() int {
	if n.kind == KindMap {
		return len(n.pairs)
	}
	return len(n.items)
}

// Item returns the i-th child of a sequence node.
func (n *Node) Item(i int) *Node { return n.items[i] }

// Pairs returns the ordered key/value entries of a map node. The returned
// slice must not be modified.
func (n *Node) Pairs() []Pair { return n.pairs }

// Lookup finds the value under key in a map node. With fold set, the match
// is case-insensitive; callers that need to detect ambiguous folded matches
// should scan Pairs themselves.
func (n *Node) Lookup(key string, fold bool) (*Node, bool) {
	for i := range n.pairs {
		if n.pairs[i].Key == key || (fold && strings.EqualFold(n.pairs[i].Key, key)) {
			return n.pairs[i].Value, true
		}
	}
	return nil, false
}

// Text returns a scalar node's text payload.
func (n *Node) Text() string { return n.value }

// IsNull reports whether the node is an explicit null scalar, or a scalar
// whose text is the literal "null".
func (n *Node) IsNull() bool {
	return n.kind == KindScalar && (n.null || n.value == "null")
}
