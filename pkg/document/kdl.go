package document

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	kdldoc "github.com/sblinch/kdl-go/document"
)

// ParseKDL parses a KDL document from r into a tree.
//
// KDL has no native map/sequence/scalar distinction, so a fixed mapping is
// applied: the document becomes a map keyed by node name; a node with
// children or properties becomes a map (properties sorted by key, then
// children); a node with a single argument becomes that scalar; a node with
// several arguments becomes a sequence of scalars; a bare node becomes null.
// Siblings sharing a name are collected into a sequence under that name.
//
// kdl-go does not expose source positions, so KDL nodes carry only the
// filename.
func ParseKDL(r io.Reader, filename string) (*Node, error) {
	doc, err := kdl.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	n, err := fromKDLNodes(doc.Nodes, Pos{File: filename})
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	return n, nil
}

// ParseKDLString parses KDL content from a string.
func ParseKDLString(content string) (*Node, error) {
	return ParseKDL(strings.NewReader(content), "<string>")
}

// fromKDLNodes converts a sibling group into a map node, folding repeated
// names into sequences.
func fromKDLNodes(nodes []*kdldoc.Node, pos Pos) (*Node, error) {
	order := make([]string, 0, len(nodes))
	grouped := make(map[string][]*Node, len(nodes))

	for _, kn := range nodes {
		name := kn.Name.ValueString()
		value, err := fromKDLNode(kn, pos)
		if err != nil {
			return nil, err
		}
		if _, seen := grouped[name]; !seen {
			order = append(order, name)
		}
		grouped[name] = append(grouped[name], value)
	}

	pairs := make([]Pair, 0, len(order))
	for _, name := range order {
		values := grouped[name]
		if len(values) == 1 {
			pairs = append(pairs, Pair{Key: name, Value: values[0]})
			continue
		}
		pairs = append(pairs, Pair{Key: name, Value: NewSequence(pos, values...)})
	}
	return NewMap(pos, pairs...)
}

func fromKDLNode(kn *kdldoc.Node, pos Pos) (*Node, error) {
	if len(kn.Children) > 0 || len(kn.Properties) > 0 {
		child, err := fromKDLNodes(kn.Children, pos)
		if err != nil {
			return nil, err
		}

		keys := make([]string, 0, len(kn.Properties))
		for k := range kn.Properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		pairs := make([]Pair, 0, len(keys)+child.Len())
		for _, k := range keys {
			pairs = append(pairs, Pair{Key: k, Value: scalarFromKDL(kn.Properties[k].ResolvedValue(), pos)})
		}
		pairs = append(pairs, child.Pairs()...)
		return NewMap(pos, pairs...)
	}

	switch len(kn.Arguments) {
	case 0:
		return NewNull(pos), nil
	case 1:
		return scalarFromKDL(kn.Arguments[0].ResolvedValue(), pos), nil
	default:
		items := make([]*Node, 0, len(kn.Arguments))
		for _, a := range kn.Arguments {
			items = append(items, scalarFromKDL(a.ResolvedValue(), pos))
		}
		return NewSequence(pos, items...), nil
	}
}

// scalarFromKDL renders a resolved KDL value as a scalar node.
func scalarFromKDL(v any, pos Pos) *Node {
	switch x := v.(type) {
	case nil:
		return NewNull(pos)
	case string:
		return NewScalar(pos, x)
	case bool:
		return NewScalar(pos, strconv.FormatBool(x))
	case int64:
		return NewScalar(pos, strconv.FormatInt(x, 10))
	case uint64:
		return NewScalar(pos, strconv.FormatUint(x, 10))
	case float64:
		return NewScalar(pos, strconv.FormatFloat(x, 'g', -1, 64))
	default:
		return NewScalar(pos, fmt.Sprintf("%v", x))
	}
}
