package document

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sentinel errors for YAML frontend failures.
var (
	ErrNonScalarKey = errors.New("map key is not a scalar")
	ErrYAMLShape    = errors.New("unsupported YAML node shape")
)

// ParseYAML parses a YAML document from r into a tree. The filename is
// recorded in node positions and error messages only.
func ParseYAML(r io.Reader, filename string) (*Node, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return NewNull(Pos{File: filename}), nil
		}
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	n, err := fromYAML(&root, filename)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	return n, nil
}

// ParseYAMLString parses YAML content from a string.
func ParseYAMLString(content string) (*Node, error) {
	return ParseYAML(strings.NewReader(content), "<string>")
}

func fromYAML(y *yaml.Node, filename string) (*Node, error) {
	pos := Pos{File: filename, Line: y.Line, Column: y.Column}

	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return NewNull(pos), nil
		}
		return fromYAML(y.Content[0], filename)

	case yaml.AliasNode:
		return fromYAML(y.Alias, filename)

	case yaml.MappingNode:
		pairs := make([]Pair, 0, len(y.Content)/2)
		for i := 0; i+1 < len(y.Content); i += 2 {
			k, v := y.Content[i], y.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%w at line %d", ErrNonScalarKey, k.Line)
			}
			child, err := fromYAML(v, filename)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, Pair{Key: k.Value, Value: child})
		}
		return NewMap(pos, pairs...)

	case yaml.SequenceNode:
		items := make([]*Node, 0, len(y.Content))
		for _, c := range y.Content {
			child, err := fromYAML(c, filename)
			if err != nil {
				return nil, err
			}
			items = append(items, child)
		}
		return NewSequence(pos, items...), nil

	case yaml.ScalarNode:
		if y.Tag == "!!null" {
			return NewNull(pos), nil
		}
		return NewScalar(pos, y.Value), nil

	default:
		return nil, fmt.Errorf("%w: kind %d at line %d", ErrYAMLShape, y.Kind, y.Line)
	}
}
