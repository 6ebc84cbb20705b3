package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/ndisidore/molt/pkg/document"
)

// Tree writes an indented rendering of a document tree to w. With color
// set, map keys are highlighted and nulls dimmed; otherwise the output is
// plain text suitable for piping.
func Tree(w io.Writer, n *document.Node, color bool) error {
	return writeNode(w, n, 0, color)
}

func writeNode(w io.Writer, n *document.Node, depth int, color bool) error {
	indent := strings.Repeat("  ", depth)

	switch n.Kind() {
	case document.KindMap:
		for _, p := range n.Pairs() {
			key := p.Key
			if color {
				key = _keyStyle.Render(key)
			}
			if p.Value.Kind() == document.KindScalar {
				if _, err := fmt.Fprintf(w, "%s%s: %s\n", indent, key, scalarText(p.Value, color)); err != nil {
					return err
				}
				continue
			}
			if _, err := fmt.Fprintf(w, "%s%s:\n", indent, key); err != nil {
				return err
			}
			if err := writeNode(w, p.Value, depth+1, color); err != nil {
				return err
			}
		}
	case document.KindSequence:
		for i := 0; i < n.Len(); i++ {
			item := n.Item(i)
			if item.Kind() == document.KindScalar {
				if _, err := fmt.Fprintf(w, "%s- %s\n", indent, scalarText(item, color)); err != nil {
					return err
				}
				continue
			}
			if _, err := fmt.Fprintf(w, "%s-\n", indent); err != nil {
				return err
			}
			if err := writeNode(w, item, depth+1, color); err != nil {
				return err
			}
		}
	case document.KindScalar:
		if _, err := fmt.Fprintf(w, "%s%s\n", indent, scalarText(n, color)); err != nil {
			return err
		}
	}
	return nil
}

func scalarText(n *document.Node, color bool) string {
	if n.IsNull() {
		if color {
			return _nullStyle.Render("null")
		}
		return "null"
	}
	return n.Text()
}

// Header formats a section heading, bold when color is set.
func Header(s string, color bool) string {
	if color {
		return _titleStyle.Render(s)
	}
	return s
}

// Summary returns a one-line description of a tree: its kind and child
// count, e.g. "map (7 keys)".
func Summary(n *document.Node) string {
	switch n.Kind() {
	case document.KindMap:
		return fmt.Sprintf("map (%d keys)", n.Len())
	case document.KindSequence:
		return fmt.Sprintf("sequence (%d items)", n.Len())
	default:
		return "scalar"
	}
}
