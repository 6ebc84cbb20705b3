package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"
)

// ErrTrailingContent indicates data after the first JSON value.
var ErrTrailingContent = errors.New("trailing content after document")

// ParseJSONC parses a JSONC (JSON with comments and trailing commas)
// document from r into a tree. Comments are stripped with their bytes
// replaced by whitespace, so positions refer to the original input.
func ParseJSONC(r io.Reader, filename string) (*Node, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}

	clean := jsonc.ToJSON(raw)
	dec := json.NewDecoder(bytes.NewReader(clean))
	dec.UseNumber()

	n, err := jsonValue(dec, clean, filename)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("parsing %s: %w at %s",
			filename, ErrTrailingContent, offsetPos(clean, dec.InputOffset(), filename))
	}
	return n, nil
}

// ParseJSONCString parses JSONC content from a string.
func ParseJSONCString(content string) (*Node, error) {
	return ParseJSONC(strings.NewReader(content), "<string>")
}

func jsonValue(dec *json.Decoder, data []byte, filename string) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	pos := offsetPos(data, dec.InputOffset(), filename)

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			var pairs []Pair
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key %v is not a string at %s", keyTok, pos)
				}
				value, err := jsonValue(dec, data, filename)
				if err != nil {
					return nil, err
				}
				pairs = append(pairs, Pair{Key: key, Value: value})
			}
			if _, err := dec.Token(); err != nil { // closing '}'
				return nil, err
			}
			return NewMap(pos, pairs...)
		case '[':
			var items []*Node
			for dec.More() {
				item, err := jsonValue(dec, data, filename)
				if err != nil {
					return nil, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil { // closing ']'
				return nil, err
			}
			return NewSequence(pos, items...), nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %q at %s", t, pos)
		}
	case string:
		return NewScalar(pos, t), nil
	case json.Number:
		return NewScalar(pos, t.String()), nil
	case bool:
		return NewScalar(pos, strconv.FormatBool(t)), nil
	case nil:
		return NewNull(pos), nil
	default:
		return nil, fmt.Errorf("unexpected token %v at %s", tok, pos)
	}
}

// offsetPos converts a byte offset into a line/column position. The decoder
// reports offsets just past each token, which is close enough for
// diagnostics.
func offsetPos(data []byte, off int64, filename string) Pos {
	if off > int64(len(data)) {
		off = int64(len(data))
	}
	line, col := 1, 1
	for _, b := range data[:off] {
		if b == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return Pos{File: filename, Line: line, Column: col}
}
