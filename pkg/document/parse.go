package document

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnknownFormat indicates a file extension no frontend handles.
var ErrUnknownFormat = errors.New("unknown config format")

// Parse parses configuration content from r, selecting the frontend by the
// filename's extension: .yaml/.yml, .kdl, or .json/.jsonc.
func Parse(r io.Reader, filename string) (*Node, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return ParseYAML(r, filename)
	case ".kdl":
		return ParseKDL(r, filename)
	case ".json", ".jsonc":
		return ParseJSONC(r, filename)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, filename)
	}
}

// ParseFile reads and parses the config file at path.
func ParseFile(path string) (n *Node, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	return Parse(f, path)
}
