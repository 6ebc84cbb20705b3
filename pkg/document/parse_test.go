package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFile(t *testing.T) {
	t.Parallel()

	writeFile := func(t *testing.T, name, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	tests := []struct {
		name    string
		file    string
		content string
		want    string // expected text under key "host"
	}{
		{name: "yaml", file: "cfg.yaml", content: "host: a\n", want: "a"},
		{name: "yml", file: "cfg.yml", content: "host: b\n", want: "b"},
		{name: "kdl", file: "cfg.kdl", content: `host "c"`, want: "c"},
		{name: "jsonc", file: "cfg.jsonc", content: `{"host": "d"}`, want: "d"},
		{name: "json", file: "cfg.json", content: `{"host": "e"}`, want: "e"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := writeFile(t, tt.file, tt.content)
			n, err := ParseFile(path)
			require.NoError(t, err)
			host, ok := n.Lookup("host", false)
			require.True(t, ok)
			assert.Equal(t, tt.want, host.Text())
		})
	}

	t.Run("unknown extension", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, "cfg.toml", "host = 'x'\n")
		_, err := ParseFile(path)
		require.ErrorIs(t, err, ErrUnknownFormat)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := ParseFile(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.ErrorContains(t, err, "opening")
	})

	t.Run("position records the path", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, "cfg.yaml", "host: a\n")
		n, err := ParseFile(path)
		require.NoError(t, err)
		assert.Equal(t, path, n.Pos().File)
	})
}
