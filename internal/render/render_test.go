package render

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndisidore/molt/pkg/document"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("json", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log, err := NewLogger(&buf, "json", slog.LevelInfo)
		require.NoError(t, err)
		log.Info("loaded", "path", "cfg.yaml")

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		assert.Equal(t, "loaded", rec["msg"])
		assert.Equal(t, "cfg.yaml", rec["path"])
	})

	t.Run("text", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log, err := NewLogger(&buf, "text", slog.LevelInfo)
		require.NoError(t, err)
		log.Warn("reload failed")
		assert.Contains(t, buf.String(), "level=WARN")
		assert.Contains(t, buf.String(), "reload failed")
	})

	t.Run("pretty", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log, err := NewLogger(&buf, "pretty", slog.LevelInfo)
		require.NoError(t, err)
		log.Info("config reloaded", "path", "cfg.yaml")
		assert.Contains(t, buf.String(), "config reloaded")
		assert.Contains(t, buf.String(), "path=cfg.yaml")
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()
		_, err := NewLogger(&bytes.Buffer{}, "logfmt", slog.LevelInfo)
		require.ErrorIs(t, err, ErrUnknownFormat)
	})
}

func TestColorHandlerLevels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := NewColorHandler(&buf, slog.LevelInfo)
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, h.Enabled(context.Background(), slog.LevelWarn))
}

func TestColorHandlerGroupsAndAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(NewColorHandler(&buf, slog.LevelDebug))
	log = log.With("path", "cfg.yaml").WithGroup("watch")
	log.Info("reloaded", "attempt", 2)

	out := buf.String()
	assert.Contains(t, out, "path=cfg.yaml")
	assert.Contains(t, out, "watch.attempt=2")
}

func mustYAML(t *testing.T, src string) *document.Node {
	t.Helper()
	n, err := document.ParseYAMLString(src)
	require.NoError(t, err)
	return n
}

func TestTree(t *testing.T) {
	t.Parallel()

	const src = `
host: alpha
pool:
  limit: 4
  tags:
    - edge
    - cache
deprecated: null
`
	var buf bytes.Buffer
	require.NoError(t, Tree(&buf, mustYAML(t, src), false))

	want := strings.Join([]string{
		"host: alpha",
		"pool:",
		"  limit: 4",
		"  tags:",
		"    - edge",
		"    - cache",
		"deprecated: null",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestTreeSequenceOfMaps(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Tree(&buf, mustYAML(t, "- name: a\n- name: b\n"), false))
	want := "-\n  name: a\n-\n  name: b\n"
	assert.Equal(t, want, buf.String())
}

func TestSummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{name: "map", src: "a: 1\nb: 2\n", want: "map (2 keys)"},
		{name: "sequence", src: "[1, 2, 3]", want: "sequence (3 items)"},
		{name: "scalar", src: "42", want: "scalar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Summary(mustYAML(t, tt.src)))
		})
	}
}

func TestHeaderPlain(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "cfg.yaml", Header("cfg.yaml", false))
}
