package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseYAML(t *testing.T) {
	t.Parallel()

	t.Run("mapping with positions", func(t *testing.T) {
		t.Parallel()
		n, err := ParseYAMLString("name: db\nport: 5432\n")
		require.NoError(t, err)
		require.Equal(t, KindMap, n.Kind())
		require.Equal(t, 2, n.Len())

		assert.Equal(t, "name", n.Pairs()[0].Key)
		assert.Equal(t, "db", n.Pairs()[0].Value.Text())
		assert.Equal(t, 1, n.Pairs()[0].Value.Pos().Line)
		assert.Equal(t, 2, n.Pairs()[1].Value.Pos().Line)
	})

	t.Run("nested sequences", func(t *testing.T) {
		t.Parallel()
		n, err := ParseYAMLString("grid:\n  - [1, 2]\n  - [3, 4]\n")
		require.NoError(t, err)
		grid, ok := n.Lookup("grid", false)
		require.True(t, ok)
		require.Equal(t, KindSequence, grid.Kind())
		require.Equal(t, 2, grid.Len())
		assert.Equal(t, "2", grid.Item(0).Item(1).Text())
	})

	t.Run("null spellings", func(t *testing.T) {
		t.Parallel()
		for _, content := range []string{"~", "null", ""} {
			n, err := ParseYAMLString(content)
			require.NoError(t, err, "content %q", content)
			assert.True(t, n.IsNull(), "content %q", content)
		}
	})

	t.Run("anchors resolve", func(t *testing.T) {
		t.Parallel()
		n, err := ParseYAMLString("base: &b 8080\nport: *b\n")
		require.NoError(t, err)
		port, ok := n.Lookup("port", false)
		require.True(t, ok)
		assert.Equal(t, "8080", port.Text())
	})

	t.Run("duplicate keys rejected", func(t *testing.T) {
		t.Parallel()
		_, err := ParseYAMLString("a: 1\na: 2\n")
		require.ErrorIs(t, err, ErrDuplicateKey)
	})

	t.Run("non-scalar key rejected", func(t *testing.T) {
		t.Parallel()
		_, err := ParseYAMLString("{[1, 2]: x}")
		require.ErrorIs(t, err, ErrNonScalarKey)
	})

	t.Run("syntax error is wrapped with filename", func(t *testing.T) {
		t.Parallel()
		_, err := ParseYAMLString("a: [unclosed")
		require.Error(t, err)
		assert.ErrorContains(t, err, "<string>")
	})
}
