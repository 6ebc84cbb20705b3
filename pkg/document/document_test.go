package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMap(t *testing.T) {
	t.Parallel()

	t.Run("preserves pair order", func(t *testing.T) {
		t.Parallel()
		n, err := NewMap(Pos{},
			Pair{Key: "b", Value: NewScalar(Pos{}, "1")},
			Pair{Key: "a", Value: NewScalar(Pos{}, "2")},
		)
		require.NoError(t, err)
		require.Equal(t, 2, n.Len())
		assert.Equal(t, "b", n.Pairs()[0].Key)
		assert.Equal(t, "a", n.Pairs()[1].Key)
	})

	t.Run("rejects duplicate keys", func(t *testing.T) {
		t.Parallel()
		_, err := NewMap(Pos{},
			Pair{Key: "a", Value: NewScalar(Pos{}, "1")},
			Pair{Key: "a", Value: NewScalar(Pos{}, "2")},
		)
		require.ErrorIs(t, err, ErrDuplicateKey)
	})

	t.Run("keys differing by case are distinct", func(t *testing.T) {
		t.Parallel()
		_, err := NewMap(Pos{},
			Pair{Key: "a", Value: NewScalar(Pos{}, "1")},
			Pair{Key: "A", Value: NewScalar(Pos{}, "2")},
		)
		require.NoError(t, err)
	})
}

func TestLookup(t *testing.T) {
	t.Parallel()

	n, err := NewMap(Pos{},
		Pair{Key: "Count", Value: NewScalar(Pos{}, "1")},
	)
	require.NoError(t, err)

	tests := []struct {
		name  string
		key   string
		fold  bool
		found bool
	}{
		{name: "exact", key: "Count", fold: false, found: true},
		{name: "folded without fold", key: "count", fold: false, found: false},
		{name: "folded with fold", key: "count", fold: true, found: true},
		{name: "absent", key: "total", fold: true, found: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, ok := n.Lookup(tt.key, tt.fold)
			assert.Equal(t, tt.found, ok)
		})
	}
}

func TestIsNull(t *testing.T) {
	t.Parallel()

	assert.True(t, NewNull(Pos{}).IsNull())
	assert.True(t, NewScalar(Pos{}, "null").IsNull())
	assert.False(t, NewScalar(Pos{}, "nil").IsNull())
	assert.False(t, NewSequence(Pos{}).IsNull())
}

func TestPosString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "<unknown>", Pos{}.String())
	assert.Equal(t, "cfg.yaml", Pos{File: "cfg.yaml"}.String())
	assert.Equal(t, "cfg.yaml:3:7", Pos{File: "cfg.yaml", Line: 3, Column: 7}.String())
	assert.Equal(t, "3:7", Pos{Line: 3, Column: 7}.String())
}

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "map", KindMap.String())
	assert.Equal(t, "sequence", KindSequence.String())
	assert.Equal(t, "scalar", KindScalar.String())
	assert.Equal(t, "invalid", KindInvalid.String())
}
