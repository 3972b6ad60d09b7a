package model

import (
	"testing"

	"github.com/arcanaland/ankideck/internal/card"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryIDsAreStable(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()

	assert.Equal(t, int64(1607392319), a.Basic.ID)
	assert.Equal(t, int64(1234567890), a.TypeIn.ID)
	assert.Equal(t, int64(99887766), a.Cloze.ID)

	for i, m := range a.All() {
		assert.Equal(t, m.ID, b.All()[i].ID)
		assert.Equal(t, m.Templates, b.All()[i].Templates)
	}
}

func TestRegistryKinds(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.Basic.IsCloze())
	assert.False(t, r.TypeIn.IsCloze())
	assert.True(t, r.Cloze.IsCloze())
	assert.Equal(t, []string{"Text"}, r.Cloze.Fields)
	assert.Contains(t, r.TypeIn.Templates[0].QFmt, "{{type:Back}}")
}

func TestForType(t *testing.T) {
	r := NewRegistry()

	testCases := []struct {
		typ  card.Type
		want *Model
	}{
		{card.TypeBasic, r.Basic},
		{card.TypeTypeIn, r.TypeIn},
		{card.TypeCloze, r.Cloze},
	}
	for _, tc := range testCases {
		t.Run(string(tc.typ), func(t *testing.T) {
			m, err := r.ForType(tc.typ)
			require.NoError(t, err)
			assert.Same(t, tc.want, m)
		})
	}

	_, err := r.ForType("reversed")
	assert.Error(t, err)
}
