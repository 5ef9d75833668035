package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	s := New("b", "a")
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("c"))

	assert.True(t, s.AddNew("c"))
	assert.False(t, s.AddNew("c"))
	s.Add("a")
	assert.Len(t, s, 3)
}

func TestMissingKeys(t *testing.T) {
	allowed := New("include", "exclude")
	m := map[string]any{"include": 1, "zeta": 2, "alpha": 3}
	assert.Equal(t, []string{"alpha", "zeta"}, MissingKeys(m, allowed))
	assert.Empty(t, MissingKeys(map[string]any{"include": 1}, allowed))
}
