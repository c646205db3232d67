package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderedSet(t *testing.T) {
	var s OrderedSet

	assert.Equal(t, 2, s.Add("b", "a"))
	assert.Equal(t, 1, s.Add("a", "c", "b"))
	assert.Equal(t, []string{"b", "a", "c"}, s.Items())
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Contains("c"))
	assert.False(t, s.Contains("C"))
}

func TestOrderedSet_Head(t *testing.T) {
	s := NewOrderedSet("x", "y", "z")

	assert.Equal(t, []string{"x", "y"}, s.Head(2))
	assert.Equal(t, []string{"x", "y", "z"}, s.Head(10))
	assert.Empty(t, s.Head(-1))

	items := s.Items()
	items[0] = "mutated"
	assert.Equal(t, "x", s.Items()[0])
}

func TestOrderedSet_ZeroValueContains(t *testing.T) {
	var s OrderedSet
	assert.False(t, s.Contains("anything"))
	assert.Empty(t, s.Items())
}
