package reveal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	propsA = Props{BeforeURL: "a-before.jpg", AfterURL: "a-after.jpg", Title: "A"}
	propsB = Props{BeforeURL: "b-before.jpg", AfterURL: "b-after.jpg", Title: "B"}
)

func TestSelectionSameProps(t *testing.T) {
	var sel Selection
	_, ok := sel.Current()
	assert.False(t, ok)

	first, changed := sel.Select(propsA)
	require.True(t, changed)
	_, changed = sel.Select(propsA)
	assert.False(t, changed, "same triple does not remount")

	assert.True(t, sel.Accept(first))
	assert.False(t, sel.Accept(first), "a result is applied once")
	assert.False(t, sel.Loading())
}

func TestSelectionDropsSupersededResult(t *testing.T) {
	var sel Selection
	a, _ := sel.Select(propsA)
	b, changed := sel.Select(propsB)
	require.True(t, changed)

	assert.False(t, sel.Accept(a), "result for A arrives after B was selected")
	assert.True(t, sel.Loading())
	assert.True(t, sel.Accept(b))

	cur, ok := sel.Current()
	assert.True(t, ok)
	assert.Equal(t, propsB, cur)
}

func TestSelectionBackAndForth(t *testing.T) {
	var sel Selection
	a1, _ := sel.Select(propsA)
	b, _ := sel.Select(propsB)
	a2, changed := sel.Select(propsA)
	require.True(t, changed, "returning to A is a new mount")
	assert.NotEqual(t, a1, a2)

	assert.False(t, sel.Accept(a1))
	assert.False(t, sel.Accept(b))
	assert.True(t, sel.Accept(a2))
}

func TestSelectionClear(t *testing.T) {
	var sel Selection
	assert.False(t, sel.Clear())

	a, _ := sel.Select(propsA)
	assert.True(t, sel.Clear())
	assert.False(t, sel.Accept(a))

	_, changed := sel.Select(propsA)
	assert.True(t, changed, "props mount again after a clear")
}
