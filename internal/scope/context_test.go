package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContext_LayeredLookup(t *testing.T) {
	outer := New()
	outer.Set("a", 1.0)
	outer.Set("b", 2.0)

	inner := outer.Fork()
	inner.Set("b", 20.0)

	v, ok := inner.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1.0, v)

	v, ok = inner.Get("b")
	require.True(t, ok)
	assert.Equal(t, 20.0, v, "inner binding shadows outer")

	v, ok = outer.Get("b")
	require.True(t, ok)
	assert.Equal(t, 2.0, v, "outer layer untouched by child shadowing")

	_, ok = inner.Get("missing")
	assert.False(t, ok)
}

func TestContext_ChildWriteDoesNotLeak(t *testing.T) {
	outer := New()
	inner := outer.Fork()
	inner.Set("x", 42.0)

	_, ok := outer.Get("x")
	assert.False(t, ok)
}

func TestContext_BindRestore(t *testing.T) {
	c := New()
	c.Set("index", "original")

	restore := c.Bind("index", 3.0)
	v, ok := c.Get("index")
	require.True(t, ok)
	assert.Equal(t, 3.0, v)

	restore()
	v, ok = c.Get("index")
	require.True(t, ok)
	assert.Equal(t, "original", v, "previous binding reinstated")

	restore2 := c.Bind("fresh", 1.0)
	restore2()
	_, ok = c.Get("fresh")
	assert.False(t, ok, "binding with no predecessor removed entirely")
}

func TestContext_Snapshot(t *testing.T) {
	c := New()
	c.Set("a", 1.0)
	inner := c.Fork()
	restore := inner.Bind("i", 7.0)

	snap := inner.Snapshot()
	restore()

	v, ok := snap.Get("i")
	require.True(t, ok)
	assert.Equal(t, 7.0, v, "snapshot survives restore")
	v, ok = snap.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1.0, v)

	// Snapshot is detached from the original chain.
	c.Set("a", 2.0)
	v, _ = snap.Get("a")
	assert.Equal(t, 1.0, v)
}

func TestContext_Fingerprint(t *testing.T) {
	a := New()
	a.Set("x", 1.0)
	a.Set("y", "s")

	b := New()
	b.Set("y", "s")
	b.Set("x", 1.0)

	assert.Equal(t, a.Fingerprint(), b.Fingerprint(), "insertion order must not matter")

	c := a.Fork()
	c.Set("x", 2.0)
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestContext_Names(t *testing.T) {
	c := New()
	c.Set("b", 1)
	inner := c.Fork()
	inner.Set("a", 2)
	assert.Equal(t, []string{"a", "b"}, inner.Names())
}
