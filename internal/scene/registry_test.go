package scene

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/sceneforge/internal/nodepath"
)

func mustPath(t *testing.T, raw string) nodepath.Path {
	t.Helper()
	p, err := nodepath.Parse(raw)
	require.NoError(t, err)
	return p
}

func entryAt(t *testing.T, raw string) *Entry {
	t.Helper()
	return &Entry{Path: mustPath(t, raw), Node: &Container{Name: raw}}
}

func TestRegisterReturnsDisplaced(t *testing.T) {
	r := NewRegistry()

	first := entryAt(t, "a.b")
	require.Nil(t, r.Register(first))

	second := entryAt(t, "a.b")
	displaced := r.Register(second)
	assert.Same(t, first, displaced)
	assert.Equal(t, 1, r.Len())
}

func TestResolvePrefersPrefixedMatch(t *testing.T) {
	r := NewRegistry()
	outer := entryAt(t, "a.b")
	inner := entryAt(t, "x.a.b")
	r.Register(outer)
	r.Register(inner)

	// From inside x, the sibling wins over the unrelated root-level entry.
	got, err := r.Resolve("a.b", mustPath(t, "x"))
	require.NoError(t, err)
	assert.Same(t, inner, got)

	// From the root there is no prefix; the exact entry wins.
	got, err = r.Resolve("a.b", nodepath.Path{})
	require.NoError(t, err)
	assert.Same(t, outer, got)
}

func TestResolveWalksPrefixAncestry(t *testing.T) {
	r := NewRegistry()
	shallow := entryAt(t, "x.leaf")
	deep := entryAt(t, "x.y.z.leaf")
	r.Register(shallow)
	r.Register(deep)

	// Innermost enclosing scope is consulted first.
	got, err := r.Resolve("leaf", mustPath(t, "x.y.z"))
	require.NoError(t, err)
	assert.Same(t, deep, got)

	got, err = r.Resolve("leaf", mustPath(t, "x.y"))
	require.NoError(t, err)
	assert.Same(t, shallow, got)
}

func TestResolveSuffixDeterministic(t *testing.T) {
	r := NewRegistry()
	r.Register(entryAt(t, "deep.nested.wheel"))
	r.Register(entryAt(t, "cart.wheel"))
	r.Register(entryAt(t, "bike.wheel"))

	// Shortest registered path wins; ties break lexically.
	got, err := r.Resolve("wheel", nodepath.Path{})
	require.NoError(t, err)
	assert.Equal(t, "bike.wheel", got.Path.String())
}

func TestResolveSuffixMatchesSegmentBoundary(t *testing.T) {
	r := NewRegistry()
	r.Register(entryAt(t, "a.steering_wheel"))
	r.Register(entryAt(t, "b.front.wheel"))

	got, err := r.Resolve("wheel", nodepath.Path{})
	require.NoError(t, err)
	assert.Equal(t, "b.front.wheel", got.Path.String())
}

func TestResolveUnknownTarget(t *testing.T) {
	r := NewRegistry()
	_, err := r.Resolve("ghost", nodepath.Path{})
	assert.ErrorIs(t, err, ErrUnresolvedReference)
}

func TestRemoveSubtreeRootFirst(t *testing.T) {
	r := NewRegistry()
	r.Register(entryAt(t, "g"))
	r.Register(entryAt(t, "g.a"))
	r.Register(entryAt(t, "g.a.leaf"))
	r.Register(entryAt(t, "g2"))

	removed := r.RemoveSubtree(mustPath(t, "g"))
	require.Len(t, removed, 3)
	assert.Equal(t, "g", removed[0].Path.String())

	var names []string
	for _, e := range removed {
		names = append(names, e.Path.String())
	}
	if diff := cmp.Diff([]string{"g", "g.a", "g.a.leaf"}, names); diff != "" {
		t.Fatalf("removed paths mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{"g2"}, r.Paths())
}
