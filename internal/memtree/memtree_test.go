package memtree

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/sceneforge/internal/scene"
)

func TestTree_AttachDetach(t *testing.T) {
	tree := New()
	ctx := context.Background()

	root := tree.NewContainer(ctx, "root")
	child := tree.NewContainer(ctx, "child")
	tree.Attach(ctx, root, child)
	require.Len(t, root.Children, 1)

	tree.Detach(ctx, root, child)
	assert.Empty(t, root.Children)

	// Detaching again is a no-op.
	tree.Detach(ctx, root, child)
	assert.Empty(t, root.Children)
}

func TestTree_DisposeAccounting(t *testing.T) {
	tree := New()
	ctx := context.Background()

	root := tree.NewContainer(ctx, "root")
	inner := tree.NewContainer(ctx, "inner")
	drawable := &scene.Drawable{Name: "leaf", Geometry: &scene.Geometry{Shape: "box"}}
	tree.Attach(ctx, root, inner)
	tree.Attach(ctx, inner, drawable)

	assert.Equal(t, int64(3), tree.Allocated())
	assert.Equal(t, int64(3), tree.Live())

	tree.Dispose(ctx, root)
	assert.Equal(t, int64(3), tree.Disposed())
	assert.Equal(t, int64(0), tree.Live(), "no leaked handles after recursive dispose")

	// Double dispose must not double count.
	tree.Dispose(ctx, drawable)
	assert.Equal(t, int64(3), tree.Disposed())
}

func TestTree_CloneIsDeepAndAccounted(t *testing.T) {
	tree := New()
	ctx := context.Background()

	original := tree.NewContainer(ctx, "orig")
	leaf := &scene.Drawable{
		Name:     "leaf",
		Geometry: &scene.Geometry{Shape: "box", Dimensions: []float64{1, 2, 3}},
	}
	tree.Attach(ctx, original, leaf)

	clone := tree.Clone(ctx, original)
	cloneContainer, ok := clone.(*scene.Container)
	require.True(t, ok)
	require.Len(t, cloneContainer.Children, 1)

	cloneLeaf := cloneContainer.Children[0].(*scene.Drawable)
	require.NotSame(t, leaf, cloneLeaf)
	require.NotSame(t, leaf.Geometry, cloneLeaf.Geometry)

	// Mutating the clone's geometry must not touch the original.
	cloneLeaf.Geometry.Dimensions[0] = 99
	assert.Equal(t, 1.0, leaf.Geometry.Dimensions[0])

	assert.Equal(t, int64(4), tree.Allocated())

	tree.Dispose(ctx, clone)
	assert.Equal(t, int64(2), tree.Live(), "original survives clone disposal")
}
