package scene_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/sceneforge/internal/build"
	"github.com/vk/sceneforge/internal/diag"
	"github.com/vk/sceneforge/internal/memtree"
	"github.com/vk/sceneforge/internal/nodepath"
	"github.com/vk/sceneforge/internal/registry"
	"github.com/vk/sceneforge/internal/scene"
	"github.com/vk/sceneforge/internal/schema"
	"github.com/vk/sceneforge/internal/scope"
)

// passthroughEval satisfies the materializer's evaluator dependency without
// pulling in the real expression pipeline.
type passthroughEval struct{}

func (passthroughEval) Evaluate(_ context.Context, raw any, _ *scope.Context) any {
	return raw
}

type fixture struct {
	reg  *scene.Registry
	tree *memtree.Tree
	mat  *scene.Materializer
	log  *diag.Log
	root *scene.Container
}

func newFixture(t *testing.T, materials map[string]*schema.Material, factories *registry.Registry) *fixture {
	t.Helper()
	if factories == nil {
		factories = registry.New()
	}
	f := &fixture{
		reg:  scene.NewRegistry(),
		tree: memtree.New(),
		log:  diag.NewLog(),
	}
	f.mat = scene.NewMaterializer(f.reg, f.tree, factories, materials, passthroughEval{}, f.log)
	f.root = f.tree.NewContainer(context.Background(), "root")
	return f
}

func path(t *testing.T, raw string) nodepath.Path {
	t.Helper()
	p, err := nodepath.Parse(raw)
	require.NoError(t, err)
	return p
}

func groupNode(t *testing.T, raw string, children ...*build.Node) *build.Node {
	t.Helper()
	return &build.Node{
		Path:      path(t, raw),
		Kind:      build.Group,
		Transform: build.IdentityTransform(),
		Children:  children,
		Env:       scope.New(),
	}
}

func geometryNode(t *testing.T, raw, shape string) *build.Node {
	t.Helper()
	return &build.Node{
		Path:       path(t, raw),
		Kind:       build.RawGeometry,
		Shape:      shape,
		Dimensions: []any{1.0, 2.0},
		Transform:  build.IdentityTransform(),
		Env:        scope.New(),
	}
}

func TestMaterializeDisposeMaterializeIdempotent(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	subtree := groupNode(t, "g",
		geometryNode(t, "g.a", "box"),
		geometryNode(t, "g.b", "box"),
	)

	f.mat.Materialize(ctx, subtree, f.root)
	firstPaths := f.reg.Paths()
	require.Equal(t, []string{"g", "g.a", "g.b"}, firstPaths)
	liveAfterBuild := f.tree.Live()

	f.mat.DisposeSubtree(ctx, path(t, "g"))
	assert.Zero(t, f.reg.Len())
	assert.Equal(t, int64(1), f.tree.Live()) // only the root remains

	f.mat.Materialize(ctx, subtree, f.root)
	if diff := cmp.Diff(firstPaths, f.reg.Paths()); diff != "" {
		t.Fatalf("paths changed across rebuild (-want +got):\n%s", diff)
	}
	assert.Equal(t, liveAfterBuild, f.tree.Live())
	assert.Equal(t, f.tree.Allocated()-f.tree.Disposed(), f.tree.Live())
}

func TestReregisterDisposesPreviousOccupant(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	f.mat.Materialize(ctx, geometryNode(t, "slot", "box"), f.root)
	first, ok := f.reg.Exact("slot")
	require.True(t, ok)

	f.mat.Materialize(ctx, geometryNode(t, "slot", "sphere"), f.root)
	second, ok := f.reg.Exact("slot")
	require.True(t, ok)
	require.NotSame(t, first.Node, second.Node)

	// The displaced occupant's handle was released and the path count is
	// unchanged.
	assert.Equal(t, 1, f.reg.Len())
	assert.Equal(t, f.tree.Allocated()-f.tree.Disposed(), f.tree.Live())
	require.Len(t, f.root.Children, 1)
	assert.Equal(t, "sphere", f.root.Children[0].(*scene.Drawable).Geometry.Shape)
}

func TestDeferredHelperResolvesRefParams(t *testing.T) {
	factories := registry.New()
	var received scene.Node
	factories.RegisterFactory("sweep", func(_ context.Context, params map[string]any) (scene.Node, error) {
		received, _ = params["rail"].(scene.Node)
		return &scene.Drawable{Name: "swept", Transform: scene.IdentityTransform()}, nil
	})
	f := newFixture(t, nil, factories)
	ctx := context.Background()

	rail := &scene.Curve{Name: "rail"}
	f.reg.Register(&scene.Entry{Path: path(t, "rails.main"), Node: rail})

	deferred := &build.Node{
		Path:      path(t, "pipe"),
		Kind:      build.HelperCall,
		Helper:    "sweep",
		Deferred:  true,
		Params:    map[string]any{"rail": build.Ref{Target: "rails.main"}},
		Transform: build.IdentityTransform(),
		Env:       scope.New(),
	}
	f.mat.Materialize(ctx, deferred, f.root)

	assert.Same(t, rail, received)
	_, ok := f.reg.Exact("pipe")
	assert.True(t, ok)
}

func TestDeferredNestedDescriptorInvokesInnerHelper(t *testing.T) {
	factories := registry.New()
	produced := &scene.Curve{Name: "profile"}
	var innerRail scene.Node
	factories.RegisterFactory("circle", func(_ context.Context, params map[string]any) (scene.Node, error) {
		innerRail, _ = params["rail"].(scene.Node)
		return produced, nil
	})
	var outerProfile any
	factories.RegisterFactory("extrude", func(_ context.Context, params map[string]any) (scene.Node, error) {
		outerProfile = params["profile"]
		return &scene.Drawable{Name: "extruded", Transform: scene.IdentityTransform()}, nil
	})
	f := newFixture(t, nil, factories)
	ctx := context.Background()

	rail := &scene.Curve{Name: "rail"}
	f.reg.Register(&scene.Entry{Path: path(t, "rails.main"), Node: rail})

	// A reference buried inside a nested descriptor defers the outer call
	// and the descriptor rides through the walk raw; resolution must invoke
	// the inner helper, not hand the outer factory the descriptor map.
	deferred := &build.Node{
		Path:     path(t, "part"),
		Kind:     build.HelperCall,
		Helper:   "extrude",
		Deferred: true,
		Params: map[string]any{
			"profile": map[string]any{
				"helper": "circle",
				"params": map[string]any{
					"rail":   map[string]any{"type": "reference", "target": "rails.main"},
					"radius": 2.0,
				},
			},
		},
		Transform: build.IdentityTransform(),
		Env:       scope.New(),
	}
	f.mat.Materialize(ctx, deferred, f.root)

	assert.Same(t, rail, innerRail)
	assert.Same(t, produced, outerProfile)
	_, ok := f.reg.Exact("part")
	assert.True(t, ok)
}

func TestUnresolvedReferenceDropsNode(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	ref := &build.Node{
		Path:   path(t, "copy"),
		Kind:   build.Reference,
		Target: "ghost",
		Env:    scope.New(),
	}
	f.mat.Materialize(ctx, ref, f.root)

	assert.Zero(t, f.reg.Len())
	assert.Empty(t, f.root.Children)
	assert.Equal(t, 1, f.log.CountAtLeast(diag.Warn))
}

func TestReferenceClonesAndOverrides(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	f.mat.Materialize(ctx, geometryNode(t, "original", "box"), f.root)

	pos := [3]float64{5, 0, 0}
	ref := &build.Node{
		Path:   path(t, "copy"),
		Kind:   build.Reference,
		Target: "original",
		Over:   build.Overrides{Position: &pos},
		Env:    scope.New(),
	}
	f.mat.Materialize(ctx, ref, f.root)

	entry, ok := f.reg.Exact("copy")
	require.True(t, ok)
	clone, ok := entry.Node.(*scene.Drawable)
	require.True(t, ok)
	assert.Equal(t, [3]float64{5, 0, 0}, [3]float64(clone.Transform.Position))

	// The clone is a separate handle; disposing it leaves the original.
	original, _ := f.reg.Exact("original")
	require.NotSame(t, original.Node, clone)
}

func TestMaterialResolution(t *testing.T) {
	materials := map[string]*schema.Material{
		"steel": {Color: "#888888"},
	}
	f := newFixture(t, materials, nil)
	ctx := context.Background()

	node := geometryNode(t, "beam", "box")
	node.Material = "steel"
	f.mat.Materialize(ctx, node, f.root)

	entry, _ := f.reg.Exact("beam")
	drawable := entry.Node.(*scene.Drawable)
	require.NotNil(t, drawable.Material)
	assert.Equal(t, "steel", drawable.MaterialName)

	// An unknown name leaves the node unstyled with a warning.
	unknown := geometryNode(t, "beam2", "box")
	unknown.Material = "unobtanium"
	f.mat.Materialize(ctx, unknown, f.root)
	entry, _ = f.reg.Exact("beam2")
	assert.Nil(t, entry.Node.(*scene.Drawable).Material)
	assert.GreaterOrEqual(t, f.log.CountAtLeast(diag.Warn), 1)
}

func TestNilFactoryValueSkipsSilently(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	call := &build.Node{
		Path:      path(t, "nothing"),
		Kind:      build.HelperCall,
		Helper:    "maybe",
		Value:     nil,
		Transform: build.IdentityTransform(),
		Env:       scope.New(),
	}
	f.mat.Materialize(ctx, call, f.root)

	assert.Zero(t, f.reg.Len())
	assert.Empty(t, f.root.Children)
	assert.Zero(t, f.log.CountAtLeast(diag.Warn))
}
