package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/sceneforge/internal/scene"
)

func TestRegisterAndLookup(t *testing.T) {
	r := New()
	r.RegisterFactory("box", func(ctx context.Context, params map[string]any) (scene.Node, error) {
		return &scene.Drawable{Name: "box"}, nil
	})
	r.RegisterFunction("double", func(ctx context.Context, args []any) (any, error) {
		return args[0].(float64) * 2, nil
	})

	f, ok := r.Factory("box")
	require.True(t, ok)
	require.NotNil(t, f)

	fn, ok := r.Function("double")
	require.True(t, ok)
	out, err := fn(context.Background(), []any{float64(3)})
	require.NoError(t, err)
	assert.Equal(t, float64(6), out)

	_, ok = r.Factory("missing")
	assert.False(t, ok)
	_, ok = r.Distribution("missing")
	assert.False(t, ok)
	_, ok = r.Generator("missing")
	assert.False(t, ok)
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	r := New()
	noop := func(ctx context.Context, params map[string]any) (scene.Node, error) { return nil, nil }
	r.RegisterFactory("box", noop)
	assert.Panics(t, func() {
		r.RegisterFactory("box", noop)
	})
}

func TestFactoryNamesSorted(t *testing.T) {
	r := New()
	noop := func(ctx context.Context, params map[string]any) (scene.Node, error) { return nil, nil }
	r.RegisterFactory("sphere", noop)
	r.RegisterFactory("box", noop)
	r.RegisterFactory("cone", noop)

	assert.Equal(t, []string{"box", "cone", "sphere"}, r.FactoryNames())
}
