package shapes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/sceneforge/internal/registry"
	"github.com/vk/sceneforge/internal/scene"
)

func TestRegisterInstallsAllFactories(t *testing.T) {
	r := registry.New()
	(&Module{}).Register(r)

	assert.Equal(t, []string{"box", "cone", "cylinder", "plane", "sphere", "torus"}, r.FactoryNames())
}

func TestBoxUsesParamsAndDefaults(t *testing.T) {
	node, err := makeBox(context.Background(), map[string]any{"width": 2.0, "height": 3.0})
	require.NoError(t, err)

	d, ok := node.(*scene.Drawable)
	require.True(t, ok)
	assert.Equal(t, "box", d.Geometry.Shape)
	assert.Equal(t, []float64{2, 3, 1}, d.Geometry.Dimensions)
}

func TestFactoriesRejectNonPositiveDimensions(t *testing.T) {
	cases := map[string]registry.Factory{
		"box":      makeBox,
		"sphere":   makeSphere,
		"cylinder": makeCylinder,
		"cone":     makeCone,
		"plane":    makePlane,
		"torus":    makeTorus,
	}
	for name, factory := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := factory(context.Background(), map[string]any{
				"width": -1.0, "height": -1.0, "depth": -1.0, "radius": -1.0, "tube": -1.0,
			})
			assert.Error(t, err)
		})
	}
}
