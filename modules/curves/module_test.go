package curves

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/sceneforge/internal/scene"
)

func TestCircleIsClosedAndOnRadius(t *testing.T) {
	node, err := makeCircle(context.Background(), map[string]any{"radius": 3.0, "segments": 8.0})
	require.NoError(t, err)

	curve, ok := node.(*scene.Curve)
	require.True(t, ok)
	assert.True(t, curve.Closed)
	require.Len(t, curve.Points, 8)
	for _, p := range curve.Points {
		assert.InDelta(t, 3.0, math.Hypot(p[0], p[2]), 1e-9)
	}
}

func TestHelixClimbsToHeight(t *testing.T) {
	node, err := makeHelix(context.Background(), map[string]any{
		"radius": 1.0, "height": 10.0, "turns": 2.0,
	})
	require.NoError(t, err)

	curve, ok := node.(*scene.Curve)
	require.True(t, ok)
	assert.InDelta(t, 0.0, curve.Points[0][1], 1e-9)
	assert.InDelta(t, 10.0, curve.Points[len(curve.Points)-1][1], 1e-9)
}

func TestRadialFieldFallsOffAndClamps(t *testing.T) {
	node, err := makeRadialField(context.Background(), map[string]any{"radius": 2.0})
	require.NoError(t, err)

	field, ok := node.(*scene.Field)
	require.True(t, ok)
	assert.InDelta(t, 1.0, field.Sample(scene.Vec3{0, 0, 0}), 1e-9)
	assert.InDelta(t, 0.5, field.Sample(scene.Vec3{1, 0, 0}), 1e-9)
	assert.Zero(t, field.Sample(scene.Vec3{5, 0, 0}))
}
