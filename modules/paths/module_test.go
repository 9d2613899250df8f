package paths

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArcEndpoints(t *testing.T) {
	pts, err := genArc(context.Background(), map[string]any{
		"radius": 2.0, "startAngle": 0.0, "endAngle": 90.0, "segments": 4.0,
	})
	require.NoError(t, err)
	require.Len(t, pts, 5)
	assert.InDelta(t, 2.0, pts[0][0], 1e-9)
	assert.InDelta(t, 0.0, pts[0][1], 1e-9)
	assert.InDelta(t, 0.0, pts[4][0], 1e-9)
	assert.InDelta(t, 2.0, pts[4][1], 1e-9)
}

func TestBezierInterpolatesEndpoints(t *testing.T) {
	pts, err := genBezier(context.Background(), map[string]any{
		"x1": 0.0, "y1": 0.0, "x4": 3.0, "y4": 1.0, "segments": 10.0,
	})
	require.NoError(t, err)
	assert.Equal(t, [2]float64{0, 0}, pts[0])
	assert.InDelta(t, 3.0, pts[len(pts)-1][0], 1e-9)
	assert.InDelta(t, 1.0, pts[len(pts)-1][1], 1e-9)
}

func TestStarAlternatesRadii(t *testing.T) {
	pts, err := genStar(context.Background(), map[string]any{
		"radius": 2.0, "innerRadius": 1.0, "points": 5.0,
	})
	require.NoError(t, err)
	require.Len(t, pts, 10)

	for i, p := range pts {
		r := p[0]*p[0] + p[1]*p[1]
		if i%2 == 0 {
			assert.InDelta(t, 4.0, r, 1e-9)
		} else {
			assert.InDelta(t, 1.0, r, 1e-9)
		}
	}
}

func TestPolygonRejectsDegenerateInput(t *testing.T) {
	_, err := genPolygon(context.Background(), map[string]any{"sides": 2.0})
	assert.Error(t, err)
}

func TestSplinePassesThroughEndpoints(t *testing.T) {
	pts, err := genSpline(context.Background(), map[string]any{
		"points":   []any{0.0, 0.0, 1.0, 2.0, 3.0, 0.0},
		"segments": 4.0,
	})
	require.NoError(t, err)
	assert.Equal(t, [2]float64{0, 0}, pts[0])
	assert.Equal(t, [2]float64{3, 0}, pts[len(pts)-1])
}

func TestOffsetTranslates(t *testing.T) {
	pts, err := genOffset(context.Background(), map[string]any{
		"points": []any{1.0, 1.0, 2.0, 2.0},
		"dx":     10.0,
		"dy":     -1.0,
	})
	require.NoError(t, err)
	assert.Equal(t, [][2]float64{{11, 0}, {12, 1}}, pts)
}

func TestMirrorAppendsReflection(t *testing.T) {
	pts, err := genMirror(context.Background(), map[string]any{
		"points": []any{1.0, 0.5, 2.0, 1.0},
		"axis":   "y",
	})
	require.NoError(t, err)
	assert.Equal(t, [][2]float64{{1, 0.5}, {2, 1}, {2, -1}, {1, -0.5}}, pts)
}

func TestPointListRejectsOddCoordinates(t *testing.T) {
	_, err := genOffset(context.Background(), map[string]any{
		"points": []any{1.0, 2.0, 3.0},
	})
	assert.Error(t, err)
}
