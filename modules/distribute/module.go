// Package distribute contributes the named strategies that place repeat
// instances: grid, line, radial, along-curve, and seeded random placement.
// Every strategy is deterministic for a given parameter set, including
// random, which derives its generator from a seed parameter.
package distribute

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/vk/sceneforge/internal/registry"
	"github.com/vk/sceneforge/internal/scene"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers every distribution with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterDistribution("line", distLine)
	r.RegisterDistribution("grid", distGrid)
	r.RegisterDistribution("radial", distRadial)
	r.RegisterDistribution("curve", distCurve)
	r.RegisterDistribution("random", distRandom)
}

// distLine spaces instances along the x axis.
func distLine(_ context.Context, params map[string]any, index, count int) ([3]float64, error) {
	spacing := num(params, "spacing", 1)
	return [3]float64{float64(index) * spacing, 0, 0}, nil
}

// distGrid fills rows of `columns` instances in the xz plane.
func distGrid(_ context.Context, params map[string]any, index, count int) ([3]float64, error) {
	columns := int(num(params, "columns", math.Ceil(math.Sqrt(float64(count)))))
	if columns < 1 {
		return [3]float64{}, fmt.Errorf("grid columns must be at least 1, got %d", columns)
	}
	spacingX := num(params, "spacingX", num(params, "spacing", 1))
	spacingZ := num(params, "spacingZ", num(params, "spacing", 1))

	row := index / columns
	col := index % columns
	return [3]float64{float64(col) * spacingX, 0, float64(row) * spacingZ}, nil
}

// distRadial spaces instances evenly around a circle in the xz plane.
func distRadial(_ context.Context, params map[string]any, index, count int) ([3]float64, error) {
	radius := num(params, "radius", 1)
	if radius <= 0 {
		return [3]float64{}, fmt.Errorf("radial radius must be positive, got %v", radius)
	}
	start := num(params, "startAngle", 0) * math.Pi / 180
	angle := start + 2*math.Pi*float64(index)/float64(count)
	return [3]float64{radius * math.Cos(angle), 0, radius * math.Sin(angle)}, nil
}

// distCurve places instances at even parameter intervals along a sampled
// curve. The curve arrives as the resolved value of a reference or nested
// helper parameter.
func distCurve(_ context.Context, params map[string]any, index, count int) ([3]float64, error) {
	curve, ok := params["curve"].(*scene.Curve)
	if !ok {
		return [3]float64{}, fmt.Errorf("curve distribution needs a curve parameter, got %T", params["curve"])
	}
	if len(curve.Points) == 0 {
		return [3]float64{}, fmt.Errorf("curve %q has no points", curve.Name)
	}

	t := 0.0
	if count > 1 {
		t = float64(index) / float64(count-1)
		if curve.Closed {
			t = float64(index) / float64(count)
		}
	}
	return samplePolyline(curve.Points, t), nil
}

// distRandom scatters instances uniformly inside a box. A fixed seed keeps
// placement stable across regenerations.
func distRandom(_ context.Context, params map[string]any, index, count int) ([3]float64, error) {
	extent := num(params, "extent", 1)
	if extent <= 0 {
		return [3]float64{}, fmt.Errorf("random extent must be positive, got %v", extent)
	}
	seed := int64(num(params, "seed", 1))

	// One generator per instance keeps placement independent of evaluation
	// order and of count changes for earlier indices.
	rng := rand.New(rand.NewSource(seed + int64(index)*7919))
	return [3]float64{
		(rng.Float64()*2 - 1) * extent,
		0,
		(rng.Float64()*2 - 1) * extent,
	}, nil
}

// samplePolyline interpolates along the polyline at normalized arc position
// t in [0, 1].
func samplePolyline(points []scene.Vec3, t float64) [3]float64 {
	if len(points) == 1 || t <= 0 {
		return points[0]
	}
	if t >= 1 {
		return points[len(points)-1]
	}

	total := 0.0
	lengths := make([]float64, len(points)-1)
	for i := 0; i < len(points)-1; i++ {
		lengths[i] = segmentLength(points[i], points[i+1])
		total += lengths[i]
	}
	if total == 0 {
		return points[0]
	}

	target := t * total
	for i, l := range lengths {
		if target <= l {
			f := 0.0
			if l > 0 {
				f = target / l
			}
			return lerpVec(points[i], points[i+1], f)
		}
		target -= l
	}
	return points[len(points)-1]
}

func segmentLength(a, b scene.Vec3) float64 {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	dz := b[2] - a[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func lerpVec(a, b scene.Vec3, t float64) [3]float64 {
	return [3]float64{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
	}
}

func num(params map[string]any, key string, fallback float64) float64 {
	if v, ok := params[key]; ok {
		if f, isNum := v.(float64); isNum {
			return f
		}
	}
	return fallback
}
