// Package curves contributes non-renderable construction nodes: sampled
// curves used as distribution rails or sweep paths, and scalar fields used
// as deformation inputs.
package curves

import (
	"context"
	"fmt"
	"math"

	"github.com/vk/sceneforge/internal/registry"
	"github.com/vk/sceneforge/internal/scene"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers every curve and field factory with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFactory("circle", makeCircle)
	r.RegisterFactory("helix", makeHelix)
	r.RegisterFactory("radialField", makeRadialField)
}

func makeCircle(_ context.Context, params map[string]any) (scene.Node, error) {
	radius := num(params, "radius", 1)
	if radius <= 0 {
		return nil, fmt.Errorf("circle radius must be positive, got %v", radius)
	}
	segments := int(num(params, "segments", 32))
	if segments < 3 {
		segments = 3
	}

	points := make([]scene.Vec3, segments)
	for i := 0; i < segments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(segments)
		points[i] = scene.Vec3{radius * math.Cos(angle), 0, radius * math.Sin(angle)}
	}
	return &scene.Curve{Name: "circle", Points: points, Closed: true}, nil
}

func makeHelix(_ context.Context, params map[string]any) (scene.Node, error) {
	radius := num(params, "radius", 1)
	height := num(params, "height", 1)
	turns := num(params, "turns", 3)
	if radius <= 0 || height <= 0 || turns <= 0 {
		return nil, fmt.Errorf("helix needs positive radius, height, and turns")
	}
	segments := int(num(params, "segments", 16) * turns)
	if segments < 2 {
		segments = 2
	}

	points := make([]scene.Vec3, segments+1)
	for i := 0; i <= segments; i++ {
		t := float64(i) / float64(segments)
		angle := 2 * math.Pi * turns * t
		points[i] = scene.Vec3{radius * math.Cos(angle), height * t, radius * math.Sin(angle)}
	}
	return &scene.Curve{Name: "helix", Points: points}, nil
}

// makeRadialField returns a field whose value falls off linearly with
// distance from a center, clamped to [0, 1]. Deformers sample it per vertex.
func makeRadialField(_ context.Context, params map[string]any) (scene.Node, error) {
	radius := num(params, "radius", 1)
	if radius <= 0 {
		return nil, fmt.Errorf("radialField radius must be positive, got %v", radius)
	}
	center := scene.Vec3{
		num(params, "x", 0),
		num(params, "y", 0),
		num(params, "z", 0),
	}

	return &scene.Field{
		Name: "radialField",
		Sample: func(p scene.Vec3) float64 {
			dx := p[0] - center[0]
			dy := p[1] - center[1]
			dz := p[2] - center[2]
			dist := math.Sqrt(dx*dx + dy*dy + dz*dz)
			v := 1 - dist/radius
			if v < 0 {
				return 0
			}
			if v > 1 {
				return 1
			}
			return v
		},
	}, nil
}

func num(params map[string]any, key string, fallback float64) float64 {
	if v, ok := params[key]; ok {
		if f, isNum := v.(float64); isNum {
			return f
		}
	}
	return fallback
}
