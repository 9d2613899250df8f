// Package shapes contributes the built-in solid-geometry node factories.
// Each factory turns evaluated parameters into a single drawable leaf; the
// interpreter treats the geometry payload as opaque.
package shapes

import (
	"context"
	"fmt"

	"github.com/vk/sceneforge/internal/registry"
	"github.com/vk/sceneforge/internal/scene"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers every shape factory with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFactory("box", makeBox)
	r.RegisterFactory("sphere", makeSphere)
	r.RegisterFactory("cylinder", makeCylinder)
	r.RegisterFactory("cone", makeCone)
	r.RegisterFactory("plane", makePlane)
	r.RegisterFactory("torus", makeTorus)
}

func makeBox(_ context.Context, params map[string]any) (scene.Node, error) {
	w := num(params, "width", 1)
	h := num(params, "height", 1)
	d := num(params, "depth", 1)
	if w <= 0 || h <= 0 || d <= 0 {
		return nil, fmt.Errorf("box dimensions must be positive, got %v x %v x %v", w, h, d)
	}
	return drawable("box", w, h, d), nil
}

func makeSphere(_ context.Context, params map[string]any) (scene.Node, error) {
	r := num(params, "radius", 1)
	if r <= 0 {
		return nil, fmt.Errorf("sphere radius must be positive, got %v", r)
	}
	segments := num(params, "segments", 32)
	return drawable("sphere", r, segments), nil
}

func makeCylinder(_ context.Context, params map[string]any) (scene.Node, error) {
	r := num(params, "radius", 1)
	h := num(params, "height", 1)
	if r <= 0 || h <= 0 {
		return nil, fmt.Errorf("cylinder needs positive radius and height, got %v, %v", r, h)
	}
	segments := num(params, "segments", 24)
	return drawable("cylinder", r, h, segments), nil
}

func makeCone(_ context.Context, params map[string]any) (scene.Node, error) {
	r := num(params, "radius", 1)
	h := num(params, "height", 1)
	if r <= 0 || h <= 0 {
		return nil, fmt.Errorf("cone needs positive radius and height, got %v, %v", r, h)
	}
	segments := num(params, "segments", 24)
	return drawable("cone", r, h, segments), nil
}

func makePlane(_ context.Context, params map[string]any) (scene.Node, error) {
	w := num(params, "width", 1)
	d := num(params, "depth", 1)
	if w <= 0 || d <= 0 {
		return nil, fmt.Errorf("plane needs positive width and depth, got %v, %v", w, d)
	}
	return drawable("plane", w, d), nil
}

func makeTorus(_ context.Context, params map[string]any) (scene.Node, error) {
	r := num(params, "radius", 1)
	tube := num(params, "tube", 0.25)
	if r <= 0 || tube <= 0 {
		return nil, fmt.Errorf("torus needs positive radius and tube, got %v, %v", r, tube)
	}
	return drawable("torus", r, tube), nil
}

func drawable(shape string, dims ...float64) *scene.Drawable {
	return &scene.Drawable{
		Name:      shape,
		Transform: scene.IdentityTransform(),
		Geometry:  &scene.Geometry{Shape: shape, Dimensions: dims},
	}
}

// num reads a numeric parameter, falling back to a default when the key is
// absent or not a number.
func num(params map[string]any, key string, fallback float64) float64 {
	if v, ok := params[key]; ok {
		if f, isNum := v.(float64); isNum {
			return f
		}
	}
	return fallback
}
