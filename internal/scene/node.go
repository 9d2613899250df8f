// Package scene defines the materialized object graph: the closed set of
// node variants the interpreter can produce, the adapter contract for the
// target tree representation, the path registry, and the materializer that
// turns build nodes into registered scene nodes.
package scene

import (
	"context"

	"github.com/vk/sceneforge/internal/schema"
)

// Vec3 is a 3-component vector.
type Vec3 [3]float64

// Transform positions a node within its parent.
type Transform struct {
	Position Vec3
	Rotation Vec3
	Scale    Vec3
}

// IdentityTransform returns the neutral transform.
func IdentityTransform() Transform {
	return Transform{Scale: Vec3{1, 1, 1}}
}

// Node is the closed variant type for materialized scene content. Exactly
// four kinds exist: Container, Drawable, Curve, and Field. Dispatch is by
// type switch, never by probing for marker fields.
type Node interface {
	node()
}

// Container groups child nodes under a shared transform.
type Container struct {
	Name      string
	Transform Transform
	Children  []Node
}

func (*Container) node() {}

// Drawable is a renderable leaf: geometry plus an optional material.
type Drawable struct {
	Name      string
	Transform Transform
	Geometry  *Geometry
	Material  *schema.Material
	// MaterialName is the resolved material key, kept so summaries and dumps
	// stay readable.
	MaterialName string
}

func (*Drawable) node() {}

// Curve is a non-renderable polyline or closed path, used as construction
// input (e.g. a distribution rail) rather than drawn directly.
type Curve struct {
	Name   string
	Points []Vec3
	Closed bool
}

func (*Curve) node() {}

// Field is a non-renderable scalar field sampled during deformation.
type Field struct {
	Name   string
	Sample func(p Vec3) float64
}

func (*Field) node() {}

// Geometry is the opaque payload of a Drawable. Shape names the generator
// that produced it; Points and Dimensions carry whatever that generator
// emitted. The interpreter never interprets these beyond ownership.
type Geometry struct {
	Shape      string
	Dimensions []float64
	Points     []Vec3
}

// Factory is the node-factory contract: a named external function taking
// fully evaluated parameters and returning one scene node. A nil node with a
// nil error means the caller should skip insertion silently. Factories that
// conceptually produce several nodes return a Container holding them.
type Factory = func(ctx context.Context, params map[string]any) (Node, error)

// FactoryResolver supplies factories by name. Implemented by the run
// registry; the materializer only needs lookup.
type FactoryResolver interface {
	Factory(name string) (Factory, bool)
}
