// Package build defines the intermediate representation between the action
// walker and the materializer: fully evaluated descriptions of things to
// materialize, each with a stable path. Build nodes are created fresh on
// every walk or regeneration pass and never mutated afterwards.
package build

import (
	"github.com/vk/sceneforge/internal/nodepath"
	"github.com/vk/sceneforge/internal/scope"
)

// Kind is the closed tag for build node variants.
type Kind int

const (
	// Group nests child build nodes under a container.
	Group Kind = iota
	// HelperCall materializes the result of a named node factory.
	HelperCall
	// Reference clones a previously registered node.
	Reference
	// RawGeometry is the legacy leaf geometry path.
	RawGeometry
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Group:
		return "group"
	case HelperCall:
		return "helperCall"
	case Reference:
		return "reference"
	case RawGeometry:
		return "rawGeometry"
	}
	return "unknown"
}

// Transform carries evaluated placement values.
type Transform struct {
	Position [3]float64
	Rotation [3]float64
	Scale    [3]float64
}

// IdentityTransform returns the neutral transform.
func IdentityTransform() Transform {
	return Transform{Scale: [3]float64{1, 1, 1}}
}

// Overrides carries the optional placement overrides of a reference node.
// Nil fields mean "keep the cloned node's value".
type Overrides struct {
	Position *[3]float64
	Rotation *[3]float64
	Scale    *[3]float64
}

// Ref is the passthrough marker for a reference used as a helper-call
// parameter. It is not resolved at parameter-evaluation time because the
// referenced node may not have been materialized yet; the materializer
// resolves it once the full tree exists.
type Ref struct {
	Target string
}

// Node is one fully evaluated build instruction.
type Node struct {
	Path nodepath.Path
	Kind Kind

	// Params are the fully evaluated helper-call parameters. Values may be
	// Ref markers when the call was deferred.
	Params map[string]any

	Transform Transform

	// Material is the unresolved material: a name, an expression string, or
	// nil. Resolution happens at materialization against Env.
	Material any

	// Children of Group nodes.
	Children []*Node

	// Helper names the factory for HelperCall nodes.
	Helper string

	// Value is the factory result computed during the walk. Nil when the
	// call is Deferred.
	Value any

	// Deferred marks a HelperCall whose factory invocation must wait for
	// materialization because one of its params is a Ref.
	Deferred bool

	// Target and Over apply to Reference nodes.
	Target string
	Over   Overrides

	// Shape and Dimensions apply to RawGeometry nodes. Dimensions entries
	// are evaluated scalars or spliced point lists.
	Shape      string
	Dimensions []any
	Text       string
	Font       string

	// Env is the evaluation context the node was built under, retained for
	// late-stage evaluation (material expressions, deferred calls).
	Env *scope.Context

	// Source is the schema fragment that produced this node, retained so
	// regeneration can rebuild the subtree from its declaration.
	Source any
}
