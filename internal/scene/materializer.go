package scene

import (
	"context"
	"fmt"

	"github.com/vk/sceneforge/internal/build"
	"github.com/vk/sceneforge/internal/diag"
	"github.com/vk/sceneforge/internal/nodepath"
	"github.com/vk/sceneforge/internal/schema"
	"github.com/vk/sceneforge/internal/scope"
)

// ExprEvaluator is the slice of the expression evaluator the materializer
// needs for late-stage evaluation (material expressions may depend on loop
// indices that only exist in the build node's retained context).
type ExprEvaluator interface {
	Evaluate(ctx context.Context, raw any, env *scope.Context) any
}

// Materializer walks build nodes, invokes node factories, attaches results
// to the target tree, and keeps the path registry current. Every failure is
// isolated to the node that caused it; siblings always proceed.
type Materializer struct {
	registry  *Registry
	target    Target
	factories FactoryResolver
	materials map[string]*schema.Material
	eval      ExprEvaluator
	log       *diag.Log
}

// NewMaterializer wires a materializer for one run.
func NewMaterializer(registry *Registry, target Target, factories FactoryResolver, materials map[string]*schema.Material, eval ExprEvaluator, log *diag.Log) *Materializer {
	return &Materializer{
		registry:  registry,
		target:    target,
		factories: factories,
		materials: materials,
		eval:      eval,
		log:       log,
	}
}

// Materialize turns one build node (and its children) into registered scene
// content under parent.
func (m *Materializer) Materialize(ctx context.Context, b *build.Node, parent *Container) {
	switch b.Kind {
	case build.Group:
		m.materializeGroup(ctx, b, parent)
	case build.HelperCall:
		m.materializeHelperCall(ctx, b, parent)
	case build.Reference:
		m.materializeReference(ctx, b, parent)
	case build.RawGeometry:
		m.materializeRawGeometry(ctx, b, parent)
	default:
		m.log.Warnf(ctx, "unknown build node kind, skipping",
			"path", b.Path.String(), "kind", b.Kind.String())
	}
}

func (m *Materializer) materializeGroup(ctx context.Context, b *build.Node, parent *Container) {
	c := m.target.NewContainer(ctx, lastSegmentName(b.Path))
	c.Transform = toSceneTransform(b.Transform)
	m.register(ctx, b, c, parent)
	m.target.Attach(ctx, parent, c)
	for _, child := range b.Children {
		m.Materialize(ctx, child, c)
	}
}

func (m *Materializer) materializeHelperCall(ctx context.Context, b *build.Node, parent *Container) {
	value := b.Value
	if b.Deferred {
		var err error
		value, err = m.invokeDeferred(ctx, b)
		if err != nil {
			m.log.Warnf(ctx, "deferred helper call failed, skipping node",
				"path", b.Path.String(), "helper", b.Helper, "error", err.Error())
			return
		}
	}
	if value == nil {
		// A factory returning nothing means skip insertion silently.
		return
	}
	node, ok := value.(Node)
	if !ok {
		m.log.Warnf(ctx, "helper returned a non-scene value, skipping node",
			"path", b.Path.String(), "helper", b.Helper, "type", fmt.Sprintf("%T", value))
		return
	}

	applyTransform(node, toSceneTransform(b.Transform))
	if mat, name := m.resolveMaterial(ctx, b); mat != nil {
		attachMaterial(node, mat, name)
	}

	m.register(ctx, b, node, parent)
	m.target.Attach(ctx, parent, node)
}

func (m *Materializer) materializeReference(ctx context.Context, b *build.Node, parent *Container) {
	entry, err := m.registry.Resolve(b.Target, parentPrefix(b.Path))
	if err != nil {
		m.log.Warnf(ctx, "reference did not resolve, dropping node",
			"path", b.Path.String(), "target", b.Target)
		return
	}

	clone := m.target.Clone(ctx, entry.Node)
	applyOverrides(clone, b.Over)
	if mat, name := m.resolveMaterial(ctx, b); mat != nil {
		attachMaterial(clone, mat, name)
	}

	m.register(ctx, b, clone, parent)
	m.target.Attach(ctx, parent, clone)
}

func (m *Materializer) materializeRawGeometry(ctx context.Context, b *build.Node, parent *Container) {
	geometry := &Geometry{Shape: b.Shape}
	for _, dim := range b.Dimensions {
		switch tv := dim.(type) {
		case float64:
			geometry.Dimensions = append(geometry.Dimensions, tv)
		case [2]float64:
			geometry.Points = append(geometry.Points, Vec3{tv[0], tv[1], 0})
		case [3]float64:
			geometry.Points = append(geometry.Points, Vec3(tv))
		default:
			m.log.Warnf(ctx, "geometry dimension entry has unsupported type, dropping entry",
				"path", b.Path.String(), "type", fmt.Sprintf("%T", dim))
		}
	}

	drawable := &Drawable{
		Name:      lastSegmentName(b.Path),
		Transform: toSceneTransform(b.Transform),
		Geometry:  geometry,
	}
	if mat, name := m.resolveMaterial(ctx, b); mat != nil {
		drawable.Material = mat
		drawable.MaterialName = name
	}

	m.register(ctx, b, drawable, parent)
	m.target.Attach(ctx, parent, drawable)
}

// invokeDeferred resolves the params the walk could not finish and invokes
// the factory that was held back. Ref markers resolve against the
// now-complete registry; nested helper descriptors that rode through raw
// (because a reference was buried inside) are evaluated and invoked here.
func (m *Materializer) invokeDeferred(ctx context.Context, b *build.Node) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value, err = nil, fmt.Errorf("helper %q panicked: %v", b.Helper, r)
		}
	}()

	factory, ok := m.factories.Factory(b.Helper)
	if !ok {
		return nil, fmt.Errorf("helper %q is not registered", b.Helper)
	}

	params := make(map[string]any, len(b.Params))
	for key, v := range b.Params {
		resolved, rerr := m.resolveDeferredParam(ctx, b, key, v)
		if rerr != nil {
			return nil, rerr
		}
		params[key] = resolved
	}
	return factory(ctx, params)
}

func (m *Materializer) resolveDeferredParam(ctx context.Context, b *build.Node, key string, v any) (any, error) {
	switch tv := v.(type) {
	case build.Ref:
		entry, err := m.registry.Resolve(tv.Target, parentPrefix(b.Path))
		if err != nil {
			return nil, fmt.Errorf("param %q: %w: %s", key, ErrUnresolvedReference, tv.Target)
		}
		return entry.Node, nil
	case map[string]any:
		if tv["type"] == "reference" {
			target, _ := tv["target"].(string)
			return m.resolveDeferredParam(ctx, b, key, build.Ref{Target: target})
		}
		if helper, ok := tv["helper"].(string); ok {
			return m.invokeNestedDescriptor(ctx, b, helper, tv)
		}
	}
	return v, nil
}

// invokeNestedDescriptor evaluates a nested helper descriptor's params and
// invokes the nested factory, so the outer call receives the produced node
// rather than the raw descriptor. Non-descriptor params are still raw
// expressions here and evaluate against the node's retained context.
func (m *Materializer) invokeNestedDescriptor(ctx context.Context, b *build.Node, helper string, desc map[string]any) (any, error) {
	factory, ok := m.factories.Factory(helper)
	if !ok {
		return nil, fmt.Errorf("nested helper %q is not registered", helper)
	}

	raw, _ := desc["params"].(map[string]any)
	params := make(map[string]any, len(raw))
	for key, v := range raw {
		nested, isMap := v.(map[string]any)
		if !isMap {
			params[key] = m.eval.Evaluate(ctx, v, b.Env)
			continue
		}
		if _, isHelper := nested["helper"].(string); isHelper || nested["type"] == "reference" {
			resolved, err := m.resolveDeferredParam(ctx, b, key, nested)
			if err != nil {
				return nil, err
			}
			params[key] = resolved
			continue
		}
		obj := make(map[string]any, len(nested))
		for name, val := range nested {
			obj[name] = m.eval.Evaluate(ctx, val, b.Env)
		}
		params[key] = obj
	}
	return factory(ctx, params)
}

// register stores the entry for a freshly materialized node, disposing
// whatever previously occupied the path first.
func (m *Materializer) register(ctx context.Context, b *build.Node, node Node, parent *Container) {
	m.DisposeSubtree(ctx, b.Path)
	m.registry.Register(&Entry{
		Path:   b.Path,
		Node:   node,
		Parent: parent,
		Build:  b,
		Source: b.Source,
	})
}

// DisposeSubtree removes every registry entry at or under path and releases
// the resources of the topmost removed nodes. Descendant nodes are owned by
// their parents and released by the recursive Dispose.
func (m *Materializer) DisposeSubtree(ctx context.Context, path nodepath.Path) {
	removed := m.registry.RemoveSubtree(path)
	if len(removed) == 0 {
		return
	}

	removedSet := make(map[string]struct{}, len(removed))
	for _, e := range removed {
		removedSet[e.Path.String()] = struct{}{}
	}
	for _, e := range removed {
		if hasRemovedAncestor(e.Path, removedSet) {
			continue
		}
		m.target.Dispose(ctx, e.Node)
		if e.Parent != nil {
			m.target.Detach(ctx, e.Parent, e.Node)
		}
	}
}

func hasRemovedAncestor(p nodepath.Path, removed map[string]struct{}) bool {
	for i := len(p.Segments) - 1; i > 0; i-- {
		ancestor := nodepath.Path{Segments: p.Segments[:i]}
		if _, ok := removed[ancestor.String()]; ok {
			return true
		}
	}
	return false
}

// resolveMaterial turns the build node's material field into a material
// spec. A string that names a known material is used directly; anything
// else is treated as an expression evaluated against the node's retained
// context, whose result must name a known material.
func (m *Materializer) resolveMaterial(ctx context.Context, b *build.Node) (*schema.Material, string) {
	if b.Material == nil {
		return nil, ""
	}
	if name, ok := b.Material.(string); ok {
		if mat, known := m.materials[name]; known {
			return mat, name
		}
	}
	result := m.eval.Evaluate(ctx, b.Material, b.Env)
	if name, ok := result.(string); ok {
		if mat, known := m.materials[name]; known {
			return mat, name
		}
	}
	m.log.Warnf(ctx, "material did not resolve, leaving node unstyled",
		"path", b.Path.String(), "material", fmt.Sprintf("%v", b.Material))
	return nil, ""
}

func lastSegmentName(p nodepath.Path) string {
	if len(p.Segments) == 0 {
		return ""
	}
	return p.Segments[len(p.Segments)-1].Name
}

func parentPrefix(p nodepath.Path) nodepath.Path {
	if len(p.Segments) == 0 {
		return p
	}
	return nodepath.Path{Segments: p.Segments[:len(p.Segments)-1]}
}

func toSceneTransform(t build.Transform) Transform {
	return Transform{Position: t.Position, Rotation: t.Rotation, Scale: t.Scale}
}

func applyTransform(n Node, t Transform) {
	switch node := n.(type) {
	case *Container:
		node.Transform = t
	case *Drawable:
		node.Transform = t
	}
}

func applyOverrides(n Node, over build.Overrides) {
	var t *Transform
	switch node := n.(type) {
	case *Container:
		t = &node.Transform
	case *Drawable:
		t = &node.Transform
	default:
		return
	}
	if over.Position != nil {
		t.Position = *over.Position
	}
	if over.Rotation != nil {
		t.Rotation = *over.Rotation
	}
	if over.Scale != nil {
		t.Scale = *over.Scale
	}
}
