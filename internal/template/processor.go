package template

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/sceneforge/internal/build"
	"github.com/vk/sceneforge/internal/diag"
	"github.com/vk/sceneforge/internal/expr"
	"github.com/vk/sceneforge/internal/nodepath"
	"github.com/vk/sceneforge/internal/registry"
	"github.com/vk/sceneforge/internal/schema"
	"github.com/vk/sceneforge/internal/scope"
)

// ErrLimitExceeded classifies a loop or repeat whose iteration count
// exceeds the safety cap. The construct is skipped entirely, never
// partially expanded.
var ErrLimitExceeded = errors.New("iteration limit exceeded")

// MaxIterations is the hard cap on loop and repeat expansion. It is a
// safety valve against runaway schemas, not a tuning knob.
const MaxIterations = 1000

// Processor expands action trees into build nodes.
type Processor struct {
	eval *expr.Evaluator
	reg  *registry.Registry
	log  *diag.Log
}

// NewProcessor wires a processor for one run.
func NewProcessor(eval *expr.Evaluator, reg *registry.Registry, log *diag.Log) *Processor {
	return &Processor{eval: eval, reg: reg, log: log}
}

// Process expands a sibling list under the given context and path prefix.
// Order is preserved; skipped actions leave no build node behind.
func (p *Processor) Process(ctx context.Context, actions []*schema.Action, env *scope.Context, prefix nodepath.Path) []*build.Node {
	var out []*build.Node
	for _, action := range actions {
		out = append(out, p.processAction(ctx, action, env, prefix)...)
	}
	return out
}

func (p *Processor) processAction(ctx context.Context, action *schema.Action, env *scope.Context, prefix nodepath.Path) []*build.Node {
	if action == nil {
		return nil
	}
	if len(action.Parameters) > 0 {
		env = p.ResolveParams(ctx, action.Parameters, env)
	}

	switch action.Type {
	case "group":
		return p.processGroup(ctx, action, env, prefix)
	case "repeat":
		return p.processRepeat(ctx, action, env, prefix)
	case "loop":
		return p.processLoop(ctx, action, env, prefix)
	case "helper":
		return p.processHelperCall(ctx, action, env, prefix)
	case "reference":
		return p.processReference(ctx, action, env, prefix)
	case "geometry", "text":
		return p.processGeometry(ctx, action, env, prefix)
	}

	p.log.Warnf(ctx, "unknown action type, skipping node",
		"type", action.Type, "id", action.ID, "prefix", prefix.String())
	return nil
}

// ResolveParams resolves a declared parameter list into a child context.
// Resolution is left to right in a single pass: each parameter evaluates
// against the parent context extended with the parameters already resolved,
// so later declarations may reference earlier ones. Nothing is re-evaluated.
func (p *Processor) ResolveParams(ctx context.Context, params schema.ParamList, parent *scope.Context) *scope.Context {
	child := parent.Fork()
	for _, param := range params {
		if param.Value != nil {
			child.Set(param.Name, param.Value)
			continue
		}
		child.Set(param.Name, p.eval.Evaluate(ctx, param.Expression, child))
	}
	return child
}

func (p *Processor) processGroup(ctx context.Context, action *schema.Action, env *scope.Context, prefix nodepath.Path) []*build.Node {
	path := prefix.Child(segmentName(action))
	node := p.newNode(action, path, build.Group, env)
	node.Transform = p.evalTransform(ctx, action, env)
	node.Children = p.Process(ctx, action.Children, env.Fork(), path)
	return []*build.Node{node}
}

func (p *Processor) processRepeat(ctx context.Context, action *schema.Action, env *scope.Context, prefix nodepath.Path) []*build.Node {
	count := int(p.eval.EvaluateNumber(ctx, action.Count, env))
	if count <= 0 {
		return nil
	}
	if count > MaxIterations {
		p.log.Errorf(ctx, "repeat count exceeds iteration cap, skipping construct",
			"id", action.ID, "count", count, "cap", MaxIterations, "error", ErrLimitExceeded.Error())
		return nil
	}

	name := segmentName(action)
	out := make([]*build.Node, 0, count)
	for i := 0; i < count; i++ {
		sub := env.Fork()
		sub.Set("index", float64(i))
		// Instance parameters evaluate against the growing sub-context, so
		// later ones may reference earlier ones and index.
		for _, param := range action.InstanceParameters {
			if param.Value != nil {
				sub.Set(param.Name, param.Value)
				continue
			}
			sub.Set(param.Name, p.eval.Evaluate(ctx, param.Expression, sub))
		}

		path := prefix.Indexed(name, i)
		instance := p.newNode(action, path, build.Group, sub)
		instance.Transform = build.IdentityTransform()
		instance.Transform.Position = p.distributePosition(ctx, action.Distribution, sub, i, count)
		instance.Children = p.Process(ctx, action.Children, sub, path)
		out = append(out, instance)
	}
	return out
}

// distributePosition consults the named distribution strategy for one
// instance position. No distribution means the origin; an unknown or
// failing strategy degrades to the origin with a warning.
func (p *Processor) distributePosition(ctx context.Context, dist *schema.Distribution, env *scope.Context, index, count int) [3]float64 {
	if dist == nil {
		return [3]float64{}
	}
	strategy, ok := p.reg.Distribution(dist.Type)
	if !ok {
		p.log.Warnf(ctx, "unknown distribution type, placing instance at origin",
			"type", dist.Type, "index", index)
		return [3]float64{}
	}

	params := make(map[string]any, len(dist.Params))
	for key, val := range dist.Params {
		// A nested helper descriptor builds the parameter inline, which is
		// how a curve reaches the along-curve strategy. References cannot be
		// resolved this early; a descriptor that needs one is dropped.
		if desc, ok := val.(map[string]any); ok {
			if helper, isHelper := desc["helper"].(string); isHelper {
				value, deferred := p.evaluateNestedHelper(ctx, helper, desc, env)
				if deferred {
					p.log.Warnf(ctx, "distribution parameter cannot wait on a reference, dropping parameter",
						"type", dist.Type, "param", key)
					continue
				}
				params[key] = value
				continue
			}
		}
		params[key] = p.eval.Evaluate(ctx, val, env)
	}

	pos, err := p.invokeDistribution(ctx, strategy, dist.Type, params, index, count)
	if err != nil {
		p.log.Warnf(ctx, "distribution failed, placing instance at origin",
			"type", dist.Type, "index", index, "error", err.Error())
		return [3]float64{}
	}
	return pos
}

func (p *Processor) invokeDistribution(ctx context.Context, strategy registry.Distribution, name string, params map[string]any, index, count int) (pos [3]float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("distribution %q panicked: %v", name, r)
		}
	}()
	return strategy(ctx, params, index, count)
}

func (p *Processor) processLoop(ctx context.Context, action *schema.Action, env *scope.Context, prefix nodepath.Path) []*build.Node {
	from := int(p.eval.EvaluateNumber(ctx, action.From, env))
	to := int(p.eval.EvaluateNumber(ctx, action.To, env))
	if to <= from {
		return nil
	}
	if to-from > MaxIterations {
		p.log.Errorf(ctx, "loop range exceeds iteration cap, skipping construct",
			"id", action.ID, "from", from, "to", to, "cap", MaxIterations, "error", ErrLimitExceeded.Error())
		return nil
	}

	name := segmentName(action)
	var out []*build.Node
	for i := from; i < to; i++ {
		restore := env.Bind(action.Var, float64(i))
		out = append(out, p.Process(ctx, action.Children, env, prefix.Indexed(name, i))...)
		restore()
	}
	return out
}

func (p *Processor) processHelperCall(ctx context.Context, action *schema.Action, env *scope.Context, prefix nodepath.Path) []*build.Node {
	path := prefix.Child(segmentName(action))
	params, deferred := p.evaluateHelperParams(ctx, action.Params, env)

	node := p.newNode(action, path, build.HelperCall, env)
	node.Helper = action.Helper
	node.Params = params
	node.Deferred = deferred
	node.Transform = p.evalTransform(ctx, action, env)

	if !deferred {
		factory, ok := p.reg.Factory(action.Helper)
		if !ok {
			p.log.Warnf(ctx, "helper not registered, skipping node",
				"helper", action.Helper, "path", path.String(),
				"error", registry.ErrHelperNotFound.Error())
			return nil
		}
		value, err := p.invokeFactory(ctx, factory, action.Helper, params)
		if err != nil {
			p.log.Warnf(ctx, "helper invocation failed, skipping node",
				"helper", action.Helper, "path", path.String(), "error", err.Error())
			return nil
		}
		node.Value = value
	}
	return []*build.Node{node}
}

func (p *Processor) processReference(ctx context.Context, action *schema.Action, env *scope.Context, prefix nodepath.Path) []*build.Node {
	path := prefix.Child(segmentName(action))
	node := p.newNode(action, path, build.Reference, env)
	node.Target = action.Target

	if len(action.Position) > 0 {
		v := p.evalVec3(ctx, action.Position, env, 0)
		node.Over.Position = &v
	}
	if len(action.Rotation) > 0 {
		v := p.evalVec3(ctx, action.Rotation, env, 0)
		node.Over.Rotation = &v
	}
	if len(action.Scale) > 0 {
		v := p.evalVec3(ctx, action.Scale, env, 1)
		node.Over.Scale = &v
	}
	return []*build.Node{node}
}

func (p *Processor) processGeometry(ctx context.Context, action *schema.Action, env *scope.Context, prefix nodepath.Path) []*build.Node {
	path := prefix.Child(segmentName(action))
	node := p.newNode(action, path, build.RawGeometry, env)
	node.Shape = action.Shape
	if action.Type == "text" {
		node.Shape = "text"
		node.Text = action.Text
		node.Font = action.Font
	}
	node.Transform = p.evalTransform(ctx, action, env)
	node.Dimensions = p.expandDimensions(ctx, action.Dimensions, env)
	return []*build.Node{node}
}

// newNode fills the fields every build node shares. The context snapshot is
// retained for late-stage evaluation; the source action for regeneration.
func (p *Processor) newNode(action *schema.Action, path nodepath.Path, kind build.Kind, env *scope.Context) *build.Node {
	return &build.Node{
		Path:     path,
		Kind:     kind,
		Material: action.Material,
		Env:      env.Snapshot(),
		Source:   action,
	}
}

func segmentName(action *schema.Action) string {
	if action.ID != "" {
		return action.ID
	}
	return action.Type
}
