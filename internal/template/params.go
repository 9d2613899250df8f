package template

import (
	"context"
	"fmt"

	"github.com/vk/sceneforge/internal/build"
	"github.com/vk/sceneforge/internal/registry"
	"github.com/vk/sceneforge/internal/schema"
	"github.com/vk/sceneforge/internal/scope"
)

// evaluateHelperParams evaluates one helper-call parameter map. Three value
// shapes are recognized: a reference descriptor becomes a build.Ref marker
// and defers the whole call, a nested helper descriptor is invoked inline
// and replaced by its node, and anything else goes through the expression
// evaluator.
func (p *Processor) evaluateHelperParams(ctx context.Context, params map[string]any, env *scope.Context) (map[string]any, bool) {
	out := make(map[string]any, len(params))
	deferred := false
	for key, raw := range params {
		desc, ok := raw.(map[string]any)
		if !ok {
			out[key] = p.eval.Evaluate(ctx, raw, env)
			continue
		}

		if desc["type"] == "reference" {
			target, _ := desc["target"].(string)
			out[key] = build.Ref{Target: target}
			deferred = true
			continue
		}

		if helper, ok := desc["helper"].(string); ok {
			nested, nestedDeferred := p.evaluateNestedHelper(ctx, helper, desc, env)
			if nestedDeferred {
				// A reference buried inside a nested descriptor defers the
				// outer call too; the raw descriptor rides along untouched.
				out[key] = raw
				deferred = true
				continue
			}
			out[key] = nested
			continue
		}

		// A plain object parameter: evaluate each member.
		resolved := make(map[string]any, len(desc))
		for name, val := range desc {
			resolved[name] = p.eval.Evaluate(ctx, val, env)
		}
		out[key] = resolved
	}
	return out, deferred
}

// evaluateNestedHelper invokes a helper descriptor used as a parameter
// value. Failures resolve to nil so the outer call sees a missing param
// rather than aborting the walk.
func (p *Processor) evaluateNestedHelper(ctx context.Context, helper string, desc map[string]any, env *scope.Context) (any, bool) {
	var inner map[string]any
	if raw, ok := desc["params"].(map[string]any); ok {
		inner = raw
	}
	params, deferred := p.evaluateHelperParams(ctx, inner, env)
	if deferred {
		return nil, true
	}

	factory, ok := p.reg.Factory(helper)
	if !ok {
		p.log.Warnf(ctx, "nested helper not registered, parameter resolves to nil",
			"helper", helper, "error", registry.ErrHelperNotFound.Error())
		return nil, false
	}
	value, err := p.invokeFactory(ctx, factory, helper, params)
	if err != nil {
		p.log.Warnf(ctx, "nested helper invocation failed, parameter resolves to nil",
			"helper", helper, "error", err.Error())
		return nil, false
	}
	return value, false
}

func (p *Processor) invokeFactory(ctx context.Context, factory registry.Factory, name string, params map[string]any) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value, err = nil, fmt.Errorf("helper %q panicked: %v", name, r)
		}
	}()
	node, err := factory(ctx, params)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, nil
	}
	return node, nil
}

// evalTransform evaluates the common placement triple. Absent axes keep
// their identity value.
func (p *Processor) evalTransform(ctx context.Context, action *schema.Action, env *scope.Context) build.Transform {
	t := build.IdentityTransform()
	if len(action.Position) > 0 {
		t.Position = p.evalVec3(ctx, action.Position, env, 0)
	}
	if len(action.Rotation) > 0 {
		t.Rotation = p.evalVec3(ctx, action.Rotation, env, 0)
	}
	if len(action.Scale) > 0 {
		t.Scale = p.evalVec3(ctx, action.Scale, env, 1)
	}
	return t
}

// evalVec3 evaluates up to three axis expressions, filling missing axes
// with the given default.
func (p *Processor) evalVec3(ctx context.Context, raw []any, env *scope.Context, fill float64) [3]float64 {
	v := [3]float64{fill, fill, fill}
	for i := 0; i < len(raw) && i < 3; i++ {
		v[i] = p.eval.EvaluateNumber(ctx, raw[i], env)
	}
	return v
}

// expandDimensions evaluates a raw dimension list. Scalar entries evaluate
// to numbers; generator descriptors are expanded and their points spliced
// in place, so `[{type: star, ...}, 0.2]` becomes a flat point list
// followed by a depth.
func (p *Processor) expandDimensions(ctx context.Context, raw []any, env *scope.Context) []any {
	if len(raw) == 0 {
		return nil
	}
	out := make([]any, 0, len(raw))
	for _, entry := range raw {
		desc, ok := entry.(map[string]any)
		if !ok {
			out = append(out, p.eval.Evaluate(ctx, entry, env))
			continue
		}

		kind, _ := desc["type"].(string)
		gen, ok := p.reg.Generator(kind)
		if !ok {
			p.log.Warnf(ctx, "unknown point generator, dropping dimension entry", "type", kind)
			continue
		}

		params := make(map[string]any, len(desc))
		for key, val := range desc {
			if key == "type" {
				continue
			}
			params[key] = p.eval.Evaluate(ctx, val, env)
		}

		points, err := p.invokeGenerator(ctx, gen, kind, params)
		if err != nil {
			p.log.Warnf(ctx, "point generator failed, dropping dimension entry",
				"type", kind, "error", err.Error())
			continue
		}
		for _, pt := range points {
			out = append(out, pt)
		}
	}
	return out
}

func (p *Processor) invokeGenerator(ctx context.Context, gen registry.Generator, name string, params map[string]any) (points [][2]float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			points, err = nil, fmt.Errorf("generator %q panicked: %v", name, r)
		}
	}()
	return gen(ctx, params)
}
