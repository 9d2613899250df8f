package expr

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vk/sceneforge/internal/diag"
	"github.com/vk/sceneforge/internal/scope"
)

// ErrEvaluate classifies any recovered expression failure.
var ErrEvaluate = errors.New("expression evaluation failed")

const (
	// maxConditionalPasses bounds if() rewriting so malformed nesting
	// cannot loop forever.
	maxConditionalPasses = 32
	// maxFunctionPasses bounds named-function resolution for the same
	// reason.
	maxFunctionPasses = 64
)

// Func is a named callable resolvable inside expressions.
type Func = func(ctx context.Context, args []any) (any, error)

// FuncSource supplies expression functions by name. Implemented by the run
// registry.
type FuncSource interface {
	Function(name string) (Func, bool)
}

// Evaluator evaluates mini-language expressions against a scope.Context,
// memoizing results under (expression text, context fingerprint). It is
// owned by one engine instance; the walk is the single writer of the cache,
// so no locking is needed.
type Evaluator struct {
	funcs FuncSource
	log   *diag.Log
	cache map[string]any
}

// New creates an Evaluator backed by the given function source and
// diagnostic log.
func New(funcs FuncSource, log *diag.Log) *Evaluator {
	return &Evaluator{
		funcs: funcs,
		log:   log,
		cache: make(map[string]any),
	}
}

// ClearCache discards every memoized result. Must be called whenever any
// context value that expressions might depend on changes; the cache has no
// fine-grained invalidation.
func (e *Evaluator) ClearCache() {
	e.cache = make(map[string]any)
}

// CacheSize reports the number of memoized entries.
func (e *Evaluator) CacheSize() int {
	return len(e.cache)
}

// Evaluate resolves an expression against the context. Numbers and booleans
// pass through unchanged, slices evaluate elementwise, and strings run the
// full pipeline. A failure never propagates: the expression degrades to 0
// with a diagnostic record.
//
// Conditionals rewrite to ternaries before registered functions resolve, so
// a function in the branch not taken is still invoked; functions called from
// expressions are expected to be side-effect free.
func (e *Evaluator) Evaluate(ctx context.Context, raw any, env *scope.Context) any {
	switch v := raw.(type) {
	case nil:
		return 0.0
	case float64:
		return v
	case int:
		return float64(v)
	case bool:
		return v
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = e.Evaluate(ctx, item, env)
		}
		return out
	case string:
		return e.evaluateString(ctx, v, env)
	}
	// Opaque values (scene nodes produced by nested calls) pass through.
	return raw
}

// EvaluateNumber evaluates and coerces the result to a float64. Booleans
// become 0/1; anything non-numeric degrades to 0.
func (e *Evaluator) EvaluateNumber(ctx context.Context, raw any, env *scope.Context) float64 {
	switch v := e.Evaluate(ctx, raw, env).(type) {
	case float64:
		return v
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return 0
}

func (e *Evaluator) evaluateString(ctx context.Context, raw string, env *scope.Context) any {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}

	key := raw + "\x00" + env.Fingerprint()
	if cached, ok := e.cache[key]; ok {
		return cached
	}

	result := e.run(ctx, s, env)
	e.cache[key] = result
	return result
}

// run executes the rewrite pipeline on one expression string.
func (e *Evaluator) run(ctx context.Context, s string, env *scope.Context) (result any) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warnf(ctx, "expression panicked, degrading to 0", "expression", s, "panic", fmt.Sprint(r))
			result = 0.0
		}
	}()

	// Stage 1: $name substitution.
	s1 := substituteVars(s, env.Get, func(name string) {
		e.log.Warnf(ctx, "expression references missing binding, substituting 0",
			"expression", s, "binding", name)
	})

	// Stage 2: if() to ternary.
	s2 := rewriteConditionals(s1, maxConditionalPasses)

	// Stage 3: registered named functions.
	s3, direct, done := e.resolveFunctions(ctx, s2, env)
	if done {
		return direct
	}

	// Stages 4-5: bare variables and constants resolve inside the
	// restricted evaluator itself.
	value, err := evalReduced(s3, env)
	if err != nil {
		e.log.Warnf(ctx, "expression failed, degrading to 0",
			"expression", s, "reduced", s3, "error", err.Error())
		return 0.0
	}
	return value
}

// resolveFunctions replaces calls to registered functions with their
// computed results. Arguments are evaluated recursively against the same
// context, so nested registered calls and conditionals inside arguments
// work without special casing. When the entire expression is a single call
// whose result cannot be rendered as text (a geometry object, say), the
// result is returned directly instead of being spliced.
func (e *Evaluator) resolveFunctions(ctx context.Context, s string, env *scope.Context) (string, any, bool) {
	match := func(name string) bool {
		_, ok := e.funcs.Function(name)
		return ok
	}

	for pass := 0; pass < maxFunctionPasses; pass++ {
		site, ok := findCall(s, match)
		if !ok {
			return s, nil, false
		}

		args := make([]any, len(site.args))
		for i, argText := range site.args {
			args[i] = e.Evaluate(ctx, argText, env)
		}

		fn, _ := e.funcs.Function(site.name)
		value, err := e.invoke(ctx, fn, site.name, args)
		if err != nil {
			e.log.Warnf(ctx, "expression function failed, degrading to 0",
				"function", site.name, "error", err.Error())
			value = 0.0
		}

		wholeExpression := strings.TrimSpace(s[:site.start]) == "" && strings.TrimSpace(s[site.end:]) == ""
		text, ferr := formatValue(value)
		if ferr != nil {
			if wholeExpression {
				return "", value, true
			}
			e.log.Warnf(ctx, "expression function result cannot be inlined, substituting 0",
				"function", site.name, "error", ferr.Error())
			text = "0"
		}
		s = s[:site.start] + text + s[site.end:]
	}

	e.log.Warnf(ctx, "expression exceeded function resolution passes", "expression", s)
	return s, nil, false
}

// invoke guards a single function call so one bad helper cannot abort the
// pipeline.
func (e *Evaluator) invoke(ctx context.Context, fn Func, name string, args []any) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: function %s panicked: %v", ErrEvaluate, name, r)
		}
	}()
	return fn(ctx, args)
}
