package engine

import (
	"context"
	"fmt"

	"github.com/vk/sceneforge/internal/diag"
	"github.com/vk/sceneforge/internal/expr"
	"github.com/vk/sceneforge/internal/registry"
	"github.com/vk/sceneforge/internal/schema"
	"github.com/vk/sceneforge/internal/scope"
)

// compileDefinitions turns schema-level definitions into registered
// expression functions. Each definition becomes a closed callable: its body
// evaluates against a fresh context holding exactly the enumerated
// parameters, so it captures nothing from the calling scope. A definition
// that collides with an already registered function is skipped with a
// warning rather than shadowing it.
func compileDefinitions(defs []*schema.Definition, eval *expr.Evaluator, reg *registry.Registry, log *diag.Log) {
	for _, def := range defs {
		if _, exists := reg.Function(def.Name); exists {
			log.Warnf(context.Background(), "definition collides with a registered function, skipping",
				"name", def.Name)
			continue
		}
		reg.RegisterFunction(def.Name, compileDefinition(def, eval))
	}
}

func compileDefinition(def *schema.Definition, eval *expr.Evaluator) registry.Func {
	params := def.Parameters
	body := def.Body
	name := def.Name
	return func(ctx context.Context, args []any) (any, error) {
		if len(args) != len(params) {
			return nil, fmt.Errorf("definition %q takes %d arguments, got %d", name, len(params), len(args))
		}
		env := scope.New()
		for i, param := range params {
			env.Set(param, args[i])
		}
		return eval.Evaluate(ctx, body, env), nil
	}
}
