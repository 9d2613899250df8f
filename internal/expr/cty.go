package expr

import (
	"fmt"
	"regexp"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/sceneforge/internal/scope"
)

// allowedExprChars is the character allowlist the reduced expression must
// satisfy before it is handed to the HCL evaluator: digits, arithmetic and
// comparison operators, parentheses, brackets, quotes, identifier
// characters, and whitespace. $ and # stay legal because quoted literals may
// carry them. Anything else fails the expression.
var allowedExprChars = regexp.MustCompile(`^[0-9a-zA-Z_$#+\-*/%(),.:<>=!&|?\[\]"' \t]*$`)

// constants are the named numeric constants available to every expression.
// Context bindings of the same name shadow them.
var constants = map[string]cty.Value{
	"pi":  cty.NumberFloatVal(3.141592653589793),
	"tau": cty.NumberFloatVal(6.283185307179586),
	"phi": cty.NumberFloatVal(1.618033988749895),
}

// evalReduced runs the final pipeline stage: allowlist check, parse with
// hclsyntax, evaluate against the flattened context plus the math function
// table, and convert the result back to a Go value.
func evalReduced(s string, env *scope.Context) (any, error) {
	if !allowedExprChars.MatchString(s) {
		return nil, fmt.Errorf("expression contains disallowed characters: %q", s)
	}

	parsed, diags := hclsyntax.ParseExpression([]byte(s), "expression", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %q: %s", s, diags.Error())
	}

	vars := make(map[string]cty.Value, len(constants))
	for name, val := range constants {
		vars[name] = val
	}
	for name, val := range env.Flatten() {
		cv, err := goToCty(val)
		if err != nil {
			// Opaque values (scene nodes and the like) are simply not
			// visible as bare variables.
			continue
		}
		vars[name] = cv
	}

	val, diags := parsed.Value(&hcl.EvalContext{Variables: vars, Functions: evalFunctions})
	if diags.HasErrors() {
		return nil, fmt.Errorf("evaluating %q: %s", s, diags.Error())
	}
	return ctyToGo(val)
}

// goToCty converts a context value into a cty value for the evaluator.
func goToCty(v any) (cty.Value, error) {
	switch tv := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case bool:
		return cty.BoolVal(tv), nil
	case float64:
		return cty.NumberFloatVal(tv), nil
	case int:
		return cty.NumberIntVal(int64(tv)), nil
	case string:
		return cty.StringVal(tv), nil
	case []float64:
		items := make([]any, len(tv))
		for i, f := range tv {
			items[i] = f
		}
		return goToCty(items)
	case [2]float64:
		return goToCty(tv[:])
	case [3]float64:
		return goToCty(tv[:])
	case []any:
		if len(tv) == 0 {
			return cty.EmptyTupleVal, nil
		}
		items := make([]cty.Value, len(tv))
		for i, item := range tv {
			cv, err := goToCty(item)
			if err != nil {
				return cty.NilVal, err
			}
			items[i] = cv
		}
		return cty.TupleVal(items), nil
	case map[string]any:
		if len(tv) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(tv))
		for k, item := range tv {
			cv, err := goToCty(item)
			if err != nil {
				return cty.NilVal, err
			}
			attrs[k] = cv
		}
		return cty.ObjectVal(attrs), nil
	}
	return cty.NilVal, fmt.Errorf("value of type %T has no expression representation", v)
}

// ctyToGo converts an evaluation result back into the plain Go value space
// the rest of the interpreter works in.
func ctyToGo(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("expression result is unknown")
	}
	ty := v.Type()
	switch {
	case ty == cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return f, nil
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			item, err := ctyToGo(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		}
		return out, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			kv, ev := it.Element()
			item, err := ctyToGo(ev)
			if err != nil {
				return nil, err
			}
			out[kv.AsString()] = item
		}
		return out, nil
	}
	return nil, fmt.Errorf("expression result type %s is not supported", ty.FriendlyName())
}
