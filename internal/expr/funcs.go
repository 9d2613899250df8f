package expr

import (
	"math"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// evalFunctions is the closed math function table available to the final
// evaluation stage. Registered helper functions are resolved textually
// before this stage; these are the pure numeric primitives.
var evalFunctions = map[string]function.Function{
	"abs":    stdlib.AbsoluteFunc,
	"ceil":   stdlib.CeilFunc,
	"floor":  stdlib.FloorFunc,
	"min":    stdlib.MinFunc,
	"max":    stdlib.MaxFunc,
	"pow":    stdlib.PowFunc,
	"log":    stdlib.LogFunc,
	"signum": stdlib.SignumFunc,
	"int":    stdlib.IntFunc,

	"sin":   unaryMath(math.Sin),
	"cos":   unaryMath(math.Cos),
	"tan":   unaryMath(math.Tan),
	"asin":  unaryMath(math.Asin),
	"acos":  unaryMath(math.Acos),
	"atan":  unaryMath(math.Atan),
	"sqrt":  unaryMath(math.Sqrt),
	"exp":   unaryMath(math.Exp),
	"round": unaryMath(math.Round),
	"rad":   unaryMath(func(deg float64) float64 { return deg * math.Pi / 180 }),
	"deg":   unaryMath(func(rad float64) float64 { return rad * 180 / math.Pi }),

	"atan2": binaryMath(math.Atan2),
	"hypot": binaryMath(math.Hypot),
	"mod":   binaryMath(math.Mod),

	"clamp": ternaryMath(func(x, lo, hi float64) float64 {
		return math.Min(math.Max(x, lo), hi)
	}),
	"lerp": ternaryMath(func(a, b, t float64) float64 {
		return a + (b-a)*t
	}),

	// truthy backs the if() rewrite: the mini-language's conditions are
	// loosely typed (any nonzero number is true), the ternary operator of
	// the final evaluator is not.
	"truthy": function.New(&function.Spec{
		Params: []function.Parameter{{
			Name:             "v",
			Type:             cty.DynamicPseudoType,
			AllowNull:        true,
			AllowDynamicType: true,
		}},
		Type: function.StaticReturnType(cty.Bool),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			v := args[0]
			switch {
			case v.IsNull():
				return cty.False, nil
			case v.Type() == cty.Bool:
				return v, nil
			case v.Type() == cty.Number:
				return cty.BoolVal(v.AsBigFloat().Sign() != 0), nil
			case v.Type() == cty.String:
				return cty.BoolVal(v.AsString() != ""), nil
			}
			return cty.True, nil
		},
	}),
}

func numberParams(names ...string) []function.Parameter {
	params := make([]function.Parameter, len(names))
	for i, name := range names {
		params[i] = function.Parameter{Name: name, Type: cty.Number}
	}
	return params
}

func unaryMath(impl func(float64) float64) function.Function {
	return function.New(&function.Spec{
		Params: numberParams("x"),
		Type:   function.StaticReturnType(cty.Number),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			x, _ := args[0].AsBigFloat().Float64()
			return cty.NumberFloatVal(impl(x)), nil
		},
	})
}

func binaryMath(impl func(float64, float64) float64) function.Function {
	return function.New(&function.Spec{
		Params: numberParams("x", "y"),
		Type:   function.StaticReturnType(cty.Number),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			x, _ := args[0].AsBigFloat().Float64()
			y, _ := args[1].AsBigFloat().Float64()
			return cty.NumberFloatVal(impl(x, y)), nil
		},
	})
}

func ternaryMath(impl func(float64, float64, float64) float64) function.Function {
	return function.New(&function.Spec{
		Params: numberParams("x", "y", "z"),
		Type:   function.StaticReturnType(cty.Number),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			x, _ := args[0].AsBigFloat().Float64()
			y, _ := args[1].AsBigFloat().Float64()
			z, _ := args[2].AsBigFloat().Float64()
			return cty.NumberFloatVal(impl(x, y, z)), nil
		},
	})
}
