package evaluator

import (
	"context"

	"github.com/secondlayerco/jsonata/pkg/types"
)

// toArray coerces v the way every array-shaped builtin parameter does:
// undefined becomes an empty array, an existing array
// passes through, and a bare scalar is wrapped as its sole element.
func toArray(v interface{}) ([]interface{}, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		return val, nil
	case *types.Sequence:
		return val.ToSlice(), nil
	default:
		return []interface{}{val}, nil
	}
}

// toStringArg coerces v to a string for builtins that require one
// (T1002 on non-string, non-coercible input).
func toStringArg(v interface{}) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case float64:
		return formatNumber(val), nil
	case bool:
		if val {
			return "true", nil
		}
		return "false", nil
	default:
		return "", types.NewError(types.ErrCannotConvertString, "unable to cast value to a string")
	}
}

// callCallable invokes a JSONata callable (*Lambda, *FunctionDef or
// *PartialApplication) with exactly args, used by higher-order functions
// ($map/$filter/$reduce/$sort/...) to re-enter evaluation via the
// Evaluator's own invokeCallable dispatch.
func (e *Evaluator) callCallable(ctx context.Context, fn interface{}, env *Environment, args []interface{}) (interface{}, error) {
	return e.invokeCallable(withoutTCOTail(ctx), fn, args, env, 0)
}

// callableArity reports how many positional parameters fn declares, used
// by higher-order functions to only pass as many of (value, index,
// array)/(accumulator, value, index, array) as the callable actually
// wants — JSONata lambdas are free to ignore trailing HOF arguments.
func callableArity(fn interface{}) int {
	switch v := fn.(type) {
	case *Lambda:
		return len(v.Params)
	case *FunctionDef:
		return v.MaxArgs
	default:
		return -1
	}
}

func trimArgs(args []interface{}, arity int) []interface{} {
	if arity < 0 || arity >= len(args) {
		return args
	}
	return args[:arity]
}
