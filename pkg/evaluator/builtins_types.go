package evaluator

import (
	"context"
	"strconv"
	"strings"

	"github.com/secondlayerco/jsonata/pkg/types"
)

// Type-inspection builtins ($type/$exists/$number/$boolean/$not).

func fnType(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	value := args[0]
	if value == nil {
		return nil, nil
	}
	if _, ok := value.(types.Null); ok {
		return "null", nil
	}
	switch value.(type) {
	case string:
		return "string", nil
	case float64:
		return "number", nil
	case bool:
		return "boolean", nil
	case []interface{}, *types.Sequence:
		return "array", nil
	case map[string]interface{}, *types.OrderedObject:
		return "object", nil
	case *Lambda, *FunctionDef, *PartialApplication:
		return "function", nil
	default:
		return "unknown", nil
	}
}

func fnExists(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	return args[0] != nil, nil
}

func fnNumber(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	if n, ok := args[0].(float64); ok {
		return n, nil
	}
	if b, ok := args[0].(bool); ok {
		if b {
			return float64(1), nil
		}
		return float64(0), nil
	}
	str, ok := args[0].(string)
	if !ok {
		return nil, types.NewError(types.ErrCannotConvertNumber, "unable to cast value to a number")
	}
	if num, err := strconv.ParseFloat(str, 64); err == nil {
		return num, nil
	}
	switch {
	case strings.HasPrefix(str, "0x"), strings.HasPrefix(str, "0X"):
		if num, err := strconv.ParseInt(str[2:], 16, 64); err == nil {
			return float64(num), nil
		}
	case strings.HasPrefix(str, "0o"), strings.HasPrefix(str, "0O"):
		if num, err := strconv.ParseInt(str[2:], 8, 64); err == nil {
			return float64(num), nil
		}
	case strings.HasPrefix(str, "0b"), strings.HasPrefix(str, "0B"):
		if num, err := strconv.ParseInt(str[2:], 2, 64); err == nil {
			return float64(num), nil
		}
	}
	return nil, types.NewError(types.ErrCannotConvertNumber, "unable to cast value to a number: "+str)
}

func fnBoolean(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	return isTruthy(args[0]), nil
}

func fnNot(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	return !isTruthy(args[0]), nil
}
