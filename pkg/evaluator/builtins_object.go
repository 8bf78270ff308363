package evaluator

import (
	"context"
	"fmt"
	"sort"

	"github.com/secondlayerco/jsonata/pkg/types"
)

// Object builtins:
// $each/$sift/$keys/$lookup/$merge/$spread. Plain Go maps have no stable
// iteration order, so callbacks over a map[string]interface{} sort its
// keys first; an *types.OrderedObject always iterates its own Keys order.

func objectKeysValues(obj interface{}) ([]string, map[string]interface{}, bool) {
	switch v := obj.(type) {
	case *types.OrderedObject:
		return v.Keys, v.Values, true
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys, v, true
	default:
		return nil, nil, false
	}
}

// callbackArgsFor builds the (value[, key[, object]]) call tuple an
// $each/$sift callback receives, trimmed to however many parameters the
// callable actually declares.
func callbackArgsFor(fn interface{}, value interface{}, key string, obj interface{}) []interface{} {
	full := []interface{}{value, key, obj}
	arity := callableArity(fn)
	switch {
	case arity == 1:
		return full[:1]
	case arity == 2:
		return full[:2]
	case arity < 0 || arity >= 3:
		return full
	default:
		return full[:arity]
	}
}

func fnEach(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	obj := args[0]
	if obj == nil {
		return []interface{}{}, nil
	}
	keys, values, ok := objectKeysValues(obj)
	if !ok {
		return nil, types.NewError(types.ErrNonStringKey, "the first argument of $each must be an object")
	}
	if args[1] == nil {
		return nil, types.NewError(types.ErrNotCallable, "the second argument of $each must be a function")
	}

	result := make([]interface{}, 0, len(keys))
	for _, key := range keys {
		value := values[key]
		itemResult, err := e.callCallable(ctx, args[1], env, callbackArgsFor(args[1], value, key, obj))
		if err != nil {
			return nil, err
		}
		if itemResult != nil {
			result = append(result, itemResult)
		}
	}
	return result, nil
}

func fnSift(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	obj := args[0]
	if obj == nil {
		return nil, nil
	}

	if arr, ok := obj.([]interface{}); ok {
		var results []interface{}
		for _, elem := range arr {
			if elem == nil {
				continue
			}
			res, err := fnSift(ctx, e, env, []interface{}{elem, args[1]})
			if err != nil {
				return nil, err
			}
			if res != nil {
				results = append(results, res)
			}
		}
		if len(results) == 0 {
			return nil, nil
		}
		return results, nil
	}

	keys, values, ok := objectKeysValues(obj)
	if !ok {
		return nil, nil
	}
	if args[1] == nil {
		return nil, types.NewError(types.ErrNotCallable, "the second argument of $sift must be a function")
	}

	result := types.NewOrderedObject()
	for _, key := range keys {
		value := values[key]
		include, err := e.callCallable(ctx, args[1], env, callbackArgsFor(args[1], value, key, obj))
		if err != nil {
			return nil, err
		}
		if isTruthy(include) {
			result.Set(key, value)
		}
	}
	if result.Len() == 0 {
		return nil, nil
	}
	return result, nil
}

func fnKeys(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if len(args) == 0 || args[0] == nil {
		return nil, nil
	}

	switch v := args[0].(type) {
	case []interface{}:
		seen := make(map[string]bool)
		var keys []string
		for _, item := range v {
			sub, err := fnKeys(ctx, e, env, []interface{}{item})
			if err != nil {
				return nil, err
			}
			for _, k := range itemsOf(sub) {
				if ks, ok := k.(string); ok && !seen[ks] {
					seen[ks] = true
					keys = append(keys, ks)
				}
			}
		}
		return stringsToInterface(keys), nil
	default:
		keys, _, ok := objectKeysValues(v)
		if !ok {
			return nil, nil
		}
		return stringsToInterface(keys), nil
	}
}

func stringsToInterface(keys []string) interface{} {
	if len(keys) == 0 {
		return nil
	}
	out := make([]interface{}, len(keys))
	for i, k := range keys {
		out[i] = k
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

func fnLookup(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	keyStr, ok := args[1].(string)
	if !ok {
		keyStr = fmt.Sprint(args[1])
	}

	lookupOne := func(item interface{}) (interface{}, bool) {
		switch v := item.(type) {
		case *types.OrderedObject:
			return v.Get(keyStr)
		case map[string]interface{}:
			val, found := v[keyStr]
			return val, found
		default:
			return nil, false
		}
	}

	if arr, ok := args[0].([]interface{}); ok {
		var results []interface{}
		for _, item := range arr {
			if val, found := lookupOne(item); found {
				results = append(results, val)
			}
		}
		if len(results) == 0 {
			return nil, nil
		}
		if len(results) == 1 {
			return results[0], nil
		}
		return results, nil
	}

	val, _ := lookupOne(args[0])
	return val, nil
}

func fnMerge(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	arr, err := toArray(args[0])
	if err != nil {
		return nil, err
	}

	result := types.NewOrderedObject()
	for _, item := range arr {
		keys, values, ok := objectKeysValues(item)
		if !ok {
			return nil, types.NewError(types.ErrNonStringKey, "$merge can only merge objects")
		}
		for _, k := range keys {
			result.Set(k, values[k])
		}
	}
	return result, nil
}

func fnSpread(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if len(args) == 0 || args[0] == nil {
		return nil, nil
	}
	return spreadRecursive(args[0]), nil
}

func spreadRecursive(arg interface{}) interface{} {
	var result []interface{}
	switch v := arg.(type) {
	case []interface{}:
		for _, item := range v {
			spread := spreadRecursive(item)
			if arr, ok := spread.([]interface{}); ok {
				result = append(result, arr...)
			} else if spread != nil {
				result = append(result, spread)
			}
		}
	case *types.OrderedObject:
		for _, k := range v.Keys {
			single := types.NewOrderedObject()
			single.Set(k, v.Values[k])
			result = append(result, single)
		}
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			single := types.NewOrderedObject()
			single.Set(k, v[k])
			result = append(result, single)
		}
	default:
		return arg
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
