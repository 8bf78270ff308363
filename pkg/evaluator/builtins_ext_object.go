package evaluator

import (
	"context"

	"github.com/secondlayerco/jsonata/pkg/types"
)

// Extended object builtins: $values/$pairs/$fromPairs/$pick/$omit/
// $deepMerge/$invert. Results are ordered objects so member order follows
// the source object (or, for plain host maps, the sorted-key order the
// rest of the evaluator uses).

func fnValues(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	keys, values, ok := objectKeysValues(args[0])
	if !ok {
		return nil, types.NewError(types.ErrArgumentCountMismatch, "the argument of $values must be an object")
	}
	if len(keys) == 0 {
		return nil, nil
	}
	result := make([]interface{}, len(keys))
	for i, k := range keys {
		result[i] = values[k]
	}
	return result, nil
}

// fnPairs returns [[key, value], ...], the inverse of $fromPairs.
func fnPairs(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	keys, values, ok := objectKeysValues(args[0])
	if !ok {
		return nil, types.NewError(types.ErrArgumentCountMismatch, "the argument of $pairs must be an object")
	}
	if len(keys) == 0 {
		return nil, nil
	}
	result := make([]interface{}, len(keys))
	for i, k := range keys {
		result[i] = []interface{}{k, values[k]}
	}
	return result, nil
}

func fnFromPairs(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	arr, err := toArray(args[0])
	if err != nil {
		return nil, err
	}
	result := types.NewOrderedObject()
	for _, item := range arr {
		pair, ok := item.([]interface{})
		if !ok || len(pair) < 2 {
			return nil, types.NewError(types.ErrArgumentCountMismatch, "every element of $fromPairs must be a [key, value] pair")
		}
		key, ok := pair[0].(string)
		if !ok {
			return nil, types.NewError(types.ErrNonStringKey, "object key must be a string")
		}
		result.Set(key, pair[1])
	}
	return result, nil
}

func fnPick(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	keys, values, ok := objectKeysValues(args[0])
	if !ok {
		return nil, types.NewError(types.ErrArgumentCountMismatch, "the first argument of $pick must be an object")
	}
	wanted := make(map[string]bool)
	for _, item := range itemsOf(args[1]) {
		if k, ok := item.(string); ok {
			wanted[k] = true
		}
	}
	result := types.NewOrderedObject()
	for _, k := range keys {
		if wanted[k] {
			result.Set(k, values[k])
		}
	}
	if result.Len() == 0 {
		return nil, nil
	}
	return result, nil
}

func fnOmit(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	keys, values, ok := objectKeysValues(args[0])
	if !ok {
		return nil, types.NewError(types.ErrArgumentCountMismatch, "the first argument of $omit must be an object")
	}
	dropped := make(map[string]bool)
	for _, item := range itemsOf(args[1]) {
		if k, ok := item.(string); ok {
			dropped[k] = true
		}
	}
	result := types.NewOrderedObject()
	for _, k := range keys {
		if !dropped[k] {
			result.Set(k, values[k])
		}
	}
	if result.Len() == 0 {
		return nil, nil
	}
	return result, nil
}

// fnDeepMerge recursively merges an array of objects; later members win,
// and two object values under the same key merge member-by-member instead
// of the later one replacing the earlier wholesale (contrast $merge).
func fnDeepMerge(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
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
			return nil, types.NewError(types.ErrArgumentCountMismatch, "every element of $deepMerge must be an object")
		}
		for _, k := range keys {
			deepMergeMember(result, k, values[k])
		}
	}
	return result, nil
}

func deepMergeMember(dst *types.OrderedObject, key string, value interface{}) {
	srcKeys, srcVals, srcIsObj := objectKeysValues(value)
	if srcIsObj {
		if existing, ok := dst.Get(key); ok {
			if dstKeys, dstVals, ok := objectKeysValues(existing); ok {
				merged := types.NewOrderedObject()
				for _, k := range dstKeys {
					merged.Set(k, dstVals[k])
				}
				for _, k := range srcKeys {
					deepMergeMember(merged, k, srcVals[k])
				}
				dst.Set(key, merged)
				return
			}
		}
	}
	dst.Set(key, value)
}

// fnInvert swaps keys and values; values are stringified to become keys,
// and a duplicated value keeps the last key seen.
func fnInvert(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	keys, values, ok := objectKeysValues(args[0])
	if !ok {
		return nil, types.NewError(types.ErrArgumentCountMismatch, "the argument of $invert must be an object")
	}
	result := types.NewOrderedObject()
	for _, k := range keys {
		result.Set(stringify(values[k]), k)
	}
	return result, nil
}
