package evaluator

import (
	"context"

	"github.com/secondlayerco/jsonata/pkg/types"
)

// Extended array builtins beyond the reference JSONata library:
// positional slicing ($first/$last/$take/$skip/$slice), shape changes
// ($flatten/$chunk), and set operations ($union/$intersection/
// $difference). Set membership uses the same canonical-key comparison as
// $distinct, so structurally equal objects collapse regardless of key
// order.

func intArg(v interface{}, fn, what string) (int, error) {
	n, ok := v.(float64)
	if !ok {
		return 0, types.NewError(types.ErrArgumentCountMismatch, "the "+what+" argument of "+fn+" must be a number")
	}
	return int(n), nil
}

func fnFirst(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	arr, err := toArray(args[0])
	if err != nil {
		return nil, err
	}
	if len(arr) == 0 {
		return nil, nil
	}
	return arr[0], nil
}

func fnLast(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	arr, err := toArray(args[0])
	if err != nil {
		return nil, err
	}
	if len(arr) == 0 {
		return nil, nil
	}
	return arr[len(arr)-1], nil
}

func fnTake(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	arr, err := toArray(args[0])
	if err != nil {
		return nil, err
	}
	n, err := intArg(args[1], "$take", "second")
	if err != nil {
		return nil, err
	}
	if n < 0 {
		n = 0
	}
	if n > len(arr) {
		n = len(arr)
	}
	if n == 0 {
		return nil, nil
	}
	return append([]interface{}(nil), arr[:n]...), nil
}

func fnSkip(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	arr, err := toArray(args[0])
	if err != nil {
		return nil, err
	}
	n, err := intArg(args[1], "$skip", "second")
	if err != nil {
		return nil, err
	}
	if n < 0 {
		n = 0
	}
	if n > len(arr) {
		n = len(arr)
	}
	if n == len(arr) {
		return nil, nil
	}
	return append([]interface{}(nil), arr[n:]...), nil
}

// fnSlice implements $slice(array, start [, end]): 0-based, end exclusive,
// negative indices counting from the end.
func fnSlice(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	arr, err := toArray(args[0])
	if err != nil {
		return nil, err
	}
	n := len(arr)
	start, err := intArg(args[1], "$slice", "start")
	if err != nil {
		return nil, err
	}
	start = clampIndex(start, n)
	end := n
	if len(args) > 2 && args[2] != nil {
		end, err = intArg(args[2], "$slice", "end")
		if err != nil {
			return nil, err
		}
		end = clampIndex(end, n)
	}
	if start >= end {
		return nil, nil
	}
	return append([]interface{}(nil), arr[start:end]...), nil
}

func clampIndex(idx, length int) int {
	if idx < 0 {
		idx += length
	}
	if idx < 0 {
		return 0
	}
	if idx > length {
		return length
	}
	return idx
}

// fnFlatten implements $flatten(array [, depth]); without depth (or with a
// negative depth) nesting is removed completely.
func fnFlatten(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	arr, err := toArray(args[0])
	if err != nil {
		return nil, err
	}
	depth := -1
	if len(args) > 1 && args[1] != nil {
		depth, err = intArg(args[1], "$flatten", "depth")
		if err != nil {
			return nil, err
		}
	}
	result := flattenSlice(arr, depth)
	if len(result) == 0 {
		return nil, nil
	}
	return result, nil
}

func flattenSlice(arr []interface{}, depth int) []interface{} {
	var out []interface{}
	for _, item := range arr {
		if inner, ok := item.([]interface{}); ok && depth != 0 {
			next := depth - 1
			if depth < 0 {
				next = depth
			}
			out = append(out, flattenSlice(inner, next)...)
		} else {
			out = append(out, item)
		}
	}
	return out
}

func fnChunk(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	arr, err := toArray(args[0])
	if err != nil {
		return nil, err
	}
	size, err := intArg(args[1], "$chunk", "size")
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, types.NewError(types.ErrArgumentCountMismatch, "the size argument of $chunk must be a positive integer")
	}
	var chunks []interface{}
	for i := 0; i < len(arr); i += size {
		end := i + size
		if end > len(arr) {
			end = len(arr)
		}
		chunks = append(chunks, append([]interface{}(nil), arr[i:end]...))
	}
	if len(chunks) == 0 {
		return nil, nil
	}
	return chunks, nil
}

func fnUnion(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	a1, err := toArray(args[0])
	if err != nil {
		return nil, err
	}
	a2, err := toArray(args[1])
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(a1)+len(a2))
	var result []interface{}
	for _, item := range append(append([]interface{}(nil), a1...), a2...) {
		key := distinctKey(item)
		if !seen[key] {
			seen[key] = true
			result = append(result, item)
		}
	}
	if len(result) == 0 {
		return nil, nil
	}
	return result, nil
}

func fnIntersection(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	a1, err := toArray(args[0])
	if err != nil {
		return nil, err
	}
	a2, err := toArray(args[1])
	if err != nil {
		return nil, err
	}
	inSecond := make(map[string]bool, len(a2))
	for _, item := range a2 {
		inSecond[distinctKey(item)] = true
	}
	seen := make(map[string]bool, len(a1))
	var result []interface{}
	for _, item := range a1 {
		key := distinctKey(item)
		if inSecond[key] && !seen[key] {
			seen[key] = true
			result = append(result, item)
		}
	}
	if len(result) == 0 {
		return nil, nil
	}
	return result, nil
}

// fnDifference keeps the elements of the first array absent from the second.
func fnDifference(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	a1, err := toArray(args[0])
	if err != nil {
		return nil, err
	}
	a2, err := toArray(args[1])
	if err != nil {
		return nil, err
	}
	inSecond := make(map[string]bool, len(a2))
	for _, item := range a2 {
		inSecond[distinctKey(item)] = true
	}
	seen := make(map[string]bool, len(a1))
	var result []interface{}
	for _, item := range a1 {
		key := distinctKey(item)
		if !inSecond[key] && !seen[key] {
			seen[key] = true
			result = append(result, item)
		}
	}
	if len(result) == 0 {
		return nil, nil
	}
	return result, nil
}
