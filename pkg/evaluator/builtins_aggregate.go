package evaluator

import (
	"context"

	"github.com/secondlayerco/jsonata/pkg/types"
)

// Aggregation builtins ($sum/$count/$average/$min/$max): undefined input
// is treated as an empty array rather than an error, and every element
// must already be numeric (T0412) — JSONata does not coerce strings here.

func numericItems(v interface{}) ([]float64, error) {
	items, err := toArray(v)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(items))
	for _, item := range items {
		n, ok := item.(float64)
		if !ok {
			return nil, types.NewError(types.ErrArrayElementNotNumber, "the array must contain only numbers")
		}
		out = append(out, n)
	}
	return out, nil
}

// fnSum returns Undefined for an undefined or empty-array argument, not
// zero — a caller distinguishing "no
// items" from "items summing to zero" needs that signal preserved.
func fnSum(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	nums, err := numericItems(args[0])
	if err != nil {
		return nil, err
	}
	if len(nums) == 0 {
		return nil, nil
	}
	var total float64
	for _, n := range nums {
		total += n
	}
	return total, nil
}

func fnCount(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return float64(0), nil
	}
	items, err := toArray(args[0])
	if err != nil {
		return nil, err
	}
	return float64(len(items)), nil
}

func fnAverage(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	nums, err := numericItems(args[0])
	if err != nil {
		return nil, err
	}
	if len(nums) == 0 {
		return nil, nil
	}
	var total float64
	for _, n := range nums {
		total += n
	}
	return total / float64(len(nums)), nil
}

func fnMin(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	nums, err := numericItems(args[0])
	if err != nil {
		return nil, err
	}
	if len(nums) == 0 {
		return nil, nil
	}
	m := nums[0]
	for _, n := range nums[1:] {
		if n < m {
			m = n
		}
	}
	return m, nil
}

func fnMax(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	nums, err := numericItems(args[0])
	if err != nil {
		return nil, err
	}
	if len(nums) == 0 {
		return nil, nil
	}
	m := nums[0]
	for _, n := range nums[1:] {
		if n > m {
			m = n
		}
	}
	return m, nil
}
