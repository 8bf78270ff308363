package evaluator

import (
	"context"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"github.com/secondlayerco/jsonata/pkg/types"
)

// Array and higher-order builtins: $map/$filter/$reduce/$single
// re-enter evaluation via callCallable, trimming the (value, index,
// array)/(accumulator, value, index, array) tuple to however many
// parameters the callable actually declares, since JSONata lambdas are
// free to ignore trailing arguments.

func fnMap(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	arr, err := toArray(args[0])
	if err != nil {
		return nil, err
	}
	if args[1] == nil {
		return nil, types.NewError(types.ErrNotCallable, "second argument to $map must be a function")
	}

	result := make([]interface{}, 0, len(arr))
	for i, item := range arr {
		hofArgs := trimArgs([]interface{}{item, float64(i), arr}, callableArity(args[1]))
		value, err := e.callCallable(ctx, args[1], env, hofArgs)
		if err != nil {
			return nil, err
		}
		if value != nil {
			result = append(result, value)
		}
	}
	if len(result) == 0 {
		return nil, nil
	}
	if len(result) == 1 {
		return result[0], nil
	}
	return result, nil
}

func fnFilter(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	arr, err := toArray(args[0])
	if err != nil {
		return nil, err
	}
	if args[1] == nil {
		return nil, types.NewError(types.ErrNotCallable, "second argument to $filter must be a function")
	}

	var result []interface{}
	for i, item := range arr {
		hofArgs := trimArgs([]interface{}{item, float64(i), arr}, callableArity(args[1]))
		value, err := e.callCallable(ctx, args[1], env, hofArgs)
		if err != nil {
			return nil, err
		}
		if isTruthy(value) {
			result = append(result, item)
		}
	}
	if len(result) == 0 {
		return nil, nil
	}
	if len(result) == 1 {
		return result[0], nil
	}
	return result, nil
}

func fnReduce(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		if len(args) >= 3 {
			return args[2], nil
		}
		return nil, nil
	}
	arr, err := toArray(args[0])
	if err != nil {
		return nil, err
	}
	if args[1] == nil {
		return nil, types.NewError(types.ErrNotCallable, "second argument to $reduce must be a function")
	}

	switch f := args[1].(type) {
	case *Lambda:
		if len(f.Params) < 2 {
			return nil, types.NewError(types.ErrReduceInsufficientArgs, "the second argument of reduce must be a function with at least two arguments")
		}
	case *FunctionDef:
		if f.MinArgs < 2 {
			return nil, types.NewError(types.ErrReduceInsufficientArgs, "the second argument of reduce must be a function with at least two arguments")
		}
	}

	if len(arr) == 0 {
		if len(args) >= 3 {
			return args[2], nil
		}
		return nil, nil
	}

	var accumulator interface{}
	startIdx := 0
	if len(args) >= 3 && args[2] != nil {
		accumulator = args[2]
	} else {
		accumulator = arr[0]
		startIdx = 1
	}

	for i := startIdx; i < len(arr); i++ {
		hofArgs := trimArgs([]interface{}{accumulator, arr[i], float64(i), arr}, callableArity(args[1]))
		value, err := e.callCallable(ctx, args[1], env, hofArgs)
		if err != nil {
			return nil, err
		}
		accumulator = value
	}
	return accumulator, nil
}

func fnSingle(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	arr, err := toArray(args[0])
	if err != nil {
		return nil, err
	}

	var fn interface{}
	if len(args) >= 2 {
		fn = args[1]
	}

	found := false
	var result interface{}
	for i, item := range arr {
		match := true
		if fn != nil {
			hofArgs := trimArgs([]interface{}{item, float64(i), arr}, callableArity(fn))
			value, err := e.callCallable(ctx, fn, env, hofArgs)
			if err != nil {
				return nil, err
			}
			match = isTruthy(value)
		}
		if !match {
			continue
		}
		if found {
			return nil, types.NewError(types.ErrSingleMultipleMatches, "the $single() function expected exactly 1 matching result, got more than one")
		}
		result = item
		found = true
	}
	if !found {
		return nil, types.NewError(types.ErrSingleNoMatch, "the $single() function expected exactly 1 matching result, got none")
	}
	return result, nil
}

// fnSort implements the default same-type comparator (T2007 on a
// number/string mix, T2008 on other types) as well as the two-argument custom comparator form, where
// `fn($a, $b)` returning true means "$a belongs after $b".
func fnSort(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
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

	result := make([]interface{}, len(arr))
	copy(result, arr)

	if len(args) < 2 || args[1] == nil {
		var sortErr error
		sort.SliceStable(result, func(i, j int) bool {
			if sortErr != nil {
				return false
			}
			ni, iNum := result[i].(float64)
			nj, jNum := result[j].(float64)
			si, iStr := result[i].(string)
			sj, jStr := result[j].(string)
			switch {
			case iNum && jNum:
				return ni < nj
			case iStr && jStr:
				return si < sj
			case (iNum || iStr) && (jNum || jStr):
				sortErr = types.NewError(types.ErrSortKeyStringMismatch, "$sort: array elements must all be of the same type")
				return false
			default:
				sortErr = types.NewError(types.ErrSortKeyBadType, "$sort: array elements must be strings or numbers")
				return false
			}
		})
		if sortErr != nil {
			return nil, sortErr
		}
		return result, nil
	}

	var sortErr error
	compare := func(a, b interface{}) (bool, error) {
		hofArgs := trimArgs([]interface{}{a, b}, callableArity(args[1]))
		value, err := e.callCallable(ctx, args[1], env, hofArgs)
		if err != nil {
			return false, err
		}
		return isTruthy(value), nil
	}
	sort.SliceStable(result, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		after, err := compare(result[i], result[j])
		if err != nil {
			sortErr = err
			return false
		}
		if after {
			return false
		}
		before, err := compare(result[j], result[i])
		if err != nil {
			sortErr = err
			return false
		}
		return before
	})
	if sortErr != nil {
		return nil, sortErr
	}
	return result, nil
}

func fnAppend(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[1] == nil {
		return args[0], nil
	}
	arr1, err := toArray(args[0])
	if err != nil {
		return nil, err
	}
	arr2, err := toArray(args[1])
	if err != nil {
		return nil, err
	}
	result := make([]interface{}, 0, len(arr1)+len(arr2))
	result = append(result, arr1...)
	result = append(result, arr2...)
	return result, nil
}

func fnReverse(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	arr, err := toArray(args[0])
	if err != nil {
		return nil, err
	}
	result := make([]interface{}, len(arr))
	for i := range arr {
		result[i] = arr[len(arr)-1-i]
	}
	return result, nil
}

func fnShuffle(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	arr, err := toArray(args[0])
	if err != nil {
		return nil, err
	}
	result := make([]interface{}, len(arr))
	copy(result, arr)
	rand.Shuffle(len(result), func(i, j int) { result[i], result[j] = result[j], result[i] })
	return result, nil
}

func fnZip(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if len(args) == 0 {
		return []interface{}{}, nil
	}
	for _, a := range args {
		if a == nil {
			return []interface{}{}, nil
		}
	}
	arrays := make([][]interface{}, len(args))
	minLen := -1
	for i, a := range args {
		arr, err := toArray(a)
		if err != nil {
			return nil, err
		}
		arrays[i] = arr
		if minLen == -1 || len(arr) < minLen {
			minLen = len(arr)
		}
	}
	if minLen <= 0 {
		return []interface{}{}, nil
	}
	result := make([]interface{}, minLen)
	for i := 0; i < minLen; i++ {
		tuple := make([]interface{}, len(arrays))
		for j, arr := range arrays {
			tuple[j] = arr[i]
		}
		result[i] = tuple
	}
	return result, nil
}

// distinctKey produces a canonical string for equality comparison in
// $distinct, sorting object keys so insertion order doesn't affect
// whether two structurally-equal objects are treated as duplicates.
func distinctKey(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "u"
	case types.Null:
		return "n"
	case bool:
		if val {
			return "bt"
		}
		return "bf"
	case float64:
		return "f" + strconv.FormatFloat(val, 'g', -1, 64)
	case string:
		return "s" + val
	case *types.OrderedObject:
		keys := make([]string, len(val.Keys))
		copy(keys, val.Keys)
		sort.Strings(keys)
		var b strings.Builder
		b.WriteString("o{")
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(k))
			b.WriteByte(':')
			b.WriteString(distinctKey(val.Values[k]))
		}
		b.WriteByte('}')
		return b.String()
	case map[string]interface{}:
		return distinctKey(&types.OrderedObject{Keys: sortedKeys(val), Values: val})
	case []interface{}:
		var b strings.Builder
		b.WriteString("a[")
		for i, item := range val {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(distinctKey(item))
		}
		b.WriteByte(']')
		return b.String()
	default:
		return "?"
	}
}

func fnDistinct(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	arr, err := toArray(args[0])
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(arr))
	var result []interface{}
	for _, item := range arr {
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
