package evaluator

import (
	"fmt"
	"math"

	"github.com/secondlayerco/jsonata/pkg/types"
)

// isTruthy implements the boolean coercion conditionals and filter
// predicates use: undefined and null are false; numbers are false iff
// zero; strings, arrays, and objects are false iff empty.
func isTruthy(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case types.Null:
		return false
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		return val != ""
	case []interface{}:
		return len(val) != 0
	case *types.OrderedObject:
		return val.Len() > 0
	case map[string]interface{}:
		return len(val) > 0
	case *types.Sequence:
		return isTruthy(val.Normalize())
	default:
		return true
	}
}

// compareValues orders two scalar values of the same type, per the sort
// operator's contract. Callers must have already
// validated both values are strings or both numbers.
func compareValues(a, b interface{}) int {
	switch av := a.(type) {
	case float64:
		bv := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case string:
		bv := b.(string)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	default:
		return 0
	}
}

// valuesEqual implements JSONata's `=` operator: deep structural equality
// over scalars, arrays and objects, with number comparison tolerant of the
// usual float semantics.
func valuesEqual(a, b interface{}) bool {
	a = unwrapNull(a)
	b = unwrapNull(b)

	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}

	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case []interface{}:
		bv, ok := b.([]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *types.OrderedObject, map[string]interface{}:
		// Objects compare by key set and member values, not representation:
		// a constructed *types.OrderedObject and a host-supplied plain map
		// holding the same members are equal.
		aKeys, aVals, _ := objectKeysValues(a)
		bKeys, bVals, ok := objectKeysValues(b)
		if !ok || len(aKeys) != len(bKeys) {
			return false
		}
		for _, k := range aKeys {
			bv, exists := bVals[k]
			if !exists || !valuesEqual(aVals[k], bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func unwrapNull(v interface{}) interface{} {
	if _, ok := v.(types.Null); ok {
		return nil
	}
	return v
}

// toNumber coerces v to a float64 for arithmetic, raising T2001 on
// anything that isn't already numeric.
func toNumber(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	default:
		return 0, types.NewError(types.ErrArithmeticNonNumber, fmt.Sprintf("the value %v is not a number", v))
	}
}

func checkFinite(f float64) error {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return types.NewError(types.ErrNumberNonFinite, "number out of range")
	}
	return nil
}

// toComparable coerces v for `<`/`>`/`<=`/`>=`, requiring a number or
// string (T2010); evalComparison checks that both sides match (T2009).
func toComparable(v interface{}) (interface{}, error) {
	switch v.(type) {
	case float64, string:
		return v, nil
	default:
		return nil, types.NewError(types.ErrCompareBadType, "comparison operands must be numbers or strings")
	}
}
