package evaluator

import (
	"context"
	"math"

	"github.com/secondlayerco/jsonata/pkg/types"
)

// evalBinary dispatches a NodeBinary by its operator symbol. Boolean
// operators short-circuit their RHS;
// everything else evaluates both sides first.
func (e *Evaluator) evalBinary(ctx context.Context, node *types.ASTNode, env *Environment, depth int) (interface{}, error) {
	switch node.Value {
	case "and":
		lhs, err := e.evalNode(ctx, node.LHS, env, depth)
		if err != nil {
			return nil, err
		}
		if !isTruthy(lhs) {
			return false, nil
		}
		rhs, err := e.evalNode(ctx, node.RHS, env, depth)
		if err != nil {
			return nil, err
		}
		return isTruthy(rhs), nil

	case "or":
		lhs, err := e.evalNode(ctx, node.LHS, env, depth)
		if err != nil {
			return nil, err
		}
		if isTruthy(lhs) {
			return true, nil
		}
		rhs, err := e.evalNode(ctx, node.RHS, env, depth)
		if err != nil {
			return nil, err
		}
		return isTruthy(rhs), nil

	case "??":
		lhs, err := e.evalNode(ctx, node.LHS, env, depth)
		if err != nil {
			return nil, err
		}
		if lhs != nil {
			if _, isNull := lhs.(types.Null); !isNull {
				return lhs, nil
			}
		}
		return e.evalNode(ctx, node.RHS, env, depth)

	case "?:":
		lhs, err := e.evalNode(ctx, node.LHS, env, depth)
		if err != nil {
			return nil, err
		}
		if lhs != nil {
			return lhs, nil
		}
		return e.evalNode(ctx, node.RHS, env, depth)
	}

	lhs, err := e.evalNode(ctx, node.LHS, env, depth)
	if err != nil {
		return nil, err
	}
	rhs, err := e.evalNode(ctx, node.RHS, env, depth)
	if err != nil {
		return nil, err
	}

	switch node.Value {
	case "+", "-", "*", "/", "%":
		return evalArithmetic(node.Value, lhs, rhs)

	case "&":
		return stringify(unwrapNull(lhs)) + stringify(unwrapNull(rhs)), nil

	case "=":
		// Comparing against an absent value is false for both `=` and
		// `!=`: absence never compares equal, nor unequal.
		if lhs == nil || rhs == nil {
			return false, nil
		}
		return valuesEqual(lhs, rhs), nil

	case "!=":
		if lhs == nil || rhs == nil {
			return false, nil
		}
		return !valuesEqual(lhs, rhs), nil

	case "<", "<=", ">", ">=":
		return evalComparison(node.Value, lhs, rhs)

	case "in":
		return evalIn(lhs, rhs), nil

	default:
		return nil, types.NewError(types.ErrSyntaxError, "unknown binary operator: "+node.Value)
	}
}

func evalArithmetic(op string, lhs, rhs interface{}) (interface{}, error) {
	// A defined-but-non-number operand is a type error even when the other
	// operand is undefined: check types before propagating.
	if lhs != nil {
		if _, err := toNumber(lhs); err != nil {
			return nil, err
		}
	}
	if rhs != nil {
		if _, err := toNumber(rhs); err != nil {
			return nil, err
		}
	}
	if lhs == nil || rhs == nil {
		return nil, nil
	}
	a, err := toNumber(lhs)
	if err != nil {
		return nil, err
	}
	b, err := toNumber(rhs)
	if err != nil {
		return nil, err
	}

	var result float64
	switch op {
	case "+":
		result = a + b
	case "-":
		result = a - b
	case "*":
		result = a * b
	case "/":
		result = a / b
	case "%":
		switch {
		case b == 0:
			// Integer modulo-by-zero panics in Go; route it through the same
			// NaN/Infinity check as every other arithmetic result so it
			// surfaces as D1001 instead of crashing the host process.
			result = math.NaN()
		case a == float64(int64(a)) && b == float64(int64(b)):
			result = float64(int64(a) % int64(b))
		default:
			result = math.Mod(a, b)
		}
	}

	if err := checkFinite(result); err != nil {
		return nil, err
	}
	return result, nil
}

func evalComparison(op string, lhs, rhs interface{}) (interface{}, error) {
	// A defined-but-incomparable operand is a type error even when the
	// other operand is undefined, mirroring evalArithmetic's ordering.
	if lhs != nil {
		if _, err := toComparable(lhs); err != nil {
			return nil, err
		}
	}
	if rhs != nil {
		if _, err := toComparable(rhs); err != nil {
			return nil, err
		}
	}
	if lhs == nil || rhs == nil {
		return nil, nil
	}
	a, b := lhs, rhs
	if _, aIsStr := a.(string); aIsStr {
		if _, bIsStr := b.(string); !bIsStr {
			return nil, types.NewError(types.ErrCompareMixedTypes, "cannot compare string to number")
		}
	} else if _, bIsStr := b.(string); bIsStr {
		return nil, types.NewError(types.ErrCompareMixedTypes, "cannot compare number to string")
	}

	cmp := compareValues(a, b)
	switch op {
	case "<":
		return cmp < 0, nil
	case "<=":
		return cmp <= 0, nil
	case ">":
		return cmp > 0, nil
	case ">=":
		return cmp >= 0, nil
	}
	return nil, types.NewError(types.ErrSyntaxError, "unknown comparison operator: "+op)
}

func evalIn(lhs, rhs interface{}) bool {
	if lhs == nil {
		return false
	}
	items := itemsOf(rhs)
	for _, item := range items {
		if valuesEqual(lhs, item) {
			return true
		}
	}
	return false
}
