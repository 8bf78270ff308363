package evaluator

import (
	"context"

	"github.com/secondlayerco/jsonata/pkg/types"
)

// evalObject builds an object literal:
// LHS is always nil for a plain `{k:v, ...}` constructor node (the parser
// only sets LHS when it rewrites the node to NodeGroupBy for `expr{k:v}`).
func (e *Evaluator) evalObject(ctx context.Context, node *types.ASTNode, env *Environment, depth int) (interface{}, error) {
	result := types.NewOrderedObject()

	for _, pair := range node.Expressions {
		keys, err := e.evalObjectKeys(ctx, pair.LHS, env, depth)
		if err != nil {
			return nil, err
		}
		if len(keys) == 0 {
			continue
		}

		val, err := e.evalNode(ctx, pair.RHS, env, depth)
		if err != nil {
			return nil, err
		}
		if val == nil {
			continue
		}

		for _, key := range keys {
			if _, exists := result.Get(key); exists {
				return nil, types.NewError(types.ErrDuplicateKey, "duplicate object key: "+key)
			}
			result.Set(key, val)
		}
	}

	return result, nil
}

// evalGroupBy implements `expr{k:v, ...}` object-grouping aggregation:
// each item of expr's result contributes to whichever
// key(s) its key-expression evaluates to, and the value expression for a
// key is evaluated once against the group of items sharing that key (a
// single item's own context if the group has exactly one member, or the
// group as an array context otherwise).
func (e *Evaluator) evalGroupBy(ctx context.Context, node *types.ASTNode, env *Environment, depth int) (interface{}, error) {
	tuples, err := e.evalStep(ctx, node.LHS, env, depth)
	if err != nil {
		return nil, err
	}
	tuples = expandTuples(tuples)
	if len(tuples) == 0 {
		return types.NewOrderedObject(), nil
	}

	groups := make(map[string][]int)
	pairForKey := make(map[string]int)
	var keyOrder []string

	for pairIdx, pair := range node.Expressions {
		for itemIdx, t := range tuples {
			itemEnv := t.env.Child(t.value)
			itemEnv.Bind(parentLabel(depth), env.Input())
			keys, err := e.evalObjectKeys(ctx, pair.LHS, itemEnv, depth+1)
			if err != nil {
				return nil, err
			}
			for _, key := range keys {
				if existing, ok := pairForKey[key]; ok && existing != pairIdx {
					return nil, types.NewError(types.ErrDuplicateKey, "duplicate object key: "+key)
				}
				if _, seen := groups[key]; !seen {
					keyOrder = append(keyOrder, key)
				}
				pairForKey[key] = pairIdx
				groups[key] = append(groups[key], itemIdx)
			}
		}
	}

	result := types.NewOrderedObject()
	for _, key := range keyOrder {
		indices := groups[key]
		pair := node.Expressions[pairForKey[key]]

		var value interface{}
		var err error
		if len(indices) == 1 {
			t := tuples[indices[0]]
			groupEnv := t.env.Child(t.value)
			groupEnv.Bind(parentLabel(depth), env.Input())
			value, err = e.evalNode(ctx, pair.RHS, groupEnv, depth+1)
		} else {
			groupItems := make([]interface{}, len(indices))
			for i, idx := range indices {
				groupItems[i] = tuples[idx].value
			}
			groupEnv := env.Child(groupItems)
			value, err = e.evalNode(ctx, pair.RHS, groupEnv, depth+1)
		}
		if err != nil {
			return nil, err
		}
		if value != nil {
			result.Set(key, value)
		}
	}

	return result, nil
}

// evalObjectKeys evaluates an object-pair's key expression. A bare string
// literal key is used verbatim; anything else is evaluated as an
// expression, which must yield a string or array of strings (T1003) — a
// nil result omits the pair entirely rather than erroring.
func (e *Evaluator) evalObjectKeys(ctx context.Context, keyNode *types.ASTNode, env *Environment, depth int) ([]string, error) {
	if keyNode.Type == types.NodeString {
		return []string{keyNode.StrValue}, nil
	}

	keyVal, err := e.evalNode(ctx, keyNode, env, depth)
	if err != nil {
		return nil, err
	}
	if keyVal == nil {
		return nil, nil
	}
	if _, ok := keyVal.(types.Null); ok {
		return nil, types.NewError(types.ErrNonStringKey, "object key must be a string")
	}

	switch v := keyVal.(type) {
	case string:
		return []string{v}, nil
	case []interface{}:
		keys := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			s, ok := item.(string)
			if !ok {
				return nil, types.NewError(types.ErrNonStringKey, "object key must be a string")
			}
			keys = append(keys, s)
		}
		return keys, nil
	default:
		return nil, types.NewError(types.ErrNonStringKey, "object key must be a string")
	}
}
