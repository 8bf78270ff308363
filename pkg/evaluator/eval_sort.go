package evaluator

import (
	"context"
	"sort"

	"github.com/secondlayerco/jsonata/pkg/types"
)

// evalSort implements `LHS^(term, ...)`, the sort step: each
// term is evaluated per-item to produce a sort key, keys within a single
// term must share one comparable type across all items (nil keys exempt
// and sort last), and items compare lexicographically across terms in
// declaration order, `<`/`>` selecting ascending/descending per term.
func (e *Evaluator) evalSort(ctx context.Context, node *types.ASTNode, env *Environment, depth int) (interface{}, error) {
	tuples, err := e.evalStep(ctx, node.LHS, env, depth)
	if err != nil {
		return nil, err
	}
	tuples = expandTuples(tuples)
	if len(tuples) == 0 {
		return nil, nil
	}

	type sortSpec struct {
		expr      *types.ASTNode
		ascending bool
	}
	var specs []sortSpec
	for _, term := range node.Expressions {
		spec := sortSpec{expr: term, ascending: true}
		if term.Type == types.NodeUnary && term.Value == ">" {
			spec.ascending = false
			spec.expr = term.LHS
		} else if term.Type == types.NodeUnary && term.Value == "<" {
			spec.expr = term.LHS
		}
		specs = append(specs, spec)
	}
	if len(specs) == 0 {
		result := make([]interface{}, len(tuples))
		for i, t := range tuples {
			result[i] = t.value
		}
		return result, nil
	}

	type itemKeys struct {
		value interface{}
		keys  []interface{}
	}
	data := make([]itemKeys, len(tuples))
	for i, t := range tuples {
		childEnv := t.env.Child(t.value)
		childEnv.Bind(parentLabel(depth), env.Input())
		keys := make([]interface{}, len(specs))
		for si, spec := range specs {
			key, err := e.evalNode(ctx, spec.expr, childEnv, depth+1)
			if err != nil {
				return nil, err
			}
			keys[si] = key
		}
		data[i] = itemKeys{value: t.value, keys: keys}
	}

	for si := range specs {
		var firstType string
		for _, d := range data {
			key := d.keys[si]
			if key == nil {
				continue
			}
			var keyType string
			switch key.(type) {
			case float64:
				keyType = "number"
			case string:
				keyType = "string"
			default:
				return nil, types.NewError(types.ErrSortKeyBadType, "the sort key must be a string or number")
			}
			if firstType == "" {
				firstType = keyType
			} else if firstType != keyType {
				return nil, types.NewError(types.ErrSortKeyStringMismatch, "sort keys must all be of the same type")
			}
		}
	}

	sort.SliceStable(data, func(i, j int) bool {
		for si, spec := range specs {
			ki, kj := data[i].keys[si], data[j].keys[si]
			if ki == nil && kj == nil {
				continue
			}
			if ki == nil {
				return false
			}
			if kj == nil {
				return true
			}
			cmp := compareValues(ki, kj)
			if cmp == 0 {
				continue
			}
			if spec.ascending {
				return cmp < 0
			}
			return cmp > 0
		}
		return false
	})

	result := make([]interface{}, len(data))
	for i, d := range data {
		result[i] = d.value
	}
	if len(result) == 1 {
		return result[0], nil
	}
	return result, nil
}
