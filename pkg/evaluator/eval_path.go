package evaluator

import (
	"context"
	"fmt"

	"github.com/secondlayerco/jsonata/pkg/types"
)

// itemsOf normalizes any evaluated value into the slice of items a path
// step should iterate: undefined iterates zero times, an existing array
// iterates its elements, anything else iterates as a single-element
// sequence (the flattening rule applied at step entry).
func itemsOf(v interface{}) []interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case []interface{}:
		return val
	case *types.Sequence:
		return val.ToSlice()
	default:
		return []interface{}{val}
	}
}

func parentLabel(depth int) string {
	return fmt.Sprintf("$$parent%d", depth)
}

// pathTuple is the {value, context, environment} tuple threaded through
// a path chain: value is what the next step navigates
// from, context is what a `%` one level up resolves to, and env carries
// every `@`/`#` binding introduced so far by this chain.
type pathTuple struct {
	value   interface{}
	context interface{}
	env     *Environment
}

// flattenPathSteps unrolls the left-leaning NodePath chain the parser
// builds for `a.b.c.d` (nested LHS/RHS pairs) into its ordered step list
// [a, b, c, d]. Any non-NodePath node — a name, a filter, a descendant
// step, a focus/index bind — is an atomic step in that list.
func flattenPathSteps(node *types.ASTNode) []*types.ASTNode {
	var steps []*types.ASTNode
	for node.Type == types.NodePath {
		steps = append([]*types.ASTNode{node.RHS}, steps...)
		node = node.LHS
	}
	return append([]*types.ASTNode{node}, steps...)
}

// evalPath implements the `.` operator over a whole flattened step chain
// at once, not one recursive call per dot: evaluating
// every step against its own fresh environment, rooted in the outer
// scope, loses any `@`/`#` binding an earlier step made the moment that
// step's own recursive call returns. Threading a pathTuple per result
// through evalStep keeps each step's environment — and anything it
// bound — reachable from every later step in the same chain.
func (e *Evaluator) evalPath(ctx context.Context, node *types.ASTNode, env *Environment, depth int) (interface{}, error) {
	steps := flattenPathSteps(node)

	cur, err := e.evalStep(ctx, steps[0], env, depth)
	if err != nil {
		return nil, err
	}

	for _, step := range steps[1:] {
		var next []pathTuple
		for _, t := range cur {
			for _, item := range itemsOf(t.value) {
				stepEnv := t.env.Child(item)
				// Bind the preceding tuple's saved context — the input its
				// step navigated from — so `%` in this step reaches the
				// parent of the items being iterated. A focus step records
				// the same level without descending ("focus keeps
				// context, not value"); an index bind advances it to the
				// item, per its tuple rule.
				stepEnv.Bind(parentLabel(depth), t.context)

				results, err := e.evalStep(ctx, step, stepEnv, depth+1)
				if err != nil {
					return nil, err
				}
				next = append(next, results...)
			}
		}
		cur = next
		if len(cur) == 0 {
			break
		}
	}

	out := types.NewSequence()
	out.KeepSingleton = node.KeepArray
	splice := !isArrayConstructorStep(steps[len(steps)-1])
	for _, t := range cur {
		// An array produced by the final step is projection output and is
		// spliced into the result sequence; only a literal array constructor
		// keeps its array as a single value.
		if arr, ok := t.value.([]interface{}); ok && splice {
			for _, item := range arr {
				out.Append(item)
			}
			continue
		}
		out.Append(t.value)
	}
	return out.Normalize(), nil
}

// isArrayConstructorStep reports whether step is a literal array
// constructor, possibly wrapped in grouping parentheses — the one step kind
// whose array result must not be spliced into the path's output sequence.
func isArrayConstructorStep(step *types.ASTNode) bool {
	for step != nil {
		switch step.Type {
		case types.NodeParens:
			step = step.LHS
		case types.NodeArray:
			return true
		default:
			return false
		}
	}
	return false
}

// evalStep evaluates one path step against stepEnv, the environment the
// preceding step in the chain left behind. Focus (`@$v`) and index bind
// (`#$v`) steps iterate their own target and bind their variable into a
// fresh per-item environment, so it stays visible to every later step in
// the chain; any other step kind just evaluates once and hands its raw
// (still unflattened) result on — flattening into per-item tuples happens
// lazily, at the top of the next step, mirroring how plain navigation
// iterates an array value one step at a time.
func (e *Evaluator) evalStep(ctx context.Context, step *types.ASTNode, stepEnv *Environment, depth int) ([]pathTuple, error) {
	switch step.Type {
	case types.NodeFocus:
		val, err := e.evalNode(ctx, step.LHS, stepEnv, depth)
		if err != nil {
			return nil, err
		}
		var out []pathTuple
		for _, item := range itemsOf(val) {
			itemEnv := stepEnv.Child(item)
			itemEnv.Bind(step.Value, item)
			out = append(out, pathTuple{value: item, context: stepEnv.Input(), env: itemEnv})
		}
		return out, nil

	case types.NodeIndexBind:
		val, err := e.evalNode(ctx, step.LHS, stepEnv, depth)
		if err != nil {
			return nil, err
		}
		var out []pathTuple
		for i, item := range itemsOf(val) {
			itemEnv := stepEnv.Child(item)
			itemEnv.Bind(step.Value, float64(i))
			out = append(out, pathTuple{value: item, context: item, env: itemEnv})
		}
		return out, nil

	default:
		val, err := e.evalNode(ctx, step, stepEnv, depth)
		if err != nil {
			return nil, err
		}
		// context is the input this step navigated from, not its result: a
		// `%` evaluated one step later must resolve to the parent of the
		// items this step produced. A focus step records the same level
		// (its target's navigation context); only an index bind advances
		// context to the item itself.
		return []pathTuple{{value: val, context: stepEnv.Input(), env: stepEnv}}, nil
	}
}

// expandTuples flattens each tuple's value into its constituent items
// (the same rule itemsOf applies at step entry), carrying that tuple's own
// environment forward onto every item it expands into. Focus/IndexBind
// steps already return one tuple per item, so this is a no-op for them;
// for a plain step it turns the single tuple holding a whole array/sequence
// into the per-item tuples that filter/sort/descendant need to operate on.
func expandTuples(tuples []pathTuple) []pathTuple {
	var out []pathTuple
	for _, t := range tuples {
		for _, item := range itemsOf(t.value) {
			out = append(out, pathTuple{value: item, context: t.context, env: t.env})
		}
	}
	return out
}

// evalFilter implements the `[...]` predicate/index step.
// A nil RHS (the bare `expr[]` form) just forces array-shaped output of
// LHS without filtering. A numeric predicate result selects the item at
// that (possibly negative, from-the-end) index; any other truthy result
// keeps the item.
//
// LHS is evaluated via evalStep, not a plain evalNode call, so a focus or
// index bind used directly as the filter's target (`items#$i[$i=1]`, whose
// top node is NodeFilter rather than NodePath) still binds its variable
// per item instead of once over the whole result.
func (e *Evaluator) evalFilter(ctx context.Context, node *types.ASTNode, env *Environment, depth int) (interface{}, error) {
	tuples, err := e.evalStep(ctx, node.LHS, env, depth)
	if err != nil {
		return nil, err
	}
	tuples = expandTuples(tuples)

	if node.RHS == nil {
		items := make([]interface{}, len(tuples))
		for i, t := range tuples {
			items[i] = t.value
		}
		seq := &types.Sequence{Items: items, KeepSingleton: true}
		return seq.Normalize(), nil
	}

	var kept []interface{}
	for i, t := range tuples {
		childEnv := t.env.Child(t.value)
		// `%` inside the predicate resolves to the context the filter's
		// target was navigated from, not the item under test.
		childEnv.Bind(parentLabel(depth), env.Input())

		predVal, err := e.evalNode(ctx, node.RHS, childEnv, depth+1)
		if err != nil {
			return nil, err
		}

		switch pv := predVal.(type) {
		case float64:
			idx := int(pv)
			if idx < 0 {
				idx += len(tuples)
			}
			if idx == i {
				kept = append(kept, t.value)
			}
		default:
			if isTruthy(predVal) {
				kept = append(kept, t.value)
			}
		}
	}

	seq := &types.Sequence{Items: kept, KeepSingleton: node.KeepArray}
	return seq.Normalize(), nil
}

// evalDescendant implements `**`/`LHS**RHS`, the descendant operator:
// gather every value reachable at any depth under each item of
// LHS (including the items themselves), then — if RHS is present —
// navigate RHS against each gathered value, flattening the results.
//
// LHS is evaluated via evalStep, not a plain evalNode call, so a focus or
// index bind used directly as the descent's target still binds its
// variable per item rather than once over the whole result.
func (e *Evaluator) evalDescendant(ctx context.Context, node *types.ASTNode, env *Environment, depth int) (interface{}, error) {
	tuples, err := e.evalStep(ctx, node.LHS, env, depth)
	if err != nil {
		return nil, err
	}

	type descendant struct {
		value interface{}
		env   *Environment
	}
	var all []descendant
	for _, t := range tuples {
		for _, root := range itemsOf(t.value) {
			var gathered []interface{}
			collectDescendants(root, &gathered)
			for _, v := range gathered {
				all = append(all, descendant{value: v, env: t.env})
			}
		}
	}

	if node.RHS == nil {
		items := make([]interface{}, len(all))
		for i, d := range all {
			items[i] = d.value
		}
		seq := &types.Sequence{Items: items, KeepSingleton: node.KeepArray}
		return seq.Normalize(), nil
	}

	out := types.NewSequence()
	out.KeepSingleton = node.KeepArray
	for _, d := range all {
		childEnv := d.env.Child(d.value)
		childEnv.Bind(parentLabel(depth), d.value)

		val, err := e.evalNode(ctx, node.RHS, childEnv, depth+1)
		if err != nil {
			return nil, err
		}
		out.Append(val)
	}

	return out.Normalize(), nil
}

// collectDescendants gathers every value reachable under value, value
// itself included, in document order. Arrays are carriers, not values:
// their elements are recursed into but the array itself is never emitted.
func collectDescendants(value interface{}, out *[]interface{}) {
	switch v := value.(type) {
	case []interface{}:
		for _, item := range v {
			collectDescendants(item, out)
		}
	case *types.OrderedObject:
		*out = append(*out, v)
		for _, k := range v.Keys {
			collectDescendants(v.Values[k], out)
		}
	case map[string]interface{}:
		*out = append(*out, v)
		for _, k := range sortedKeys(v) {
			collectDescendants(v[k], out)
		}
	default:
		*out = append(*out, v)
	}
}
