package evaluator

import (
	"context"
	"fmt"
	"regexp"
	"sort"

	"github.com/secondlayerco/jsonata/pkg/types"
)

// evalNode is the central dispatch for every AST node kind. depth mirrors
// the structural nesting pkg/ancestry used when resolving `%` references
// (see that package's doc comment) so that NodeParent lookups hit the
// binding the matching NodePath/NodeFilter/NodeSort/NodeGroupBy step
// established in env.
func (e *Evaluator) evalNode(ctx context.Context, node *types.ASTNode, env *Environment, depth int) (interface{}, error) {
	if node == nil {
		return nil, nil
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	leave, err := e.enterDepth(ctx)
	if err != nil {
		return nil, err
	}
	defer leave()

	// The TCO tail marker survives only through the node kinds that can sit
	// between a lambda body and the tail call itself (grouping, blocks,
	// conditional branches, the call node); any other operator consumes its
	// children as plain values, so a thunk must never surface there.
	switch node.Type {
	case types.NodeParens, types.NodeBlock, types.NodeCondition, types.NodeFunctionCall:
	default:
		if isTCOTail(ctx) {
			ctx = withoutTCOTail(ctx)
		}
	}

	switch node.Type {
	case types.NodeNull:
		return types.NullValue, nil
	case types.NodeBoolean:
		return node.Value == "true", nil
	case types.NodeNumber:
		if err := checkFinite(node.NumValue); err != nil {
			return nil, err
		}
		return node.NumValue, nil
	case types.NodeString:
		return node.StrValue, nil
	case types.NodeRegex:
		re, err := regexp.Compile(node.Value)
		if err != nil {
			return nil, types.NewError(types.ErrEmptyRegex, "invalid regular expression: "+err.Error())
		}
		return re, nil

	case types.NodeName:
		return navigateName(env.Input(), node.Value), nil

	case types.NodeVariable:
		if node.Value == "" {
			return env.Input(), nil
		}
		if node.Value == "$" {
			return env.RootInput(), nil
		}
		v, _ := env.Lookup(node.Value)
		return v, nil

	case types.NodeParent:
		if node.Parent == nil {
			return nil, types.NewError(types.ErrParentNotResolved, "'%' was not resolved (ancestry pass did not run)")
		}
		v, _ := env.Lookup(node.Parent.Label)
		return v, nil

	case types.NodeFocus:
		// Reached only when `@$v` stands alone with no further path step
		// after it; evalPath/evalStep handles the normal in-chain case,
		// binding the variable per item rather than once to the whole value.
		val, err := e.evalNode(ctx, node.LHS, env, depth)
		if err != nil {
			return nil, err
		}
		env.Bind(node.Value, val)
		return val, nil

	case types.NodeIndexBind:
		// Reached only when `#$v` stands alone with no further path step
		// after it (evalPath/evalStep handles the normal in-chain case and
		// binds the real per-item index); there is no iteration to index
		// into here, so the variable is bound to 0.
		val, err := e.evalNode(ctx, node.LHS, env, depth)
		if err != nil {
			return nil, err
		}
		env.Bind(node.Value, float64(0))
		return val, nil

	case types.NodeWildcard:
		return evalWildcard(env.Input()), nil

	case types.NodePath:
		return e.evalPath(ctx, node, env, depth)

	case types.NodeDescendant:
		return e.evalDescendant(ctx, node, env, depth)

	case types.NodeFilter:
		return e.evalFilter(ctx, node, env, depth)

	case types.NodeSort:
		return e.evalSort(ctx, node, env, depth)

	case types.NodeGroupBy:
		return e.evalGroupBy(ctx, node, env, depth)

	case types.NodeArray:
		return e.evalArray(ctx, node, env, depth)

	case types.NodeObject:
		return e.evalObject(ctx, node, env, depth)

	case types.NodeBlock:
		return e.evalBlock(ctx, node, env, depth)

	case types.NodeParens:
		return e.evalNode(ctx, node.LHS, env, depth)

	case types.NodeUnary:
		return e.evalUnary(ctx, node, env, depth)

	case types.NodeBinary:
		return e.evalBinary(ctx, node, env, depth)

	case types.NodeRange:
		return e.evalRange(ctx, node, env, depth)

	case types.NodeCondition:
		return e.evalCondition(ctx, node, env, depth)

	case types.NodeAssignment:
		val, err := e.evalNode(ctx, node.RHS, env, depth)
		if err != nil {
			return nil, err
		}
		env.Bind(node.Value, val)
		return val, nil

	case types.NodeLambda:
		return e.makeLambda(node, env), nil

	case types.NodeFunctionCall:
		return e.evalFunctionCall(ctx, node, env, depth)

	case types.NodeChain:
		return e.evalChain(ctx, node, env, depth)

	case types.NodeTransform:
		return nil, types.NewError(types.ErrTransformUnsupported, "the transform operator is not evaluated by this interpreter")

	case types.NodePlaceholder:
		return nil, types.NewError(types.ErrSyntaxError, "'?' may only appear in a partial function application")

	default:
		return nil, types.NewError(types.ErrSyntaxError, fmt.Sprintf("unsupported node type %v", node.Type))
	}
}

// navigateName implements single-step field navigation used both for bare
// NodeName evaluation and as the RHS of a NodePath step: objects yield the
// named member (undefined if absent), arrays yield the flattened,
// per-element navigation result, and any other value yields undefined.
func navigateName(value interface{}, name string) interface{} {
	switch v := value.(type) {
	case *types.OrderedObject:
		if val, ok := v.Get(name); ok {
			return val
		}
		return nil
	case map[string]interface{}:
		if val, ok := v[name]; ok {
			return val
		}
		return nil
	case []interface{}:
		seq := types.NewSequence()
		for _, item := range v {
			seq.Append(navigateName(item, name))
		}
		return seq.Normalize()
	default:
		return nil
	}
}

func evalWildcard(value interface{}) interface{} {
	seq := types.NewSequence()
	switch v := value.(type) {
	case *types.OrderedObject:
		for _, k := range v.Keys {
			seq.Append(v.Values[k])
		}
	case map[string]interface{}:
		// Go maps have no iteration order; sorted keys keep wildcard
		// projection deterministic for host-supplied plain maps.
		for _, k := range sortedKeys(v) {
			seq.Append(v[k])
		}
	case []interface{}:
		for _, item := range v {
			seq.Append(evalWildcard(item))
		}
	}
	return seq.Normalize()
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (e *Evaluator) evalUnary(ctx context.Context, node *types.ASTNode, env *Environment, depth int) (interface{}, error) {
	switch node.Value {
	case "-":
		val, err := e.evalNode(ctx, node.LHS, env, depth)
		if err != nil {
			return nil, err
		}
		if val == nil {
			return nil, nil
		}
		n, err := toNumber(val)
		if err != nil {
			return nil, err
		}
		return -n, nil
	case "<", ">":
		// Bare sort-direction markers are only meaningful inside a
		// NodeSort term list; evaluated standalone they degrade to their
		// operand's value.
		return e.evalNode(ctx, node.LHS, env, depth)
	default:
		return nil, types.NewError(types.ErrSyntaxError, fmt.Sprintf("unknown unary operator %q", node.Value))
	}
}

func (e *Evaluator) evalBlock(ctx context.Context, node *types.ASTNode, env *Environment, depth int) (interface{}, error) {
	blockEnv := env.Child(env.Input())
	var result interface{}
	last := len(node.Expressions) - 1
	for i, expr := range node.Expressions {
		stmtCtx := ctx
		if i != last {
			stmtCtx = withoutTCOTail(ctx)
		}
		val, err := e.evalNode(stmtCtx, expr, blockEnv, depth)
		if err != nil {
			return nil, err
		}
		result = val
	}
	return result, nil
}

func (e *Evaluator) evalArray(ctx context.Context, node *types.ASTNode, env *Environment, depth int) (interface{}, error) {
	items := make([]interface{}, 0, len(node.Expressions))
	for _, expr := range node.Expressions {
		val, err := e.evalNode(ctx, expr, env, depth)
		if err != nil {
			return nil, err
		}
		// A range element contributes its generated sequence, not a nested
		// array: [1..3] is [1,2,3]. Any other element — a literal array
		// included — contributes exactly one value; a constructor never
		// iterates an array-valued element.
		if expr.Type == types.NodeRange {
			if arr, ok := val.([]interface{}); ok {
				items = append(items, arr...)
				continue
			}
		}
		items = append(items, val)
	}
	return items, nil
}

func (e *Evaluator) evalRange(ctx context.Context, node *types.ASTNode, env *Environment, depth int) (interface{}, error) {
	lo, err := e.evalNode(ctx, node.LHS, env, depth)
	if err != nil {
		return nil, err
	}
	hi, err := e.evalNode(ctx, node.RHS, env, depth)
	if err != nil {
		return nil, err
	}
	if lo == nil || hi == nil {
		return nil, nil
	}
	loN, ok := lo.(float64)
	if !ok {
		return nil, types.NewError(types.ErrRangeBoundNotNumber, "range bounds must be numbers")
	}
	hiN, ok := hi.(float64)
	if !ok {
		return nil, types.NewError(types.ErrRangeBoundNotNumber, "range bounds must be numbers")
	}
	if loN != float64(int64(loN)) || hiN != float64(int64(hiN)) {
		return nil, types.NewError(types.ErrRangeBoundNotInteger, "range bounds must be integers")
	}
	if hiN < loN {
		return []interface{}{}, nil
	}
	const maxRange = 10_000_000
	if hiN-loN > maxRange {
		return nil, types.NewError(types.ErrRangeTooLarge, "range size exceeds the maximum permitted")
	}
	out := make([]interface{}, 0, int(hiN-loN)+1)
	for i := int64(loN); i <= int64(hiN); i++ {
		out = append(out, float64(i))
	}
	return out, nil
}

func (e *Evaluator) evalCondition(ctx context.Context, node *types.ASTNode, env *Environment, depth int) (interface{}, error) {
	cond, err := e.evalNode(withoutTCOTail(ctx), node.LHS, env, depth)
	if err != nil {
		return nil, err
	}
	if isTruthy(cond) {
		return e.evalNode(ctx, node.RHS, env, depth)
	}
	if len(node.Steps) > 0 {
		return e.evalNode(ctx, node.Steps[0], env, depth)
	}
	return nil, nil
}
