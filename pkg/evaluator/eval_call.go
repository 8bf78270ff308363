package evaluator

import (
	"context"

	"github.com/secondlayerco/jsonata/pkg/types"
)

// PartialApplication is the callable value produced by `f(?, 2, ?)`-style
// partial application: Bound holds the supplied arguments
// with placeholders left nil, Holes lists the argument positions that
// still need to be filled in when the partial is finally invoked.
type PartialApplication struct {
	Callee interface{}
	Bound  []interface{}
	Holes  []int
}

// evalFunctionCall resolves the callee (a bare builtin name via
// node.Value, or an arbitrary expression via node.LHS — e.g. a variable
// holding a lambda), evaluates the argument list, and either invokes the
// callable or, when any argument is a placeholder (`?`), builds a
// PartialApplication instead.
func (e *Evaluator) evalFunctionCall(ctx context.Context, node *types.ASTNode, env *Environment, depth int) (interface{}, error) {
	callee, err := e.resolveCallee(ctx, node, env, depth)
	if err != nil {
		return nil, err
	}

	args, holes, err := e.evalCallArgs(ctx, node, env, depth)
	if err != nil {
		return nil, err
	}

	if node.IsGrouping && len(holes) > 0 {
		return &PartialApplication{Callee: callee, Bound: args, Holes: holes}, nil
	}

	return e.invokeCallable(ctx, callee, args, env, depth)
}

// resolveCallee evaluates a NodeFunctionCall's callee position: a bare
// builtin name via node.Value, a `$name` reference via node.LHS (checked
// against user bindings first, then the function registry, since
// `$name(...)` always parses its callee as a NodeVariable — there is no
// bare-identifier call syntax in JSONata), or an arbitrary expression
// (e.g. a variable holding a lambda, or a parenthesized callable) via
// node.LHS otherwise.
func (e *Evaluator) resolveCallee(ctx context.Context, node *types.ASTNode, env *Environment, depth int) (interface{}, error) {
	if node.Value != "" {
		fn, ok := env.LookupFunction(node.Value)
		if !ok {
			return nil, types.NewError(types.ErrUndefinedFunction, "undefined function: "+node.Value)
		}
		return fn, nil
	}
	if node.LHS.Type == types.NodeVariable && node.LHS.Value != "" {
		if v, ok := env.Lookup(node.LHS.Value); ok && v != nil {
			return v, nil
		}
		if fn, ok := env.LookupFunction(node.LHS.Value); ok {
			return fn, nil
		}
		return nil, types.NewError(types.ErrNotCallable, "attempted to invoke a non-function: $"+node.LHS.Value)
	}
	return e.evalNode(withoutTCOTail(ctx), node.LHS, env, depth)
}

// evalCallArgs evaluates node.Arguments left-to-right, collecting the
// positions of any `?` placeholders (partial application)
// instead of evaluating them.
func (e *Evaluator) evalCallArgs(ctx context.Context, node *types.ASTNode, env *Environment, depth int) ([]interface{}, []int, error) {
	argCtx := withoutTCOTail(ctx)
	args := make([]interface{}, len(node.Arguments))
	var holes []int
	for i, argNode := range node.Arguments {
		if argNode.Type == types.NodePlaceholder {
			holes = append(holes, i)
			continue
		}
		val, err := e.evalNode(argCtx, argNode, env, depth)
		if err != nil {
			return nil, nil, err
		}
		args[i] = val
	}
	return args, holes, nil
}

// invokeCallable dispatches to a Lambda (subject to TCO when called in
// tail position), a native FunctionDef, or a PartialApplication (which
// fills its holes from the newly supplied args before recursing). env is
// the caller's environment, passed through so native functions needing
// the current context ($) or a route back into callLambda (higher-order
// functions like $map) have one.
func (e *Evaluator) invokeCallable(ctx context.Context, callee interface{}, args []interface{}, env *Environment, depth int) (interface{}, error) {
	switch fn := callee.(type) {
	case nil:
		return nil, types.NewError(types.ErrInvokeNonFunction, "attempted to invoke a non-function value")

	case *Lambda:
		if isTCOTail(ctx) {
			return &tcoThunk{lambda: fn, args: args}, nil
		}
		return e.callLambda(ctx, fn, args, depth)

	case *FunctionDef:
		// A function declared AcceptsContext (e.g. $uppercase, $abs) called
		// with fewer arguments than it requires implicitly takes the
		// current context value ($) as its leading argument — this is how
		// `Account.Order.Product.$sum(Price)` style chaining and bare
		// `value.$uppercase()` navigation both work.
		if fn.AcceptsContext && len(args) < fn.MinArgs {
			args = append([]interface{}{env.Input()}, args...)
		}
		if len(args) < fn.MinArgs || (fn.MaxArgs >= 0 && len(args) > fn.MaxArgs) {
			return nil, types.NewError(types.ErrArgumentCountMismatch, "wrong number of arguments to "+fn.Name)
		}
		return fn.Impl(withoutTCOTail(ctx), e, env, args)

	case *PartialApplication:
		filled := make([]interface{}, len(fn.Bound))
		copy(filled, fn.Bound)
		extra := 0
		for _, idx := range fn.Holes {
			if extra < len(args) {
				filled[idx] = args[extra]
				extra++
			}
		}
		filled = append(filled, args[extra:]...)
		return e.invokeCallable(ctx, fn.Callee, filled, env, depth)

	default:
		return nil, types.NewError(types.ErrNotCallable, "value is not callable")
	}
}

// evalChain implements `LHS ~> RHS`, the chain operator:
// evaluate LHS to a value, then invoke RHS with that value prepended to
// its positional arguments. When RHS is itself a function-call node (the
// overwhelmingly common case, e.g. `x ~> $substring(0, 5)`), the value is
// spliced in as the leading argument alongside whatever args the call
// already specifies, rather than replacing them — evaluating RHS as a
// plain expression first would invoke it with only its own written
// arguments and lose the chained value entirely. Chains built
// left-associatively by the parser (`a ~> b ~> c` as `(a ~> b) ~> c`)
// resolve naturally since each NodeChain's own LHS is itself evaluated
// first.
func (e *Evaluator) evalChain(ctx context.Context, node *types.ASTNode, env *Environment, depth int) (interface{}, error) {
	value, err := e.evalNode(ctx, node.LHS, env, depth)
	if err != nil {
		return nil, err
	}

	rhs := node.RHS
	if rhs.Type == types.NodeFunctionCall {
		callee, err := e.resolveCallee(ctx, rhs, env, depth)
		if err != nil {
			return nil, err
		}
		args, holes, err := e.evalCallArgs(ctx, rhs, env, depth)
		if err != nil {
			return nil, err
		}
		args = append([]interface{}{value}, args...)
		if rhs.IsGrouping && len(holes) > 0 {
			shifted := make([]int, len(holes))
			for i, h := range holes {
				shifted[i] = h + 1
			}
			return &PartialApplication{Callee: callee, Bound: args, Holes: shifted}, nil
		}
		return e.invokeCallable(ctx, callee, args, env, depth)
	}

	callee, err := e.evalNode(ctx, rhs, env, depth)
	if err != nil {
		return nil, err
	}
	switch callee.(type) {
	case *Lambda, *FunctionDef, *PartialApplication:
	default:
		return nil, types.NewError(types.ErrChainNotCallable, "the right side of '~>' must be a function")
	}
	return e.invokeCallable(ctx, callee, []interface{}{value}, env, depth)
}
