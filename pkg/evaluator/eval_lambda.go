package evaluator

import (
	"context"

	"github.com/secondlayerco/jsonata/pkg/types"
)

// Lambda is a closure created by evaluating a NodeLambda: it captures the
// defining Environment so free variables resolve against the
// scope where the function was written, not where it is later invoked.
type Lambda struct {
	Params    []string
	Body      *types.ASTNode
	Env       *Environment
	Signature *types.Signature
}

type tcoTailKey struct{}

// withTCOTail marks ctx as "the next evaluation is in tail position of a
// lambda body" — a tail call to another lambda returns a *tcoThunk instead
// of recursing, letting callLambda's trampoline loop re-bind and continue
// without growing the Go call stack.
func withTCOTail(ctx context.Context) context.Context {
	return context.WithValue(ctx, tcoTailKey{}, true)
}

// withoutTCOTail clears the tail marker for a sub-evaluation that is not
// itself in tail position (a condition, a non-final block statement, a
// function argument).
func withoutTCOTail(ctx context.Context) context.Context {
	return context.WithValue(ctx, tcoTailKey{}, false)
}

func isTCOTail(ctx context.Context) bool {
	v, _ := ctx.Value(tcoTailKey{}).(bool)
	return v
}

// tcoThunk is a deferred lambda invocation produced when a tail call is
// detected; callLambda's trampoline loop unwraps it instead of recursing.
type tcoThunk struct {
	lambda *Lambda
	args   []interface{}
}

// makeLambda builds the closure value for a NodeLambda; Arguments holds the
// parameter NodeVariable nodes (their Value field is the parameter name).
func (e *Evaluator) makeLambda(node *types.ASTNode, env *Environment) *Lambda {
	params := make([]string, len(node.Arguments))
	for i, p := range node.Arguments {
		params[i] = p.Value
	}
	return &Lambda{Params: params, Body: node.RHS, Env: env, Signature: node.Signature}
}

// callLambda invokes lambda with args already evaluated, binding parameters
// into a fresh child of the closure environment and running the body to
// completion via the TCO trampoline: a body that resolves to a tcoThunk
// (the lambda called another lambda, or itself, in tail position) is
// unwrapped and re-entered in this same loop rather than via recursion.
func (e *Evaluator) callLambda(ctx context.Context, lambda *Lambda, args []interface{}, depth int) (interface{}, error) {
	for {
		adapted, err := adaptLambdaArgs(lambda, args)
		if err != nil {
			return nil, err
		}

		callEnv := lambda.Env.Child(lambda.Env.Input())
		for i, param := range lambda.Params {
			if i < len(adapted) {
				callEnv.Bind(param, adapted[i])
			}
		}

		// depth resets to 0 here to mirror pkg/ancestry's own reset when it
		// enters a NodeLambda body: `%` inside the body can only resolve
		// against steps within the body itself, never the call site.
		tailCtx := withTCOTail(ctx)
		result, err := e.evalNode(tailCtx, lambda.Body, callEnv, 0)
		if err != nil {
			return nil, err
		}

		thunk, isThunk := result.(*tcoThunk)
		if !isThunk {
			return result, nil
		}
		lambda = thunk.lambda
		args = thunk.args
	}
}

// adaptLambdaArgs validates args against lambda's signature, if any,
// auto-wrapping array-typed parameters, and otherwise checks the argument
// count fits the declared parameter list.
func adaptLambdaArgs(lambda *Lambda, args []interface{}) ([]interface{}, error) {
	if lambda.Signature == nil {
		if len(args) > len(lambda.Params) {
			return nil, types.NewError(types.ErrArgumentCountMismatch, "too many arguments supplied to lambda")
		}
		return args, nil
	}
	return validateSignature(lambda.Signature, args)
}
