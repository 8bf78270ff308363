package evaluator

import (
	"context"
	"fmt"

	"github.com/secondlayerco/jsonata/pkg/ancestry"
	"github.com/secondlayerco/jsonata/pkg/parser"
	"github.com/secondlayerco/jsonata/pkg/types"
)

// $error/$assert/$eval.

func fnError(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	message := "$error() function evaluated"
	if len(args) > 0 && args[0] != nil {
		message = fmt.Sprint(args[0])
	}
	return nil, types.NewError(types.ErrFunctionThrown, message)
}

func fnAssert(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	cond, ok := args[0].(bool)
	if !ok {
		return nil, types.NewError(types.ErrArgumentCountMismatch, "$assert() requires a boolean condition")
	}
	if !cond {
		message := "$assert() statement failed"
		if len(args) > 1 && args[1] != nil {
			message = fmt.Sprint(args[1])
		}
		return nil, types.NewError(types.ErrAssertionFailed, message)
	}
	return nil, nil
}

// fnEval parses and evaluates a JSONata expression string against either
// the supplied data context (second argument) or the caller's own
// context, re-entering the full lex/parse/ancestry/evaluate pipeline —
// the one builtin that closes the loop back to pkg/parser and
// pkg/ancestry rather than only pkg/types.
func fnEval(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if len(args) == 0 || args[0] == nil {
		return nil, nil
	}
	exprStr, ok := args[0].(string)
	if !ok {
		return nil, types.NewError(types.ErrCannotConvertString, "the first argument of $eval must be a string")
	}

	expr, err := parser.NewParser(exprStr).Parse()
	if err != nil {
		return nil, types.NewError(types.ErrEvalSyntax, "$eval(): "+err.Error())
	}
	if err := ancestry.Resolve(expr.AST()); err != nil {
		return nil, types.NewError(types.ErrEvalSyntax, "$eval(): "+err.Error())
	}

	data := env.Input()
	if len(args) >= 2 && args[1] != nil {
		data = args[1]
	}
	return e.Eval(ctx, expr.AST(), data)
}
