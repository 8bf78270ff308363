// Package jsonata is the public facade over the JSONata compiler and
// evaluator: Compile once, Evaluate many times against
// arbitrary JSON-shaped Go values (the usual map[string]interface{} /
// []interface{} / string / float64 / bool / nil shapes produced by
// encoding/json).
package jsonata

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/secondlayerco/jsonata/pkg/ancestry"
	"github.com/secondlayerco/jsonata/pkg/cache"
	"github.com/secondlayerco/jsonata/pkg/evaluator"
	"github.com/secondlayerco/jsonata/pkg/parser"
	"github.com/secondlayerco/jsonata/pkg/types"
)

// NativeFunc is the contract a host implements to register a custom
// function: it receives the context, the *Evaluator, the caller's
// *Environment (whose Input() is the current context value) and the
// already-evaluated arguments. The package exports no method for invoking
// a JSONata callable passed as an argument.
type NativeFunc = evaluator.FunctionImpl

// config collects every Option into the two places that actually consume
// them: the parser (compile time) and the Evaluator (eval time).
type config struct {
	parserOpts []parser.CompileOption
	evalOpts   []evaluator.EvalOption
	recovery   bool
}

// Option configures compilation and/or evaluation of a Program.
type Option func(*config)

// WithRecovery makes Compile return the parser's recorded errors wrapped
// in a github.com/hashicorp/go-multierror *multierror.Error. The parser
// still stops at its first syntax error, so the wrapper holds that one.
func WithRecovery(enabled bool) Option {
	return func(c *config) {
		c.recovery = enabled
		c.parserOpts = append(c.parserOpts, parser.WithRecovery(enabled))
	}
}

// WithMaxParseDepth bounds recursive-descent nesting during parsing.
func WithMaxParseDepth(depth int) Option {
	return func(c *config) { c.parserOpts = append(c.parserOpts, parser.WithMaxDepth(depth)) }
}

// WithMaxEvalDepth bounds evaluator recursion (the stack-overflow guard
// behind D2002).
func WithMaxEvalDepth(depth int) Option {
	return func(c *config) { c.evalOpts = append(c.evalOpts, evaluator.WithMaxDepth(depth)) }
}

// WithTimeout aborts evaluation once d has elapsed, via context.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.evalOpts = append(c.evalOpts, evaluator.WithTimeout(d)) }
}

// WithConcurrency stores a fan-out hint in the evaluator's options. The
// evaluator does not read it: array/object constructor elements are
// evaluated one after another.
func WithConcurrency(n int) Option {
	return func(c *config) { c.evalOpts = append(c.evalOpts, evaluator.WithConcurrency(n)) }
}

// WithDebug turns on a debug-level log record for each evaluation; parsing
// is not traced.
func WithDebug(enabled bool) Option {
	return func(c *config) { c.evalOpts = append(c.evalOpts, evaluator.WithDebug(enabled)) }
}

// WithLogger injects a structured logger, used in place of slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.evalOpts = append(c.evalOpts, evaluator.WithLogger(logger)) }
}

func defaultConfig() config {
	return config{}
}

// Program is a compiled JSONata expression: an immutable, ancestry-
// resolved AST plus a private Evaluator and a host-bindable variable
// scope. A Program is safe to Evaluate from multiple goroutines only if
// the caller does not concurrently Bind/RegisterFunction against it at
// the same time — an individual compiled expression is not safe to
// mutate-and-evaluate concurrently with itself.
type Program struct {
	expr *types.Expression
	ev   *evaluator.Evaluator

	mu       sync.RWMutex
	bindings map[string]interface{}
}

// Compile parses source, statically resolves every `%` parent reference
// (pkg/ancestry), and returns a Program ready to Evaluate. Returns a
// *types.Error (or, with WithRecovery, a *multierror.Error wrapping the
// first syntax error) on any lexical, syntactic, or parent-resolution
// failure.
func Compile(source string, opts ...Option) (*Program, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	expr, err := compileExpression(source, cfg)
	if err != nil {
		return nil, err
	}

	return &Program{
		expr:     expr,
		ev:       evaluator.New(cfg.evalOpts...),
		bindings: make(map[string]interface{}),
	}, nil
}

// CompileCached behaves like Compile but first consults c for an existing
// parsed-and-resolved expression under the key source, compiling and
// caching only on a miss. Only the parse/ancestry-resolution result is
// shared across
// callers; each call still gets its own Evaluator and bindings, so
// differing Options passed alongside a cache hit affect evaluation but
// not the (already-cached) parse — callers sharing a cache key should use
// consistent parser-affecting Options (WithRecovery, WithMaxParseDepth).
func CompileCached(source string, c *cache.Cache, opts ...Option) (*Program, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	expr, err := c.GetOrCompile(source, func() (*types.Expression, error) {
		return compileExpression(source, cfg)
	})
	if err != nil {
		return nil, err
	}

	return &Program{
		expr:     expr,
		ev:       evaluator.New(cfg.evalOpts...),
		bindings: make(map[string]interface{}),
	}, nil
}

func compileExpression(source string, cfg config) (*types.Expression, error) {
	p := parser.NewParser(source, cfg.parserOpts...)
	expr, err := p.Parse()

	if cfg.recovery {
		if errs := p.Errors(); len(errs) > 0 {
			var merr *multierror.Error
			for _, e := range errs {
				merr = multierror.Append(merr, e)
			}
			return nil, merr.ErrorOrNil()
		}
	}
	if err != nil {
		return nil, err
	}

	if resErr := ancestry.Resolve(expr.AST()); resErr != nil {
		return nil, resErr
	}
	return expr, nil
}

// Bind adds or overrides a variable (without the leading `$`) visible to
// every subsequent Evaluate call on this Program.
func (p *Program) Bind(name string, value interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bindings[name] = value
}

// RegisterFunction adds or overrides a native function. name must include
// the leading `$`, matching how it is written in an
// expression; the registry itself keys on the bare identifier, the same
// way the parser strips `$` off every variable/function reference.
// minArgs/maxArgs bound the accepted argument count; maxArgs of -1 means
// unbounded.
func (p *Program) RegisterFunction(name string, fn NativeFunc, minArgs, maxArgs int) {
	bare := strings.TrimPrefix(name, "$")
	p.ev.RegisterFunction(bare, &evaluator.FunctionDef{
		Name:    name,
		MinArgs: minArgs,
		MaxArgs: maxArgs,
		Impl:    fn,
	})
}

// AST returns the compiled, ancestry-resolved AST as an opaque debug
// handle; callers outside this module
// should treat it as inspectable, not stable API.
func (p *Program) AST() *types.ASTNode {
	return p.expr.AST()
}

// Source returns the original expression text this Program was compiled
// from.
func (p *Program) Source() string {
	return p.expr.Source()
}

// Dump renders the AST as a human-readable tree for debugging, via
// github.com/davecgh/go-spew.
func (p *Program) Dump() string {
	return spew.Sdump(p.expr.AST())
}

// Evaluate runs the compiled expression against input and returns the
// transformed JSON-shaped value, or nil when the expression yields no
// result. Equivalent to
// EvaluateContext(context.Background(), input).
func (p *Program) Evaluate(input interface{}) (interface{}, error) {
	return p.EvaluateContext(context.Background(), input)
}

// EvaluateContext is Evaluate with caller-supplied cancellation/deadline
// propagation; every blocking entry point in this module carries a
// context.
// An unexpected panic inside the evaluator (a native function bug, for
// instance) is recovered and reported as an error wrapped with
// github.com/pkg/errors so the caller's logs retain a stack trace,
// instead of crashing the host process.
func (p *Program) EvaluateContext(ctx context.Context, input interface{}) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(fmt.Errorf("%v", r), "jsonata: unexpected panic evaluating %q", p.expr.Source())
		}
	}()

	p.mu.RLock()
	bindings := make(map[string]interface{}, len(p.bindings))
	for k, v := range p.bindings {
		bindings[k] = v
	}
	p.mu.RUnlock()

	return p.ev.EvalWithBindings(ctx, p.expr.AST(), input, bindings)
}
