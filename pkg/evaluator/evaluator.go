// Package evaluator implements the JSONata tree-walking evaluator:
// Environment chaining, the tuple-based path projection algorithm,
// filter/sort/object-grouping semantics, callables (lambda closures,
// native functions, partial application) and result normalization.
package evaluator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/secondlayerco/jsonata/pkg/types"
)

// FunctionImpl is the signature every builtin and custom function
// implements once wrapped by the registry: it receives the context, the
// Evaluator (through which builtins such as $map invoke a callable
// argument), the caller's Environment and the already evaluated,
// already-validated argument list.
type FunctionImpl func(ctx context.Context, ev *Evaluator, env *Environment, args []interface{}) (interface{}, error)

// FunctionDef describes a registered function, builtin or custom.
type FunctionDef struct {
	Name           string
	MinArgs        int
	MaxArgs        int // -1 means unbounded
	AcceptsContext bool
	Impl           FunctionImpl
}

// EvalOptions configures an Evaluator.
type EvalOptions struct {
	Caching         bool
	CacheSize       int
	Concurrency     int
	MaxDepth        int
	Timeout         time.Duration
	Debug           bool
	Logger          *slog.Logger
	CustomFunctions map[string]*FunctionDef
}

// EvalOption mutates an EvalOptions value.
type EvalOption func(*EvalOptions)

func WithCaching(enabled bool) EvalOption       { return func(o *EvalOptions) { o.Caching = enabled } }
func WithCacheSize(size int) EvalOption         { return func(o *EvalOptions) { o.CacheSize = size } }
func WithConcurrency(n int) EvalOption          { return func(o *EvalOptions) { o.Concurrency = n } }
func WithMaxDepth(depth int) EvalOption         { return func(o *EvalOptions) { o.MaxDepth = depth } }
func WithTimeout(d time.Duration) EvalOption    { return func(o *EvalOptions) { o.Timeout = d } }
func WithDebug(enabled bool) EvalOption         { return func(o *EvalOptions) { o.Debug = enabled } }
func WithLogger(logger *slog.Logger) EvalOption { return func(o *EvalOptions) { o.Logger = logger } }

// WithCustomFunction registers a native Go function under name, available
// to every expression this Evaluator runs.
func WithCustomFunction(name string, def *FunctionDef) EvalOption {
	return func(o *EvalOptions) {
		if o.CustomFunctions == nil {
			o.CustomFunctions = make(map[string]*FunctionDef)
		}
		o.CustomFunctions[name] = def
	}
}

// Evaluator runs compiled expressions against JSON-like Go values.
type Evaluator struct {
	opts   EvalOptions
	logger *slog.Logger
}

// New creates an Evaluator with the given options applied over defaults
// (depth 500, no timeout, caching off, slog.Default logger).
func New(opts ...EvalOption) *Evaluator {
	options := EvalOptions{MaxDepth: 500}
	for _, opt := range opts {
		opt(&options)
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{opts: options, logger: logger}
}

var builtinOnce sync.Once
var builtinRegistry map[string]*FunctionDef

// RegisterFunction adds or overrides a native function by name, visible to
// every expression this Evaluator subsequently evaluates. Host
// registrations made this way take precedence over builtins and over any
// function supplied via WithCustomFunction at construction time.
func (e *Evaluator) RegisterFunction(name string, def *FunctionDef) {
	if e.opts.CustomFunctions == nil {
		e.opts.CustomFunctions = make(map[string]*FunctionDef)
	}
	e.opts.CustomFunctions[name] = def
}

func (e *Evaluator) lookupBuiltin(name string) (*FunctionDef, bool) {
	if fn, ok := e.opts.CustomFunctions[name]; ok {
		return fn, true
	}
	builtinOnce.Do(func() { builtinRegistry = initBuiltinFunctions() })
	fn, ok := builtinRegistry[name]
	return fn, ok
}

// depthGuard is carried in the context to bound evaluation recursion,
// independent of the parser's own MaxDepth guard.
type depthGuard struct{ n *int }

type depthGuardKey struct{}

func withDepthGuard(ctx context.Context) context.Context {
	n := 0
	return context.WithValue(ctx, depthGuardKey{}, &depthGuard{n: &n})
}

func (e *Evaluator) enterDepth(ctx context.Context) (func(), error) {
	g, _ := ctx.Value(depthGuardKey{}).(*depthGuard)
	if g == nil {
		return func() {}, nil
	}
	*g.n++
	if *g.n > e.maxDepth() {
		return func() {}, types.NewError(types.ErrStackOverflow, "evaluation exceeds maximum recursion depth")
	}
	return func() { *g.n-- }, nil
}

func (e *Evaluator) maxDepth() int {
	if e.opts.MaxDepth > 0 {
		return e.opts.MaxDepth
	}
	return 500
}

// Eval evaluates ast against input with no pre-bound variables.
func (e *Evaluator) Eval(ctx context.Context, ast *types.ASTNode, input interface{}) (interface{}, error) {
	return e.EvalWithBindings(ctx, ast, input, nil)
}

// EvalWithBindings evaluates ast against input with extra variable
// bindings (e.g. a host-supplied `$account`) pre-populated in the root
// scope.
func (e *Evaluator) EvalWithBindings(ctx context.Context, ast *types.ASTNode, input interface{}, bindings map[string]interface{}) (result interface{}, err error) {
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}
	ctx = withDepthGuard(ctx)

	env := NewRootEnvironment(e, convertNullToNilTop(input))
	for k, v := range bindings {
		env.Bind(k, v)
	}

	if e.opts.Debug {
		e.logger.Debug("evaluating expression", slog.Any("root_type", ast.Type))
	}

	defer func() {
		if r := recover(); r != nil {
			err = types.NewError(types.ErrStackOverflow, "internal evaluator panic recovered")
		}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	val, evalErr := e.evalNode(ctx, ast, env, 0)
	if evalErr != nil {
		return nil, evalErr
	}
	return normalizeResult(val), nil
}

func convertNullToNilTop(v interface{}) interface{} {
	if v == nil {
		return types.NullValue
	}
	return v
}
