package parser

// CompileOptions configures parsing behavior. Zero value is not directly
// useful; construct via NewParser's variadic CompileOption arguments, which
// start from sane defaults (see defaultCompileOptions).
type CompileOptions struct {
	// EnableRecovery is stored for the root jsonata package, which then
	// wraps the parser's errors with github.com/hashicorp/go-multierror.
	// The parser does not read it and stops at its first syntax error.
	EnableRecovery bool
	// MaxDepth bounds recursive-descent nesting to guard against
	// pathological or adversarial input driving the parser into a stack
	// overflow.
	MaxDepth int
}

// CompileOption mutates a CompileOptions value.
type CompileOption func(*CompileOptions)

// WithRecovery sets EnableRecovery.
func WithRecovery(enabled bool) CompileOption {
	return func(o *CompileOptions) { o.EnableRecovery = enabled }
}

// WithMaxDepth overrides the default recursion depth limit.
func WithMaxDepth(depth int) CompileOption {
	return func(o *CompileOptions) { o.MaxDepth = depth }
}

func defaultCompileOptions() CompileOptions {
	return CompileOptions{EnableRecovery: false, MaxDepth: 200}
}
