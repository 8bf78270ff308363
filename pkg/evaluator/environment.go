package evaluator

import (
	"math/rand"
	"sync"

	"github.com/secondlayerco/jsonata/pkg/types"
)

// Environment is the lexical scope chain threaded through evaluation:
// variable bindings, registered functions, the current context value ($)
// and the original top-level input ($$), plus a back-reference to the
// owning Evaluator so native higher-order functions can re-enter
// evaluation (e.g. $map calling back into a lambda argument). It also
// carries the synthetic `$$parentN` bindings pkg/ancestry resolves `%`
// references against.
type Environment struct {
	parent    *Environment
	bindings  map[string]interface{}
	functions map[string]*FunctionDef
	input     interface{}
	rootInput interface{}
	evaluator *Evaluator
	now       *timestamp
}

// timestamp is the lazily-captured, process-wide-unique snapshot shared
// by every $now()/$millis()/$fromMillis() call within one top-level
// Evaluate: the once guards first access from more than one goroutine.
type timestamp struct {
	once    sync.Once
	millis  int64
	randMu  sync.Mutex
	randSrc *rand.Rand
}

// NewRootEnvironment creates the outermost scope for a single Evaluate
// call, with input as both $ and $$.
func NewRootEnvironment(ev *Evaluator, input interface{}) *Environment {
	return &Environment{
		bindings:  make(map[string]interface{}),
		functions: make(map[string]*FunctionDef),
		input:     input,
		rootInput: input,
		evaluator: ev,
		now:       &timestamp{},
	}
}

// Child creates a nested scope with a new context value ($) but sharing
// the parent's $$ and evaluator.
func (e *Environment) Child(input interface{}) *Environment {
	return &Environment{
		parent:    e,
		bindings:  make(map[string]interface{}),
		input:     input,
		rootInput: e.rootInput,
		evaluator: e.evaluator,
		now:       e.now,
	}
}

// Bind sets a variable in this scope (shadowing any outer binding of the
// same name).
func (e *Environment) Bind(name string, value interface{}) {
	e.bindings[name] = value
}

// Lookup resolves a variable by walking outward through parent scopes.
// The boolean return distinguishes "bound to undefined" from "never
// bound" only insofar as both report ok=true/false consistently with how
// Bind was called; JSONata itself does not distinguish the two cases.
func (e *Environment) Lookup(name string) (interface{}, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.bindings[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Input returns the current context value ($).
func (e *Environment) Input() interface{} { return e.input }

// RootInput returns the original top-level input ($$).
func (e *Environment) RootInput() interface{} { return e.rootInput }

// BindFunction registers a custom/native function definition in this scope.
func (e *Environment) BindFunction(name string, fn *FunctionDef) {
	if e.functions == nil {
		e.functions = make(map[string]*FunctionDef)
	}
	e.functions[name] = fn
}

// LookupFunction resolves a function by name, walking outward, falling
// back to the Evaluator's builtin registry.
func (e *Environment) LookupFunction(name string) (*FunctionDef, bool) {
	for env := e; env != nil; env = env.parent {
		if fn, ok := env.functions[name]; ok {
			return fn, true
		}
	}
	if e.evaluator != nil {
		return e.evaluator.lookupBuiltin(name)
	}
	return nil, false
}

// root walks to the outermost Environment, used to stamp the lazily
// captured $now()/$millis()/$random() snapshot.
func (e *Environment) root() *Environment {
	env := e
	for env.parent != nil {
		env = env.parent
	}
	return env
}

func (e *Environment) errorf(code types.ErrorCode, msg string) error {
	return types.NewError(code, msg)
}
