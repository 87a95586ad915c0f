package interpreter

import (
	"fmt"
	"io"
	"os"

	"github.com/Pancakey8/lisp/pkg/ast"
	"github.com/Pancakey8/lisp/pkg/runtime"
)

// DefaultMaxDepth bounds nested list reductions when Options.MaxDepth is zero.
const DefaultMaxDepth = 1000

// Options configures a new interpreter.
type Options struct {
	// Stdout receives output written by println. Defaults to os.Stdout.
	Stdout io.Writer
	// Trace, when set, receives one line per function call.
	Trace io.Writer
	// MaxDepth bounds nested list reductions; beyond it evaluation fails
	// with StackExhausted.
	MaxDepth int
}

// Interpreter translates and reduces forms against a global scope seeded
// with the builtins and the binding nil -> Null.
type Interpreter struct {
	global    *runtime.Environment
	functions *runtime.FunctionTable
	specials  map[string]specialForm
	stdout    io.Writer
	trace     io.Writer
	maxDepth  int

	depth int
	stack []Frame
}

// New returns an interpreter writing to os.Stdout with the default depth bound.
func New() *Interpreter {
	return NewWithOptions(Options{})
}

func NewWithOptions(opts Options) *Interpreter {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	i := &Interpreter{
		global:    runtime.NewEnvironment(nil),
		functions: runtime.NewFunctionTable(),
		stdout:    stdout,
		trace:     opts.Trace,
		maxDepth:  maxDepth,
	}
	i.global.Define("nil", runtime.Null{})
	i.specials = i.specialForms()
	i.initBuiltins()
	return i
}

// GlobalEnvironment returns the interpreter's global scope.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// Functions returns the function registry consulted for calls.
func (i *Interpreter) Functions() *runtime.FunctionTable {
	return i.functions
}

// RegisterBuiltin adds a native function. Registering an existing name fails.
func (i *Interpreter) RegisterBuiltin(name string, formals []string, impl runtime.NativeFunc) error {
	if _, ok := i.specials[name]; ok {
		return fmt.Errorf("%w: %s is a special form", runtime.ErrDuplicateFunction, name)
	}
	return i.functions.Register(&runtime.BuiltinFunction{Name: name, Formals: formals, Impl: impl})
}

// DefineFunction registers a user function with a single body expression.
func (i *Interpreter) DefineFunction(name string, params []string, body runtime.Expr) error {
	if _, ok := i.specials[name]; ok {
		return fmt.Errorf("%w: %s is a special form", runtime.ErrDuplicateFunction, name)
	}
	return i.functions.Register(&runtime.UserFunction{Name: name, Formals: params, Body: body})
}

// Evaluate translates node and reduces it in the global scope.
func (i *Interpreter) Evaluate(node ast.Node) (runtime.Expr, error) {
	expr, err := Translate(node)
	if err != nil {
		return nil, err
	}
	return i.Reduce(expr)
}

// EvaluateAll evaluates each root in order and returns the last result. The
// first error stops evaluation.
func (i *Interpreter) EvaluateAll(nodes []ast.Node) (runtime.Expr, error) {
	var last runtime.Expr = runtime.Null{}
	for _, node := range nodes {
		result, err := i.Evaluate(node)
		if err != nil {
			return nil, err
		}
		last = result
	}
	return last, nil
}

// Reduce evaluates an already translated expression in the global scope.
func (i *Interpreter) Reduce(expr runtime.Expr) (runtime.Expr, error) {
	i.depth = 0
	i.stack = i.stack[:0]
	return i.reduce(expr, i.global)
}
