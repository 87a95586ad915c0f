package interpreter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Pancakey8/lisp/pkg/ast"
	"github.com/Pancakey8/lisp/pkg/runtime"
)

func (i *Interpreter) reduce(expr runtime.Expr, env *runtime.Environment) (runtime.Expr, error) {
	switch e := expr.(type) {
	case runtime.Null:
		return e, nil
	case runtime.Quoted:
		return e.Form, nil
	case runtime.Literal:
		switch v := e.Value.(type) {
		case runtime.NumberValue, runtime.StringValue, runtime.Function:
			return e, nil
		case runtime.SymbolValue:
			bound, ok := env.Lookup(v.Name)
			if !ok {
				return nil, newEvalErrorAt(UnboundSymbol, e.Pos, "unbound symbol '%s'", v.Name)
			}
			return bound, nil
		case runtime.ListValue:
			if len(v.Elements) == 0 {
				return e, nil
			}
			return i.reduceCall(e.Pos, v.Elements, env)
		case nil:
			return nil, newEvalErrorAt(UnsupportedForm, e.Pos, "literal without a value")
		default:
			return nil, newEvalErrorAt(UnsupportedForm, e.Pos, "cannot reduce %T", v)
		}
	case nil:
		return nil, newEvalError(UnsupportedForm, "cannot reduce nil expression")
	default:
		return nil, newEvalError(UnsupportedForm, "cannot reduce %T", expr)
	}
}

// reduceCall evaluates a non-empty list as a call. The head must be a symbol
// naming a special form or a registered function; arguments are reduced left
// to right before dispatch.
func (i *Interpreter) reduceCall(pos ast.Position, elements []runtime.Expr, env *runtime.Environment) (runtime.Expr, error) {
	if i.depth >= i.maxDepth {
		return nil, i.withStack(newEvalErrorAt(StackExhausted, pos, "maximum call depth %d exceeded", i.maxDepth))
	}
	i.depth++
	defer func() { i.depth-- }()

	head, ok := runtime.ValueOf(elements[0])
	sym, isSym := head.(runtime.SymbolValue)
	if !ok || !isSym {
		return nil, i.withStack(newEvalErrorAt(UnsupportedForm, pos, "call position must be a symbol, got %s", describeExpr(elements[0])))
	}
	rest := elements[1:]

	if special, ok := i.specials[sym.Name]; ok {
		result, err := special(i, pos, rest, env)
		if err != nil {
			return nil, i.withStack(i.locate(err, pos))
		}
		return result, nil
	}

	fn, ok := i.functions.Lookup(sym.Name)
	if !ok {
		return nil, i.withStack(newEvalErrorAt(UnknownFunction, pos, "unknown function '%s'", sym.Name))
	}

	args := make([]runtime.Expr, 0, len(rest))
	for _, arg := range rest {
		val, err := i.reduce(arg, env)
		if err != nil {
			return nil, i.withStack(err)
		}
		args = append(args, val)
	}

	i.stack = append(i.stack, Frame{Function: fn.FunctionName(), Pos: pos})
	defer func() { i.stack = i.stack[:len(i.stack)-1] }()
	i.traceCall(fn.FunctionName(), args)

	result, err := i.invoke(fn, pos, args, env)
	if err != nil {
		return nil, i.withStack(err)
	}
	return result, nil
}

func (i *Interpreter) invoke(fn runtime.Function, pos ast.Position, args []runtime.Expr, env *runtime.Environment) (runtime.Expr, error) {
	switch f := fn.(type) {
	case *runtime.BuiltinFunction:
		if f.Impl == nil {
			return nil, newEvalErrorAt(UnsupportedForm, pos, "builtin %s has no implementation", f.Name)
		}
		ctx := &runtime.NativeCallContext{Env: env, Stdout: i.stdout, Pos: pos}
		result, err := f.Impl(ctx, args)
		if err != nil {
			return nil, i.locate(err, pos)
		}
		if result == nil {
			return runtime.Null{}, nil
		}
		return result, nil
	case *runtime.UserFunction:
		if len(args) != len(f.Formals) {
			return nil, newEvalErrorAt(ArityMismatch, pos, "%s expects %d argument(s), got %d", f.Name, len(f.Formals), len(args))
		}
		local := i.global.Extend()
		for idx, name := range f.Formals {
			local.Define(name, args[idx])
		}
		return i.reduce(f.Body, local)
	default:
		return nil, newEvalErrorAt(UnsupportedForm, pos, "cannot call %T", fn)
	}
}

// locate gives a positionless error the call site. Errors that are not eval
// errors become NativeFailure, except the exit signal which passes through.
func (i *Interpreter) locate(err error, pos ast.Position) error {
	var sig exitSignal
	if errors.As(err, &sig) {
		return err
	}
	var evalErr *EvalError
	if !errors.As(err, &evalErr) {
		wrapped := newEvalErrorAt(NativeFailure, pos, "%s", err.Error())
		wrapped.Err = err
		return wrapped
	}
	if !evalErr.HasPos {
		evalErr.Pos = pos
		evalErr.HasPos = true
	}
	return err
}

// withStack records the active frames on the first EvalError to pass through.
func (i *Interpreter) withStack(err error) error {
	var evalErr *EvalError
	if errors.As(err, &evalErr) && evalErr.Stack == nil {
		evalErr.Stack = i.snapshotStack()
	}
	return err
}

func (i *Interpreter) snapshotStack() []Frame {
	out := make([]Frame, len(i.stack))
	copy(out, i.stack)
	return out
}

func (i *Interpreter) traceCall(name string, args []runtime.Expr) {
	if i.trace == nil {
		return
	}
	parts := make([]string, len(args))
	for idx, arg := range args {
		parts[idx] = traceArg(arg)
	}
	line := fmt.Sprintf("trace: %d %s", i.depth, name)
	if len(parts) > 0 {
		line += " " + strings.Join(parts, " ")
	}
	fmt.Fprintln(i.trace, line)
}

func traceArg(arg runtime.Expr) string {
	if val, ok := runtime.ValueOf(arg); ok {
		if fn, isFn := val.(runtime.Function); isFn {
			return "<function " + fn.FunctionName() + ">"
		}
		if str, isStr := val.(runtime.StringValue); isStr {
			return fmt.Sprintf("%q", str.Val)
		}
	}
	text, err := runtime.Stringify(arg)
	if err != nil {
		return "<?>"
	}
	return text
}

// describeExpr names the kind of e for error messages.
func describeExpr(e runtime.Expr) string {
	switch v := e.(type) {
	case runtime.Null:
		return "nil"
	case runtime.Quoted:
		return "quoted form"
	case runtime.Literal:
		if v.Value == nil {
			return "empty literal"
		}
		return v.Value.Kind().String()
	default:
		return fmt.Sprintf("%T", e)
	}
}
