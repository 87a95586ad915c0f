package interpreter

import (
	"errors"
	"fmt"
	"math"

	"github.com/Pancakey8/lisp/pkg/runtime"
)

func (i *Interpreter) initBuiltins() {
	builtins := []*runtime.BuiltinFunction{
		{Name: "println", Formals: []string{"text"}, Impl: builtinPrintln},
		{Name: "+", Formals: []string{"a", "b", restMarker}, Impl: builtinAdd},
		{Name: "string", Formals: []string{"value"}, Impl: builtinString},
		{Name: "exit", Formals: []string{"code"}, Impl: builtinExit},
	}
	for _, fn := range builtins {
		if err := i.functions.Register(fn); err != nil {
			panic(fmt.Sprintf("register builtin %s: %v", fn.Name, err))
		}
	}
}

func builtinPrintln(ctx *runtime.NativeCallContext, args []runtime.Expr) (runtime.Expr, error) {
	if len(args) != 1 {
		return nil, ArityError("println", "1", len(args))
	}
	str, ok := stringArg(args[0])
	if !ok {
		return nil, TypeError("println", 0, "string", describeExpr(args[0]))
	}
	if _, err := fmt.Fprintln(ctx.Stdout, str); err != nil {
		return nil, fmt.Errorf("println: %w", err)
	}
	return runtime.Null{}, nil
}

func builtinAdd(_ *runtime.NativeCallContext, args []runtime.Expr) (runtime.Expr, error) {
	if len(args) < 2 {
		return nil, ArityError("+", "at least 2", len(args))
	}
	sum := 0.0
	for idx, arg := range args {
		n, ok := numberArg(arg)
		if !ok {
			return nil, TypeError("+", idx, "number", describeExpr(arg))
		}
		sum += n
	}
	return runtime.Num(sum), nil
}

func builtinString(_ *runtime.NativeCallContext, args []runtime.Expr) (runtime.Expr, error) {
	if len(args) != 1 {
		return nil, ArityError("string", "1", len(args))
	}
	text, err := runtime.Stringify(args[0])
	if err != nil {
		if errors.Is(err, runtime.ErrUnprintable) {
			evalErr := TypeError("string", 0, "a printable value", "function")
			evalErr.Err = err
			return nil, evalErr
		}
		if errors.Is(err, runtime.ErrTooDeep) {
			evalErr := newEvalError(StackExhausted, "string: %v", err)
			evalErr.Err = err
			return nil, evalErr
		}
		return nil, err
	}
	return runtime.Str(text), nil
}

// builtinExit stops evaluation; hosts read the code with ExitCodeFromError.
func builtinExit(_ *runtime.NativeCallContext, args []runtime.Expr) (runtime.Expr, error) {
	if len(args) != 1 {
		return nil, ArityError("exit", "1", len(args))
	}
	n, ok := numberArg(args[0])
	if !ok {
		return nil, TypeError("exit", 0, "number", describeExpr(args[0]))
	}
	if n != math.Trunc(n) || n < 0 || n > 255 {
		return nil, newEvalError(TypeMismatch, "exit: code must be an integer between 0 and 255, got %s", runtime.FormatNumber(n))
	}
	return nil, exitSignal{code: int(n)}
}

func stringArg(e runtime.Expr) (string, bool) {
	val, ok := runtime.ValueOf(e)
	if !ok {
		return "", false
	}
	str, ok := val.(runtime.StringValue)
	return str.Val, ok
}

func numberArg(e runtime.Expr) (float64, bool) {
	val, ok := runtime.ValueOf(e)
	if !ok {
		return 0, false
	}
	n, ok := val.(runtime.NumberValue)
	return n.Val, ok
}
