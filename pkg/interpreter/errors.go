package interpreter

import (
	"fmt"

	"github.com/Pancakey8/lisp/pkg/ast"
)

// ErrorKind classifies evaluation failures.
type ErrorKind int

const (
	UnboundSymbol ErrorKind = iota + 1
	UnknownFunction
	ArityMismatch
	TypeMismatch
	UnsupportedForm
	StackExhausted
	// NativeFailure wraps a builtin error that is not an *EvalError, such as
	// a failed write to stdout.
	NativeFailure
)

func (k ErrorKind) String() string {
	switch k {
	case UnboundSymbol:
		return "UnboundSymbol"
	case UnknownFunction:
		return "UnknownFunction"
	case ArityMismatch:
		return "ArityMismatch"
	case TypeMismatch:
		return "TypeMismatch"
	case UnsupportedForm:
		return "UnsupportedForm"
	case StackExhausted:
		return "StackExhausted"
	case NativeFailure:
		return "NativeFailure"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error lets a kind be used as an errors.Is target.
func (k ErrorKind) Error() string {
	return "eval: " + k.String()
}

// Frame is one active call: the callee name and the location of the call form.
type Frame struct {
	Function string
	Pos      ast.Position
}

// EvalError is the single error type produced by evaluation.
type EvalError struct {
	Kind    ErrorKind
	Message string
	Pos     ast.Position
	HasPos  bool
	// Stack holds the active frames at the time of failure, outermost first.
	Stack []Frame
	Err   error
}

func (e *EvalError) Error() string {
	return e.Message
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

func (e *EvalError) Is(target error) bool {
	kind, ok := target.(ErrorKind)
	return ok && kind == e.Kind
}

func newEvalError(kind ErrorKind, format string, args ...any) *EvalError {
	return &EvalError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func newEvalErrorAt(kind ErrorKind, pos ast.Position, format string, args ...any) *EvalError {
	err := newEvalError(kind, format, args...)
	err.Pos = pos
	err.HasPos = true
	return err
}

// ArityError reports a call with the wrong number of arguments. want is a
// human description such as "1" or "at least 2".
func ArityError(name, want string, got int) *EvalError {
	return newEvalError(ArityMismatch, "%s expects %s argument(s), got %d", name, want, got)
}

// TypeError reports an argument of the wrong kind.
func TypeError(name string, index int, want, got string) *EvalError {
	return newEvalError(TypeMismatch, "%s: argument %d must be %s, got %s", name, index+1, want, got)
}
