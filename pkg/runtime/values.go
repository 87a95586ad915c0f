package runtime

import (
	"fmt"
	"io"

	"github.com/Pancakey8/lisp/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNumber Kind = iota
	KindString
	KindSymbol
	KindList
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSymbol:
		return "symbol"
	case KindList:
		return "list"
	case KindFunction:
		return "function"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is implemented by exactly the five value kinds in this file. Values
// are immutable once constructed.
type Value interface {
	Kind() Kind
	isValue()
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NumberValue struct {
	Val float64
}

func (NumberValue) Kind() Kind { return KindNumber }
func (NumberValue) isValue()   {}

type StringValue struct {
	Val string
}

func (StringValue) Kind() Kind { return KindString }
func (StringValue) isValue()   {}

type SymbolValue struct {
	Name string
}

func (SymbolValue) Kind() Kind { return KindSymbol }
func (SymbolValue) isValue()   {}

//-----------------------------------------------------------------------------
// Lists
//-----------------------------------------------------------------------------

// ListValue holds unevaluated element expressions.
type ListValue struct {
	Elements []Expr
}

func (ListValue) Kind() Kind { return KindList }
func (ListValue) isValue()   {}

//-----------------------------------------------------------------------------
// Functions
//-----------------------------------------------------------------------------

// NativeCallContext gives builtins access to the calling scope and the
// interpreter's output stream.
type NativeCallContext struct {
	Env    *Environment
	Stdout io.Writer
	Pos    ast.Position
}

type NativeFunc func(ctx *NativeCallContext, args []Expr) (Expr, error)

// Function is implemented by BuiltinFunction and UserFunction.
type Function interface {
	Value
	FunctionName() string
	Params() []string
	isFunction()
}

// BuiltinFunction is implemented natively. Formals are descriptive only; each
// implementation checks its own arity.
type BuiltinFunction struct {
	Name    string
	Formals []string
	Impl    NativeFunc
}

func (*BuiltinFunction) Kind() Kind             { return KindFunction }
func (*BuiltinFunction) isValue()               {}
func (*BuiltinFunction) isFunction()            {}
func (f *BuiltinFunction) FunctionName() string { return f.Name }
func (f *BuiltinFunction) Params() []string     { return f.Formals }

// UserFunction is defined in source. Body is reduced in a fresh scope whose
// parent is the global scope.
type UserFunction struct {
	Name    string
	Formals []string
	Body    Expr
}

func (*UserFunction) Kind() Kind             { return KindFunction }
func (*UserFunction) isValue()               {}
func (*UserFunction) isFunction()            {}
func (f *UserFunction) FunctionName() string { return f.Name }
func (f *UserFunction) Params() []string     { return f.Formals }
