package runtime

import "github.com/Pancakey8/lisp/pkg/ast"

// Expr is a translated expression: a Literal wrapping a value, a Quoted form
// that reduces to its contents verbatim, or Null.
type Expr interface {
	isExpr()
}

// Literal wraps a value that has not been reduced yet. Pos is the source
// location it was translated from; synthesized literals use the zero position.
type Literal struct {
	Value Value
	Pos   ast.Position
}

func (Literal) isExpr() {}

// Quoted marks Form as data.
type Quoted struct {
	Form Expr
	Pos  ast.Position
}

func (Quoted) isExpr() {}

// Null is the empty result, bound to the symbol `nil`.
type Null struct{}

func (Null) isExpr() {}

func Lit(v Value) Literal {
	return Literal{Value: v}
}

func Num(v float64) Literal {
	return Literal{Value: NumberValue{Val: v}}
}

func Str(v string) Literal {
	return Literal{Value: StringValue{Val: v}}
}

func Sym(name string) Literal {
	return Literal{Value: SymbolValue{Name: name}}
}

func List(elements ...Expr) Literal {
	if elements == nil {
		elements = []Expr{}
	}
	return Literal{Value: ListValue{Elements: elements}}
}

// IsNull reports whether e is the Null expression.
func IsNull(e Expr) bool {
	_, ok := e.(Null)
	return ok
}

// ValueOf returns the value wrapped by a Literal.
func ValueOf(e Expr) (Value, bool) {
	lit, ok := e.(Literal)
	if !ok || lit.Value == nil {
		return nil, false
	}
	return lit.Value, true
}

// PosOf returns the source position carried by e, or the origin for Null.
func PosOf(e Expr) ast.Position {
	switch v := e.(type) {
	case Literal:
		return v.Pos
	case Quoted:
		return v.Pos
	default:
		return ast.Position{}
	}
}
