package interpreter

import (
	"github.com/Pancakey8/lisp/pkg/ast"
	"github.com/Pancakey8/lisp/pkg/runtime"
)

// Translate converts an AST node into an unreduced expression. List children
// are translated but never reduced here; a quote marks its form as data.
func Translate(node ast.Node) (runtime.Expr, error) {
	return translate(node, 0)
}

func translate(node ast.Node, depth int) (runtime.Expr, error) {
	switch n := node.(type) {
	case *ast.NumberLiteral:
		return runtime.Literal{Value: runtime.NumberValue{Val: n.Value}, Pos: n.Pos()}, nil
	case *ast.StringLiteral:
		return runtime.Literal{Value: runtime.StringValue{Val: n.Value}, Pos: n.Pos()}, nil
	case *ast.Identifier:
		return runtime.Literal{Value: runtime.SymbolValue{Name: n.Name}, Pos: n.Pos()}, nil
	case *ast.List:
		if depth >= ast.MaxNesting {
			return nil, tooDeep(n.Pos())
		}
		elements := make([]runtime.Expr, 0, len(n.Elements))
		for _, child := range n.Elements {
			expr, err := translate(child, depth+1)
			if err != nil {
				return nil, err
			}
			elements = append(elements, expr)
		}
		return runtime.Literal{Value: runtime.ListValue{Elements: elements}, Pos: n.Pos()}, nil
	case *ast.Quote:
		if n.Form == nil {
			return nil, newEvalErrorAt(UnsupportedForm, n.Pos(), "quote without a form")
		}
		if depth >= ast.MaxNesting {
			return nil, tooDeep(n.Pos())
		}
		form, err := translate(n.Form, depth+1)
		if err != nil {
			return nil, err
		}
		return runtime.Quoted{Form: form, Pos: n.Pos()}, nil
	case nil:
		return nil, newEvalError(UnsupportedForm, "cannot translate nil node")
	default:
		return nil, newEvalErrorAt(UnsupportedForm, node.Pos(), "unsupported node %s", node.NodeType())
	}
}

func tooDeep(pos ast.Position) *EvalError {
	return newEvalErrorAt(StackExhausted, pos, "form nests deeper than %d levels", ast.MaxNesting)
}
