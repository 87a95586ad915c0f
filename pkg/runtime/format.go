package runtime

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Pancakey8/lisp/pkg/ast"
)

// ErrUnprintable is returned by Stringify for values with no text form.
var ErrUnprintable = errors.New("value has no string form")

// ErrTooDeep is returned by Stringify for values nested beyond ast.MaxNesting.
var ErrTooDeep = errors.New("value nests too deeply to print")

// FormatNumber renders n in shortest decimal form without an exponent.
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Stringify renders e the way the `string` builtin does: symbols gain a
// leading quote, lists are comma separated in parentheses, Null is "nil".
func Stringify(e Expr) (string, error) {
	var b strings.Builder
	if err := writeExpr(&b, e, 0); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeExpr(b *strings.Builder, e Expr, depth int) error {
	switch v := e.(type) {
	case Null:
		b.WriteString("nil")
		return nil
	case Quoted:
		if depth >= ast.MaxNesting {
			return errTooDeep()
		}
		b.WriteByte('\'')
		return writeExpr(b, v.Form, depth+1)
	case Literal:
		return writeValue(b, v.Value, depth)
	default:
		return fmt.Errorf("%w: %T", ErrUnprintable, e)
	}
}

func writeValue(b *strings.Builder, v Value, depth int) error {
	switch val := v.(type) {
	case NumberValue:
		b.WriteString(FormatNumber(val.Val))
	case StringValue:
		b.WriteString(val.Val)
	case SymbolValue:
		b.WriteByte('\'')
		b.WriteString(val.Name)
	case ListValue:
		if depth >= ast.MaxNesting {
			return errTooDeep()
		}
		b.WriteByte('(')
		for idx, el := range val.Elements {
			if idx > 0 {
				b.WriteString(", ")
			}
			if err := writeExpr(b, el, depth+1); err != nil {
				return err
			}
		}
		b.WriteByte(')')
	case Function:
		return fmt.Errorf("%w: function %s", ErrUnprintable, val.FunctionName())
	default:
		return fmt.Errorf("%w: %T", ErrUnprintable, v)
	}
	return nil
}

func errTooDeep() error {
	return fmt.Errorf("%w: more than %d levels", ErrTooDeep, ast.MaxNesting)
}
