package interpreter

import (
	"errors"

	"github.com/Pancakey8/lisp/pkg/ast"
	"github.com/Pancakey8/lisp/pkg/runtime"
)

// specialForm receives its operands unreduced.
type specialForm func(i *Interpreter, pos ast.Position, operands []runtime.Expr, env *runtime.Environment) (runtime.Expr, error)

const restMarker = "&rest"

func (i *Interpreter) specialForms() map[string]specialForm {
	return map[string]specialForm{
		"defun": evalDefun,
		"quote": evalQuote,
	}
}

// evalDefun handles (defun name (params...) body).
func evalDefun(i *Interpreter, pos ast.Position, operands []runtime.Expr, _ *runtime.Environment) (runtime.Expr, error) {
	if len(operands) != 3 {
		return nil, newEvalErrorAt(ArityMismatch, pos, "defun expects 3 argument(s), got %d", len(operands))
	}
	name, ok := symbolName(operands[0])
	if !ok {
		return nil, newEvalErrorAt(UnsupportedForm, runtime.PosOf(operands[0]), "defun: name must be a symbol, got %s", describeExpr(operands[0]))
	}
	paramVal, ok := runtime.ValueOf(operands[1])
	paramList, isList := paramVal.(runtime.ListValue)
	if !ok || !isList {
		return nil, newEvalErrorAt(UnsupportedForm, runtime.PosOf(operands[1]), "defun %s: parameters must be a list, got %s", name, describeExpr(operands[1]))
	}
	params := make([]string, 0, len(paramList.Elements))
	seen := make(map[string]struct{}, len(paramList.Elements))
	for _, el := range paramList.Elements {
		param, ok := symbolName(el)
		if !ok {
			return nil, newEvalErrorAt(UnsupportedForm, runtime.PosOf(el), "defun %s: parameter must be a symbol, got %s", name, describeExpr(el))
		}
		if param == restMarker {
			return nil, newEvalErrorAt(UnsupportedForm, runtime.PosOf(el), "defun %s: %s parameters are not supported", name, restMarker)
		}
		if _, dup := seen[param]; dup {
			return nil, newEvalErrorAt(UnsupportedForm, runtime.PosOf(el), "defun %s: duplicate parameter '%s'", name, param)
		}
		seen[param] = struct{}{}
		params = append(params, param)
	}
	if err := i.DefineFunction(name, params, operands[2]); err != nil {
		if errors.Is(err, runtime.ErrDuplicateFunction) {
			evalErr := newEvalErrorAt(UnsupportedForm, pos, "defun: function '%s' is already defined", name)
			evalErr.Err = err
			return nil, evalErr
		}
		return nil, err
	}
	return runtime.Null{}, nil
}

// evalQuote handles (quote form), the long form of 'form.
func evalQuote(_ *Interpreter, pos ast.Position, operands []runtime.Expr, _ *runtime.Environment) (runtime.Expr, error) {
	if len(operands) != 1 {
		return nil, newEvalErrorAt(ArityMismatch, pos, "quote expects 1 argument(s), got %d", len(operands))
	}
	return operands[0], nil
}

func symbolName(e runtime.Expr) (string, bool) {
	val, ok := runtime.ValueOf(e)
	if !ok {
		return "", false
	}
	sym, ok := val.(runtime.SymbolValue)
	return sym.Name, ok
}
