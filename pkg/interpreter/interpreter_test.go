package interpreter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Pancakey8/lisp/pkg/ast"
	"github.com/Pancakey8/lisp/pkg/parser"
	"github.com/Pancakey8/lisp/pkg/runtime"
)

func evalSource(t *testing.T, interp *Interpreter, src string) (runtime.Expr, error) {
	t.Helper()
	nodes, err := parser.ParseSource(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return interp.EvaluateAll(nodes)
}

func mustEval(t *testing.T, interp *Interpreter, src string) runtime.Expr {
	t.Helper()
	result, err := evalSource(t, interp, src)
	if err != nil {
		t.Fatalf("evaluate %q: %v", src, err)
	}
	return result
}

func expectKind(t *testing.T, err error, kind ErrorKind) *EvalError {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected %s, got %v", kind, err)
	}
	var evalErr *EvalError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected *EvalError, got %T", err)
	}
	return evalErr
}

func numberOf(t *testing.T, e runtime.Expr) float64 {
	t.Helper()
	val, ok := runtime.ValueOf(e)
	if !ok {
		t.Fatalf("expected literal, got %#v", e)
	}
	n, ok := val.(runtime.NumberValue)
	if !ok {
		t.Fatalf("expected number, got %#v", val)
	}
	return n.Val
}

func TestTranslateKeepsListChildrenUnreduced(t *testing.T) {
	node := ast.At(ast.Call("+", ast.At(ast.Num(1), 0, 3), ast.At(ast.ID("y"), 0, 5)), 0, 0)
	expr, err := Translate(node)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	lit, ok := expr.(runtime.Literal)
	if !ok || lit.Pos != (ast.Position{Row: 0, Col: 0}) {
		t.Fatalf("unexpected translation %#v", expr)
	}
	list := lit.Value.(runtime.ListValue)
	if len(list.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(list.Elements))
	}
	sym, ok := list.Elements[2].(runtime.Literal).Value.(runtime.SymbolValue)
	if !ok || sym.Name != "y" {
		t.Fatalf("expected symbol y, got %#v", list.Elements[2])
	}
	if pos := runtime.PosOf(list.Elements[1]); pos != (ast.Position{Row: 0, Col: 3}) {
		t.Fatalf("child position = %v", pos)
	}
}

func TestTranslateQuoteMarksData(t *testing.T) {
	expr, err := Translate(ast.At(ast.Q(ast.ID("x")), 2, 1))
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	quoted, ok := expr.(runtime.Quoted)
	if !ok || quoted.Pos != (ast.Position{Row: 2, Col: 1}) {
		t.Fatalf("expected quoted form, got %#v", expr)
	}
}

func TestAddition(t *testing.T) {
	interp := New()
	if got := numberOf(t, mustEval(t, interp, "(+ 1 2 3)")); got != 6 {
		t.Fatalf("(+ 1 2 3) = %v", got)
	}
	if got := numberOf(t, mustEval(t, interp, "(+ 1.5 (+ 2 0.25))")); got != 3.75 {
		t.Fatalf("nested addition = %v", got)
	}
}

func TestAdditionErrors(t *testing.T) {
	interp := New()
	_, err := evalSource(t, interp, "(+ 1)")
	expectKind(t, err, ArityMismatch)

	_, err = evalSource(t, interp, `(+ 1 "a")`)
	evalErr := expectKind(t, err, TypeMismatch)
	if !evalErr.HasPos || evalErr.Pos != (ast.Position{Row: 0, Col: 0}) {
		t.Fatalf("expected call-site position, got %v (has=%v)", evalErr.Pos, evalErr.HasPos)
	}

	_, err = evalSource(t, interp, "(+ 1 nil)")
	expectKind(t, err, TypeMismatch)
}

func TestPrintln(t *testing.T) {
	var out bytes.Buffer
	interp := NewWithOptions(Options{Stdout: &out})
	result := mustEval(t, interp, `(println "Hello, world")`)
	if !runtime.IsNull(result) {
		t.Fatalf("println should return Null, got %#v", result)
	}
	if out.String() != "Hello, world\n" {
		t.Fatalf("unexpected output %q", out.String())
	}

	_, err := evalSource(t, interp, "(println 5)")
	expectKind(t, err, TypeMismatch)
	_, err = evalSource(t, interp, `(println "a" "b")`)
	expectKind(t, err, ArityMismatch)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestPrintlnWriteFailure(t *testing.T) {
	interp := NewWithOptions(Options{Stdout: failingWriter{}})
	_, err := evalSource(t, interp, `(println "x")`)
	evalErr := expectKind(t, err, NativeFailure)
	if !strings.Contains(evalErr.Error(), "disk full") {
		t.Fatalf("unexpected message %q", evalErr.Error())
	}
}

func TestStringBuiltin(t *testing.T) {
	interp := New()
	cases := map[string]string{
		"(string 3.5)":            "3.5",
		"(string 'x)":             "'x",
		"(string ())":             "()",
		"(string '(1 2))":         "(1, 2)",
		`(string '(1 "a" (b)))`:   "(1, a, ('b))",
		`(string "plain")`:        "plain",
		"(string nil)":            "nil",
		"(string (string 'sym))":  "'sym",
		"(string (quote (1 ())))": "(1, ())",
	}
	for src, want := range cases {
		result := mustEval(t, interp, src)
		val, ok := runtime.ValueOf(result)
		str, isStr := val.(runtime.StringValue)
		if !ok || !isStr || str.Val != want {
			t.Fatalf("%s = %#v, want %q", src, result, want)
		}
	}
}

func TestStringRejectsFunctions(t *testing.T) {
	interp := New()
	interp.GlobalEnvironment().Define("f", runtime.Lit(&runtime.BuiltinFunction{Name: "f"}))
	_, err := evalSource(t, interp, "(string f)")
	evalErr := expectKind(t, err, TypeMismatch)
	if !errors.Is(evalErr, runtime.ErrUnprintable) {
		t.Fatalf("expected wrapped ErrUnprintable, got %v", evalErr.Err)
	}
}

func TestSymbolLookup(t *testing.T) {
	interp := New()
	_, err := evalSource(t, interp, "\n  y")
	evalErr := expectKind(t, err, UnboundSymbol)
	if evalErr.Pos != (ast.Position{Row: 1, Col: 2}) {
		t.Fatalf("unexpected position %v", evalErr.Pos)
	}

	if result := mustEval(t, interp, "nil"); !runtime.IsNull(result) {
		t.Fatalf("nil should evaluate to Null, got %#v", result)
	}
}

func TestSelfEvaluatingForms(t *testing.T) {
	interp := New()
	if got := numberOf(t, mustEval(t, interp, "42")); got != 42 {
		t.Fatalf("42 = %v", got)
	}
	result := mustEval(t, interp, "()")
	list, ok := result.(runtime.Literal).Value.(runtime.ListValue)
	if !ok || len(list.Elements) != 0 {
		t.Fatalf("() should reduce to itself, got %#v", result)
	}
}

func TestQuoteReturnsDataVerbatim(t *testing.T) {
	interp := New()
	result := mustEval(t, interp, "'(1 2)")
	list, ok := result.(runtime.Literal).Value.(runtime.ListValue)
	if !ok || len(list.Elements) != 2 {
		t.Fatalf("expected two-element list, got %#v", result)
	}
	if numberOf(t, list.Elements[0]) != 1 || numberOf(t, list.Elements[1]) != 2 {
		t.Fatalf("unexpected elements %#v", list.Elements)
	}

	sym := mustEval(t, interp, "(quote undefined-name)")
	if v, ok := sym.(runtime.Literal).Value.(runtime.SymbolValue); !ok || v.Name != "undefined-name" {
		t.Fatalf("quote should return the symbol, got %#v", sym)
	}

	_, err := evalSource(t, interp, "(quote a b)")
	expectKind(t, err, ArityMismatch)
}

func TestCallPositionErrors(t *testing.T) {
	interp := New()
	_, err := evalSource(t, interp, "(1 2)")
	expectKind(t, err, UnsupportedForm)

	_, err = evalSource(t, interp, "(foo 1)")
	expectKind(t, err, UnknownFunction)

	// the callee is resolved before any argument is reduced
	_, err = evalSource(t, interp, "(foo y)")
	expectKind(t, err, UnknownFunction)

	_, err = evalSource(t, interp, "(+ 1 (bar))")
	expectKind(t, err, UnknownFunction)
}

func TestUserDefinedFunctions(t *testing.T) {
	var out bytes.Buffer
	interp := NewWithOptions(Options{Stdout: &out})
	result := mustEval(t, interp, `
(defun add3 (a b c) (+ a (+ b c)))
(defun greet (name) (println name))
(greet "hi")
(add3 1 2 3)`)
	if got := numberOf(t, result); got != 6 {
		t.Fatalf("add3 = %v", got)
	}
	if out.String() != "hi\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
	names := interp.Functions().Names()
	if names[len(names)-2] != "add3" || names[len(names)-1] != "greet" {
		t.Fatalf("functions should keep definition order, got %v", names)
	}
}

func TestDefunReturnsNull(t *testing.T) {
	interp := New()
	if result := mustEval(t, interp, "(defun id (x) x)"); !runtime.IsNull(result) {
		t.Fatalf("defun should return Null, got %#v", result)
	}
}

func TestDefunRejectsMalformedDefinitions(t *testing.T) {
	cases := []struct {
		src  string
		kind ErrorKind
	}{
		{"(defun f (x))", ArityMismatch},
		{"(defun 1 (x) x)", UnsupportedForm},
		{"(defun f x x)", UnsupportedForm},
		{"(defun f (1) 1)", UnsupportedForm},
		{"(defun f (a &rest) a)", UnsupportedForm},
		{"(defun f (a a) a)", UnsupportedForm},
		{"(defun + (a b) a)", UnsupportedForm},
		{"(defun quote (a) a)", UnsupportedForm},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			_, err := evalSource(t, New(), tc.src)
			expectKind(t, err, tc.kind)
		})
	}
}

func TestFirstDefinitionWins(t *testing.T) {
	interp := New()
	mustEval(t, interp, "(defun f () 1)")
	_, err := evalSource(t, interp, "(defun f () 2)")
	evalErr := expectKind(t, err, UnsupportedForm)
	if !errors.Is(evalErr, runtime.ErrDuplicateFunction) {
		t.Fatalf("expected wrapped ErrDuplicateFunction, got %v", evalErr.Err)
	}
	if got := numberOf(t, mustEval(t, interp, "(f)")); got != 1 {
		t.Fatalf("(f) = %v, want 1", got)
	}
}

func TestUserFunctionArity(t *testing.T) {
	interp := New()
	mustEval(t, interp, "(defun pair (a b) a)")
	_, err := evalSource(t, interp, "(pair 1)")
	expectKind(t, err, ArityMismatch)
	_, err = evalSource(t, interp, "(pair 1 2 3)")
	expectKind(t, err, ArityMismatch)
}

func TestLocalScopeIsPoppedAfterCall(t *testing.T) {
	interp := New()
	mustEval(t, interp, "(defun f (x) x)")
	if got := numberOf(t, mustEval(t, interp, "(f 7)")); got != 7 {
		t.Fatalf("(f 7) = %v", got)
	}
	_, err := evalSource(t, interp, "x")
	expectKind(t, err, UnboundSymbol)

	mustEval(t, interp, `(defun bad (y) (+ y "a"))`)
	_, err = evalSource(t, interp, "(bad 1)")
	expectKind(t, err, TypeMismatch)
	_, err = evalSource(t, interp, "y")
	expectKind(t, err, UnboundSymbol)
	if interp.depth != 0 || len(interp.stack) != 0 {
		t.Fatalf("call state leaked: depth=%d stack=%v", interp.depth, interp.stack)
	}
}

func TestLocalScopeChainsToGlobalNotCaller(t *testing.T) {
	interp := New()
	interp.GlobalEnvironment().Define("g", runtime.Num(10))
	result := mustEval(t, interp, "(defun addg (x) (+ x g)) (addg 5)")
	if got := numberOf(t, result); got != 15 {
		t.Fatalf("(addg 5) = %v", got)
	}

	mustEval(t, interp, "(defun inner () y) (defun outer (y) (inner))")
	_, err := evalSource(t, interp, "(outer 1)")
	expectKind(t, err, UnboundSymbol)
}

func TestErrorCarriesCallStack(t *testing.T) {
	interp := New()
	_, err := evalSource(t, interp, "(defun f (x) (+ x \"a\"))\n(f 1)")
	evalErr := expectKind(t, err, TypeMismatch)
	if evalErr.Pos != (ast.Position{Row: 0, Col: 13}) {
		t.Fatalf("unexpected error position %v", evalErr.Pos)
	}
	if len(evalErr.Stack) != 2 {
		t.Fatalf("expected two frames, got %#v", evalErr.Stack)
	}
	if evalErr.Stack[0] != (Frame{Function: "f", Pos: ast.Position{Row: 1, Col: 0}}) {
		t.Fatalf("unexpected outer frame %#v", evalErr.Stack[0])
	}
	if evalErr.Stack[1].Function != "+" {
		t.Fatalf("unexpected inner frame %#v", evalErr.Stack[1])
	}
}

func TestRecursionExhaustsStack(t *testing.T) {
	interp := NewWithOptions(Options{MaxDepth: 50})
	_, err := evalSource(t, interp, "(defun forever (n) (forever n)) (forever 1)")
	evalErr := expectKind(t, err, StackExhausted)
	if len(evalErr.Stack) != 50 {
		t.Fatalf("expected 50 frames at exhaustion, got %d", len(evalErr.Stack))
	}
	if interp.depth != 0 || len(interp.stack) != 0 {
		t.Fatalf("call state leaked: depth=%d stack=%d", interp.depth, len(interp.stack))
	}
	if got := numberOf(t, mustEval(t, interp, "(+ 1 1)")); got != 2 {
		t.Fatalf("interpreter unusable after exhaustion: %v", got)
	}
}

func TestDeepNestingExhaustsStack(t *testing.T) {
	interp := NewWithOptions(Options{MaxDepth: 10})
	src := strings.Repeat("(+ 1 ", 11) + "1" + strings.Repeat(")", 11)
	_, err := evalSource(t, interp, src)
	expectKind(t, err, StackExhausted)

	ok := strings.Repeat("(+ 1 ", 10) + "1" + strings.Repeat(")", 10)
	if got := numberOf(t, mustEval(t, interp, ok)); got != 11 {
		t.Fatalf("depth-10 nesting = %v", got)
	}
}

func TestDefaultMaxDepth(t *testing.T) {
	_, err := evalSource(t, New(), "(defun down (n) (down n))\n(down 1)")
	evalErr := expectKind(t, err, StackExhausted)
	if want := fmt.Sprintf("maximum call depth %d exceeded", DefaultMaxDepth); evalErr.Message != want {
		t.Fatalf("message = %q, want %q", evalErr.Message, want)
	}
	if len(evalErr.Stack) != DefaultMaxDepth {
		t.Fatalf("expected %d frames, got %d", DefaultMaxDepth, len(evalErr.Stack))
	}
}

func TestTraceWritesOneLinePerCall(t *testing.T) {
	var trace bytes.Buffer
	interp := NewWithOptions(Options{Trace: &trace})
	mustEval(t, interp, `(+ 1 (+ 2 3)) (string "s")`)
	want := "trace: 2 + 2 3\ntrace: 1 + 1 5\ntrace: 1 string \"s\"\n"
	if trace.String() != want {
		t.Fatalf("trace = %q, want %q", trace.String(), want)
	}
}

func TestExitBuiltin(t *testing.T) {
	interp := New()
	_, err := evalSource(t, interp, "(defun quit () (exit 3)) (quit) (println 1)")
	code, ok := ExitCodeFromError(err)
	if !ok || code != 3 {
		t.Fatalf("expected exit 3, got %v", err)
	}
	_, err = evalSource(t, interp, "(exit 1.5)")
	expectKind(t, err, TypeMismatch)
}

func TestRegisterBuiltin(t *testing.T) {
	interp := New()
	err := interp.RegisterBuiltin("double", []string{"n"}, func(_ *runtime.NativeCallContext, args []runtime.Expr) (runtime.Expr, error) {
		if len(args) != 1 {
			return nil, ArityError("double", "1", len(args))
		}
		n, ok := numberArg(args[0])
		if !ok {
			return nil, TypeError("double", 0, "number", describeExpr(args[0]))
		}
		return runtime.Num(n * 2), nil
	})
	if err != nil {
		t.Fatalf("RegisterBuiltin: %v", err)
	}
	if got := numberOf(t, mustEval(t, interp, "(double 21)")); got != 42 {
		t.Fatalf("(double 21) = %v", got)
	}
	if err := interp.RegisterBuiltin("println", nil, nil); !errors.Is(err, runtime.ErrDuplicateFunction) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if err := interp.RegisterBuiltin("defun", nil, nil); !errors.Is(err, runtime.ErrDuplicateFunction) {
		t.Fatalf("expected special form conflict, got %v", err)
	}
}

func TestDefunErrorsPointAtOffendingOperand(t *testing.T) {
	cases := []struct {
		src string
		pos ast.Position
	}{
		{"(defun 1 (x) x)", ast.Position{Row: 0, Col: 7}},
		{"(defun f x x)", ast.Position{Row: 0, Col: 9}},
		{"(defun f (a\n  2) a)", ast.Position{Row: 1, Col: 2}},
		{"(defun f (a b a) a)", ast.Position{Row: 0, Col: 14}},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			_, err := evalSource(t, New(), tc.src)
			evalErr := expectKind(t, err, UnsupportedForm)
			if evalErr.Pos != tc.pos {
				t.Fatalf("error position = %v, want %v", evalErr.Pos, tc.pos)
			}
		})
	}
}

func nestedNode(levels int) ast.Node {
	node := ast.Node(ast.NewNumberLiteral(1))
	for i := 0; i < levels; i++ {
		node = ast.NewList([]ast.Node{node})
	}
	return node
}

func TestTranslateNestingLimit(t *testing.T) {
	if _, err := Translate(nestedNode(ast.MaxNesting)); err != nil {
		t.Fatalf("Translate at the limit: %v", err)
	}
	_, err := Translate(nestedNode(ast.MaxNesting + 1))
	expectKind(t, err, StackExhausted)

	quoted := ast.NewQuote(nestedNode(ast.MaxNesting))
	_, err = Translate(quoted)
	expectKind(t, err, StackExhausted)
}

func TestStringOfTooDeepValue(t *testing.T) {
	interp := New()
	err := interp.RegisterBuiltin("deep", nil, func(_ *runtime.NativeCallContext, _ []runtime.Expr) (runtime.Expr, error) {
		value := runtime.Expr(runtime.Num(1))
		for i := 0; i <= ast.MaxNesting; i++ {
			value = runtime.List(value)
		}
		return value, nil
	})
	if err != nil {
		t.Fatalf("RegisterBuiltin: %v", err)
	}
	_, err = evalSource(t, interp, "(string (deep))")
	evalErr := expectKind(t, err, StackExhausted)
	if !errors.Is(evalErr, runtime.ErrTooDeep) {
		t.Fatalf("expected wrapped ErrTooDeep, got %v", evalErr.Err)
	}
	if evalErr.Pos != (ast.Position{Row: 0, Col: 0}) {
		t.Fatalf("error position = %v", evalErr.Pos)
	}
}
