package runtime

import (
	"errors"
	"strings"
	"testing"

	"github.com/Pancakey8/lisp/pkg/ast"
)

func TestEnvironmentChain(t *testing.T) {
	global := NewEnvironment(nil)
	global.Define("nil", Null{})
	global.Define("x", Num(1))

	local := global.Extend()
	local.Define("x", Num(2))

	v, ok := local.Lookup("x")
	if !ok {
		t.Fatalf("Lookup(x) failed")
	}
	if n, ok := ValueOf(v); !ok || n.(NumberValue).Val != 2 {
		t.Fatalf("local x = %#v, want 2", v)
	}
	if v, ok := global.Lookup("x"); !ok || v.(Literal).Value.(NumberValue).Val != 1 {
		t.Fatalf("global x should be untouched, got %#v", v)
	}
	if v, ok := local.Lookup("nil"); !ok || !IsNull(v) {
		t.Fatalf("nil should resolve through parent, got %#v", v)
	}
	if _, ok := local.Lookup("missing"); ok {
		t.Fatalf("missing binding should not resolve")
	}
	local.Define("y", Num(3))
	if _, ok := global.Lookup("y"); ok {
		t.Fatalf("local bindings must not leak into the parent")
	}
}

func TestStringify(t *testing.T) {
	cases := []struct {
		name string
		expr Expr
		want string
	}{
		{"number", Num(3.5), "3.5"},
		{"integer", Num(6), "6"},
		{"symbol", Sym("x"), "'x"},
		{"string", Str("hi there"), "hi there"},
		{"empty list", List(), "()"},
		{"flat list", List(Num(1), Num(2)), "(1, 2)"},
		{"nested list", List(Sym("a"), List(Str("b"), Null{})), "('a, (b, nil))"},
		{"null", Null{}, "nil"},
		{"quoted", Quoted{Form: Sym("q")}, "''q"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Stringify(tc.expr)
			if err != nil {
				t.Fatalf("Stringify error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Stringify = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestStringifyRejectsFunctions(t *testing.T) {
	fn := &BuiltinFunction{Name: "f"}
	if _, err := Stringify(Lit(fn)); !errors.Is(err, ErrUnprintable) {
		t.Fatalf("expected ErrUnprintable, got %v", err)
	}
	nested := List(Num(1), Lit(&UserFunction{Name: "g"}))
	if _, err := Stringify(nested); !errors.Is(err, ErrUnprintable) {
		t.Fatalf("expected ErrUnprintable for nested function, got %v", err)
	}
}

func TestFunctionTableFirstDefinitionWins(t *testing.T) {
	table := NewFunctionTable()
	first := &BuiltinFunction{Name: "f", Formals: []string{"a"}}
	if err := table.Register(first); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if err := table.Register(&UserFunction{Name: "f"}); !errors.Is(err, ErrDuplicateFunction) {
		t.Fatalf("expected ErrDuplicateFunction, got %v", err)
	}
	if err := table.Register(&UserFunction{Name: "g"}); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	fn, ok := table.Lookup("f")
	if !ok || fn != Function(first) {
		t.Fatalf("Lookup(f) = %#v", fn)
	}
	if names := table.Names(); len(names) != 2 || names[0] != "f" || names[1] != "g" {
		t.Fatalf("Names() = %v", names)
	}
	if _, ok := table.Lookup("h"); ok {
		t.Fatalf("unexpected lookup hit")
	}
}

func TestKindStrings(t *testing.T) {
	values := []Value{NumberValue{}, StringValue{}, SymbolValue{}, ListValue{}, &UserFunction{}}
	want := []string{"number", "string", "symbol", "list", "function"}
	for i, v := range values {
		if got := v.Kind().String(); got != want[i] {
			t.Fatalf("Kind(%T) = %s, want %s", v, got, want[i])
		}
	}
}

func deepList(levels int) Expr {
	e := Expr(Num(1))
	for i := 0; i < levels; i++ {
		e = List(e)
	}
	return e
}

func TestStringifyNestingLimit(t *testing.T) {
	text, err := Stringify(deepList(ast.MaxNesting))
	if err != nil {
		t.Fatalf("Stringify at the limit: %v", err)
	}
	if !strings.HasPrefix(text, "((") || strings.Count(text, "(") != ast.MaxNesting {
		t.Fatalf("unexpected rendering of %d levels", ast.MaxNesting)
	}
	if _, err := Stringify(deepList(ast.MaxNesting + 1)); !errors.Is(err, ErrTooDeep) {
		t.Fatalf("expected ErrTooDeep, got %v", err)
	}
	if _, err := Stringify(Quoted{Form: deepList(ast.MaxNesting)}); !errors.Is(err, ErrTooDeep) {
		t.Fatalf("quotes should count toward the limit, got %v", err)
	}
}
