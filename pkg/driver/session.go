// Package driver ties the lexer, parser and interpreter together into
// sessions, renders diagnostics, and manages lispy.yml preludes.
package driver

import (
	"fmt"
	"io"
	"os"

	"github.com/Pancakey8/lisp/pkg/ast"
	"github.com/Pancakey8/lisp/pkg/interpreter"
	"github.com/Pancakey8/lisp/pkg/lexer"
	"github.com/Pancakey8/lisp/pkg/parser"
	"github.com/Pancakey8/lisp/pkg/runtime"
)

// Options configures a Session.
type Options struct {
	Stdout   io.Writer
	Trace    io.Writer
	MaxDepth int
}

// Session runs sources through lex, parse and eval against one interpreter,
// so definitions from earlier sources stay visible to later ones.
type Session struct {
	interp *interpreter.Interpreter
}

func NewSession(opts Options) *Session {
	return &Session{
		interp: interpreter.NewWithOptions(interpreter.Options{
			Stdout:   opts.Stdout,
			Trace:    opts.Trace,
			MaxDepth: opts.MaxDepth,
		}),
	}
}

func (s *Session) Interpreter() *interpreter.Interpreter {
	return s.interp
}

// Tokens lexes src, returning a *DiagnosticError on failure.
func Tokens(name, src string) ([]lexer.Token, error) {
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return nil, diagnosticError(name, src, err)
	}
	return tokens, nil
}

// Parse lexes and parses src, returning a *DiagnosticError on failure.
func Parse(name, src string) ([]ast.Node, error) {
	nodes, err := parser.ParseSource(src)
	if err != nil {
		return nil, diagnosticError(name, src, err)
	}
	return nodes, nil
}

// EvalString runs src and returns the value of its last form. Pipeline
// failures come back as *DiagnosticError; an exit request is returned as is
// so callers can use interpreter.ExitCodeFromError.
func (s *Session) EvalString(name, src string) (runtime.Expr, error) {
	nodes, err := Parse(name, src)
	if err != nil {
		return nil, err
	}
	return s.EvalNodes(name, src, nodes)
}

// EvalNodes evaluates already parsed roots; src is used for diagnostics only.
func (s *Session) EvalNodes(name, src string, nodes []ast.Node) (runtime.Expr, error) {
	result, err := s.interp.EvaluateAll(nodes)
	if err != nil {
		if _, ok := interpreter.ExitCodeFromError(err); ok {
			return nil, err
		}
		return nil, diagnosticError(name, src, err)
	}
	return result, nil
}

// EvalFile reads and runs the file at path.
func (s *Session) EvalFile(path string) (runtime.Expr, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return s.EvalString(path, string(data))
}

// LoadFiles runs each file in order, stopping at the first failure.
func (s *Session) LoadFiles(paths []string) error {
	for _, path := range paths {
		if _, err := s.EvalFile(path); err != nil {
			return err
		}
	}
	return nil
}

// RunSource performs lex, parse and eval on src with a fresh session.
func RunSource(name, src string, opts Options) (runtime.Expr, error) {
	return NewSession(opts).EvalString(name, src)
}

func diagnosticError(name, src string, err error) error {
	diag, ok := FromError(name, err)
	if !ok {
		return err
	}
	return &DiagnosticError{Diagnostic: diag, Source: src, Err: err}
}
