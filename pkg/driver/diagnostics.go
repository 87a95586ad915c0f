package driver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Pancakey8/lisp/pkg/ast"
	"github.com/Pancakey8/lisp/pkg/interpreter"
	"github.com/Pancakey8/lisp/pkg/lexer"
	"github.com/Pancakey8/lisp/pkg/parser"
)

// Stage names the pipeline step that produced a diagnostic.
type Stage string

const (
	StageLex   Stage = "lex"
	StageParse Stage = "parse"
	StageEval  Stage = "eval"
)

// maxDiagnosticNotes caps the call-site notes attached to one diagnostic.
const maxDiagnosticNotes = 8

// DiagnosticLocation references a source position. Line and Column are
// one-based; zero means unknown.
type DiagnosticLocation struct {
	Path   string
	Line   int
	Column int
}

func locationFromPosition(path string, pos ast.Position) DiagnosticLocation {
	return DiagnosticLocation{Path: path, Line: pos.Row + 1, Column: pos.Col + 1}
}

type DiagnosticNote struct {
	Message  string
	Location DiagnosticLocation
}

// Diagnostic is the structured form of the first error of a run.
type Diagnostic struct {
	Stage    Stage
	Kind     string
	Message  string
	Location DiagnosticLocation
	Notes    []DiagnosticNote
}

// DiagnosticError carries a diagnostic through error returns. Source holds the
// text the diagnostic points into, when known.
type DiagnosticError struct {
	Diagnostic Diagnostic
	Source     string
	Err        error
}

func (e *DiagnosticError) Error() string {
	return DescribeDiagnostic(e.Diagnostic)
}

func (e *DiagnosticError) Unwrap() error {
	return e.Err
}

// FromError classifies a lexer, parser or evaluator error. It reports false
// for errors produced outside the pipeline.
func FromError(path string, err error) (Diagnostic, bool) {
	var lexErr *lexer.LexError
	if errors.As(err, &lexErr) {
		return Diagnostic{
			Stage:    StageLex,
			Kind:     lexErr.Kind.String(),
			Message:  lexErr.Error(),
			Location: locationFromPosition(path, lexErr.Pos),
		}, true
	}
	var parseErr *parser.ParseError
	if errors.As(err, &parseErr) {
		return Diagnostic{
			Stage:    StageParse,
			Kind:     parseErr.Kind.String(),
			Message:  parseErr.Error(),
			Location: locationFromPosition(path, parseErr.Pos),
		}, true
	}
	var evalErr *interpreter.EvalError
	if errors.As(err, &evalErr) {
		diag := Diagnostic{
			Stage:   StageEval,
			Kind:    evalErr.Kind.String(),
			Message: evalErr.Error(),
		}
		if evalErr.HasPos {
			diag.Location = locationFromPosition(path, evalErr.Pos)
		} else if len(evalErr.Stack) > 0 {
			diag.Location = locationFromPosition(path, evalErr.Stack[len(evalErr.Stack)-1].Pos)
		} else {
			diag.Location = DiagnosticLocation{Path: path}
		}
		diag.Notes = callNotes(path, evalErr.Stack, diag.Location)
		return diag, true
	}
	return Diagnostic{}, false
}

func callNotes(path string, stack []interpreter.Frame, primary DiagnosticLocation) []DiagnosticNote {
	var notes []DiagnosticNote
	for idx := len(stack) - 1; idx >= 0 && len(notes) < maxDiagnosticNotes; idx-- {
		loc := locationFromPosition(path, stack[idx].Pos)
		if loc == primary {
			continue
		}
		notes = append(notes, DiagnosticNote{
			Message:  fmt.Sprintf("%s called from here", stack[idx].Function),
			Location: loc,
		})
	}
	return notes
}

// DescribeDiagnostic formats a diagnostic for CLI output.
func DescribeDiagnostic(diag Diagnostic) string {
	message := strings.TrimSpace(diag.Message)
	var b strings.Builder
	b.WriteString(string(diag.Stage))
	b.WriteString(": ")
	if location := formatDiagnosticLocation(diag.Location); location != "" {
		b.WriteString(location)
		b.WriteByte(' ')
	}
	if diag.Kind != "" {
		fmt.Fprintf(&b, "%s: ", diag.Kind)
	}
	b.WriteString(message)
	for _, note := range diag.Notes {
		if noteLoc := formatDiagnosticLocation(note.Location); noteLoc != "" {
			fmt.Fprintf(&b, "\nnote: %s %s", noteLoc, note.Message)
		} else {
			fmt.Fprintf(&b, "\nnote: %s", note.Message)
		}
	}
	return b.String()
}

// DescribeDiagnosticWithSource adds a caret snippet under the first line of
// DescribeDiagnostic when src is available.
func DescribeDiagnosticWithSource(diag Diagnostic, src string) string {
	text := DescribeDiagnostic(diag)
	snippet := sourceSnippet(src, diag.Location.Line, diag.Location.Column)
	if snippet == "" {
		return text
	}
	head, rest, hasRest := strings.Cut(text, "\n")
	if hasRest {
		return head + "\n" + snippet + rest
	}
	return head + "\n" + snippet
}

func sourceSnippet(src string, line, column int) string {
	if src == "" || line < 1 {
		return ""
	}
	lines := strings.Split(src, "\n")
	if line > len(lines) {
		return ""
	}
	if column < 1 {
		column = 1
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", column-1))
	return b.String()
}

func formatDiagnosticLocation(loc DiagnosticLocation) string {
	path := strings.TrimSpace(loc.Path)
	line := loc.Line
	column := loc.Column
	switch {
	case path != "" && line > 0 && column > 0:
		return fmt.Sprintf("%s:%d:%d", path, line, column)
	case path != "" && line > 0:
		return fmt.Sprintf("%s:%d", path, line)
	case path != "":
		return path
	case line > 0 && column > 0:
		return fmt.Sprintf("line %d, column %d", line, column)
	case line > 0:
		return fmt.Sprintf("line %d", line)
	default:
		return ""
	}
}
