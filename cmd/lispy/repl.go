package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/Pancakey8/lisp/pkg/driver"
	"github.com/Pancakey8/lisp/pkg/interpreter"
	"github.com/Pancakey8/lisp/pkg/lexer"
	"github.com/Pancakey8/lisp/pkg/parser"
	"github.com/Pancakey8/lisp/pkg/runtime"
)

const (
	promptMain = "lispy> "
	promptCont = "  ...> "
	replName   = "<repl>"
)

const replHelp = `Commands:
  :help              show this help
  :quit, :exit       leave the REPL
  :load <file>       evaluate a file in this session
  :functions         list defined functions
`

// lineReader is the part of *liner.State the loop needs.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

func runRepl(args []string, flags runFlags) int {
	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "lispy repl does not take arguments (received %s)\n", strings.Join(args, " "))
		return 1
	}
	manifest, err := driver.LoadManifestFrom("")
	if err != nil {
		if !errors.Is(err, driver.ErrManifestNotFound) {
			fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
			return 1
		}
		manifest = nil
	}
	session, code, ok := prepareSession(manifest, flags, os.Stdout)
	if !ok {
		return code
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := ""
	if home, err := resolveLispyHome(); err == nil {
		histPath = filepath.Join(home, historyFileName)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}

	code = replLoop(ln, session, os.Stdout, os.Stderr)

	if histPath != "" {
		if err := os.MkdirAll(filepath.Dir(histPath), 0o755); err == nil {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}
	}
	return code
}

// replLoop evaluates forms until EOF, :quit, or an exit call, whose code it
// returns.
func replLoop(in lineReader, session *driver.Session, out, errOut io.Writer) int {
	fmt.Fprintf(out, "%s (type :help for commands)\n", cliToolVersion)
	for {
		src, ok := readForm(in)
		if !ok {
			fmt.Fprintln(out)
			return 0
		}
		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if done := handleReplCommand(session, trimmed, out, errOut); done {
				return 0
			}
			in.AppendHistory(trimmed)
			continue
		}

		in.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		result, err := session.EvalString(replName, src)
		if err != nil {
			if code, ok := interpreter.ExitCodeFromError(err); ok {
				return code
			}
			fmt.Fprintln(errOut, describeError(err))
			continue
		}
		if !runtime.IsNull(result) {
			fmt.Fprintln(out, formatResult(result))
		}
	}
}

func handleReplCommand(session *driver.Session, line string, out, errOut io.Writer) (exit bool) {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case ":help":
		fmt.Fprint(out, replHelp)
	case ":quit", ":exit":
		return true
	case ":load":
		if len(fields) != 2 {
			fmt.Fprintln(errOut, "usage: :load <file>")
			return false
		}
		result, err := session.EvalFile(fields[1])
		if err != nil {
			fmt.Fprintln(errOut, describeError(err))
			return false
		}
		if !runtime.IsNull(result) {
			fmt.Fprintln(out, formatResult(result))
		}
	case ":functions":
		for _, name := range session.Interpreter().Functions().Names() {
			fmt.Fprintln(out, name)
		}
	default:
		fmt.Fprintln(errOut, "unknown command. Type :help for help.")
	}
	return false
}

// readForm reads lines until the buffer parses or fails for a reason
// other than running out of input.
func readForm(in lineReader) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := in.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl+C drops the pending input.
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		_, perr := driver.Parse(replName, src)
		if perr == nil || !looksIncomplete(perr) {
			return src, true
		}
	}
}

func looksIncomplete(err error) bool {
	return parser.IsIncomplete(err) || errors.Is(err, lexer.UnterminatedString)
}

func formatResult(result runtime.Expr) string {
	text, err := runtime.Stringify(result)
	if err == nil {
		return text
	}
	if val, ok := runtime.ValueOf(result); ok {
		if fn, isFn := val.(runtime.Function); isFn {
			return fmt.Sprintf("<function %s>", fn.FunctionName())
		}
	}
	return fmt.Sprintf("<%v>", err)
}
