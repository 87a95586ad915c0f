package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Pancakey8/lisp/pkg/ast"
	"github.com/Pancakey8/lisp/pkg/driver"
	"github.com/Pancakey8/lisp/pkg/interpreter"
)

func runEntry(args []string, flags runFlags) int {
	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(args[1:], " "))
		return 1
	}

	var entry string
	var manifest *driver.Manifest
	if len(args) == 0 {
		m, err := driver.LoadManifestFrom("")
		if err != nil {
			if errors.Is(err, driver.ErrManifestNotFound) {
				fmt.Fprintf(os.Stderr, "lispy run requires a source file (%s not found)\n", driver.ManifestFileName)
				return 1
			}
			fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
			return 1
		}
		entry, err = m.EntryPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "manifest error: %v\n", err)
			return 1
		}
		manifest = m
	} else {
		entry = args[0]
		abs, err := filepath.Abs(entry)
		if err != nil {
			fmt.Fprintf(os.Stderr, "resolve entry path: %v\n", err)
			return 1
		}
		m, err := driver.LoadManifestFrom(filepath.Dir(abs))
		switch {
		case err == nil:
			manifest = m
		case errors.Is(err, driver.ErrManifestNotFound):
		default:
			fmt.Fprintf(os.Stderr, "warning: unable to load manifest (%v); falling back to direct file execution\n", err)
		}
	}

	src, err := os.ReadFile(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", entry, err)
		return 1
	}

	switch {
	case flags.dumpTokens:
		return dumpTokens(entry, string(src))
	case flags.dumpAST:
		return dumpAST(entry, string(src))
	}

	session, code, ok := prepareSession(manifest, flags, os.Stdout)
	if !ok {
		return code
	}
	if _, err := session.EvalString(entry, string(src)); err != nil {
		return reportRunError(err)
	}
	return 0
}

// prepareSession builds a session and evaluates the manifest preludes in it.
func prepareSession(manifest *driver.Manifest, flags runFlags, stdout io.Writer) (*driver.Session, int, bool) {
	opts := driver.Options{Stdout: stdout, MaxDepth: flags.maxDepth}
	if flags.trace {
		opts.Trace = os.Stderr
	}
	if manifest == nil {
		return driver.NewSession(opts), 0, true
	}
	if opts.MaxDepth == 0 {
		opts.MaxDepth = manifest.MaxDepth
	}

	lock, err := driver.LoadLockfileForManifest(manifest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return nil, 1, false
	}
	var fetcher *driver.GitFetcher
	if manifest.HasGitPreludes() {
		home, err := resolveLispyHome()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to resolve LISPY_HOME: %v\n", err)
			return nil, 1, false
		}
		fetcher = driver.NewGitFetcher(cacheDirFor(home))
	}
	preludes, err := driver.ResolvePreludes(manifest, lock, fetcher)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve preludes: %v\n", err)
		return nil, 1, false
	}

	session := driver.NewSession(opts)
	if err := session.LoadFiles(preludes); err != nil {
		return nil, reportRunError(err), false
	}
	return session, 0, true
}

// reportRunError prints err to stderr and maps it to an exit status.
func reportRunError(err error) int {
	if code, ok := interpreter.ExitCodeFromError(err); ok {
		return code
	}
	fmt.Fprintln(os.Stderr, describeError(err))
	return 1
}

func describeError(err error) string {
	var diagErr *driver.DiagnosticError
	if errors.As(err, &diagErr) {
		text := driver.DescribeDiagnosticWithSource(diagErr.Diagnostic, diagErr.Source)
		return strings.TrimRight(text, "\n")
	}
	return err.Error()
}

func dumpTokens(name, src string) int {
	tokens, err := driver.Tokens(name, src)
	if err != nil {
		return reportRunError(err)
	}
	for _, tok := range tokens {
		fmt.Fprintln(os.Stdout, tok.String())
	}
	return 0
}

func dumpAST(name, src string) int {
	nodes, err := driver.Parse(name, src)
	if err != nil {
		return reportRunError(err)
	}
	fmt.Fprint(os.Stdout, ast.DumpAll(nodes))
	return 0
}
