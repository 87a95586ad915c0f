package main

import (
	"fmt"
	"os"
)

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  lispy [flags] run [file.lisp]")
	fmt.Fprintln(os.Stderr, "  lispy [flags] <file.lisp>")
	fmt.Fprintln(os.Stderr, "  lispy [flags] repl")
	fmt.Fprintln(os.Stderr, "  lispy deps install")
	fmt.Fprintln(os.Stderr, "  lispy deps update [prelude...]")
	fmt.Fprintln(os.Stderr, "  lispy version")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Flags:")
	fmt.Fprintln(os.Stderr, "  --max-depth=N   fail with StackExhausted beyond N nested calls")
	fmt.Fprintln(os.Stderr, "  --trace         write one line per function call to stderr")
	fmt.Fprintln(os.Stderr, "  --dump-tokens   print the token stream instead of evaluating")
	fmt.Fprintln(os.Stderr, "  --dump-ast      print the parsed forms instead of evaluating")
}
