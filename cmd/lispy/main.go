package main

import (
	"fmt"
	"os"
)

const cliToolVersion = "lispy 0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}

	flags, remaining, err := parseRunFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(remaining) == 0 {
		if flags.any() {
			return runEntry(nil, flags)
		}
		printUsage()
		return 1
	}

	switch remaining[0] {
	case "--help", "-h", "help":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "run":
		return runEntry(remaining[1:], flags)
	case "repl":
		return runRepl(remaining[1:], flags)
	case "deps":
		return runDeps(remaining[1:])
	default:
		if !looksLikePathCandidate(remaining[0]) {
			if _, err := os.Stat(remaining[0]); err != nil {
				fmt.Fprintf(os.Stderr, "unknown command %q\n", remaining[0])
				printUsage()
				return 1
			}
		}
		return runEntry(remaining, flags)
	}
}
