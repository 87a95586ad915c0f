package main

import (
	"fmt"
	"strconv"
	"strings"
)

type runFlags struct {
	maxDepth   int
	trace      bool
	dumpTokens bool
	dumpAST    bool
}

func (f runFlags) any() bool {
	return f.maxDepth > 0 || f.trace || f.dumpTokens || f.dumpAST
}

// parseRunFlags pulls the interpreter flags out of args wherever they appear.
// Everything after "--" is passed through untouched.
func parseRunFlags(args []string) (runFlags, []string, error) {
	var flags runFlags
	remaining := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			remaining = append(remaining, args[i+1:]...)
			break
		}
		switch {
		case arg == "--max-depth":
			if i+1 >= len(args) {
				return flags, nil, fmt.Errorf("--max-depth expects a value")
			}
			depth, err := parseMaxDepth(args[i+1])
			if err != nil {
				return flags, nil, err
			}
			flags.maxDepth = depth
			i++
		case strings.HasPrefix(arg, "--max-depth="):
			depth, err := parseMaxDepth(strings.TrimPrefix(arg, "--max-depth="))
			if err != nil {
				return flags, nil, err
			}
			flags.maxDepth = depth
		case arg == "--trace":
			flags.trace = true
		case arg == "--dump-tokens":
			flags.dumpTokens = true
		case arg == "--dump-ast":
			flags.dumpAST = true
		default:
			remaining = append(remaining, arg)
		}
	}
	if flags.dumpTokens && flags.dumpAST {
		return flags, nil, fmt.Errorf("--dump-tokens and --dump-ast are mutually exclusive")
	}
	return flags, remaining, nil
}

func parseMaxDepth(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("--max-depth expects a value")
	}
	depth, err := strconv.Atoi(value)
	if err != nil || depth <= 0 {
		return 0, fmt.Errorf("invalid --max-depth value '%s' (expected a positive integer)", value)
	}
	return depth, nil
}
