package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const historyFileName = "repl_history"

// resolveLispyHome returns $LISPY_HOME, defaulting to ~/.lispy.
func resolveLispyHome() (string, error) {
	if home := strings.TrimSpace(os.Getenv("LISPY_HOME")); home != "" {
		abs, err := filepath.Abs(home)
		if err != nil {
			return "", fmt.Errorf("resolve LISPY_HOME %q: %w", home, err)
		}
		return abs, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(userHome, ".lispy"), nil
}

func cacheDirFor(home string) string {
	return filepath.Join(home, "cache")
}

func looksLikePathCandidate(arg string) bool {
	if arg == "" {
		return false
	}
	if strings.Contains(arg, "/") || strings.Contains(arg, "\\") || strings.Contains(arg, string(os.PathSeparator)) {
		return true
	}
	return filepath.Ext(arg) == ".lisp" || strings.HasPrefix(arg, ".")
}
