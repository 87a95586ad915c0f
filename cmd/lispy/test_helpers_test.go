package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}

// commitAll turns dir into a repository with one commit holding every file in
// it and returns the commit hash.
func commitAll(t *testing.T, dir string) string {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init %s: %v", dir, err)
	}
	tree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	if err := tree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		t.Fatalf("stage %s: %v", dir, err)
	}
	author := &object.Signature{Name: "lispy tests", Email: "tests@lispy.invalid", When: time.Now()}
	hash, err := tree.Commit("preludes", &git.CommitOptions{Author: author})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	return hash.String()
}

// captureCLI runs the CLI with os.Stdout and os.Stderr redirected and returns
// the exit code and both streams.
func captureCLI(t *testing.T, args []string) (int, string, string) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	var wg sync.WaitGroup
	redirect := func(target **os.File, buf *bytes.Buffer) func() {
		r, w, err := os.Pipe()
		if err != nil {
			t.Fatalf("pipe: %v", err)
		}
		saved := *target
		*target = w
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = io.Copy(buf, r)
			_ = r.Close()
		}()
		return func() {
			_ = w.Close()
			*target = saved
		}
	}
	restoreOut := redirect(&os.Stdout, &outBuf)
	restoreErr := redirect(&os.Stderr, &errBuf)

	code := run(args)

	restoreOut()
	restoreErr()
	wg.Wait()
	return code, outBuf.String(), errBuf.String()
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore cwd %s: %v", prev, err)
		}
	})
}
