package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Pancakey8/lisp/pkg/driver"
)

func runDeps(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "lispy deps requires a subcommand (install, update)")
		return 1
	}
	switch args[0] {
	case "install":
		if len(args) > 1 {
			fmt.Fprintf(os.Stderr, "lispy deps install does not take arguments (received %s)\n", strings.Join(args[1:], " "))
			return 1
		}
		return runDepsInstall(nil)
	case "update":
		return runDepsUpdate(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown deps subcommand %q\n", args[0])
		return 1
	}
}

func runDepsUpdate(targets []string) int {
	return runDepsInstall(func(manifest *driver.Manifest, lock *driver.Lockfile) error {
		return driver.ForgetPreludes(manifest, lock, targets)
	})
}

// runDepsInstall fetches git preludes and writes lispy.lock. prepare, when
// set, may drop lock entries so they are fetched again.
func runDepsInstall(prepare func(*driver.Manifest, *driver.Lockfile) error) int {
	manifest, err := driver.LoadManifestFrom("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to load %s: %v\n", driver.ManifestFileName, err)
		return 1
	}
	home, err := resolveLispyHome()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve LISPY_HOME: %v\n", err)
		return 1
	}
	cacheDir := cacheDirFor(home)

	fmt.Fprintf(os.Stdout, "Manifest: %s\n", manifest.Path)
	fmt.Fprintf(os.Stdout, "Preludes: %d\n", len(manifest.Preludes))
	fmt.Fprintf(os.Stdout, "Cache directory: %s\n", cacheDir)

	lockPath := manifest.LockfilePath()
	lock, err := driver.LoadLockfile(lockPath)
	lockCreated := false
	switch {
	case err == nil:
		if lock.Root != manifest.Name {
			fmt.Fprintf(os.Stderr, "lockfile root %q does not match manifest name %q\n", lock.Root, manifest.Name)
			return 1
		}
	case errors.Is(err, os.ErrNotExist):
		lock = driver.NewLockfile(manifest.Name, cliToolVersion)
		lockCreated = true
	default:
		fmt.Fprintf(os.Stderr, "failed to read lockfile: %v\n", err)
		return 1
	}
	lock.Path = lockPath
	lock.Tool = cliToolVersion

	changed := false
	if prepare != nil {
		before := len(lock.Preludes)
		if err := prepare(manifest, lock); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		changed = len(lock.Preludes) != before
	}

	installed, logs, err := driver.InstallPreludes(manifest, lock, driver.NewGitFetcher(cacheDir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to install preludes: %v\n", err)
		return 1
	}
	for _, line := range logs {
		fmt.Fprintln(os.Stdout, line)
	}

	if changed || installed || lockCreated {
		action := "Updated"
		if lockCreated {
			action = "Created"
		}
		if err := driver.WriteLockfile(lock, lockPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write lockfile: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stdout, "%s %s: %s\n", action, driver.LockfileFileName, lock.Path)
	} else {
		fmt.Fprintf(os.Stdout, "%s already up to date: %s\n", driver.LockfileFileName, lock.Path)
	}
	fmt.Fprintln(os.Stdout, "Preludes installed.")
	return 0
}
