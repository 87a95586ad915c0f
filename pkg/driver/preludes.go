package driver

import (
	"errors"
	"fmt"
	"os"
)

// ErrPreludeNotInstalled is returned when a git prelude has no usable checkout.
var ErrPreludeNotInstalled = errors.New("prelude not installed")

// LoadLockfileForManifest reads lispy.lock next to the manifest. A missing
// lockfile is fine unless the manifest declares git preludes.
func LoadLockfileForManifest(manifest *Manifest) (*Lockfile, error) {
	if manifest == nil {
		return nil, nil
	}
	lockPath := manifest.LockfilePath()
	lock, err := LoadLockfile(lockPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if manifest.HasGitPreludes() {
				return nil, fmt.Errorf("%s missing for %q; run `lispy deps install`", LockfileFileName, manifest.Name)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read lockfile %s: %w", lockPath, err)
	}
	if lock.Root != manifest.Name {
		return nil, fmt.Errorf("lockfile root %q does not match manifest name %q", lock.Root, manifest.Name)
	}
	return lock, nil
}

// InstallPreludes fetches every git prelude and records it in lock. It
// returns whether the lockfile changed and one log line per prelude.
func InstallPreludes(manifest *Manifest, lock *Lockfile, fetcher *GitFetcher) (bool, []string, error) {
	if manifest == nil || lock == nil {
		return false, nil, fmt.Errorf("install: manifest and lockfile are required")
	}
	changed := false
	var logs []string
	keep := make(map[string]struct{})
	for _, prelude := range manifest.Preludes {
		if !prelude.IsGit() {
			continue
		}
		keep[prelude.Name] = struct{}{}
		entry, err := fetcher.Fetch(prelude)
		if err != nil {
			return false, nil, fmt.Errorf("prelude %q: %w", prelude.Name, err)
		}
		if lock.Upsert(entry) {
			changed = true
			logs = append(logs, fmt.Sprintf("Locked %s %s", entry.Name, entry.Version))
		} else {
			logs = append(logs, fmt.Sprintf("Using %s %s", entry.Name, entry.Version))
		}
	}
	if lock.Prune(keep) {
		changed = true
	}
	return changed, logs, nil
}

// ResolvePreludes returns the files to evaluate before the entry script, in
// manifest order. Git preludes must be locked and their cached file must still
// match the recorded checksum.
func ResolvePreludes(manifest *Manifest, lock *Lockfile, fetcher *GitFetcher) ([]string, error) {
	if manifest == nil {
		return nil, nil
	}
	paths := make([]string, 0, len(manifest.Preludes))
	for _, prelude := range manifest.Preludes {
		if !prelude.IsGit() {
			paths = append(paths, manifest.resolve(prelude.Path))
			continue
		}
		entry, ok := lock.Find(prelude.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not in %s; run `lispy deps install`", ErrPreludeNotInstalled, prelude.Name, LockfileFileName)
		}
		if fetcher == nil {
			return nil, fmt.Errorf("%w: no cache directory for %q", ErrPreludeNotInstalled, prelude.Name)
		}
		file := fetcher.PreludeFile(entry, prelude.File)
		checksum, err := fileChecksum(file)
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q not cached at %s; run `lispy deps install`", ErrPreludeNotInstalled, prelude.Name, file)
		}
		if err != nil {
			return nil, fmt.Errorf("checksum %s: %w", file, err)
		}
		if entry.Checksum != "" && checksum != entry.Checksum {
			return nil, fmt.Errorf("prelude %q checksum mismatch (lock %s, cached %s)", prelude.Name, entry.Checksum, checksum)
		}
		paths = append(paths, file)
	}
	return paths, nil
}

// ForgetPreludes drops lock entries so the next InstallPreludes fetches them
// again; no names drops them all. Names are normalized the way the manifest
// normalizes them, and each must be a git prelude declared in manifest.
func ForgetPreludes(manifest *Manifest, lock *Lockfile, names []string) error {
	if manifest == nil || lock == nil {
		return fmt.Errorf("update: manifest and lockfile are required")
	}
	if len(names) == 0 {
		lock.Preludes = nil
		return nil
	}
	declared := make(map[string]struct{}, len(manifest.Preludes))
	for _, prelude := range manifest.Preludes {
		if prelude.IsGit() {
			declared[prelude.Name] = struct{}{}
		}
	}
	drop := make(map[string]struct{}, len(names))
	for _, name := range names {
		key := sanitizeName(name)
		if _, ok := declared[key]; !ok {
			return fmt.Errorf("git prelude %q not declared in manifest", name)
		}
		drop[key] = struct{}{}
	}
	kept := lock.Preludes[:0]
	for _, entry := range lock.Preludes {
		if entry == nil {
			continue
		}
		if _, ok := drop[entry.Name]; !ok {
			kept = append(kept, entry)
		}
	}
	lock.Preludes = kept
	return nil
}
