package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
)

// GitFetcher reads prelude files out of git repositories and caches each one
// under the commit it was read from.
type GitFetcher struct {
	cacheDir string
}

func NewGitFetcher(cacheDir string) *GitFetcher {
	if cacheDir == "" {
		return nil
	}
	return &GitFetcher{cacheDir: cacheDir}
}

// Fetch makes sure the prelude file for spec is cached and returns its lock
// entry. A rev that is already cached is used without contacting the remote.
func (g *GitFetcher) Fetch(spec *PreludeSpec) (*LockedPrelude, error) {
	if g == nil {
		return nil, errors.New("git fetcher unavailable")
	}
	url := strings.TrimSpace(spec.Git)
	if url == "" {
		return nil, fmt.Errorf("prelude %q: git URL required", spec.Name)
	}
	file, err := preludeFilePath(spec.File)
	if err != nil {
		return nil, err
	}

	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		cached := g.cachePath(spec.Name, rev, file)
		if data, err := os.ReadFile(cached); err == nil {
			return lockedGitPrelude(spec.Name, rev, url, rev, data), nil
		}
	}

	revision, descriptor, err := gitRevisionFromSpec(spec)
	if err != nil {
		return nil, err
	}
	commit, data, err := readFileAtRevision(url, revision, file)
	if err != nil {
		return nil, err
	}
	if err := writeCacheFile(g.cachePath(spec.Name, commit, file), data); err != nil {
		return nil, fmt.Errorf("cache prelude %q: %w", spec.Name, err)
	}
	return lockedGitPrelude(spec.Name, gitPinnedVersion(descriptor, commit), url, commit, data), nil
}

// PreludeFile is where the cached copy of file for a locked entry lives.
func (g *GitFetcher) PreludeFile(entry *LockedPrelude, file string) string {
	clean, err := preludeFilePath(file)
	if err != nil {
		clean = file
	}
	return g.cachePath(entry.Name, entry.Commit, clean)
}

func (g *GitFetcher) cachePath(name, commit, file string) string {
	return filepath.Join(g.cacheDir, "preludes", sanitizePathSegment(name), sanitizePathSegment(commit), filepath.FromSlash(file))
}

// readFileAtRevision clones url into memory and returns the commit revision
// resolves to along with the contents of file in that commit's tree.
func readFileAtRevision(url string, revision plumbing.Revision, file string) (string, []byte, error) {
	repo, err := git.Clone(memory.NewStorage(), nil, &git.CloneOptions{URL: url})
	if err != nil {
		return "", nil, fmt.Errorf("git clone %s: %w", url, err)
	}
	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		return "", nil, fmt.Errorf("resolve revision %s: %w", revision, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return "", nil, fmt.Errorf("read commit %s: %w", hash, err)
	}
	blob, err := commit.File(file)
	if err != nil {
		return "", nil, fmt.Errorf("%s at %s: %w", file, hash.String()[:12], err)
	}
	contents, err := blob.Contents()
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", file, err)
	}
	return hash.String(), []byte(contents), nil
}

func writeCacheFile(target string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".prelude-*")
	if err != nil {
		return err
	}
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), target)
}

func lockedGitPrelude(name, version, url, commit string, data []byte) *LockedPrelude {
	return &LockedPrelude{
		Name:     name,
		Version:  version,
		Source:   "git+" + url + "@" + commit,
		Commit:   commit,
		Checksum: contentChecksum(data),
	}
}

// preludeFilePath normalizes a manifest `file:` entry to a slash-separated
// path inside the repository.
func preludeFilePath(file string) (string, error) {
	file = strings.TrimSpace(filepath.ToSlash(file))
	if file == "" {
		return "", errors.New("git preludes require a file")
	}
	clean := path.Clean(strings.TrimPrefix(file, "/"))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("prelude file %q escapes the repository", file)
	}
	return clean, nil
}

// gitPinnedVersion labels a lock entry: the bare commit for revs, otherwise
// tag@commit or branch@commit.
func gitPinnedVersion(descriptor, commit string) string {
	switch descriptor = strings.TrimSpace(descriptor); {
	case commit == "":
		return descriptor
	case descriptor == "", descriptor == commit:
		return commit
	default:
		return descriptor + "@" + commit
	}
}

func gitRevisionFromSpec(spec *PreludeSpec) (plumbing.Revision, string, error) {
	refs := []struct {
		value  string
		prefix string
	}{
		{spec.Rev, ""},
		{spec.Tag, "refs/tags/"},
		{spec.Branch, "refs/remotes/origin/"},
	}
	for _, ref := range refs {
		if v := strings.TrimSpace(ref.value); v != "" {
			return plumbing.Revision(ref.prefix + v), v, nil
		}
	}
	return "", "", errors.New("git preludes require rev, tag, or branch")
}

func contentChecksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func fileChecksum(name string) (string, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return "", err
	}
	return contentChecksum(data), nil
}

// sanitizePathSegment keeps [A-Za-z0-9._-] and maps everything else to '_'.
func sanitizePathSegment(segment string) string {
	segment = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(segment))
	if segment == "" || segment == "." || segment == ".." {
		return "head"
	}
	return segment
}
