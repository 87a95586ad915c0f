package driver

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Lockfile models the lispy.lock contents.
type Lockfile struct {
	Path      string
	Root      string
	Generated string
	Tool      string
	Preludes  []*LockedPrelude
}

// LockedPrelude pins one git prelude to a commit and content checksum.
type LockedPrelude struct {
	Name     string
	Version  string
	Source   string
	Commit   string
	Checksum string
}

// NewLockfile constructs a lockfile with metadata seeded for the provided root.
func NewLockfile(root, tool string) *Lockfile {
	return &Lockfile{
		Root:      sanitizeName(root),
		Generated: time.Now().UTC().Format(time.RFC3339),
		Tool:      strings.TrimSpace(tool),
		Preludes:  []*LockedPrelude{},
	}
}

// LoadLockfile parses lispy.lock from disk.
func LoadLockfile(path string) (*Lockfile, error) {
	if path == "" {
		return nil, fmt.Errorf("lockfile: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var raw lockfileDisk
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("lockfile: parse %s: %w", abs, err)
	}

	lock := raw.toLockfile()
	lock.Path = abs
	return lock, nil
}

// WriteLockfile serialises the lockfile back to disk, refreshing metadata.
func WriteLockfile(lock *Lockfile, path string) error {
	if lock == nil {
		return fmt.Errorf("lockfile: nil lockfile")
	}
	if path == "" {
		if lock.Path == "" {
			return fmt.Errorf("lockfile: missing path")
		}
		path = lock.Path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}

	if lock.Generated == "" {
		lock.Generated = time.Now().UTC().Format(time.RFC3339)
	}
	lock.Path = abs
	lock.normalize()

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(lock.toDisk()); err != nil {
		return fmt.Errorf("lockfile: marshal %s: %w", abs, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("lockfile: encoder close: %w", err)
	}
	if err := os.WriteFile(abs, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("lockfile: write %s: %w", abs, err)
	}
	return nil
}

// Find returns the locked entry for name.
func (l *Lockfile) Find(name string) (*LockedPrelude, bool) {
	if l == nil {
		return nil, false
	}
	name = sanitizeName(name)
	for _, entry := range l.Preludes {
		if entry != nil && entry.Name == name {
			return entry, true
		}
	}
	return nil, false
}

// Upsert replaces the entry with the same name or appends a new one. It
// reports whether the lockfile changed.
func (l *Lockfile) Upsert(entry *LockedPrelude) bool {
	for idx, existing := range l.Preludes {
		if existing == nil || existing.Name != entry.Name {
			continue
		}
		if *existing == *entry {
			return false
		}
		l.Preludes[idx] = entry
		return true
	}
	l.Preludes = append(l.Preludes, entry)
	return true
}

// Prune drops entries whose names are not in keep and reports whether any
// were removed.
func (l *Lockfile) Prune(keep map[string]struct{}) bool {
	out := l.Preludes[:0]
	removed := false
	for _, entry := range l.Preludes {
		if entry == nil {
			continue
		}
		if _, ok := keep[entry.Name]; !ok {
			removed = true
			continue
		}
		out = append(out, entry)
	}
	l.Preludes = out
	return removed
}

func (l *Lockfile) normalize() {
	if l == nil {
		return
	}
	l.Root = sanitizeName(l.Root)
	l.Tool = strings.TrimSpace(l.Tool)
	sort.SliceStable(l.Preludes, func(i, j int) bool {
		return l.Preludes[i].Name < l.Preludes[j].Name
	})
	for _, entry := range l.Preludes {
		if entry == nil {
			continue
		}
		entry.Name = sanitizeName(entry.Name)
		entry.Version = strings.TrimSpace(entry.Version)
		entry.Source = strings.TrimSpace(entry.Source)
		entry.Commit = strings.TrimSpace(entry.Commit)
		entry.Checksum = strings.TrimSpace(entry.Checksum)
	}
}

func (l *Lockfile) toDisk() lockfileDisk {
	preludes := make([]lockfilePrelude, 0, len(l.Preludes))
	for _, entry := range l.Preludes {
		if entry == nil {
			continue
		}
		preludes = append(preludes, lockfilePrelude{
			Name:     entry.Name,
			Version:  entry.Version,
			Source:   entry.Source,
			Commit:   entry.Commit,
			Checksum: entry.Checksum,
		})
	}
	return lockfileDisk{
		Root:      l.Root,
		Generated: l.Generated,
		Tool:      l.Tool,
		Preludes:  preludes,
	}
}

type lockfileDisk struct {
	Root      string            `yaml:"root"`
	Generated string            `yaml:"generated"`
	Tool      string            `yaml:"tool"`
	Preludes  []lockfilePrelude `yaml:"preludes"`
}

type lockfilePrelude struct {
	Name     string `yaml:"name"`
	Version  string `yaml:"version"`
	Source   string `yaml:"source"`
	Commit   string `yaml:"commit"`
	Checksum string `yaml:"checksum"`
}

func (d lockfileDisk) toLockfile() *Lockfile {
	lock := &Lockfile{
		Root:      d.Root,
		Generated: strings.TrimSpace(d.Generated),
		Tool:      d.Tool,
		Preludes:  make([]*LockedPrelude, 0, len(d.Preludes)),
	}
	for _, entry := range d.Preludes {
		lock.Preludes = append(lock.Preludes, &LockedPrelude{
			Name:     entry.Name,
			Version:  entry.Version,
			Source:   entry.Source,
			Commit:   entry.Commit,
			Checksum: entry.Checksum,
		})
	}
	lock.normalize()
	return lock
}
