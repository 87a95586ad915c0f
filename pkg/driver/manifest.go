package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	ManifestFileName = "lispy.yml"
	LockfileFileName = "lispy.lock"
)

var ErrManifestNotFound = errors.New(ManifestFileName + " not found")

// Manifest represents the parsed contents of lispy.yml.
type Manifest struct {
	Path     string
	Name     string
	Entry    string
	MaxDepth int
	Preludes []*PreludeSpec
}

// PreludeSpec is a source file evaluated before the entry script, either a
// path relative to the manifest or a file inside a git repository.
type PreludeSpec struct {
	Name   string
	Path   string
	Git    string
	Rev    string
	Tag    string
	Branch string
	File   string
}

// IsGit reports whether the prelude is fetched from git.
func (p *PreludeSpec) IsGit() bool {
	return p != nil && strings.TrimSpace(p.Git) != ""
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadManifest parses lispy.yml from disk, returning a validated manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	manifest := raw.toManifest(absPath)
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

// FindManifest walks upward from start looking for lispy.yml.
func FindManifest(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start directory %q: %w", start, err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	origin := dir
	for {
		candidate := filepath.Join(dir, ManifestFileName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found from %s upwards: %w", ManifestFileName, origin, ErrManifestNotFound)
		}
		dir = parent
	}
}

// LoadManifestFrom finds and loads the manifest governing start.
func LoadManifestFrom(start string) (*Manifest, error) {
	if start == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		start = cwd
	}
	manifestPath, err := FindManifest(start)
	if err != nil {
		return nil, err
	}
	return LoadManifest(manifestPath)
}

// Dir returns the directory holding the manifest.
func (m *Manifest) Dir() string {
	return filepath.Dir(m.Path)
}

// LockfilePath returns where lispy.lock lives for this manifest.
func (m *Manifest) LockfilePath() string {
	return filepath.Join(m.Dir(), LockfileFileName)
}

// EntryPath resolves the entry script relative to the manifest.
func (m *Manifest) EntryPath() (string, error) {
	entry := strings.TrimSpace(m.Entry)
	if entry == "" {
		return "", fmt.Errorf("manifest %s does not declare an entry", m.Path)
	}
	return m.resolve(entry), nil
}

// HasGitPreludes reports whether any prelude needs the lockfile.
func (m *Manifest) HasGitPreludes() bool {
	for _, prelude := range m.Preludes {
		if prelude.IsGit() {
			return true
		}
	}
	return false
}

func (m *Manifest) resolve(rel string) string {
	rel = filepath.FromSlash(rel)
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Join(m.Dir(), rel)
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	if m.MaxDepth < 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("max_depth must not be negative (got %d)", m.MaxDepth))
	}
	names := make(map[string]int, len(m.Preludes))
	for idx, prelude := range m.Preludes {
		if prelude == nil {
			errs.Issues = append(errs.Issues, fmt.Sprintf("preludes[%d] must not be empty", idx))
			continue
		}
		for _, issue := range prelude.validate() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("preludes[%d]: %s", idx, issue))
		}
		if !prelude.IsGit() || prelude.Name == "" {
			continue
		}
		if other, exists := names[prelude.Name]; exists {
			errs.Issues = append(errs.Issues, fmt.Sprintf("preludes[%d] and preludes[%d] share the name %q", other, idx, prelude.Name))
		} else {
			names[prelude.Name] = idx
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func (p *PreludeSpec) validate() []string {
	var errs []string
	hasPath := p.Path != ""
	hasGit := p.Git != ""
	switch {
	case hasPath && hasGit:
		errs = append(errs, "path and git are mutually exclusive")
	case !hasPath && !hasGit:
		errs = append(errs, "must specify path or git")
	}
	refs := 0
	for _, ref := range []string{p.Rev, p.Tag, p.Branch} {
		if ref != "" {
			refs++
		}
	}
	if hasGit {
		if refs != 1 {
			errs = append(errs, "git preludes require exactly one of rev, tag, or branch")
		}
		if p.File == "" {
			errs = append(errs, "git preludes require file")
		}
		if p.Name == "" {
			errs = append(errs, "git prelude name could not be derived; set name")
		}
	}
	if hasPath && (refs > 0 || p.File != "") {
		errs = append(errs, "path preludes cannot specify rev, tag, branch, or file")
	}
	return errs
}

type manifestFile struct {
	Name     string        `yaml:"name"`
	Entry    string        `yaml:"entry"`
	MaxDepth int           `yaml:"max_depth"`
	Preludes []preludeYAML `yaml:"preludes"`
}

type preludeYAML struct {
	Name   string `yaml:"name"`
	Path   string `yaml:"path"`
	Git    string `yaml:"git"`
	Rev    string `yaml:"rev"`
	Tag    string `yaml:"tag"`
	Branch string `yaml:"branch"`
	File   string `yaml:"file"`
}

func (mf manifestFile) toManifest(path string) *Manifest {
	result := &Manifest{
		Path:     path,
		Name:     sanitizeName(mf.Name),
		Entry:    strings.TrimSpace(mf.Entry),
		MaxDepth: mf.MaxDepth,
		Preludes: make([]*PreludeSpec, 0, len(mf.Preludes)),
	}
	for _, raw := range mf.Preludes {
		spec := &PreludeSpec{
			Name:   sanitizeName(raw.Name),
			Path:   strings.TrimSpace(raw.Path),
			Git:    strings.TrimSpace(raw.Git),
			Rev:    strings.TrimSpace(raw.Rev),
			Tag:    strings.TrimSpace(raw.Tag),
			Branch: strings.TrimSpace(raw.Branch),
			File:   strings.TrimSpace(raw.File),
		}
		if spec.Name == "" && spec.Git != "" {
			spec.Name = nameFromGitURL(spec.Git)
		}
		result.Preludes = append(result.Preludes, spec)
	}
	return result
}

// nameFromGitURL derives "lib" from ".../lib.git" or ".../lib/".
func nameFromGitURL(url string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(url), "/")
	if idx := strings.LastIndexAny(trimmed, "/:"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	return sanitizeName(strings.TrimSuffix(trimmed, ".git"))
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "-", "_")
	return name
}
