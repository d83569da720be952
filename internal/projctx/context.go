package projctx

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/mod/modfile"
)

// Context is a compact summary of a project used to ground review
// prompts. A context is immutable once written: stale contexts are
// superseded by new ones, never mutated in place.
type Context struct {
	Fingerprint         string            `json:"fingerprint"`
	SchemaVersion       string            `json:"schema_version"`
	TechStack           []string          `json:"tech_stack"`
	Dependencies        map[string]string `json:"dependencies"`
	Conventions         string            `json:"conventions,omitempty"`
	CriticalDirectories []string          `json:"critical_directories"`
	CreatedAt           time.Time         `json:"created_at"`

	// Degraded marks a context served as a fallback after synthesis
	// failed; it may describe a previous state of the project.
	Degraded bool `json:"degraded,omitempty"`
}

// Stale reports whether a stored context can no longer be served for
// the given fingerprint and TTL. Staleness is a pure function of its
// inputs.
func (c Context) Stale(fingerprint string, ttl time.Duration, now time.Time) bool {
	if c.Fingerprint != fingerprint {
		return true
	}
	return now.Sub(c.CreatedAt) > ttl
}

// IsCritical reports whether a file path falls under one of the
// context's critical directory prefixes.
func (c Context) IsCritical(path string) bool {
	clean := filepath.ToSlash(path)
	for _, dir := range c.CriticalDirectories {
		prefix := strings.TrimSuffix(filepath.ToSlash(dir), "/")
		if clean == prefix || strings.HasPrefix(clean, prefix+"/") {
			return true
		}
	}
	return false
}

// conventionFiles map well-known tool configuration files to a short
// description of the convention they imply.
var conventionFiles = map[string]string{
	".golangci.yml":           "golangci-lint enforced",
	".golangci.yaml":          "golangci-lint enforced",
	".eslintrc":               "eslint enforced",
	".eslintrc.json":          "eslint enforced",
	".eslintrc.js":            "eslint enforced",
	".prettierrc":             "prettier formatting",
	".editorconfig":           "editorconfig present",
	"ruff.toml":               "ruff enforced",
	".rubocop.yml":            "rubocop enforced",
	"Makefile":                "make-driven builds",
	".pre-commit-config.yaml": "pre-commit hooks",
}

// Synthesize builds a fresh Context by scanning the project's
// manifests and layout. It performs no model calls; the result is a
// deterministic function of the files on disk and the configured
// critical paths.
func Synthesize(root string, criticalPaths []string) (Context, error) {
	fp, err := Fingerprint(root)
	if err != nil {
		return Context{}, fmt.Errorf("%w: %v", ErrSynthesis, err)
	}

	manifests, err := FindManifests(root)
	if err != nil {
		return Context{}, fmt.Errorf("%w: %v", ErrSynthesis, err)
	}

	ctx := Context{
		Fingerprint:   fp,
		SchemaVersion: SchemaVersion,
		Dependencies:  map[string]string{},
		CreatedAt:     time.Now().UTC(),
	}

	stack := map[string]bool{}
	for _, path := range manifests {
		switch filepath.Base(path) {
		case "go.mod":
			stack["go"] = true
			parseGoMod(path, ctx.Dependencies)
		case "package.json":
			stack["javascript"] = true
			parsePackageJSON(path, ctx.Dependencies, stack)
		case "requirements.txt":
			stack["python"] = true
			parseRequirements(path, ctx.Dependencies)
		case "pyproject.toml":
			stack["python"] = true
		case "Cargo.toml":
			stack["rust"] = true
		case "pom.xml", "build.gradle":
			stack["java"] = true
		case "Gemfile":
			stack["ruby"] = true
		case "composer.json":
			stack["php"] = true
		case "tsconfig.json":
			stack["typescript"] = true
		}
	}
	for s := range stack {
		ctx.TechStack = append(ctx.TechStack, s)
	}
	sort.Strings(ctx.TechStack)

	ctx.Conventions = detectConventions(root)
	ctx.CriticalDirectories = normalizeCriticalDirs(root, criticalPaths)

	return ctx, nil
}

func parseGoMod(path string, deps map[string]string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	f, err := modfile.Parse(path, data, nil)
	if err != nil {
		return
	}
	for _, r := range f.Require {
		if r.Indirect {
			continue
		}
		deps[r.Mod.Path] = r.Mod.Version
	}
}

func parsePackageJSON(path string, deps map[string]string, stack map[string]bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var pkg struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return
	}
	for name, version := range pkg.Dependencies {
		deps[name] = version
	}
	for _, framework := range []string{"react", "vue", "next", "express", "svelte"} {
		if _, ok := pkg.Dependencies[framework]; ok {
			stack[framework] = true
		}
	}
	_ = pkg.DevDependencies
}

func parseRequirements(path string, deps map[string]string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if name, version, ok := strings.Cut(line, "=="); ok {
			deps[strings.TrimSpace(name)] = strings.TrimSpace(version)
		} else {
			deps[line] = ""
		}
	}
}

func detectConventions(root string) string {
	var notes []string
	for name, desc := range conventionFiles {
		if _, err := os.Stat(filepath.Join(root, name)); err == nil {
			notes = append(notes, desc)
		}
	}
	sort.Strings(notes)
	return strings.Join(notes, "; ")
}

// normalizeCriticalDirs keeps configured critical paths first, then
// adds common sensitive directory names actually present in the tree.
func normalizeCriticalDirs(root string, configured []string) []string {
	seen := map[string]bool{}
	var dirs []string
	for _, p := range configured {
		clean := strings.TrimSuffix(filepath.ToSlash(p), "/")
		if clean != "" && !seen[clean] {
			seen[clean] = true
			dirs = append(dirs, clean)
		}
	}

	var detected []string
	for _, candidate := range []string{"auth", "payment", "admin", "security", "billing"} {
		for _, parent := range []string{"", "src", "internal", "app", "lib"} {
			rel := candidate
			if parent != "" {
				rel = parent + "/" + candidate
			}
			if info, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel))); err == nil && info.IsDir() {
				if !seen[rel] {
					seen[rel] = true
					detected = append(detected, rel)
				}
			}
		}
	}
	sort.Strings(detected)
	return append(dirs, detected...)
}
