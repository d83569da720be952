package projctx

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SchemaVersion is folded into every fingerprint so that changes to
// the context shape invalidate stored contexts automatically.
const SchemaVersion = "2"

// manifestNames are the dependency/build manifests that define a
// project's identity for caching purposes.
var manifestNames = map[string]bool{
	"go.mod":            true,
	"go.sum":            true,
	"package.json":      true,
	"package-lock.json": true,
	"requirements.txt":  true,
	"pyproject.toml":    true,
	"Cargo.toml":        true,
	"pom.xml":           true,
	"build.gradle":      true,
	"Gemfile":           true,
	"composer.json":     true,
	"tsconfig.json":     true,
}

// skipDirs are never descended into while looking for manifests.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"target":       true,
}

// maxManifestDepth bounds the walk: manifests deeper than this do not
// contribute to the fingerprint.
const maxManifestDepth = 2

// Fingerprint derives the cache key for a project root: a hash over
// the sorted set of (manifest path, content hash) pairs plus the
// schema version. Two checkouts with identical manifests fingerprint
// identically regardless of everything else in the tree.
func Fingerprint(root string) (string, error) {
	manifests, err := FindManifests(root)
	if err != nil {
		return "", err
	}

	pairs := make([]string, 0, len(manifests))
	for _, path := range manifests {
		h, err := hashFile(path)
		if err != nil {
			return "", fmt.Errorf("hashing manifest %s: %w", path, err)
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		pairs = append(pairs, filepath.ToSlash(rel)+":"+h)
	}
	sort.Strings(pairs)

	digest := sha256.New()
	fmt.Fprintf(digest, "v%s\n", SchemaVersion)
	for _, p := range pairs {
		fmt.Fprintln(digest, p)
	}
	return fmt.Sprintf("%x", digest.Sum(nil)), nil
}

// FindManifests returns the absolute paths of all recognized manifest
// files under root, in sorted order.
func FindManifests(root string) ([]string, error) {
	var found []string

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		depth := len(strings.Split(filepath.ToSlash(rel), "/"))

		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			if depth > maxManifestDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if manifestNames[d.Name()] {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s for manifests: %w", root, err)
	}

	sort.Strings(found)
	return found, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
