package projctx

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const sampleGoMod = `module example.com/demo

go 1.22

require (
	github.com/spf13/cobra v1.8.0
	github.com/spf13/pflag v1.0.5 // indirect
)
`

func TestFingerprint_StableAndContentSensitive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "go.mod", sampleGoMod)
	writeFile(t, root, "package.json", `{"dependencies": {"react": "^18.0.0"}}`)

	fp1, err := Fingerprint(root)
	require.NoError(t, err)
	fp2, err := Fingerprint(root)
	require.NoError(t, err)
	assert.Equal(t, fp1, fp2, "fingerprint must be stable for unchanged manifests")
	assert.Len(t, fp1, 64)

	writeFile(t, root, "go.mod", sampleGoMod+"\n// touched\n")
	fp3, err := Fingerprint(root)
	require.NoError(t, err)
	assert.NotEqual(t, fp1, fp3, "manifest edits must change the fingerprint")
}

func TestFingerprint_IgnoresNonManifestFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "go.mod", sampleGoMod)
	fp1, err := Fingerprint(root)
	require.NoError(t, err)

	writeFile(t, root, "main.go", "package main\n")
	fp2, err := Fingerprint(root)
	require.NoError(t, err)
	assert.Equal(t, fp1, fp2)
}

func TestSynthesize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "go.mod", sampleGoMod)
	writeFile(t, root, ".golangci.yml", "linters: {}\n")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "internal", "auth"), 0o755))

	c, err := Synthesize(root, []string{"src/payment/"})
	require.NoError(t, err)

	assert.Contains(t, c.TechStack, "go")
	assert.Equal(t, "v1.8.0", c.Dependencies["github.com/spf13/cobra"])
	assert.NotContains(t, c.Dependencies, "github.com/spf13/pflag", "indirect deps are omitted")
	assert.Contains(t, c.Conventions, "golangci-lint")
	assert.Equal(t, "src/payment", c.CriticalDirectories[0], "configured paths come first, normalized")
	assert.Contains(t, c.CriticalDirectories, "internal/auth")
	assert.Equal(t, SchemaVersion, c.SchemaVersion)
	assert.False(t, c.CreatedAt.IsZero())
}

func TestContextStale(t *testing.T) {
	now := time.Now()
	c := Context{Fingerprint: "abc", CreatedAt: now.Add(-48 * time.Hour)}

	assert.False(t, c.Stale("abc", 72*time.Hour, now))
	assert.True(t, c.Stale("abc", 24*time.Hour, now), "age beyond TTL is stale")
	assert.True(t, c.Stale("other", 72*time.Hour, now), "fingerprint change is stale")
}

func TestContextIsCritical(t *testing.T) {
	c := Context{CriticalDirectories: []string{"src/payment", "internal/auth"}}

	assert.True(t, c.IsCritical("src/payment/charge.go"))
	assert.True(t, c.IsCritical("internal/auth"))
	assert.False(t, c.IsCritical("src/payments/charge.go"), "prefix match is per path segment")
	assert.False(t, c.IsCritical("docs/readme.md"))
}

func TestManager_CacheIdempotence(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "go.mod", sampleGoMod)

	m := NewManager(NewMemStore())
	opts := Options{TTL: time.Hour}

	first, info1, err := m.Get(context.Background(), root, opts)
	require.NoError(t, err)
	assert.False(t, info1.UsedCache)

	second, info2, err := m.Get(context.Background(), root, opts)
	require.NoError(t, err)
	assert.True(t, info2.UsedCache, "second call within TTL must hit the cache")
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
}

func TestManager_ForceRefreshBypassesCache(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "go.mod", sampleGoMod)

	m := NewManager(NewMemStore())
	_, _, err := m.Get(context.Background(), root, Options{TTL: time.Hour})
	require.NoError(t, err)

	_, info, err := m.Get(context.Background(), root, Options{TTL: time.Hour, ForceRefresh: true})
	require.NoError(t, err)
	assert.False(t, info.UsedCache, "forced refresh must not serve the stored context")
}

func TestManager_TTLExpiryResynthesizes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "go.mod", sampleGoMod)

	m := NewManager(NewMemStore())
	_, _, err := m.Get(context.Background(), root, Options{TTL: time.Hour})
	require.NoError(t, err)

	// Move the clock past the TTL.
	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, info, err := m.Get(context.Background(), root, Options{TTL: time.Hour})
	require.NoError(t, err)
	assert.False(t, info.UsedCache)
}

func TestManager_DegradedFallback(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "go.mod", sampleGoMod)

	store := NewMemStore()
	m := NewManager(store)
	_, _, err := m.Get(context.Background(), root, Options{TTL: time.Hour})
	require.NoError(t, err)

	// Point the manager at a root that cannot be scanned.
	degraded, info, err := m.Get(context.Background(), filepath.Join(root, "does-not-exist"), Options{TTL: time.Hour})
	require.NoError(t, err)
	assert.True(t, degraded.Degraded)
	assert.True(t, info.UsedCache)
}

func TestManager_NoFallbackAvailable(t *testing.T) {
	m := NewManager(NewMemStore())
	_, _, err := m.Get(context.Background(), "/path/that/does/not/exist", Options{TTL: time.Hour})
	require.Error(t, err)
}

func TestFileStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	c := Context{
		Fingerprint:   "deadbeef",
		SchemaVersion: SchemaVersion,
		TechStack:     []string{"go"},
		Dependencies:  map[string]string{"github.com/spf13/cobra": "v1.8.0"},
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.Put(c))

	got, ok, err := store.Get("deadbeef")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, c.TechStack, got.TechStack)

	latest, ok, err := store.Latest()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "deadbeef", latest.Fingerprint)

	require.NoError(t, store.Clear())
	_, ok, err = store.Get("deadbeef")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_MissingEntryIsMiss(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, ok, err := store.Get("nope")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = store.Latest()
	require.NoError(t, err)
	assert.False(t, ok)
}
