package projctx

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store is a keyed, durable home for project contexts. Writes are
// keyed by fingerprint and safe to race: content is a deterministic
// function of the same inputs, so last-writer-wins is acceptable.
// Reads never block on a concurrent write.
type Store interface {
	// Get returns the context stored under the fingerprint, if any.
	Get(fingerprint string) (Context, bool, error)
	// Put stores a context under its fingerprint and marks it latest.
	Put(c Context) error
	// Latest returns the most recently stored context regardless of
	// fingerprint, for degraded fallback when synthesis fails.
	Latest() (Context, bool, error)
}

// MemStore is an in-memory Store for tests and one-shot runs.
type MemStore struct {
	mu     sync.RWMutex
	byKey  map[string]Context
	latest string
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{byKey: map[string]Context{}}
}

func (s *MemStore) Get(fingerprint string) (Context, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byKey[fingerprint]
	return c, ok, nil
}

func (s *MemStore) Put(c Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byKey[c.Fingerprint] = c
	s.latest = c.Fingerprint
	return nil
}

func (s *MemStore) Latest() (Context, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byKey[s.latest]
	return c, ok, nil
}

// FileStore persists contexts as one JSON document per fingerprint
// under a cache directory, with a pointer file naming the latest.
type FileStore struct {
	dir string
}

// DefaultCacheDir is where the file store lives relative to a project
// root.
const DefaultCacheDir = ".mergevet/cache"

// NewFileStore creates the cache directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the store's directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) Get(fingerprint string) (Context, bool, error) {
	data, err := os.ReadFile(s.entryPath(fingerprint))
	if err != nil {
		if os.IsNotExist(err) {
			return Context{}, false, nil
		}
		return Context{}, false, fmt.Errorf("reading cached context: %w", err)
	}
	var c Context
	if err := json.Unmarshal(data, &c); err != nil {
		// A corrupt entry is a miss, not a failure.
		return Context{}, false, nil
	}
	return c, true, nil
}

func (s *FileStore) Put(c Context) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling context: %w", err)
	}
	if err := os.WriteFile(s.entryPath(c.Fingerprint), data, 0o644); err != nil {
		return fmt.Errorf("writing cached context: %w", err)
	}
	if err := os.WriteFile(s.latestPath(), []byte(c.Fingerprint), 0o644); err != nil {
		return fmt.Errorf("writing latest pointer: %w", err)
	}
	return nil
}

func (s *FileStore) Latest() (Context, bool, error) {
	data, err := os.ReadFile(s.latestPath())
	if err != nil {
		if os.IsNotExist(err) {
			return Context{}, false, nil
		}
		return Context{}, false, fmt.Errorf("reading latest pointer: %w", err)
	}
	return s.Get(strings.TrimSpace(string(data)))
}

// Clear removes all stored contexts.
func (s *FileStore) Clear() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" || e.Name() == "latest" {
			if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
				return fmt.Errorf("removing %s: %w", e.Name(), err)
			}
		}
	}
	return nil
}

func (s *FileStore) entryPath(fingerprint string) string {
	return filepath.Join(s.dir, fingerprint+".json")
}

func (s *FileStore) latestPath() string {
	return filepath.Join(s.dir, "latest")
}
