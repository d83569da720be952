package projctx

import (
	"context"
	"errors"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/mergevet/mergevet/internal/model"
)

// ErrSynthesis marks a failure to build a fresh context. It is always
// recovered locally: the manager falls back to the latest stored
// context (degraded) rather than failing the review, because context
// is an optimization, not a correctness requirement.
var ErrSynthesis = errors.New("context synthesis failed")

// DefaultTTL is how long a stored context stays fresh. The granularity
// is a tunable, not a contract.
const DefaultTTL = 7 * 24 * time.Hour

// Options control a single context fetch.
type Options struct {
	TTL           time.Duration
	ForceRefresh  bool
	CriticalPaths []string
}

// Manager serves project contexts from a store, synthesizing and
// persisting a new one on miss. Hits perform no durable writes; a miss
// performs at most one.
type Manager struct {
	store Store
	now   func() time.Time
}

// NewManager builds a manager over the given store.
func NewManager(store Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// Get returns the current context for a project root. On a fresh cache
// hit it returns the stored context with UsedCache set; otherwise it
// synthesizes, persists, and returns a new one. A forced refresh
// bypasses the freshness check unconditionally. Synthesis failures
// degrade to the latest stored context when one exists.
func (m *Manager) Get(ctx context.Context, root string, opts Options) (Context, model.CacheInfo, error) {
	log := clog.FromContext(ctx)
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}

	fingerprint, err := Fingerprint(root)
	if err != nil {
		log.With("error", err.Error()).Warn("Fingerprinting failed, trying stored context")
		return m.fallback(ctx, err)
	}

	if !opts.ForceRefresh {
		stored, ok, err := m.store.Get(fingerprint)
		if err == nil && ok && !stored.Stale(fingerprint, opts.TTL, m.now()) {
			return stored, model.CacheInfo{
				UsedCache:      true,
				CacheTimestamp: stored.CreatedAt,
				CacheVersion:   stored.SchemaVersion,
			}, nil
		}
	}

	fresh, err := Synthesize(root, opts.CriticalPaths)
	if err != nil {
		log.With("error", err.Error()).Warn("Context synthesis failed, trying stored context")
		return m.fallback(ctx, err)
	}

	if err := m.store.Put(fresh); err != nil {
		// Persisting is best effort; the fresh context is still usable.
		log.With("error", err.Error()).Warn("Persisting context failed")
	}

	return fresh, model.CacheInfo{
		UsedCache:      false,
		CacheTimestamp: fresh.CreatedAt,
		CacheVersion:   fresh.SchemaVersion,
	}, nil
}

// fallback serves the latest stored context, marked degraded. Only
// when no context was ever stored does the original error surface.
func (m *Manager) fallback(ctx context.Context, cause error) (Context, model.CacheInfo, error) {
	stored, ok, err := m.store.Latest()
	if err != nil || !ok {
		return Context{}, model.CacheInfo{}, cause
	}
	stored.Degraded = true
	clog.FromContext(ctx).With("fingerprint", stored.Fingerprint).
		Warn("Serving degraded project context")
	return stored, model.CacheInfo{
		UsedCache:      true,
		CacheTimestamp: stored.CreatedAt,
		CacheVersion:   stored.SchemaVersion,
	}, nil
}
