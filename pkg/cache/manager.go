// Package cache provides mtime-keyed memoization for file reads, parsed
// trees, and whole-skill evaluation results. One Manager instance is shared
// by every component that reads files, replacing ad hoc per-module caches;
// it is internally synchronized so concurrent catalog evaluations can share
// it safely.
package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// Kind namespaces cache entries so a raw read and a parsed tree of the same
// file never collide.
type Kind string

const (
	KindFileText Kind = "text"
	KindTree     Kind = "tree"
	KindResult   Kind = "result"
)

// Stats exposes hit/miss counters for observability
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

type entry struct {
	modTime time.Time
	size    int64
	payload any
}

// Manager memoizes loader results keyed by path, kind, and the backing
// file's modification time. Entries live for the process lifetime; a change
// in mtime or size invalidates the entry on the next access.
type Manager struct {
	mu      sync.RWMutex
	entries map[string]entry
	statFn  func(path string) (time.Time, int64, error)

	hits   atomic.Int64
	misses atomic.Int64
}

// NewManager creates an empty cache manager
func NewManager() *Manager {
	return &Manager{
		entries: make(map[string]entry),
		statFn:  statPath,
	}
}

func cacheKey(path string, kind Kind) string {
	return string(kind) + "\x00" + path
}

// GetOrLoad returns the cached payload for (path, kind) if the backing
// path's modification time is unchanged, otherwise invokes loader and
// stores its result. Loader errors are returned without caching.
func (m *Manager) GetOrLoad(path string, kind Kind, loader func() (any, error)) (any, error) {
	modTime, size, err := m.statFn(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat %s", path)
	}

	key := cacheKey(path, kind)

	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if ok && e.modTime.Equal(modTime) && e.size == size {
		m.hits.Add(1)
		return e.payload, nil
	}

	m.misses.Add(1)
	payload, err := loader()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.entries[key] = entry{modTime: modTime, size: size, payload: payload}
	m.mu.Unlock()

	return payload, nil
}

// GetOrLoadKeyed is GetOrLoad for entries whose freshness is determined by
// an explicit signature rather than a single file's mtime, e.g. a whole
// skill directory's aggregate modification signature.
func (m *Manager) GetOrLoadKeyed(key string, signature string, loader func() (any, error)) (any, error) {
	full := cacheKey(key, KindResult)

	m.mu.RLock()
	e, ok := m.entries[full]
	m.mu.RUnlock()

	if ok && e.payload != nil {
		if sig, okSig := e.payload.(signedPayload); okSig && sig.signature == signature {
			m.hits.Add(1)
			return sig.payload, nil
		}
	}

	m.misses.Add(1)
	payload, err := loader()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.entries[full] = entry{payload: signedPayload{signature: signature, payload: payload}}
	m.mu.Unlock()

	return payload, nil
}

type signedPayload struct {
	signature string
	payload   any
}

// Stats returns a snapshot of the hit/miss counters
func (m *Manager) Stats() Stats {
	hits := m.hits.Load()
	misses := m.misses.Load()
	s := Stats{Hits: hits, Misses: misses}
	if total := hits + misses; total > 0 {
		s.HitRate = float64(hits) / float64(total)
	}
	return s
}

// Len returns the number of live entries, mainly for tests
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
