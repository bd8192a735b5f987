// ABOUTME: Keyed query cache with explicit staleness marking
// ABOUTME: Read-through on miss or stale, invalidate-on-write, no TTL or eviction

package querycache

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Fetch loads the value for a key from the source of truth
type Fetch func(ctx context.Context) (any, error)

// State describes what the cache holds for a key
type State int

const (
	StateMissing State = iota
	StateFresh
	StateStale
)

func (s State) String() string {
	switch s {
	case StateMissing:
		return "missing"
	case StateFresh:
		return "fresh"
	case StateStale:
		return "stale"
	default:
		return "unknown"
	}
}

// Stats counts cache activity since creation
type Stats struct {
	Hits          int `json:"hits"`
	Misses        int `json:"misses"`
	Invalidations int `json:"invalidations"`
	Discarded     int `json:"discarded"`
	Entries       int `json:"entries"`
}

type entry struct {
	value    any
	stale    bool
	storedAt time.Time
}

// Cache holds fetched values until they are invalidated.
//
// Every key has a generation that Invalidate bumps. A fetch remembers the
// generation it started under and its result is only stored if no
// invalidation happened meanwhile, so a read racing a write cannot put
// pre-write data back into the cache.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	gens    map[string]uint64
	group   singleflight.Group
	stats   Stats
	now     func() time.Time
}

// New creates an empty cache
func New() *Cache {
	return &Cache{
		entries: make(map[string]*entry),
		gens:    make(map[string]uint64),
		now:     time.Now,
	}
}

// Read returns the cached value for key when it is present and fresh.
// Otherwise it calls fetch, stores the result, and returns it. Concurrent
// reads of one key within a generation share a single fetch. Errors are
// returned to every waiting caller and never cached.
//
// The shared fetch is detached from any single caller's cancellation. Each
// caller stops waiting when its own ctx is done; the others still get the
// result.
func (c *Cache) Read(ctx context.Context, key string, fetch Fetch) (any, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && !e.stale {
		c.stats.Hits++
		c.mu.Unlock()
		slog.Debug("Cache hit", "key", key)
		return e.value, nil
	}
	c.stats.Misses++
	gen := c.gens[key]
	c.gens[key] = gen
	c.mu.Unlock()
	slog.Debug("Cache miss", "key", key, "generation", gen)

	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(flightKey(key, gen), func() (any, error) {
		val, err := fetch(flightCtx)
		if err != nil {
			return nil, err
		}
		c.store(key, gen, val)
		return val, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			slog.Debug("Cache fetch shared", "key", key)
		}
		return res.Val, res.Err
	case <-ctx.Done():
		slog.Debug("Cache read abandoned", "key", key, "error", ctx.Err())
		return nil, ctx.Err()
	}
}

// Invalidate marks key stale; the next Read re-fetches unconditionally
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked(key)
	slog.Debug("Cache invalidated", "key", key)
}

// InvalidateAll marks every known key stale, including keys whose first
// fetch is still in flight
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.gens {
		c.invalidateLocked(key)
	}
	slog.Debug("Cache invalidated all keys")
}

func (c *Cache) invalidateLocked(key string) {
	c.gens[key]++
	if e, ok := c.entries[key]; ok {
		e.stale = true
	}
	c.stats.Invalidations++
}

// Peek returns the value for key without fetching. Stale values are not returned.
func (c *Cache) Peek(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || e.stale {
		return nil, false
	}
	return e.value, true
}

// State reports whether key is missing, fresh, or stale
func (c *Cache) State(key string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	switch {
	case !ok:
		return StateMissing
	case e.stale:
		return StateStale
	default:
		return StateFresh
	}
}

// StoredAt returns when the value for key was last stored
func (c *Cache) StoredAt(key string) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return time.Time{}, false
	}
	return e.storedAt, true
}

// Keys returns every key the cache holds an entry for, sorted
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Stats returns a snapshot of the counters
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = len(c.entries)
	return s
}

func (c *Cache) store(key string, gen uint64, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[key] != gen {
		c.stats.Discarded++
		slog.Debug("Cache discarded fetch started before invalidation", "key", key, "generation", gen)
		return
	}
	c.entries[key] = &entry{value: value, storedAt: c.now()}
	slog.Debug("Cache set", "key", key, "generation", gen)
}

func flightKey(key string, gen uint64) string {
	return key + "#" + strconv.FormatUint(gen, 10)
}
