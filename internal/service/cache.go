package service

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Family groups cached queries so a mutation can invalidate every query
// that depends on the entity kind it touched.
type Family string

const (
	FamilyTask    Family = "Task"
	FamilyTag     Family = "Tag"
	FamilyComment Family = "Comment"
	FamilyUser    Family = "User"
)

// AllFamilies lists every family.
var AllFamilies = []Family{FamilyTask, FamilyTag, FamilyComment, FamilyUser}

// Invalidation is delivered to subscribers after a mutation.
type Invalidation struct {
	Families []Family
}

// Has reports whether f was invalidated.
func (inv Invalidation) Has(f Family) bool {
	return slices.Contains(inv.Families, f)
}

// CacheStats is a point-in-time view of the query cache counters.
type CacheStats struct {
	Hits          uint64
	Misses        uint64
	Invalidations uint64
	Entries       int
	Stale         int
}

type cacheEntry struct {
	value    any
	families []Family
	stale    bool
}

// queryCache holds the last result of each query key. Fetches of the same
// key that overlap share one load; results computed across an
// invalidation are not cached.
type queryCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	version uint64

	group singleflight.Group

	subMu   sync.Mutex
	subs    map[int]func(Invalidation)
	nextSub int

	hits          atomic.Uint64
	misses        atomic.Uint64
	invalidations atomic.Uint64
}

func newQueryCache() *queryCache {
	return &queryCache{
		entries: make(map[string]*cacheEntry),
		subs:    make(map[int]func(Invalidation)),
	}
}

// lookup returns a fresh cached value and the current version.
func (c *queryCache) lookup(key string) (any, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok && !e.stale {
		c.hits.Add(1)
		return e.value, c.version, true
	}
	c.misses.Add(1)
	return nil, c.version, false
}

// store caches value unless an invalidation happened since version.
func (c *queryCache) store(key string, families []Family, value any, version uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.version != version {
		return
	}
	c.entries[key] = &cacheEntry{value: value, families: families}
}

// invalidate marks every entry tagged with one of families stale and
// notifies subscribers.
func (c *queryCache) invalidate(families ...Family) {
	if len(families) == 0 {
		return
	}

	c.mu.Lock()
	c.version++
	for _, e := range c.entries {
		for _, f := range e.families {
			if slices.Contains(families, f) {
				e.stale = true
				break
			}
		}
	}
	c.mu.Unlock()
	c.invalidations.Add(1)

	c.subMu.Lock()
	subs := make([]func(Invalidation), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.subMu.Unlock()

	inv := Invalidation{Families: slices.Clone(families)}
	for _, fn := range subs {
		fn(inv)
	}
}

func (c *queryCache) subscribe(fn func(Invalidation)) func() {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subMu.Lock()
			defer c.subMu.Unlock()
			delete(c.subs, id)
		})
	}
}

func (c *queryCache) stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := CacheStats{
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Invalidations: c.invalidations.Load(),
		Entries:       len(c.entries),
	}
	for _, e := range c.entries {
		if e.stale {
			st.Stale++
		}
	}
	return st
}

// fetch serves key from the cache or loads it. Overlapping misses share
// one load, which runs detached from any single caller's context; each
// caller still returns as soon as its own ctx is done.
func fetch[T any](
	ctx context.Context,
	s *Service,
	key string,
	families []Family,
	load func() T,
	clone func(T) T,
) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	v, version, ok := s.cache.lookup(key)
	if ok {
		return clone(v.(T)), nil
	}

	detached := context.WithoutCancel(ctx)
	ch := s.cache.group.DoChan(fmt.Sprintf("%s@%d", key, version), func() (any, error) {
		if err := s.wait(detached); err != nil {
			return nil, err
		}
		v := load()
		s.cache.store(key, families, v, version)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return clone(res.Val.(T)), nil
	}
}
