/*
Package querycache implements the schedule.QueryCache port on top of an
in-memory TTL cache (patrickmn/go-cache).

PURPOSE:
  Readers cache shift query results under a key of their choosing (for
  example one key per employee/week view). The series engine then drives
  the optimistic protocol against those entries: speculative apply for
  immediate feedback, restore on store failure, invalidate after every
  mutation so stale entries are refetched from the store.

KEYING:
  The cache does not interpret keys. Mutation predicates are applied to
  the cached shifts themselves: an entry is touched when any of its
  shifts matches the mutation filter.

SEE ALSO:
  - schedule/cache.go: The port and protocol this implements
*/
package querycache

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/warp/schedule-engine/schedule"
)

// Cache is a TTL-bounded query cache for shift lists.
type Cache struct {
	mu      sync.Mutex
	backend *gocache.Cache
	ttl     time.Duration
}

// New creates a cache whose entries expire after ttl.
func New(ttl time.Duration) *Cache {
	return &Cache{
		backend: gocache.New(ttl, 2*ttl),
		ttl:     ttl,
	}
}

// =============================================================================
// READER SIDE
// =============================================================================

// Put stores a query result under the caller's key.
func (c *Cache) Put(key string, shifts []schedule.Shift) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.backend.Set(key, cloneShifts(shifts), c.ttl)
}

// Lookup returns the cached result for a key, if present.
func (c *Cache) Lookup(key string) ([]schedule.Shift, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.backend.Get(key)
	if !ok {
		return nil, false
	}
	return cloneShifts(v.([]schedule.Shift)), true
}

// =============================================================================
// MUTATION PROTOCOL (schedule.QueryCache)
// =============================================================================

type snapshot struct {
	entries map[string][]schedule.Shift
}

// Snapshot captures every entry touched by the filter so a failed
// speculative apply can be reverted exactly.
func (c *Cache) Snapshot(f schedule.ShiftFilter) schedule.CacheSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := snapshot{entries: make(map[string][]schedule.Shift)}
	for key, item := range c.backend.Items() {
		shifts, ok := item.Object.([]schedule.Shift)
		if !ok {
			continue
		}
		if anyMatch(shifts, f) {
			snap.entries[key] = cloneShifts(shifts)
		}
	}
	return snap
}

// SpeculativeApply rewrites cached shifts matching the filter in place,
// dropping those for which mutate returns false.
func (c *Cache) SpeculativeApply(f schedule.ShiftFilter, mutate func(schedule.Shift) (schedule.Shift, bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, item := range c.backend.Items() {
		shifts, ok := item.Object.([]schedule.Shift)
		if !ok || !anyMatch(shifts, f) {
			continue
		}
		next := make([]schedule.Shift, 0, len(shifts))
		for _, s := range shifts {
			if !f.Matches(s) {
				next = append(next, s)
				continue
			}
			if updated, keep := mutate(s); keep {
				next = append(next, updated)
			}
		}
		c.backend.Set(key, next, c.ttl)
	}
}

// Restore reverts the entries captured in the snapshot.
func (c *Cache) Restore(snap schedule.CacheSnapshot) {
	s, ok := snap.(snapshot)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for key, shifts := range s.entries {
		c.backend.Set(key, cloneShifts(shifts), c.ttl)
	}
}

// Invalidate drops every entry touched by the filter so the next read
// refetches authoritative store state.
func (c *Cache) Invalidate(f schedule.ShiftFilter) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, item := range c.backend.Items() {
		shifts, ok := item.Object.([]schedule.Shift)
		if !ok {
			continue
		}
		if anyMatch(shifts, f) {
			c.backend.Delete(key)
		}
	}
}

func anyMatch(shifts []schedule.Shift, f schedule.ShiftFilter) bool {
	for _, s := range shifts {
		if f.Matches(s) {
			return true
		}
	}
	return false
}

func cloneShifts(shifts []schedule.Shift) []schedule.Shift {
	out := make([]schedule.Shift, len(shifts))
	copy(out, shifts)
	return out
}

var _ schedule.QueryCache = (*Cache)(nil)
