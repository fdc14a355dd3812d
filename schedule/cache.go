/*
cache.go - Query-cache port for optimistic series mutation

PURPOSE:
  The exact affected set of a scoped bulk mutation is only known after
  the store round-trip, but user-perceived latency wants immediate
  feedback. The engine therefore lets an injected cache apply the same
  scope-filter predicate speculatively, roll it back on failure, and
  invalidate afterward so the cache converges to the store's truth.
  This is a cache-coherence contract, not a business rule.

PROTOCOL (driven by series.go):
  1. snap := cache.Snapshot(filter)       before the store mutation
  2. cache.SpeculativeApply(filter, fn)   immediate optimistic view
  3. on store failure: cache.Restore(snap)
  4. always: cache.Invalidate(filter)     refetch converges the cache

IMPLEMENTATIONS:
  - querycache: go-cache backed implementation
  - NopCache: default when no cache is wired

SEE ALSO:
  - series.go: The only driver of this protocol
  - querycache/querycache.go: Concrete implementation
*/
package schedule

// CacheSnapshot is an opaque pre-mutation capture, produced and consumed
// only by the cache implementation that created it.
type CacheSnapshot interface{}

// QueryCache is the optimistic read-cache port injected into the series
// engine. All methods must be safe for concurrent use.
type QueryCache interface {
	// Snapshot captures the cached state affected by the filter.
	Snapshot(f ShiftFilter) CacheSnapshot

	// SpeculativeApply rewrites cached entries using the same predicate
	// the store will receive. mutate returns the replacement shift and
	// whether to keep it (false removes it, e.g. for deletes).
	SpeculativeApply(f ShiftFilter, mutate func(Shift) (Shift, bool))

	// Restore reverts a failed speculative apply to the snapshot.
	Restore(snap CacheSnapshot)

	// Invalidate drops cached entries affected by the filter so the next
	// read refetches authoritative store state.
	Invalidate(f ShiftFilter)
}

// NopCache satisfies QueryCache with no behavior. Used when the caller
// has no read cache to keep coherent.
type NopCache struct{}

func (NopCache) Snapshot(ShiftFilter) CacheSnapshot                       { return nil }
func (NopCache) SpeculativeApply(ShiftFilter, func(Shift) (Shift, bool)) {}
func (NopCache) Restore(CacheSnapshot)                                   {}
func (NopCache) Invalidate(ShiftFilter)                                  {}
