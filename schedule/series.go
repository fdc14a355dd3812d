/*
series.go - Series mutation engine

PURPOSE:
  Creates single shifts and recurring series, and applies scope-limited
  edits and deletes across a series while honoring the published/locked
  state of individual members.

SCOPES:
  this       Exactly the named shift. Refuses locked shifts outright.
             Editing one occurrence detaches it from its series; this is
             the only scope where time fields may change.
  following  The named shift plus every unlocked series member starting
             at or after it. Locked members are skipped and counted.
  all        The whole series, unlocked members only.

LOCK SEMANTICS:
  A this-scope mutation of a locked shift is a terminal error; retrying
  cannot change the lock. Bulk scopes never fail on locked members; the
  store-level locked=false row filter is authoritative at mutation time
  and the pre-counted locked number is reported as a UI hint.

SERIES CREATION:
  The first occurrence is persisted as the parent, the recurrence pattern
  is expanded from its start, and children are cloned onto each later
  date with the parent's wall-clock start and the parent's exact elapsed
  duration (end = start + duration), so an 8-hour shift stays 8 hours
  across a DST transition. Children are batch-inserted; a batch failure
  after the parent insert surfaces as PartialSeriesError.

CACHE COHERENCE:
  Every mutation drives the QueryCache protocol: snapshot, speculative
  apply with the same predicate sent to the store, restore on failure,
  invalidate regardless of outcome. See cache.go.

SEE ALSO:
  - recurrence.go: Pattern expansion
  - store.go: Predicate and patch model
*/
package schedule

import (
	"context"
	"fmt"
	"time"
)

// =============================================================================
// SCOPES AND RESULTS
// =============================================================================

type MutationScope string

const (
	ScopeThis      MutationScope = "this"
	ScopeFollowing MutationScope = "following"
	ScopeAll       MutationScope = "all"
)

func ParseScope(s string) (MutationScope, error) {
	switch MutationScope(s) {
	case ScopeThis, ScopeFollowing, ScopeAll:
		return MutationScope(s), nil
	case "":
		return ScopeThis, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidScope, s)
	}
}

// MutationResult reports both numbers so publish-lock preservation stays
// visible to the user: how many members changed and how many locked
// members were left untouched.
type MutationResult struct {
	Affected      int
	LockedSkipped int
}

// CreateResult reports what a create persisted.
type CreateResult struct {
	Parent   Shift
	Children []Shift
}

// SeriesInfo previews the blast radius of a following/all mutation.
type SeriesInfo struct {
	Total  int
	Locked int
}

// =============================================================================
// ENGINE
// =============================================================================

// SeriesEngine mutates shifts and series against a backing store, keeping
// an optional read cache coherent along the way.
type SeriesEngine struct {
	store ShiftStore
	cache QueryCache
}

// NewSeriesEngine creates an engine over the given store. cache may be
// nil when the caller has no read cache to keep coherent.
func NewSeriesEngine(store ShiftStore, cache QueryCache) *SeriesEngine {
	if cache == nil {
		cache = NopCache{}
	}
	return &SeriesEngine{store: store, cache: cache}
}

// =============================================================================
// CREATE - Single or recurring
// =============================================================================

// Create persists a shift. When the shift carries a recurrence pattern
// and IsRecurring, the full series is created: the shift itself becomes
// the parent and one child is persisted per later occurrence.
func (e *SeriesEngine) Create(ctx context.Context, s Shift) (CreateResult, error) {
	if err := checkShift(s); err != nil {
		return CreateResult{}, err
	}

	invalidate := ShiftFilter{EmployeeID: &s.EmployeeID}
	defer e.cache.Invalidate(invalidate)

	if !s.IsRecurring || s.RecurrencePattern == nil {
		s.IsRecurring = false
		s.RecurrencePattern = nil
		s.RecurrenceParentID = nil
		created, err := e.store.Insert(ctx, s)
		if err != nil {
			return CreateResult{}, err
		}
		return CreateResult{Parent: created}, nil
	}

	pattern := *s.RecurrencePattern
	occurrences, err := Expand(s.StartTime, pattern)
	if err != nil {
		return CreateResult{}, err
	}
	// An until-date before the anchor expands to nothing. Reject it before
	// any row is written so no orphan parent is left behind.
	if len(occurrences) == 0 {
		return CreateResult{}, fmt.Errorf("%w: until date precedes the first occurrence", ErrInvalidPattern)
	}

	s.RecurrenceParentID = nil
	parent, err := e.store.Insert(ctx, s)
	if err != nil {
		return CreateResult{}, err
	}

	duration := parent.Duration()
	children := make([]Shift, 0, len(occurrences)-1)
	for _, start := range occurrences[1:] {
		parentID := parent.ID
		children = append(children, Shift{
			EmployeeID:         parent.EmployeeID,
			StartTime:          start,
			EndTime:            start.Add(duration),
			BreakMinutes:       parent.BreakMinutes,
			Position:           parent.Position,
			Notes:              parent.Notes,
			Status:             parent.Status,
			IsRecurring:        true,
			RecurrenceParentID: &parentID,
		})
	}
	if len(children) == 0 {
		return CreateResult{Parent: parent}, nil
	}

	created, err := e.store.InsertBatch(ctx, children)
	if err != nil {
		// The parent row exists without its children. The store round trip
		// already happened, so this cannot be hidden; surface it.
		return CreateResult{Parent: parent}, &PartialSeriesError{ParentID: parent.ID, Cause: err}
	}

	return CreateResult{Parent: parent, Children: created}, nil
}

func checkShift(s Shift) error {
	if s.EmployeeID == "" {
		return fmt.Errorf("%w: missing employee", ErrInvalidShift)
	}
	if !s.EndTime.After(s.StartTime) {
		return fmt.Errorf("%w: end time must be after start time", ErrInvalidShift)
	}
	if s.BreakMinutes < 0 {
		return fmt.Errorf("%w: negative break", ErrInvalidShift)
	}
	if s.Locked {
		return fmt.Errorf("%w: cannot create a shift in locked state", ErrInvalidShift)
	}
	return nil
}

// =============================================================================
// SCOPED UPDATE / DELETE
// =============================================================================

// UpdateScoped applies a patch to the named shift and, for bulk scopes,
// its series siblings. Time fields only apply in this-scope; bulk scopes
// strip them so distinct occurrences never collapse onto one timestamp.
func (e *SeriesEngine) UpdateScoped(ctx context.Context, id ShiftID, scope MutationScope, patch ShiftPatch) (MutationResult, error) {
	shift, err := e.store.Get(ctx, id)
	if err != nil {
		return MutationResult{}, err
	}

	switch scope {
	case ScopeThis:
		if shift.Locked {
			return MutationResult{}, &LockedShiftError{ShiftID: id}
		}
		if patch.StartTime != nil || patch.EndTime != nil {
			// Time change stays valid as a pair even when only one side moves.
			next := patch.Apply(shift)
			if !next.EndTime.After(next.StartTime) {
				return MutationResult{}, fmt.Errorf("%w: end time must be after start time", ErrInvalidShift)
			}
		}
		if shift.IsRecurring || shift.RecurrenceParentID != nil {
			// Editing one occurrence forks it out of the series.
			patch.ClearRecurrence = true
		}
		affected, err := e.mutate(ctx, ShiftFilter{ID: &id}, patch, false)
		return MutationResult{Affected: affected}, err

	case ScopeFollowing, ScopeAll:
		filter, lockedCount, err := e.bulkFilter(ctx, shift, scope)
		if err != nil {
			return MutationResult{}, err
		}
		bulk := patch.WithoutTimeFields()
		bulk.ClearRecurrence = false
		affected, err := e.mutate(ctx, filter, bulk, false)
		return MutationResult{Affected: affected, LockedSkipped: lockedCount}, err

	default:
		return MutationResult{}, fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}
}

// DeleteScoped removes the named shift, or the unlocked members of its
// series for bulk scopes.
func (e *SeriesEngine) DeleteScoped(ctx context.Context, id ShiftID, scope MutationScope) (MutationResult, error) {
	shift, err := e.store.Get(ctx, id)
	if err != nil {
		return MutationResult{}, err
	}

	switch scope {
	case ScopeThis:
		if shift.Locked {
			return MutationResult{}, &LockedShiftError{ShiftID: id}
		}
		affected, err := e.mutate(ctx, ShiftFilter{ID: &id}, ShiftPatch{}, true)
		return MutationResult{Affected: affected}, err

	case ScopeFollowing, ScopeAll:
		filter, lockedCount, err := e.bulkFilter(ctx, shift, scope)
		if err != nil {
			return MutationResult{}, err
		}
		affected, err := e.mutate(ctx, filter, ShiftPatch{}, true)
		return MutationResult{Affected: affected, LockedSkipped: lockedCount}, err

	default:
		return MutationResult{}, fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}
}

// bulkFilter builds the unlocked-members predicate for a bulk scope and
// pre-counts the locked members in range. The count is a best-effort
// hint: a member locked between the count and the mutation is simply
// excluded by the store's own filter.
func (e *SeriesEngine) bulkFilter(ctx context.Context, shift Shift, scope MutationScope) (ShiftFilter, int, error) {
	parent := shift.SeriesKey()
	filter := ShiftFilter{SeriesKey: &parent}
	if scope == ScopeFollowing {
		from := shift.StartTime
		filter.StartFrom = &from
	}

	locked := true
	lockedFilter := filter
	lockedFilter.Locked = &locked
	lockedCount, err := e.store.Count(ctx, lockedFilter)
	if err != nil {
		return ShiftFilter{}, 0, err
	}

	unlocked := false
	filter.Locked = &unlocked
	return filter, lockedCount, nil
}

// mutate drives the store call wrapped in the cache-coherence protocol:
// snapshot, speculative apply, restore on failure, invalidate always.
func (e *SeriesEngine) mutate(ctx context.Context, filter ShiftFilter, patch ShiftPatch, deletion bool) (int, error) {
	snap := e.cache.Snapshot(filter)
	if deletion {
		e.cache.SpeculativeApply(filter, func(s Shift) (Shift, bool) { return s, false })
	} else {
		e.cache.SpeculativeApply(filter, func(s Shift) (Shift, bool) { return patch.Apply(s), true })
	}

	var affected int
	var err error
	if deletion {
		affected, err = e.store.Delete(ctx, filter)
	} else {
		affected, err = e.store.Update(ctx, filter, patch)
	}
	if err != nil {
		e.cache.Restore(snap)
	}
	e.cache.Invalidate(filter)
	return affected, err
}

// =============================================================================
// SERIES INFO
// =============================================================================

// Info reports the series membership for any member: total members and
// how many of them are locked. Used to preview scope impact before the
// user commits to following/all.
func (e *SeriesEngine) Info(ctx context.Context, id ShiftID) (SeriesInfo, error) {
	shift, err := e.store.Get(ctx, id)
	if err != nil {
		return SeriesInfo{}, err
	}

	parent := shift.SeriesKey()
	filter := ShiftFilter{SeriesKey: &parent}
	total, err := e.store.Count(ctx, filter)
	if err != nil {
		return SeriesInfo{}, err
	}

	locked := true
	filter.Locked = &locked
	lockedCount, err := e.store.Count(ctx, filter)
	if err != nil {
		return SeriesInfo{}, err
	}
	return SeriesInfo{Total: total, Locked: lockedCount}, nil
}

// =============================================================================
// QUERY PASSTHROUGH
// =============================================================================

// ShiftsForEmployee returns an employee's shifts in a start-time range.
func (e *SeriesEngine) ShiftsForEmployee(ctx context.Context, employeeID EmployeeID, from, to time.Time) ([]Shift, error) {
	return e.store.Query(ctx, ShiftFilter{
		EmployeeID: &employeeID,
		StartFrom:  &from,
		StartTo:    &to,
	})
}
