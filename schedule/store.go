/*
store.go - Persistence interfaces for shifts, roster, and time-off

PURPOSE:
  Defines the boundary between the engine and the backing store. The
  engine assumes a store with simple predicate-based read/update/delete
  plus count queries; it never builds SQL or inspects storage details.

KEY INTERFACES:
  ShiftStore:    Predicate-scoped shift persistence (the engine's only
                 write surface)
  Roster:        Read-only employee records from the roster collaborator
  TimeOffSource: Read-only time-off requests

PREDICATE MODEL:
  ShiftFilter expresses every predicate the engine needs: by ID, by
  employee, by series key (id = parent OR recurrence_parent_id = parent),
  by start-time range, by lock state, by status. ShiftPatch expresses a
  partial update; nil fields are left untouched.

LOCK AUTHORITY:
  Scoped bulk mutations pass Locked=false in the filter. The store's own
  row-level filter is authoritative at mutation time; any locked count
  taken beforehand is a best-effort UI hint (see series.go).

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite store
  - schedule/store: In-memory store for testing/dev

SEE ALSO:
  - series.go: The only consumer of the write operations
*/
package schedule

import (
	"context"
	"time"
)

// =============================================================================
// PREDICATES AND PATCHES
// =============================================================================

// ShiftFilter is a conjunction of predicates; nil fields match everything.
type ShiftFilter struct {
	ID         *ShiftID
	EmployeeID *EmployeeID

	// SeriesKey matches members of a series: the parent row itself plus
	// every child referencing it.
	SeriesKey *ShiftID

	// StartFrom/StartTo bound the shift's StartTime (inclusive).
	StartFrom *time.Time
	StartTo   *time.Time

	Locked   *bool
	Statuses []ShiftStatus
}

// Matches reports whether a shift satisfies the filter. Store
// implementations may evaluate the predicate natively instead.
func (f ShiftFilter) Matches(s Shift) bool {
	if f.ID != nil && s.ID != *f.ID {
		return false
	}
	if f.EmployeeID != nil && s.EmployeeID != *f.EmployeeID {
		return false
	}
	if f.SeriesKey != nil && s.ID != *f.SeriesKey && (s.RecurrenceParentID == nil || *s.RecurrenceParentID != *f.SeriesKey) {
		return false
	}
	if f.StartFrom != nil && s.StartTime.Before(*f.StartFrom) {
		return false
	}
	if f.StartTo != nil && s.StartTime.After(*f.StartTo) {
		return false
	}
	if f.Locked != nil && s.Locked != *f.Locked {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, st := range f.Statuses {
			if s.Status == st {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ShiftPatch is a partial update; nil fields are left untouched.
// Time fields are honored only for single-shift ("this" scope) updates;
// the series engine strips them from bulk payloads.
type ShiftPatch struct {
	StartTime    *time.Time
	EndTime      *time.Time
	BreakMinutes *int
	Position     *string
	Notes        *string
	Status       *ShiftStatus

	RecurrencePattern *RecurrencePattern

	// ClearRecurrence detaches the shift from its series: IsRecurring,
	// RecurrencePattern, and RecurrenceParentID are all cleared.
	ClearRecurrence bool
}

// Apply returns a copy of the shift with the patch applied.
func (p ShiftPatch) Apply(s Shift) Shift {
	if p.StartTime != nil {
		s.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		s.EndTime = *p.EndTime
	}
	if p.BreakMinutes != nil {
		s.BreakMinutes = *p.BreakMinutes
	}
	if p.Position != nil {
		s.Position = *p.Position
	}
	if p.Notes != nil {
		s.Notes = *p.Notes
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.RecurrencePattern != nil {
		s.RecurrencePattern = p.RecurrencePattern
	}
	if p.ClearRecurrence {
		s.IsRecurring = false
		s.RecurrencePattern = nil
		s.RecurrenceParentID = nil
	}
	return s
}

// WithoutTimeFields strips start/end from a bulk payload so distinct
// occurrences are never collapsed onto the same timestamp.
func (p ShiftPatch) WithoutTimeFields() ShiftPatch {
	p.StartTime = nil
	p.EndTime = nil
	return p
}

// =============================================================================
// STORES
// =============================================================================

// ShiftStore handles shift persistence. Individual calls are atomic;
// multi-call sequences are not transactional unless an implementation
// makes them so (see InsertBatch).
type ShiftStore interface {
	// Insert persists one shift, assigning its ID when empty.
	Insert(ctx context.Context, s Shift) (Shift, error)

	// InsertBatch persists several shifts atomically: all or none.
	InsertBatch(ctx context.Context, shifts []Shift) ([]Shift, error)

	// Get returns the shift or ErrShiftNotFound.
	Get(ctx context.Context, id ShiftID) (Shift, error)

	// Query returns shifts matching the filter, ordered by StartTime.
	Query(ctx context.Context, f ShiftFilter) ([]Shift, error)

	// Count returns the number of shifts matching the filter.
	Count(ctx context.Context, f ShiftFilter) (int, error)

	// Update applies the patch to every shift matching the filter and
	// returns the affected count.
	Update(ctx context.Context, f ShiftFilter, p ShiftPatch) (int, error)

	// Delete removes every shift matching the filter and returns the
	// affected count.
	Delete(ctx context.Context, f ShiftFilter) (int, error)
}

// Roster provides read-only access to employee records.
type Roster interface {
	GetEmployee(ctx context.Context, id EmployeeID) (Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	SaveEmployee(ctx context.Context, e Employee) error
}

// TimeOffSource provides read-only access to time-off requests.
type TimeOffSource interface {
	ListTimeOff(ctx context.Context, employeeID EmployeeID) ([]TimeOffRequest, error)
	SaveTimeOff(ctx context.Context, req TimeOffRequest) (TimeOffRequest, error)
}
