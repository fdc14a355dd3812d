/*
conflict.go - Conflict detection for candidate shifts

PURPOSE:
  Given a candidate shift (new or edited), the employee's other active
  shifts, and their approved time-off, produce the ordered list of
  conflicts the caller must show before a save is allowed.

DETECTION ORDER:
  1. Double-booking: identical start AND end against another active shift.
     Strongest category; detection emits exactly one conflict and skips
     the overlap pass, which would be redundant for that pair.
  2. Overlap: every remaining active shift whose open interval intersects
     the candidate's yields its own conflict.
  3. Time-off collision: independent of 1-2, the candidate's start or end
     falling within an approved request's inclusive day range yields one
     conflict per request hit.

CONTRACT:
  The output is a list, not a boolean. An empty list means no conflicts.
  Conflicts are data for the caller to render; they are never raised as
  errors and never auto-resolved.

SEE ALSO:
  - overtime.go: Advisory overtime evaluation (independent of conflicts)
  - validate.go: Composition of both into one result
*/
package schedule

import (
	"fmt"
	"time"
)

// =============================================================================
// CONFLICT DETECTOR
// =============================================================================

// DetectConflicts checks a candidate shift against the employee's other
// active shifts and approved time-off. When re-validating an existing
// shift, the candidate's own ID (if set) is excluded from comparison.
//
// Only shifts and requests belonging to the candidate's employee are
// considered; callers may pass wider sets.
func DetectConflicts(candidate Shift, existing []Shift, timeOff []TimeOffRequest) []Conflict {
	var conflicts []Conflict

	others := relevantShifts(candidate, existing)

	// Pass 1: double-booking. Identical interval is the strongest signal;
	// one conflict, and the overlap pass is skipped for the whole candidate
	// since it would only restate the same collision.
	doubleBooked := false
	for _, other := range others {
		if other.StartTime.Equal(candidate.StartTime) && other.EndTime.Equal(candidate.EndTime) {
			id := other.ID
			conflicts = append(conflicts, Conflict{
				Type:               ConflictDoubleBooking,
				Severity:           SeverityError,
				Message:            fmt.Sprintf("employee is already booked from %s to %s", other.StartTime.Format("15:04"), other.EndTime.Format("15:04")),
				ConflictingShiftID: &id,
			})
			doubleBooked = true
			break
		}
	}

	// Pass 2: overlaps, one conflict per offending shift.
	if !doubleBooked {
		for _, other := range others {
			if Overlaps(candidate, other) {
				id := other.ID
				conflicts = append(conflicts, Conflict{
					Type:               ConflictOverlappingShift,
					Severity:           SeverityError,
					Message:            fmt.Sprintf("shift overlaps an existing shift (%s to %s)", other.StartTime.Format("15:04"), other.EndTime.Format("15:04")),
					ConflictingShiftID: &id,
				})
			}
		}
	}

	// Pass 3: time-off collisions, independent of the shift passes.
	for _, req := range timeOff {
		if req.Status != TimeOffApproved || req.EmployeeID != candidate.EmployeeID {
			continue
		}
		from := StartOfDay(req.StartDate)
		to := EndOfDay(req.EndDate)
		if within(candidate.StartTime, from, to) || within(candidate.EndTime, from, to) {
			id := req.ID
			conflicts = append(conflicts, Conflict{
				Type:      ConflictTimeOff,
				Severity:  SeverityError,
				Message:   fmt.Sprintf("employee has approved time off from %s to %s", req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02")),
				TimeOffID: &id,
			})
		}
	}

	return conflicts
}

// relevantShifts filters the comparison set down to the candidate
// employee's other active shifts.
func relevantShifts(candidate Shift, existing []Shift) []Shift {
	var out []Shift
	for _, s := range existing {
		if s.EmployeeID != candidate.EmployeeID {
			continue
		}
		if candidate.ID != "" && s.ID == candidate.ID {
			continue
		}
		if !s.Active() {
			continue
		}
		out = append(out, s)
	}
	return out
}

func within(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}
