/*
errors.go - Centralized error types for the scheduling engine

PURPOSE:
  All engine error types in one place. Validation conflicts and overtime
  warnings are NOT errors; they are structured results. Errors here cover
  lock violations, malformed patterns, missing records, and store-level
  failures that must propagate to the caller.

ERROR CATEGORIES:
  1. Lock violations - fatal for single-record mutation, never retried
  2. Pattern errors  - malformed or unbounded recurrence input
  3. Store errors    - persistence failures, partial series creation

USAGE:
  if errors.Is(err, schedule.ErrShiftLocked) {
      // render the published-week message, do not retry
  }

SEE ALSO:
  - series.go: Raises lock and partial-series errors
  - recurrence.go: Raises pattern errors
*/
package schedule

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrShiftLocked is returned when a direct mutation targets a shift in
	// a published week. Retrying does not change the lock state, so this
	// error is terminal for the attempted operation.
	ErrShiftLocked = errors.New("cannot modify a locked shift: the schedule has been published")

	// ErrShiftNotFound is returned when a referenced shift does not exist.
	ErrShiftNotFound = errors.New("shift not found")

	// ErrInvalidPattern is returned for a malformed recurrence pattern.
	ErrInvalidPattern = errors.New("invalid recurrence pattern")

	// ErrUnboundedPattern is returned when a pattern lacks an end condition
	// or would expand past the occurrence cap.
	ErrUnboundedPattern = errors.New("recurrence pattern must be bounded")

	// ErrInvalidScope is returned for an unrecognized mutation scope.
	ErrInvalidScope = errors.New("invalid mutation scope")

	// ErrInvalidShift is returned when a shift fails basic field checks
	// (end not after start, negative break).
	ErrInvalidShift = errors.New("invalid shift")

	// ErrSeriesPartiallyCreated is returned when the series parent was
	// persisted but the children batch failed. The caller must surface
	// this; the parent exists and the series is incomplete.
	ErrSeriesPartiallyCreated = errors.New("series partially created")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// LockedShiftError identifies which shift blocked a direct mutation.
type LockedShiftError struct {
	ShiftID ShiftID
}

func (e *LockedShiftError) Error() string {
	return fmt.Sprintf("shift %s is locked: the schedule has been published", e.ShiftID)
}

func (e *LockedShiftError) Unwrap() error { return ErrShiftLocked }

// PartialSeriesError reports a parent persisted without its children.
type PartialSeriesError struct {
	ParentID ShiftID
	Cause    error
}

func (e *PartialSeriesError) Error() string {
	return fmt.Sprintf("series %s partially created: parent persisted, children failed: %v", e.ParentID, e.Cause)
}

func (e *PartialSeriesError) Unwrap() error { return ErrSeriesPartiallyCreated }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsLockViolation reports whether the error is a published-week lock hit.
func IsLockViolation(err error) bool {
	return errors.Is(err, ErrShiftLocked)
}

// IsClientError reports whether the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidPattern) ||
		errors.Is(err, ErrUnboundedPattern) ||
		errors.Is(err, ErrInvalidScope) ||
		errors.Is(err, ErrInvalidShift)
}

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrShiftNotFound)
}
