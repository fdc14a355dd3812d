/*
Package schedule provides the core shift scheduling integrity engine.

PURPOSE:
  This package contains the domain types and algorithms for keeping a shift
  schedule consistent: conflict detection (double-booking, overlap, time-off
  collision), overtime exposure evaluation, recurring-series expansion, and
  scope-limited series mutation that respects the published/locked state of
  individual shifts.

KEY CONCEPTS IN THIS FILE (types.go):
  - Shift: One worked interval for one employee, possibly part of a series
  - TimeOffRequest: An inclusive day range that blocks scheduling when approved
  - Employee: Roster record consumed read-only (eligibility flags included)
  - OvertimeRules: Daily/weekly threshold configuration
  - Conflict / OvertimeWarning: Structured validation output, never panics

DESIGN PRINCIPLES:
  1. Purity: All validation and expansion is a pure function of its inputs
  2. Structured results: Conflicts and warnings are data, not errors
  3. Lock immutability: A locked shift is never mutated through this engine
  4. Type safety: Typed identifiers prevent mixing shift/employee IDs

USAGE:
  validator := schedule.Validator{Rules: rules}
  result := validator.Validate(candidate, existing, timeOff)
  if !result.Valid {
      // render result.Conflicts
  }

SEE ALSO:
  - conflict.go: Conflict detection
  - overtime.go: Overtime evaluation
  - series.go: Series mutation engine
*/
package schedule

import (
	"time"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ShiftID string
type EmployeeID string
type TimeOffID string

// =============================================================================
// SHIFT - One worked interval for one employee
// =============================================================================

type ShiftStatus string

const (
	StatusScheduled ShiftStatus = "scheduled"
	StatusConfirmed ShiftStatus = "confirmed"
	StatusCancelled ShiftStatus = "cancelled"
)

type Shift struct {
	ID         ShiftID
	EmployeeID EmployeeID

	StartTime    time.Time
	EndTime      time.Time
	BreakMinutes int

	Position string
	Notes    string
	Status   ShiftStatus

	// Locked is set once the containing week has been published. A locked
	// shift is immutable through every normal mutation path.
	Locked bool

	// Series fields. The parent carries the pattern and a nil parent
	// reference; generated children reference the parent's ID.
	IsRecurring        bool
	RecurrencePattern  *RecurrencePattern
	RecurrenceParentID *ShiftID
}

// Active reports whether the shift participates in conflict and overtime
// computation. Cancelled shifts do not.
func (s Shift) Active() bool {
	return s.Status != StatusCancelled
}

// SeriesKey returns the identity of the series this shift belongs to:
// the parent's own ID for a parent, the referenced parent ID for a child.
func (s Shift) SeriesKey() ShiftID {
	if s.RecurrenceParentID != nil {
		return *s.RecurrenceParentID
	}
	return s.ID
}

// Duration returns the elapsed (wall-clock independent) shift length.
func (s Shift) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// =============================================================================
// TIME OFF - Inclusive day range, only approved requests block scheduling
// =============================================================================

type TimeOffStatus string

const (
	TimeOffPending  TimeOffStatus = "pending"
	TimeOffApproved TimeOffStatus = "approved"
	TimeOffDenied   TimeOffStatus = "denied"
)

type TimeOffRequest struct {
	ID         TimeOffID
	EmployeeID EmployeeID
	StartDate  time.Time // inclusive
	EndDate    time.Time // inclusive
	Status     TimeOffStatus
	Reason     string
}

// =============================================================================
// EMPLOYEE - Roster record, consumed read-only
// =============================================================================

type CompensationType string

const (
	CompensationHourly   CompensationType = "hourly"
	CompensationSalaried CompensationType = "salaried"
)

type Employee struct {
	ID              EmployeeID
	Name            string
	Role            string
	HourlyRateCents int64
	Compensation    CompensationType
	TipEligible     bool
	Active          bool
}

// =============================================================================
// OVERTIME RULES - Pure configuration, owned by an external collaborator
// =============================================================================

type OvertimeRules struct {
	Enabled                bool
	DailyThresholdMinutes  int
	WeeklyThresholdMinutes int
}

// =============================================================================
// VALIDATION OUTPUT - Structured, ordered, never an exception
// =============================================================================

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type ConflictType string

const (
	ConflictDoubleBooking    ConflictType = "double_booking"
	ConflictOverlappingShift ConflictType = "overlapping_shift"
	ConflictTimeOff          ConflictType = "time_off_conflict"
)

// Conflict is one reason a candidate shift cannot be saved. The detector
// returns every applicable conflict so callers can display all reasons,
// not just the first.
type Conflict struct {
	Type     ConflictType
	Severity Severity
	Message  string

	// ConflictingShiftID references the existing shift for double-booking
	// and overlap conflicts.
	ConflictingShiftID *ShiftID

	// TimeOffID references the approved request for time-off conflicts.
	TimeOffID *TimeOffID
}

type OvertimePeriod string

const (
	PeriodDaily  OvertimePeriod = "daily"
	PeriodWeekly OvertimePeriod = "weekly"
)

// OvertimeWarning is advisory only; it never blocks a save.
type OvertimeWarning struct {
	Period          OvertimePeriod
	Severity        Severity
	Message         string
	TotalMinutes    int
	OvertimeMinutes int

	// Approaching is set on the weekly advisory emitted when the employee
	// is within range of the threshold but not yet over it.
	Approaching bool
}

// ValidationResult is the single caller-facing validation contract.
type ValidationResult struct {
	Valid            bool
	Conflicts        []Conflict
	OvertimeWarnings []OvertimeWarning
}
