/*
overtime.go - Daily and weekly overtime exposure evaluation

PURPOSE:
  Computes how close an employee's schedule gets to (or past) the
  configured daily and weekly overtime thresholds if a candidate shift
  is added. Warnings are advisory; nothing here ever blocks a save.

SEVERITY ESCALATION:
  Daily excess:   <=60 min over -> info, <=120 -> warning, else error
  Weekly excess:  <=120 min over -> info, <=240 -> warning, else error
  Weekly, under threshold but within 120 minutes of it -> "approaching"
  advisory at info severity with zero overtime minutes.

WEEK DEFINITION:
  Weeks run Sunday through Saturday in the candidate's location. The
  weekly check includes the candidate's own minutes when the candidate is
  not already present in the existing set, so an unsaved shift can be
  previewed.

SEE ALSO:
  - interval.go: NetMinutes, day/week bounds
  - validate.go: Composition with conflict detection
*/
package schedule

import "fmt"

// Severity breakpoints, minutes over threshold.
const (
	dailyInfoCeiling     = 60
	dailyWarningCeiling  = 120
	weeklyInfoCeiling    = 120
	weeklyWarningCeiling = 240

	// approachingWindow is how close (in minutes) the weekly total has to
	// get to the threshold before the advisory fires.
	approachingWindow = 120
)

// =============================================================================
// DAILY CHECK
// =============================================================================

// EvaluateDailyOvertime sums net minutes over the employee's active shifts
// starting on the candidate's calendar day, candidate included, and
// compares against the daily threshold. Returns nil when disabled or not
// exceeded.
func EvaluateDailyOvertime(candidate Shift, existing []Shift, rules OvertimeRules) *OvertimeWarning {
	if !rules.Enabled || rules.DailyThresholdMinutes <= 0 {
		return nil
	}

	total := NetMinutes(candidate)
	for _, s := range relevantShifts(candidate, existing) {
		if SameDay(s.StartTime, candidate.StartTime) {
			total += NetMinutes(s)
		}
	}

	over := total - rules.DailyThresholdMinutes
	if over <= 0 {
		return nil
	}

	return &OvertimeWarning{
		Period:          PeriodDaily,
		Severity:        escalate(over, dailyInfoCeiling, dailyWarningCeiling),
		Message:         fmt.Sprintf("daily total %d min exceeds threshold by %d min", total, over),
		TotalMinutes:    total,
		OvertimeMinutes: over,
	}
}

// =============================================================================
// WEEKLY CHECK
// =============================================================================

// EvaluateWeeklyOvertime sums net minutes over the employee's active shifts
// within the Sunday-start week containing the candidate's start. The
// candidate's own minutes are added when it is not already part of the
// existing set, which lets callers preview an unsaved shift. Emits either
// an overtime warning or, when the total lands within the approaching
// window below the threshold, an informational advisory.
func EvaluateWeeklyOvertime(candidate Shift, existing []Shift, rules OvertimeRules) *OvertimeWarning {
	if !rules.Enabled || rules.WeeklyThresholdMinutes <= 0 {
		return nil
	}

	weekStart := StartOfWeek(candidate.StartTime)
	weekEnd := EndOfWeek(candidate.StartTime)

	total := 0
	candidatePresent := false
	for _, s := range existing {
		if s.EmployeeID != candidate.EmployeeID || !s.Active() {
			continue
		}
		if s.StartTime.Before(weekStart) || s.StartTime.After(weekEnd) {
			continue
		}
		if candidate.ID != "" && s.ID == candidate.ID {
			candidatePresent = true
		}
		total += NetMinutes(s)
	}
	if !candidatePresent {
		total += NetMinutes(candidate)
	}

	over := total - rules.WeeklyThresholdMinutes
	if over > 0 {
		return &OvertimeWarning{
			Period:          PeriodWeekly,
			Severity:        escalate(over, weeklyInfoCeiling, weeklyWarningCeiling),
			Message:         fmt.Sprintf("weekly total %d min exceeds threshold by %d min", total, over),
			TotalMinutes:    total,
			OvertimeMinutes: over,
		}
	}

	if rules.WeeklyThresholdMinutes-total <= approachingWindow {
		return &OvertimeWarning{
			Period:          PeriodWeekly,
			Severity:        SeverityInfo,
			Message:         fmt.Sprintf("weekly total %d min is within %d min of the overtime threshold", total, rules.WeeklyThresholdMinutes-total),
			TotalMinutes:    total,
			OvertimeMinutes: 0,
			Approaching:     true,
		}
	}

	return nil
}

func escalate(over, infoCeiling, warningCeiling int) Severity {
	switch {
	case over <= infoCeiling:
		return SeverityInfo
	case over <= warningCeiling:
		return SeverityWarning
	default:
		return SeverityError
	}
}
