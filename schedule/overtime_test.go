package schedule_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/warp/schedule-engine/schedule"
)

func minute(n int) time.Duration {
	return time.Duration(n) * time.Minute
}

func standardRules() schedule.OvertimeRules {
	return schedule.OvertimeRules{
		Enabled:                true,
		DailyThresholdMinutes:  480,
		WeeklyThresholdMinutes: 2400,
	}
}

// =============================================================================
// DAILY
// =============================================================================

func TestEvaluateDailyOvertime_UnderThreshold(t *testing.T) {
	candidate := shiftAt("s1", "emp-1", at(3, 9, 0), at(3, 17, 0)) // 480 min

	if w := schedule.EvaluateDailyOvertime(candidate, nil, standardRules()); w != nil {
		t.Errorf("expected no warning at exactly the threshold, got %+v", w)
	}
}

func TestEvaluateDailyOvertime_SeverityEscalation(t *testing.T) {
	cases := []struct {
		name     string
		endHour  int
		endMin   int
		over     int
		severity schedule.Severity
	}{
		{"info at 60 over", 18, 0, 60, schedule.SeverityInfo},
		{"warning at 61 over", 18, 1, 61, schedule.SeverityWarning},
		{"warning at 120 over", 19, 0, 120, schedule.SeverityWarning},
		{"error past 120 over", 19, 1, 121, schedule.SeverityError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			candidate := shiftAt("s1", "emp-1", at(3, 9, 0), at(3, tc.endHour, tc.endMin))

			w := schedule.EvaluateDailyOvertime(candidate, nil, standardRules())
			if w == nil {
				t.Fatal("expected a warning")
			}
			if w.Severity != tc.severity {
				t.Errorf("expected severity %s, got %s", tc.severity, w.Severity)
			}
			if w.OvertimeMinutes != tc.over {
				t.Errorf("expected %d overtime minutes, got %d", tc.over, w.OvertimeMinutes)
			}
			if w.Period != schedule.PeriodDaily {
				t.Errorf("expected daily period, got %s", w.Period)
			}
		})
	}
}

func TestEvaluateDailyOvertime_SumsSameDayShifts(t *testing.T) {
	// GIVEN: A 6h morning shift already on the books
	existing := []schedule.Shift{shiftAt("s1", "emp-1", at(3, 6, 0), at(3, 12, 0))}

	// WHEN: Adding a 4h evening shift on the same day (total 600, over by 120)
	candidate := shiftAt("s2", "emp-1", at(3, 14, 0), at(3, 18, 0))
	w := schedule.EvaluateDailyOvertime(candidate, existing, standardRules())

	if w == nil {
		t.Fatal("expected a warning")
	}
	if w.TotalMinutes != 600 || w.OvertimeMinutes != 120 {
		t.Errorf("expected 600 total / 120 over, got %d / %d", w.TotalMinutes, w.OvertimeMinutes)
	}
	if w.Severity != schedule.SeverityWarning {
		t.Errorf("expected warning severity, got %s", w.Severity)
	}
}

func TestEvaluateDailyOvertime_BreaksReduceTotal(t *testing.T) {
	candidate := shiftAt("s1", "emp-1", at(3, 9, 0), at(3, 18, 0)) // 540 gross
	candidate.BreakMinutes = 60

	if w := schedule.EvaluateDailyOvertime(candidate, nil, standardRules()); w != nil {
		t.Errorf("expected break to bring total back to threshold, got %+v", w)
	}
}

func TestEvaluateDailyOvertime_Disabled(t *testing.T) {
	candidate := shiftAt("s1", "emp-1", at(3, 6, 0), at(3, 23, 0))
	rules := standardRules()
	rules.Enabled = false

	if w := schedule.EvaluateDailyOvertime(candidate, nil, rules); w != nil {
		t.Errorf("disabled rules must not warn, got %+v", w)
	}
}

// =============================================================================
// WEEKLY
// =============================================================================

func TestEvaluateWeeklyOvertime_ApproachingAdvisory(t *testing.T) {
	// GIVEN: 2340 minutes already scheduled Mon-Fri (week of Sun Mar 2)
	var existing []schedule.Shift
	for day := 3; day <= 7; day++ {
		s := shiftAt(fmt.Sprintf("s%d", day), "emp-1", at(day, 9, 0), at(day, 16, 48))
		existing = append(existing, s) // 468 min each, 2340 total
	}

	// WHEN: Previewing a 90 minute Saturday shift (total 2430, over by 30)
	candidate := shiftAt("cand", "emp-1", at(8, 9, 0), at(8, 10, 30))
	w := schedule.EvaluateWeeklyOvertime(candidate, existing, standardRules())

	// THEN: A weekly overtime warning with 30 overtime minutes at info severity
	if w == nil {
		t.Fatal("expected a warning")
	}
	if w.Period != schedule.PeriodWeekly {
		t.Errorf("expected weekly period, got %s", w.Period)
	}
	if w.OvertimeMinutes != 30 {
		t.Errorf("expected 30 overtime minutes, got %d", w.OvertimeMinutes)
	}
	if w.Severity != schedule.SeverityInfo {
		t.Errorf("expected info severity, got %s", w.Severity)
	}
	if w.Approaching {
		t.Error("a shift over the threshold is overtime, not approaching")
	}
}

func TestEvaluateWeeklyOvertime_ApproachingUnderThreshold(t *testing.T) {
	// 2300 minutes total lands under 2400 but within the approaching window.
	existing := []schedule.Shift{
		shiftAt("s1", "emp-1", at(3, 0, 0), at(3, 20, 0)),  // 1200
		shiftAt("s2", "emp-1", at(4, 0, 0), at(4, 17, 20)), // 1040
	}
	candidate := shiftAt("cand", "emp-1", at(5, 9, 0), at(5, 10, 0)) // 60

	w := schedule.EvaluateWeeklyOvertime(candidate, existing, standardRules())
	if w == nil {
		t.Fatal("expected an approaching advisory")
	}
	if !w.Approaching {
		t.Error("expected Approaching flag")
	}
	if w.OvertimeMinutes != 0 {
		t.Errorf("approaching advisory must carry zero overtime minutes, got %d", w.OvertimeMinutes)
	}
	if w.Severity != schedule.SeverityInfo {
		t.Errorf("expected info severity, got %s", w.Severity)
	}
}

func TestEvaluateWeeklyOvertime_CandidateAlreadyStored(t *testing.T) {
	// GIVEN: The candidate is already in the existing set (an update preview)
	stored := shiftAt("s1", "emp-1", at(3, 0, 0), at(3, 20, 0)) // 1200
	candidate := stored

	// THEN: Its minutes are not double counted
	if w := schedule.EvaluateWeeklyOvertime(candidate, []schedule.Shift{stored}, standardRules()); w != nil {
		t.Errorf("1200 min must not warn, got %+v", w)
	}
}

func TestEvaluateWeeklyOvertime_IgnoresOtherWeeks(t *testing.T) {
	// A heavy previous week (ending Sat Mar 1) must not bleed into the
	// week starting Sun Mar 2.
	existing := []schedule.Shift{shiftAt("s1", "emp-1", at(1, 0, 0), at(1, 23, 0))}
	candidate := shiftAt("cand", "emp-1", at(3, 9, 0), at(3, 10, 0))

	if w := schedule.EvaluateWeeklyOvertime(candidate, existing, standardRules()); w != nil {
		t.Errorf("previous-week shifts must not count, got %+v", w)
	}
}

func TestEvaluateWeeklyOvertime_SeverityEscalation(t *testing.T) {
	rules := standardRules()
	base := []schedule.Shift{shiftAt("s1", "emp-1", at(3, 0, 0), at(4, 16, 0))} // 2400 min

	cases := []struct {
		name     string
		minutes  int
		severity schedule.Severity
	}{
		{"info at 120 over", 120, schedule.SeverityInfo},
		{"warning at 121 over", 121, schedule.SeverityWarning},
		{"error past 240 over", 241, schedule.SeverityError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			candidate := shiftAt("cand", "emp-1", at(5, 9, 0), at(5, 9, 0).Add(minute(tc.minutes)))

			w := schedule.EvaluateWeeklyOvertime(candidate, base, rules)
			if w == nil {
				t.Fatal("expected a warning")
			}
			if w.Severity != tc.severity {
				t.Errorf("expected %s, got %s", tc.severity, w.Severity)
			}
		})
	}
}
