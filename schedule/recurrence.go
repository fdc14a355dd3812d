/*
recurrence.go - Recurrence pattern expansion

PURPOSE:
  Expands a recurrence pattern into the finite, ordered sequence of
  occurrence dates a series is built from. Expansion is a pure function
  of its inputs: deterministic, restartable, no hidden state.

PATTERN SHAPE:
  A closed struct rather than a loose map: frequency + interval + exactly
  one end condition (occurrence count or until-date). Patterns are
  validated at the boundary so the engine never inspects untyped data.
  "Forever" patterns are rejected outright, and a hard cap bounds
  expansion even for well-formed inputs.

SEE ALSO:
  - series.go: Consumes the expansion to build parent + children
*/
package schedule

import (
	"fmt"
	"time"
)

// =============================================================================
// PATTERN - Closed type, validated at the boundary
// =============================================================================

type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

// MaxOccurrences bounds any single expansion. A pattern that would
// produce more occurrences is rejected rather than truncated.
const MaxOccurrences = 366

type RecurrencePattern struct {
	Frequency Frequency
	// Interval repeats every N frequency units; zero means 1.
	Interval int
	// Count limits the series to N occurrences, anchor included.
	// Zero means unbounded by count.
	Count int
	// Until limits the series to occurrences on or before this date.
	// Nil means unbounded by date.
	Until *time.Time
}

// Validate checks the pattern is well-formed and bounded.
func (p RecurrencePattern) Validate() error {
	switch p.Frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
	default:
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidPattern, p.Frequency)
	}
	if p.Interval < 0 {
		return fmt.Errorf("%w: negative interval", ErrInvalidPattern)
	}
	if p.Count < 0 {
		return fmt.Errorf("%w: negative count", ErrInvalidPattern)
	}
	if p.Count == 0 && p.Until == nil {
		return fmt.Errorf("%w: pattern has no end condition", ErrUnboundedPattern)
	}
	if p.Count > MaxOccurrences {
		return fmt.Errorf("%w: count %d exceeds limit %d", ErrUnboundedPattern, p.Count, MaxOccurrences)
	}
	return nil
}

func (p RecurrencePattern) step() (months, days int) {
	interval := p.Interval
	if interval <= 0 {
		interval = 1
	}
	switch p.Frequency {
	case FrequencyDaily:
		return 0, interval
	case FrequencyWeekly:
		return 0, 7 * interval
	case FrequencyBiweekly:
		return 0, 14 * interval
	case FrequencyMonthly:
		return interval, 0
	default:
		return 0, 0
	}
}

// =============================================================================
// EXPANSION
// =============================================================================

// Expand produces the ordered occurrence dates for a pattern anchored at
// the given date, anchor first. The result is finite, non-repeating, and
// never exceeds MaxOccurrences.
func Expand(anchor time.Time, p RecurrencePattern) ([]time.Time, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	months, days := p.step()
	var dates []time.Time
	current := anchor
	for {
		if p.Count > 0 && len(dates) >= p.Count {
			break
		}
		if p.Until != nil && current.After(EndOfDay(*p.Until)) {
			break
		}
		if len(dates) >= MaxOccurrences {
			return nil, fmt.Errorf("%w: expansion exceeds %d occurrences", ErrUnboundedPattern, MaxOccurrences)
		}
		dates = append(dates, current)
		current = current.AddDate(0, months, days)
	}
	return dates, nil
}
