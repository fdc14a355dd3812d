package schedule

import "time"

// =============================================================================
// INTERVAL MATH - Pure time-interval arithmetic
// =============================================================================

// NetMinutes returns the worked duration of a shift net of unpaid break,
// floored at zero.
func NetMinutes(s Shift) int {
	gross := int(s.EndTime.Sub(s.StartTime) / time.Minute)
	net := gross - s.BreakMinutes
	if net < 0 {
		return 0
	}
	return net
}

// Overlaps reports whether the open intervals [a.Start, a.End) and
// [b.Start, b.End) intersect with non-zero measure. A shift that ends
// exactly when another starts does NOT overlap; back-to-back shifts
// are legal.
func Overlaps(a, b Shift) bool {
	return a.StartTime.Before(b.EndTime) && b.StartTime.Before(a.EndTime)
}

// StartOfDay returns midnight at the start of t's calendar day,
// in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// StartOfWeek returns midnight on the Sunday beginning the week
// containing t. Weeks start on Sunday.
func StartOfWeek(t time.Time) time.Time {
	return StartOfDay(t.AddDate(0, 0, -int(t.Weekday())))
}

// EndOfWeek returns the last instant of the Saturday ending the week
// containing t.
func EndOfWeek(t time.Time) time.Time {
	return EndOfDay(StartOfWeek(t).AddDate(0, 0, 6))
}

// SameDay reports whether two instants fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
