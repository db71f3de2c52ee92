// Package calendar holds the date arithmetic used by the availability engine.
// All values are UTC calendar days at midnight.
package calendar

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the wire format for calendar days.
	DateLayout = "2006-01-02"

	// MaxRangeDays is the longest range callers accept for enumeration.
	MaxRangeDays = 3 * 366
)

// Day normalises t to midnight UTC of the calendar day it falls on in its own
// location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar day.
func Today(now time.Time) time.Time {
	return Day(now)
}

// Parse reads a YYYY-MM-DD date.
func Parse(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return t, nil
}

// Format renders a day as YYYY-MM-DD.
func Format(t time.Time) string {
	return Day(t).Format(DateLayout)
}

// AddDays moves a day by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// DaysInclusive counts the days in [start, end]. It returns 0 when end is
// before start.
func DaysInclusive(start, end time.Time) int {
	s, e := Day(start), Day(end)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}

// EnumerateDays returns every day from start to end inclusive, or nothing when
// end is before start. Callers bound the range length themselves.
func EnumerateDays(start, end time.Time) []time.Time {
	n := DaysInclusive(start, end)
	days := make([]time.Time, 0, n)
	d := Day(start)
	for i := 0; i < n; i++ {
		days = append(days, d)
		d = d.AddDate(0, 0, 1)
	}
	return days
}

// ValidEndDates returns start + k*cycle - 1 for k = 1..limit. A cycle below 1
// is treated as one day.
func ValidEndDates(start time.Time, cycleDays, limit int) []time.Time {
	if limit <= 0 {
		return nil
	}
	if cycleDays < 1 {
		cycleDays = 1
	}
	s := Day(start)
	out := make([]time.Time, 0, limit)
	for k := 1; k <= limit; k++ {
		out = append(out, s.AddDate(0, 0, k*cycleDays-1))
	}
	return out
}

// ValidEndDatesUntil is ValidEndDates bounded by max instead of a count.
func ValidEndDatesUntil(start time.Time, cycleDays int, max time.Time) []time.Time {
	if cycleDays < 1 {
		cycleDays = 1
	}
	s, limit := Day(start), Day(max)
	var out []time.Time
	for k := 1; ; k++ {
		end := s.AddDate(0, 0, k*cycleDays-1)
		if end.After(limit) {
			return out
		}
		out = append(out, end)
	}
}

// Overlaps reports whether [aStart, aEnd] and [bStart, bEnd] share a day.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !Day(aStart).After(Day(bEnd)) && !Day(aEnd).Before(Day(bStart))
}

// Contains reports whether day falls inside [start, end].
func Contains(start, end, day time.Time) bool {
	d := Day(day)
	return !d.Before(Day(start)) && !d.After(Day(end))
}

// Horizon is the last bookable day for a reservation made on now.
func Horizon(now time.Time) time.Time {
	return Day(now).AddDate(1, 0, 0)
}
