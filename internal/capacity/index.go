// Package capacity counts concurrently active leases per calendar day.
package capacity

import (
	"time"

	"github.com/adspacehub/adspace-backend/internal/calendar"
	"github.com/adspacehub/adspace-backend/pkg/enums"
)

// Span is the part of a lease the index needs.
type Span struct {
	Start  time.Time
	End    time.Time
	Status enums.LeaseStatus
}

// Index maps a calendar day to the number of active leases covering it.
type Index struct {
	counts map[time.Time]int
}

// Build counts every day of every active span.
func Build(spans []Span) Index {
	idx := Index{counts: make(map[time.Time]int)}
	for _, s := range spans {
		if !s.Status.IsActive() {
			continue
		}
		for _, d := range calendar.EnumerateDays(s.Start, s.End) {
			idx.counts[d]++
		}
	}
	return idx
}

// BuildWindow is Build restricted to days inside [from, to]. Spans outside the
// window contribute nothing.
func BuildWindow(spans []Span, from, to time.Time) Index {
	from, to = calendar.Day(from), calendar.Day(to)
	idx := Index{counts: make(map[time.Time]int)}
	for _, s := range spans {
		if !s.Status.IsActive() || !calendar.Overlaps(s.Start, s.End, from, to) {
			continue
		}
		start, end := calendar.Day(s.Start), calendar.Day(s.End)
		if start.Before(from) {
			start = from
		}
		if end.After(to) {
			end = to
		}
		for _, d := range calendar.EnumerateDays(start, end) {
			idx.counts[d]++
		}
	}
	return idx
}

// Count returns the active lease count on day.
func (i Index) Count(day time.Time) int {
	return i.counts[calendar.Day(day)]
}

// IsDaySaturated reports count(day) >= capacity.
func (i Index) IsDaySaturated(day time.Time, capacity int) bool {
	return i.Count(day) >= capacity
}

// Add records one more active lease on each day of [start, end].
func (i Index) Add(start, end time.Time) {
	for _, d := range calendar.EnumerateDays(start, end) {
		i.counts[d]++
	}
}

// MaxOccupancy is the highest count over [from, to].
func (i Index) MaxOccupancy(from, to time.Time) int {
	max := 0
	for _, d := range calendar.EnumerateDays(from, to) {
		if c := i.counts[d]; c > max {
			max = c
		}
	}
	return max
}

// SaturatedDays lists the days in [from, to] that already hold capacity leases.
func (i Index) SaturatedDays(from, to time.Time, capacity int) []time.Time {
	var out []time.Time
	for _, d := range calendar.EnumerateDays(from, to) {
		if i.IsDaySaturated(d, capacity) {
			out = append(out, d)
		}
	}
	return out
}
