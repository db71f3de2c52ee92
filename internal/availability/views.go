package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adspacehub/adspace-backend/internal/calendar"
	"github.com/adspacehub/adspace-backend/internal/capacity"
)

const (
	// MaxCalendarDays bounds a single calendar request.
	MaxCalendarDays = 400

	DefaultEndDateSuggestions = 6
	MaxEndDateSuggestions     = 24
)

// Date status reasons.
const (
	ReasonPastDate      = "past_date"
	ReasonBeyondHorizon = "beyond_horizon"
	ReasonAtCapacity    = "at_capacity"
)

// CalendarDay is the occupancy of one day.
type CalendarDay struct {
	Date              string `json:"date"`
	ActiveLeases      int    `json:"activeLeases"`
	RemainingCapacity int    `json:"remainingCapacity"`
	IsAtCapacity      bool   `json:"isAtCapacity"`
}

// Calendar is the per-day occupancy of a space over a window.
type Calendar struct {
	SpaceID           uuid.UUID     `json:"spaceId"`
	From              string        `json:"from"`
	To                string        `json:"to"`
	Capacity          int           `json:"capacity"`
	DurationCycleDays int           `json:"durationCycleDays"`
	MaxDate           string        `json:"maxDate"`
	Days              []CalendarDay `json:"days"`
}

// DateStatus answers whether a single day can start or continue a booking.
type DateStatus struct {
	Date         string `json:"date"`
	IsBlocked    bool   `json:"isBlocked"`
	Reason       string `json:"reason,omitempty"`
	MaxDate      string `json:"maxDate"`
	ActiveLeases int    `json:"activeLeases"`
	Capacity     int    `json:"capacity"`
}

// EndDateOption is a valid end date for a start date and whether the full
// range currently fits.
type EndDateOption struct {
	EndDate   string `json:"endDate"`
	Available bool   `json:"available"`
}

// SpaceCalendar renders per-day occupancy for [from, to].
func (e *Engine) SpaceCalendar(ctx context.Context, spaceID uuid.UUID, from, to time.Time) (*Calendar, error) {
	from, to = calendar.Day(from), calendar.Day(to)
	if to.Before(from) {
		return nil, errInvalidDateRange("from date must not be after to date", from, to, e.Horizon())
	}
	if calendar.DaysInclusive(from, to) > MaxCalendarDays {
		return nil, errInvalidDateRange(fmt.Sprintf("calendar window is limited to %d days", MaxCalendarDays), from, to, e.Horizon())
	}

	load := func(ctx context.Context) (*Calendar, error) {
		return e.buildCalendar(ctx, spaceID, from, to)
	}

	var (
		cal *Calendar
		err error
	)
	if e.cache != nil {
		cal, err = e.cache.Calendar(ctx, spaceID, calendar.Format(from), calendar.Format(to), load)
	} else {
		cal, err = load(ctx)
	}
	if err != nil {
		return nil, err
	}

	out := *cal
	out.MaxDate = calendar.Format(e.Horizon())
	return &out, nil
}

func (e *Engine) buildCalendar(ctx context.Context, spaceID uuid.UUID, from, to time.Time) (*Calendar, error) {
	space, err := e.loadSpace(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	spans, err := e.reader.ActiveSpans(ctx, spaceID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load active leases: %w", err)
	}

	limit := spaceCapacity(space)
	idx := capacity.BuildWindow(spans, from, to)
	days := calendar.EnumerateDays(from, to)

	cal := &Calendar{
		SpaceID:           spaceID,
		From:              calendar.Format(from),
		To:                calendar.Format(to),
		Capacity:          limit,
		DurationCycleDays: cycleDays(space),
		Days:              make([]CalendarDay, 0, len(days)),
	}
	for _, d := range days {
		count := idx.Count(d)
		remaining := limit - count
		if remaining < 0 {
			remaining = 0
		}
		cal.Days = append(cal.Days, CalendarDay{
			Date:              calendar.Format(d),
			ActiveLeases:      count,
			RemainingCapacity: remaining,
			IsAtCapacity:      count >= limit,
		})
	}
	return cal, nil
}

// DateStatus reports whether date is bookable on the space.
func (e *Engine) DateStatus(ctx context.Context, spaceID uuid.UUID, date time.Time) (*DateStatus, error) {
	date = calendar.Day(date)
	space, err := e.loadSpace(ctx, spaceID)
	if err != nil {
		return nil, err
	}

	limit := spaceCapacity(space)
	max := e.Horizon()
	status := &DateStatus{
		Date:     calendar.Format(date),
		MaxDate:  calendar.Format(max),
		Capacity: limit,
	}

	switch {
	case date.Before(e.Today()):
		status.IsBlocked, status.Reason = true, ReasonPastDate
		return status, nil
	case date.After(max):
		status.IsBlocked, status.Reason = true, ReasonBeyondHorizon
		return status, nil
	}

	spans, err := e.reader.ActiveSpans(ctx, spaceID, date, date)
	if err != nil {
		return nil, fmt.Errorf("load active leases: %w", err)
	}
	status.ActiveLeases = capacity.BuildWindow(spans, date, date).Count(date)
	if status.ActiveLeases >= limit {
		status.IsBlocked, status.Reason = true, ReasonAtCapacity
	}
	return status, nil
}

// SuggestEndDates lists the valid end dates for start within the horizon, each
// flagged with whether [start, endDate] fits the current occupancy.
func (e *Engine) SuggestEndDates(ctx context.Context, spaceID uuid.UUID, start time.Time, limit int) ([]EndDateOption, error) {
	start = calendar.Day(start)
	switch {
	case limit <= 0:
		limit = DefaultEndDateSuggestions
	case limit > MaxEndDateSuggestions:
		limit = MaxEndDateSuggestions
	}

	if start.After(e.Horizon()) {
		return nil, errInvalidDateRange("start date is beyond the booking horizon", start, start, e.Horizon())
	}

	space, err := e.loadSpace(ctx, spaceID)
	if err != nil {
		return nil, err
	}

	candidates := calendar.ValidEndDatesUntil(start, cycleDays(space), e.Horizon())
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	if len(candidates) == 0 {
		return []EndDateOption{}, nil
	}

	last := candidates[len(candidates)-1]
	spans, err := e.reader.ActiveSpans(ctx, spaceID, start, last)
	if err != nil {
		return nil, fmt.Errorf("load active leases: %w", err)
	}
	idx := capacity.BuildWindow(spans, start, last)
	capLimit := spaceCapacity(space)

	// Ranges share the start date, so once a range hits a saturated day every
	// longer range does too.
	options := make([]EndDateOption, 0, len(candidates))
	fits := true
	cursor := start
	for _, end := range candidates {
		if fits && len(idx.SaturatedDays(cursor, end, capLimit)) > 0 {
			fits = false
		}
		options = append(options, EndDateOption{EndDate: calendar.Format(end), Available: fits})
		cursor = end.AddDate(0, 0, 1)
	}
	return options, nil
}
