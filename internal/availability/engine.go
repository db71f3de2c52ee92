// Package availability decides whether a media space can take a lease for a
// date range and renders the occupancy views built on the same rules.
package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adspacehub/adspace-backend/internal/calendar"
	"github.com/adspacehub/adspace-backend/internal/capacity"
	"github.com/adspacehub/adspace-backend/pkg/db/models"
)

// suggestionCount is how many valid end dates accompany a duration rejection.
const suggestionCount = 3

// Reader loads the state the engine evaluates.
type Reader interface {
	Space(ctx context.Context, spaceID uuid.UUID) (*models.MediaSpace, error)
	ActiveSpans(ctx context.Context, spaceID uuid.UUID, from, to time.Time) ([]capacity.Span, error)
}

// Decision is the outcome of a capacity check over an inclusive range.
type Decision struct {
	SpaceID           uuid.UUID
	StartDate         time.Time
	EndDate           time.Time
	Available         bool
	BlockedDates      []time.Time
	Capacity          int
	CurrentOccupancy  int
	RemainingCapacity int
	DurationCycleDays int
}

// Err converts a rejected decision into a CapacityExceeded error.
func (d Decision) Err() error {
	if d.Available {
		return nil
	}
	return ErrCapacityExceeded(d)
}

// Engine evaluates reservations against capacity and duration rules.
type Engine struct {
	reader Reader
	now    func() time.Time
	cache  *CalendarCache
}

type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithCalendarCache enables Redis caching for SpaceCalendar.
func WithCalendarCache(cache *CalendarCache) Option {
	return func(e *Engine) {
		e.cache = cache
	}
}

func NewEngine(reader Reader, opts ...Option) (*Engine, error) {
	if reader == nil {
		return nil, fmt.Errorf("availability reader required")
	}
	e := &Engine{reader: reader, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// WithReader returns a copy of the engine reading through r, typically a
// repository bound to an open transaction.
func (e *Engine) WithReader(r Reader) *Engine {
	cp := *e
	cp.reader = r
	return &cp
}

// Today is the current calendar day according to the engine clock.
func (e *Engine) Today() time.Time {
	return calendar.Today(e.now())
}

// Horizon is the last bookable day.
func (e *Engine) Horizon() time.Time {
	return calendar.Horizon(e.now())
}

// CheckAvailability validates the range and the duration cycle of the space's
// media item, then evaluates capacity. A capacity rejection is reported in the
// Decision, not as an error. Pending spans are reservations not yet persisted,
// such as earlier items of the same checkout.
func (e *Engine) CheckAvailability(ctx context.Context, spaceID uuid.UUID, start, end time.Time, pending ...capacity.Span) (Decision, error) {
	start, end = calendar.Day(start), calendar.Day(end)
	if err := ValidateRange(start, end, e.now()); err != nil {
		return Decision{}, err
	}

	space, err := e.loadSpace(ctx, spaceID)
	if err != nil {
		return Decision{}, err
	}

	cycle := cycleDays(space)
	if !ValidateLeaseDuration(start, end, cycle) {
		return Decision{}, errInvalidDuration(start, end, cycle, e.suggestions(start, cycle))
	}

	return e.evaluate(ctx, space, start, end, pending)
}

// Occupancy evaluates capacity only. It is used when an existing lease range
// becomes active again and must not be checked against today's horizon.
func (e *Engine) Occupancy(ctx context.Context, spaceID uuid.UUID, start, end time.Time) (Decision, error) {
	space, err := e.loadSpace(ctx, spaceID)
	if err != nil {
		return Decision{}, err
	}
	return e.evaluate(ctx, space, calendar.Day(start), calendar.Day(end), nil)
}

func (e *Engine) evaluate(ctx context.Context, space *models.MediaSpace, start, end time.Time, pending []capacity.Span) (Decision, error) {
	spans, err := e.reader.ActiveSpans(ctx, space.ID, start, end)
	if err != nil {
		return Decision{}, fmt.Errorf("load active leases: %w", err)
	}
	spans = append(spans, pending...)
	d := Evaluate(space.ID, spaceCapacity(space), spans, start, end)
	d.DurationCycleDays = cycleDays(space)
	return d, nil
}

func (e *Engine) loadSpace(ctx context.Context, spaceID uuid.UUID) (*models.MediaSpace, error) {
	space, err := e.reader.Space(ctx, spaceID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSpaceNotFound(spaceID)
	}
	if err != nil {
		return nil, fmt.Errorf("load media space: %w", err)
	}
	return space, nil
}

func (e *Engine) suggestions(start time.Time, cycle int) []time.Time {
	out := calendar.ValidEndDatesUntil(start, cycle, e.Horizon())
	if len(out) > suggestionCount {
		out = out[:suggestionCount]
	}
	return out
}

// Evaluate marks every day of [start, end] that the existing spans already
// saturate. The proposed lease itself is not counted.
func Evaluate(spaceID uuid.UUID, limit int, spans []capacity.Span, start, end time.Time) Decision {
	if limit < 1 {
		limit = 1
	}
	idx := capacity.BuildWindow(spans, start, end)
	blocked := idx.SaturatedDays(start, end, limit)
	occupancy := idx.MaxOccupancy(start, end)

	remaining := limit - occupancy
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		SpaceID:           spaceID,
		StartDate:         calendar.Day(start),
		EndDate:           calendar.Day(end),
		Available:         len(blocked) == 0,
		BlockedDates:      blocked,
		Capacity:          limit,
		CurrentOccupancy:  occupancy,
		RemainingCapacity: remaining,
	}
}

// ValidateRange enforces start <= end, end within one year of now and a range
// no longer than calendar.MaxRangeDays.
func ValidateRange(start, end, now time.Time) error {
	max := calendar.Horizon(now)
	if calendar.Day(end).Before(calendar.Day(start)) {
		return errInvalidDateRange("start date must not be after end date", start, end, max)
	}
	if calendar.Day(end).After(max) {
		return errInvalidDateRange("end date is beyond the booking horizon", start, end, max)
	}
	if calendar.DaysInclusive(start, end) > calendar.MaxRangeDays {
		return errInvalidDateRange(fmt.Sprintf("date range is limited to %d days", calendar.MaxRangeDays), start, end, max)
	}
	return nil
}

// ValidateLeaseDuration reports whether the inclusive day count of the range is
// a positive multiple of cycleDays.
func ValidateLeaseDuration(start, end time.Time, cycleDays int) bool {
	if cycleDays < 1 {
		cycleDays = 1
	}
	days := calendar.DaysInclusive(start, end)
	return days > 0 && days%cycleDays == 0
}

func spaceCapacity(space *models.MediaSpace) int {
	if space.MediaItem == nil {
		return 1
	}
	return space.MediaItem.EffectiveCapacity()
}

func cycleDays(space *models.MediaSpace) int {
	if space.MediaItem == nil {
		return 1
	}
	return space.MediaItem.CycleDays()
}
