package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/adspacehub/adspace-backend/api/responses"
	"github.com/adspacehub/adspace-backend/api/validators"
	"github.com/adspacehub/adspace-backend/internal/availability"
	"github.com/adspacehub/adspace-backend/internal/calendar"
	"github.com/adspacehub/adspace-backend/internal/capacity"
	"github.com/adspacehub/adspace-backend/pkg/logger"
)

// AvailabilityEngine is the read side of the availability engine.
type AvailabilityEngine interface {
	CheckAvailability(ctx context.Context, spaceID uuid.UUID, start, end time.Time, pending ...capacity.Span) (availability.Decision, error)
	SpaceCalendar(ctx context.Context, spaceID uuid.UUID, from, to time.Time) (*availability.Calendar, error)
	DateStatus(ctx context.Context, spaceID uuid.UUID, date time.Time) (*availability.DateStatus, error)
	SuggestEndDates(ctx context.Context, spaceID uuid.UUID, start time.Time, limit int) ([]availability.EndDateOption, error)
}

type availabilityResponse struct {
	SpaceID           uuid.UUID `json:"spaceId"`
	StartDate         string    `json:"startDate"`
	EndDate           string    `json:"endDate"`
	Available         bool      `json:"available"`
	Capacity          int       `json:"capacity"`
	CurrentOccupancy  int       `json:"currentOccupancy"`
	RemainingCapacity int       `json:"remainingCapacity"`
	DurationCycleDays int       `json:"durationCycleDays"`
}

// CheckAvailability answers whether a range can be booked. A saturated range
// is reported as CAPACITY_EXCEEDED with the blocked dates.
func CheckAvailability(engine AvailabilityEngine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spaceID, err := validators.ParsePathUUID(r, "spaceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		start, err := validators.ParseQueryDate(r, "startDate")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := validators.ParseQueryDate(r, "endDate")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		decision, err := engine.CheckAvailability(r.Context(), spaceID, start, end)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := decision.Err(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, availabilityResponse{
			SpaceID:           decision.SpaceID,
			StartDate:         calendar.Format(decision.StartDate),
			EndDate:           calendar.Format(decision.EndDate),
			Available:         decision.Available,
			Capacity:          decision.Capacity,
			CurrentOccupancy:  decision.CurrentOccupancy,
			RemainingCapacity: decision.RemainingCapacity,
			DurationCycleDays: decision.DurationCycleDays,
		})
	}
}

func SpaceCalendar(engine AvailabilityEngine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spaceID, err := validators.ParsePathUUID(r, "spaceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		from, err := validators.ParseQueryDate(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryDate(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cal, err := engine.SpaceCalendar(r.Context(), spaceID, from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cal)
	}
}

func DateStatus(engine AvailabilityEngine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spaceID, err := validators.ParsePathUUID(r, "spaceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		date, err := validators.ParseQueryDate(r, "date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := engine.DateStatus(r.Context(), spaceID, date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

func SuggestEndDates(engine AvailabilityEngine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spaceID, err := validators.ParsePathUUID(r, "spaceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		start, err := validators.ParseQueryDate(r, "startDate")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", availability.DefaultEndDateSuggestions, 1, availability.MaxEndDateSuggestions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		options, err := engine.SuggestEndDates(r.Context(), spaceID, start, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"startDate": calendar.Format(start), "endDates": options})
	}
}
