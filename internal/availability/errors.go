package availability

import (
	"time"

	"github.com/google/uuid"

	"github.com/adspacehub/adspace-backend/internal/calendar"
	pkgerrors "github.com/adspacehub/adspace-backend/pkg/errors"
)

// ErrCapacityExceeded reports the saturated days of a rejected decision.
func ErrCapacityExceeded(d Decision) error {
	return pkgerrors.New(pkgerrors.CodeCapacityExceeded, "requested dates exceed the space capacity").
		WithDetails(map[string]any{
			"spaceId":          d.SpaceID,
			"blockedDates":     formatDays(d.BlockedDates),
			"capacity":         d.Capacity,
			"currentOccupancy": d.CurrentOccupancy,
		})
}

// ErrSpaceNotFound is returned when a media space id does not resolve.
func ErrSpaceNotFound(spaceID uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "media space not found").
		WithDetails(map[string]any{"spaceId": spaceID})
}

func errInvalidDuration(start, end time.Time, cycleDays int, suggestions []time.Time) error {
	return pkgerrors.New(pkgerrors.CodeInvalidDuration, "lease length must be a multiple of the media item duration").
		WithDetails(map[string]any{
			"days":              calendar.DaysInclusive(start, end),
			"durationCycleDays": cycleDays,
			"suggestedEndDates": formatDays(suggestions),
		})
}

func errInvalidDateRange(message string, start, end, max time.Time) error {
	return pkgerrors.New(pkgerrors.CodeInvalidDateRange, message).
		WithDetails(map[string]any{
			"startDate": calendar.Format(start),
			"endDate":   calendar.Format(end),
			"maxDate":   calendar.Format(max),
		})
}

func formatDays(days []time.Time) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = calendar.Format(d)
	}
	return out
}
