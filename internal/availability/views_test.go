package availability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adspacehub/adspace-backend/internal/calendar"
	"github.com/adspacehub/adspace-backend/internal/capacity"
	"github.com/adspacehub/adspace-backend/pkg/enums"
	pkgerrors "github.com/adspacehub/adspace-backend/pkg/errors"
)

func TestSpaceCalendar(t *testing.T) {
	reader := &fakeReader{
		space: newSpace(2, 7),
		spans: []capacity.Span{
			{Start: day(0), End: day(2), Status: enums.LeaseStatusRecibido},
			{Start: day(2), End: day(3), Status: enums.LeaseStatusEncendido},
		},
	}
	cal, err := newEngine(t, reader).SpaceCalendar(context.Background(), reader.space.ID, day(1), day(4))
	require.NoError(t, err)

	assert.Equal(t, 2, cal.Capacity)
	assert.Equal(t, 7, cal.DurationCycleDays)
	assert.Equal(t, calendar.Format(today.AddDate(1, 0, 0)), cal.MaxDate)
	require.Len(t, cal.Days, 4)

	assert.Equal(t, CalendarDay{Date: calendar.Format(day(1)), ActiveLeases: 1, RemainingCapacity: 1}, cal.Days[0])
	assert.Equal(t, CalendarDay{Date: calendar.Format(day(2)), ActiveLeases: 2, RemainingCapacity: 0, IsAtCapacity: true}, cal.Days[1])
	assert.Equal(t, 1, cal.Days[2].ActiveLeases)
	assert.Zero(t, cal.Days[3].ActiveLeases)
}

func TestSpaceCalendarRejectsBadWindows(t *testing.T) {
	reader := &fakeReader{space: newSpace(1, 1)}
	engine := newEngine(t, reader)

	_, err := engine.SpaceCalendar(context.Background(), reader.space.ID, day(5), day(1))
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeInvalidDateRange))

	_, err = engine.SpaceCalendar(context.Background(), reader.space.ID, day(0), day(MaxCalendarDays))
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeInvalidDateRange))
}

func TestDateStatus(t *testing.T) {
	reader := &fakeReader{
		space: newSpace(1, 1),
		spans: []capacity.Span{{Start: day(3), End: day(4), Status: enums.LeaseStatusAsignado}},
	}
	engine := newEngine(t, reader)
	ctx := context.Background()

	tests := []struct {
		name    string
		offset  int
		blocked bool
		reason  string
		active  int
	}{
		{"past", -1, true, ReasonPastDate, 0},
		{"today free", 0, false, "", 0},
		{"leased", 3, true, ReasonAtCapacity, 1},
		{"beyond horizon", 367, true, ReasonBeyondHorizon, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, err := engine.DateStatus(ctx, reader.space.ID, day(tc.offset))
			require.NoError(t, err)
			assert.Equal(t, tc.blocked, status.IsBlocked)
			assert.Equal(t, tc.reason, status.Reason)
			assert.Equal(t, tc.active, status.ActiveLeases)
			assert.Equal(t, 1, status.Capacity)
		})
	}
}

func TestSuggestEndDates(t *testing.T) {
	reader := &fakeReader{
		space: newSpace(1, 7),
		spans: []capacity.Span{{Start: day(10), End: day(12), Status: enums.LeaseStatusRecibido}},
	}
	options, err := newEngine(t, reader).SuggestEndDates(context.Background(), reader.space.ID, day(0), 3)
	require.NoError(t, err)

	assert.Equal(t, []EndDateOption{
		{EndDate: calendar.Format(day(6)), Available: true},
		{EndDate: calendar.Format(day(13)), Available: false},
		{EndDate: calendar.Format(day(20)), Available: false},
	}, options)
}

func TestSuggestEndDatesStopsAtHorizon(t *testing.T) {
	reader := &fakeReader{space: newSpace(1, 30)}
	engine := newEngine(t, reader)

	options, err := engine.SuggestEndDates(context.Background(), reader.space.ID, day(340), 10)
	require.NoError(t, err)
	require.Len(t, options, 0)

	options, err = engine.SuggestEndDates(context.Background(), reader.space.ID, day(300), 0)
	require.NoError(t, err)
	require.Len(t, options, 2)
	assert.True(t, options[1].Available)
}
