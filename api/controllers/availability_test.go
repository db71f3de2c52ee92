package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adspacehub/adspace-backend/internal/availability"
	"github.com/adspacehub/adspace-backend/pkg/db/dbtest"
	"github.com/adspacehub/adspace-backend/pkg/db/models"
	"github.com/adspacehub/adspace-backend/pkg/enums"
	pkgerrors "github.com/adspacehub/adspace-backend/pkg/errors"
)

var fixedNow = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) (*availability.Engine, *dbtest.Fixtures, models.MediaSpace) {
	t.Helper()
	conn := dbtest.Open(t)
	fx := dbtest.NewFixtures(t, conn)
	engine, err := availability.NewEngine(availability.NewRepository(conn), availability.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)

	space := fx.SpaceWith(1, 2)
	order := fx.Order(fx.User(enums.UserRoleAdvertiser).ID)
	start := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	fx.Lease(space.ID, order.ID, start, start.AddDate(0, 0, 1), enums.LeaseStatusAsignado)
	return engine, fx, space
}

func TestCheckAvailabilityReportsBlockedDates(t *testing.T) {
	engine, _, space := newTestEngine(t)
	handler := CheckAvailability(engine, testLogger())

	free := serve(handler, newRequest(http.MethodGet, "/?startDate=2026-10-21&endDate=2026-10-22", requestOpts{
		params: map[string]string{"spaceId": space.ID.String()},
	}))
	require.Equal(t, http.StatusOK, free.Code, free.Body.String())
	body := decodeData[availabilityResponse](t, free)
	assert.True(t, body.Available)
	assert.Equal(t, 2, body.DurationCycleDays)

	blocked := serve(handler, newRequest(http.MethodGet, "/?startDate=2026-10-19&endDate=2026-10-20", requestOpts{
		params: map[string]string{"spaceId": space.ID.String()},
	}))
	require.Equal(t, http.StatusConflict, blocked.Code)
	apiErr := decodeAPIError(t, blocked)
	assert.Equal(t, string(pkgerrors.CodeCapacityExceeded), apiErr.Code)
	details := apiErr.Details.(map[string]any)
	assert.Len(t, details["blockedDates"], 2)
}

func TestCheckAvailabilityValidatesInput(t *testing.T) {
	engine, _, space := newTestEngine(t)
	handler := CheckAvailability(engine, testLogger())

	cases := []struct {
		name  string
		query string
		id    string
		code  pkgerrors.Code
	}{
		{"bad space id", "?startDate=2026-10-21&endDate=2026-10-22", "nope", pkgerrors.CodeValidation},
		{"missing end", "?startDate=2026-10-21", space.ID.String(), pkgerrors.CodeValidation},
		{"odd duration", "?startDate=2026-10-21&endDate=2026-10-23", space.ID.String(), pkgerrors.CodeInvalidDuration},
		{"end before start", "?startDate=2026-10-22&endDate=2026-10-21", space.ID.String(), pkgerrors.CodeInvalidDateRange},
		{"beyond horizon", "?startDate=2027-11-01&endDate=2027-11-02", space.ID.String(), pkgerrors.CodeInvalidDateRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := serve(handler, newRequest(http.MethodGet, "/"+tc.query, requestOpts{params: map[string]string{"spaceId": tc.id}}))
			assert.Equal(t, string(tc.code), decodeAPIError(t, resp).Code)
		})
	}
}

func TestSpaceCalendarAndDateStatus(t *testing.T) {
	engine, _, space := newTestEngine(t)
	params := map[string]string{"spaceId": space.ID.String()}

	resp := serve(SpaceCalendar(engine, testLogger()), newRequest(http.MethodGet, "/?from=2026-10-18&to=2026-10-21", requestOpts{params: params}))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	cal := decodeData[availability.Calendar](t, resp)
	require.Len(t, cal.Days, 4)
	assert.False(t, cal.Days[0].IsAtCapacity)
	assert.True(t, cal.Days[1].IsAtCapacity)
	assert.True(t, cal.Days[2].IsAtCapacity)

	resp = serve(DateStatus(engine, testLogger()), newRequest(http.MethodGet, "/?date=2026-10-19", requestOpts{params: params}))
	require.Equal(t, http.StatusOK, resp.Code)
	status := decodeData[availability.DateStatus](t, resp)
	assert.True(t, status.IsBlocked)
	assert.Equal(t, availability.ReasonAtCapacity, status.Reason)
}

func TestSuggestEndDates(t *testing.T) {
	engine, _, space := newTestEngine(t)
	resp := serve(SuggestEndDates(engine, testLogger()), newRequest(http.MethodGet, "/?startDate=2026-10-18&limit=2", requestOpts{
		params: map[string]string{"spaceId": space.ID.String()},
	}))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	body := decodeData[struct {
		StartDate string                       `json:"startDate"`
		EndDates  []availability.EndDateOption `json:"endDates"`
	}](t, resp)
	require.Len(t, body.EndDates, 2)
	assert.Equal(t, "2026-10-19", body.EndDates[0].EndDate)
	assert.False(t, body.EndDates[0].Available)
}
