package dbtest

import (
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adspacehub/adspace-backend/pkg/db/models"
	"github.com/adspacehub/adspace-backend/pkg/enums"
)

func TestFixturesRoundTrip(t *testing.T) {
	conn := Open(t)
	fx := NewFixtures(t, conn)

	space := fx.SpaceWith(2, 7)
	user := fx.User(enums.UserRoleAdvertiser)
	order := fx.Order(user.ID)

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 6)
	lease := fx.Lease(space.ID, order.ID, start, end, enums.LeaseStatusAsignado)

	var got models.Lease
	require.NoError(t, conn.Preload("MediaSpace.MediaItem").First(&got, "id = ?", lease.ID).Error)
	assert.True(t, start.Equal(got.StartDate))
	assert.True(t, end.Equal(got.EndDate))
	assert.Equal(t, enums.LeaseStatusAsignado, got.StatusID)
	assert.Equal(t, "250", got.Amount.String())
	require.NotNil(t, got.MediaSpace)
	require.NotNil(t, got.MediaSpace.MediaItem)
	assert.Equal(t, 2, got.MediaSpace.MediaItem.EffectiveCapacity())
	assert.Equal(t, 7, got.MediaSpace.MediaItem.CycleDays())
}

func TestDateComparisonsFollowCalendarOrder(t *testing.T) {
	conn := Open(t)
	fx := NewFixtures(t, conn)

	space := fx.SpaceWith(1, 1)
	order := fx.Order(fx.User(enums.UserRoleAdvertiser).ID)
	day := time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)
	fx.Lease(space.ID, order.ID, day, day.AddDate(0, 0, 2), enums.LeaseStatusRecibido)

	var count int64
	require.NoError(t, conn.Model(&models.Lease{}).Where("end_date < ?", day.AddDate(0, 0, 3)).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	require.NoError(t, conn.Model(&models.Lease{}).Where("end_date < ?", day.AddDate(0, 0, 2)).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestBillingTypeArrayRoundTrip(t *testing.T) {
	conn := Open(t)
	fx := NewFixtures(t, conn)

	space := fx.SpaceWith(1, 1)
	order := fx.Order(fx.User(enums.UserRoleAdvertiser).ID)
	day := time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)
	lease := fx.Lease(space.ID, order.ID, day, day, enums.LeaseStatusRecibido)

	extra := models.LeaseExtraInformation{LeaseID: lease.ID, BillingType: pq.StringArray{"mensual", "canje"}}
	require.NoError(t, conn.Create(&extra).Error)

	var got models.LeaseExtraInformation
	require.NoError(t, conn.First(&got, "lease_id = ?", lease.ID).Error)
	assert.Equal(t, pq.StringArray{"mensual", "canje"}, got.BillingType)
}

func TestStatusesSeeded(t *testing.T) {
	conn := Open(t)

	var statuses []models.Status
	require.NoError(t, conn.Order("id").Find(&statuses).Error)
	require.Len(t, statuses, 7)
	assert.Equal(t, "Recibido", statuses[0].Name)
	assert.Equal(t, enums.LeaseStatusCompletado, statuses[6].ID)
}
