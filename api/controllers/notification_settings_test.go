package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adspacehub/adspace-backend/internal/notifications"
	"github.com/adspacehub/adspace-backend/pkg/db/dbtest"
	"github.com/adspacehub/adspace-backend/pkg/db/models"
	"github.com/adspacehub/adspace-backend/pkg/enums"
)

func TestUpsertNotificationSettingReplacesEmail(t *testing.T) {
	conn := dbtest.Open(t)
	fx := dbtest.NewFixtures(t, conn)
	svc, err := notifications.NewSettingsService(notifications.NewSettingsRepository(conn))
	require.NoError(t, err)
	brand := fx.Brand("Cafe Norte")

	for _, email := range []string{"ops@cafenorte.mx", "leases@cafenorte.mx"} {
		resp := serve(UpsertNotificationSetting(svc, testLogger()), newRequest(http.MethodPut, "/", requestOpts{
			body: `{"brandId":"` + brand.ID.String() + `","email":"` + email + `"}`, role: enums.UserRoleAdmin,
		}))
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	}

	resp := serve(ListNotificationSettings(svc, testLogger()), newRequest(http.MethodGet, "/", requestOpts{role: enums.UserRoleAdmin}))
	require.Equal(t, http.StatusOK, resp.Code)
	settings := decodeData[[]models.NotificationSetting](t, resp)
	require.Len(t, settings, 1)
	assert.Equal(t, brand.ID, settings[0].BrandID)
	assert.Equal(t, "leases@cafenorte.mx", settings[0].Email)
}

func TestUpsertNotificationSettingValidatesEmail(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := notifications.NewSettingsService(notifications.NewSettingsRepository(conn))
	require.NoError(t, err)

	resp := serve(UpsertNotificationSetting(svc, testLogger()), newRequest(http.MethodPut, "/", requestOpts{
		body: `{"brandId":"0b8f2b8e-8d1f-4a53-9d6b-2b4f1d8c9a10","email":"not-an-email"}`, role: enums.UserRoleAdmin,
	}))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
