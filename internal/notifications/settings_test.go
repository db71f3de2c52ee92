package notifications

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adspacehub/adspace-backend/pkg/db/dbtest"
	pkgerrors "github.com/adspacehub/adspace-backend/pkg/errors"
)

func TestSettingsUpsertIsKeyedByBrand(t *testing.T) {
	conn := dbtest.Open(t)
	fx := dbtest.NewFixtures(t, conn)
	svc, err := NewSettingsService(NewSettingsRepository(conn))
	require.NoError(t, err)
	ctx := context.Background()

	brand := fx.Brand("Acme")

	first, err := svc.UpsertSetting(ctx, brand.ID, "ops@acme.test")
	require.NoError(t, err)
	second, err := svc.UpsertSetting(ctx, brand.ID, " leasing@acme.test ")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "leasing@acme.test", second.Email)

	all, err := svc.ListSettings(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "leasing@acme.test", all[0].Email)
}

func TestSettingsUpsertValidation(t *testing.T) {
	conn := dbtest.Open(t)
	fx := dbtest.NewFixtures(t, conn)
	svc, err := NewSettingsService(NewSettingsRepository(conn))
	require.NoError(t, err)
	brand := fx.Brand("Acme")

	cases := []struct {
		name    string
		brandID uuid.UUID
		email   string
	}{
		{name: "missing brand", brandID: uuid.Nil, email: "ops@acme.test"},
		{name: "bad email", brandID: brand.ID, email: "not-an-email"},
		{name: "blank email", brandID: brand.ID, email: "  "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.UpsertSetting(context.Background(), tc.brandID, tc.email)
			require.Error(t, err)
			assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
		})
	}
}

func TestSettingsFindByBrandMissing(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewSettingsRepository(conn)
	fx := dbtest.NewFixtures(t, conn)

	setting, err := repo.FindByBrand(context.Background(), fx.Brand("Nobody").ID)
	require.NoError(t, err)
	assert.Nil(t, setting)
}
