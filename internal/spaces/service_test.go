package spaces

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/adspacehub/adspace-backend/pkg/db/dbtest"
	"github.com/adspacehub/adspace-backend/pkg/db/models"
	"github.com/adspacehub/adspace-backend/pkg/enums"
	pkgerrors "github.com/adspacehub/adspace-backend/pkg/errors"
	"github.com/adspacehub/adspace-backend/pkg/logger"
)

type spyCache struct{ ids []uuid.UUID }

func (s *spyCache) Invalidate(_ context.Context, ids ...uuid.UUID) { s.ids = append(s.ids, ids...) }

type harness struct {
	svc   Service
	fx    *dbtest.Fixtures
	conn  *gorm.DB
	cache *spyCache
}

func (h *harness) spaceCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.conn.Model(&models.MediaSpace{}).Count(&n).Error)
	return n
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	client, conn := dbtest.OpenClient(t)
	cache := &spyCache{}
	svc, err := NewService(logger.New(logger.Options{Output: &bytes.Buffer{}}), client, NewRepository(conn), cache)
	require.NoError(t, err)
	return &harness{svc: svc, fx: dbtest.NewFixtures(t, conn), conn: conn, cache: cache}
}

func TestAddSpacesCreatesAvailableSpaces(t *testing.T) {
	h := newHarness(t)
	svc, fx := h.svc, h.fx
	brand := fx.Brand("Acme")
	store := fx.Store(brand.ID, "Centro")
	item := fx.MediaItem("Pantalla", 2, 7)

	info := "Entrada principal"
	spaces, err := svc.AddSpaces(context.Background(), AddSpacesInput{
		StoreID: store.ID, MediaItemID: item.ID, Quantity: 3, Info: &info,
	})
	require.NoError(t, err)
	require.Len(t, spaces, 3)
	for _, sp := range spaces {
		assert.NotEqual(t, uuid.Nil, sp.ID)
		assert.Equal(t, enums.SpaceStatusAvailable, sp.Status)
		assert.Equal(t, &info, sp.Info)
	}
	assert.Equal(t, int64(3), h.spaceCount(t))
}

func TestAddSpacesValidation(t *testing.T) {
	h := newHarness(t)
	svc, fx := h.svc, h.fx
	store := fx.Store(fx.Brand("Acme").ID, "Centro")
	item := fx.MediaItem("Pantalla", 1, 1)
	ctx := context.Background()

	cases := []struct {
		name  string
		input AddSpacesInput
		code  pkgerrors.Code
	}{
		{"zero quantity", AddSpacesInput{StoreID: store.ID, MediaItemID: item.ID}, pkgerrors.CodeValidation},
		{"too many", AddSpacesInput{StoreID: store.ID, MediaItemID: item.ID, Quantity: MaxBatch + 1}, pkgerrors.CodeValidation},
		{"missing ids", AddSpacesInput{Quantity: 1}, pkgerrors.CodeValidation},
		{"unknown store", AddSpacesInput{StoreID: uuid.New(), MediaItemID: item.ID, Quantity: 1}, pkgerrors.CodeNotFound},
		{"unknown item", AddSpacesInput{StoreID: store.ID, MediaItemID: uuid.New(), Quantity: 1}, pkgerrors.CodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddSpaces(ctx, tc.input)
			require.Error(t, err)
			assert.Equal(t, tc.code, pkgerrors.As(err).Code())
		})
	}
	assert.Zero(t, h.spaceCount(t))
}

func TestDeleteSpaceRefusesWhileLeasesAreActive(t *testing.T) {
	h := newHarness(t)
	svc, fx := h.svc, h.fx
	ctx := context.Background()
	space := fx.SpaceWith(1, 1)
	order := fx.Order(fx.User(enums.UserRoleAdvertiser).ID)
	start := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	lease := fx.Lease(space.ID, order.ID, start, start.AddDate(0, 0, 1), enums.LeaseStatusEncendido)

	err := svc.DeleteSpace(ctx, space.StoreID, space.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
	assert.Equal(t, int64(1), h.spaceCount(t))

	require.NoError(t, h.conn.Model(&models.Lease{}).Where("id = ?", lease.ID).
		Update("status_id", int(enums.LeaseStatusCompletado)).Error)

	require.NoError(t, svc.DeleteSpace(ctx, space.StoreID, space.ID))
	assert.Zero(t, h.spaceCount(t))
	assert.Equal(t, []uuid.UUID{space.ID}, h.cache.ids)
}

func TestDeleteSpaceScopedToStore(t *testing.T) {
	h := newHarness(t)
	svc, fx := h.svc, h.fx
	space := fx.SpaceWith(1, 1)

	err := svc.DeleteSpace(context.Background(), uuid.New(), space.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
	assert.Equal(t, int64(1), h.spaceCount(t))
}
