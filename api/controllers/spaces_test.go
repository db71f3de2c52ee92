package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adspacehub/adspace-backend/internal/spaces"
	"github.com/adspacehub/adspace-backend/pkg/db/dbtest"
	"github.com/adspacehub/adspace-backend/pkg/db/models"
	"github.com/adspacehub/adspace-backend/pkg/enums"
	pkgerrors "github.com/adspacehub/adspace-backend/pkg/errors"
)

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(context.Context, ...uuid.UUID) {}

func TestAddAndDeleteSpaces(t *testing.T) {
	client, conn := dbtest.OpenClient(t)
	fx := dbtest.NewFixtures(t, conn)
	svc, err := spaces.NewService(testLogger(), client, spaces.NewRepository(conn), noopInvalidator{})
	require.NoError(t, err)

	store := fx.Store(fx.Brand("Cafe Norte").ID, "Centro")
	item := fx.MediaItem("Pantalla", 1, 7)
	storeParams := map[string]string{"storeId": store.ID.String()}

	resp := serve(AddSpaces(svc, testLogger()), newRequest(http.MethodPost, "/", requestOpts{
		body: `{"mediaItemId":"` + item.ID.String() + `","quantity":2}`, role: enums.UserRoleAdmin, params: storeParams,
	}))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	created := decodeData[[]models.MediaSpace](t, resp)
	require.Len(t, created, 2)

	target := created[0]
	order := fx.Order(fx.User(enums.UserRoleAdvertiser).ID)
	start := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	fx.Lease(target.ID, order.ID, start, start.AddDate(0, 0, 6), enums.LeaseStatusEncendido)

	deleteParams := map[string]string{"storeId": store.ID.String(), "spaceId": target.ID.String()}
	resp = serve(DeleteSpace(svc, testLogger()), newRequest(http.MethodDelete, "/", requestOpts{role: enums.UserRoleAdmin, params: deleteParams}))
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Equal(t, string(pkgerrors.CodeStateConflict), decodeAPIError(t, resp).Code)

	other := map[string]string{"storeId": store.ID.String(), "spaceId": created[1].ID.String()}
	resp = serve(DeleteSpace(svc, testLogger()), newRequest(http.MethodDelete, "/", requestOpts{role: enums.UserRoleAdmin, params: other}))
	assert.Equal(t, http.StatusNoContent, resp.Code)
}

func TestAddSpacesValidatesBody(t *testing.T) {
	client, conn := dbtest.OpenClient(t)
	svc, err := spaces.NewService(testLogger(), client, spaces.NewRepository(conn), noopInvalidator{})
	require.NoError(t, err)

	resp := serve(AddSpaces(svc, testLogger()), newRequest(http.MethodPost, "/", requestOpts{
		body: `{"mediaItemId":"` + uuid.NewString() + `","quantity":500}`, role: enums.UserRoleAdmin,
		params: map[string]string{"storeId": uuid.NewString()},
	}))
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, decodeAPIError(t, resp).Details, "quantity")
}
