package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adspacehub/adspace-backend/internal/leases"
	"github.com/adspacehub/adspace-backend/pkg/db/models"
	"github.com/adspacehub/adspace-backend/pkg/enums"
	pkgerrors "github.com/adspacehub/adspace-backend/pkg/errors"
)

type stubLeaseService struct {
	createFn   func(context.Context, leases.CreateLeaseInput) (*models.Lease, error)
	checkoutFn func(context.Context, uuid.UUID, []leases.CheckoutItem) (*leases.CheckoutResult, error)
	advanceFn  func(context.Context, uuid.UUID, enums.Direction) (*models.Lease, error)
	revokeFn   func(context.Context, uuid.UUID) error
	sweepFn    func(context.Context, time.Time) (leases.SweepResult, error)
	redirectFn func(context.Context, uuid.UUID, string) (*models.Lease, error)
	getFn      func(context.Context, leases.Viewer, uuid.UUID) (*models.Lease, error)
	listFn     func(context.Context, leases.Viewer, leases.ListParams) (*leases.ListResult, error)
}

func (s stubLeaseService) CreateLease(ctx context.Context, input leases.CreateLeaseInput) (*models.Lease, error) {
	return s.createFn(ctx, input)
}

func (s stubLeaseService) Checkout(ctx context.Context, userID uuid.UUID, items []leases.CheckoutItem) (*leases.CheckoutResult, error) {
	return s.checkoutFn(ctx, userID, items)
}

func (s stubLeaseService) AdvanceStatus(ctx context.Context, leaseID uuid.UUID, direction enums.Direction) (*models.Lease, error) {
	return s.advanceFn(ctx, leaseID, direction)
}

func (s stubLeaseService) RevokeLease(ctx context.Context, leaseID uuid.UUID) error {
	return s.revokeFn(ctx, leaseID)
}

func (s stubLeaseService) SweepExpiredLeases(ctx context.Context, now time.Time) (leases.SweepResult, error) {
	return s.sweepFn(ctx, now)
}

func (s stubLeaseService) RecomputeSpaceStatus(context.Context, uuid.UUID) (enums.SpaceStatus, error) {
	return enums.SpaceStatusAvailable, nil
}

func (s stubLeaseService) ReconcileSpaceStatuses(context.Context) (int, error) {
	return 0, nil
}

func (s stubLeaseService) UpdateCampaignRedirect(ctx context.Context, leaseID uuid.UUID, url string) (*models.Lease, error) {
	return s.redirectFn(ctx, leaseID, url)
}

func (s stubLeaseService) Get(ctx context.Context, viewer leases.Viewer, leaseID uuid.UUID) (*models.Lease, error) {
	return s.getFn(ctx, viewer, leaseID)
}

func (s stubLeaseService) List(ctx context.Context, viewer leases.Viewer, params leases.ListParams) (*leases.ListResult, error) {
	return s.listFn(ctx, viewer, params)
}

func TestCreateLeasePassesParsedInput(t *testing.T) {
	spaceID, orderID := uuid.New(), uuid.New()
	var got leases.CreateLeaseInput
	svc := stubLeaseService{createFn: func(_ context.Context, input leases.CreateLeaseInput) (*models.Lease, error) {
		got = input
		return &models.Lease{ID: uuid.New(), MediaSpaceID: input.SpaceID, StatusID: enums.LeaseStatusRecibido}, nil
	}}

	body := `{"spaceId":"` + spaceID.String() + `","orderId":"` + orderID.String() + `","customerName":"Acme","startDate":"2026-11-01","endDate":"2026-11-07","amount":"120.50","extraInformation":{"billingType":["Factura"]}}`
	resp := serve(CreateLease(svc, testLogger()), newRequest(http.MethodPost, "/leases", requestOpts{
		body: body, userID: uuid.New(), role: enums.UserRoleAdmin,
	}))

	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.Equal(t, spaceID, got.SpaceID)
	assert.Equal(t, orderID, got.OrderID)
	assert.Equal(t, time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC), got.StartDate)
	assert.Equal(t, time.Date(2026, 11, 7, 0, 0, 0, 0, time.UTC), got.EndDate)
	assert.Equal(t, "120.5", got.Amount.String())
	require.NotNil(t, got.Extra)
	assert.Equal(t, []string{"Factura"}, got.Extra.BillingType)
}

func TestCreateLeaseRejectsInvalidBody(t *testing.T) {
	svc := stubLeaseService{createFn: func(context.Context, leases.CreateLeaseInput) (*models.Lease, error) {
		t.Fatal("service must not be called")
		return nil, nil
	}}

	resp := serve(CreateLease(svc, testLogger()), newRequest(http.MethodPost, "/leases", requestOpts{
		body: `{"spaceId":"nope","startDate":"01/11/2026"}`, role: enums.UserRoleAdmin,
	}))
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, string(pkgerrors.CodeValidation), decodeAPIError(t, resp).Code)
}

func TestCheckoutUsesCallerIdentity(t *testing.T) {
	userID := uuid.New()
	spaceID := uuid.New()
	var gotUser uuid.UUID
	var gotItems []leases.CheckoutItem
	svc := stubLeaseService{checkoutFn: func(_ context.Context, id uuid.UUID, items []leases.CheckoutItem) (*leases.CheckoutResult, error) {
		gotUser, gotItems = id, items
		return &leases.CheckoutResult{Order: models.Order{ID: uuid.New(), UserID: id}}, nil
	}}

	body := `{"items":[{"spaceId":"` + spaceID.String() + `","customerName":"Acme","startDate":"2026-11-01","endDate":"2026-11-07","amount":10}]}`
	resp := serve(Checkout(svc, testLogger()), newRequest(http.MethodPost, "/checkout", requestOpts{
		body: body, userID: userID, role: enums.UserRoleAdvertiser,
	}))

	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.Equal(t, userID, gotUser)
	require.Len(t, gotItems, 1)
	assert.Equal(t, spaceID, gotItems[0].SpaceID)
}

func TestCheckoutRequiresItems(t *testing.T) {
	resp := serve(Checkout(stubLeaseService{}, testLogger()), newRequest(http.MethodPost, "/checkout", requestOpts{
		body: `{"items":[]}`, userID: uuid.New(), role: enums.UserRoleAdvertiser,
	}))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCheckoutWithoutIdentity(t *testing.T) {
	resp := serve(Checkout(stubLeaseService{}, testLogger()), newRequest(http.MethodPost, "/checkout", requestOpts{body: `{}`}))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestListLeasesParsesFilters(t *testing.T) {
	viewerID, spaceID := uuid.New(), uuid.New()
	var got leases.ListParams
	var gotViewer leases.Viewer
	svc := stubLeaseService{listFn: func(_ context.Context, viewer leases.Viewer, params leases.ListParams) (*leases.ListResult, error) {
		gotViewer, got = viewer, params
		return &leases.ListResult{Items: []models.Lease{}}, nil
	}}

	resp := serve(ListLeases(svc, testLogger()), newRequest(http.MethodGet, "/leases?limit=10&statusId=3&spaceId="+spaceID.String()+"&cursor=abc", requestOpts{
		userID: viewerID, role: enums.UserRoleAssociate,
	}))

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, leases.Viewer{UserID: viewerID, Role: enums.UserRoleAssociate}, gotViewer)
	assert.Equal(t, 10, got.Limit)
	assert.Equal(t, "abc", got.Cursor)
	require.NotNil(t, got.Filters.StatusID)
	assert.Equal(t, enums.LeaseStatusEncendido, *got.Filters.StatusID)
	require.NotNil(t, got.Filters.SpaceID)
	assert.Equal(t, spaceID, *got.Filters.SpaceID)
	assert.Nil(t, got.Filters.UserID)
}

func TestListLeasesRejectsUnknownStatus(t *testing.T) {
	resp := serve(ListLeases(stubLeaseService{}, testLogger()), newRequest(http.MethodGet, "/leases?statusId=9", requestOpts{
		userID: uuid.New(), role: enums.UserRoleAdmin,
	}))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetLeaseMapsNotFound(t *testing.T) {
	svc := stubLeaseService{getFn: func(context.Context, leases.Viewer, uuid.UUID) (*models.Lease, error) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "lease not found")
	}}
	resp := serve(GetLease(svc, testLogger()), newRequest(http.MethodGet, "/", requestOpts{
		userID: uuid.New(), role: enums.UserRoleAdvertiser,
		params: map[string]string{"leaseId": uuid.NewString()},
	}))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestAdvanceLeaseStatus(t *testing.T) {
	leaseID := uuid.New()
	var gotDirection enums.Direction
	svc := stubLeaseService{advanceFn: func(_ context.Context, id uuid.UUID, direction enums.Direction) (*models.Lease, error) {
		require.Equal(t, leaseID, id)
		gotDirection = direction
		return &models.Lease{ID: id, StatusID: enums.LeaseStatusAsignado}, nil
	}}
	params := map[string]string{"leaseId": leaseID.String()}

	resp := serve(AdvanceLeaseStatus(svc, testLogger()), newRequest(http.MethodPost, "/", requestOpts{
		body: `{"direction":"prev"}`, role: enums.UserRoleAdmin, params: params,
	}))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, enums.DirectionPrev, gotDirection)

	resp = serve(AdvanceLeaseStatus(svc, testLogger()), newRequest(http.MethodPost, "/", requestOpts{
		body: `{"direction":"sideways"}`, role: enums.UserRoleAdmin, params: params,
	}))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAdvanceLeaseStatusSurfacesBoundary(t *testing.T) {
	svc := stubLeaseService{advanceFn: func(context.Context, uuid.UUID, enums.Direction) (*models.Lease, error) {
		return nil, pkgerrors.New(pkgerrors.CodeBoundaryTransition, "lease is already completed")
	}}
	resp := serve(AdvanceLeaseStatus(svc, testLogger()), newRequest(http.MethodPost, "/", requestOpts{
		body: `{"direction":"next"}`, role: enums.UserRoleAdmin,
		params: map[string]string{"leaseId": uuid.NewString()},
	}))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Equal(t, string(pkgerrors.CodeBoundaryTransition), decodeAPIError(t, resp).Code)
}

func TestRevokeLeaseReturnsNoContent(t *testing.T) {
	called := false
	svc := stubLeaseService{revokeFn: func(context.Context, uuid.UUID) error {
		called = true
		return nil
	}}
	resp := serve(RevokeLease(svc, testLogger()), newRequest(http.MethodDelete, "/", requestOpts{
		role: enums.UserRoleAdmin, params: map[string]string{"leaseId": uuid.NewString()},
	}))
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.True(t, called)
}

func TestUpdateCampaignRedirect(t *testing.T) {
	var gotURL string
	svc := stubLeaseService{redirectFn: func(_ context.Context, id uuid.UUID, url string) (*models.Lease, error) {
		gotURL = url
		return &models.Lease{ID: id}, nil
	}}
	resp := serve(UpdateCampaignRedirect(svc, testLogger()), newRequest(http.MethodPut, "/", requestOpts{
		body: `{"url":"https://example.com/promo"}`, role: enums.UserRoleAdmin,
		params: map[string]string{"leaseId": uuid.NewString()},
	}))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "https://example.com/promo", gotURL)
}

func TestSweepExpiredLeasesReportsCounts(t *testing.T) {
	svc := stubLeaseService{sweepFn: func(_ context.Context, now time.Time) (leases.SweepResult, error) {
		assert.Equal(t, time.UTC, now.Location())
		return leases.SweepResult{CompletedCount: 3, UpdatedSpaceCount: 2}, nil
	}}
	resp := serve(SweepExpiredLeases(svc, testLogger()), newRequest(http.MethodPost, "/", requestOpts{role: enums.UserRoleAdmin}))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, leases.SweepResult{CompletedCount: 3, UpdatedSpaceCount: 2}, decodeData[leases.SweepResult](t, resp))
}
