package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adspacehub/adspace-backend/api/middleware"
	"github.com/adspacehub/adspace-backend/api/responses"
	"github.com/adspacehub/adspace-backend/api/validators"
	"github.com/adspacehub/adspace-backend/internal/leases"
	"github.com/adspacehub/adspace-backend/pkg/enums"
	pkgerrors "github.com/adspacehub/adspace-backend/pkg/errors"
	"github.com/adspacehub/adspace-backend/pkg/logger"
	"github.com/adspacehub/adspace-backend/pkg/pagination"
)

type createLeaseRequest struct {
	SpaceID          string                        `json:"spaceId" validate:"required,uuid"`
	OrderID          string                        `json:"orderId" validate:"required,uuid"`
	CustomerName     string                        `json:"customerName" validate:"required,max=200"`
	StartDate        string                        `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate          string                        `json:"endDate" validate:"required,datetime=2006-01-02"`
	Amount           decimal.Decimal               `json:"amount"`
	ExtraInformation *leases.ExtraInformationInput `json:"extraInformation"`
}

type checkoutItemRequest struct {
	SpaceID          string                        `json:"spaceId" validate:"required,uuid"`
	CustomerName     string                        `json:"customerName" validate:"required,max=200"`
	StartDate        string                        `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate          string                        `json:"endDate" validate:"required,datetime=2006-01-02"`
	Amount           decimal.Decimal               `json:"amount"`
	ExtraInformation *leases.ExtraInformationInput `json:"extraInformation"`
}

type checkoutRequest struct {
	Items []checkoutItemRequest `json:"items" validate:"required,min=1,max=20,dive"`
}

type advanceStatusRequest struct {
	Direction string `json:"direction" validate:"required,oneof=next prev"`
}

type campaignRedirectRequest struct {
	URL string `json:"url" validate:"required,max=2048"`
}

func viewerFromRequest(r *http.Request) (leases.Viewer, error) {
	userID, role, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return leases.Viewer{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "identity missing")
	}
	return leases.Viewer{UserID: userID, Role: role}, nil
}

func parseRange(start, end string) (time.Time, time.Time, error) {
	startDay, err := validators.ParseDate("startDate", start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endDay, err := validators.ParseDate("endDate", end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return startDay, endDay, nil
}

// CreateLease adds a lease to an existing order.
func CreateLease(svc leases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createLeaseRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		start, end, err := parseRange(req.StartDate, req.EndDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lease, err := svc.CreateLease(r.Context(), leases.CreateLeaseInput{
			SpaceID:      uuid.MustParse(req.SpaceID),
			OrderID:      uuid.MustParse(req.OrderID),
			CustomerName: req.CustomerName,
			StartDate:    start,
			EndDate:      end,
			Amount:       req.Amount,
			Extra:        req.ExtraInformation,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, lease)
	}
}

// Checkout turns the caller's cart into one order with a lease per item.
func Checkout(svc leases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, err := viewerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req checkoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]leases.CheckoutItem, 0, len(req.Items))
		for i, item := range req.Items {
			start, end, err := parseRange(item.StartDate, item.EndDate)
			if err != nil {
				if typed := pkgerrors.As(err); typed != nil {
					if details, ok := typed.Details().(map[string]any); ok {
						details["itemIndex"] = i
					}
				}
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			items = append(items, leases.CheckoutItem{
				SpaceID:      uuid.MustParse(item.SpaceID),
				CustomerName: item.CustomerName,
				StartDate:    start,
				EndDate:      end,
				Amount:       item.Amount,
				Extra:        item.ExtraInformation,
			})
		}

		result, err := svc.Checkout(r.Context(), viewer.UserID, items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ListLeases pages through leases. Advertisers only ever see their own.
func ListLeases(svc leases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, err := viewerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := leases.ListParams{Cursor: strings.TrimSpace(r.URL.Query().Get("cursor"))}
		if params.Limit, err = validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		statusID, err := validators.ParseQueryInt(r, "statusId", 0, int(enums.LeaseStatusRecibido), int(enums.LeaseStatusCompletado))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if statusID != 0 {
			status := enums.LeaseStatus(statusID)
			params.Filters.StatusID = &status
		}
		if params.Filters.SpaceID, err = validators.ParseQueryUUID(r, "spaceId"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if params.Filters.UserID, err = validators.ParseQueryUUID(r, "userId"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), viewer, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func GetLease(svc leases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, err := viewerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		leaseID, err := validators.ParsePathUUID(r, "leaseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lease, err := svc.Get(r.Context(), viewer, leaseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lease)
	}
}

// AdvanceLeaseStatus moves a lease one step along the pipeline.
func AdvanceLeaseStatus(svc leases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		leaseID, err := validators.ParsePathUUID(r, "leaseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req advanceStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		direction, err := enums.ParseDirection(req.Direction)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid direction"))
			return
		}

		lease, err := svc.AdvanceStatus(r.Context(), leaseID, direction)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lease)
	}
}

func RevokeLease(svc leases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		leaseID, err := validators.ParsePathUUID(r, "leaseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.RevokeLease(r.Context(), leaseID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func UpdateCampaignRedirect(svc leases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		leaseID, err := validators.ParsePathUUID(r, "leaseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req campaignRedirectRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lease, err := svc.UpdateCampaignRedirect(r.Context(), leaseID, req.URL)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lease)
	}
}

// SweepExpiredLeases runs the expiry sweep on demand.
func SweepExpiredLeases(svc leases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.SweepExpiredLeases(r.Context(), time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
