package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/adspacehub/adspace-backend/api/responses"
	"github.com/adspacehub/adspace-backend/api/validators"
	"github.com/adspacehub/adspace-backend/internal/spaces"
	"github.com/adspacehub/adspace-backend/pkg/logger"
)

type addSpacesRequest struct {
	MediaItemID string  `json:"mediaItemId" validate:"required,uuid"`
	Quantity    int     `json:"quantity" validate:"required,min=1,max=100"`
	PhotoURL    *string `json:"photoUrl" validate:"omitempty,url"`
	Info        *string `json:"info" validate:"omitempty,max=1000"`
}

// AddSpaces bulk-creates available spaces for a store.
func AddSpaces(svc spaces.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := validators.ParsePathUUID(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req addSpacesRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.AddSpaces(r.Context(), spaces.AddSpacesInput{
			StoreID:     storeID,
			MediaItemID: uuid.MustParse(req.MediaItemID),
			Quantity:    req.Quantity,
			PhotoURL:    req.PhotoURL,
			Info:        req.Info,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func DeleteSpace(svc spaces.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := validators.ParsePathUUID(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		spaceID, err := validators.ParsePathUUID(r, "spaceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteSpace(r.Context(), storeID, spaceID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
