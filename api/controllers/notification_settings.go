package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/adspacehub/adspace-backend/api/responses"
	"github.com/adspacehub/adspace-backend/api/validators"
	"github.com/adspacehub/adspace-backend/internal/notifications"
	"github.com/adspacehub/adspace-backend/pkg/logger"
)

type upsertSettingRequest struct {
	BrandID string `json:"brandId" validate:"required,uuid"`
	Email   string `json:"email" validate:"required,email"`
}

func ListNotificationSettings(svc notifications.SettingsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := svc.ListSettings(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settings)
	}
}

// UpsertNotificationSetting sets the inbox that receives a brand's new lease
// requests, replacing any previous one.
func UpsertNotificationSetting(svc notifications.SettingsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req upsertSettingRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		setting, err := svc.UpsertSetting(r.Context(), uuid.MustParse(req.BrandID), req.Email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, setting)
	}
}
