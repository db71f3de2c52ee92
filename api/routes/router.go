package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adspacehub/adspace-backend/api/controllers"
	"github.com/adspacehub/adspace-backend/api/middleware"
	"github.com/adspacehub/adspace-backend/internal/leases"
	"github.com/adspacehub/adspace-backend/internal/notifications"
	"github.com/adspacehub/adspace-backend/internal/spaces"
	"github.com/adspacehub/adspace-backend/pkg/config"
	"github.com/adspacehub/adspace-backend/pkg/enums"
	"github.com/adspacehub/adspace-backend/pkg/logger"
	pkgredis "github.com/adspacehub/adspace-backend/pkg/redis"
)

// RedisClient is the slice of the Redis client the HTTP layer needs.
type RedisClient interface {
	controllers.Pinger
	pkgredis.IdempotencyStore
}

// Services groups the domain services the router exposes.
type Services struct {
	Availability         controllers.AvailabilityEngine
	Leases               leases.Service
	Spaces               spaces.Service
	Notifications        notifications.Service
	NotificationSettings notifications.SettingsService
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient RedisClient,
	gatherer prometheus.Gatherer,
	svc Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	idempotent := middleware.Idempotency(redisClient, middleware.DefaultIdempotencyTTL, logg)
	critical := middleware.Idempotency(redisClient, middleware.CriticalIdempotencyTTL, logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/spaces/{spaceId}", func(r chi.Router) {
			r.Get("/availability", controllers.CheckAvailability(svc.Availability, logg))
			r.Get("/calendar", controllers.SpaceCalendar(svc.Availability, logg))
			r.Get("/date-status", controllers.DateStatus(svc.Availability, logg))
			r.Get("/end-dates", controllers.SuggestEndDates(svc.Availability, logg))
		})

		r.With(critical).Post("/checkout", controllers.Checkout(svc.Leases, logg))

		r.Route("/leases", func(r chi.Router) {
			r.Get("/", controllers.ListLeases(svc.Leases, logg))
			r.Get("/{leaseId}", controllers.GetLease(svc.Leases, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireStaff(logg))
				r.With(idempotent).Post("/", controllers.CreateLease(svc.Leases, logg))
				r.Post("/{leaseId}/status", controllers.AdvanceLeaseStatus(svc.Leases, logg))
				r.Delete("/{leaseId}", controllers.RevokeLease(svc.Leases, logg))
				r.Put("/{leaseId}/campaign-redirect", controllers.UpdateCampaignRedirect(svc.Leases, logg))
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svc.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svc.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(svc.Notifications, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))

			r.Post("/admin/leases/sweep", controllers.SweepExpiredLeases(svc.Leases, logg))

			r.Route("/stores/{storeId}/spaces", func(r chi.Router) {
				r.With(idempotent).Post("/", controllers.AddSpaces(svc.Spaces, logg))
				r.Delete("/{spaceId}", controllers.DeleteSpace(svc.Spaces, logg))
			})

			r.Get("/notification-settings", controllers.ListNotificationSettings(svc.NotificationSettings, logg))
			r.Put("/notification-settings", controllers.UpsertNotificationSetting(svc.NotificationSettings, logg))
		})
	})

	return r
}
