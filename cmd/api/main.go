package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/adspacehub/adspace-backend/api/routes"
	"github.com/adspacehub/adspace-backend/internal/availability"
	"github.com/adspacehub/adspace-backend/internal/leases"
	"github.com/adspacehub/adspace-backend/internal/notifications"
	"github.com/adspacehub/adspace-backend/internal/spaces"
	"github.com/adspacehub/adspace-backend/pkg/config"
	"github.com/adspacehub/adspace-backend/pkg/db"
	"github.com/adspacehub/adspace-backend/pkg/instance"
	"github.com/adspacehub/adspace-backend/pkg/logger"
	"github.com/adspacehub/adspace-backend/pkg/mailer"
	"github.com/adspacehub/adspace-backend/pkg/metrics"
	"github.com/adspacehub/adspace-backend/pkg/migrate"
	"github.com/adspacehub/adspace-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	calendarCache := availability.NewCalendarCache(redisClient, cfg.Cache.AvailabilityTTL, logg)
	engine, err := availability.NewEngine(
		availability.NewRepository(dbClient.DB()),
		availability.WithCalendarCache(calendarCache),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create availability engine", err)
		os.Exit(1)
	}

	mail, err := mailer.New(cfg.Notifications, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create mailer", err)
		os.Exit(1)
	}
	notificationsRepo := notifications.NewRepository(dbClient.DB())
	settingsRepo := notifications.NewSettingsRepository(dbClient.DB())
	dispatcher, err := notifications.NewDispatcher(notifications.DispatcherParams{
		Logger:        logg,
		Mailer:        mail,
		Settings:      settingsRepo,
		Notifications: notificationsRepo,
		OpsEmail:      cfg.Notifications.OpsEmail,
		AppBaseURL:    cfg.Notifications.AppBaseURL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification dispatcher", err)
		os.Exit(1)
	}

	leaseService, err := leases.NewService(leases.ServiceParams{
		Logger:         logg,
		DB:             dbClient,
		Repository:     leases.NewRepository(dbClient.DB()),
		Engine:         engine,
		Notifier:       dispatcher,
		Cache:          calendarCache,
		Metrics:        metrics.NewLeasingMetrics(registry),
		SweepBatchSize: cfg.Leasing.SweepBatchSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create lease service", err)
		os.Exit(1)
	}

	spaceService, err := spaces.NewService(logg, dbClient, spaces.NewRepository(dbClient.DB()), calendarCache)
	if err != nil {
		logg.Error(context.Background(), "failed to create spaces service", err)
		os.Exit(1)
	}

	notificationService, err := notifications.NewService(notificationsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}
	settingsService, err := notifications.NewSettingsService(settingsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification settings service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, registry, routes.Services{
			Availability:         engine,
			Leases:               leaseService,
			Spaces:               spaceService,
			Notifications:        notificationService,
			NotificationSettings: settingsService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}

	dispatcher.Wait()
	logg.Info(ctx, "api server stopped")
}
