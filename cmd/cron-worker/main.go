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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adspacehub/adspace-backend/internal/availability"
	"github.com/adspacehub/adspace-backend/internal/cron"
	"github.com/adspacehub/adspace-backend/internal/leases"
	"github.com/adspacehub/adspace-backend/internal/notifications"
	"github.com/adspacehub/adspace-backend/pkg/config"
	"github.com/adspacehub/adspace-backend/pkg/db"
	"github.com/adspacehub/adspace-backend/pkg/instance"
	"github.com/adspacehub/adspace-backend/pkg/logger"
	"github.com/adspacehub/adspace-backend/pkg/mailer"
	"github.com/adspacehub/adspace-backend/pkg/metrics"
	"github.com/adspacehub/adspace-backend/pkg/migrate"
	"github.com/adspacehub/adspace-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	calendarCache := availability.NewCalendarCache(redisClient, cfg.Cache.AvailabilityTTL, logg)
	engine, err := availability.NewEngine(availability.NewRepository(dbClient.DB()), availability.WithCalendarCache(calendarCache))
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
	dispatcher, err := notifications.NewDispatcher(notifications.DispatcherParams{
		Logger:        logg,
		Mailer:        mail,
		Settings:      notifications.NewSettingsRepository(dbClient.DB()),
		Notifications: notificationsRepo,
		OpsEmail:      cfg.Notifications.OpsEmail,
		AppBaseURL:    cfg.Notifications.AppBaseURL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification dispatcher", err)
		os.Exit(1)
	}
	defer dispatcher.Wait()

	leaseService, err := leases.NewService(leases.ServiceParams{
		Logger:         logg,
		DB:             dbClient,
		Repository:     leases.NewRepository(dbClient.DB()),
		Engine:         engine,
		Notifier:       dispatcher,
		Cache:          calendarCache,
		Metrics:        metrics.NewLeasingMetrics(prometheus.DefaultRegisterer),
		SweepBatchSize: cfg.Leasing.SweepBatchSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create lease service", err)
		os.Exit(1)
	}

	expiryJob, err := cron.NewLeaseExpiryJob(cron.LeaseExpiryJobParams{Logger: logg, Service: leaseService})
	if err != nil {
		logg.Error(context.Background(), "failed to create lease expiry job", err)
		os.Exit(1)
	}
	cleanupJob, err := cron.NewNotificationCleanupJob(cron.NotificationCleanupJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: notificationsRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification cleanup job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cron-worker"), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(expiryJob, cleanupJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.GetID(),
	})

	metricsServer := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "metrics server stopped unexpectedly", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}
