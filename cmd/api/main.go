package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tutorwise/tutorwise-platform/cmd/mainconfig"
	"github.com/tutorwise/tutorwise-platform/internal/api/router"
	"github.com/tutorwise/tutorwise-platform/internal/app/bootstrap"
	"github.com/tutorwise/tutorwise-platform/internal/availability"
	"github.com/tutorwise/tutorwise-platform/internal/bookings"
	"github.com/tutorwise/tutorwise-platform/internal/catalog"
	appconfig "github.com/tutorwise/tutorwise-platform/internal/config"
	"github.com/tutorwise/tutorwise-platform/internal/dashboard"
	"github.com/tutorwise/tutorwise-platform/internal/directory"
	"github.com/tutorwise/tutorwise-platform/internal/notify"
	"github.com/tutorwise/tutorwise-platform/internal/observability/metrics"
	"github.com/tutorwise/tutorwise-platform/internal/reminder"
	"github.com/tutorwise/tutorwise-platform/internal/scheduling"
	"github.com/tutorwise/tutorwise-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting tutorwise-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("database not reachable", "error", err)
		os.Exit(1)
	}

	// Separate database/sql handle for the repositories built on it.
	sqlDB, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open sql database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = sqlDB.Close() }()

	sesClient, err := mainconfig.NewSESClient(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	sender := bootstrap.BuildEmailSender(cfg, sesClient, logger)
	dispatcher := notify.NewDispatcher(sender, logger).WithMetrics(metrics.NewNotifyMetrics(nil))

	// Repositories
	catalogRepo := catalog.NewRepository(pool)
	availabilityRepo := availability.NewRepository(pool)
	bookingsRepo := bookings.NewRepository(pool)
	directoryRepo := directory.NewRepository(sqlDB)
	statsRepo := dashboard.NewStatsRepository(sqlDB, loc)

	validator := scheduling.NewValidator(catalogRepo, availabilityRepo, bookingsRepo)
	bookingMetrics := metrics.NewBookingMetrics(nil)
	bookingService := bookings.NewService(bookingsRepo, validator, catalogRepo, dispatcher, bookingMetrics, logger)

	// Reminder sweep, exposed for manual runs via the admin API.
	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	var processed *reminder.ProcessedStore
	if redisClient != nil {
		processed = reminder.NewProcessedStore(redisClient, cfg.ReminderLockTTL)
	}
	sweeper := reminder.NewSweeper(bookingsRepo, dispatcher, processed, loc, metrics.NewReminderMetrics(nil), logger)

	routerCfg := &router.Config{
		Logger:              logger,
		BookingsHandler:     bookings.NewHandler(bookingService, logger),
		DirectoryHandler:    directory.NewHandler(directoryRepo, logger),
		CatalogHandler:      catalog.NewHandler(catalogRepo, logger),
		AvailabilityHandler: availability.NewHandler(availabilityRepo, logger),
		DashboardHandler:    dashboard.NewHandler(statsRepo, logger),
		ReminderHandler:     reminder.NewHandler(sweeper, logger),
		AdminAuthSecret:     cfg.AdminJWTSecret,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		MetricsHandler:      promhttp.Handler(),
	}
	if cfg.RequestRateLimit {
		routerCfg.RateLimitPerSecond = cfg.RateLimitPerSec
		routerCfg.RateLimitBurst = cfg.RateLimitBurst
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
