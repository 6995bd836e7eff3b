package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/tutorwise/tutorwise-platform/cmd/mainconfig"
	"github.com/tutorwise/tutorwise-platform/internal/app/bootstrap"
	"github.com/tutorwise/tutorwise-platform/internal/bookings"
	appconfig "github.com/tutorwise/tutorwise-platform/internal/config"
	"github.com/tutorwise/tutorwise-platform/internal/notify"
	"github.com/tutorwise/tutorwise-platform/internal/observability/metrics"
	"github.com/tutorwise/tutorwise-platform/internal/reminder"
	"github.com/tutorwise/tutorwise-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.DatabaseURL == "" {
		logger.Error("reminder worker requires DATABASE_URL")
		os.Exit(1)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	sesClient, err := mainconfig.NewSESClient(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	sender := bootstrap.BuildEmailSender(cfg, sesClient, logger)
	dispatcher := notify.NewDispatcher(sender, logger).WithMetrics(metrics.NewNotifyMetrics(nil))

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	var processed *reminder.ProcessedStore
	if redisClient != nil {
		processed = reminder.NewProcessedStore(redisClient, cfg.ReminderLockTTL)
	} else {
		logger.Warn("redis not configured, reminder sweeps may resend on restart")
	}

	bookingsRepo := bookings.NewRepository(pool)
	sweeper := reminder.NewSweeper(bookingsRepo, dispatcher, processed, loc, metrics.NewReminderMetrics(nil), logger)

	runner, err := reminder.NewRunner(sweeper, cfg.ReminderRunAt, loc, logger)
	if err != nil {
		logger.Error("invalid reminder schedule", "run_at", cfg.ReminderRunAt, "error", err)
		os.Exit(1)
	}

	go runner.Run(ctx)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("reminder worker shutting down")
	cancel()
	time.Sleep(2 * time.Second)
}
