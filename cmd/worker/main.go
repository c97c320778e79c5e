package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/automagictv/remy/internal/bot"
	"github.com/automagictv/remy/internal/config"
	"github.com/automagictv/remy/internal/logger"
	"github.com/automagictv/remy/internal/sentry"
	"github.com/automagictv/remy/internal/services/recipe"
	"github.com/automagictv/remy/internal/telegram"
	"github.com/automagictv/remy/internal/telemetry"
	"github.com/automagictv/remy/internal/worker"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Worker failed: %v", err)
	}
}

// run sets up the worker and blocks until it stops. Deferred telemetry and
// Sentry flushes run on every return path.
func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.QueueEnabled() {
		return errors.New("REDIS_URL is required to run the worker")
	}

	// Initialize logger with OTel support
	slog.SetDefault(logger.New(cfg.Env))

	// Initialize telemetry
	if cfg.OtelExporterOTLPEndpoint != "" {
		shutdown, err := telemetry.InitTelemetry(ctx, cfg.ServiceName+"-worker", cfg.ServiceVersion, cfg.Env, cfg.OtelExporterOTLPEndpoint, cfg.OTLPHeaders(), telegram.TokenPathPrefix)
		if err != nil {
			slog.Warn("Failed to init telemetry", "error", err)
		} else {
			defer shutdown(ctx)
		}
	}

	// Initialize Sentry
	if err := sentry.Init(cfg.SentryDSN, cfg.Env, cfg.ServiceName+"-worker", cfg.ServiceVersion); err != nil {
		slog.Warn("Failed to init Sentry", "error", err)
	} else if cfg.SentryDSN != "" {
		defer sentry.Flush(2 * time.Second)
	}

	tg, err := telegram.NewBotAPI(cfg.TelegramToken, 0)
	if err != nil {
		return err
	}

	handler := bot.NewHandler(recipe.NewProvider(cfg), telegram.NewSender(tg, nil), bot.OptionsFromConfig(cfg.Bot))

	workerMetrics, err := worker.NewWorkerMetrics()
	if err != nil {
		slog.Warn("Failed to init worker metrics", "error", err)
	}

	srv, err := worker.NewServer(cfg.RedisURL, cfg.Bot.MaxConcurrency)
	if err != nil {
		return fmt.Errorf("failed to create worker: %w", err)
	}

	mux := worker.NewServeMux(worker.NewCommandProcessor(handler, workerMetrics))

	slog.Info("Starting worker", "concurrency", cfg.Bot.MaxConcurrency)

	// Run blocks until SIGINT or SIGTERM, then drains in-flight tasks.
	if err := srv.Run(mux); err != nil {
		return err
	}
	slog.Info("Worker stopped")
	return nil
}
