package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"golang.org/x/sync/errgroup"

	"github.com/automagictv/remy/internal/api"
	"github.com/automagictv/remy/internal/bot"
	"github.com/automagictv/remy/internal/config"
	"github.com/automagictv/remy/internal/logger"
	"github.com/automagictv/remy/internal/sentry"
	"github.com/automagictv/remy/internal/services/recipe"
	"github.com/automagictv/remy/internal/telegram"
	"github.com/automagictv/remy/internal/telemetry"
	"github.com/automagictv/remy/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("Bot stopped with error: %v", err)
	}
}

// run sets up the bot and blocks until a signal arrives or a component fails.
// Deferred telemetry and Sentry flushes run on every return path.
func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger with OTel support
	slog.SetDefault(logger.New(cfg.Env))

	// Initialize telemetry
	if cfg.OtelExporterOTLPEndpoint != "" {
		shutdown, err := telemetry.InitTelemetry(ctx, cfg.ServiceName, cfg.ServiceVersion, cfg.Env, cfg.OtelExporterOTLPEndpoint, cfg.OTLPHeaders(),
			api.WebhookPrefix, telegram.TokenPathPrefix)
		if err != nil {
			slog.Warn("Failed to init telemetry", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	// Initialize Sentry
	if err := sentry.Init(cfg.SentryDSN, cfg.Env, cfg.ServiceName, cfg.ServiceVersion); err != nil {
		slog.Warn("Failed to init Sentry", "error", err)
	} else if cfg.SentryDSN != "" {
		defer sentry.Flush(2 * time.Second)
	}

	tg, err := telegram.NewBotAPI(cfg.TelegramToken, cfg.Bot.PollTimeoutSeconds)
	if err != nil {
		return err
	}

	sender := telegram.NewSender(tg, nil)
	handler := bot.NewHandler(recipe.NewProvider(cfg), sender, bot.OptionsFromConfig(cfg.Bot))

	// Commands run in-process unless a Redis queue is configured
	var dispatcher bot.Dispatcher = handler
	if cfg.QueueEnabled() {
		asynqClient, err := worker.NewClient(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to create queue client: %w", err)
		}
		defer asynqClient.Close()
		dispatcher = worker.NewEnqueuer(asynqClient, worker.DefaultQueue)
		slog.Info("Dispatching commands through the worker queue")
	}

	apiServer := api.NewServer(dispatcher, cfg.TelegramWebhookSecret)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           apiServer.Router(cfg.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.WebhookEnabled() {
		if err := telegram.SetWebhook(tg, api.WebhookURL(cfg.TelegramWebhookURL, cfg.TelegramWebhookSecret)); err != nil {
			return err
		}
		slog.Info("Receiving updates by webhook")
	} else if err := telegram.DeleteWebhook(tg); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Starting server", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if !cfg.WebhookEnabled() {
		poller := telegram.NewPoller(tg, dispatcher, cfg.Bot.PollTimeoutSeconds, cfg.Bot.MaxConcurrency)
		g.Go(func() error {
			return poller.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("Bot stopped")
	return nil
}
