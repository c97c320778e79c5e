package telegram

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"github.com/automagictv/remy/internal/bot"
	"github.com/automagictv/remy/internal/sentry"
)

// CommandFromUpdate extracts a bot command from a Telegram update. Updates
// that are not command messages report false.
func CommandFromUpdate(update tgbotapi.Update) (bot.Command, bool) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || !msg.IsCommand() {
		return bot.Command{}, false
	}
	return bot.Command{
		ChatID:   msg.Chat.ID,
		Name:     msg.Command(),
		Args:     msg.CommandArguments(),
		UpdateID: update.UpdateID,
	}, true
}

type updatesSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Poller long-polls getUpdates and dispatches commands concurrently.
type Poller struct {
	api            updatesSource
	dispatcher     bot.Dispatcher
	timeoutSeconds int
	maxConcurrency int
}

func NewPoller(api updatesSource, dispatcher bot.Dispatcher, timeoutSeconds, maxConcurrency int) *Poller {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	return &Poller{
		api:            api,
		dispatcher:     dispatcher,
		timeoutSeconds: timeoutSeconds,
		maxConcurrency: maxConcurrency,
	}
}

// Run polls until ctx is done or the update channel closes, then waits for
// in-flight commands to finish.
func (p *Poller) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = p.timeoutSeconds
	updates := p.api.GetUpdatesChan(u)

	var g errgroup.Group
	g.SetLimit(p.maxConcurrency)

	// Commands already received are answered even during shutdown.
	dispatchCtx := context.WithoutCancel(ctx)

	slog.Info("Polling Telegram for updates", "timeout_seconds", p.timeoutSeconds, "max_concurrency", p.maxConcurrency)

	for {
		select {
		case <-ctx.Done():
			p.api.StopReceivingUpdates()
			slog.Info("Stopped polling, waiting for in-flight commands")
			return g.Wait()
		case update, ok := <-updates:
			if !ok {
				return g.Wait()
			}
			cmd, ok := CommandFromUpdate(update)
			if !ok {
				continue
			}
			g.Go(func() error {
				p.dispatch(dispatchCtx, cmd)
				return nil
			})
		}
	}
}

func (p *Poller) dispatch(ctx context.Context, cmd bot.Command) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "Panic while handling command", "command", cmd.Name, "panic", r)
			sentry.Recover(ctx, r)
		}
	}()

	if err := p.dispatcher.Dispatch(ctx, cmd); err != nil {
		slog.ErrorContext(ctx, "Failed to dispatch command", "command", cmd.Name, "chat_id", cmd.ChatID, "error", err)
	}
}
