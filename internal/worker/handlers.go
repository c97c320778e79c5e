package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/automagictv/remy/internal/bot"
)

type CommandProcessor struct {
	dispatcher bot.Dispatcher
	metrics    *WorkerMetrics
}

func NewCommandProcessor(dispatcher bot.Dispatcher, metrics *WorkerMetrics) *CommandProcessor {
	return &CommandProcessor{
		dispatcher: dispatcher,
		metrics:    metrics,
	}
}

// HandleCommand runs a queued chat command. A malformed payload is skipped
// rather than retried.
func (p *CommandProcessor) HandleCommand(ctx context.Context, t *asynq.Task) error {
	startTime := time.Now()

	payload, err := ParseHandleCommandPayload(t)
	if err != nil {
		p.metrics.RecordJob(ctx, t.Type(), "invalid", time.Since(startTime).Seconds())
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	slog.InfoContext(ctx, "Processing command", "command", payload.Command, "chat_id", payload.ChatID, "update_id", payload.UpdateID)

	if err := p.dispatcher.Dispatch(ctx, payload.BotCommand()); err != nil {
		p.metrics.RecordJob(ctx, t.Type(), "failed", time.Since(startTime).Seconds())
		return fmt.Errorf("failed to handle /%s for chat %d: %w", payload.Command, payload.ChatID, err)
	}

	p.metrics.RecordJob(ctx, t.Type(), "success", time.Since(startTime).Seconds())
	return nil
}
