package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

// NewServer creates a new Asynq server for processing tasks
func NewServer(redisURL string, concurrency int) (*asynq.Server, error) {
	opt, err := ParseRedisURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if concurrency <= 0 {
		concurrency = 10
	}

	return asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: concurrency,
			Queues:      map[string]int{DefaultQueue: 1},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				taskID, _ := asynq.GetTaskID(ctx)
				slog.ErrorContext(ctx, "Task failed", "task_type", task.Type(), "task_id", taskID, "error", err)
			}),
		},
	), nil
}

// NewServeMux registers the command handler behind the Sentry and tracing middleware.
func NewServeMux(processor *CommandProcessor) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Use(SentryMiddleware)
	mux.Use(OTelMiddleware)
	mux.HandleFunc(TypeHandleCommand, processor.HandleCommand)
	return mux
}
