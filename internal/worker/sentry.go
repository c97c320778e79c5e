package worker

import (
	"context"
	"fmt"
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
)

// SentryMiddleware wraps asynq job handlers with Sentry error and panic capture.
func SentryMiddleware(h asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) (err error) {
		taskID, _ := asynq.GetTaskID(ctx)
		queueName, _ := asynq.GetQueueName(ctx)
		retryCount, _ := asynq.GetRetryCount(ctx)

		hub := sentry.CurrentHub().Clone()
		hub.Scope().SetTag("task_type", t.Type())
		hub.Scope().SetTag("task_id", taskID)
		hub.Scope().SetTag("queue", queueName)
		hub.Scope().SetTag("retry_count", strconv.Itoa(retryCount))
		if payload, perr := ParseHandleCommandPayload(t); perr == nil && t.Type() == TypeHandleCommand {
			hub.Scope().SetTag("command", payload.Command)
		}

		ctx = sentry.SetHubOnContext(ctx, hub)

		defer func() {
			if r := recover(); r != nil {
				hub.RecoverWithContext(ctx, r)
				err = fmt.Errorf("%w: panic while processing %s: %v", asynq.SkipRetry, t.Type(), r)
			}
		}()

		err = h.ProcessTask(ctx, t)
		if err != nil {
			hub.CaptureException(err)
		}

		return err
	})
}
