package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/automagictv/remy/internal/telemetry"
)

// OTelMiddleware wraps asynq job handlers with OpenTelemetry spans.
func OTelMiddleware(h asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		tracer := telemetry.Tracer("remy/worker")

		taskID, _ := asynq.GetTaskID(ctx)
		queueName, _ := asynq.GetQueueName(ctx)
		retryCount, _ := asynq.GetRetryCount(ctx)

		ctx, span := tracer.Start(ctx, fmt.Sprintf("job:%s", t.Type()), trace.WithSpanKind(trace.SpanKindConsumer))
		defer span.End()

		span.SetAttributes(
			attribute.String("job.id", taskID),
			attribute.String("job.type", t.Type()),
			attribute.String("job.queue", queueName),
			attribute.Int("job.retry_count", retryCount),
		)
		span.SetAttributes(commandAttributes(t)...)

		err := h.ProcessTask(ctx, t)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	})
}

// commandAttributes describes a command task. Arguments are left out; they are user text.
func commandAttributes(t *asynq.Task) []attribute.KeyValue {
	if t.Type() != TypeHandleCommand {
		return nil
	}
	payload, err := ParseHandleCommandPayload(t)
	if err != nil {
		return nil
	}
	return []attribute.KeyValue{
		attribute.String("bot.command", payload.Command),
		attribute.Int64("telegram.chat_id", payload.ChatID),
		attribute.Int("telegram.update_id", payload.UpdateID),
	}
}
