package worker

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/automagictv/remy/internal/bot"
)

// DefaultQueue is the queue command tasks are enqueued on.
const DefaultQueue = "default"

// ParseRedisURL parses a Redis URL and returns asynq.RedisClientOpt
func ParseRedisURL(redisURL string) (asynq.RedisClientOpt, error) {
	// Handle plain host:port format
	if !strings.HasPrefix(redisURL, "redis://") && !strings.HasPrefix(redisURL, "rediss://") {
		return asynq.RedisClientOpt{Addr: redisURL}, nil
	}

	u, err := url.Parse(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	opt := asynq.RedisClientOpt{
		Addr: u.Host,
	}

	if u.User != nil {
		opt.Username = u.User.Username()
		if password, ok := u.User.Password(); ok {
			opt.Password = password
		}
	}

	if db := strings.TrimPrefix(u.Path, "/"); db != "" {
		n, err := strconv.Atoi(db)
		if err != nil {
			return asynq.RedisClientOpt{}, fmt.Errorf("invalid redis database %q: %w", db, err)
		}
		opt.DB = n
	}

	// For rediss:// (TLS), we need to set TLS config
	if u.Scheme == "rediss" {
		opt.TLSConfig = &tls.Config{ServerName: u.Hostname()}
	}

	return opt, nil
}

// NewClient creates a new Asynq client for enqueueing tasks
func NewClient(redisURL string) (*asynq.Client, error) {
	opt, err := ParseRedisURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	return asynq.NewClient(opt), nil
}

type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer is a bot.Dispatcher that hands commands to the worker through Redis.
type Enqueuer struct {
	client taskEnqueuer
	queue  string
}

func NewEnqueuer(client taskEnqueuer, queue string) *Enqueuer {
	if queue == "" {
		queue = DefaultQueue
	}
	return &Enqueuer{client: client, queue: queue}
}

// Dispatch enqueues cmd once. Commands are never retried.
func (e *Enqueuer) Dispatch(ctx context.Context, cmd bot.Command) error {
	task, err := NewHandleCommandTask(PayloadFromCommand(cmd))
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	info, err := e.client.EnqueueContext(ctx, task,
		asynq.TaskID(uuid.New().String()),
		asynq.Queue(e.queue),
		asynq.MaxRetry(0),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	slog.InfoContext(ctx, "Enqueued command", "task_id", info.ID, "queue", info.Queue, "command", cmd.Name, "chat_id", cmd.ChatID)
	return nil
}
