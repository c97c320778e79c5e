package worker

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/automagictv/remy/internal/bot"
)

// Task type constants
const (
	TypeHandleCommand = "command:handle"
)

// HandleCommandPayload is the payload for chat command tasks
type HandleCommandPayload struct {
	ChatID   int64  `json:"chat_id"`
	Command  string `json:"command"`
	Args     string `json:"args"`
	UpdateID int    `json:"update_id"`
}

func PayloadFromCommand(cmd bot.Command) HandleCommandPayload {
	return HandleCommandPayload{
		ChatID:   cmd.ChatID,
		Command:  cmd.Name,
		Args:     cmd.Args,
		UpdateID: cmd.UpdateID,
	}
}

func (p HandleCommandPayload) BotCommand() bot.Command {
	return bot.Command{
		ChatID:   p.ChatID,
		Name:     p.Command,
		Args:     p.Args,
		UpdateID: p.UpdateID,
	}
}

// NewHandleCommandTask creates a new command task
func NewHandleCommandTask(payload HandleCommandPayload, opts ...asynq.Option) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeHandleCommand, data, opts...), nil
}

// ParseHandleCommandPayload decodes a command task payload.
func ParseHandleCommandPayload(t *asynq.Task) (HandleCommandPayload, error) {
	var payload HandleCommandPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return HandleCommandPayload{}, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}
