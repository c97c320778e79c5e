package bot

import (
	"context"

	"github.com/automagictv/remy/internal/message"
)

// Command names understood by the bot.
const (
	CommandStart     = "start"
	CommandHelp      = "help"
	CommandRecipe    = "recipe"
	CommandRandom    = "random"
	CommandHappyHour = "happyhour"
	CommandTaco      = "taco"
)

// Command is one parsed chat command, independent of how it arrived.
type Command struct {
	ChatID   int64
	Name     string
	Args     string
	UpdateID int
}

// Dispatcher handles a command, either inline or by handing it to a queue.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd Command) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, cmd Command) error

func (f DispatcherFunc) Dispatch(ctx context.Context, cmd Command) error {
	return f(ctx, cmd)
}

// Telegram parse modes.
const (
	ParseModePlain      = ""
	ParseModeHTML       = "HTML"
	ParseModeMarkdownV2 = "MarkdownV2"
)

// Reply is one outbound chat message.
type Reply struct {
	Text      string
	ParseMode string
}

// ReplyFromFormatted converts a formatted recipe into a reply.
func ReplyFromFormatted(f message.Formatted) Reply {
	return Reply{Text: f.Body, ParseMode: f.Mode.ParseMode()}
}

// Sender delivers replies to a chat.
type Sender interface {
	Send(ctx context.Context, chatID int64, reply Reply) error
}
