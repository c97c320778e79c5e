package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/automagictv/remy/internal/bot"
)

// MessagesPerSecond is Telegram's broadcast limit for a single bot.
const MessagesPerSecond = 30

type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Sender delivers bot replies through the Bot API, throttled to the bot's
// global message rate.
type Sender struct {
	api     messageSender
	limiter *rate.Limiter
}

func NewSender(api messageSender, limiter *rate.Limiter) *Sender {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Limit(MessagesPerSecond), MessagesPerSecond)
	}
	return &Sender{api: api, limiter: limiter}
}

// Send implements bot.Sender.
func (s *Sender) Send(ctx context.Context, chatID int64, reply bot.Reply) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	msg := tgbotapi.NewMessage(chatID, reply.Text)
	msg.ParseMode = reply.ParseMode

	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
	}
	return nil
}
