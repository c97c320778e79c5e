package telegram

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/automagictv/remy/internal/httpclient"
)

const providerName = "Telegram"

// TokenPathPrefix precedes the bot token in Bot API request paths.
const TokenPathPrefix = "/bot"

// providerClient tags every Bot API request with the provider name, so the
// instrumented transport never names a span after the token-bearing path.
// Transport errors have the token redacted from their URL.
type providerClient struct {
	client *http.Client
}

func (c providerClient) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.client.Do(req.WithContext(httpclient.WithProvider(req.Context(), providerName)))
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = redactedURL(req.URL)
	}
	return resp, err
}

// redactedURL keeps the host and the Bot API method of u.
func redactedURL(u *url.URL) string {
	return fmt.Sprintf("%s://%s%s<redacted>/%s", u.Scheme, u.Host, TokenPathPrefix, path.Base(u.Path))
}

// NewBotAPI connects to the Bot API with an instrumented HTTP client. The
// client timeout leaves room for long polls of pollTimeout seconds.
func NewBotAPI(token string, pollTimeout int) (*tgbotapi.BotAPI, error) {
	timeout := httpclient.DefaultTimeout + time.Duration(pollTimeout)*time.Second
	client := providerClient{client: httpclient.NewInstrumentedClient(timeout)}

	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Telegram: %w", err)
	}

	slog.Info("Telegram bot authorized", "username", api.Self.UserName)
	return api, nil
}

type requester interface {
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// SetWebhook registers link as the bot's webhook.
func SetWebhook(api requester, link string) error {
	wh, err := tgbotapi.NewWebhook(link)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	if _, err := api.Request(wh); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	return nil
}

// DeleteWebhook removes any webhook so long polling can receive updates.
func DeleteWebhook(api requester) error {
	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}
	return nil
}
