// Package integration exercises the bot end to end: webhook, dispatch,
// the Spoonacular client and the Telegram sender, with both external APIs faked.
package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hibiken/asynq"

	"github.com/automagictv/remy/internal/bot"
	"github.com/automagictv/remy/internal/services/recipe"
	"github.com/automagictv/remy/internal/telegram"
)

const (
	webhookSecret = "integration-secret"

	findByIngredientsBody = `[{"id": 11, "title": "Chicken Rice"}, {"id": 12}, {"id": 13}, {"id": 14}]`
	informationBulkBody   = `[
		{"id": 11, "title": "Chicken Rice", "sourceUrl": "https://example.com/11", "readyInMinutes": 30,
		 "extendedIngredients": [{"originalString": "1 chicken breast"}, {"originalString": "1 cup rice"}],
		 "instructions": "<ol><li>Cook the rice.</li><li>Grill the chicken.</li></ol>"},
		{"id": 12, "title": "Rice Bowl", "sourceUrl": "https://example.com/12", "readyInMinutes": 15,
		 "extendedIngredients": [], "instructions": null},
		{"id": 13, "title": "Fried Rice", "sourceUrl": "https://example.com/13", "readyInMinutes": 20,
		 "extendedIngredients": [{"originalString": "2 eggs"}], "instructions": "Fry   it."}
	]`
	quotaBody = `{"status": "failure", "code": 402, "message": "Your daily points limit of 150 has been reached."}`
)

// ============================================================================
// Spoonacular
// ============================================================================

type spoonacularFake struct {
	server *httptest.Server

	mu       sync.Mutex
	requests []*http.Request
	quota    bool
}

func newSpoonacularFake(t *testing.T) *spoonacularFake {
	t.Helper()

	f := &spoonacularFake{}
	mux := http.NewServeMux()
	mux.HandleFunc("/recipes/findByIngredients", f.respond(findByIngredientsBody))
	mux.HandleFunc("/recipes/informationBulk", f.respond(informationBulkBody))
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *spoonacularFake) respond(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r)
		quota := f.quota
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if quota {
			w.WriteHeader(http.StatusPaymentRequired)
			w.Write([]byte(quotaBody))
			return
		}
		w.Write([]byte(body))
	}
}

func (f *spoonacularFake) client() recipe.Provider {
	return recipe.NewSpoonacularClient("integration-key",
		recipe.WithBaseURL(f.server.URL),
		recipe.WithHTTPClient(f.server.Client()),
	)
}

func (f *spoonacularFake) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	paths := make([]string, len(f.requests))
	for i, r := range f.requests {
		paths[i] = r.URL.Path
	}
	return paths
}

// ============================================================================
// Telegram
// ============================================================================

type telegramFake struct {
	mu   sync.Mutex
	sent []tgbotapi.MessageConfig
}

func (f *telegramFake) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func (f *telegramFake) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.MessageConfig(nil), f.sent...)
}

// ============================================================================
// Queue
// ============================================================================

type capturingQueue struct {
	mu    sync.Mutex
	tasks []*asynq.Task
}

func (q *capturingQueue) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{ID: "task", Queue: "default", Type: task.Type()}, nil
}

// ============================================================================
// Fixtures
// ============================================================================

type fixtures struct {
	spoonacular *spoonacularFake
	telegram    *telegramFake
	handler     *bot.Handler
}

func setupFixtures(t *testing.T) *fixtures {
	t.Helper()

	spoon := newSpoonacularFake(t)
	tg := &telegramFake{}
	handler := bot.NewHandler(spoon.client(), telegram.NewSender(tg, nil), bot.Options{})

	return &fixtures{
		spoonacular: spoon,
		telegram:    tg,
		handler:     handler,
	}
}

func updateBody(text string, commandLen int) string {
	return `{"update_id": 500, "message": {"message_id": 1, "date": 1600000000,
		"chat": {"id": 31337, "type": "private"}, "text": "` + text + `",
		"entities": [{"type": "bot_command", "offset": 0, "length": ` + strconv.Itoa(commandLen) + `}]}}`
}
