package sentry

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// eventRecorder collects events through BeforeSend and drops them.
type eventRecorder struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (r *eventRecorder) beforeSend(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) encoded(t *testing.T) []string {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		b, err := json.Marshal(e)
		require.NoError(t, err)
		out[i] = string(b)
	}
	return out
}

func newRecordingHub(t *testing.T) (*sentry.Hub, *eventRecorder) {
	t.Helper()
	rec := &eventRecorder{}
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:        "https://public@sentry.example.com/1",
		BeforeSend: rec.beforeSend,
	})
	require.NoError(t, err)
	return sentry.NewHub(client, sentry.NewScope()), rec
}

// withHub puts hub on every request context ahead of the middleware.
func withHub(hub *sentry.Hub) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(sentry.SetHubOnContext(r.Context(), hub)))
		})
	}
}

func TestHTTPMiddleware_ServerErrorOmitsRouteParams(t *testing.T) {
	const secret = "TOPSECRET"

	mounts := map[string]func(r chi.Router, h http.HandlerFunc){
		"after routing": func(r chi.Router, h http.HandlerFunc) {
			r.Group(func(r chi.Router) {
				r.Use(HTTPMiddleware)
				r.Post("/telegram/{secret}", h)
			})
		},
		"before routing": func(r chi.Router, h http.HandlerFunc) {
			r.Use(HTTPMiddleware)
			r.Post("/telegram/{secret}", h)
		},
	}

	for name, mount := range mounts {
		t.Run(name, func(t *testing.T) {
			hub, events := newRecordingHub(t)

			r := chi.NewRouter()
			r.Use(withHub(hub))
			mount(r, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "dispatch failed", http.StatusInternalServerError)
			})

			req := httptest.NewRequest(http.MethodPost, "/telegram/"+secret+"?x=1", nil)
			req.Header.Set("X-Telegram-Bot-Api-Secret-Token", secret)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)

			encoded := events.encoded(t)
			require.Len(t, encoded, 1)
			assert.NotContains(t, encoded[0], secret)
			assert.Contains(t, encoded[0], "POST /telegram/{secret} returned 500")
		})
	}
}

func TestHTTPMiddleware_PanicOmitsRouteParams(t *testing.T) {
	hub, events := newRecordingHub(t)

	r := chi.NewRouter()
	r.Use(withHub(hub))
	r.Use(HTTPMiddleware)
	r.Post("/telegram/{secret}", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/telegram/TOPSECRET", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	encoded := events.encoded(t)
	require.Len(t, encoded, 1)
	assert.NotContains(t, encoded[0], "TOPSECRET")
}

func TestHTTPMiddleware_SuccessSendsNothing(t *testing.T) {
	hub, events := newRecordingHub(t)

	r := chi.NewRouter()
	r.Use(withHub(hub))
	r.Use(HTTPMiddleware)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, events.encoded(t))
}

func TestHTTPMiddleware_RecoversPanic(t *testing.T) {
	handler := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/telegram/secret", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHTTPMiddleware_SetsHub(t *testing.T) {
	var hub *sentry.Hub
	handler := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub = sentry.GetHubFromContext(r.Context())
		w.WriteHeader(http.StatusAccepted)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.NotNil(t, hub)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestCaptureException_WithoutClient(t *testing.T) {
	assert.NotPanics(t, func() {
		CaptureException(context.Background(), errors.New("boom"), map[string]string{"command": "recipe"})
		CaptureException(context.Background(), nil, nil)
	})
}

func TestInit_EmptyDSN(t *testing.T) {
	assert.NoError(t, Init("", "test", "remy", "1.0.0"))
}
