package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SecretParam is the chi URL parameter that carries the webhook secret.
const SecretParam = "secret"

// SecretTokenHeader is the header Telegram sets when a webhook is registered
// with a secret_token.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookSecret rejects webhook calls that do not present the shared secret,
// either as the {secret} path segment or in the Telegram secret token header.
func WebhookSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				slog.ErrorContext(r.Context(), "Webhook secret is not configured")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !matches(chi.URLParam(r, SecretParam), secret) && !matches(r.Header.Get(SecretTokenHeader), secret) {
				slog.WarnContext(r.Context(), "Rejected webhook call with invalid secret", "remote_addr", r.RemoteAddr)
				http.Error(w, "Unauthorized: Invalid webhook secret", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func matches(got, want string) bool {
	if got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
