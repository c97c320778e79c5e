package sentry

import (
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
)

// redactedHeaders never reach Sentry events.
var redactedHeaders = []string{
	"X-Telegram-Bot-Api-Secret-Token",
}

// HTTPMiddleware returns a middleware that captures panics and 5xx responses in HTTP handlers.
// Events carry the chi route pattern instead of the raw path, so URL parameters stay out of them.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub := sentry.GetHubFromContext(r.Context())
		if hub == nil {
			hub = sentry.CurrentHub().Clone()
		}

		// The pattern is only known here when the middleware is mounted after routing.
		if pattern := routePattern(r); pattern != "" {
			hub.Scope().SetRequest(scrubbedRequest(r, pattern))
		}

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		ctx := sentry.SetHubOnContext(r.Context(), hub)

		defer func() {
			err := recover()
			if err == nil && wrapped.statusCode < http.StatusInternalServerError {
				return
			}

			pattern := routePattern(r)
			if pattern == "" {
				pattern = "unmatched route"
			}
			hub.Scope().SetRequest(scrubbedRequest(r, pattern))

			if err != nil {
				hub.RecoverWithContext(ctx, err)
				wrapped.WriteHeader(http.StatusInternalServerError)
				return
			}
			hub.CaptureMessage(fmt.Sprintf("%s %s returned %d", r.Method, pattern, wrapped.statusCode))
		}()

		next.ServeHTTP(wrapped, r.WithContext(ctx))
	})
}

// routePattern returns the matched chi route, or "" before routing.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return ""
	}
	return rctx.RoutePattern()
}

// scrubbedRequest copies r with the path replaced by pattern and secret headers removed.
func scrubbedRequest(r *http.Request, pattern string) *http.Request {
	clean := r.Clone(r.Context())
	clean.URL.Path = pattern
	clean.URL.RawPath = ""
	clean.RequestURI = pattern
	for _, h := range redactedHeaders {
		clean.Header.Del(h)
	}
	return clean
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
