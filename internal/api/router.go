package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/riandyrn/otelchi"
	otelchimetric "github.com/riandyrn/otelchi/metric"
	"go.opentelemetry.io/otel"

	"github.com/automagictv/remy/internal/middleware"
	"github.com/automagictv/remy/internal/sentry"
)

// WebhookPrefix is the path segment before the webhook secret.
const WebhookPrefix = "/telegram/"

// WebhookPath is the route Telegram posts updates to.
const WebhookPath = WebhookPrefix + "{" + middleware.SecretParam + "}"

// Router wires the health check and the Telegram webhook with tracing,
// HTTP metrics and Sentry panic capture.
func (s *Server) Router(serviceName string) http.Handler {
	r := chi.NewRouter()

	r.Use(otelchi.Middleware(serviceName,
		otelchi.WithChiRoutes(r),
		otelchi.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health"
		}),
	))

	metricCfg := otelchimetric.NewBaseConfig(serviceName, otelchimetric.WithMeterProvider(otel.GetMeterProvider()))
	r.Use(otelchimetric.NewRequestDurationMillis(metricCfg))
	r.Use(otelchimetric.NewRequestInFlight(metricCfg))
	r.Use(otelchimetric.NewResponseSizeBytes(metricCfg))

	// Inside the group Sentry runs after routing and reports the route pattern,
	// never the secret path segment.
	r.Group(func(r chi.Router) {
		r.Use(sentry.HTTPMiddleware)

		r.Get("/health", s.HandleHealth)

		r.With(middleware.WebhookSecret(s.webhookSecret)).Post(WebhookPath, s.HandleTelegramUpdate)
	})

	return r
}

// WebhookURL is the public URL Telegram should post updates to.
func WebhookURL(baseURL, secret string) string {
	return strings.TrimSuffix(baseURL, "/") + WebhookPrefix + url.PathEscape(secret)
}
