package telemetry

import (
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestRedactPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		prefix  string
		want    string
		changed bool
	}{
		{"webhook target", "/telegram/TOPSECRET", "/telegram/", "/telegram/<redacted>", true},
		{"with query", "/telegram/TOPSECRET?x=1", "/telegram/", "/telegram/<redacted>?x=1", true},
		{"full url", "https://bot.example.com/telegram/TOPSECRET", "/telegram/", "https://bot.example.com/telegram/<redacted>", true},
		{"bot token", "https://api.telegram.org/bot123:ABC/sendMessage", "/bot", "https://api.telegram.org/bot<redacted>/sendMessage", true},
		{"host is not a path", "https://bot.example.com/health", "/bot", "https://bot.example.com/health", false},
		{"other path", "/health", "/telegram/", "/health", false},
		{"empty segment", "/telegram/", "/telegram/", "/telegram/", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := RedactPath(tt.input, tt.prefix)
			if got != tt.want || changed != tt.changed {
				t.Errorf("RedactPath(%q, %q) = %q, %v; want %q, %v", tt.input, tt.prefix, got, changed, tt.want, tt.changed)
			}
		})
	}
}

func TestPathRedactor(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(NewPathRedactor("/telegram/", "/bot")),
		sdktrace.WithSpanProcessor(recorder),
	)
	defer tp.Shutdown(context.Background())

	_, span := tp.Tracer("test").Start(context.Background(), "POST /telegram/TOPSECRET",
		trace.WithAttributes(
			attribute.String("http.target", "/telegram/TOPSECRET"),
			attribute.String("url.full", "https://api.telegram.org/bot123:ABC/getUpdates"),
			attribute.String("http.method", "POST"),
		),
	)
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if strings.Contains(spans[0].Name(), "TOPSECRET") {
		t.Errorf("span name not redacted: %q", spans[0].Name())
	}

	got := map[attribute.Key]string{}
	for _, kv := range spans[0].Attributes() {
		got[kv.Key] = kv.Value.Emit()
	}
	if got["http.target"] != "/telegram/<redacted>" {
		t.Errorf("http.target = %q", got["http.target"])
	}
	if got["url.full"] != "https://api.telegram.org/bot<redacted>/getUpdates" {
		t.Errorf("url.full = %q", got["url.full"])
	}
	if got["http.method"] != "POST" {
		t.Errorf("http.method = %q", got["http.method"])
	}
}

func TestURLAttributeView(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithView(urlAttributeView()),
	)
	defer mp.Shutdown(context.Background())

	counter, err := mp.Meter("test").Int64Counter("requests")
	if err != nil {
		t.Fatalf("failed to create counter: %v", err)
	}
	counter.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("http.target", "/telegram/TOPSECRET"),
		attribute.String("http.route", "/telegram/{secret}"),
	))

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect failed: %v", err)
	}

	if len(rm.ScopeMetrics) != 1 || len(rm.ScopeMetrics[0].Metrics) != 1 {
		t.Fatalf("expected one metric, got %+v", rm.ScopeMetrics)
	}
	sum, ok := rm.ScopeMetrics[0].Metrics[0].Data.(metricdata.Sum[int64])
	if !ok || len(sum.DataPoints) != 1 {
		t.Fatalf("unexpected data %+v", rm.ScopeMetrics[0].Metrics[0].Data)
	}

	attrs := sum.DataPoints[0].Attributes
	if _, found := attrs.Value("http.target"); found {
		t.Error("http.target should be dropped from metrics")
	}
	if v, found := attrs.Value("http.route"); !found || v.AsString() != "/telegram/{secret}" {
		t.Errorf("http.route = %v, %v", v, found)
	}
}
