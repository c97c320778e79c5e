package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// MetricExportInterval is how often metrics are pushed to the collector.
const MetricExportInterval = 30 * time.Second

type endpointConfig struct {
	host       string
	insecure   bool
	tracePath  string
	logPath    string
	metricPath string
}

// parseEndpoint splits an OTLP endpoint URL into host, TLS mode and per-signal paths.
func parseEndpoint(otlpEndpoint string) endpointConfig {
	cfg := endpointConfig{
		host:       otlpEndpoint,
		tracePath:  "/v1/traces",
		logPath:    "/v1/logs",
		metricPath: "/v1/metrics",
	}

	if strings.HasPrefix(cfg.host, "https://") {
		cfg.host = strings.TrimPrefix(cfg.host, "https://")
	} else if strings.HasPrefix(cfg.host, "http://") {
		cfg.host = strings.TrimPrefix(cfg.host, "http://")
		cfg.insecure = true
	}

	basePath := ""
	if idx := strings.Index(cfg.host, "/"); idx > 0 {
		basePath = cfg.host[idx:]
		cfg.host = cfg.host[:idx]
	}

	for _, suffix := range []string{"/v1/traces", "/v1/logs", "/v1/metrics"} {
		basePath = strings.TrimSuffix(basePath, suffix)
	}
	basePath = strings.TrimSuffix(basePath, "/")

	if basePath != "" {
		cfg.tracePath = basePath + cfg.tracePath
		cfg.logPath = basePath + cfg.logPath
		cfg.metricPath = basePath + cfg.metricPath
	}

	return cfg
}

// InitTelemetry initializes OpenTelemetry with OTLP exporters for traces,
// logs and metrics and installs them globally. The path segment after each of
// redactPrefixes is removed from exported spans.
// Returns shutdown function and error
func InitTelemetry(ctx context.Context, serviceName, serviceVersion, env, otlpEndpoint string, headers map[string]string, redactPrefixes ...string) (func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(serviceVersion),
			semconv.DeploymentEnvironmentKey.String(env),
		),
	)
	if err != nil {
		return nil, err
	}

	endpoint := parseEndpoint(otlpEndpoint)

	traceOpts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(endpoint.host),
		otlptracehttp.WithURLPath(endpoint.tracePath),
	}
	logOpts := []otlploghttp.Option{
		otlploghttp.WithEndpoint(endpoint.host),
		otlploghttp.WithURLPath(endpoint.logPath),
	}
	metricOpts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(endpoint.host),
		otlpmetrichttp.WithURLPath(endpoint.metricPath),
	}
	if len(headers) > 0 {
		traceOpts = append(traceOpts, otlptracehttp.WithHeaders(headers))
		logOpts = append(logOpts, otlploghttp.WithHeaders(headers))
		metricOpts = append(metricOpts, otlpmetrichttp.WithHeaders(headers))
	}
	if endpoint.insecure {
		traceOpts = append(traceOpts, otlptracehttp.WithInsecure())
		logOpts = append(logOpts, otlploghttp.WithInsecure())
		metricOpts = append(metricOpts, otlpmetrichttp.WithInsecure())
	}

	traceExporter, err := otlptracehttp.New(ctx, traceOpts...)
	if err != nil {
		return nil, err
	}

	logExporter, err := otlploghttp.New(ctx, logOpts...)
	if err != nil {
		return nil, err
	}

	metricExporter, err := otlpmetrichttp.New(ctx, metricOpts...)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(NewPathRedactor(redactPrefixes...)),
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	lp := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
		sdklog.WithResource(res),
	)
	global.SetLoggerProvider(lp)

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(MetricExportInterval))),
		sdkmetric.WithResource(res),
		sdkmetric.WithView(urlAttributeView()),
	)
	otel.SetMeterProvider(mp)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	slog.Info("Telemetry initialized",
		"endpoint", endpoint.host,
		"trace_path", endpoint.tracePath,
		"log_path", endpoint.logPath,
		"metric_path", endpoint.metricPath,
		"insecure", endpoint.insecure,
	)

	return func(ctx context.Context) error {
		return errors.Join(
			tp.Shutdown(ctx),
			mp.Shutdown(ctx),
			lp.Shutdown(ctx),
		)
	}, nil
}

// Tracer returns a tracer with the given name
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}
