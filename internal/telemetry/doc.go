// Package telemetry provides OpenTelemetry initialization and helpers
// for traces, logs and metrics across the Remy bot and worker.
//
// The package configures OTLP HTTP export for all three signals. The
// endpoint may carry a base path (e.g. Grafana Cloud's /otlp), which is
// prefixed to each signal's /v1/... path.
package telemetry
