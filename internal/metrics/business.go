package metrics

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	meter = otel.Meter("remy/business")

	// Command metrics
	CommandsTotal   metric.Int64Counter
	CommandDuration metric.Float64Histogram

	// External API metrics
	ExternalAPICallsTotal metric.Int64Counter
	ExternalAPIDuration   metric.Float64Histogram
	QuotaExhaustedTotal   metric.Int64Counter

	// Formatting metrics
	MessagesFormattedTotal metric.Int64Counter
)

// Instruments are created against the global meter, which delegates to the
// SDK provider once telemetry.InitTelemetry installs one.
func init() {
	if err := Init(); err != nil {
		panic(err)
	}
}

func Init() error {
	var err error

	CommandsTotal, err = meter.Int64Counter(
		"bot.commands.total",
		metric.WithDescription("Total number of bot commands handled"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	CommandDuration, err = meter.Float64Histogram(
		"bot.command.duration",
		metric.WithDescription("Duration of bot command handling"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2, 5, 10, 30),
	)
	if err != nil {
		return err
	}

	ExternalAPICallsTotal, err = meter.Int64Counter(
		"external.api.calls.total",
		metric.WithDescription("Total number of external API calls"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	ExternalAPIDuration, err = meter.Float64Histogram(
		"external.api.duration",
		metric.WithDescription("Duration of external API calls"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2, 5, 10, 30),
	)
	if err != nil {
		return err
	}

	QuotaExhaustedTotal, err = meter.Int64Counter(
		"recipe.quota.exhausted.total",
		metric.WithDescription("Total number of provider responses reporting an exhausted daily quota"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	MessagesFormattedTotal, err = meter.Int64Counter(
		"bot.messages.formatted.total",
		metric.WithDescription("Total number of formatted recipe messages by render mode"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	return nil
}
