package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/atelier/internal/observability/logger"
	"github.com/smallbiznis/atelier/internal/observability/metrics"
	"github.com/smallbiznis/atelier/internal/observability/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(LoadConfig),
	loggingModule,
	tracingModule,
	metricsModule,
)

var loggingModule = fx.Options(
	fx.Provide(Config.loggerConfig, logger.New),
)

// The tracer provider installs itself as the otel global, so it is forced
// even though nothing injects it.
var tracingModule = fx.Options(
	fx.Provide(Config.tracingConfig, tracing.NewProvider),
	fx.Invoke(func(*sdktrace.TracerProvider) {}),
)

// HTTP and signup collectors go to the default registry served on /metrics.
var metricsModule = fx.Options(
	fx.Provide(
		Config.metricsConfig,
		metrics.NewProvider,
		metrics.New,
		metrics.Signup,
		func(cfg metrics.Config) *metrics.HTTPMetrics {
			return metrics.NewHTTPMetrics(prometheus.DefaultRegisterer, cfg)
		},
	),
)

func (c Config) loggerConfig() logger.Config {
	return logger.Config{
		ServiceName:         c.ServiceName,
		Environment:         c.Environment,
		Version:             c.Version,
		Level:               c.LogLevel,
		Format:              c.LogFormat,
		Debug:               c.Debug(),
		IncludeCaller:       true,
		IncludeStackOnError: c.Debug(),
	}
}

func (c Config) tracingConfig() tracing.Config {
	return tracing.Config{
		Enabled:          c.OtelEnabled,
		ServiceName:      c.ServiceName,
		ServiceVersion:   c.Version,
		Environment:      c.Environment,
		ExporterEndpoint: c.OtelExporterEndpoint,
		ExporterProtocol: c.OtelExporterProtocol,
		SamplingRatio:    c.OtelSamplingRatio,
	}
}

func (c Config) metricsConfig() metrics.Config {
	return metrics.Config{
		Enabled:          c.OtelEnabled,
		ExporterEndpoint: c.OtelExporterEndpoint,
		ExporterProtocol: c.OtelExporterProtocol,
		ServiceName:      c.ServiceName,
		Environment:      c.Environment,
	}
}
