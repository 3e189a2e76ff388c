package observability

import (
	"testing"

	"github.com/smallbiznis/atelier/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfigFallsBackToAppConfig(t *testing.T) {
	cfg := LoadConfig(config.Config{
		AppName:      "atelier-api",
		AppVersion:   "1.2.3",
		Environment:  "production",
		OTLPEndpoint: "collector:4317",
	})

	assert.Equal(t, "atelier-api", cfg.ServiceName)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "1.2.3", cfg.Version)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.False(t, cfg.OtelEnabled)
	assert.Equal(t, "collector:4317", cfg.OtelExporterEndpoint)
	assert.Equal(t, "grpc", cfg.OtelExporterProtocol)
	assert.InDelta(t, 0.1, cfg.OtelSamplingRatio, 1e-9)
	assert.False(t, cfg.Debug())
}

func TestLoadConfigReadsEnvironment(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", "HTTP")
	t.Setenv("OTEL_SAMPLING_RATIO", "7")

	cfg := LoadConfig(config.Config{Environment: "production"})

	assert.Equal(t, "atelier", cfg.ServiceName)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.OtelEnabled)
	assert.Equal(t, "http", cfg.OtelExporterProtocol)
	assert.InDelta(t, 0.1, cfg.OtelSamplingRatio, 1e-9)
	assert.True(t, cfg.Debug())
}

func TestDebugEnvironments(t *testing.T) {
	for env, want := range map[string]bool{"test": true, "Local": true, "staging": false, "": false} {
		assert.Equal(t, want, Config{Environment: env, LogLevel: "info"}.Debug(), env)
	}
}

func TestDerivedConfigs(t *testing.T) {
	cfg := Config{
		ServiceName:          "atelier",
		Environment:          "test",
		LogLevel:             "info",
		OtelEnabled:          true,
		OtelExporterEndpoint: "collector:4317",
		OtelExporterProtocol: "grpc",
		OtelSamplingRatio:    0.5,
	}

	assert.True(t, cfg.loggerConfig().Debug)
	assert.True(t, cfg.loggerConfig().IncludeStackOnError)
	assert.Equal(t, 0.5, cfg.tracingConfig().SamplingRatio)
	assert.Equal(t, "collector:4317", cfg.metricsConfig().ExporterEndpoint)
	assert.True(t, cfg.metricsConfig().Enabled)
}
