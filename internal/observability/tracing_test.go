package observability

import (
	"context"
	"testing"

	"github.com/signalsfoundry/lorasat-simulator/internal/logging"
)

func TestInitTracingDisabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), TracingConfig{Enabled: false}, logging.Noop())
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}
	if shutdown == nil {
		t.Fatal("InitTracing returned a nil shutdown function")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown returned error: %v", err)
	}
}

func TestInitTracingUnsupportedExporter(t *testing.T) {
	_, err := InitTracing(context.Background(), TracingConfig{
		Enabled:  true,
		Exporter: "jaeger-thrift",
	}, logging.Noop())
	if err == nil {
		t.Fatal("InitTracing accepted an unsupported exporter")
	}
}

func TestTracingConfigFromEnv(t *testing.T) {
	t.Setenv("SIM_TRACING_ENABLED", "true")
	t.Setenv("SIM_TRACING_EXPORTER", "OTLP")
	t.Setenv("SIM_TRACING_SERVICE_NAME", "ber-sweeper")
	t.Setenv("SIM_TRACING_SAMPLE_RATIO", "0.25")
	t.Setenv("SIM_OTLP_ENDPOINT", "collector:4317")

	cfg := TracingConfigFromEnv()
	if !cfg.Enabled {
		t.Error("Enabled = false, want true")
	}
	if cfg.Exporter != "otlp" {
		t.Errorf("Exporter = %q, want otlp", cfg.Exporter)
	}
	if cfg.ServiceName != "ber-sweeper" {
		t.Errorf("ServiceName = %q, want ber-sweeper", cfg.ServiceName)
	}
	if cfg.SampleRatio != 0.25 {
		t.Errorf("SampleRatio = %g, want 0.25", cfg.SampleRatio)
	}
	if cfg.Endpoint != "collector:4317" {
		t.Errorf("Endpoint = %q, want collector:4317", cfg.Endpoint)
	}
}

func TestTracingConfigFromEnvDefaults(t *testing.T) {
	t.Setenv("SIM_TRACING_ENABLED", "")
	t.Setenv("SIM_TRACING_EXPORTER", "")
	t.Setenv("SIM_TRACING_SERVICE_NAME", "")
	t.Setenv("SIM_TRACING_SAMPLE_RATIO", "not-a-number")
	t.Setenv("SIM_OTLP_ENDPOINT", "")

	cfg := TracingConfigFromEnv()
	if cfg.Enabled {
		t.Error("Enabled = true, want false by default")
	}
	if cfg.Exporter != "stdout" {
		t.Errorf("Exporter = %q, want stdout", cfg.Exporter)
	}
	if cfg.ServiceName != "lorasat-simulator" {
		t.Errorf("ServiceName = %q, want lorasat-simulator", cfg.ServiceName)
	}
	if cfg.SampleRatio != 1 {
		t.Errorf("SampleRatio = %g, want 1", cfg.SampleRatio)
	}
}
