package telemetry_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/jensholdgaard/player-auction/internal/config"
	"github.com/jensholdgaard/player-auction/internal/telemetry"
)

func TestNewNopProvider(t *testing.T) {
	p := telemetry.NewNopProvider()

	if p.TracerProvider == nil {
		t.Fatal("TracerProvider is nil")
	}
	if p.MeterProvider == nil {
		t.Fatal("MeterProvider is nil")
	}
	if p.LoggerProvider == nil {
		t.Fatal("LoggerProvider is nil")
	}
	if p.Logger == nil {
		t.Fatal("Logger is nil")
	}
}

func TestNopProvider_Shutdown(t *testing.T) {
	p := telemetry.NewNopProvider()
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}

func TestSetup_WithoutEndpointLogsLocally(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.TelemetryConfig{ServiceName: "auctiond", ServiceVersion: "test"}

	p, err := telemetry.Setup(context.Background(), cfg, &buf)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	t.Cleanup(func() { p.Shutdown(context.Background()) })

	p.Logger.Info("hello", slog.String("k", "v"))
	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Errorf("fallback log output = %q", buf.String())
	}
}

func TestLogWithTrace_NoSpan(t *testing.T) {
	logger := slog.Default()
	if got := telemetry.LogWithTrace(context.Background(), logger); got != logger {
		t.Error("LogWithTrace() without a span should return the same logger")
	}
}

func TestLogWithTrace_WithSpan(t *testing.T) {
	p := telemetry.NewNopProvider()
	t.Cleanup(func() { p.Shutdown(context.Background()) })

	// The SDK provider samples by default, so the span context is valid.
	ctx, span := p.TracerProvider.Tracer("test").Start(context.Background(), "test-span")
	defer span.End()

	var buf bytes.Buffer
	telemetry.LogWithTrace(ctx, slog.New(slog.NewTextHandler(&buf, nil))).Info("bid")

	out := buf.String()
	want := "trace_id=" + span.SpanContext().TraceID().String()
	if !strings.Contains(out, want) {
		t.Errorf("log output %q missing %q", out, want)
	}
	if !strings.Contains(out, "span_id=") {
		t.Errorf("log output %q missing span_id", out)
	}
}
