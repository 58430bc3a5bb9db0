package observability

import (
	"context"
	"testing"

	"github.com/leslieo2/go-hot-reload/internal/config"
)

func TestNewTracer_Disabled(t *testing.T) {
	tracer, err := NewTracer(config.TracingConfig{Enabled: false})
	if err != nil {
		t.Fatalf("NewTracer() failed: %v", err)
	}

	ctx, span := tracer.StartSpan(context.Background(), "test-span")
	if ctx == nil || span == nil {
		t.Fatal("StartSpan() returned nil")
	}
	span.End()

	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() failed: %v", err)
	}
}

func TestNewTracer_Enabled(t *testing.T) {
	tracer, err := NewTracer(config.TracingConfig{
		Enabled:     true,
		ServiceName: "go-hot-reload-test",
		Version:     "test",
		Environment: "test",
	})
	if err != nil {
		t.Fatalf("NewTracer() failed: %v", err)
	}

	_, span := tracer.StartSpan(context.Background(), "build.execute")
	span.End()

	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() failed: %v", err)
	}
}
