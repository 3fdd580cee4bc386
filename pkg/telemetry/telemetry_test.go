package telemetry

import (
	"context"
	"testing"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name     string
		exporter string
		wantErr  bool
	}{
		{name: "default", exporter: ""},
		{name: "none", exporter: "none"},
		{name: "console", exporter: "console"},
		{name: "invalid", exporter: "jaeger", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OTEL_EXPORTER", tt.exporter)
			ctx := context.Background()

			tracer, shutdown, err := Setup(ctx, "test")
			if tt.wantErr {
				if err == nil {
					t.Fatal("Setup() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Setup() failed: %v", err)
			}
			if tracer == nil {
				t.Fatal("Setup() returned nil tracer")
			}

			_, span := tracer.Start(ctx, "telemetry.test")
			span.End()

			if err := shutdown(ctx); err != nil {
				t.Errorf("shutdown() failed: %v", err)
			}
		})
	}
}
