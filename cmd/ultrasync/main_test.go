package main

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/nebari-dev/ultrasync/pkg/config"
	"github.com/nebari-dev/ultrasync/pkg/status"
	"github.com/nebari-dev/ultrasync/pkg/ultra"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "info", want: slog.LevelInfo},
		{input: "WARN", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseLogLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseLogLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRegistryHasUltra(t *testing.T) {
	types := dnsRegistry.List(context.Background())
	if len(types) != 1 || types[0] != ultra.TypeName {
		t.Errorf("registered providers = %v, want [%s]", types, ultra.TypeName)
	}
}

func TestWithUserAgent(t *testing.T) {
	pc := withUserAgent(config.ProviderConfig{Type: "ultra"})
	if pc.UserAgent != "ultrasync/"+version {
		t.Errorf("UserAgent = %q, want %q", pc.UserAgent, "ultrasync/"+version)
	}

	pc = withUserAgent(config.ProviderConfig{Type: "ultra", UserAgent: "custom/1"})
	if pc.UserAgent != "custom/1" {
		t.Errorf("UserAgent = %q, want configured value kept", pc.UserAgent)
	}
}

func TestStatusLogHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	handler := statusLogHandler(logger)

	handler(status.NewUpdate(status.LevelProgress, "Applying change 1 of 2").
		ForZone("example.com.").
		WithAction("create").
		WithRecord("www.example.com. A"))
	handler(status.NewUpdate(status.LevelWarning, "careful"))

	out := buf.String()
	for _, want := range []string{
		`"msg":"Progress"`,
		`"zone":"example.com."`,
		`"action":"create"`,
		`"record":"www.example.com. A"`,
		`"level":"WARN"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
}
