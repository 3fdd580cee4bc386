package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
)

// Set at build time with -ldflags "-X main.version=... -X main.commit=..."
var (
	version = "dev"
	commit  = "none"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display the version information for ultrasync.`,
	RunE:  runVersion,
}

func runVersion(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	tracer := otel.Tracer("ultrasync")
	ctx, span := tracer.Start(ctx, "cmd.version")
	defer span.End()

	slog.Debug("Version command executed", "version", version, "commit", commit)

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "ultrasync\n")
	_, _ = fmt.Fprintf(out, "Version: %s\n", version)
	_, _ = fmt.Fprintf(out, "Commit: %s\n", commit)
	_, _ = fmt.Fprintf(out, "Registered DNS providers: %v\n", dnsRegistry.List(ctx))

	return nil
}
