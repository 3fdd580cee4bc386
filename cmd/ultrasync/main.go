package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nebari-dev/ultrasync/pkg/dnsprovider"
	"github.com/nebari-dev/ultrasync/pkg/telemetry"
	"github.com/nebari-dev/ultrasync/pkg/ultra"
)

var (
	// Global DNS provider registry
	dnsRegistry *dnsprovider.Registry

	logLevel string

	// Root command
	rootCmd = &cobra.Command{
		Use:   "ultrasync",
		Short: "ultrasync - Synchronize DNS zones with UltraDNS",
		Long: `ultrasync reads the desired state of DNS zones from YAML zone files,
compares it with the records hosted at UltraDNS and applies the difference
through the UltraDNS REST API.

Credentials are read from the ULTRA_USERNAME and ULTRA_PASSWORD environment
variables, optionally loaded from a .env file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseLogLevel(logLevel)
			if err != nil {
				return err
			}
			// Setup structured logging
			logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			}))
			slog.SetDefault(logger)
			return nil
		},
	}
)

func init() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	// Initialize DNS provider registry
	dnsRegistry = dnsprovider.NewRegistry()

	// Register DNS providers explicitly
	ctx := context.Background()
	if err := dnsRegistry.Register(ctx, ultra.TypeName, ultra.Factory); err != nil {
		log.Fatalf("Failed to register UltraDNS provider: %v", err)
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(zonesCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	// Setup OpenTelemetry
	_, shutdown, err := telemetry.Setup(ctx, version)
	if err != nil {
		slog.Error("Failed to setup telemetry", "error", err)
		os.Exit(1)
	}

	// Execute root command
	err = rootCmd.ExecuteContext(ctx)

	if shutdownErr := shutdown(context.Background()); shutdownErr != nil {
		slog.Error("Failed to shutdown telemetry", "error", shutdownErr)
	}
	stop()

	if err != nil {
		slog.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}
