package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nebari-dev/ultrasync/pkg/zonefile"
)

var (
	validateConfigFile string

	validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and zone files",
		Long: `Validate the ultrasync.yaml file and every zone file it references
without contacting the provider.`,
		RunE: runValidate,
	}
)

func init() {
	validateCmd.Flags().StringVarP(&validateConfigFile, "file", "f", "", "Path to ultrasync.yaml file (required)")
	// Panic is appropriate in init() since we cannot return errors and this indicates a programming error
	if err := validateCmd.MarkFlagRequired("file"); err != nil {
		panic(err)
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	tracer := otel.Tracer("ultrasync")
	ctx, span := tracer.Start(ctx, "cmd.validate")
	defer span.End()

	span.SetAttributes(attribute.String("config.file", validateConfigFile))

	slog.Info("Validating configuration", "config_file", validateConfigFile)

	fs := afero.NewOsFs()
	cfg, err := loadConfig(ctx, fs, validateConfigFile)
	if err != nil {
		span.RecordError(err)
		slog.Error("Configuration validation failed", "error", err, "file", validateConfigFile)
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "✓ Configuration file is valid\n")
	_, _ = fmt.Fprintf(out, "  Provider: %s (%s)\n", cfg.Provider.ID, cfg.Provider.Type)
	_, _ = fmt.Fprintf(out, "  Account: %s\n", cfg.Provider.Account)

	var failed int
	for _, zone := range cfg.Zones {
		z, err := zonefile.Load(ctx, fs, cfg.ZonesDir, zone)
		if err != nil {
			failed++
			span.RecordError(err)
			slog.Error("Zone file validation failed", "error", err, "zone", zone)
			_, _ = fmt.Fprintf(out, "✗ %s: %v\n", zone, err)
			continue
		}
		_, _ = fmt.Fprintf(out, "✓ %s: %d records\n", zone, len(z.Records))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d zone files are invalid", failed, len(cfg.Zones))
	}
	return nil
}
