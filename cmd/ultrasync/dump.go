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
	dumpConfigFile string
	dumpZones      []string
	dumpOutputDir  string

	dumpCmd = &cobra.Command{
		Use:   "dump",
		Short: "Print the records hosted by the provider in zone file format",
		Long: `Read the current records of each zone from the provider and print them
in zone file format. Records the provider hosts but ultrasync cannot
represent (directional pools, unsupported types) are skipped with a warning.

Use --output-dir to write one zone file per zone instead of printing.`,
		RunE: runDump,
	}
)

func init() {
	dumpCmd.Flags().StringVarP(&dumpConfigFile, "file", "f", "", "Path to ultrasync.yaml file (required)")
	dumpCmd.Flags().StringSliceVar(&dumpZones, "zone", nil, "Zone to dump (repeatable, default: zones from config)")
	dumpCmd.Flags().StringVarP(&dumpOutputDir, "output-dir", "o", "", "Write zone files to this directory instead of stdout")
	// Panic is appropriate in init() since we cannot return errors and this indicates a programming error
	if err := dumpCmd.MarkFlagRequired("file"); err != nil {
		panic(err)
	}
}

func runDump(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	tracer := otel.Tracer("ultrasync")
	ctx, span := tracer.Start(ctx, "cmd.dump")
	defer span.End()

	span.SetAttributes(
		attribute.String("config.file", dumpConfigFile),
		attribute.String("output_dir", dumpOutputDir),
	)

	fs := afero.NewOsFs()
	cfg, err := loadConfig(ctx, fs, dumpConfigFile)
	if err != nil {
		span.RecordError(err)
		slog.Error("Failed to parse configuration", "error", err, "file", dumpConfigFile)
		return err
	}

	zones, err := selectZones(cfg, dumpZones)
	if err != nil {
		span.RecordError(err)
		return err
	}

	p, err := newProvider(ctx, cfg.Provider)
	if err != nil {
		span.RecordError(err)
		slog.Error("Failed to create provider", "error", err, "provider", cfg.Provider.Type)
		return err
	}

	out := cmd.OutOrStdout()
	for _, zone := range zones {
		records, exists, err := p.Populate(ctx, zone)
		if err != nil {
			span.RecordError(err)
			slog.Error("Failed to read zone", "error", err, "zone", zone)
			return fmt.Errorf("failed to read zone %s: %w", zone, err)
		}
		if !exists {
			slog.Warn("Zone has no records at the provider", "zone", zone)
		}

		if dumpOutputDir != "" {
			if err := zonefile.Save(ctx, fs, dumpOutputDir, zone, records); err != nil {
				span.RecordError(err)
				return err
			}
			slog.Info("Zone written", "zone", zone, "path", zonefile.Path(dumpOutputDir, zone), "records", len(records))
			continue
		}

		data, err := zonefile.Marshal(records)
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to render zone %s: %w", zone, err)
		}
		_, _ = fmt.Fprintf(out, "# %s\n%s", zone, data)
	}

	return nil
}
