package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var (
	zonesConfigFile string

	zonesCmd = &cobra.Command{
		Use:   "zones",
		Short: "List primary zones hosted by the provider",
		RunE:  runZones,
	}
)

func init() {
	zonesCmd.Flags().StringVarP(&zonesConfigFile, "file", "f", "", "Path to ultrasync.yaml file (required)")
	// Panic is appropriate in init() since we cannot return errors and this indicates a programming error
	if err := zonesCmd.MarkFlagRequired("file"); err != nil {
		panic(err)
	}
}

func runZones(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	tracer := otel.Tracer("ultrasync")
	ctx, span := tracer.Start(ctx, "cmd.zones")
	defer span.End()

	span.SetAttributes(attribute.String("config.file", zonesConfigFile))

	cfg, err := loadConfig(ctx, afero.NewOsFs(), zonesConfigFile)
	if err != nil {
		span.RecordError(err)
		slog.Error("Failed to parse configuration", "error", err, "file", zonesConfigFile)
		return err
	}

	p, err := newProvider(ctx, cfg.Provider)
	if err != nil {
		span.RecordError(err)
		slog.Error("Failed to create provider", "error", err, "provider", cfg.Provider.Type)
		return err
	}

	zones, err := p.ListZones(ctx)
	if err != nil {
		span.RecordError(err)
		slog.Error("Failed to list zones", "error", err, "provider", p.Name())
		return err
	}

	span.SetAttributes(attribute.Int("zone_count", len(zones)))
	for _, zone := range zones {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), zone)
	}
	return nil
}
