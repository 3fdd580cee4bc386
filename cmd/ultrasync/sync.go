package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/nebari-dev/ultrasync/pkg/config"
	"github.com/nebari-dev/ultrasync/pkg/dnsprovider"
	"github.com/nebari-dev/ultrasync/pkg/plan"
	"github.com/nebari-dev/ultrasync/pkg/status"
	"github.com/nebari-dev/ultrasync/pkg/zonefile"
)

var (
	syncConfigFile string
	syncZones      []string
	syncDryRun     bool
	syncParallel   int

	syncCmd = &cobra.Command{
		Use:   "sync",
		Short: "Apply zone files to the provider",
		Long: `Load the desired state of each zone from its zone file, compare it with
the records hosted by the provider and apply the difference. Zones missing
at the provider are created.

Zones are synchronized in parallel; each worker holds its own provider
session. Use --dry-run to print the plan without making changes.`,
		RunE: runSync,
	}
)

func init() {
	syncCmd.Flags().StringVarP(&syncConfigFile, "file", "f", "", "Path to ultrasync.yaml file (required)")
	syncCmd.Flags().StringSliceVar(&syncZones, "zone", nil, "Zone to sync (repeatable, default: zones from config)")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Show what would change without making changes")
	syncCmd.Flags().IntVar(&syncParallel, "parallel", 4, "Number of zones to sync concurrently")
	// Panic is appropriate in init() since we cannot return errors and this indicates a programming error
	if err := syncCmd.MarkFlagRequired("file"); err != nil {
		panic(err)
	}
}

// providerFactory creates one provider session per worker
type providerFactory func(ctx context.Context) (dnsprovider.Provider, error)

// zoneResult is the outcome of one zone sync
type zoneResult struct {
	Zone    string
	Applied int

	// Empty is set when the provider had no records, including zones that
	// do not exist there yet
	Empty   bool
	Changes []string
	Summary plan.Summary
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	tracer := otel.Tracer("ultrasync")
	ctx, span := tracer.Start(ctx, "cmd.sync")
	defer span.End()

	span.SetAttributes(
		attribute.String("config.file", syncConfigFile),
		attribute.Bool("dry_run", syncDryRun),
		attribute.Int("parallel", syncParallel),
	)

	if syncDryRun {
		slog.Info("Starting sync (dry-run)", "config_file", syncConfigFile)
	} else {
		slog.Info("Starting sync", "config_file", syncConfigFile)
	}

	// Setup status handler for progress updates
	ctx, cleanupStatus := status.StartHandler(ctx, statusLogHandler(slog.Default()))
	defer cleanupStatus()

	// Handle context cancellation (from signal interrupt)
	defer func() {
		if ctx.Err() == context.Canceled {
			slog.Warn("Sync interrupted by user")
		}
	}()

	fs := afero.NewOsFs()
	cfg, err := loadConfig(ctx, fs, syncConfigFile)
	if err != nil {
		span.RecordError(err)
		slog.Error("Failed to parse configuration", "error", err, "file", syncConfigFile)
		return err
	}

	zones, err := selectZones(cfg, syncZones)
	if err != nil {
		span.RecordError(err)
		return err
	}

	creds, err := config.LoadCredentials()
	if err != nil {
		span.RecordError(err)
		return err
	}
	pc := withUserAgent(cfg.Provider)
	factory := func(ctx context.Context) (dnsprovider.Provider, error) {
		return dnsRegistry.New(ctx, pc, creds)
	}

	results, err := syncAll(ctx, fs, factory, cfg.ZonesDir, zones, syncParallel, syncDryRun)
	printResults(cmd.OutOrStdout(), results, syncDryRun)
	if err != nil {
		span.RecordError(err)
		slog.Error("Sync failed", "error", err)
		return err
	}

	slog.Info("Sync completed successfully", "zones", len(zones))
	return nil
}

// syncAll synchronizes zones with at most parallel workers. Each worker
// creates its own provider on first use. The first error cancels the
// remaining work. Results are returned in zone order; zones that were not
// reached have a nil entry.
func syncAll(ctx context.Context, fs afero.Fs, connect providerFactory, zonesDir string, zones []string, parallel int, dryRun bool) ([]*zoneResult, error) {
	tracer := otel.Tracer("ultrasync")
	ctx, span := tracer.Start(ctx, "sync.syncAll")
	defer span.End()

	workers := min(max(parallel, 1), len(zones))
	span.SetAttributes(
		attribute.Int("zone_count", len(zones)),
		attribute.Int("workers", workers),
	)

	results := make([]*zoneResult, len(zones))
	work := make(chan int)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(work)
		for i := range zones {
			select {
			case work <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for range workers {
		g.Go(func() error {
			var p dnsprovider.Provider
			for i := range work {
				if p == nil {
					var err error
					p, err = connect(gctx)
					if err != nil {
						return err
					}
				}

				res, err := syncZone(gctx, fs, p, zonesDir, zones[i], dryRun)
				if err != nil {
					return fmt.Errorf("failed to sync zone %s: %w", zones[i], err)
				}
				results[i] = res
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return results, err
	}
	return results, nil
}

// syncZone plans and, unless dryRun, applies the changes for one zone
func syncZone(ctx context.Context, fs afero.Fs, p dnsprovider.Provider, zonesDir, zone string, dryRun bool) (*zoneResult, error) {
	tracer := otel.Tracer("ultrasync")
	ctx, span := tracer.Start(ctx, "sync.syncZone")
	defer span.End()

	span.SetAttributes(
		attribute.String("zone", zone),
		attribute.Bool("dry_run", dryRun),
	)

	desired, err := zonefile.Load(ctx, fs, zonesDir, zone)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	existing, exists, err := p.Populate(ctx, zone)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	changes := plan.Compute(desired.Records, existing)
	res := &zoneResult{
		Zone:    zone,
		Empty:   !exists,
		Summary: plan.Summarize(changes),
	}
	for _, c := range changes {
		res.Changes = append(res.Changes, fmt.Sprintf("%s %s", c.Kind(), c.Record()))
	}

	span.SetAttributes(attribute.Int("change_count", len(changes)))
	slog.Info("Zone planned", "zone", zone, "exists", exists, "changes", res.Summary.String())

	if dryRun || len(changes) == 0 {
		return res, nil
	}

	applied, err := p.Apply(ctx, zone, changes)
	if err != nil {
		span.RecordError(err)
		slog.Error("Zone partially applied", "zone", zone, "applied", applied, "changes", len(changes))
		status.Errorf(ctx, "Applied %d of %d changes to %s before failing", applied, len(changes), zone)
		return nil, err
	}
	res.Applied = applied
	status.Successf(ctx, "Applied %d changes to %s", applied, zone)

	return res, nil
}

func printResults(w io.Writer, results []*zoneResult, dryRun bool) {
	for _, res := range results {
		if res == nil {
			continue
		}
		state := ""
		if res.Empty {
			state = " (new or empty zone)"
		}
		_, _ = fmt.Fprintf(w, "%s%s: %s\n", res.Zone, state, res.Summary)
		if dryRun {
			for _, c := range res.Changes {
				_, _ = fmt.Fprintf(w, "  %s\n", c)
			}
		}
	}
}
