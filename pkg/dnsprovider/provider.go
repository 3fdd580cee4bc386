package dnsprovider

import (
	"context"

	"github.com/nebari-dev/ultrasync/pkg/config"
	"github.com/nebari-dev/ultrasync/pkg/record"
)

// Provider defines the interface that all DNS providers must implement.
// Implementations may cache vendor state and are not expected to be safe
// for concurrent use.
type Provider interface {
	// Name returns the provider instance name
	Name() string

	// ListZones returns the zones hosted by the provider
	ListZones(ctx context.Context) ([]string, error)

	// Populate returns the records currently in zone and whether the zone
	// has any records at the provider.
	Populate(ctx context.Context, zone string) ([]record.Record, bool, error)

	// Apply applies changes to zone in order, creating the zone if needed,
	// and returns the number of changes applied. On error the count covers
	// the changes applied before the failure.
	Apply(ctx context.Context, zone string, changes []record.Change) (int, error)
}

// Factory creates a logged-in Provider from configuration
type Factory func(ctx context.Context, cfg config.ProviderConfig, creds config.Credentials) (Provider, error)
