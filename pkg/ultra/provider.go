package ultra

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nebari-dev/ultrasync/pkg/config"
	"github.com/nebari-dev/ultrasync/pkg/dnsprovider"
)

const (
	// TypeName is the provider type used in configuration files.
	TypeName = "ultra"

	tracerName = "ultrasync"

	zoneRequestLimit  = 1000
	rrsetRequestLimit = 1000
)

// Config configures a Provider.
type Config struct {
	// ID names the provider instance in logs.
	ID       string
	Account  string
	Username string
	Password string

	// Optional overrides.
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// Provider reads and writes UltraDNS zones.
//
// A Provider caches the zone list for its lifetime and the rrsets of each
// zone until the zone is changed through Apply. It is not safe for
// concurrent use; give each worker its own Provider.
type Provider struct {
	id      string
	account string
	client  *Client
	logger  *slog.Logger

	// zones is nil until first loaded.
	zones       []string
	zoneRecords map[string][]RRSet
}

var _ dnsprovider.Provider = (*Provider)(nil)

// New creates a Provider and logs in once with the configured credentials.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "ultra.New")
	defer span.End()

	if cfg.ID == "" {
		cfg.ID = TypeName
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("provider", cfg.ID)

	span.SetAttributes(
		attribute.String("provider.id", cfg.ID),
		attribute.String("provider.account", cfg.Account),
	)
	logger.Debug("creating provider", "account", cfg.Account, "username", cfg.Username)

	opts := []ClientOption{WithLogger(logger)}
	if cfg.BaseURL != "" {
		opts = append(opts, WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, WithTimeout(cfg.Timeout))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, WithUserAgent(cfg.UserAgent))
	}
	if cfg.Transport != nil {
		opts = append(opts, WithTransport(cfg.Transport))
	}

	client := NewClient(opts...)
	if err := client.Login(ctx, cfg.Username, cfg.Password); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to log in to UltraDNS: %w", err)
	}

	return &Provider{
		id:          cfg.ID,
		account:     cfg.Account,
		client:      client,
		logger:      logger,
		zoneRecords: make(map[string][]RRSet),
	}, nil
}

// Factory builds a Provider from file configuration. It is registered with
// the dnsprovider registry under TypeName.
func Factory(ctx context.Context, pc config.ProviderConfig, creds config.Credentials) (dnsprovider.Provider, error) {
	timeout, err := pc.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	return New(ctx, Config{
		ID:        pc.ID,
		Account:   pc.Account,
		Username:  creds.Username,
		Password:  creds.Password,
		BaseURL:   pc.BaseURL,
		Timeout:   timeout,
		UserAgent: pc.UserAgent,
	})
}

// Name returns the provider instance ID.
func (p *Provider) Name() string {
	return p.id
}
