package dnsprovider

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nebari-dev/ultrasync/pkg/config"
)

// Registry holds provider factories keyed by provider type
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new DNS provider registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register registers a provider factory for the given type
func (r *Registry) Register(ctx context.Context, providerType string, factory Factory) error {
	tracer := otel.Tracer("ultrasync")
	_, span := tracer.Start(ctx, "dnsregistry.Register")
	defer span.End()

	span.SetAttributes(attribute.String("dns_provider.type", providerType))

	if factory == nil {
		err := fmt.Errorf("DNS provider %q has a nil factory", providerType)
		span.RecordError(err)
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[providerType]; exists {
		err := fmt.Errorf("DNS provider %q is already registered", providerType)
		span.RecordError(err)
		return err
	}

	r.factories[providerType] = factory
	return nil
}

// New builds a provider instance for cfg.Type
func (r *Registry) New(ctx context.Context, cfg config.ProviderConfig, creds config.Credentials) (Provider, error) {
	tracer := otel.Tracer("ultrasync")
	ctx, span := tracer.Start(ctx, "dnsregistry.New")
	defer span.End()

	span.SetAttributes(
		attribute.String("dns_provider.type", cfg.Type),
		attribute.String("dns_provider.id", cfg.ID),
	)

	r.mu.RLock()
	factory, exists := r.factories[cfg.Type]
	r.mu.RUnlock()

	if !exists {
		err := fmt.Errorf("DNS provider %q is not registered", cfg.Type)
		span.RecordError(err)
		return nil, err
	}

	provider, err := factory(ctx, cfg, creds)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create DNS provider %q: %w", cfg.Type, err)
	}
	return provider, nil
}

// List returns all registered provider types, sorted
func (r *Registry) List(ctx context.Context) []string {
	tracer := otel.Tracer("ultrasync")
	_, span := tracer.Start(ctx, "dnsregistry.List")
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)

	span.SetAttributes(attribute.Int("dns_provider.count", len(names)))

	return names
}
