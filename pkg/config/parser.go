package config

import (
	"context"
	"fmt"
	"slices"

	"github.com/goccy/go-yaml"
	"github.com/miekg/dns"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// ParseConfig parses an ultrasync.yaml file and returns the configuration.
// Only the provider type and account are required. validTypes lists the
// provider types the caller can build; an empty list accepts any type.
func ParseConfig(ctx context.Context, fs afero.Fs, filePath string, validTypes []string) (*Config, error) {
	tracer := otel.Tracer("ultrasync")
	_, span := tracer.Start(ctx, "config.ParseConfig")
	defer span.End()

	span.SetAttributes(attribute.String("config.file", filePath))

	data, err := afero.ReadFile(fs, filePath)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to parse config file %s: %w", filePath, err)
	}

	if err := config.Validate(validTypes); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("invalid config file %s: %w", filePath, err)
	}

	if config.Provider.ID == "" {
		config.Provider.ID = config.Provider.Type
	}
	if config.ZonesDir == "" {
		config.ZonesDir = DefaultZonesDir
	}

	span.SetAttributes(
		attribute.String("config.provider", config.Provider.Type),
		attribute.Int("config.zone_count", len(config.Zones)),
	)

	return &config, nil
}

// Validate checks required fields and zone names
func (c *Config) Validate(validTypes []string) error {
	if c.Provider.Type == "" {
		return fmt.Errorf("provider.type field is required in config")
	}
	if len(validTypes) > 0 && !slices.Contains(validTypes, c.Provider.Type) {
		return fmt.Errorf("invalid provider type %q, must be one of: %v", c.Provider.Type, validTypes)
	}
	if c.Provider.Account == "" {
		return fmt.Errorf("provider.account field is required in config")
	}
	if _, err := c.Provider.TimeoutDuration(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Zones))
	for _, zone := range c.Zones {
		if !dns.IsFqdn(zone) {
			return fmt.Errorf("zone %q must be fully qualified (end with a dot)", zone)
		}
		if _, ok := dns.IsDomainName(zone); !ok {
			return fmt.Errorf("zone %q is not a valid domain name", zone)
		}
		if seen[zone] {
			return fmt.Errorf("zone %q is listed more than once", zone)
		}
		seen[zone] = true
	}
	return nil
}
