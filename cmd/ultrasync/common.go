package main

import (
	"context"
	"fmt"

	"github.com/miekg/dns"
	"github.com/spf13/afero"

	"github.com/nebari-dev/ultrasync/pkg/config"
	"github.com/nebari-dev/ultrasync/pkg/dnsprovider"
)

// loadConfig parses the config file, accepting only registered provider types
func loadConfig(ctx context.Context, fs afero.Fs, path string) (*config.Config, error) {
	return config.ParseConfig(ctx, fs, path, dnsRegistry.List(ctx))
}

// newProvider logs in to the configured provider
func newProvider(ctx context.Context, pc config.ProviderConfig) (dnsprovider.Provider, error) {
	creds, err := config.LoadCredentials()
	if err != nil {
		return nil, err
	}
	return dnsRegistry.New(ctx, withUserAgent(pc), creds)
}

func withUserAgent(pc config.ProviderConfig) config.ProviderConfig {
	if pc.UserAgent == "" {
		pc.UserAgent = "ultrasync/" + version
	}
	return pc
}

// selectZones returns the zones named on the command line, or every zone
// in the config file when none are named.
func selectZones(cfg *config.Config, flagZones []string) ([]string, error) {
	if len(flagZones) == 0 {
		if len(cfg.Zones) == 0 {
			return nil, fmt.Errorf("no zones configured, list them under zones: or pass --zone")
		}
		return cfg.Zones, nil
	}

	zones := make([]string, 0, len(flagZones))
	for _, z := range flagZones {
		fqdn := dns.Fqdn(z)
		if _, ok := dns.IsDomainName(fqdn); !ok {
			return nil, fmt.Errorf("invalid zone name %q", z)
		}
		zones = append(zones, fqdn)
	}
	return zones, nil
}
