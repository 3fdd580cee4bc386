package config

import (
	"fmt"
	"os"
	"time"
)

const (
	// EnvUsername and EnvPassword name the environment variables holding
	// the UltraDNS API credentials.
	EnvUsername = "ULTRA_USERNAME"
	EnvPassword = "ULTRA_PASSWORD"

	// DefaultZonesDir is used when zones_dir is not set
	DefaultZonesDir = "./zones"
)

// Config represents the parsed ultrasync.yaml structure
type Config struct {
	Provider ProviderConfig `yaml:"provider"`
	ZonesDir string         `yaml:"zones_dir,omitempty"`
	Zones    []string       `yaml:"zones,omitempty"`

	// Using map to capture additional fields for lenient parsing
	AdditionalFields map[string]any `yaml:",inline"`
}

// ProviderConfig selects and configures the DNS provider
type ProviderConfig struct {
	// ID names the provider instance in logs, defaults to Type
	ID   string `yaml:"id,omitempty"`
	Type string `yaml:"type"`

	Account   string `yaml:"account"`
	BaseURL   string `yaml:"base_url,omitempty"`
	Timeout   string `yaml:"timeout,omitempty"` // Go duration, e.g. "5s"
	UserAgent string `yaml:"user_agent,omitempty"`

	AdditionalFields map[string]any `yaml:",inline"`
}

// TimeoutDuration parses Timeout. An empty Timeout yields zero, meaning the
// provider default.
func (p ProviderConfig) TimeoutDuration() (time.Duration, error) {
	if p.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(p.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid provider timeout %q: %w", p.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid provider timeout %q: must be positive", p.Timeout)
	}
	return d, nil
}

// Credentials holds the API login
type Credentials struct {
	Username string
	Password string
}

// LoadCredentials reads credentials from the environment
func LoadCredentials() (Credentials, error) {
	creds := Credentials{
		Username: os.Getenv(EnvUsername),
		Password: os.Getenv(EnvPassword),
	}
	if creds.Username == "" || creds.Password == "" {
		return Credentials{}, fmt.Errorf("%s and %s environment variables are required", EnvUsername, EnvPassword)
	}
	return creds, nil
}
