package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds a query when an endpoint sets no timeout.
const DefaultTimeout = 60 * time.Second

// Config represents the application configuration.
type Config struct {
	Endpoints   []Endpoint  `mapstructure:"endpoints" yaml:"endpoints"`
	Preferences Preferences `mapstructure:"preferences" yaml:"preferences"`

	// EnvEndpoint is VIZIER_ENDPOINT; it is never saved.
	EnvEndpoint string `mapstructure:"env_endpoint" yaml:"-"`
}

// Endpoint represents a saved TAP service profile.
type Endpoint struct {
	Name    string `mapstructure:"name" yaml:"name"`
	URL     string `mapstructure:"url" yaml:"url"`
	Timeout string `mapstructure:"timeout" yaml:"timeout,omitempty"`
}

// Preferences holds user preferences.
type Preferences struct {
	Theme           string `mapstructure:"theme" yaml:"theme"`
	DefaultEndpoint string `mapstructure:"default_endpoint" yaml:"default_endpoint"`
	RowLimit        int    `mapstructure:"row_limit" yaml:"row_limit"`
	LogLevel        string `mapstructure:"log_level" yaml:"log_level"`
}

// RequestTimeout returns the endpoint's query timeout, or DefaultTimeout
// when it is unset or unparsable.
func (e Endpoint) RequestTimeout() time.Duration {
	if e.Timeout == "" {
		return DefaultTimeout
	}
	d, err := time.ParseDuration(e.Timeout)
	if err != nil || d <= 0 {
		return DefaultTimeout
	}
	return d
}

// DisplayString returns a human-readable summary of the endpoint.
func (e Endpoint) DisplayString() string {
	u, err := url.Parse(e.URL)
	if err != nil || u.Host == "" {
		return e.URL
	}
	return u.Host + u.Path
}

// ParseEndpoint validates a TAP sync URL and turns it into an Endpoint
// named after its host.
func ParseEndpoint(raw string) (Endpoint, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return Endpoint{}, fmt.Errorf("invalid endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Endpoint{}, fmt.Errorf("invalid endpoint: scheme must be http or https, got %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return Endpoint{}, fmt.Errorf("invalid endpoint: missing host")
	}

	return Endpoint{
		Name: "tap-" + u.Hostname(),
		URL:  raw,
	}, nil
}

// HasEndpoint checks if an endpoint with the given name already exists.
func (cfg *Config) HasEndpoint(name string) bool {
	return cfg.FindEndpoint(name) != nil
}

// FindEndpoint returns the endpoint with the given name, or nil.
func (cfg *Config) FindEndpoint(name string) *Endpoint {
	for i := range cfg.Endpoints {
		if cfg.Endpoints[i].Name == name {
			return &cfg.Endpoints[i]
		}
	}
	return nil
}

// AddEndpoint appends an endpoint if none with its name exists yet.
func (cfg *Config) AddEndpoint(ep Endpoint) {
	if !cfg.HasEndpoint(ep.Name) {
		cfg.Endpoints = append(cfg.Endpoints, ep)
	}
}
