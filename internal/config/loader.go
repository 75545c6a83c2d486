package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mclrc/vizier/tap"
	"github.com/spf13/viper"
)

const (
	configDir  = ".vizier"
	configFile = "config"
	configType = "yaml"
	logFile    = "vizier.log"
)

// Load reads the configuration from ~/.vizier/config.yaml. A missing file
// yields the defaults. VIZIER_LOG_LEVEL and VIZIER_ENDPOINT override the
// file.
func Load() (*Config, error) {
	dir, err := configDirPath()
	if err != nil {
		return nil, fmt.Errorf("config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigName(configFile)
	v.SetConfigType(configType)
	v.AddConfigPath(dir)

	// Defaults
	v.SetDefault("preferences.theme", "default")
	v.SetDefault("preferences.row_limit", 100)
	v.SetDefault("preferences.log_level", "warn")

	_ = v.BindEnv("preferences.log_level", "VIZIER_LOG_LEVEL")
	_ = v.BindEnv("env_endpoint", "VIZIER_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to ~/.vizier/config.yaml.
func Save(cfg *Config) error {
	dir, err := configDirPath()
	if err != nil {
		return fmt.Errorf("config dir: %w", err)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType(configType)
	v.Set("endpoints", cfg.Endpoints)
	v.Set("preferences", cfg.Preferences)

	path := filepath.Join(dir, configFile+"."+configType)
	return v.WriteConfigAs(path)
}

// SaveEndpoint adds ep to the configuration, making it the default when
// there is none yet, and writes the file.
func SaveEndpoint(cfg *Config, ep Endpoint) error {
	cfg.AddEndpoint(ep)
	if cfg.Preferences.DefaultEndpoint == "" {
		cfg.Preferences.DefaultEndpoint = ep.Name
	}
	return Save(cfg)
}

// DefaultEndpoint returns the default endpoint from config, or the first one.
func DefaultEndpoint(cfg *Config) *Endpoint {
	if len(cfg.Endpoints) == 0 {
		return nil
	}

	if cfg.Preferences.DefaultEndpoint != "" {
		if ep := cfg.FindEndpoint(cfg.Preferences.DefaultEndpoint); ep != nil {
			return ep
		}
	}

	return &cfg.Endpoints[0]
}

// ResolveEndpoint picks the endpoint URL to use: an explicit value first,
// then VIZIER_ENDPOINT, then the configured default, then VizieR. An
// explicit value that names a saved endpoint resolves to its URL.
func ResolveEndpoint(cfg *Config, explicit string) string {
	for _, candidate := range []string{explicit, cfg.EnvEndpoint} {
		if candidate == "" {
			continue
		}
		if ep := cfg.FindEndpoint(candidate); ep != nil {
			return ep.URL
		}
		return candidate
	}
	if ep := DefaultEndpoint(cfg); ep != nil {
		return ep.URL
	}
	return tap.DefaultEndpoint
}

// TimeoutFor returns the timeout of the saved endpoint with the given URL,
// or DefaultTimeout.
func TimeoutFor(cfg *Config, endpointURL string) time.Duration {
	for _, ep := range cfg.Endpoints {
		if ep.URL == endpointURL {
			return ep.RequestTimeout()
		}
	}
	return DefaultTimeout
}

// LogPath returns the path of the TUI log file.
func LogPath() (string, error) {
	dir, err := configDirPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, logFile), nil
}

func configDirPath() (string, error) {
	if dir := os.Getenv("VIZIER_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDir), nil
}
