package model

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// BackendConfig holds the connection settings for the mail backend API.
type BackendConfig struct {
	// BaseURL is the root URL of the backend service.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec is the per-request HTTP timeout in seconds.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// FetchConfig controls folder fetch behavior.
type FetchConfig struct {
	// Limit is the default batch size requested from the backend.
	Limit int `mapstructure:"limit" yaml:"limit"`

	// WindowDays is the date window applied to generic folder queries.
	WindowDays int `mapstructure:"window_days" yaml:"window_days"`
}

// EnrichConfig controls the sender profile polling loop.
type EnrichConfig struct {
	// PollIntervalSec is how often to re-check an initiated search.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`

	// PollDeadlineSec is how long to keep polling before giving up.
	PollDeadlineSec int `mapstructure:"poll_deadline_sec" yaml:"poll_deadline_sec"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Backend BackendConfig `mapstructure:"backend" yaml:"backend"`
	Fetch   FetchConfig   `mapstructure:"fetch" yaml:"fetch"`
	Enrich  EnrichConfig  `mapstructure:"enrich" yaml:"enrich"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// PollInterval returns the enrichment poll interval as a duration.
func (c *AppConfig) PollInterval() time.Duration {
	return time.Duration(c.Enrich.PollIntervalSec) * time.Second
}

// PollDeadline returns the enrichment poll deadline as a duration.
func (c *AppConfig) PollDeadline() time.Duration {
	return time.Duration(c.Enrich.PollDeadlineSec) * time.Second
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/mailpilot/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "mailpilot", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Backend: BackendConfig{
			BaseURL:    "http://localhost:8002",
			TimeoutSec: 30,
		},
		Fetch: FetchConfig{
			Limit:      50,
			WindowDays: 7,
		},
		Enrich: EnrichConfig{
			PollIntervalSec: 3,
			PollDeadlineSec: 30,
		},
		Display: DisplayConfig{
			Theme: "default",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("backend.base_url", "http://localhost:8002")
	v.SetDefault("backend.timeout_sec", 30)
	v.SetDefault("fetch.limit", 50)
	v.SetDefault("fetch.window_days", 7)
	v.SetDefault("enrich.poll_interval_sec", 3)
	v.SetDefault("enrich.poll_deadline_sec", 30)
	v.SetDefault("display.theme", "default")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("backend", cfg.Backend)
	v.Set("fetch", cfg.Fetch)
	v.Set("enrich", cfg.Enrich)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
