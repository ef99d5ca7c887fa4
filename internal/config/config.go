package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
)

const (
	MinPollingInterval = 1
	MaxPollingInterval = 3600
	MinMaxPolls        = 1
	MaxMaxPolls        = 10000
	MinImportWorkers   = 1
	MaxImportWorkers   = 32

	DefaultService = "https://api2.transloadit.com"
)

// Config represents the main application configuration
type Config struct {
	Service       string      `toml:"service"`
	Loglevel      string      `toml:"loglevel"`
	Output        string      `toml:"output"`
	BindAddress   string      `toml:"bind_address"`
	Port          int         `toml:"port"`
	ImportWorkers int         `toml:"import_workers"`
	ImportRate    float64     `toml:"import_rate"`
	TemplateID    string      `toml:"template_id"`
	NotifyURL     string      `toml:"notify_url"`
	Auth          AuthConfig  `toml:"auth"`
	Watch         WatchConfig `toml:"watch"`
}

// AuthConfig holds the account key placed into assembly params
type AuthConfig struct {
	Key string `toml:"key"`
}

// WatchConfig controls status polling
type WatchConfig struct {
	PollingInterval int `toml:"polling_interval"`
	MaxPolls        int `toml:"max_polls"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		Service:       DefaultService,
		Loglevel:      "info",
		Output:        "json",
		BindAddress:   "0.0.0.0",
		Port:          8090,
		ImportWorkers: 4,
		Watch: WatchConfig{
			PollingInterval: 2,
			MaxPolls:        300,
		},
	}
}

// DefaultConfigPath returns the default configuration file path
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "gotransloadit", "config.toml"), nil
}

// Load loads configuration from a TOML file
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault behaves like Load but returns the defaults when the file does not exist
func LoadOrDefault(configPath string) (*Config, error) {
	cfg, err := Load(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Service == "" {
		return fmt.Errorf("service is required")
	}
	if err := validateHTTPURL(c.Service); err != nil {
		return fmt.Errorf("service is invalid: %v", err)
	}
	if c.NotifyURL != "" {
		if err := validateHTTPURL(c.NotifyURL); err != nil {
			return fmt.Errorf("notify_url is invalid: %v", err)
		}
	}

	if _, err := logrus.ParseLevel(c.Loglevel); err != nil {
		return fmt.Errorf("loglevel must be one of: panic, fatal, error, warn, info, debug, trace")
	}
	if c.Output != "json" && c.Output != "yaml" {
		return fmt.Errorf("output must be one of: json, yaml")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}

	if c.ImportWorkers < MinImportWorkers || c.ImportWorkers > MaxImportWorkers {
		return fmt.Errorf("import_workers must be between %d and %d", MinImportWorkers, MaxImportWorkers)
	}
	if c.ImportRate < 0 {
		return fmt.Errorf("import_rate cannot be negative")
	}
	if c.Watch.PollingInterval < MinPollingInterval || c.Watch.PollingInterval > MaxPollingInterval {
		return fmt.Errorf("watch.polling_interval must be between %d and %d seconds", MinPollingInterval, MaxPollingInterval)
	}
	if c.Watch.MaxPolls < MinMaxPolls || c.Watch.MaxPolls > MaxMaxPolls {
		return fmt.Errorf("watch.max_polls must be between %d and %d", MinMaxPolls, MaxMaxPolls)
	}

	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
