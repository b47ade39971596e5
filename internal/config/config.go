package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents daemon-level configuration. User-adjustable monitoring
// parameters live in the settings store, not here.
type Config struct {
	ListenAddr          string `yaml:"listen_addr"`
	DataDirectory       string `yaml:"data_directory"`
	ProbeEndpoint       string `yaml:"probe_endpoint"`
	ProbeTimeoutSeconds int    `yaml:"probe_timeout_seconds"`
	ExternalIPEndpoint  string `yaml:"external_ip_endpoint"`
	HistoryMaxEntries   int    `yaml:"history_max_entries"`
	LogLevel            string `yaml:"log_level"`
}

// DefaultConfig returns sensible defaults in case no configuration file is provided.
func DefaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return Config{
		ListenAddr:          "127.0.0.1:8080",
		DataDirectory:       filepath.Join(home, ".netwatch"),
		ProbeEndpoint:       "https://www.google.com/generate_204",
		ProbeTimeoutSeconds: 5,
		ExternalIPEndpoint:  "https://api.ipify.org",
		HistoryMaxEntries:   500,
		LogLevel:            "info",
	}
}

// Load reads configuration from a yaml file. Missing files fall back to defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultConfig().ListenAddr
	}
	if cfg.DataDirectory == "" {
		cfg.DataDirectory = DefaultConfig().DataDirectory
	}
	if cfg.ProbeEndpoint == "" {
		cfg.ProbeEndpoint = DefaultConfig().ProbeEndpoint
	}
	if !strings.HasPrefix(cfg.ProbeEndpoint, "http://") && !strings.HasPrefix(cfg.ProbeEndpoint, "https://") {
		return Config{}, fmt.Errorf("probe_endpoint must be an http(s) URL, got %q", cfg.ProbeEndpoint)
	}
	if cfg.ProbeTimeoutSeconds <= 0 {
		cfg.ProbeTimeoutSeconds = DefaultConfig().ProbeTimeoutSeconds
	}
	if cfg.ExternalIPEndpoint == "" {
		cfg.ExternalIPEndpoint = DefaultConfig().ExternalIPEndpoint
	}
	if cfg.HistoryMaxEntries < 0 {
		cfg.HistoryMaxEntries = 0
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}
