package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where a config file is searched, in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/tubelet/config.yaml",
	"/etc/tubelet/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "TUBELET_CONFIG"

// Load builds the configuration from three layers:
//  1. built-in defaults
//  2. an optional YAML config file
//  3. environment variables (highest priority)
func Load(explicitPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	configPath := explicitPath
	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration invalid: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envMappings maps TUBELET_* environment variables to config paths.
// Unknown variables are ignored so stray environment entries cannot
// pollute the configuration.
var envMappings = map[string]string{
	"tubelet_listen":           "server.listen_addr",
	"tubelet_read_timeout":     "server.read_timeout",
	"tubelet_write_timeout":    "server.write_timeout",
	"tubelet_shutdown_timeout": "server.shutdown_timeout",

	"tubelet_data_dir":  "data.dir",
	"tubelet_media_dir": "media.dir",

	"tubelet_blob_enabled":         "blob.enabled",
	"tubelet_blob_base_url":        "blob.base_url",
	"tubelet_blob_token":           "blob.token",
	"tubelet_blob_redirect_signed": "blob.redirect_signed",
	"tubelet_blob_signed_url_ttl":  "blob.signed_url_ttl",
	"tubelet_blob_timeout":         "blob.timeout",

	"tubelet_default_recommendations": "api.default_recommendations",
	"tubelet_max_recommendations":     "api.max_recommendations",
	"tubelet_rate_limit_requests":     "api.rate_limit_requests",
	"tubelet_rate_limit_window":       "api.rate_limit_window",

	"tubelet_metrics_enabled": "metrics.enabled",
	"tubelet_metrics_addr":    "metrics.addr",

	"tubelet_log_level": "logging.level",
}

func envTransform(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
