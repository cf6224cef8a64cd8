// Package config loads and validates the service configuration with
// layered precedence: environment > config file > built-in defaults.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the service.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Data    DataConfig    `koanf:"data"`
	Media   MediaConfig   `koanf:"media"`
	Blob    BlobConfig    `koanf:"blob"`
	API     APIConfig     `koanf:"api"`
	Metrics MetricsConfig `koanf:"metrics"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	ListenAddr      string        `koanf:"listen_addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DataConfig configures durable state locations.
type DataConfig struct {
	// Dir holds metadata.json and history.db.
	Dir string `koanf:"dir"`
}

// MediaConfig configures the local asset backend.
type MediaConfig struct {
	// Dir is probed for <id>.mp4/.webm/.mov in that order.
	Dir string `koanf:"dir"`
}

// BlobConfig configures the optional remote object-store backend.
// When enabled, the blob backend is tried after the local directory.
type BlobConfig struct {
	Enabled bool   `koanf:"enabled"`
	BaseURL string `koanf:"base_url"`
	Token   string `koanf:"token"`
	// RedirectSigned redirects full (non-range) stream requests to a
	// short-lived signed URL instead of proxying the bytes.
	RedirectSigned bool          `koanf:"redirect_signed"`
	SignedURLTTL   time.Duration `koanf:"signed_url_ttl"`
	Timeout        time.Duration `koanf:"timeout"`
}

// APIConfig tunes request handling.
type APIConfig struct {
	DefaultRecommendations int `koanf:"default_recommendations"`
	MaxRecommendations     int `koanf:"max_recommendations"`
	RateLimitRequests      int `koanf:"rate_limit_requests"`
	// RateLimitWindow is the sliding window for the request limit.
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// MetricsConfig configures the Prometheus listener.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level string `koanf:"level"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:      ":8000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    0, // streaming responses must not be cut off
			ShutdownTimeout: 10 * time.Second,
		},
		Data: DataConfig{
			Dir: "/var/lib/tubelet",
		},
		Media: MediaConfig{
			Dir: "/var/lib/tubelet/videos",
		},
		Blob: BlobConfig{
			Enabled:        false,
			BaseURL:        "",
			Token:          "",
			RedirectSigned: false,
			SignedURLTTL:   time.Hour,
			Timeout:        10 * time.Second,
		},
		API: APIConfig{
			DefaultRecommendations: 3,
			MaxRecommendations:     20,
			RateLimitRequests:      600,
			RateLimitWindow:        time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks invariants that would otherwise surface as confusing
// runtime failures.
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr must not be empty")
	}
	if c.Data.Dir == "" {
		return fmt.Errorf("data.dir must not be empty")
	}
	if c.Media.Dir == "" {
		return fmt.Errorf("media.dir must not be empty")
	}
	if c.Blob.Enabled && c.Blob.BaseURL == "" {
		return fmt.Errorf("blob.base_url is required when blob.enabled is true")
	}
	if c.API.DefaultRecommendations < 1 {
		return fmt.Errorf("api.default_recommendations must be >= 1")
	}
	if c.API.MaxRecommendations < c.API.DefaultRecommendations {
		return fmt.Errorf("api.max_recommendations must be >= api.default_recommendations")
	}
	if c.API.RateLimitRequests < 1 {
		return fmt.Errorf("api.rate_limit_requests must be >= 1")
	}
	return nil
}
