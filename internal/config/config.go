package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all configuration for the relay
type Config struct {
	// Server configuration
	HTTPPort int    `env:"BRIDGE_HTTP_PORT" envDefault:"3001"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Upstream Face API
	Upstream UpstreamConfig

	// WebSocket tunables
	WebSocket WebSocketConfig

	// Timeouts
	Timeouts TimeoutConfig
}

// UpstreamConfig holds the Face API connection configuration
type UpstreamConfig struct {
	BaseURL string        `env:"FACE_API_URL" envDefault:"http://localhost:8000"`
	Timeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"30s"`
}

// WebSocketConfig holds per-connection WebSocket settings
type WebSocketConfig struct {
	// AllowedOrigins restricts the upgrade handshake. Empty means allow all,
	// which is the demo default.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	// ReadLimit must fit a base64-encoded webcam frame.
	ReadLimit      int64         `env:"WS_READ_LIMIT" envDefault:"10485760"`
	SendBufferSize int           `env:"WS_SEND_BUFFER" envDefault:"32"`
	PongWait       time.Duration `env:"WS_PONG_WAIT" envDefault:"60s"`
}

// TimeoutConfig holds various timeout configurations
type TimeoutConfig struct {
	ShutdownTimeout time.Duration `env:"TIMEOUT_SHUTDOWN" envDefault:"10s"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream base URL is required")
	}
	u, err := url.Parse(c.Upstream.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid upstream base URL: %s", c.Upstream.BaseURL)
	}

	if c.WebSocket.ReadLimit < 1024 {
		return fmt.Errorf("WebSocket read limit too small: %d", c.WebSocket.ReadLimit)
	}
	if c.WebSocket.SendBufferSize < 1 {
		return fmt.Errorf("WebSocket send buffer must be at least 1")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// UpstreamBaseURL returns the upstream base URL without a trailing slash
func (c *Config) UpstreamBaseURL() string {
	return strings.TrimRight(c.Upstream.BaseURL, "/")
}
