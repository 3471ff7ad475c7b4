package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3001, cfg.HTTPPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "http://localhost:8000", cfg.Upstream.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Upstream.Timeout)
	assert.Empty(t, cfg.WebSocket.AllowedOrigins)
	assert.Equal(t, int64(10485760), cfg.WebSocket.ReadLimit)
	assert.Equal(t, 10*time.Second, cfg.Timeouts.ShutdownTimeout)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("BRIDGE_HTTP_PORT", "4000")
	t.Setenv("FACE_API_URL", "http://face-api:9000/")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000,https://demo.example.com")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.HTTPPort)
	assert.Equal(t, ":4000", cfg.GetHTTPAddr())
	assert.Equal(t, "http://face-api:9000", cfg.UpstreamBaseURL())
	assert.Equal(t, []string{"http://localhost:3000", "https://demo.example.com"}, cfg.WebSocket.AllowedOrigins)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{
			HTTPPort: 3001,
			LogLevel: "info",
		}
		cfg.Upstream.BaseURL = "http://localhost:8000"
		cfg.WebSocket.ReadLimit = 1 << 20
		cfg.WebSocket.SendBufferSize = 32
		return cfg
	}

	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("rejects out-of-range port", func(t *testing.T) {
		cfg := valid()
		cfg.HTTPPort = 0
		assert.ErrorContains(t, cfg.Validate(), "invalid HTTP port")
	})

	t.Run("rejects missing upstream URL", func(t *testing.T) {
		cfg := valid()
		cfg.Upstream.BaseURL = ""
		assert.ErrorContains(t, cfg.Validate(), "upstream base URL is required")
	})

	t.Run("rejects unparsable upstream URL", func(t *testing.T) {
		cfg := valid()
		cfg.Upstream.BaseURL = "not a url"
		assert.ErrorContains(t, cfg.Validate(), "invalid upstream base URL")
	})

	t.Run("rejects tiny read limit", func(t *testing.T) {
		cfg := valid()
		cfg.WebSocket.ReadLimit = 16
		assert.ErrorContains(t, cfg.Validate(), "read limit too small")
	})

	t.Run("rejects unknown log level", func(t *testing.T) {
		cfg := valid()
		cfg.LogLevel = "verbose"
		assert.ErrorContains(t, cfg.Validate(), "invalid log level")
	})
}
