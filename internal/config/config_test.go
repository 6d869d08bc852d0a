package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gosolve/notation"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gosolve.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":5000", cfg.ListenAddr)
	assert.Equal(t, 5*time.Second, cfg.SolveTimeout)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	assert.Equal(t, notation.DecimalLegacy, cfg.Decimal())
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
listen_addr: "127.0.0.1:8080"
solve_timeout: 2s
decimal_mode: strict
cors_allowed_origins:
  - https://example.com
rate_limit:
  requests_per_second: 5
  burst: 10
log_format: json
http:
  idle_timeout: 2m
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, 2*time.Second, cfg.SolveTimeout)
	assert.Equal(t, notation.DecimalStrict, cfg.Decimal())
	assert.Equal(t, []string{"https://example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, RateLimit{RequestsPerSecond: 5, Burst: 10}, cfg.RateLimit)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 2*time.Minute, cfg.HTTP.IdleTimeout)

	// untouched keys keep their defaults
	assert.Equal(t, int64(DefaultMaxBodyBytes), cfg.MaxBodyBytes)
	assert.Equal(t, DefaultWriteTimeout, cfg.HTTP.WriteTimeout)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()

	_, err := Load(writeConfig(t, "listen_addr: [unterminated"))
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Parallel()

	_, err := Load(writeConfig(t, "decimal_mode: exact\n"))
	assert.ErrorIs(t, err, ErrInvalidDecimalMode)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"empty listen addr", func(c *Config) { c.ListenAddr = "" }, ErrNoListenAddr},
		{"zero timeout", func(c *Config) { c.SolveTimeout = 0 }, ErrInvalidSolveTimeout},
		{"zero body", func(c *Config) { c.MaxBodyBytes = 0 }, ErrInvalidMaxBodyBytes},
		{"bad decimal mode", func(c *Config) { c.DecimalMode = "round" }, ErrInvalidDecimalMode},
		{"negative rate", func(c *Config) { c.RateLimit.RequestsPerSecond = -1 }, ErrInvalidRateLimit},
		{"rate without burst", func(c *Config) { c.RateLimit.Burst = 0 }, ErrInvalidRateLimit},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, ErrInvalidLogLevel},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, ErrInvalidLogFormat},
		{"negative http timeout", func(c *Config) { c.HTTP.ReadTimeout = -time.Second }, ErrInvalidHTTPTimeout},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			c.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), c.want)
		})
	}
}

func TestValidate_RateLimitDisabled(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.RateLimit = RateLimit{}
	assert.NoError(t, cfg.Validate())
}

func TestFindConfigFile_ExplicitPath(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "log_level: debug\n")
	assert.Equal(t, path, FindConfigFile(path))
	assert.Empty(t, FindConfigFile(filepath.Join(t.TempDir(), "nope.yaml")))
}

func TestConfigDir(t *testing.T) {
	t.Parallel()

	assert.Equal(t, AppName, filepath.Base(ConfigDir()))
}
