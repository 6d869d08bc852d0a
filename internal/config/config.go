package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"

	"github.com/njchilds90/gosolve/notation"
)

// Default configuration values.
const (
	// DefaultListenAddr keeps the port the service has always listened on.
	DefaultListenAddr = ":5000"

	// DefaultSolveTimeout bounds one solve. The bundled engine finishes
	// typical input in microseconds; the bound is for pathological input.
	DefaultSolveTimeout = 5 * time.Second

	// DefaultMaxBodyBytes limits request bodies to 1MB.
	DefaultMaxBodyBytes = 1 << 20

	// DefaultRequestsPerSecond and DefaultBurst configure the per-client
	// token bucket.
	DefaultRequestsPerSecond = 20
	DefaultBurst             = 40

	DefaultReadTimeout       = 15 * time.Second
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultWriteTimeout      = 15 * time.Second
	DefaultIdleTimeout       = 60 * time.Second

	// AppName is the application name used for XDG directory paths.
	AppName = "gosolve"
)

// Config holds every option of the gosolve service. It is loaded once and
// passed down explicitly.
type Config struct {
	// ListenAddr is the HTTP listen address in "host:port" form.
	ListenAddr string `yaml:"listen_addr"`

	// SolveTimeout bounds a single /solve or /solve_system call.
	SolveTimeout time.Duration `yaml:"solve_timeout"`

	// MaxBodyBytes limits the size of a request body.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// DecimalMode is "legacy" ('.' means '*') or "strict" ('.' is rejected).
	DecimalMode string `yaml:"decimal_mode"`

	// CORSAllowedOrigins lists the origins allowed by CORS. "*" allows any.
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`

	RateLimit RateLimit `yaml:"rate_limit"`

	// LogLevel is a logrus level name.
	LogLevel string `yaml:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `yaml:"log_format"`

	HTTP HTTPTimeouts `yaml:"http"`
}

// RateLimit configures the per-client token bucket. A zero rate disables
// rate limiting.
type RateLimit struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// HTTPTimeouts are the net/http server timeouts.
type HTTPTimeouts struct {
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	return &Config{
		ListenAddr:         DefaultListenAddr,
		SolveTimeout:       DefaultSolveTimeout,
		MaxBodyBytes:       DefaultMaxBodyBytes,
		DecimalMode:        notation.DecimalLegacy.String(),
		CORSAllowedOrigins: []string{"*"},
		RateLimit: RateLimit{
			RequestsPerSecond: DefaultRequestsPerSecond,
			Burst:             DefaultBurst,
		},
		LogLevel:  logrus.InfoLevel.String(),
		LogFormat: "text",
		HTTP: HTTPTimeouts{
			ReadTimeout:       DefaultReadTimeout,
			ReadHeaderTimeout: DefaultReadHeaderTimeout,
			WriteTimeout:      DefaultWriteTimeout,
			IdleTimeout:       DefaultIdleTimeout,
		},
	}
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return ErrNoListenAddr
	}
	if c.SolveTimeout <= 0 {
		return ErrInvalidSolveTimeout
	}
	if c.MaxBodyBytes <= 0 {
		return ErrInvalidMaxBodyBytes
	}
	if _, err := notation.ParseDecimalMode(c.DecimalMode); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDecimalMode, c.DecimalMode)
	}
	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 ||
		(c.RateLimit.RequestsPerSecond > 0 && c.RateLimit.Burst == 0) {
		return ErrInvalidRateLimit
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.LogFormat)
	}
	for _, d := range []time.Duration{c.HTTP.ReadTimeout, c.HTTP.ReadHeaderTimeout, c.HTTP.WriteTimeout, c.HTTP.IdleTimeout} {
		if d < 0 {
			return ErrInvalidHTTPTimeout
		}
	}
	return nil
}

// Decimal returns the parsed decimal mode. It assumes Validate passed.
func (c *Config) Decimal() notation.DecimalMode {
	m, _ := notation.ParseDecimalMode(c.DecimalMode)
	return m
}

// ConfigDir returns the XDG config directory for gosolve.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}
