package config

import "errors"

// Configuration validation errors, returned by Config.Validate.
var (
	// ErrNoListenAddr is returned when listen_addr is empty.
	ErrNoListenAddr = errors.New("invalid listen address: must not be empty")

	// ErrInvalidSolveTimeout is returned when solve_timeout is not positive.
	ErrInvalidSolveTimeout = errors.New("invalid solve timeout: must be positive")

	// ErrInvalidMaxBodyBytes is returned when max_body_bytes is not positive.
	ErrInvalidMaxBodyBytes = errors.New("invalid max body bytes: must be positive")

	// ErrInvalidDecimalMode is returned for a decimal_mode other than
	// legacy or strict.
	ErrInvalidDecimalMode = errors.New("invalid decimal mode: must be legacy or strict")

	// ErrInvalidRateLimit is returned when the rate or burst is negative, or
	// when a positive rate has no burst.
	ErrInvalidRateLimit = errors.New("invalid rate limit: rate and burst must be non-negative and burst positive when rate is set")

	// ErrInvalidLogLevel is returned when log_level is not a logrus level.
	ErrInvalidLogLevel = errors.New("invalid log level")

	// ErrInvalidLogFormat is returned when log_format is not text or json.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")

	// ErrInvalidHTTPTimeout is returned when an HTTP server timeout is negative.
	ErrInvalidHTTPTimeout = errors.New("invalid http timeout: must be non-negative")
)
