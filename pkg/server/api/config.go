package api

import (
	"errors"
	"time"
)

// Sentinel errors for configuration validation
var (
	// ErrInvalidTimeout is returned when a timeout value is negative.
	ErrInvalidTimeout = errors.New("invalid timeout: must be >= 0")
	// ErrInvalidBodyLimit is returned when the request body limit is not positive.
	ErrInvalidBodyLimit = errors.New("invalid body limit: must be > 0")
)

// Config holds API-level configuration.
type Config struct {
	// HandlerTimeout bounds a handler unless the request context already has a deadline.
	HandlerTimeout time.Duration

	// MaxBodyBytes caps the size of fingerprint request bodies.
	MaxBodyBytes int64

	// MaxResponses caps the number of evidence records per request.
	MaxResponses int
}

// DefaultConfig returns the default API configuration.
func DefaultConfig() Config {
	return Config{
		HandlerTimeout: 30 * time.Second,
		MaxBodyBytes:   8 << 20,
		MaxResponses:   100,
	}
}

// Validate checks that the configuration is valid.
func (c Config) Validate() error {
	if c.HandlerTimeout < 0 {
		return ErrInvalidTimeout
	}
	if c.MaxBodyBytes <= 0 {
		return ErrInvalidBodyLimit
	}
	return nil
}
