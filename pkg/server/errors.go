// Package server holds error codes shared by the server runtime and the serve command.
package server

import (
	"errors"
	"fmt"
)

const (
	errorCodeInvalidPort       = "SERVER_INVALID_PORT"
	errorCodeFeaturesDisabled  = "SERVER_FEATURES_DISABLED"
	errorCodeConfigUnavailable = "SERVER_CONFIG_UNAVAILABLE"
	errorCodeInvalidConfig     = "SERVER_INVALID_CONFIG"
	errorCodeStorageInitFailed = "SERVER_STORAGE_INIT_FAILED"
	errorCodeCatalogLoadFailed = "SERVER_CATALOG_LOAD_FAILED"
	errorCodeAppInitFailed     = "SERVER_INIT_FAILED"
	errorCodeRuntimeFailed     = "SERVER_RUNTIME_FAILED"
)

var (
	// ErrInvalidPort indicates an invalid port flag value.
	ErrInvalidPort = errors.New("invalid port")
	// ErrFeaturesDisabled indicates API and metrics were both disabled.
	ErrFeaturesDisabled = errors.New("api and metrics disabled")
	// ErrConfigUnavailable indicates the CLI context lacked a config manager.
	ErrConfigUnavailable = errors.New("config manager unavailable")
)

type errorCoder interface {
	error
	Code() string
}

type withCodeError struct {
	error
	code string
}

func (e *withCodeError) Code() string {
	return e.code
}

func (e *withCodeError) Unwrap() error {
	return e.error
}

// WithErrorCode annotates err with a server error code.
func WithErrorCode(err error, code string) error {
	if err == nil {
		return nil
	}
	return &withCodeError{error: err, code: code}
}

// NewInvalidPortError formats an invalid port error with context.
func NewInvalidPortError(port int) error {
	return WithErrorCode(fmt.Errorf("%w: invalid port %d: must be between 1 and 65535", ErrInvalidPort, port), errorCodeInvalidPort)
}

// NewFeaturesDisabledError reports a server started with nothing to serve.
func NewFeaturesDisabledError() error {
	return WithErrorCode(fmt.Errorf("%w: cannot disable both API and metrics: at least one must be enabled", ErrFeaturesDisabled), errorCodeFeaturesDisabled)
}

// WrapInvalidConfig annotates server config validation errors.
func WrapInvalidConfig(err error) error {
	if err == nil {
		return nil
	}
	return WithErrorCode(fmt.Errorf("invalid server configuration: %w", err), errorCodeInvalidConfig)
}

// WrapStorageInit annotates report store and telemetry initialization failures.
func WrapStorageInit(err error) error {
	if err == nil {
		return nil
	}
	return WithErrorCode(err, errorCodeStorageInitFailed)
}

// WrapCatalogLoad annotates fingerprint catalog load failures at startup.
func WrapCatalogLoad(err error) error {
	if err == nil {
		return nil
	}
	return WithErrorCode(err, errorCodeCatalogLoadFailed)
}

// WrapAppInit annotates server app creation failures.
func WrapAppInit(err error) error {
	if err == nil {
		return nil
	}
	return WithErrorCode(err, errorCodeAppInitFailed)
}

// WrapRuntime annotates server runtime failures.
func WrapRuntime(err error) error {
	if err == nil {
		return nil
	}
	return WithErrorCode(err, errorCodeRuntimeFailed)
}

// ErrorCode resolves a server error to its error code.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var coded errorCoder
	if errors.As(err, &coded) {
		if code := coded.Code(); code != "" {
			return code
		}
	}

	switch {
	case errors.Is(err, ErrInvalidPort):
		return errorCodeInvalidPort
	case errors.Is(err, ErrFeaturesDisabled):
		return errorCodeFeaturesDisabled
	case errors.Is(err, ErrConfigUnavailable):
		return errorCodeConfigUnavailable
	default:
		return errorCodeRuntimeFailed
	}
}

// ExitCode maps server errors to CLI exit codes.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	switch code := ErrorCode(err); {
	case errors.Is(err, ErrInvalidPort),
		errors.Is(err, ErrFeaturesDisabled),
		code == errorCodeInvalidConfig:
		return 2
	case code == errorCodeCatalogLoadFailed:
		return 3
	case code == errorCodeStorageInitFailed,
		code == errorCodeAppInitFailed:
		return 7
	default:
		return 1
	}
}

// Suggestions provides CLI hints for server errors.
func Suggestions(err error) []string {
	if err == nil {
		return nil
	}

	switch ErrorCode(err) {
	case errorCodeInvalidPort:
		return []string{
			"Use a port between 1 and 65535",
			"Example:                 siteprint serve --server.port 8080",
		}
	case errorCodeFeaturesDisabled:
		return []string{
			"Enable the API or metrics",
			"Remove --server.api_enabled=false or --server.metrics_enabled=false",
		}
	case errorCodeConfigUnavailable:
		return []string{
			"Run via the siteprint CLI so configuration is loaded",
		}
	case errorCodeInvalidConfig:
		return []string{
			"Check server values in the config file",
			"Show the effective configuration: siteprint config show",
		}
	case errorCodeStorageInitFailed:
		return []string{
			"Verify workspace directory permissions",
			"Override workspace root:  siteprint serve --workspace.dir <path>",
		}
	case errorCodeCatalogLoadFailed:
		return []string{
			"Check custom catalogs:    siteprint catalog validate <file>",
			"Retry without --catalog.rules_file to use the built-in catalog",
		}
	case errorCodeAppInitFailed:
		return []string{
			"Retry with debug logging: siteprint serve --debug",
			"Review configuration for invalid values",
		}
	case errorCodeRuntimeFailed:
		return []string{
			"Check server logs for runtime errors",
			"Ensure no other process is using the selected port",
		}
	default:
		return nil
	}
}
