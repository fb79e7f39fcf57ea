package fingerprint

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	errorCodeSourceRequired  = "CATALOG_SOURCE_REQUIRED"
	errorCodeSourceConflict  = "CATALOG_SOURCE_CONFLICT"
	errorCodeStorageDisabled = "CATALOG_STORAGE_DISABLED"
	errorCodeInvalidCatalog  = "CATALOG_INVALID"
	errorCodeInvalidEvidence = "EVIDENCE_INVALID"
	errorCodeSyncFailed      = "CATALOG_SYNC_FAILED"
)

var (
	// ErrSourceRequired indicates neither --file nor --url was provided.
	ErrSourceRequired = errors.New("source required")
	// ErrSourceConflict indicates both --file and --url were provided.
	ErrSourceConflict = errors.New("multiple sources provided")
	// ErrStorageDisabled indicates there is no cache directory to store a catalog in.
	ErrStorageDisabled = errors.New("storage disabled")
	// ErrInvalidCatalog indicates a catalog file could not be parsed or has an
	// unsupported schema version.
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrInvalidEvidence indicates evidence records could not be decoded.
	ErrInvalidEvidence = errors.New("invalid evidence")
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

// WithErrorCode annotates err with an error code.
func WithErrorCode(err error, code string) error {
	if err == nil {
		return nil
	}
	return &withCodeError{error: err, code: code}
}

// NewSourceRequiredError formats a missing source error.
func NewSourceRequiredError() error {
	return WithErrorCode(fmt.Errorf("%w: either --file or --url must be provided", ErrSourceRequired), errorCodeSourceRequired)
}

// NewSourceConflictError formats a conflicting source error.
func NewSourceConflictError() error {
	return WithErrorCode(fmt.Errorf("%w: only one of --file or --url may be provided at a time", ErrSourceConflict), errorCodeSourceConflict)
}

// NewStorageDisabledError formats a storage disabled error.
func NewStorageDisabledError() error {
	return WithErrorCode(fmt.Errorf("%w: no cache directory; specify --cache-dir", ErrStorageDisabled), errorCodeStorageDisabled)
}

// NewInvalidEvidenceError wraps a decoding failure of evidence input.
func NewInvalidEvidenceError(err error) error {
	if err == nil {
		return nil
	}
	return WithErrorCode(fmt.Errorf("%w: %w", ErrInvalidEvidence, err), errorCodeInvalidEvidence)
}

func invalidCatalogError(err error) error {
	return WithErrorCode(fmt.Errorf("%w: %w", ErrInvalidCatalog, err), errorCodeInvalidCatalog)
}

// WrapSyncError annotates a sync failure.
func WrapSyncError(err error) error {
	if err == nil {
		return nil
	}
	return WithErrorCode(err, errorCodeSyncFailed)
}

// ErrorCode resolves an error to its code.
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
	case errors.Is(err, ErrSourceRequired):
		return errorCodeSourceRequired
	case errors.Is(err, ErrSourceConflict):
		return errorCodeSourceConflict
	case errors.Is(err, ErrStorageDisabled):
		return errorCodeStorageDisabled
	case errors.Is(err, ErrInvalidCatalog):
		return errorCodeInvalidCatalog
	case errors.Is(err, ErrInvalidEvidence):
		return errorCodeInvalidEvidence
	default:
		return errorCodeSyncFailed
	}
}

// ExitCode maps errors to CLI exit codes.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	switch {
	case errors.Is(err, ErrSourceRequired),
		errors.Is(err, ErrSourceConflict),
		errors.Is(err, ErrInvalidEvidence):
		return 2
	case errors.Is(err, ErrInvalidCatalog):
		return 3
	case errors.Is(err, ErrStorageDisabled):
		return 7
	default:
		return 1
	}
}

// HTTPStatus maps errors to HTTP status codes.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch {
	case errors.Is(err, ErrSourceRequired),
		errors.Is(err, ErrSourceConflict),
		errors.Is(err, ErrInvalidEvidence):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCatalog):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrStorageDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Suggestions provides CLI hints for an error.
func Suggestions(err error) []string {
	if err == nil {
		return nil
	}

	switch ErrorCode(err) {
	case errorCodeSourceRequired:
		return []string{
			"Provide a source:          --file <path> or --url <address>",
			"Example:                   siteprint catalog sync --url https://example/rules.yaml",
		}
	case errorCodeSourceConflict:
		return []string{
			"Use only one source flag",
			"Remove either --file or --url",
		}
	case errorCodeStorageDisabled:
		return []string{
			"Set cache directory:       siteprint catalog sync --cache-dir <path>",
			"Or set SITEPRINT_WORKSPACE to a writable directory",
		}
	case errorCodeInvalidCatalog:
		return []string{
			"Check the file with:       siteprint catalog validate <file>",
			"Supported schema_version:  " + schemaConstraint,
		}
	case errorCodeInvalidEvidence:
		return []string{
			"Evidence must be JSON, JSON Lines or YAML records",
			"Each record needs status_code, headers and cookies",
		}
	case errorCodeSyncFailed:
		return []string{
			"Retry with --url pointing to a reachable catalog",
			"Check network connectivity and cache directory permissions",
		}
	default:
		return nil
	}
}
