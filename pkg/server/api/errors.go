package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/vulntor/siteprint/pkg/fingerprint"
	"github.com/vulntor/siteprint/pkg/storage"
)

// ErrorResponse represents a standard JSON error response.
//
// Example:
//
//	{
//	  "error": "Not Found",
//	  "message": "report not found: 3f0c..."
//	}
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// WriteError writes a JSON error response, choosing the status from the error:
//   - storage.NotFoundError → 404 Not Found
//   - storage.InvalidInputError → 400 Bad Request
//   - fingerprint coded errors → fingerprint.HTTPStatus
//   - anything else → 500 Internal Server Error
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode := http.StatusInternalServerError
	var code string

	var notFoundErr *storage.NotFoundError
	switch {
	case errors.As(err, &notFoundErr):
		statusCode = http.StatusNotFound
	case storage.IsInvalidInput(err):
		statusCode = http.StatusBadRequest
	case errors.Is(err, fingerprint.ErrInvalidEvidence),
		errors.Is(err, fingerprint.ErrInvalidCatalog),
		errors.Is(err, fingerprint.ErrStorageDisabled):
		statusCode = fingerprint.HTTPStatus(err)
		code = fingerprint.ErrorCode(err)
	}

	logEvent := log.Error()
	if statusCode < http.StatusInternalServerError {
		logEvent = log.Warn()
	}
	logEvent.
		Str("component", "api").
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", statusCode).
		Err(err).
		Msg("Request failed")

	writeErrorResponse(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: err.Error(),
		Code:    code,
	})
}

// WriteJSONError writes a custom JSON error response with a specific status code.
//
// Example:
//
//	WriteJSONError(w, http.StatusBadRequest, "Bad Request", "INVALID_REQUEST", "responses: required")
func WriteJSONError(w http.ResponseWriter, statusCode int, errorType, code, message string) {
	writeErrorResponse(w, statusCode, ErrorResponse{Error: errorType, Message: message, Code: code})
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, response ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error().
			Str("component", "api").
			Err(err).
			Msg("Failed to encode error response")
	}
}

// WriteJSON writes a JSON response to the client.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().
			Str("component", "api").
			Err(err).
			Msg("Failed to encode JSON response")
	}
}
