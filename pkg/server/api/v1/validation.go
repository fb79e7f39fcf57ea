package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vulntor/siteprint/pkg/evidence"
	"github.com/vulntor/siteprint/pkg/fingerprint"
)

var validate = validator.New()

// FingerprintRequest is the body of POST /api/v1/fingerprint.
type FingerprintRequest struct {
	// Target labels the run in telemetry and stored reports.
	Target string `json:"target,omitempty" validate:"max=2048"`

	// Responses holds evidence records in the same shape the CLI accepts.
	Responses json.RawMessage `json:"responses" validate:"required"`
}

// fingerprintInput is a validated request.
type fingerprintInput struct {
	Target    string
	Responses []fingerprint.Response
}

// ParseFingerprintRequest decodes and validates a fingerprint request body.
// The body must already be limited by the caller.
func ParseFingerprintRequest(body io.Reader, maxResponses int) (*fingerprintInput, error) {
	var req FingerprintRequest
	dec := json.NewDecoder(body)
	if err := dec.Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, &ValidationError{Field: "body", Reason: fmt.Sprintf("exceeds %d bytes", maxErr.Limit)}
		}
		return nil, &ValidationError{Field: "body", Reason: "invalid JSON: " + err.Error()}
	}

	if err := validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			field := strings.ToLower(fe.Field())
			if fe.Tag() == "required" {
				return nil, &ValidationError{Field: field, Reason: "required"}
			}
			return nil, &ValidationError{Field: field, Reason: "must be at most " + fe.Param() + " characters"}
		}
		return nil, err
	}

	responses, err := evidence.DecodeBytes(req.Responses, evidence.FormatJSON)
	if err != nil {
		return nil, err
	}
	if maxResponses > 0 && len(responses) > maxResponses {
		return nil, &ValidationError{Field: "responses", Reason: fmt.Sprintf("at most %d records per request", maxResponses)}
	}

	return &fingerprintInput{Target: req.Target, Responses: responses}, nil
}

// ParseCategoryQuery validates the optional ?category= filter.
func ParseCategoryQuery(r *http.Request) (fingerprint.Category, error) {
	v := strings.TrimSpace(r.URL.Query().Get("category"))
	if v == "" {
		return "", nil
	}
	names := make([]string, 0, len(fingerprint.Categories()))
	for _, c := range fingerprint.Categories() {
		names = append(names, string(c))
	}
	if err := validate.Var(v, "oneof="+strings.Join(names, " ")); err != nil {
		return "", &ValidationError{Field: "category", Reason: "must be one of: " + strings.Join(names, ",")}
	}
	return fingerprint.Category(v), nil
}

// ValidationError is a lightweight error used for 400 responses.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field == "" {
		return "validation failed"
	}
	if e.Reason == "" {
		return e.Field + ": invalid"
	}
	return e.Field + ": " + e.Reason
}
