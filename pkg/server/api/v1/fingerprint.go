package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vulntor/siteprint/pkg/fingerprint"
	"github.com/vulntor/siteprint/pkg/server/api"
	"github.com/vulntor/siteprint/pkg/storage"
)

// FingerprintResponse is the body returned by POST /api/v1/fingerprint.
type FingerprintResponse struct {
	// ID is the stored report ID, set only when report storage is enabled.
	ID string `json:"id,omitempty"`
	*fingerprint.Result
}

// GroupedResponse is the body returned by POST /api/v1/fingerprint/groups.
type GroupedResponse struct {
	ID     string                   `json:"id,omitempty"`
	Stack  []fingerprint.StackEntry `json:"stack"`
	Groups []fingerprint.Group      `json:"groups"`
}

// FingerprintHandler handles POST /api/v1/fingerprint
//
// Request format:
//
//	{
//	  "target": "https://example.com",
//	  "responses": [
//	    {"status_code": 403, "headers": {"server": "cloudflare"}, "cookies": {"__cf_bm": "x"}}
//	  ]
//	}
//
// Returns the full fingerprint result. Returns 400 for malformed evidence.
func FingerprintHandler(deps *api.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, result, ok := handleRun(w, r, deps, "fingerprint")
		if !ok {
			return
		}
		api.WriteJSON(w, http.StatusOK, FingerprintResponse{ID: id, Result: result})
	}
}

// GroupedFingerprintHandler handles POST /api/v1/fingerprint/groups
//
// Accepts the same body as FingerprintHandler and returns the technology stack with
// matches grouped into display sections.
func GroupedFingerprintHandler(deps *api.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, result, ok := handleRun(w, r, deps, "fingerprint_groups")
		if !ok {
			return
		}
		api.WriteJSON(w, http.StatusOK, GroupedResponse{
			ID:     id,
			Stack:  result.Stack,
			Groups: fingerprint.GroupMatches(result.Matches),
		})
	}
}

// handleRun parses the request, runs the engine and records the run. It writes the
// error response itself and reports ok=false when the caller should stop.
func handleRun(w http.ResponseWriter, r *http.Request, deps *api.Deps, op string) (string, *fingerprint.Result, bool) {
	logger := log.With().
		Str("component", "api.fingerprint").
		Str("op", op).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Logger()

	ctx := r.Context()
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && deps.Config.HandlerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deps.Config.HandlerTimeout)
		defer cancel()
	}

	if deps.Config.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, deps.Config.MaxBodyBytes)
	}

	input, err := ParseFingerprintRequest(r.Body, deps.Config.MaxResponses)
	if err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			logger.Warn().Err(err).Str("error_code", "INVALID_REQUEST").Msg("validation failed")
			api.WriteJSONError(w, http.StatusBadRequest, "Bad Request", "INVALID_REQUEST", vErr.Error())
			return "", nil, false
		}
		api.WriteError(w, r, err)
		return "", nil, false
	}

	engine := deps.CurrentEngine()
	start := time.Now()
	result := engine.Fingerprint(input.Responses)
	elapsed := time.Since(start)

	deps.Metrics.ObserveRun(len(input.Responses), result, elapsed)

	runID := api.RunID(r.Context())
	if runID == "" {
		runID = uuid.NewString()
	}
	logger = logger.With().Str("run_id", runID).Logger()
	if err := deps.Telemetry.WriteRun(runID, input.Target, len(input.Responses), result); err != nil {
		logger.Warn().Err(err).Msg("failed to write telemetry")
	}

	var reportID string
	if deps.Reports != nil {
		report := &storage.Report{
			ID:      runID,
			Target:  input.Target,
			Records: len(input.Responses),
			Result:  result,
		}
		if err := deps.Reports.Save(ctx, report); err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				logger.Error().Err(err).Str("error_code", "TIMEOUT").Msg("saving report timed out")
				api.WriteJSONError(w, http.StatusGatewayTimeout, "Gateway Timeout", "TIMEOUT",
					"operation timed out after "+deps.Config.HandlerTimeout.String())
				return "", nil, false
			}
			api.WriteError(w, r, err)
			return "", nil, false
		}
		reportID = report.ID
	}

	logResult(logger, len(input.Responses), result, elapsed)
	return reportID, result, true
}

func logResult(logger zerolog.Logger, records int, result *fingerprint.Result, elapsed time.Duration) {
	logger.Info().
		Int("records", records).
		Int("matches", len(result.Matches)).
		Int("stack", len(result.Stack)).
		Dur("duration", elapsed).
		Msg("fingerprint completed")
}
