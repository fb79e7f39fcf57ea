package v1

import (
	"net/http"

	"github.com/vulntor/siteprint/pkg/fingerprint"
	"github.com/vulntor/siteprint/pkg/server/api"
)

// ListReportsHandler handles GET /api/v1/reports
//
// Returns stored report summaries, newest first:
//
//	[
//	  {"id": "7d1c...", "target": "https://example.com", "created_at": "2025-01-01T00:00:00Z", "matches": 4}
//	]
//
// Returns 503 when report storage is disabled.
func ListReportsHandler(deps *api.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Reports == nil {
			api.WriteError(w, r, fingerprint.NewStorageDisabledError())
			return
		}
		reports, err := deps.Reports.List(r.Context())
		if err != nil {
			api.WriteError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, reports)
	}
}

// GetReportHandler handles GET /api/v1/reports/{id}
//
// Returns the full stored report. Returns 400 for a malformed ID and 404 if no report
// has that ID.
func GetReportHandler(deps *api.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Reports == nil {
			api.WriteError(w, r, fingerprint.NewStorageDisabledError())
			return
		}
		report, err := deps.Reports.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			api.WriteError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, report)
	}
}
