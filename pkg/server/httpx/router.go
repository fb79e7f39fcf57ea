package httpx

import (
	"net/http"

	"github.com/vulntor/siteprint/pkg/config"
	"github.com/vulntor/siteprint/pkg/server/api"
	v1 "github.com/vulntor/siteprint/pkg/server/api/v1"
)

// NewRouter creates and configures the main HTTP router.
//
// Health endpoints are always mounted. API routes are mounted when cfg.APIEnabled,
// and /metrics when cfg.MetricsEnabled and deps.Metrics is set.
func NewRouter(cfg config.ServerConfig, deps *api.Deps) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", HealthzHandler)
	mux.HandleFunc("GET /readyz", v1.ReadyzHandler(deps.Ready))

	if cfg.APIEnabled {
		mux.HandleFunc("POST /api/v1/fingerprint", v1.FingerprintHandler(deps))
		mux.HandleFunc("POST /api/v1/fingerprint/groups", v1.GroupedFingerprintHandler(deps))
		mux.HandleFunc("GET /api/v1/reports", v1.ListReportsHandler(deps))
		mux.HandleFunc("GET /api/v1/reports/{id}", v1.GetReportHandler(deps))
		mux.HandleFunc("GET /api/v1/catalog/rules", v1.ListRulesHandler(deps))
		mux.HandleFunc("GET /api/v1/catalog/cookies", v1.ListCookieSignaturesHandler(deps))
	}

	if cfg.MetricsEnabled && deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics.Handler())
	}

	return mux
}

// HealthzHandler responds with 200 OK if the server process is alive.
// It does not check the catalog; use /readyz for that.
func HealthzHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
