package app

import (
	"github.com/rs/zerolog"

	"github.com/vulntor/siteprint/pkg/fingerprint"
	"github.com/vulntor/siteprint/pkg/server/metrics"
	"github.com/vulntor/siteprint/pkg/storage"
)

// Deps holds dependencies for the server application.
type Deps struct {
	// Reports persists fingerprint results; nil disables the reports API.
	Reports storage.ReportStore

	// Telemetry receives detection events; closed on shutdown.
	Telemetry *fingerprint.TelemetryWriter

	// Metrics backs /metrics; nil disables metric collection.
	Metrics *metrics.Recorder

	// Catalog selects the catalog the server runs with.
	Catalog CatalogOptions

	// Logger for structured logging (injected by caller)
	Logger zerolog.Logger
}

// CatalogOptions selects custom catalog files or a synced catalog cache.
type CatalogOptions struct {
	RulesFile   string
	CookiesFile string
	CacheDir    string

	// Watch reloads the catalog when RulesFile or CookiesFile changes.
	Watch bool
}

func (o CatalogOptions) files() []string {
	var files []string
	for _, f := range []string{o.RulesFile, o.CookiesFile} {
		if f != "" {
			files = append(files, f)
		}
	}
	return files
}
