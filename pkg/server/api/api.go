package api

import (
	"sync/atomic"

	"github.com/vulntor/siteprint/pkg/fingerprint"
	"github.com/vulntor/siteprint/pkg/server/metrics"
	"github.com/vulntor/siteprint/pkg/storage"
)

// Deps holds dependencies for API handlers.
type Deps struct {
	// Engine returns the engine for the current request. The server swaps engines on
	// catalog reload, so handlers must not cache the result.
	Engine func() *fingerprint.Engine

	// Reports persists results; nil disables report storage and GET /api/v1/reports.
	Reports storage.ReportStore

	// Telemetry receives one event per detection; a disabled or nil writer is fine.
	Telemetry *fingerprint.TelemetryWriter

	// Metrics records run metrics; nil records nothing.
	Metrics *metrics.Recorder

	Config Config

	// Ready flag for readiness check
	Ready *atomic.Bool
}

// CurrentEngine returns the configured engine, or the process default.
func (d *Deps) CurrentEngine() *fingerprint.Engine {
	if d.Engine != nil {
		if e := d.Engine(); e != nil {
			return e
		}
	}
	return fingerprint.DefaultEngine()
}
