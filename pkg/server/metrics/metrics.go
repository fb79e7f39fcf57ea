// Package metrics exposes fingerprint server metrics for Prometheus scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vulntor/siteprint/pkg/fingerprint"
)

const namespace = "siteprint"

// Recorder owns a private registry so tests and embedded servers never collide on the
// default one. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	runsTotal     *prometheus.CounterVec
	matchesTotal  *prometheus.CounterVec
	runDuration   prometheus.Histogram
	recordsPerRun prometheus.Histogram
	catalogRules  prometheus.Gauge
	reloadsTotal  *prometheus.CounterVec
}

// NewRecorder creates and registers all metrics, including Go runtime collectors.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()

	r := &Recorder{
		registry: registry,
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fingerprint_runs_total",
				Help:      "Total number of fingerprint runs by outcome",
			},
			[]string{"outcome"},
		),
		matchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fingerprint_matches_total",
				Help:      "Total number of merged matches by category and confidence",
			},
			[]string{"category", "confidence"},
		),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fingerprint_duration_seconds",
			Help:      "Time spent classifying one set of evidence records",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}),
		recordsPerRun: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fingerprint_records",
			Help:      "Number of evidence records per run",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}),
		catalogRules: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_rules",
			Help:      "Number of compiled rules in the active catalog",
		}),
		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_reloads_total",
				Help:      "Catalog hot reloads by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		r.runsTotal,
		r.matchesTotal,
		r.runDuration,
		r.recordsPerRun,
		r.catalogRules,
		r.reloadsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveRun records one fingerprint run.
func (r *Recorder) ObserveRun(records int, result *fingerprint.Result, elapsed time.Duration) {
	if r == nil || result == nil {
		return
	}
	outcome := "no_match"
	if len(result.Matches) > 0 {
		outcome = "match"
	}
	r.runsTotal.WithLabelValues(outcome).Inc()
	r.runDuration.Observe(elapsed.Seconds())
	r.recordsPerRun.Observe(float64(records))
	for _, m := range result.Matches {
		r.matchesTotal.WithLabelValues(string(m.Rule.Category), string(m.Rule.Confidence)).Inc()
	}
}

// SetCatalogRules reports the size of the active catalog.
func (r *Recorder) SetCatalogRules(n int) {
	if r == nil {
		return
	}
	r.catalogRules.Set(float64(n))
}

// ObserveReload counts a catalog reload attempt.
func (r *Recorder) ObserveReload(err error) {
	if r == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	r.reloadsTotal.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
