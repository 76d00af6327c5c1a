// Package metrics defines the Prometheus collectors for the API and worker
// and exposes the scrape handler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	StageTotal           *prometheus.CounterVec
	PagesTotal           *prometheus.CounterVec
	RehostTotal          *prometheus.CounterVec
	SiftDuration         prometheus.Histogram
	JobsTotal            *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// NewWithRegistry registers the collectors with reg and serves them from g
func NewWithRegistry(reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, route, and status.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
			},
			[]string{"method", "route"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		StageTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sift_stage_total",
				Help: "Ingestion stage outcomes by stage and status (ok, degraded, skipped, fatal).",
			},
			[]string{"stage", "status"},
		),
		PagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sift_pages_total",
				Help: "Pages saved by summary mode (ai, defaults, bookmark).",
			},
			[]string{"mode"},
		),
		RehostTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sift_rehost_total",
				Help: "Image re-host attempts by result.",
			},
			[]string{"result"},
		),
		SiftDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sift_duration_seconds",
				Help:    "End-to-end ingestion latency in seconds.",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
		),
		JobsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sift_jobs_total",
				Help: "Background jobs processed by type and result.",
			},
			[]string{"type", "result"},
		),
		gatherer: g,
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.StageTotal,
		m.PagesTotal,
		m.RehostTotal,
		m.SiftDuration,
		m.JobsTotal,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveStage(stage, status string) {
	if m == nil {
		return
	}
	m.StageTotal.WithLabelValues(stage, status).Inc()
}

func (m *Metrics) ObservePage(mode string, seconds float64) {
	if m == nil {
		return
	}
	m.PagesTotal.WithLabelValues(mode).Inc()
	m.SiftDuration.Observe(seconds)
}

func (m *Metrics) ObserveRehost(result string) {
	if m == nil {
		return
	}
	m.RehostTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveJob(jobType, result string) {
	if m == nil {
		return
	}
	m.JobsTotal.WithLabelValues(jobType, result).Inc()
}
