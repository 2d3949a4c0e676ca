package services

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stitts-dev/nba-props/internal/props"
)

// Metrics holds the prometheus collectors for upstream calls and passes.
// It implements resilience.AttemptObserver.
type Metrics struct {
	registry *prometheus.Registry

	upstreamAttempts *prometheus.CounterVec
	passesTotal      *prometheus.CounterVec
	passDuration     prometheus.Histogram
	passResults      prometheus.Gauge
	playersSkipped   prometheus.Counter
	httpRequests     *prometheus.CounterVec
}

// NewMetrics registers every collector on a private registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		upstreamAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nba_props",
			Name:      "upstream_attempts_total",
			Help:      "Upstream call attempts by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		passesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nba_props",
			Name:      "passes_total",
			Help:      "Processing passes by final status",
		}, []string{"status"}),
		passDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nba_props",
			Name:      "pass_duration_seconds",
			Help:      "Wall time of a processing pass",
			Buckets:   []float64{10, 30, 60, 120, 300, 600, 1200, 2400},
		}),
		passResults: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "nba_props",
			Name:      "last_pass_results",
			Help:      "Number of projection results produced by the last successful pass",
		}),
		playersSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "nba_props",
			Name:      "players_skipped_total",
			Help:      "Players skipped because their data could not be fetched",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nba_props",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
	}
}

// ObserveAttempt records a single upstream attempt
func (m *Metrics) ObserveAttempt(endpoint string, success bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.upstreamAttempts.WithLabelValues(endpoint, outcome).Inc()
}

// ObservePass records a finished pass
func (m *Metrics) ObservePass(status string, duration time.Duration, results, skipped int) {
	if m == nil {
		return
	}
	m.passesTotal.WithLabelValues(status).Inc()
	m.passDuration.Observe(duration.Seconds())
	m.playersSkipped.Add(float64(skipped))
	if status == props.PassStatusCompleted {
		m.passResults.Set(float64(results))
	}
}

// ObserveHTTP records a served HTTP request
func (m *Metrics) ObserveHTTP(method, route, status string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
}

// Registry exposes the registry for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
