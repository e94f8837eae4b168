// ============================================================================
// Eventphase Metrics
// ============================================================================
//
// Package: internal/metrics
// File: metrics.go
// Purpose: Prometheus collector for dispatch activity. Grounded on the
// teacher's internal/metrics.Collector: a struct of prometheus.Counter/
// Histogram/Gauge fields, built once in NewCollector with
// prometheus.MustRegister, exposed through small RecordX methods, and
// served over HTTP with StartServer.
//
// ============================================================================

package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ChuLiYu/eventphase/pkg/events"
)

// Collector implements dispatcher.Metrics.
type Collector struct {
	handlersExecuted *prometheus.CounterVec
	phaseDuration    *prometheus.HistogramVec
	suspensions      prometheus.Gauge
	outcomes         *prometheus.CounterVec
}

// NewCollector builds and registers a Collector against reg. Pass
// prometheus.NewRegistry() in tests to avoid colliding with the
// global default registry across test runs.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		handlersExecuted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventphase",
			Name:      "handlers_executed_total",
			Help:      "Handler invocations, labeled by phase.",
		}, []string{"phase"}),
		phaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "eventphase",
			Name:      "phase_duration_seconds",
			Help:      "Wall time spent in a single Process/Resume/Fail/Cancel call, labeled by phase.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"phase"}),
		suspensions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "eventphase",
			Name:      "suspended_events",
			Help:      "Number of events currently parked awaiting resume/fail/cancel.",
		}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventphase",
			Name:      "dispatch_outcomes_total",
			Help:      "Terminal dispatch outcomes, labeled by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(c.handlersExecuted, c.phaseDuration, c.suspensions, c.outcomes)
	return c
}

// RecordHandlerExecuted increments the per-phase handler counter.
func (c *Collector) RecordHandlerExecuted(phase events.PhaseTag) {
	c.handlersExecuted.WithLabelValues(string(phase)).Inc()
}

// RecordPhaseDuration observes how long a phase call took.
func (c *Collector) RecordPhaseDuration(phase events.PhaseTag, seconds float64) {
	c.phaseDuration.WithLabelValues(string(phase)).Observe(seconds)
}

// RecordSuspension adjusts the in-flight suspension gauge by delta
// (positive when an event newly suspends, negative when it resolves).
func (c *Collector) RecordSuspension(delta int) {
	c.suspensions.Add(float64(delta))
}

// RecordOutcome increments the counter for a terminal dispatch outcome.
func (c *Collector) RecordOutcome(outcome events.Outcome) {
	c.outcomes.WithLabelValues(string(outcome)).Inc()
}

// StartServer serves /metrics on the given port. It blocks until the
// server returns an error; it takes no context and offers no way to
// shut the server down.
func StartServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
}
