// SPDX-License-Identifier: MIT

// Package metrics exposes Prometheus metrics for analysis runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeSuccess    = "success"
	OutcomeFailure    = "failure"
	OutcomeSuppressed = "suppressed"
)

// Manager owns the analysis metrics. A nil or disabled Manager records nothing.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	analyses            *prometheus.CounterVec
	analysisDuration    *prometheus.HistogramVec
	lastSpecimenCount   prometheus.Gauge
	procrustesIteration prometheus.Gauge
}

// NewManager creates a Manager and registers its metrics on the configured
// registry (a private one by default).
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "morphometrics",
		subsystem:        "analysis",
		histogramBuckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		enabled:          true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	if m.enabled {
		m.initializeMetrics()
	}

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.analyses = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "analyses_total",
			Help:      "Analysis stages run, by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	m.analysisDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "analysis_duration_seconds",
			Help:      "Wall time of each analysis stage in seconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"kind"},
	)

	m.lastSpecimenCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_specimen_count",
		Help:      "Number of specimens in the most recent run",
	})

	m.procrustesIteration = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_procrustes_iterations",
		Help:      "Iterations used by the most recent Procrustes superimposition",
	})
}

// Enabled reports whether metrics are being recorded.
func (m *Manager) Enabled() bool {
	return m != nil && m.enabled
}

// ObserveStage records one stage of the given kind with its outcome and duration.
func (m *Manager) ObserveStage(kind, outcome string, d time.Duration) {
	if !m.Enabled() {
		return
	}
	m.analyses.WithLabelValues(kind, outcome).Inc()
	m.analysisDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// SetSpecimenCount records the specimen count of the current run.
func (m *Manager) SetSpecimenCount(n int) {
	if !m.Enabled() {
		return
	}
	m.lastSpecimenCount.Set(float64(n))
}

// SetProcrustesIterations records the iterations of the last alignment.
func (m *Manager) SetProcrustesIterations(n int) {
	if !m.Enabled() {
		return
	}
	m.procrustesIteration.Set(float64(n))
}

// Registry returns the registerer the metrics live on.
func (m *Manager) Registry() prometheus.Registerer {
	if m == nil {
		return nil
	}

	return m.registry
}
