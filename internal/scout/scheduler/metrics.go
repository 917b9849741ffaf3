package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/graph"
)

// Metrics exports per-source scheduler state as Prometheus gauges at run
// end (section 4.11). Each gauge is labeled by source URL so an operator
// can see weight/cadence/backoff drift per source over time.
type Metrics struct {
	Registry *prometheus.Registry

	weight               *prometheus.GaugeVec
	cadenceHours         *prometheus.GaugeVec
	consecutiveEmptyRuns *prometheus.GaugeVec
}

// NewMetrics registers the scheduler's gauge vectors against a fresh
// registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		Registry: registry,
		weight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "rootsignal",
			Subsystem: "scheduler",
			Name:      "source_weight",
			Help:      "Current Bayesian weight of a source, in [0.1, 1.0].",
		}, []string{"url", "region"}),
		cadenceHours: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "rootsignal",
			Subsystem: "scheduler",
			Name:      "source_cadence_hours",
			Help:      "Current effective fetch cadence for a source, in hours.",
		}, []string{"url", "region"}),
		consecutiveEmptyRuns: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "rootsignal",
			Subsystem: "scheduler",
			Name:      "source_consecutive_empty_runs",
			Help:      "Consecutive runs in which a source yielded no new signals.",
		}, []string{"url", "region"}),
	}
	registry.MustRegister(m.weight, m.cadenceHours, m.consecutiveEmptyRuns)
	return m
}

// Observe records one source's current scheduler state.
func (m *Metrics) Observe(region string, source graph.Source, cadenceHours float64) {
	labels := prometheus.Labels{"url": source.URL, "region": region}
	m.weight.With(labels).Set(float64(source.Weight))
	m.cadenceHours.With(labels).Set(cadenceHours)
	m.consecutiveEmptyRuns.With(labels).Set(float64(source.ConsecutiveEmptyRuns))
}
