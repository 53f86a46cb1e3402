package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors exported on /metrics
type Metrics struct {
	registry *prometheus.Registry

	Evaluations  *prometheus.CounterVec
	Edits        *prometheus.CounterVec
	CacheLookups *prometheus.CounterVec
	Publishes    *prometheus.CounterVec
}

// New creates the collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "requirements",
			Name:      "evaluations_total",
			Help:      "Requirements evaluated, by variant and outcome.",
		}, []string{"type", "outcome"}),
		Edits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "requirements",
			Name:      "edits_total",
			Help:      "Authoring edits applied, by operation and result.",
		}, []string{"op", "result"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "requirements",
			Name:      "cache_lookups_total",
			Help:      "Cache lookups, by cache and result.",
		}, []string{"cache", "result"}),
		Publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "requirements",
			Name:      "publishes_total",
			Help:      "Program publish attempts, by result.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(
		m.Evaluations,
		m.Edits,
		m.CacheLookups,
		m.Publishes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveEvaluation counts one evaluated requirement
func (m *Metrics) ObserveEvaluation(variant string, complete bool) {
	if m == nil {
		return
	}
	outcome := "incomplete"
	if complete {
		outcome = "complete"
	}
	m.Evaluations.WithLabelValues(variant, outcome).Inc()
}

// ObserveEdit counts one applied or rejected edit
func (m *Metrics) ObserveEdit(op string, err error) {
	if m == nil {
		return
	}
	m.Edits.WithLabelValues(op, result(err)).Inc()
}

// ObserveCache counts a cache hit or miss
func (m *Metrics) ObserveCache(cache string, hit bool) {
	if m == nil {
		return
	}
	res := "miss"
	if hit {
		res = "hit"
	}
	m.CacheLookups.WithLabelValues(cache, res).Inc()
}

// ObservePublish counts a publish attempt
func (m *Metrics) ObservePublish(err error) {
	if m == nil {
		return
	}
	m.Publishes.WithLabelValues(result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
