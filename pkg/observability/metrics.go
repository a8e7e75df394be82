// Package observability provides a Prometheus adapter for the engine's
// lifecycle hooks: per-node tick counters by result status and tree tick
// durations, exposed through a standard /metrics handler.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/canopy/pkg/domain"
)

// Metrics collects tick telemetry. Wire it into a Factory with
// canopy.WithLifecycleHooks(m.Hooks()).
type Metrics struct {
	registry     *prometheus.Registry
	nodeTicks    *prometheus.CounterVec
	treeTicks    *prometheus.CounterVec
	tickDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		nodeTicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "canopy",
			Name:      "node_ticks_total",
			Help:      "Node ticks by tree, node path and result status.",
		}, []string{"tree", "node", "status"}),
		treeTicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "canopy",
			Name:      "tree_ticks_total",
			Help:      "Root ticks by tree and result status.",
		}, []string{"tree", "status"}),
		tickDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "canopy",
			Name:      "tree_tick_duration_seconds",
			Help:      "Duration of one root tick.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 10, 8),
		}, []string{"tree"}),
	}
	m.registry.MustRegister(m.nodeTicks, m.treeTicks, m.tickDuration)
	return m
}

// Hooks returns lifecycle hooks feeding these collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeResult: func(ev *domain.NodeEvent) {
			m.nodeTicks.WithLabelValues(ev.TreeID, ev.Path, ev.Status.String()).Inc()
		},
		OnTreeTick: func(ev *domain.TreeEvent) {
			m.treeTicks.WithLabelValues(ev.TreeID, ev.Status.String()).Inc()
			m.tickDuration.WithLabelValues(ev.TreeID).Observe(ev.Elapsed.Seconds())
		},
	}
}

// Handler serves the collected metrics in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
