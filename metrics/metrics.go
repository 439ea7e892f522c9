// Package metrics holds the prometheus collectors of a playback engine.
//
// Collectors are per instance rather than package globals so several engines
// (and tests) can coexist; Register attaches them to a registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "reel"

// Metrics groups the collectors updated by the engine.
type Metrics struct {
	MessagesPosted   *prometheus.CounterVec
	MessagesApplied  *prometheus.CounterVec
	QueueDepth       prometheus.Gauge
	BackendFailures  *prometheus.CounterVec
	StateTransitions *prometheus.CounterVec
	LoopIterations   prometheus.Counter
}

// New creates unregistered collectors.
func New() *Metrics {
	return &Metrics{
		MessagesPosted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_posted_total",
			Help:      "Messages posted by the worker, by kind.",
		}, []string{"kind"}),

		MessagesApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_applied_total",
			Help:      "Messages applied to the engine state, by kind.",
		}, []string{"kind"}),

		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "message_queue_depth",
			Help:      "Messages posted but not yet applied.",
		}),

		BackendFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_failures_total",
			Help:      "Failed backend calls by severity (unavailable or error).",
		}, []string{"severity"}),

		StateTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_transitions_total",
			Help:      "Playback state transitions by target state.",
		}, []string{"state"}),

		LoopIterations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_iterations_total",
			Help:      "Worker loop iterations.",
		}),
	}
}

// Register attaches every collector to reg.
func (m *Metrics) Register(reg prometheus.Registerer) {
	reg.MustRegister(
		m.MessagesPosted,
		m.MessagesApplied,
		m.QueueDepth,
		m.BackendFailures,
		m.StateTransitions,
		m.LoopIterations,
	)
}
