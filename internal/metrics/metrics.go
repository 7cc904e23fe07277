// Package metrics instruments the classifier, controller, and robot
// safety FSM with Prometheus collectors. No teacher package offers a
// direct analogue; this follows the rest of the retrieval pack's
// convention of exposing service internals via client_golang.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the core's Prometheus collectors. Construct one with
// NewMetrics and register it with a registry; the zero value is not
// usable.
type Metrics struct {
	ClassificationsTotal *prometheus.CounterVec
	DecisionsTotal       *prometheus.CounterVec
	ApprovalsTotal       *prometheus.CounterVec
	MotionChecksTotal    *prometheus.CounterVec
	DecisionLatency      prometheus.Histogram
}

// NewMetrics constructs a fresh Metrics bundle.
func NewMetrics() *Metrics {
	return &Metrics{
		ClassificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentsh",
			Subsystem: "security",
			Name:      "classifications_total",
			Help:      "Command risk classifications, by resulting risk level.",
		}, []string{"level"}),
		DecisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentsh",
			Subsystem: "security",
			Name:      "decisions_total",
			Help:      "Terminal security decisions, by outcome.",
		}, []string{"outcome"}),
		ApprovalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentsh",
			Subsystem: "security",
			Name:      "approvals_total",
			Help:      "Approval flow results, by result.",
		}, []string{"result"}),
		MotionChecksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentsh",
			Subsystem: "robot",
			Name:      "motion_checks_total",
			Help:      "Robot motion validation outcomes, by result.",
		}, []string{"result"}),
		DecisionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "agentsh",
			Subsystem: "security",
			Name:      "decision_latency_seconds",
			Help:      "Wall-clock latency of validate_and_approve, including any approval wait.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 12),
		}),
	}
}

// Register adds every collector in m to reg.
func (m *Metrics) Register(reg *prometheus.Registry) error {
	for _, c := range []prometheus.Collector{
		m.ClassificationsTotal,
		m.DecisionsTotal,
		m.ApprovalsTotal,
		m.MotionChecksTotal,
		m.DecisionLatency,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
