// Package metrics exposes Prometheus collectors for settlement planning.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mmynk/settleup/internal/calculator"
)

const namespace = "settleup"

// Outcome labels for PlansTotal.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds the collectors recorded by the service layer.
type Metrics struct {
	PlansTotal   *prometheus.CounterVec
	Transactions prometheus.Histogram
	Duration     prometheus.Histogram
	Outstanding  *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg.
// A nil reg creates unregistered collectors.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PlansTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_total",
			Help:      "Settlement plans computed, by outcome.",
		}, []string{"outcome"}),
		Transactions: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_transactions",
			Help:      "Number of payments in each settlement plan.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21, 34},
		}),
		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_duration_seconds",
			Help:      "Time spent loading data and computing a settlement plan.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		Outstanding: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "outstanding_amount",
			Help:      "Total amount of the payments in a group's latest settlement plan.",
		}, []string{"group_id"}),
	}
}

// ObservePlan records a successful plan for groupID.
func (m *Metrics) ObservePlan(groupID string, plan calculator.SettlementPlan, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.PlansTotal.WithLabelValues(OutcomeOK).Inc()
	m.Transactions.Observe(float64(plan.TransactionCount))
	m.Duration.Observe(elapsed.Seconds())

	var owed int64
	for _, s := range plan.Settlements {
		owed += s.Cents
	}
	m.Outstanding.WithLabelValues(groupID).Set(float64(owed) / 100)
}

// ObserveFailure records a plan that could not be computed.
func (m *Metrics) ObserveFailure() {
	if m == nil {
		return
	}
	m.PlansTotal.WithLabelValues(OutcomeError).Inc()
}

// WriteTextfile writes every metric gathered by g to path in the text
// exposition format, for collection by a node exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
