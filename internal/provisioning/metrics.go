package provisioning

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds the transaction metrics of one process run.
// A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	transactionsTotal   *prometheus.CounterVec
	transactionDuration *prometheus.HistogramVec
	rollbackStepsTotal  *prometheus.CounterVec
	allocationConflicts *prometheus.CounterVec
}

// NewMetrics creates the metrics on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transactionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nbctl",
				Subsystem: "transaction",
				Name:      "total",
				Help:      "Total number of transactions by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		transactionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "nbctl",
				Subsystem: "transaction",
				Name:      "duration_seconds",
				Help:      "Duration of transactions in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~51s
			},
			[]string{"operation"},
		),
		rollbackStepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nbctl",
				Subsystem: "rollback",
				Name:      "steps_total",
				Help:      "Total number of rolled back objects by kind and result",
			},
			[]string{"kind", "result"},
		),
		allocationConflicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nbctl",
				Subsystem: "allocation",
				Name:      "conflicts_total",
				Help:      "Total number of rejected allocation candidates by resource",
			},
			[]string{"resource"},
		),
	}
	m.registry.MustRegister(
		m.transactionsTotal,
		m.transactionDuration,
		m.rollbackStepsTotal,
		m.allocationConflicts,
	)
	return m
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordTransaction records a finished transaction.
func (m *Metrics) RecordTransaction(operation, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.transactionsTotal.WithLabelValues(operation, outcome).Inc()
	m.transactionDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordRollbackStep records one compensating delete.
func (m *Metrics) RecordRollbackStep(kind, result string) {
	if m == nil {
		return
	}
	m.rollbackStepsTotal.WithLabelValues(kind, result).Inc()
}

// RecordAllocationConflict records a rejected allocation candidate.
func (m *Metrics) RecordAllocationConflict(resource string) {
	if m == nil {
		return
	}
	m.allocationConflicts.WithLabelValues(resource).Inc()
}

// Push sends all metrics to a Prometheus Pushgateway.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if m == nil {
		return nil
	}
	if err := push.New(url, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	return nil
}
