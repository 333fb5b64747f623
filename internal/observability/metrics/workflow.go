package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
)

// WorkflowMetrics records use case outcomes and outbound call health.
type WorkflowMetrics struct {
	operations         *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec
	documentsExpired   prometheus.Counter
	notifications      *prometheus.CounterVec
	breakerState       *prometheus.GaugeVec
	breakerTransitions *prometheus.CounterVec
}

func NewWorkflowMetrics(service string, registerer prometheus.Registerer) *WorkflowMetrics {
	constLabels := prometheus.Labels{"service": service}

	operations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "workflow",
			Name:        "operations_total",
			Help:        "Workflow operations by outcome.",
			ConstLabels: constLabels,
		},
		[]string{"operation", "outcome"},
	)
	operationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "workflow",
			Name:        "operation_duration_seconds",
			Help:        "Workflow operation duration in seconds.",
			Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			ConstLabels: constLabels,
		},
		[]string{"operation"},
	)
	documentsExpired := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "workflow",
			Name:        "documents_expired_total",
			Help:        "Approved documents moved to EXPIRED by the sweeper.",
			ConstLabels: constLabels,
		},
	)
	notifications := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "workflow",
			Name:        "notifications_total",
			Help:        "Review request dispatches by outcome.",
			ConstLabels: constLabels,
		},
		[]string{"outcome"},
	)
	breakerState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "resilience",
			Name:        "breaker_state",
			Help:        "Circuit breaker state per operation: 0 closed, 1 half-open, 2 open.",
			ConstLabels: constLabels,
		},
		[]string{"operation"},
	)
	breakerTransitions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "resilience",
			Name:        "breaker_transitions_total",
			Help:        "Circuit breaker state changes per operation.",
			ConstLabels: constLabels,
		},
		[]string{"operation", "to"},
	)

	registerer.MustRegister(
		operations,
		operationDuration,
		documentsExpired,
		notifications,
		breakerState,
		breakerTransitions,
	)

	return &WorkflowMetrics{
		operations:         operations,
		operationDuration:  operationDuration,
		documentsExpired:   documentsExpired,
		notifications:      notifications,
		breakerState:       breakerState,
		breakerTransitions: breakerTransitions,
	}
}

func (m *WorkflowMetrics) ObserveOperation(operation string, err error, duration time.Duration) {
	m.operations.WithLabelValues(operation, outcome(err)).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *WorkflowMetrics) ObserveExpired(count int) {
	if count > 0 {
		m.documentsExpired.Add(float64(count))
	}
}

func (m *WorkflowMetrics) ObserveNotification(err error) {
	m.notifications.WithLabelValues(outcome(err)).Inc()
}

// ObserveBreakerState matches resilience.StateObserver.
func (m *WorkflowMetrics) ObserveBreakerState(operation, _, to string) {
	value := 0.0
	switch to {
	case "half-open":
		value = 1
	case "open":
		value = 2
	}
	m.breakerState.WithLabelValues(operation).Set(value)
	m.breakerTransitions.WithLabelValues(operation, to).Inc()
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	return domain.KindName(err)
}
