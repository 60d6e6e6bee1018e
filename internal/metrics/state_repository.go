package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stateRepositoryOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "raisevault",
		Subsystem: "state_repository",
		Name:      "operations_total",
		Help:      "Count of durable state store operations.",
	}, []string{"operation", "status"})

	stateRepositoryOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "raisevault",
		Subsystem: "state_repository",
		Name:      "operation_duration_seconds",
		Help:      "Duration of durable state store operations.",
		Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"operation", "status"})
)

// StateRepository tracks metrics for the LevelDB state store.
type StateRepository struct{}

// NewStateRepository creates a StateRepository metrics collector.
func NewStateRepository() *StateRepository {
	return &StateRepository{}
}

// Observe records duration and status of a state store operation.
func (m StateRepository) Observe(operation string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}

	stateRepositoryOperationsTotal.WithLabelValues(operation, status).Inc()
	stateRepositoryOperationDuration.WithLabelValues(operation, status).Observe(time.Since(started).Seconds())
}
