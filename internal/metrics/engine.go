package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	engineOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "raisevault",
		Subsystem: "engine",
		Name:      "operations_total",
		Help:      "Count of escrow engine operations.",
	}, []string{"operation", "status"})

	engineOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "raisevault",
		Subsystem: "engine",
		Name:      "operation_duration_seconds",
		Help:      "Duration of escrow engine operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "status"})
)

// Engine tracks metrics for escrow engine operations.
type Engine struct{}

// NewEngine creates an Engine metrics collector.
func NewEngine() *Engine {
	return &Engine{}
}

// Observe records duration and status of an engine operation.
func (m Engine) Observe(operation string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}

	engineOperationsTotal.WithLabelValues(operation, status).Inc()
	engineOperationDuration.WithLabelValues(operation, status).Observe(time.Since(started).Seconds())
}
