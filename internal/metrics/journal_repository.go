package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	journalRepositoryOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "raisevault",
		Subsystem: "journal_repository",
		Name:      "operations_total",
		Help:      "Count of ClickHouse journal operations.",
	}, []string{"operation", "status"})

	journalRepositoryOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "raisevault",
		Subsystem: "journal_repository",
		Name:      "operation_duration_seconds",
		Help:      "Duration of ClickHouse journal operations.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"operation", "status"})
)

// JournalRepository tracks metrics for the ClickHouse journal.
type JournalRepository struct{}

// NewJournalRepository creates a JournalRepository metrics collector.
func NewJournalRepository() *JournalRepository {
	return &JournalRepository{}
}

// Observe records duration and status of a journal operation.
func (m JournalRepository) Observe(operation string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}

	journalRepositoryOperationsTotal.WithLabelValues(operation, status).Inc()
	journalRepositoryOperationDuration.WithLabelValues(operation, status).Observe(time.Since(started).Seconds())
}
