package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reconcilerRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "raisevault",
		Subsystem: "reconciler",
		Name:      "runs_total",
		Help:      "Count of reconciliation runs.",
	}, []string{"status"})

	reconcilerRunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "raisevault",
		Subsystem: "reconciler",
		Name:      "run_duration_seconds",
		Help:      "Duration of reconciliation runs.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})

	reconcilerProblems = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "raisevault",
		Subsystem: "reconciler",
		Name:      "problems",
		Help:      "Number of problems detected by the latest reconciliation run.",
	})
)

// Reconciler tracks metrics for the reconciliation loop.
type Reconciler struct{}

// NewReconciler creates a Reconciler metrics collector.
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// ObserveRun records duration and status of a reconciliation run.
func (m Reconciler) ObserveRun(err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}

	reconcilerRunsTotal.WithLabelValues(status).Inc()
	reconcilerRunDuration.WithLabelValues(status).Observe(time.Since(started).Seconds())
}

// ObserveProblems records the problem count of the latest run.
func (m Reconciler) ObserveProblems(count int) {
	reconcilerProblems.Set(float64(count))
}
