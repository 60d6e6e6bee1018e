package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tokenClientRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "raisevault",
		Subsystem: "token_client",
		Name:      "requests_total",
		Help:      "Count of custody service requests.",
	}, []string{"operation", "asset", "status"})

	tokenClientRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "raisevault",
		Subsystem: "token_client",
		Name:      "request_duration_seconds",
		Help:      "Duration of custody service requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "asset", "status"})
)

// TokenClient tracks metrics for one custody service client.
type TokenClient struct {
	asset string
}

// NewTokenClient creates a TokenClient metrics collector for the given asset.
func NewTokenClient(asset string) *TokenClient {
	if asset == "" {
		asset = "unknown"
	}
	return &TokenClient{asset: asset}
}

// Observe records duration and status of a custody request.
func (m TokenClient) Observe(operation string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}

	tokenClientRequestsTotal.WithLabelValues(operation, m.asset, status).Inc()
	tokenClientRequestDuration.WithLabelValues(operation, m.asset, status).Observe(time.Since(started).Seconds())
}
