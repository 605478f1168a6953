// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "register_submissions_total",
		Help: "Form submissions by outcome status.",
	}, []string{"status"})

	StoreOpSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "register_store_op_seconds",
		Help:    "Latency of tabular store operations.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	ArtifactWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "register_artifact_writes_total",
		Help: "Signature image writes by result.",
	}, []string{"result"})

	DashboardReadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "register_dashboard_read_failures_total",
		Help: "Dashboard reads that degraded to an empty view.",
	})
)

// ObserveStoreOp records the time elapsed since start for op.
func ObserveStoreOp(op string, start time.Time) {
	StoreOpSeconds.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
