package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	SubmissionsPublished *prometheus.CounterVec
	SubmissionsRejected  *prometheus.CounterVec
	SubmissionsFailed    prometheus.Counter
	CompensationFailures prometheus.Counter
	PublishDuration      prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		SubmissionsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "caredays_submissions_published_total",
			Help: "Submissions published to the durable log, by message type",
		}, []string{"type"}),
		SubmissionsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "caredays_submissions_rejected_total",
			Help: "Submissions rejected before publish, by reason",
		}, []string{"reason"}),
		SubmissionsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "caredays_submissions_failed_total",
			Help: "Submissions that failed at publish after side effects",
		}),
		CompensationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "caredays_compensation_failures_total",
			Help: "Compensating attachment deletions that did not succeed",
		}),
		PublishDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "caredays_publish_duration_seconds",
			Help:    "Latency of the durable log publish call",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ObservePublish records one publish latency sample.
func (m *Metrics) ObservePublish(d time.Duration) {
	m.PublishDuration.Observe(d.Seconds())
}
