package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the audit service.
type Metrics struct {
	AuditsStarted  prometheus.Counter
	AuditsFinished *prometheus.CounterVec
	PagesCrawled   prometheus.Counter
	ErrorsTotal    *prometheus.CounterVec
	AuditDuration  prometheus.Histogram
}

func NewMetrics() *Metrics {
	return &Metrics{
		AuditsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "audit_jobs_started_total",
			Help: "The total number of audit jobs submitted",
		}),
		AuditsFinished: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_jobs_finished_total",
			Help: "The total number of audit jobs finished, by outcome",
		}, []string{"outcome"}), // 'completed', 'failed'
		PagesCrawled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "audit_pages_crawled_total",
			Help: "The total number of pages crawled across all audits",
		}),
		ErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_errors_total",
			Help: "The total number of errors encountered",
		}, []string{"type"}), // e.g., 'audit_failed', 'archive_failed'
		AuditDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "audit_job_duration_seconds",
			Help:    "End-to-end duration of completed audit jobs",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
}

func (m *Metrics) IncAuditsStarted() {
	m.AuditsStarted.Inc()
}

func (m *Metrics) IncAuditsFinished(outcome string) {
	m.AuditsFinished.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AddPagesCrawled(n int) {
	m.PagesCrawled.Add(float64(n))
}

func (m *Metrics) IncErrorsTotal(errorType string) {
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

func (m *Metrics) ObserveAuditDuration(d time.Duration) {
	m.AuditDuration.Observe(d.Seconds())
}
