package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the server's collectors. It is separate from the global
// default registry so tests can inspect it without cross-test leakage.
var Registry = prometheus.NewRegistry()

var (
	decisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_decisions_total",
			Help: "Classified attendance events by event kind and resulting action.",
		},
		[]string{"kind", "action"},
	)

	storeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "attendance_store_operation_duration_seconds",
			Help:    "Latency of attendance store operations in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	storeErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_store_errors_total",
			Help: "Attendance store operations that failed or timed out.",
		},
		[]string{"operation"},
	)

	rateLimitedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_rate_limited_total",
			Help: "Requests rejected by the per-client rate limiter.",
		},
		[]string{"route"},
	)

	publishFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "attendance_event_publish_failures_total",
			Help: "Attendance events that could not be published.",
		},
	)

	eventLogFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "attendance_event_log_failures_total",
			Help: "Audit log appends that failed.",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	Registry.MustRegister(Collectors()...)
}

// Collectors returns the attendance-specific collectors.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		decisionsTotal,
		storeDuration,
		storeErrorsTotal,
		rateLimitedTotal,
		publishFailuresTotal,
		eventLogFailuresTotal,
	}
}

// Handler serves Registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

func RecordDecision(kind, action string) {
	decisionsTotal.WithLabelValues(kind, action).Inc()
}

// ObserveStore records the duration of one store call and counts it as an
// error when err is non-nil.
func ObserveStore(operation string, started time.Time, err error) {
	storeDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
	if err != nil {
		storeErrorsTotal.WithLabelValues(operation).Inc()
	}
}

func RecordRateLimited(route string) {
	rateLimitedTotal.WithLabelValues(route).Inc()
}

func RecordPublishFailure() {
	publishFailuresTotal.Inc()
}

func RecordEventLogFailure() {
	eventLogFailuresTotal.Inc()
}
