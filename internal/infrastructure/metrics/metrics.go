package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Chat service metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taskagent",
			Subsystem: "chat",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "taskagent",
			Subsystem: "chat",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint"},
	)

	// Safety gate outcomes
	SafetyBlocksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taskagent",
			Subsystem: "chat",
			Name:      "safety_blocks_total",
			Help:      "Messages blocked by the safety gate",
		},
		[]string{"check"},
	)

	// Safety check infrastructure failures
	SafetyCheckFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taskagent",
			Subsystem: "chat",
			Name:      "safety_check_failures_total",
			Help:      "Safety check transport or parse failures",
		},
		[]string{"check", "policy"},
	)

	// Streamed wire events
	StreamEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taskagent",
			Subsystem: "chat",
			Name:      "stream_events_total",
			Help:      "Wire events written to SSE streams",
		},
		[]string{"event_type"},
	)

	// Agent run duration
	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "taskagent",
			Subsystem: "chat",
			Name:      "run_duration_seconds",
			Help:      "Agent run duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"outcome"},
	)

	// Thread store writes
	ThreadWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taskagent",
			Subsystem: "chat",
			Name:      "thread_writes_total",
			Help:      "Thread store write operations",
		},
		[]string{"operation", "status"},
	)

	// Threads purged by the retention janitor
	ThreadsPurgedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "taskagent",
			Subsystem: "chat",
			Name:      "threads_purged_total",
			Help:      "Soft-deleted threads removed by the retention janitor",
		},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordSafetyBlock records a gate block attributed to one check
func RecordSafetyBlock(check string) {
	SafetyBlocksTotal.WithLabelValues(check).Inc()
}

// RecordSafetyCheckFailure records a check failure and the policy applied
func RecordSafetyCheckFailure(check, policy string) {
	SafetyCheckFailuresTotal.WithLabelValues(check, policy).Inc()
}

// RecordStreamEvent records one wire event
func RecordStreamEvent(eventType string) {
	StreamEventsTotal.WithLabelValues(eventType).Inc()
}

// RecordRun records an agent run and its outcome
func RecordRun(outcome string, durationSec float64) {
	RunDuration.WithLabelValues(outcome).Observe(durationSec)
}

// RecordThreadWrite records a thread store write
func RecordThreadWrite(operation, status string) {
	ThreadWritesTotal.WithLabelValues(operation, status).Inc()
}
