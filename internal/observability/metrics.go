package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portal_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ModerationTransitions counts lifecycle transitions by kind and resulting status.
	ModerationTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_moderation_transitions_total",
		Help: "Listing lifecycle transitions by content kind and action",
	}, []string{"kind", "action"})

	// SearchLatency records filter query latency by content kind.
	SearchLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portal_search_latency_seconds",
		Help:    "Filtered search latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind", "cache"})

	// MediaDeleteFailures counts best-effort media deletions that failed.
	MediaDeleteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_media_delete_failures_total",
		Help: "Media deletions that failed and were skipped",
	}, []string{"kind"})

	// NotificationQueueDepth is the number of notifications waiting for a worker.
	NotificationQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "portal_notification_queue_depth",
		Help: "Notifications waiting in the dispatch queue",
	})

	// NotificationDrops counts notifications dropped by the overflow policy.
	NotificationDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_notification_drops_total",
		Help: "Notifications dropped due to backpressure",
	}, []string{"reason"})

	// NotificationDeliveries counts sink deliveries by sink and outcome.
	NotificationDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_notification_deliveries_total",
		Help: "Notification sink deliveries by sink and outcome",
	}, []string{"sink", "outcome"})

	// CronRuns counts scheduled job executions by job and outcome.
	CronRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_cron_runs_total",
		Help: "Scheduled job executions by job and outcome",
	}, []string{"job", "outcome"})

	// RateLimitRejections counts requests refused by a named quota, per content kind.
	RateLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_rate_limit_rejections_total",
		Help: "Requests refused by a rate limit quota",
	}, []string{"quota", "kind"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		ObserveQuery(operation, table, start)
	}
}

// TrackSearch returns a function that records search latency when called.
func TrackSearch(kind string) func(cacheHit bool) {
	start := time.Now()
	return func(cacheHit bool) {
		label := "miss"
		if cacheHit {
			label = "hit"
		}
		SearchLatency.WithLabelValues(kind, label).Observe(time.Since(start).Seconds())
	}
}
