package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogicum_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CacheLookups counts cache-aside lookups by key family and outcome (hit, miss).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogicum_cache_lookups_total",
		Help: "Cache-aside lookups by key family and outcome",
	}, []string{"family", "outcome"})

	// DatabaseQueryLatency records repository query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blogicum_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// PageRenders counts rendered pages by template and status class.
	PageRenders = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogicum_page_renders_total",
		Help: "Rendered HTML pages by template",
	}, []string{"template"})

	// ContentMutations counts successful writes by entity and action.
	ContentMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogicum_content_mutations_total",
		Help: "Successful create/update/delete operations by entity",
	}, []string{"entity", "action"})

	// OwnershipDenials counts edit/delete attempts by non-owners.
	OwnershipDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogicum_ownership_denials_total",
		Help: "Edit or delete attempts rejected because the requester is not the author",
	}, []string{"entity"})

	// AuthEvents counts login, logout and registration outcomes.
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogicum_auth_events_total",
		Help: "Authentication events by type and outcome",
	}, []string{"event", "outcome"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
