// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "momentum_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "momentum_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ProofFilesStored counts proof files accepted, by media kind.
	ProofFilesStored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "momentum_proof_files_stored_total",
		Help: "Total number of proof files written to storage",
	}, []string{"kind"})

	// ProofUploadsRejected counts upload batches refused before anything was written.
	ProofUploadsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "momentum_proof_uploads_rejected_total",
		Help: "Total number of rejected proof upload batches by reason",
	}, []string{"reason"})

	// HoursRecomputed counts project hour aggregate refreshes.
	HoursRecomputed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "momentum_project_hours_recomputed_total",
		Help: "Total number of project hour aggregate recomputations",
	})

	// CleanupTasks counts orphaned artifact cleanups by outcome.
	CleanupTasks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "momentum_cleanup_tasks_total",
		Help: "Total number of storage cleanup attempts by outcome",
	}, []string{"outcome"})

	// CacheLookups counts cache-aside lookups by cache name and result.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "momentum_cache_lookups_total",
		Help: "Total number of cache-aside lookups by result",
	}, []string{"cache", "result"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
