// Package metrics provides Prometheus metrics for FlowState.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QueriesTotal counts query operations by outcome.
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flowstate",
			Name:      "queries_total",
			Help:      "Total number of query operations",
		},
		[]string{"operation", "code"},
	)

	// QueryDuration measures query operation duration.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "flowstate",
			Name:      "query_duration_seconds",
			Help:      "Duration of query operations in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
		[]string{"operation"},
	)

	// ArtifactLoadsTotal counts artifact load and reload attempts.
	ArtifactLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flowstate",
			Name:      "artifact_loads_total",
			Help:      "Total number of artifact loads",
		},
		[]string{"kind", "code"},
	)

	// CacheState is the artifact cache state (0 = unloaded, 1 = loaded, 2 = error).
	CacheState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "flowstate",
			Name:      "cache_state",
			Help:      "Artifact cache state (0 = unloaded, 1 = loaded, 2 = error)",
		},
	)

	// TimelineDays is the number of days in the loaded artifact.
	TimelineDays = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "flowstate",
			Name:      "timeline_days",
			Help:      "Number of days in the loaded artifact timeline",
		},
	)

	// BuildsTotal counts pipeline builds.
	BuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flowstate",
			Name:      "builds_total",
			Help:      "Total number of artifact builds",
		},
		[]string{"status"},
	)

	// BuildDuration measures pipeline build duration.
	BuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "flowstate",
			Name:      "build_duration_seconds",
			Help:      "Duration of artifact builds in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// ImportedRowsTotal counts ingested rows by table and outcome.
	ImportedRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flowstate",
			Name:      "imported_rows_total",
			Help:      "Total number of ingested CSV rows",
		},
		[]string{"table", "status"},
	)
)

// RecordQuery records one query operation.
func RecordQuery(operation, code string, duration float64) {
	QueriesTotal.WithLabelValues(operation, code).Inc()
	QueryDuration.WithLabelValues(operation).Observe(duration)
}

// RecordLoad records an artifact load. kind is "load" or "reload"; code is
// "ok" or an error code.
func RecordLoad(kind, code string) {
	ArtifactLoadsTotal.WithLabelValues(kind, code).Inc()
}

// SetCacheState publishes the cache state and, when loaded, its timeline size.
func SetCacheState(state int, days int) {
	CacheState.Set(float64(state))
	TimelineDays.Set(float64(days))
}

// RecordBuild records a pipeline build.
func RecordBuild(status string, duration float64) {
	BuildsTotal.WithLabelValues(status).Inc()
	BuildDuration.Observe(duration)
}

// RecordImport records imported and skipped rows for a table.
func RecordImport(table string, imported, skipped int) {
	ImportedRowsTotal.WithLabelValues(table, "imported").Add(float64(imported))
	ImportedRowsTotal.WithLabelValues(table, "skipped").Add(float64(skipped))
}
