// Package metrics provides Prometheus metrics for the pitchrank results service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the pitchrank service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Core Business Metrics - Result intake and lifecycle
	resultsSubmitted   prometheus.Counter
	resultsDuplicate   prometheus.Counter
	verificationsTotal *prometheus.CounterVec
	disputesTotal      prometheus.Counter
	archivalsTotal     prometheus.Counter

	// Recompute Metrics - Statistics aggregation
	recomputeTotal     prometheus.Counter
	recomputeDuration  prometheus.Histogram
	recomputeConflicts prometheus.Counter
	recomputeErrors    prometheus.Counter

	// Leaderboard Metrics - Partition snapshot builds
	leaderboardBuilds        prometheus.Counter
	leaderboardBuildDuration prometheus.Histogram
	leaderboardErrors        prometheus.Counter
	rankedPlayers            *prometheus.GaugeVec
	snapshotLastUnix         prometheus.Gauge
	snapshotCacheHits        prometheus.Counter
	snapshotCacheMisses      prometheus.Counter
	snapshotServedStale      prometheus.Counter
	snapshotMirrorPublishes  prometheus.Counter
	snapshotMirrorErrors     prometheus.Counter

	// Refresh Metrics - Rebuild queue and worker pool
	refreshQueueDepth    prometheus.Gauge
	refreshQueueCapacity prometheus.Gauge
	refreshEnqueued      prometheus.Counter
	refreshCoalesced     prometheus.Counter
	refreshDropped       prometheus.Counter
	refreshWorkerActive  prometheus.Gauge
	refreshLatency       prometheus.Histogram
	refreshErrors        prometheus.Counter

	// Store Metrics - SQL repository performance
	storeQueryLatency prometheus.Histogram
	storeExecLatency  prometheus.Histogram
	storeErrors       prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Enhanced Error Metrics - Detailed error tracking
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pitchrank",
		subsystem:        "results",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Core Business Metrics - Result intake and lifecycle
	m.resultsSubmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submitted_total",
		Help:      "Total number of game results accepted for storage",
	})

	m.resultsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "duplicate_total",
		Help:      "Total number of submissions matching an already stored session result",
	})

	m.verificationsTotal = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "verifications_total",
			Help:      "Total number of coach verification decisions by resolution",
		},
		[]string{"resolution"},
	)

	m.disputesTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "disputes_total",
		Help:      "Total number of results moved into dispute",
	})

	m.archivalsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "archivals_total",
		Help:      "Total number of results archived",
	})

	// Recompute Metrics - Statistics aggregation
	m.recomputeTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_total",
		Help:      "Total number of per-player statistics recomputations",
	})

	m.recomputeDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_duration_milliseconds",
		Help:      "Histogram of statistics recomputation duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.recomputeConflicts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_conflicts_total",
		Help:      "Total number of optimistic version conflicts while saving statistics",
	})

	m.recomputeErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_errors_total",
		Help:      "Total number of failed statistics recomputations",
	})

	// Leaderboard Metrics - Partition snapshot builds
	m.leaderboardBuilds = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_builds_total",
		Help:      "Total number of leaderboard partition snapshot builds",
	})

	m.leaderboardBuildDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_build_duration_milliseconds",
		Help:      "Leaderboard partition build duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.leaderboardErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_errors_total",
		Help:      "Total number of failed leaderboard partition builds",
	})

	m.rankedPlayers = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "ranked_players",
			Help:      "Number of players ranked in a leaderboard partition",
		},
		[]string{"partition"},
	)

	m.snapshotLastUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_last_unix",
		Help:      "Unix timestamp of the last leaderboard snapshot publish",
	})

	m.snapshotCacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_cache_hits_total",
		Help:      "Total number of leaderboard reads served from a fresh snapshot",
	})

	m.snapshotCacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_cache_misses_total",
		Help:      "Total number of leaderboard reads that had to build a snapshot",
	})

	m.snapshotServedStale = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_served_stale_total",
		Help:      "Total number of leaderboard reads served from a stale snapshot while a rebuild ran",
	})

	m.snapshotMirrorPublishes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_mirror_publishes_total",
		Help:      "Total number of snapshots mirrored to Redis",
	})

	m.snapshotMirrorErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_mirror_errors_total",
		Help:      "Total number of failed Redis mirror publishes",
	})

	// Refresh Metrics - Rebuild queue and worker pool
	m.refreshQueueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_queue_depth",
		Help:      "Current depth of the snapshot refresh queue (backlog indicator)",
	})

	m.refreshQueueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_queue_capacity",
		Help:      "Maximum snapshot refresh queue capacity",
	})

	m.refreshEnqueued = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_enqueued_total",
		Help:      "Total number of partition refreshes enqueued",
	})

	m.refreshCoalesced = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_coalesced_total",
		Help:      "Total number of refresh requests coalesced into an already pending one",
	})

	m.refreshDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_dropped_total",
		Help:      "Total number of refresh requests dropped because the queue was full",
	})

	m.refreshWorkerActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_worker_active",
		Help:      "Number of refresh workers currently rebuilding a partition",
	})

	m.refreshLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_latency_milliseconds",
		Help:      "Refresh worker processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.refreshErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_errors_total",
		Help:      "Total number of refresh worker errors",
	})

	// Store Metrics - SQL repository performance
	m.storeQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_query_latency_milliseconds",
		Help:      "Store read operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeExecLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_exec_latency_milliseconds",
		Help:      "Store write operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_errors_total",
		Help:      "Total number of store operation errors",
	})

	// HTTP Performance Metrics - User experience indicators
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds (user experience)",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// Enhanced Error Metrics - Detailed error tracking
	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)

	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_type_total",
			Help:      "Total number of errors by type",
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total number of errors by endpoint",
		},
		[]string{"endpoint", "method", "error_type"},
	)
}

// Result lifecycle metric functions.

// RecordResultSubmitted increments the accepted submissions counter.
func RecordResultSubmitted() {
	globalManager.resultsSubmitted.Inc()
}

// RecordResultDuplicate increments the duplicate submissions counter.
func RecordResultDuplicate() {
	globalManager.resultsDuplicate.Inc()
}

// RecordVerification records a coach verification decision.
func RecordVerification(resolution string) {
	globalManager.verificationsTotal.WithLabelValues(resolution).Inc()
}

// RecordDispute increments the disputes counter.
func RecordDispute() {
	globalManager.disputesTotal.Inc()
}

// RecordArchival increments the archivals counter.
func RecordArchival() {
	globalManager.archivalsTotal.Inc()
}

// Recompute metric functions.

// RecordRecompute increments the recompute counter.
func RecordRecompute() {
	globalManager.recomputeTotal.Inc()
}

// RecordRecomputeDuration records a recompute duration in milliseconds.
func RecordRecomputeDuration(latencyMs float64) {
	globalManager.recomputeDuration.Observe(latencyMs)
}

// RecordRecomputeConflict increments the optimistic conflict counter.
func RecordRecomputeConflict() {
	globalManager.recomputeConflicts.Inc()
}

// RecordRecomputeError increments the recompute error counter.
func RecordRecomputeError() {
	globalManager.recomputeErrors.Inc()
}

// Leaderboard metric functions.

// RecordLeaderboardBuild increments the partition build counter.
func RecordLeaderboardBuild() {
	globalManager.leaderboardBuilds.Inc()
}

// RecordLeaderboardBuildDuration records a partition build duration in milliseconds.
func RecordLeaderboardBuildDuration(latencyMs float64) {
	globalManager.leaderboardBuildDuration.Observe(latencyMs)
}

// RecordLeaderboardError increments the leaderboard error counter.
func RecordLeaderboardError() {
	globalManager.leaderboardErrors.Inc()
}

// UpdateRankedPlayers sets the number of ranked players for a partition.
func UpdateRankedPlayers(partition string, count int) {
	globalManager.rankedPlayers.WithLabelValues(partition).Set(float64(count))
}

// UpdateSnapshotLastUnix sets the timestamp of the last snapshot publish.
func UpdateSnapshotLastUnix(unix int64) {
	globalManager.snapshotLastUnix.Set(float64(unix))
}

// RecordSnapshotCacheHit increments the fresh snapshot hit counter.
func RecordSnapshotCacheHit() {
	globalManager.snapshotCacheHits.Inc()
}

// RecordSnapshotCacheMiss increments the snapshot miss counter.
func RecordSnapshotCacheMiss() {
	globalManager.snapshotCacheMisses.Inc()
}

// RecordSnapshotServedStale increments the stale-serve counter.
func RecordSnapshotServedStale() {
	globalManager.snapshotServedStale.Inc()
}

// RecordSnapshotMirrorPublish increments the Redis mirror publish counter.
func RecordSnapshotMirrorPublish() {
	globalManager.snapshotMirrorPublishes.Inc()
}

// RecordSnapshotMirrorError increments the Redis mirror error counter.
func RecordSnapshotMirrorError() {
	globalManager.snapshotMirrorErrors.Inc()
}

// Refresh queue and worker metric functions.

// UpdateRefreshQueueDepth sets the current refresh queue depth.
func UpdateRefreshQueueDepth(depth int) {
	globalManager.refreshQueueDepth.Set(float64(depth))
}

// UpdateRefreshQueueCapacity sets the maximum refresh queue capacity.
func UpdateRefreshQueueCapacity(capacity int) {
	globalManager.refreshQueueCapacity.Set(float64(capacity))
}

// RecordRefreshEnqueued increments the refresh enqueue counter.
func RecordRefreshEnqueued() {
	globalManager.refreshEnqueued.Inc()
}

// RecordRefreshCoalesced increments the coalesced refresh counter.
func RecordRefreshCoalesced() {
	globalManager.refreshCoalesced.Inc()
}

// RecordRefreshDropped increments the dropped refresh counter.
func RecordRefreshDropped() {
	globalManager.refreshDropped.Inc()
}

// UpdateRefreshWorkerActive sets the number of busy refresh workers.
func UpdateRefreshWorkerActive(count int) {
	globalManager.refreshWorkerActive.Set(float64(count))
}

// RecordRefreshLatency records refresh worker latency in milliseconds.
func RecordRefreshLatency(latencyMs float64) {
	globalManager.refreshLatency.Observe(latencyMs)
}

// RecordRefreshError increments the refresh error counter.
func RecordRefreshError() {
	globalManager.refreshErrors.Inc()
}

// Store metric functions.

// RecordStoreQueryLatency records a store read latency in milliseconds.
func RecordStoreQueryLatency(latencyMs float64) {
	globalManager.storeQueryLatency.Observe(latencyMs)
}

// RecordStoreExecLatency records a store write latency in milliseconds.
func RecordStoreExecLatency(latencyMs float64) {
	globalManager.storeExecLatency.Observe(latencyMs)
}

// RecordStoreError increments the store error counter.
func RecordStoreError() {
	globalManager.storeErrors.Inc()
}

// HTTP metric functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Enhanced error metric functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
