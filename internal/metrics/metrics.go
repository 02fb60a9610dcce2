// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Remote write targets.
const (
	TargetAccount = "account"
	TargetProfile = "profile"
)

// Result label values.
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultRejected = "rejected"
	ResultSkipped  = "skipped"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Synchronizer Metrics
	SyncLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sync_load_duration_seconds",
			Help:    "Duration of collection loads in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"collection", "mode"}, // mode: "guest", "account"
	)

	SyncLoadErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_load_errors_total",
			Help: "Total number of collection loads that fell back to an empty collection",
		},
		[]string{"collection"},
	)

	SyncRemoteWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_remote_writes_total",
			Help: "Total number of remote mutations by target and result",
		},
		[]string{"target", "operation", "result"},
	)

	SyncRollbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_rollbacks_total",
			Help: "Total number of optimistic mutations reverted after a failed remote write",
		},
		[]string{"collection"},
	)

	// Retry Metrics
	RetryAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of retried invocations (excludes the first attempt)",
		},
	)

	RetryExhausted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retry_exhausted_total",
			Help: "Total number of operations that failed after every retry",
		},
	)

	// Pending-Write Queue Metrics
	PendingQueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pending_queue_depth",
			Help: "Current number of pending writes awaiting replay",
		},
		[]string{"queue"},
	)

	PendingReplays = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pending_replays_total",
			Help: "Total number of pending write replays by result",
		},
		[]string{"queue", "result"},
	)

	// Merge Metrics
	MergeRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "merge_runs_total",
			Help: "Total number of login merges by result",
		},
		[]string{"result"}, // "completed", "partial", "duplicate"
	)

	MergeStepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "merge_step_duration_seconds",
			Help:    "Duration of each login merge step in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
		[]string{"step"},
	)

	MergeStepResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "merge_step_results_total",
			Help: "Total number of merge step outcomes",
		},
		[]string{"step", "result"},
	)

	MergeItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "merge_items_total",
			Help: "Total number of items moved by the login merge",
		},
		[]string{"step", "collection"},
	)

	// Local Store Metrics
	LocalStoreCorruptDocuments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "localstore_corrupt_documents_total",
			Help: "Total number of local documents that failed to parse",
		},
		[]string{"key"},
	)

	LocalStoreDroppedRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "localstore_dropped_records_total",
			Help: "Total number of local records dropped by validation",
		},
		[]string{"key"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRateLimitHit counts a 429 answered for endpoint.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// TrackActiveRequest increments or decrements the active request gauge
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordLoad records a collection load. A non-nil err means the collection fell back to empty.
func RecordLoad(collection, mode string, duration time.Duration, err error) {
	SyncLoadDuration.WithLabelValues(collection, mode).Observe(duration.Seconds())
	if err != nil {
		SyncLoadErrors.WithLabelValues(collection).Inc()
	}
}

// RecordRemoteWrite records the outcome of one remote mutation.
func RecordRemoteWrite(target, operation string, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	SyncRemoteWrites.WithLabelValues(target, operation, result).Inc()
}

// RecordRemoteRejected records a remote write answered with a negative result.
func RecordRemoteRejected(target, operation string) {
	SyncRemoteWrites.WithLabelValues(target, operation, ResultRejected).Inc()
}

// RecordRollback records a reverted optimistic mutation.
func RecordRollback(collection string) {
	SyncRollbacks.WithLabelValues(collection).Inc()
}

// RecordRetry records one retried invocation.
func RecordRetry() {
	RetryAttempts.Inc()
}

// RecordRetryExhausted records an operation that ran out of retries.
func RecordRetryExhausted() {
	RetryExhausted.Inc()
}

// SetPendingDepth updates the depth gauge of a pending-write queue.
func SetPendingDepth(queue string, depth int) {
	PendingQueueDepth.WithLabelValues(queue).Set(float64(depth))
}

// RecordPendingReplay records a single pending-write replay.
func RecordPendingReplay(queue string, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	PendingReplays.WithLabelValues(queue, result).Inc()
}

// RecordMergeStep records the duration and outcome of one login merge step.
func RecordMergeStep(step string, duration time.Duration, err error) {
	MergeStepDuration.WithLabelValues(step).Observe(duration.Seconds())
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	MergeStepResults.WithLabelValues(step, result).Inc()
}

// RecordMergeItems adds n to the items moved by a merge step for a collection.
func RecordMergeItems(step, collection string, n int) {
	if n <= 0 {
		return
	}
	MergeItems.WithLabelValues(step, collection).Add(float64(n))
}

// RecordMergeRun records a finished (or refused) login merge.
func RecordMergeRun(result string) {
	MergeRuns.WithLabelValues(result).Inc()
}

// RecordLocalDecode records parse problems found while reading a local document.
func RecordLocalDecode(key string, corrupt bool, dropped int) {
	if corrupt {
		LocalStoreCorruptDocuments.WithLabelValues(key).Inc()
	}
	if dropped > 0 {
		LocalStoreDroppedRecords.WithLabelValues(key).Add(float64(dropped))
	}
}
