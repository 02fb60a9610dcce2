// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto at
package initialization and exposed by internal/api at /metrics.

# Available Metrics

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
  - api_active_requests: In-flight requests (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter)

Synchronization Metrics:
  - sync_load_duration_seconds: Collection load latency (histogram)
    Labels: collection, mode (guest|account)
  - sync_load_errors_total: Failed collection loads (counter)
  - sync_remote_writes_total: Remote mutations by target and result (counter)
    Labels: target (account|profile), operation, result
  - sync_rollbacks_total: Optimistic mutations reverted after a failed remote leg
  - retry_attempts_total / retry_exhausted_total: Retry wrapper activity

Pending-Write Queue Metrics:
  - pending_queue_depth: Entries waiting for replay (gauge, label queue)
  - pending_replays_total: Replay outcomes (counter, labels queue, result)

Merge Metrics:
  - merge_runs_total: Login merges by result
  - merge_step_duration_seconds: Per-step latency (histogram, label step)
  - merge_step_results_total: Per-step outcome (counter, labels step, result)
  - merge_items_total: Items moved per step and collection

Local Store Metrics:
  - localstore_corrupt_documents_total: Documents that failed to parse
  - localstore_dropped_records_total: Records rejected by validation

Circuit Breaker Metrics:
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total: success, failure, rejected
  - circuit_breaker_consecutive_failures
  - circuit_breaker_state_transitions_total

# Usage

	start := time.Now()
	err := store.UpsertItems(ctx, profile.Favorites, owner, items)
	metrics.RecordRemoteWrite(metrics.TargetProfile, "favorites_upsert", err)
*/
package metrics
