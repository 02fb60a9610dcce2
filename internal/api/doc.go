// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package api exposes the sync engine over HTTP.

Routes live under /api/v1 and answer with the APIResponse envelope:

	{"success": true, "data": ..., "meta": {"request_id": "...", "timestamp": "..."}}

Mutations follow the engine's optimistic model. The local state changes
before the response is written and the remote write continues after it.
By default a mutation answers 202 with the new local value; with ?wait=true
the handler waits for the remote write and reports its outcome in the
"synced" and "sync_error" fields. Remote failures never turn into HTTP
errors; only malformed or invalid requests do.

The router carries the chi middleware stack: request IDs wired into the
logging context, panic recovery, CORS, per-IP rate limits via httprate,
security headers and Prometheus request metrics. /metrics serves the
Prometheus registry.
*/
package api
