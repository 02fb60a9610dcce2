// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package account is the Account Service client: a typed wrapper over the TMDB v3
account, authentication, rating and list endpoints.

While a Session exists the Account Service is the system of record for
favorites, watchlist and ratings. The client follows a few uniform rules:

  - No session token: reads return an empty Page and writes return false,
    without any network I/O.
  - A 4xx answer to a write is a rejection: (false, nil), logged.
  - Transport failures and 5xx answers are errors and count against the
    circuit breaker.

Every request passes a client-side rate limiter (golang.org/x/time/rate) and a
circuit breaker (github.com/sony/gobreaker/v2) whose state is exported to
Prometheus.

Paged reads are collected with FetchAll, which walks page 1..total_pages.
*/
package account
