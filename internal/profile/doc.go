// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package profile is the Profile Store client: the relational per-user mirror of
the Account Service collections and the only store for tracker, list and RSS
state.

SQLStore runs on database/sql with either github.com/lib/pq (driver
"postgres") or modernc.org/sqlite (driver "sqlite"). The schema lives in
embedded goose migrations and is applied by Migrate. Queries are written once
for both dialects:

  - $n placeholders, each bound exactly once
  - INSERT ... ON CONFLICT (natural key) DO UPDATE SET col = excluded.col
  - INSERT ... ON CONFLICT DO NOTHING for insert-only merges
  - timestamps as BIGINT unix milliseconds

Every operation is scoped by an owner key (the Account Service user id).
With an empty owner, reads return empty results and writes are no-ops.
Batch writes run in a single transaction.
*/
package profile
