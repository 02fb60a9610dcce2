// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Marquee server keeps a user's movie and TV collections in sync between the
device-local store, the Account Service and the Profile Store, and exposes
them over a JSON API.

Startup order:

 1. Configuration (koanf: defaults, config.yaml, environment)
 2. Local Store (Badger on disk, or memory)
 3. Profile Store (SQLite or PostgreSQL, migrations via goose)
 4. Account Service client (rate limited, circuit breaker)
 5. Sync engine: restores a saved session and loads every collection
 6. Supervisor tree: HTTP server, periodic refresh, Local Store GC

SIGINT or SIGTERM cancels the tree; in-flight requests get
server.shutdown_timeout to finish before the stores are closed.

Example:

	export TMDB_API_KEY=your-tmdb-key
	export PROFILE_DSN=file:/var/lib/marquee/profile.db
	./marquee
*/
package main
