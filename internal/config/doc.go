// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package config provides centralized configuration management for Marquee.

Configuration is layered with Koanf v2:

 1. Defaults from defaultConfig()
 2. An optional YAML file (CONFIG_PATH, then config.yaml / config.yml in the
    working directory, then /etc/marquee/)
 3. Environment variables, mapped explicitly by envTransformFunc

Unmapped environment variables are ignored.

# Sections

  - storage: Local Store backend (badger or memory), path, value-log GC
  - profile: Profile Store driver (sqlite or postgres), DSN, pool, migrations
  - account: Account Service base URL, API key, timeout, client rate limit
  - sync: retry bound and delay, episode queueing, history cap, refresh interval
  - server: HTTP listener, CORS, API rate limit
  - logging: level, format, caller

# Environment Variables

	STORAGE_BACKEND, STORAGE_PATH, STORAGE_SYNC_WRITES, STORAGE_GC_INTERVAL
	PROFILE_DRIVER, PROFILE_DSN, PROFILE_MAX_OPEN_CONNS, PROFILE_MIGRATE
	TMDB_BASE_URL, TMDB_API_KEY, TMDB_TIMEOUT, TMDB_RATE_LIMIT, TMDB_RATE_BURST
	SYNC_MAX_RETRIES, SYNC_RETRY_BASE_DELAY, SYNC_QUEUE_EPISODE_WRITES,
	SYNC_HISTORY_LIMIT, SYNC_REFRESH_INTERVAL, SYNC_MERGE_CONCURRENCY
	HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT, SHUTDOWN_TIMEOUT, CORS_ORIGINS,
	RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, ENVIRONMENT
	LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Usage

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
*/
package config
