// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateProfile(); err != nil {
		return err
	}
	if err := c.validateAccount(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case "memory":
		return nil
	case "badger":
		if c.Storage.Path == "" {
			return fmt.Errorf("STORAGE_PATH is required when STORAGE_BACKEND=badger")
		}
		if c.Storage.GCInterval < 0 {
			return fmt.Errorf("STORAGE_GC_INTERVAL must not be negative")
		}
		return nil
	default:
		return fmt.Errorf("STORAGE_BACKEND must be badger or memory, got: %s", c.Storage.Backend)
	}
}

func (c *Config) validateProfile() error {
	if c.Profile.Driver != "sqlite" && c.Profile.Driver != "postgres" {
		return fmt.Errorf("PROFILE_DRIVER must be sqlite or postgres, got: %s", c.Profile.Driver)
	}
	if c.Profile.DSN == "" {
		return fmt.Errorf("PROFILE_DSN is required")
	}
	if c.Profile.MaxOpenConns < 0 || c.Profile.MaxIdleConns < 0 {
		return fmt.Errorf("PROFILE_MAX_OPEN_CONNS and PROFILE_MAX_IDLE_CONNS must not be negative")
	}
	return nil
}

func (c *Config) validateAccount() error {
	if err := validateHTTPURL(c.Account.BaseURL, "TMDB_BASE_URL"); err != nil {
		return fmt.Errorf("TMDB_BASE_URL is invalid: %w", err)
	}
	if c.Account.APIKey == "" {
		return fmt.Errorf("TMDB_API_KEY is required")
	}
	if c.Account.Timeout <= 0 {
		return fmt.Errorf("TMDB_TIMEOUT must be positive")
	}
	if c.Account.RateLimit < 0 {
		return fmt.Errorf("TMDB_RATE_LIMIT must not be negative")
	}
	if c.Account.RateLimit > 0 && c.Account.RateBurst < 1 {
		return fmt.Errorf("TMDB_RATE_BURST must be at least 1 when TMDB_RATE_LIMIT is set")
	}
	return nil
}

// Sync limits
const (
	maxSyncRetries  = 10
	maxHistoryLimit = 1000
	maxMergeWorkers = 64
)

func (c *Config) validateSync() error {
	if c.Sync.MaxRetries < 0 || c.Sync.MaxRetries > maxSyncRetries {
		return fmt.Errorf("SYNC_MAX_RETRIES must be between 0 and %d", maxSyncRetries)
	}
	if c.Sync.RetryBaseDelay < 0 {
		return fmt.Errorf("SYNC_RETRY_BASE_DELAY must not be negative")
	}
	if c.Sync.HistoryLimit < 1 || c.Sync.HistoryLimit > maxHistoryLimit {
		return fmt.Errorf("SYNC_HISTORY_LIMIT must be between 1 and %d", maxHistoryLimit)
	}
	if c.Sync.RefreshInterval < 0 {
		return fmt.Errorf("SYNC_REFRESH_INTERVAL must not be negative")
	}
	if c.Sync.MergeConcurrency < 1 || c.Sync.MergeConcurrency > maxMergeWorkers {
		return fmt.Errorf("SYNC_MERGE_CONCURRENCY must be between 1 and %d", maxMergeWorkers)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if !c.Server.RateLimitOff && (c.Server.RateLimitReqs < 1 || c.Server.RateLimitWindow <= 0) {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}
	if c.Server.IsProduction() && c.hasWildcardCORS() {
		return fmt.Errorf("CORS_ORIGINS must not contain * when ENVIRONMENT=production")
	}
	return nil
}

func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Server.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error; got: %s", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got: %s", c.Logging.Format)
	}
}

// validateHTTPURL validates that a URL is an absolute http(s) base URL without query parameters.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}

	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}

	return nil
}
