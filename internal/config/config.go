// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Storage StorageConfig `koanf:"storage"`
	Profile ProfileConfig `koanf:"profile"`
	Account AccountConfig `koanf:"account"`
	Sync    SyncConfig    `koanf:"sync"`
	Server  ServerConfig  `koanf:"server"`
	Logging LoggingConfig `koanf:"logging"`
}

// StorageConfig configures the Local Store.
type StorageConfig struct {
	// Backend is "badger" (durable) or "memory" (lost on restart).
	Backend string `koanf:"backend"`

	// Path is the Badger directory.
	Path string `koanf:"path"`

	// SyncWrites fsyncs every local write.
	SyncWrites bool `koanf:"sync_writes"`

	// GCInterval is how often the Badger value log is compacted. 0 disables.
	GCInterval time.Duration `koanf:"gc_interval"`
}

// ProfileConfig configures the Profile Store connection.
type ProfileConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `koanf:"driver"`

	// DSN is the data source name passed to database/sql.
	DSN string `koanf:"dsn"`

	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`

	// Migrate applies embedded schema migrations at startup.
	Migrate bool `koanf:"migrate"`
}

// AccountConfig configures the Account Service (TMDB v3) client.
type AccountConfig struct {
	BaseURL string        `koanf:"base_url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`

	// RateLimit is the client-side request budget per second. 0 disables limiting.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`

	// BreakerTimeout is how long the circuit stays open before probing again.
	BreakerTimeout time.Duration `koanf:"breaker_timeout"`
}

// SyncConfig tunes the synchronizers.
type SyncConfig struct {
	// MaxRetries is the number of retries after the first attempt of a remote write.
	MaxRetries int `koanf:"max_retries"`

	// RetryBaseDelay is multiplied by the attempt number between retries.
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`

	// QueueEpisodeWrites stages failed episode toggles in the pending queue
	// instead of only logging them.
	QueueEpisodeWrites bool `koanf:"queue_episode_writes"`

	// HistoryLimit caps the recently viewed list.
	HistoryLimit int `koanf:"history_limit"`

	// RefreshInterval is the period of the background re-pull. 0 disables.
	RefreshInterval time.Duration `koanf:"refresh_interval"`

	// MergeConcurrency bounds parallel pushes during the login merge.
	MergeConcurrency int `koanf:"merge_concurrency"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_requests"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	RateLimitOff    bool          `koanf:"rate_limit_disabled"`
	Environment     string        `koanf:"environment"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsProduction reports whether the server runs with production checks.
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}
