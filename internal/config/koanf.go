// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/marquee/config.yaml",
	"/etc/marquee/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
func defaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:    "badger",
			Path:       "/data/local",
			SyncWrites: true,
			GCInterval: 10 * time.Minute,
		},
		Profile: ProfileConfig{
			Driver:          "sqlite",
			DSN:             "file:/data/profile.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)",
			MaxOpenConns:    1, // SQLite serializes writers
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
			Migrate:         true,
		},
		Account: AccountConfig{
			BaseURL:        "https://api.themoviedb.org/3",
			Timeout:        15 * time.Second,
			RateLimit:      40,
			RateBurst:      20,
			BreakerTimeout: time.Minute,
		},
		Sync: SyncConfig{
			MaxRetries:         2,
			RetryBaseDelay:     time.Second,
			QueueEpisodeWrites: false,
			HistoryLimit:       50,
			RefreshInterval:    5 * time.Minute,
			MergeConcurrency:   8,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			Environment:     "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// The result is validated before it is returned.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while YAML already yields slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	"storage_backend":     "storage.backend",
	"storage_path":        "storage.path",
	"storage_sync_writes": "storage.sync_writes",
	"storage_gc_interval": "storage.gc_interval",

	"profile_driver":            "profile.driver",
	"profile_dsn":               "profile.dsn",
	"database_url":              "profile.dsn",
	"profile_max_open_conns":    "profile.max_open_conns",
	"profile_max_idle_conns":    "profile.max_idle_conns",
	"profile_conn_max_lifetime": "profile.conn_max_lifetime",
	"profile_migrate":           "profile.migrate",

	"tmdb_base_url":        "account.base_url",
	"tmdb_api_key":         "account.api_key",
	"tmdb_timeout":         "account.timeout",
	"tmdb_rate_limit":      "account.rate_limit",
	"tmdb_rate_burst":      "account.rate_burst",
	"tmdb_breaker_timeout": "account.breaker_timeout",

	"sync_max_retries":          "sync.max_retries",
	"sync_retry_base_delay":     "sync.retry_base_delay",
	"sync_queue_episode_writes": "sync.queue_episode_writes",
	"sync_history_limit":        "sync.history_limit",
	"sync_refresh_interval":     "sync.refresh_interval",
	"sync_merge_concurrency":    "sync.merge_concurrency",

	"http_host":           "server.host",
	"http_port":           "server.port",
	"http_timeout":        "server.timeout",
	"shutdown_timeout":    "server.shutdown_timeout",
	"cors_origins":        "server.cors_origins",
	"rate_limit_requests": "server.rate_limit_requests",
	"rate_limit_window":   "server.rate_limit_window",
	"disable_rate_limit":  "server.rate_limit_disabled",
	"environment":         "server.environment",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - TMDB_API_KEY -> account.api_key
//   - PROFILE_DSN -> profile.dsn
//   - SYNC_QUEUE_EPISODE_WRITES -> sync.queue_episode_writes
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	// Unmapped keys are skipped so unrelated variables cannot pollute config.
	return ""
}
