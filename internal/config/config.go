// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file and env on top.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
	"time"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBDriver selects the SQL backend: sqlite or postgres.
	DBDriver string `koanf:"db_driver"`

	// DBDSN is the driver-specific data source name.
	DBDSN string `koanf:"db_dsn"`

	// RedisAddr enables the Redis snapshot mirror when non-empty, e.g. "localhost:6379".
	RedisAddr string `koanf:"redis_addr"`

	// RedisPassword authenticates against Redis when required.
	RedisPassword string `koanf:"redis_password"`

	// RedisDB selects the Redis logical database.
	RedisDB int `koanf:"redis_db"`

	// JWTSecret verifies bearer tokens. Empty enables the development
	// header-based identity fallback.
	JWTSecret string `koanf:"jwt_secret"`

	// WinThresholds maps game types to the score percentage counting as a win.
	WinThresholds map[string]float64 `koanf:"win_thresholds"`

	// DefaultWinThreshold applies to game types absent from WinThresholds.
	DefaultWinThreshold float64 `koanf:"default_win_threshold"`

	// RecencyDecay is the per-step weight multiplier for older skill scores.
	RecencyDecay float64 `koanf:"recency_decay"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// DefaultLeaderboardLimit applies when no limit is requested.
	DefaultLeaderboardLimit int `koanf:"default_leaderboard_limit"`

	// MaxPageSize caps per_page on result listings.
	MaxPageSize int `koanf:"max_page_size"`

	// SnapshotTTLMS bounds how long a leaderboard snapshot is served as fresh.
	SnapshotTTLMS int `koanf:"snapshot_ttl_ms"`

	// RefreshQueueSize bounds the snapshot refresh queue.
	RefreshQueueSize int `koanf:"refresh_queue_size"`

	// RefreshWorkers sets the number of snapshot rebuild workers.
	RefreshWorkers int `koanf:"refresh_workers"`

	// DedupeSize sets the expected capacity of the duplicate-submission filter.
	DedupeSize int `koanf:"dedupe_size"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		LogFormat:               "text",
		Addr:                    ":9080",
		DBDriver:                "sqlite",
		DBDSN:                   "pitchrank.db",
		RedisAddr:               "",
		RedisPassword:           "",
		RedisDB:                 0,
		JWTSecret:               "",
		WinThresholds:           map[string]float64{},
		DefaultWinThreshold:     50,
		RecencyDecay:            0.9,
		MaxLeaderboardLimit:     100,
		DefaultLeaderboardLimit: 50,
		MaxPageSize:             100,
		SnapshotTTLMS:           5_000,
		RefreshQueueSize:        1_024,
		RefreshWorkers:          runtime.NumCPU(),
		DedupeSize:              500_000,
	}
}

// WinThresholdFor returns the winning score percentage for a game type,
// falling back to the default threshold.
func (c *Config) WinThresholdFor(gameType string) float64 {
	if t, ok := c.WinThresholds[gameType]; ok {
		return t
	}
	return c.DefaultWinThreshold
}

// SnapshotTTL returns the snapshot freshness bound as a duration.
func (c *Config) SnapshotTTL() time.Duration {
	return time.Duration(c.SnapshotTTLMS) * time.Millisecond
}

// MirrorEnabled reports whether the Redis snapshot mirror is configured.
func (c *Config) MirrorEnabled() bool {
	return c.RedisAddr != ""
}
