package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if PITCHRANK_CONFIG is set
//  3. env (prefix PITCHRANK_)
func Load(ctx context.Context) (*Config, error) {
	_ = ctx

	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("PITCHRANK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: PITCHRANK_ADDR, PITCHRANK_DB_DRIVER, ...
	// Map env keys like PITCHRANK_DB_DRIVER -> db_driver (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("PITCHRANK_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "pitchrank_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations the service cannot run with.
func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.DBDriver != "sqlite" && c.DBDriver != "postgres" {
		return fmt.Errorf("%w: db_driver must be sqlite or postgres, got %q", ErrInvalidConfig, c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("%w: db_dsn must not be empty", ErrInvalidConfig)
	}
	if c.RecencyDecay <= 0 || c.RecencyDecay > 1 {
		return fmt.Errorf("%w: recency_decay must be in (0,1], got %v", ErrInvalidConfig, c.RecencyDecay)
	}
	if c.DefaultWinThreshold < 0 || c.DefaultWinThreshold > 100 {
		return fmt.Errorf("%w: default_win_threshold must be in [0,100], got %v", ErrInvalidConfig, c.DefaultWinThreshold)
	}
	for gameType, threshold := range c.WinThresholds {
		if threshold < 0 || threshold > 100 {
			return fmt.Errorf("%w: win_thresholds[%s] must be in [0,100], got %v", ErrInvalidConfig, gameType, threshold)
		}
	}
	if c.MaxLeaderboardLimit < 1 {
		return fmt.Errorf("%w: max_leaderboard_limit must be positive, got %d", ErrInvalidConfig, c.MaxLeaderboardLimit)
	}
	if c.DefaultLeaderboardLimit < 1 || c.DefaultLeaderboardLimit > c.MaxLeaderboardLimit {
		return fmt.Errorf("%w: default_leaderboard_limit must be in [1,%d], got %d",
			ErrInvalidConfig, c.MaxLeaderboardLimit, c.DefaultLeaderboardLimit)
	}
	if c.MaxPageSize < 1 {
		return fmt.Errorf("%w: max_page_size must be positive, got %d", ErrInvalidConfig, c.MaxPageSize)
	}
	if c.RefreshQueueSize < 1 {
		return fmt.Errorf("%w: refresh_queue_size must be positive, got %d", ErrInvalidConfig, c.RefreshQueueSize)
	}
	if c.RefreshWorkers < 1 {
		return fmt.Errorf("%w: refresh_workers must be positive, got %d", ErrInvalidConfig, c.RefreshWorkers)
	}
	if c.DedupeSize < 1 {
		return fmt.Errorf("%w: dedupe_size must be positive, got %d", ErrInvalidConfig, c.DedupeSize)
	}
	return nil
}
