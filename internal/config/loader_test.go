package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/lfalegacy/pitchrank/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			// Clear any existing environment variables
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.DBDriver, convey.ShouldEqual, "sqlite")
				convey.So(cfg.DefaultWinThreshold, convey.ShouldEqual, 50)
				convey.So(cfg.RecencyDecay, convey.ShouldEqual, 0.9)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 500_000)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("PITCHRANK_ADDR", ":8080")
			_ = os.Setenv("PITCHRANK_DB_DRIVER", "postgres")
			_ = os.Setenv("PITCHRANK_DB_DSN", "postgres://pitchrank@localhost/pitchrank")
			_ = os.Setenv("PITCHRANK_RECENCY_DECAY", "0.8")
			_ = os.Setenv("PITCHRANK_REFRESH_WORKERS", "3")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DBDriver, convey.ShouldEqual, "postgres")
				convey.So(cfg.DBDSN, convey.ShouldEqual, "postgres://pitchrank@localhost/pitchrank")
				convey.So(cfg.RecencyDecay, convey.ShouldEqual, 0.8)
				convey.So(cfg.RefreshWorkers, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
db_driver: sqlite
db_dsn: "/tmp/ranks.db"
default_win_threshold: 55
recency_decay: 0.85
win_thresholds:
  speed: 66
snapshot_ttl_ms: 1500
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("PITCHRANK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DBDSN, convey.ShouldEqual, "/tmp/ranks.db")
				convey.So(cfg.DefaultWinThreshold, convey.ShouldEqual, 55)
				convey.So(cfg.RecencyDecay, convey.ShouldEqual, 0.85)
				convey.So(cfg.WinThresholds["speed"], convey.ShouldEqual, 66)
				convey.So(cfg.SnapshotTTLMS, convey.ShouldEqual, 1500)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
max_leaderboard_limit: 200
default_leaderboard_limit: 25
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("PITCHRANK_CONFIG", tmpFile)
			_ = os.Setenv("PITCHRANK_ADDR", ":8080") // This should override the file
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")             // Overridden by env
				convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 200)  // From file
				convey.So(cfg.DefaultLeaderboardLimit, convey.ShouldEqual, 25)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			invalidYaml := `invalid: yaml: content: [`
			tmpFile := createTempConfigFile(invalidYaml)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("PITCHRANK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("PITCHRANK_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("PITCHRANK_REFRESH_WORKERS", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigValidation(t *testing.T) {
	convey.Convey("Given configs that violate the invariants", t, func() {
		ctx := context.Background()

		cases := []struct {
			name  string
			key   string
			value string
		}{
			{"empty addr", "PITCHRANK_ADDR", ""},
			{"unknown db driver", "PITCHRANK_DB_DRIVER", "oracle"},
			{"empty dsn", "PITCHRANK_DB_DSN", ""},
			{"zero recency decay", "PITCHRANK_RECENCY_DECAY", "0"},
			{"decay above one", "PITCHRANK_RECENCY_DECAY", "1.5"},
			{"negative win threshold", "PITCHRANK_DEFAULT_WIN_THRESHOLD", "-1"},
			{"win threshold above 100", "PITCHRANK_DEFAULT_WIN_THRESHOLD", "101"},
			{"zero leaderboard limit", "PITCHRANK_MAX_LEADERBOARD_LIMIT", "0"},
			{"zero page size", "PITCHRANK_MAX_PAGE_SIZE", "0"},
			{"zero refresh queue", "PITCHRANK_REFRESH_QUEUE_SIZE", "0"},
			{"zero refresh workers", "PITCHRANK_REFRESH_WORKERS", "0"},
			{"zero dedupe size", "PITCHRANK_DEDUPE_SIZE", "0"},
		}

		for _, tc := range cases {
			convey.Convey("When loading with "+tc.name, func() {
				clearConfigEnvVars()
				_ = os.Setenv(tc.key, tc.value)
				defer clearConfigEnvVars()

				cfg, err := config.Load(ctx)

				convey.Convey("Then it should return an invalid config error", func() {
					convey.So(err, convey.ShouldNotBeNil)
					convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
					convey.So(cfg, convey.ShouldBeNil)
				})
			})
		}

		convey.Convey("When a default leaderboard limit exceeds the maximum", func() {
			clearConfigEnvVars()
			_ = os.Setenv("PITCHRANK_MAX_LEADERBOARD_LIMIT", "10")
			_ = os.Setenv("PITCHRANK_DEFAULT_LEADERBOARD_LIMIT", "20")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an invalid config error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"PITCHRANK_CONFIG",
		"PITCHRANK_ADDR",
		"PITCHRANK_DB_DRIVER",
		"PITCHRANK_DB_DSN",
		"PITCHRANK_REDIS_ADDR",
		"PITCHRANK_JWT_SECRET",
		"PITCHRANK_DEFAULT_WIN_THRESHOLD",
		"PITCHRANK_RECENCY_DECAY",
		"PITCHRANK_MAX_LEADERBOARD_LIMIT",
		"PITCHRANK_DEFAULT_LEADERBOARD_LIMIT",
		"PITCHRANK_MAX_PAGE_SIZE",
		"PITCHRANK_SNAPSHOT_TTL_MS",
		"PITCHRANK_REFRESH_QUEUE_SIZE",
		"PITCHRANK_REFRESH_WORKERS",
		"PITCHRANK_DEDUPE_SIZE",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "pitchrank-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
