package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	service "github.com/lfalegacy/pitchrank/internal/app"
	"github.com/lfalegacy/pitchrank/internal/domain/model"
	"github.com/lfalegacy/pitchrank/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init("text")
	if err != nil {
		panic(err)
	}
}

// newStartedService builds a service over a throwaway sqlite file and
// starts it. Cleanup stops the service and removes the file.
func newStartedService(t *testing.T, opts ...service.Option) (*service.Service, context.Context) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	base := []service.Option{
		service.WithDatabase("sqlite", filepath.Join(t.TempDir(), "results.db")),
		service.WithRefreshWorkers(2),
		service.WithRefreshQueueSize(256),
		service.WithSnapshotTTL(time.Hour),
	}
	svc := service.New(append(base, opts...)...)
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc, ctx
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should report defaults before starting", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["databaseDriver"], ShouldEqual, "sqlite")
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithDatabase("sqlite", "custom.db"),
			service.WithRefreshWorkers(8),
			service.WithRefreshQueueSize(50_000),
			service.WithDedupeSize(25_000),
			service.WithWinThresholds(map[string]float64{"accuracy": 60}, 55),
			service.WithRecencyDecay(0.8),
			service.WithSnapshotTTL(10*time.Second),
			service.WithLeaderboardLimits(20, 200),
			service.WithMaxPageSize(40),
		)

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats()
			So(stats["refreshWorkers"], ShouldEqual, 8)
			So(stats["refreshQueueCapacity"], ShouldEqual, 50_000)
			So(stats["dedupeSize"], ShouldEqual, 25_000)
		})
	})
}

func TestService_Start(t *testing.T) {
	Convey("Given a service over a sqlite store", t, func() {
		svc, ctx := newStartedService(t)

		Convey("Then it should be marked as started", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, true)
		})

		Convey("And a second start should be a no-op", func() {
			So(svc.Start(ctx), ShouldBeNil)
		})

		Convey("And the store should answer pings", func() {
			So(svc.Ping(ctx), ShouldBeNil)
		})
	})
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, ctx := newStartedService(t)
		So(svc.Ping(ctx), ShouldBeNil)

		Convey("When stopping the service", func() {
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, false)
			})

			Convey("And a second stop should be safe", func() {
				svc.Stop()
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_PingBeforeStart(t *testing.T) {
	Convey("Given a service that was never started", t, func() {
		svc := service.New()

		Convey("Then pings should fail", func() {
			So(svc.Ping(context.Background()), ShouldNotBeNil)
		})
	})
}

func TestService_GetStats(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, ctx := newStartedService(t)

		Convey("When fetching service stats", func() {
			stats := svc.GetStats()

			Convey("Then it should expose the runtime gauges", func() {
				So(stats["started"], ShouldEqual, true)
				So(stats["refreshQueueLength"], ShouldEqual, 0)
				So(stats["cachedPartitions"], ShouldEqual, 0)
				So(stats["dedupeEntries"], ShouldEqual, int64(0))
				So(stats["mirrorEnabled"], ShouldEqual, false)
			})
		})

		Convey("When a submission and a board read have happened", func() {
			actor := model.Actor{UserID: "stats-user", Roles: []string{model.RolePlayer}}
			_, _, err := svc.SubmitResult(ctx, actor, &model.GameResult{
				SessionID:  "stats-session",
				GameType:   model.GameTypeAccuracy,
				FinalScore: 70,
				MaxScore:   100,
			})
			So(err, ShouldBeNil)
			_, err = svc.Leaderboard(ctx, actor, leaderboardQuery("overall", "", "all_time", 0, 0))
			So(err, ShouldBeNil)

			Convey("Then the gauges should move", func() {
				stats := svc.GetStats()
				So(stats["dedupeEntries"], ShouldEqual, int64(1))
				So(stats["cachedPartitions"], ShouldEqual, 1)
			})
		})
	})
}
