package model_test

import (
	"testing"

	"github.com/lfalegacy/pitchrank/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClassifyPerformance(t *testing.T) {
	t.Parallel()

	Convey("Given the performance tiers", t, func() {
		cases := []struct {
			games   int
			average float64
			want    model.PerformanceLevel
		}{
			{0, 0, model.LevelBeginner},
			{4, 99, model.LevelBeginner},
			{5, 39.9, model.LevelBeginner},
			{5, 40, model.LevelIntermediate},
			{19, 95, model.LevelIntermediate},
			{20, 60, model.LevelAdvanced},
			{49, 90, model.LevelAdvanced},
			{50, 75, model.LevelExpert},
			{99, 92, model.LevelExpert},
			{100, 89.9, model.LevelExpert},
			{100, 90, model.LevelElite},
			{500, 97, model.LevelElite},
		}

		Convey("Then both volume and average gates must be met", func() {
			for _, tc := range cases {
				So(model.ClassifyPerformance(tc.games, tc.average), ShouldEqual, tc.want)
			}
		})
	})
}

func TestNewPlayerStatistics(t *testing.T) {
	t.Parallel()

	Convey("Given a player with no verified results", t, func() {
		stats := model.NewPlayerStatistics("user-9")

		Convey("Then the rollup is empty but fully initialized", func() {
			So(stats.UserID, ShouldEqual, "user-9")
			So(stats.TotalGames, ShouldEqual, 0)
			So(stats.TotalWins, ShouldEqual, 0)
			So(stats.OverallAverage, ShouldEqual, 0)
			So(stats.CurrentStreak, ShouldEqual, 0)
			So(stats.LongestStreak, ShouldEqual, 0)
			So(stats.PerformanceLevel, ShouldEqual, model.LevelBeginner)
			So(stats.SkillAverages, ShouldNotBeNil)
			So(stats.ByGameType, ShouldNotBeNil)
			So(stats.ByLocation, ShouldNotBeNil)
			So(stats.LastResultAt.IsZero(), ShouldBeTrue)
		})
	})
}
