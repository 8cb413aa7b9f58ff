package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/lfalegacy/pitchrank/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCategoryValidation(t *testing.T) {
	t.Parallel()

	Convey("Given leaderboard categories", t, func() {
		Convey("When the kind carries its required discriminator", func() {
			valid := []model.Category{
				model.OverallCategory(),
				{Kind: model.CategoryGameType, GameType: model.GameTypeSpeed},
				{Kind: model.CategorySkill, Skill: model.SkillTechnique},
				{Kind: model.CategoryLocation, LocationID: "loc-42"},
			}

			Convey("Then they all validate", func() {
				for _, c := range valid {
					So(c.Validate(), ShouldBeNil)
				}
			})
		})

		Convey("When the discriminator is missing or unknown", func() {
			invalid := []model.Category{
				{Kind: "best"},
				{Kind: model.CategoryGameType},
				{Kind: model.CategoryGameType, GameType: "freestyle"},
				{Kind: model.CategorySkill},
				{Kind: model.CategorySkill, Skill: "luck"},
				{Kind: model.CategoryLocation},
				{Kind: model.CategoryLocation, LocationID: "   "},
			}

			Convey("Then each is rejected as a validation error", func() {
				for _, c := range invalid {
					err := c.Validate()
					So(err, ShouldNotBeNil)
					So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
				}
			})
		})
	})
}

func TestCategoryKeys(t *testing.T) {
	t.Parallel()

	Convey("Given valid categories", t, func() {
		Convey("Then their keys are stable and unambiguous", func() {
			So(model.OverallCategory().Key(), ShouldEqual, "overall")
			So(model.Category{Kind: model.CategoryGameType, GameType: model.GameTypeAccuracy}.Key(), ShouldEqual, "game_type:accuracy")
			So(model.Category{Kind: model.CategorySkill, Skill: model.SkillPower}.Key(), ShouldEqual, "skill:power")
			So(model.Category{Kind: model.CategoryLocation, LocationID: "loc-7"}.Key(), ShouldEqual, "location:loc-7")
		})

		Convey("Then partition keys combine category and period", func() {
			key := model.NewPartitionKey(model.Category{Kind: model.CategorySkill, Skill: model.SkillAccuracy}, model.PeriodWeekly)
			So(key, ShouldEqual, model.PartitionKey("skill:accuracy|weekly"))
		})
	})
}

func TestParsePartitionKey(t *testing.T) {
	t.Parallel()

	Convey("Given partition keys built from categories", t, func() {
		categories := []model.Category{
			model.OverallCategory(),
			{Kind: model.CategoryGameType, GameType: model.GameTypeSpeed},
			{Kind: model.CategorySkill, Skill: model.SkillEndurance},
			{Kind: model.CategoryLocation, LocationID: "loc-7"},
			{Kind: model.CategoryLocation, LocationID: "region:north:pitch-3"},
		}

		Convey("Then parsing recovers the category and period", func() {
			for _, c := range categories {
				for _, p := range []model.Period{model.PeriodDaily, model.PeriodWeekly, model.PeriodMonthly, model.PeriodAllTime} {
					got, period, err := model.ParsePartitionKey(model.NewPartitionKey(c, p))
					So(err, ShouldBeNil)
					So(got, ShouldResemble, c)
					So(period, ShouldEqual, p)
				}
			}
		})
	})

	Convey("Given malformed partition keys", t, func() {
		Convey("Then each is rejected as a validation error", func() {
			for _, key := range []model.PartitionKey{
				"",
				"overall",
				"overall|fortnightly",
				"game_type:chess|daily",
				"skill:|weekly",
				"location:|monthly",
				"galaxy:andromeda|daily",
			} {
				_, _, err := model.ParsePartitionKey(key)
				So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
			}
		})
	})
}

func TestPeriodWindows(t *testing.T) {
	t.Parallel()

	// A Thursday afternoon.
	now := time.Date(2026, 3, 5, 15, 30, 45, 0, time.UTC)

	Convey("Given a reference instant on a Thursday", t, func() {
		Convey("When computing the daily window", func() {
			start, bounded := model.PeriodDaily.WindowStart(now)

			Convey("Then it starts at midnight UTC of the same day", func() {
				So(bounded, ShouldBeTrue)
				So(start, ShouldEqual, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))
			})
		})

		Convey("When computing the weekly window", func() {
			start, bounded := model.PeriodWeekly.WindowStart(now)

			Convey("Then it starts on the preceding Monday at midnight UTC", func() {
				So(bounded, ShouldBeTrue)
				So(start, ShouldEqual, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
				So(start.Weekday(), ShouldEqual, time.Monday)
			})
		})

		Convey("When computing the monthly window", func() {
			start, bounded := model.PeriodMonthly.WindowStart(now)

			Convey("Then it starts on the first of the month", func() {
				So(bounded, ShouldBeTrue)
				So(start, ShouldEqual, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
			})
		})

		Convey("When computing the all-time window", func() {
			_, bounded := model.PeriodAllTime.WindowStart(now)

			Convey("Then there is no lower bound", func() {
				So(bounded, ShouldBeFalse)
			})
		})
	})

	Convey("Given a Sunday, the weekly window still opens on Monday", t, func() {
		sunday := time.Date(2026, 3, 8, 23, 59, 0, 0, time.UTC)
		start, bounded := model.PeriodWeekly.WindowStart(sunday)

		So(bounded, ShouldBeTrue)
		So(start, ShouldEqual, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	})

	Convey("Given a Monday, the weekly window opens that same day", t, func() {
		monday := time.Date(2026, 3, 2, 0, 0, 1, 0, time.UTC)
		start, _ := model.PeriodWeekly.WindowStart(monday)

		So(start, ShouldEqual, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	})
}
