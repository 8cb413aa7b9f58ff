package leaderboard_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/lfalegacy/pitchrank/internal/domain/leaderboard"
	"github.com/lfalegacy/pitchrank/internal/domain/model"
	"github.com/lfalegacy/pitchrank/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
)

var baseTime = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func verifiedResult(user string, hoursAfter int, gameType model.GameType, score float64) model.GameResult {
	return model.GameResult{
		ID:         fmt.Sprintf("%s-%s-%d", user, gameType, hoursAfter),
		UserID:     user,
		SessionID:  "sess-" + user,
		GameType:   gameType,
		FinalScore: score,
		MaxScore:   100,
		RecordedAt: baseTime.Add(time.Duration(hoursAfter) * time.Hour),
		Status:     model.StatusVerified,
	}
}

func TestBuildRanksAndPercentiles(t *testing.T) {
	t.Parallel()

	Convey("Given three players averaging 95, 80, and 80", t, func() {
		builder := leaderboard.New()
		results := []model.GameResult{
			verifiedResult("alice", 0, model.GameTypeAccuracy, 95),
			verifiedResult("bob", 1, model.GameTypeAccuracy, 80),
			verifiedResult("cara", 2, model.GameTypeAccuracy, 80),
		}

		Convey("When building the overall board", func() {
			entries := builder.BuildWindowed(model.OverallCategory(), results, nil)

			Convey("Then ranks are contiguous even across the tie", func() {
				So(entries, ShouldHaveLength, 3)
				So(entries[0].UserID, ShouldEqual, "alice")
				So(entries[0].Rank, ShouldEqual, 1)
				So(entries[1].Rank, ShouldEqual, 2)
				So(entries[2].Rank, ShouldEqual, 3)
			})

			Convey("Then the earlier of the tied scores ranks higher", func() {
				So(entries[1].UserID, ShouldEqual, "bob")
				So(entries[2].UserID, ShouldEqual, "cara")
			})

			Convey("Then percentiles run from 100 down to 0", func() {
				So(entries[0].Percentile, ShouldAlmostEqual, 100.0)
				So(entries[1].Percentile, ShouldAlmostEqual, 50.0)
				So(entries[2].Percentile, ShouldAlmostEqual, 0.0)
			})

			Convey("Then newcomers have no previous rank", func() {
				for _, e := range entries {
					So(e.PreviousRank, ShouldBeNil)
				}
			})
		})
	})

	Convey("Given a single ranked player", t, func() {
		builder := leaderboard.New()
		entries := builder.BuildWindowed(
			model.OverallCategory(),
			[]model.GameResult{verifiedResult("solo", 0, model.GameTypeSpeed, 70)},
			nil,
		)

		Convey("Then they are rank 1 at the 100th percentile", func() {
			So(entries, ShouldHaveLength, 1)
			So(entries[0].Rank, ShouldEqual, 1)
			So(entries[0].Percentile, ShouldAlmostEqual, 100.0)
		})
	})

	Convey("Given no qualifying results", t, func() {
		builder := leaderboard.New()
		entries := builder.BuildWindowed(model.OverallCategory(), nil, nil)

		Convey("Then the board is empty", func() {
			So(entries, ShouldBeEmpty)
		})
	})
}

func TestBuildCategoryFiltering(t *testing.T) {
	t.Parallel()

	Convey("Given mixed results across game types, skills, and locations", t, func() {
		builder := leaderboard.New()

		speedy := verifiedResult("dana", 0, model.GameTypeSpeed, 88)
		speedy.LocationID = "loc-east"
		technical := verifiedResult("dana", 1, model.GameTypeTechnical, 40)
		technical.LocationID = "loc-west"

		skilled := verifiedResult("eli", 2, model.GameTypeSpeed, 62)
		skilled.SkillScores = map[model.Skill]float64{model.SkillEndurance: 77}
		skilled.LocationID = "loc-east"

		results := []model.GameResult{speedy, technical, skilled}

		Convey("When building a game-type board", func() {
			entries := builder.BuildWindowed(model.Category{Kind: model.CategoryGameType, GameType: model.GameTypeSpeed}, results, nil)

			Convey("Then only speed games feed the score", func() {
				So(entries, ShouldHaveLength, 2)
				So(entries[0].UserID, ShouldEqual, "dana")
				So(entries[0].Score, ShouldAlmostEqual, 88.0)
				So(entries[1].UserID, ShouldEqual, "eli")
			})
		})

		Convey("When building a skill board", func() {
			entries := builder.BuildWindowed(model.Category{Kind: model.CategorySkill, Skill: model.SkillEndurance}, results, nil)

			Convey("Then only players with that skill scored appear", func() {
				So(entries, ShouldHaveLength, 1)
				So(entries[0].UserID, ShouldEqual, "eli")
				So(entries[0].Score, ShouldAlmostEqual, 77.0)
			})
		})

		Convey("When building a location board", func() {
			entries := builder.BuildWindowed(model.Category{Kind: model.CategoryLocation, LocationID: "loc-east"}, results, nil)

			Convey("Then only games at that location count", func() {
				So(entries, ShouldHaveLength, 2)
				So(entries[0].UserID, ShouldEqual, "dana")
				So(entries[0].Score, ShouldAlmostEqual, 88.0)
				So(entries[0].Games, ShouldEqual, 1)
			})
		})

		Convey("When a player's only results are pending", func() {
			pending := verifiedResult("fay", 3, model.GameTypeSpeed, 99)
			pending.Status = model.StatusPending
			entries := builder.BuildWindowed(model.OverallCategory(), append(results, pending), nil)

			Convey("Then they are not ranked", func() {
				for _, e := range entries {
					So(e.UserID, ShouldNotEqual, "fay")
				}
			})
		})
	})
}

func TestBuildPreviousRanks(t *testing.T) {
	t.Parallel()

	Convey("Given a prior snapshot where the tables were turned", t, func() {
		builder := leaderboard.New()
		results := []model.GameResult{
			verifiedResult("gil", 0, model.GameTypeAccuracy, 90),
			verifiedResult("hana", 1, model.GameTypeAccuracy, 60),
		}
		previous := map[string]int{"gil": 2, "hana": 1}

		Convey("When rebuilding", func() {
			entries := builder.BuildWindowed(model.OverallCategory(), results, previous)

			Convey("Then each entry carries its previous rank", func() {
				So(entries[0].UserID, ShouldEqual, "gil")
				So(*entries[0].PreviousRank, ShouldEqual, 2)
				So(entries[1].UserID, ShouldEqual, "hana")
				So(*entries[1].PreviousRank, ShouldEqual, 1)
			})
		})

		Convey("When a newcomer joins the board", func() {
			withNew := append(results, verifiedResult("ivy", 2, model.GameTypeAccuracy, 75))
			entries := builder.BuildWindowed(model.OverallCategory(), withNew, previous)

			Convey("Then only returning players have a previous rank", func() {
				So(entries, ShouldHaveLength, 3)
				for _, e := range entries {
					if e.UserID == "ivy" {
						So(e.PreviousRank, ShouldBeNil)
					} else {
						So(e.PreviousRank, ShouldNotBeNil)
					}
				}
			})
		})
	})
}

func TestBuildWeightedSkillBoard(t *testing.T) {
	t.Parallel()

	Convey("Given a skill board built with recency decay", t, func() {
		agg := stats.New(stats.WithRecencyDecay(0.9))
		builder := leaderboard.New(leaderboard.WithAggregator(agg))

		older := verifiedResult("jon", 0, model.GameTypeAccuracy, 70)
		older.SkillScores = map[model.Skill]float64{model.SkillAccuracy: 80}
		newer := verifiedResult("jon", 1, model.GameTypeAccuracy, 75)
		newer.SkillScores = map[model.Skill]float64{model.SkillAccuracy: 90}

		Convey("When building", func() {
			entries := builder.BuildWindowed(
				model.Category{Kind: model.CategorySkill, Skill: model.SkillAccuracy},
				[]model.GameResult{older, newer},
				nil,
			)

			Convey("Then the score is the recency-weighted skill average", func() {
				So(entries, ShouldHaveLength, 1)
				So(entries[0].Score, ShouldAlmostEqual, 162.0/1.9)
				So(entries[0].Games, ShouldEqual, 2)
			})
		})
	})
}

func TestBuildAllTime(t *testing.T) {
	t.Parallel()

	Convey("Given stored all-time rollups", t, func() {
		builder := leaderboard.New()

		rollups := []model.PlayerStatistics{
			{
				UserID:         "kay",
				TotalGames:     40,
				OverallAverage: 82,
				SkillAverages:  map[model.Skill]float64{model.SkillSpeed: 91},
				ByGameType: map[model.GameType]model.GroupStats{
					model.GameTypeSpeed: {Games: 25, Wins: 20, AverageScore: 85},
				},
				ByLocation:   map[string]model.GroupStats{"loc-9": {Games: 10, Wins: 7, AverageScore: 80}},
				LastResultAt: baseTime,
			},
			{
				UserID:         "lee",
				TotalGames:     12,
				OverallAverage: 88,
				SkillAverages:  map[model.Skill]float64{},
				ByGameType: map[model.GameType]model.GroupStats{
					model.GameTypeAccuracy: {Games: 12, Wins: 9, AverageScore: 88},
				},
				LastResultAt: baseTime.Add(time.Hour),
			},
			{UserID: "mo", TotalGames: 0},
		}

		Convey("When building the overall all-time board", func() {
			entries := builder.BuildAllTime(model.OverallCategory(), rollups, nil)

			Convey("Then players rank by overall average and empty rollups are skipped", func() {
				So(entries, ShouldHaveLength, 2)
				So(entries[0].UserID, ShouldEqual, "lee")
				So(entries[0].Score, ShouldAlmostEqual, 88.0)
				So(entries[1].UserID, ShouldEqual, "kay")
				So(entries[1].Games, ShouldEqual, 40)
			})
		})

		Convey("When building a game-type all-time board", func() {
			entries := builder.BuildAllTime(model.Category{Kind: model.CategoryGameType, GameType: model.GameTypeSpeed}, rollups, nil)

			Convey("Then only players with games of that type appear", func() {
				So(entries, ShouldHaveLength, 1)
				So(entries[0].UserID, ShouldEqual, "kay")
				So(entries[0].Score, ShouldAlmostEqual, 85.0)
				So(entries[0].Games, ShouldEqual, 25)
			})
		})

		Convey("When building a skill all-time board", func() {
			entries := builder.BuildAllTime(model.Category{Kind: model.CategorySkill, Skill: model.SkillSpeed}, rollups, nil)

			Convey("Then players without that skill average are skipped", func() {
				So(entries, ShouldHaveLength, 1)
				So(entries[0].UserID, ShouldEqual, "kay")
				So(entries[0].Score, ShouldAlmostEqual, 91.0)
			})
		})

		Convey("When building a location all-time board", func() {
			entries := builder.BuildAllTime(model.Category{Kind: model.CategoryLocation, LocationID: "loc-9"}, rollups, nil)

			Convey("Then only players seen at the location appear", func() {
				So(entries, ShouldHaveLength, 1)
				So(entries[0].Games, ShouldEqual, 10)
			})
		})
	})
}

func TestBuildDeterministicTieBreak(t *testing.T) {
	t.Parallel()

	Convey("Given two players with identical scores and timestamps", t, func() {
		builder := leaderboard.New()
		a := verifiedResult("zed", 0, model.GameTypeAccuracy, 50)
		b := verifiedResult("ann", 0, model.GameTypeAccuracy, 50)

		Convey("When building twice", func() {
			first := builder.BuildWindowed(model.OverallCategory(), []model.GameResult{a, b}, nil)
			second := builder.BuildWindowed(model.OverallCategory(), []model.GameResult{b, a}, nil)

			Convey("Then the order is stable and by user ID", func() {
				So(first[0].UserID, ShouldEqual, "ann")
				So(second[0].UserID, ShouldEqual, "ann")
				So(first[1].UserID, ShouldEqual, "zed")
			})
		})
	})
}
