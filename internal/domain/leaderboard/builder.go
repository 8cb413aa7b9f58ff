// Package leaderboard ranks players within one category and period partition.
package leaderboard

import (
	"sort"
	"time"

	"github.com/lfalegacy/pitchrank/internal/domain/model"
	"github.com/lfalegacy/pitchrank/internal/domain/stats"
)

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithAggregator sets the scoring kernel used to fold windowed results.
func WithAggregator(agg *stats.Aggregator) Option {
	return func(b *Builder) {
		if agg != nil {
			b.agg = agg
		}
	}
}

// Builder computes the ranked entries of a leaderboard partition. It is
// stateless and safe for concurrent use.
type Builder struct {
	agg *stats.Aggregator
}

// New creates a Builder with configuration options.
func New(opts ...Option) *Builder {
	b := &Builder{
		agg: stats.New(),
	}

	// Apply all options
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// standing is one player's pre-rank material.
type standing struct {
	userID     string
	score      float64
	games      int
	achievedAt time.Time
}

// BuildWindowed ranks players from the raw verified results falling inside
// a bounded period window. previous maps user IDs to their rank in the
// partition's prior snapshot and may be nil.
func (b *Builder) BuildWindowed(category model.Category, results []model.GameResult, previous map[string]int) []model.LeaderboardEntry {
	byUser := make(map[string][]model.GameResult)
	for _, r := range results {
		byUser[r.UserID] = append(byUser[r.UserID], r)
	}

	standings := make([]standing, 0, len(byUser))
	for userID, userResults := range byUser {
		filtered := filterByCategory(category, userResults)
		if len(filtered) == 0 {
			continue
		}

		rollup := b.agg.Aggregate(userID, filtered)
		if rollup.TotalGames == 0 {
			continue
		}

		score, ok := categoryScore(category, rollup)
		if !ok {
			continue
		}

		standings = append(standings, standing{
			userID:     userID,
			score:      score,
			games:      rollup.TotalGames,
			achievedAt: rollup.LastResultAt,
		})
	}

	return rank(standings, previous)
}

// BuildAllTime ranks players from their stored all-time rollups.
func (b *Builder) BuildAllTime(category model.Category, rollups []model.PlayerStatistics, previous map[string]int) []model.LeaderboardEntry {
	standings := make([]standing, 0, len(rollups))
	for i := range rollups {
		rollup := &rollups[i]
		if rollup.TotalGames == 0 {
			continue
		}

		score, games, ok := allTimeScore(category, rollup)
		if !ok {
			continue
		}

		standings = append(standings, standing{
			userID:     rollup.UserID,
			score:      score,
			games:      games,
			achievedAt: rollup.LastResultAt,
		})
	}

	return rank(standings, previous)
}

// filterByCategory keeps the results that qualify a player for the category.
func filterByCategory(category model.Category, results []model.GameResult) []model.GameResult {
	switch category.Kind {
	case model.CategoryOverall:
		return results
	case model.CategoryGameType:
		out := results[:0:0]
		for _, r := range results {
			if r.GameType == category.GameType {
				out = append(out, r)
			}
		}
		return out
	case model.CategorySkill:
		out := results[:0:0]
		for _, r := range results {
			if _, ok := r.SkillScores[category.Skill]; ok {
				out = append(out, r)
			}
		}
		return out
	case model.CategoryLocation:
		out := results[:0:0]
		for _, r := range results {
			if r.LocationID == category.LocationID {
				out = append(out, r)
			}
		}
		return out
	default:
		return nil
	}
}

// categoryScore extracts the ranked score from a windowed rollup.
func categoryScore(category model.Category, rollup *model.PlayerStatistics) (float64, bool) {
	switch category.Kind {
	case model.CategoryOverall:
		return rollup.OverallAverage, true
	case model.CategoryGameType:
		gs, ok := rollup.ByGameType[category.GameType]
		return gs.AverageScore, ok
	case model.CategorySkill:
		avg, ok := rollup.SkillAverages[category.Skill]
		return avg, ok
	case model.CategoryLocation:
		gs, ok := rollup.ByLocation[category.LocationID]
		return gs.AverageScore, ok
	default:
		return 0, false
	}
}

// allTimeScore extracts the ranked score and game count from a stored rollup.
func allTimeScore(category model.Category, rollup *model.PlayerStatistics) (float64, int, bool) {
	switch category.Kind {
	case model.CategoryOverall:
		return rollup.OverallAverage, rollup.TotalGames, true
	case model.CategoryGameType:
		gs, ok := rollup.ByGameType[category.GameType]
		return gs.AverageScore, gs.Games, ok
	case model.CategorySkill:
		avg, ok := rollup.SkillAverages[category.Skill]
		return avg, rollup.TotalGames, ok
	case model.CategoryLocation:
		gs, ok := rollup.ByLocation[category.LocationID]
		return gs.AverageScore, gs.Games, ok
	default:
		return 0, 0, false
	}
}

// rank orders standings and assigns contiguous ranks, percentiles, and
// previous ranks. Equal scores are broken by who reached theirs first,
// then by user ID for full determinism.
func rank(standings []standing, previous map[string]int) []model.LeaderboardEntry {
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].score != standings[j].score {
			return standings[i].score > standings[j].score
		}
		if !standings[i].achievedAt.Equal(standings[j].achievedAt) {
			return standings[i].achievedAt.Before(standings[j].achievedAt)
		}
		return standings[i].userID < standings[j].userID
	})

	n := len(standings)
	entries := make([]model.LeaderboardEntry, n)
	for i, s := range standings {
		entry := model.LeaderboardEntry{
			Rank:       i + 1,
			UserID:     s.userID,
			Score:      s.score,
			Games:      s.games,
			Percentile: percentile(i+1, n),
			AchievedAt: s.achievedAt,
		}
		if prev, ok := previous[s.userID]; ok {
			rank := prev
			entry.PreviousRank = &rank
		}
		entries[i] = entry
	}
	return entries
}

// percentile maps a rank to the share of ranked players at or below it.
// The top rank is the 100th percentile, the bottom the 0th. A lone player
// is the 100th.
func percentile(rank, total int) float64 {
	if total <= 1 {
		return 100
	}
	return 100 * float64(total-rank) / float64(total-1)
}
