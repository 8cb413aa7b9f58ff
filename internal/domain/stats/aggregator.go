// Package stats derives per-player statistics from verified game results.
package stats

import (
	"sort"
	"time"

	"github.com/lfalegacy/pitchrank/internal/domain/model"
)

// Default aggregation configuration constants.
const (
	defaultWinThreshold = 50
	defaultRecencyDecay = 0.9
)

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithWinThresholds sets per-game-type win thresholds from a configuration
// map, plus the fallback threshold for unlisted game types. Thresholds are
// score percentages in [0,100].
func WithWinThresholds(thresholds map[string]float64, defaultThreshold float64) Option {
	return func(a *Aggregator) {
		a.winThresholds = make(map[model.GameType]float64, len(thresholds))
		for gameType, threshold := range thresholds {
			if threshold >= 0 && threshold <= 100 {
				a.winThresholds[model.GameType(gameType)] = threshold
			}
		}
		if defaultThreshold >= 0 && defaultThreshold <= 100 {
			a.defaultThreshold = defaultThreshold
		}
	}
}

// WithRecencyDecay sets the per-step weight multiplier applied to older
// skill scores. Must be in (0,1]; 1 disables decay.
func WithRecencyDecay(decay float64) Option {
	return func(a *Aggregator) {
		if decay > 0 && decay <= 1 {
			a.recencyDecay = decay
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// Aggregator folds verified game results into player statistics rollups.
// It is stateless and safe for concurrent use.
type Aggregator struct {
	winThresholds    map[model.GameType]float64
	defaultThreshold float64
	recencyDecay     float64
	now              func() time.Time
}

// New creates an Aggregator with configuration options.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		winThresholds:    make(map[model.GameType]float64),
		defaultThreshold: defaultWinThreshold,
		recencyDecay:     defaultRecencyDecay,
		now:              time.Now,
	}

	// Apply all options
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// IsWin reports whether a result clears the win threshold for its game type.
func (a *Aggregator) IsWin(r *model.GameResult) bool {
	threshold, ok := a.winThresholds[r.GameType]
	if !ok {
		threshold = a.defaultThreshold
	}
	return r.ScorePercent() >= threshold
}

// Aggregate recomputes the complete rollup for one player from that
// player's results. Only verified results contribute; everything else is
// skipped. Input order does not matter.
func (a *Aggregator) Aggregate(userID string, results []model.GameResult) *model.PlayerStatistics {
	stats := model.NewPlayerStatistics(userID)
	stats.UpdatedAt = a.now().UTC()

	verified := make([]model.GameResult, 0, len(results))
	for _, r := range results {
		if r.Status == model.StatusVerified {
			verified = append(verified, r)
		}
	}
	if len(verified) == 0 {
		return stats
	}

	// Chronological order drives streaks and recency weighting.
	sort.Slice(verified, func(i, j int) bool {
		if !verified[i].RecordedAt.Equal(verified[j].RecordedAt) {
			return verified[i].RecordedAt.Before(verified[j].RecordedAt)
		}
		return verified[i].ID < verified[j].ID
	})

	var (
		percentSum  float64
		streak      int
		skillSeries = make(map[model.Skill][]float64)
		gameTypes   = make(map[model.GameType]*groupAccumulator)
		locations   = make(map[string]*groupAccumulator)
	)

	for i := range verified {
		r := &verified[i]
		percent := r.ScorePercent()
		percentSum += percent

		win := a.IsWin(r)
		if win {
			stats.TotalWins++
			streak++
			if streak > stats.LongestStreak {
				stats.LongestStreak = streak
			}
		} else {
			streak = 0
		}

		for skill, score := range r.SkillScores {
			skillSeries[skill] = append(skillSeries[skill], score)
		}

		accumulate(gameTypes, r.GameType, percent, win)
		if r.LocationID != "" {
			accumulate(locations, r.LocationID, percent, win)
		}
	}

	stats.TotalGames = len(verified)
	stats.OverallAverage = percentSum / float64(len(verified))
	stats.CurrentStreak = streak
	stats.LastResultAt = verified[len(verified)-1].RecordedAt
	stats.PerformanceLevel = model.ClassifyPerformance(stats.TotalGames, stats.OverallAverage)

	for skill, series := range skillSeries {
		stats.SkillAverages[skill] = a.weightedAverage(series)
	}
	for gameType, acc := range gameTypes {
		stats.ByGameType[gameType] = acc.stats()
	}
	for locationID, acc := range locations {
		stats.ByLocation[locationID] = acc.stats()
	}

	return stats
}

// weightedAverage computes the recency-weighted mean of a chronological
// score series: the newest score carries weight 1, each older one the
// previous weight times the decay factor.
func (a *Aggregator) weightedAverage(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}

	var weightedSum, weightSum float64
	weight := 1.0
	for i := len(series) - 1; i >= 0; i-- {
		weightedSum += series[i] * weight
		weightSum += weight
		weight *= a.recencyDecay
	}
	return weightedSum / weightSum
}

// groupAccumulator folds one breakdown bucket.
type groupAccumulator struct {
	games      int
	wins       int
	percentSum float64
}

func accumulate[K comparable](groups map[K]*groupAccumulator, key K, percent float64, win bool) {
	acc, ok := groups[key]
	if !ok {
		acc = &groupAccumulator{}
		groups[key] = acc
	}
	acc.games++
	if win {
		acc.wins++
	}
	acc.percentSum += percent
}

func (g *groupAccumulator) stats() model.GroupStats {
	return model.GroupStats{
		Games:        g.games,
		Wins:         g.wins,
		AverageScore: g.percentSum / float64(g.games),
	}
}
