package model

import "time"

// PerformanceLevel is the coarse tier a player's aggregate performance
// places them in.
type PerformanceLevel string

// Performance tiers, weakest to strongest.
const (
	LevelBeginner     PerformanceLevel = "beginner"
	LevelIntermediate PerformanceLevel = "intermediate"
	LevelAdvanced     PerformanceLevel = "advanced"
	LevelExpert       PerformanceLevel = "expert"
	LevelElite        PerformanceLevel = "elite"
)

// ClassifyPerformance maps verified game volume and overall average score to
// a performance level. Thresholds on both axes must be met.
func ClassifyPerformance(totalGames int, overallAverage float64) PerformanceLevel {
	switch {
	case totalGames >= 100 && overallAverage >= 90:
		return LevelElite
	case totalGames >= 50 && overallAverage >= 75:
		return LevelExpert
	case totalGames >= 20 && overallAverage >= 60:
		return LevelAdvanced
	case totalGames >= 5 && overallAverage >= 40:
		return LevelIntermediate
	default:
		return LevelBeginner
	}
}

// GroupStats aggregates the results falling into one breakdown bucket, such
// as a single game type or a single location.
type GroupStats struct {
	Games        int     `json:"games"`
	Wins         int     `json:"wins"`
	AverageScore float64 `json:"average_score"`
}

// PlayerStatistics is the per-player rollup derived from that player's
// verified results. It is recomputed from scratch on every refresh; Version
// guards concurrent writers of the stored copy.
type PlayerStatistics struct {
	UserID           string                `json:"user_id"`
	TotalGames       int                   `json:"total_games"`
	TotalWins        int                   `json:"total_wins"`
	OverallAverage   float64               `json:"overall_average"`
	SkillAverages    map[Skill]float64     `json:"skill_averages"`
	CurrentStreak    int                   `json:"current_streak"`
	LongestStreak    int                   `json:"longest_streak"`
	PerformanceLevel PerformanceLevel      `json:"performance_level"`
	ByGameType       map[GameType]GroupStats `json:"by_game_type"`
	ByLocation       map[string]GroupStats `json:"by_location,omitempty"`
	LastResultAt     time.Time             `json:"last_result_at,omitzero"`
	UpdatedAt        time.Time             `json:"updated_at"`
	Version          int64                 `json:"-"`
}

// NewPlayerStatistics returns the empty rollup for a player with no verified
// results. Averages are zero and the level is beginner.
func NewPlayerStatistics(userID string) *PlayerStatistics {
	return &PlayerStatistics{
		UserID:           userID,
		SkillAverages:    map[Skill]float64{},
		PerformanceLevel: LevelBeginner,
		ByGameType:       map[GameType]GroupStats{},
		ByLocation:       map[string]GroupStats{},
	}
}
