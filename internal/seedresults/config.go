package seedresults

import "time"

// Config holds configuration for a seeding run
type Config struct {
	BaseURL          string        // Base URL of the service
	NumPlayers       int           // Number of distinct players to seed
	ResultsPerPlayer int           // Number of results submitted per player
	TopN             int           // Number of top entries to fetch from the leaderboard
	Workers          int           // Number of concurrent workers
	Timeout          time.Duration // HTTP request timeout
	JWTSecret        string        // Secret for minting bearer tokens; empty uses identity headers
	OutputFile       string        // Output file for submissions
	LogFile          string        // Log file for run output
	Verbose          bool          // Enable verbose logging
}

// Submission is one result submission posted to the service. UserID is the
// identity the request is made with, not part of the request body.
type Submission struct {
	SessionID       string             `json:"session_id"`
	LocationID      string             `json:"location_id,omitempty"`
	GameType        string             `json:"game_type"`
	FinalScore      float64            `json:"final_score"`
	MaxScore        float64            `json:"max_possible_score"`
	SkillScores     map[string]float64 `json:"skill_scores,omitempty"`
	DurationSeconds int                `json:"duration_seconds,omitempty"`
	RecordedAt      string             `json:"recorded_at"`

	UserID string `json:"-"`
}

// ResultInfo is the subset of a stored result the tool inspects
type ResultInfo struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Status string `json:"status"`
}

// SubmitResponse represents the response from result submission
type SubmitResponse struct {
	Result    ResultInfo `json:"result"`
	Duplicate bool       `json:"duplicate"`
}

// PendingPage represents one page of the pending verification listing
type PendingPage struct {
	Results []ResultInfo `json:"results"`
	Total   int          `json:"total"`
}

// PlayerStats represents the statistics response for one player
type PlayerStats struct {
	UserID           string  `json:"user_id"`
	TotalGames       int     `json:"total_games"`
	TotalWins        int     `json:"total_wins"`
	OverallAverage   float64 `json:"overall_average"`
	CurrentStreak    int     `json:"current_streak"`
	LongestStreak    int     `json:"longest_streak"`
	PerformanceLevel string  `json:"performance_level"`
}

// Entry represents one row of the leaderboard response
type Entry struct {
	Rank       int     `json:"rank"`
	UserID     string  `json:"user_id"`
	Score      float64 `json:"score"`
	Games      int     `json:"games"`
	Percentile float64 `json:"percentile"`
}

// Board represents the leaderboard page response
type Board struct {
	Category string  `json:"category"`
	Period   string  `json:"period"`
	Total    int     `json:"total"`
	Entries  []Entry `json:"entries"`
}

// Stats holds run statistics
type Stats struct {
	PlayersSeeded       int
	ResultsGenerated    int
	ResultsSubmitted    int
	ResultsSuccessful   int
	ResultsDuplicate    int
	ResultsFailed       int
	ResultsVerified     int
	VerificationsFailed int
	StatisticsRetrieved int
	LeaderboardEntries  int
	StartTime           time.Time
	EndTime             time.Time
	Duration            time.Duration
}
