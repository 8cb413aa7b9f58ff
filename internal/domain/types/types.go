// Package types contains the transport-facing query and page types
// shared by the service facade and the HTTP API.
package types

import (
	"time"

	"github.com/lfalegacy/pitchrank/internal/domain/model"
)

// ResultQuery narrows and pages a result listing. The string fields
// carry raw request input; the service validates them against the
// domain vocabulary.
type ResultQuery struct {
	GameType   string
	Status     string
	LocationID string
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}

// ResultPage is one page of a result listing.
type ResultPage struct {
	Results []model.GameResult `json:"results"`
	Total   int                `json:"total"`
	Limit   int                `json:"limit"`
	Offset  int                `json:"offset"`
}

// LeaderboardQuery selects a ranking partition and a page of it.
// Qualifier names the game type, skill, or location a non-overall
// category ranks on.
type LeaderboardQuery struct {
	Category  string
	Qualifier string
	Period    string
	Limit     int
	Offset    int
}

// LeaderboardPage is one page of a ranked partition.
type LeaderboardPage struct {
	Category       string                   `json:"category"`
	Qualifier      string                   `json:"qualifier,omitempty"`
	Period         string                   `json:"period"`
	WindowStart    time.Time                `json:"window_start,omitzero"`
	BuiltAt        time.Time                `json:"built_at"`
	Stale          bool                     `json:"stale,omitempty"`
	Total          int                      `json:"total"`
	Limit          int                      `json:"limit"`
	Offset         int                      `json:"offset"`
	Entries        []model.LeaderboardEntry `json:"entries"`
	RequestingUser *model.LeaderboardEntry  `json:"requesting_user,omitempty"`
}
