package model

import (
	"fmt"
	"strings"
	"time"
)

// CategoryKind selects which dimension a leaderboard ranks players on.
type CategoryKind string

// Leaderboard category kinds.
const (
	CategoryOverall  CategoryKind = "overall"
	CategoryGameType CategoryKind = "game_type"
	CategorySkill    CategoryKind = "skill"
	CategoryLocation CategoryKind = "location"
)

// Category is a fully qualified leaderboard dimension: the kind plus the
// discriminator the kind requires.
type Category struct {
	Kind       CategoryKind `json:"kind"`
	GameType   GameType     `json:"game_type,omitempty"`
	Skill      Skill        `json:"skill,omitempty"`
	LocationID string       `json:"location_id,omitempty"`
}

// OverallCategory returns the category ranking players on overall average.
func OverallCategory() Category { return Category{Kind: CategoryOverall} }

// Validate checks that the category carries exactly the discriminator its
// kind requires.
func (c Category) Validate() error {
	switch c.Kind {
	case CategoryOverall:
		return nil
	case CategoryGameType:
		if !c.GameType.Valid() {
			return fmt.Errorf("%w: unknown game_type %q", ErrValidation, c.GameType)
		}
		return nil
	case CategorySkill:
		if !c.Skill.Valid() {
			return fmt.Errorf("%w: unknown skill %q", ErrValidation, c.Skill)
		}
		return nil
	case CategoryLocation:
		if strings.TrimSpace(c.LocationID) == "" {
			return fmt.Errorf("%w: location category requires location_id", ErrValidation)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown leaderboard category %q", ErrValidation, c.Kind)
	}
}

// Key returns the stable string form of the category, used in partition
// keys and log fields.
func (c Category) Key() string {
	switch c.Kind {
	case CategoryGameType:
		return fmt.Sprintf("%s:%s", c.Kind, c.GameType)
	case CategorySkill:
		return fmt.Sprintf("%s:%s", c.Kind, c.Skill)
	case CategoryLocation:
		return fmt.Sprintf("%s:%s", c.Kind, c.LocationID)
	default:
		return string(c.Kind)
	}
}

// Period is the time window a leaderboard covers.
type Period string

// Leaderboard periods.
const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodAllTime Period = "all_time"
)

// Valid reports whether p is a known period.
func (p Period) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodAllTime:
		return true
	default:
		return false
	}
}

// WindowStart returns the UTC start of the period containing now. The
// second return is false for the all-time period, which has no lower bound.
// Weeks start on Monday.
func (p Period) WindowStart(now time.Time) (time.Time, bool) {
	now = now.UTC()
	switch p {
	case PeriodDaily:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), true
	case PeriodWeekly:
		weekday := int(now.Weekday())
		if weekday == 0 { // Sunday
			weekday = 7
		}
		monday := now.AddDate(0, 0, -(weekday - 1))
		return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC), true
	case PeriodMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), true
	default:
		return time.Time{}, false
	}
}

// PartitionKey identifies one leaderboard partition: a category crossed
// with a period.
type PartitionKey string

// NewPartitionKey builds the partition key for a category and period.
func NewPartitionKey(c Category, p Period) PartitionKey {
	return PartitionKey(c.Key() + "|" + string(p))
}

// ParsePartitionKey recovers the category and period from a partition
// key. The qualifier is split on the first colon only, so location ids
// containing colons survive the round trip.
func ParsePartitionKey(key PartitionKey) (Category, Period, error) {
	s := string(key)
	sep := strings.LastIndex(s, "|")
	if sep < 0 {
		return Category{}, "", fmt.Errorf("%w: malformed partition key %q", ErrValidation, key)
	}
	period := Period(s[sep+1:])
	if !period.Valid() {
		return Category{}, "", fmt.Errorf("%w: unknown period in partition key %q", ErrValidation, key)
	}

	c := Category{}
	catKey := s[:sep]
	kind, qualifier, _ := strings.Cut(catKey, ":")
	c.Kind = CategoryKind(kind)
	switch c.Kind {
	case CategoryGameType:
		c.GameType = GameType(qualifier)
	case CategorySkill:
		c.Skill = Skill(qualifier)
	case CategoryLocation:
		c.LocationID = qualifier
	}
	if err := c.Validate(); err != nil {
		return Category{}, "", err
	}
	return c, period, nil
}

// LeaderboardEntry is one ranked row of a leaderboard partition.
type LeaderboardEntry struct {
	Rank         int       `json:"rank"`
	UserID       string    `json:"user_id"`
	Score        float64   `json:"score"`
	Games        int       `json:"games"`
	Percentile   float64   `json:"percentile"`
	PreviousRank *int      `json:"previous_rank,omitempty"`
	AchievedAt   time.Time `json:"achieved_at,omitzero"`
}
