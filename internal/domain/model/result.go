// Package model contains the domain types passed between layers.
package model

import (
	"fmt"
	"strings"
	"time"
)

// GameType identifies the kind of training game an attempt belongs to.
type GameType string

// Supported game types.
const (
	GameTypeAccuracy  GameType = "accuracy"
	GameTypeSpeed     GameType = "speed"
	GameTypeTechnical GameType = "technical"
)

// GameTypes lists every supported game type in a stable order.
func GameTypes() []GameType {
	return []GameType{GameTypeAccuracy, GameTypeSpeed, GameTypeTechnical}
}

// Valid reports whether g is a known game type.
func (g GameType) Valid() bool {
	switch g {
	case GameTypeAccuracy, GameTypeSpeed, GameTypeTechnical:
		return true
	default:
		return false
	}
}

// Skill is one of the fixed per-attempt skill categories.
type Skill string

// The fixed skill categories scored per attempt.
const (
	SkillAccuracy    Skill = "accuracy"
	SkillSpeed       Skill = "speed"
	SkillTechnique   Skill = "technique"
	SkillConsistency Skill = "consistency"
	SkillPower       Skill = "power"
	SkillEndurance   Skill = "endurance"
)

// Skills lists every skill category in a stable order.
func Skills() []Skill {
	return []Skill{SkillAccuracy, SkillSpeed, SkillTechnique, SkillConsistency, SkillPower, SkillEndurance}
}

// Valid reports whether s is a known skill category.
func (s Skill) Valid() bool {
	switch s {
	case SkillAccuracy, SkillSpeed, SkillTechnique, SkillConsistency, SkillPower, SkillEndurance:
		return true
	default:
		return false
	}
}

// ResultStatus is the lifecycle state of a recorded game result.
type ResultStatus string

// Result lifecycle states.
const (
	StatusPending  ResultStatus = "pending"
	StatusVerified ResultStatus = "verified"
	StatusDisputed ResultStatus = "disputed"
	StatusInvalid  ResultStatus = "invalid"
	StatusArchived ResultStatus = "archived"
)

// Valid reports whether s is a known result status.
func (s ResultStatus) Valid() bool {
	switch s {
	case StatusPending, StatusVerified, StatusDisputed, StatusInvalid, StatusArchived:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the state machine permits moving from s to
// next. Transitions are one-directional: only a disputed result may return to
// verified (or be resolved invalid), and archived is terminal.
func (s ResultStatus) CanTransitionTo(next ResultStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusVerified || next == StatusDisputed || next == StatusArchived
	case StatusVerified:
		return next == StatusDisputed || next == StatusArchived
	case StatusDisputed:
		return next == StatusVerified || next == StatusInvalid || next == StatusArchived
	case StatusInvalid:
		return next == StatusArchived
	default:
		return false
	}
}

// GameResult is one finished game attempt by one player in one session.
// Results are append-only: verification and archival mutate status and
// feedback, nothing is ever deleted.
type GameResult struct {
	ID              string             `json:"id"`
	UserID          string             `json:"user_id"`
	SessionID       string             `json:"session_id"`
	LocationID      string             `json:"location_id,omitempty"`
	GameType        GameType           `json:"game_type"`
	FinalScore      float64            `json:"final_score"`
	MaxScore        float64            `json:"max_possible_score"`
	SkillScores     map[Skill]float64  `json:"skill_scores,omitempty"`
	DurationSeconds int                `json:"duration_seconds"`
	RecordedAt      time.Time          `json:"recorded_at"`
	Status          ResultStatus       `json:"status"`
	CoachID         string             `json:"coach_id,omitempty"`
	Feedback        string             `json:"feedback,omitempty"`
	DisputeReason   string             `json:"dispute_reason,omitempty"`
	Weather         map[string]string  `json:"weather,omitempty"`
	Equipment       map[string]string  `json:"equipment,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// ScorePercent returns the final score as a percentage of the maximum
// possible score. A zero maximum yields zero.
func (r *GameResult) ScorePercent() float64 {
	if r.MaxScore <= 0 {
		return 0
	}
	return r.FinalScore / r.MaxScore * 100
}

// Validate checks the structural invariants of a submitted result. All
// violations are reported together, wrapped in ErrValidation.
func (r *GameResult) Validate() error {
	var problems []string

	if strings.TrimSpace(r.UserID) == "" {
		problems = append(problems, "user_id is required")
	}
	if strings.TrimSpace(r.SessionID) == "" {
		problems = append(problems, "session_id is required")
	}
	if !r.GameType.Valid() {
		problems = append(problems, fmt.Sprintf("unknown game_type %q", r.GameType))
	}
	if r.MaxScore < 0 {
		problems = append(problems, "max_possible_score must not be negative")
	}
	if r.FinalScore < 0 {
		problems = append(problems, "final_score must not be negative")
	}
	if r.FinalScore > r.MaxScore {
		problems = append(problems, "final_score must not exceed max_possible_score")
	}
	if r.DurationSeconds < 0 {
		problems = append(problems, "duration_seconds must not be negative")
	}
	for skill, score := range r.SkillScores {
		if !skill.Valid() {
			problems = append(problems, fmt.Sprintf("unknown skill %q", skill))
			continue
		}
		if score < 0 || score > 100 {
			problems = append(problems, fmt.Sprintf("skill %s score %v outside [0,100]", skill, score))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}
