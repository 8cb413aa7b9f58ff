package seedresults

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/lfalegacy/pitchrank/internal/domain/model"
	"github.com/lfalegacy/pitchrank/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	sessionIDDivisor   = 10000
	profileDivisor     = 8
)

// Constants for score generation ranges.
const (
	avgPerformerMin     = 40.0
	avgPerformerRange   = 30.0
	highPerformerMin    = 70.0
	highPerformerRange  = 20.0
	lowPerformerMin     = 5.0
	lowPerformerRange   = 35.0
	elitePerformerMin   = 90.0
	elitePerformerRange = 10.0
	veryLowMin          = 1.0
	veryLowRange        = 9.0
	midHighMin          = 60.0
	midHighRange        = 20.0
	midLowMin           = 20.0
	midLowRange         = 20.0
	wideRangeMin        = 1.0
	wideRange           = 99.0
)

// Constants for performance profile cases.
const (
	caseAveragePerformer = 0
	caseHighPerformer    = 1
	caseLowPerformer     = 2
	caseElitePerformer   = 3
	caseVeryLowPerformer = 4
	caseMidHighPerformer = 5
	caseMidLowPerformer  = 6
	caseWideRange        = 7
)

// Constants for submission shaping.
const (
	maxPossibleScore   = 100.0
	skillJitterRange   = 20.0
	minDurationSeconds = 60
	durationRange      = 240
	historyWindow      = 14 * 24 * time.Hour
)

// Practice pitches submissions are spread across.
var locationPool = []string{
	"pitch-alpha",
	"pitch-bravo",
	"pitch-charlie",
	"pitch-delta",
}

// Skills exercised per game type.
var gameTypeSkills = map[model.GameType][]model.Skill{
	model.GameTypeAccuracy:  {model.SkillAccuracy, model.SkillPower, model.SkillConsistency},
	model.GameTypeSpeed:     {model.SkillSpeed, model.SkillEndurance},
	model.GameTypeTechnical: {model.SkillTechnique, model.SkillConsistency},
}

var gameTypes = []model.GameType{
	model.GameTypeAccuracy,
	model.GameTypeSpeed,
	model.GameTypeTechnical,
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// randomIndex returns a random int in [0, n) using crypto/rand.
func randomIndex(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// generatePlayers creates the requested number of unique player IDs.
func generatePlayers(n int) []string {
	players := make([]string, n)
	for i := range players {
		players[i] = uuid.New().String()
	}
	return players
}

// generateSubmissions creates ResultsPerPlayer submissions for every player.
func generateSubmissions(ctx context.Context, config *Config, players []string, stats *Stats) ([]Submission, error) {
	total := len(players) * config.ResultsPerPlayer
	logger.Get().Info(ctx, "generating submissions",
		logger.Int("players", len(players)),
		logger.Int("perPlayer", config.ResultsPerPlayer),
		logger.Int("total", total))

	submissions := make([]Submission, total)

	// Generate submissions concurrently
	type subResult struct {
		index int
		sub   Submission
		err   error
	}

	resultChan := make(chan subResult, total)

	// Use worker pool for generation; workers own whole players so a
	// player's sessions get sequential indexes.
	workerCount := minInt(config.Workers, len(players))
	playersPerWorker := len(players) / workerCount

	for worker := 0; worker < workerCount; worker++ {
		start := worker * playersPerWorker
		end := start + playersPerWorker
		if worker == workerCount-1 {
			end = len(players) // Last worker gets remaining players
		}

		go func(start, end int) {
			for p := start; p < end; p++ {
				// Each player keeps one performance profile across the
				// run so streaks and levels come out looking earned.
				profile := randomIndex(profileDivisor)
				for j := 0; j < config.ResultsPerPlayer; j++ {
					index := p*config.ResultsPerPlayer + j
					select {
					case <-ctx.Done():
						resultChan <- subResult{index: index, err: ctx.Err()}
						return
					default:
						sub := generateSingleSubmission(index, players[p], profile)
						resultChan <- subResult{index: index, sub: sub, err: nil}
					}
				}
			}
		}(start, end)
	}

	// Collect results
	for i := 0; i < total; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during submission generation: %w", ctx.Err())
		case result := <-resultChan:
			if result.err != nil {
				return nil, fmt.Errorf("failed to generate submission %d: %w", result.index, result.err)
			}
			submissions[result.index] = result.sub
		}
	}

	stats.PlayersSeeded = len(players)
	stats.ResultsGenerated = len(submissions)
	logger.Get().Info(ctx, "generated submissions successfully", logger.Int("count", len(submissions)))

	return submissions, nil
}

// generateSingleSubmission creates a single submission for the given player.
func generateSingleSubmission(index int, userID string, profile int) Submission {
	finalScore := generateProfileScore(profile)
	gameType := gameTypes[randomIndex(len(gameTypes))]

	// Skill breakdown jitters around the final score.
	skillScores := make(map[string]float64)
	for _, skill := range gameTypeSkills[gameType] {
		skillScores[string(skill)] = clampScore(finalScore + (getRandomFloat()-0.5)*skillJitterRange)
	}

	// Spread recorded times over the recent history window so streaks
	// and recency weighting have something to chew on.
	recordedAt := time.Now().UTC().Add(-time.Duration(getRandomFloat() * float64(historyWindow)))

	// Generate unique session ID
	randNum, _ := rand.Int(rand.Reader, big.NewInt(sessionIDDivisor))
	sessionID := "session_" + strconv.FormatInt(int64(index), 10) + "_" + strconv.FormatInt(time.Now().Unix(), 10) + "_" + strconv.FormatInt(randNum.Int64(), 10)

	return Submission{
		SessionID:       sessionID,
		LocationID:      locationPool[randomIndex(len(locationPool))],
		GameType:        string(gameType),
		FinalScore:      finalScore,
		MaxScore:        maxPossibleScore,
		SkillScores:     skillScores,
		DurationSeconds: minDurationSeconds + randomIndex(durationRange),
		RecordedAt:      recordedAt.Format(time.RFC3339),
		UserID:          userID,
	}
}

// generateProfileScore creates a score drawn from the given profile's range.
func generateProfileScore(profile int) float64 {
	switch profile {
	case caseAveragePerformer:
		// Average performers (40 - 70) - most common
		return avgPerformerMin + getRandomFloat()*avgPerformerRange
	case caseHighPerformer:
		// High performers (70 - 90)
		return highPerformerMin + getRandomFloat()*highPerformerRange
	case caseLowPerformer:
		// Low performers (5 - 40)
		return lowPerformerMin + getRandomFloat()*lowPerformerRange
	case caseElitePerformer:
		// Elite performers (90 - 100) - rare
		return elitePerformerMin + getRandomFloat()*elitePerformerRange
	case caseVeryLowPerformer:
		// Very low performers (1 - 10) - rare
		return veryLowMin + getRandomFloat()*veryLowRange
	case caseMidHighPerformer:
		// Mid-high performers (60 - 80)
		return midHighMin + getRandomFloat()*midHighRange
	case caseMidLowPerformer:
		// Mid-low performers (20 - 40)
		return midLowMin + getRandomFloat()*midLowRange
	case caseWideRange:
		// Random across full range (1 - 100)
		return wideRangeMin + getRandomFloat()*wideRange
	default:
		return wideRangeMin + getRandomFloat()*wideRange
	}
}

// clampScore keeps a jittered skill score inside the valid range.
func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > maxPossibleScore {
		return maxPossibleScore
	}
	return v
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
