package seedresults

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/lfalegacy/pitchrank/internal/domain/model"
	"github.com/lfalegacy/pitchrank/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete seeding run.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting pitchrank seed run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("players", config.NumPlayers),
		logger.Int("resultsPerPlayer", config.ResultsPerPlayer),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("topN", config.TopN),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Mint identities for the players and the verifying coach
	players := generatePlayers(config.NumPlayers)
	ids, coach, err := mintIdentities(ctx, config, players)
	if err != nil {
		return fmt.Errorf("identity setup failed: %w", err)
	}

	// Step 3: Generate submissions
	submissions, err := generateSubmissions(ctx, config, players, stats)
	if err != nil {
		return fmt.Errorf("submission generation failed: %w", err)
	}

	// Step 4: Submit results concurrently
	if err := submitResults(ctx, config, submissions, ids, stats); err != nil {
		return fmt.Errorf("result submission failed: %w", err)
	}

	// Step 5: Verify pending results as the coach
	if err := verifyPendingResults(ctx, config, coach, stats); err != nil {
		return fmt.Errorf("verification pass failed: %w", err)
	}

	// Step 6: Wait for cached boards to catch up
	logger.Get().Info(ctx, "waiting for leaderboards to settle")
	select {
	case <-ctx.Done():
		return fmt.Errorf("context cancelled while settling: %w", ctx.Err())
	case <-time.After(BoardSettleDelay):
	}

	// Step 7: Retrieve per-player statistics concurrently
	rollups, err := retrieveStatistics(ctx, config, players, ids, stats)
	if err != nil {
		return fmt.Errorf("statistics retrieval failed: %w", err)
	}

	// Step 8: Get leaderboard
	board, err := fetchLeaderboard(ctx, config, coach, stats)
	if err != nil {
		return fmt.Errorf("leaderboard retrieval failed: %w", err)
	}

	// Step 9: Check consistency
	seeded := make(map[string]bool, len(players))
	for _, p := range players {
		seeded[p] = true
	}
	if err := checkConsistency(config, rollups, board, seeded); err != nil {
		return fmt.Errorf("consistency check failed: %w", err)
	}

	// Step 10: Save submissions to file
	if err := saveSubmissionsToFile(ctx, config, submissions); err != nil {
		logger.Get().Warn(ctx, "failed to save submissions to file", logger.Error(err))
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "seed run completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url, identity{})
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// mintIdentities prepares one identity per player plus the coach identity
// the verification pass runs under.
func mintIdentities(ctx context.Context, config *Config, players []string) (map[string]identity, identity, error) {
	ids := make(map[string]identity, len(players))
	for _, userID := range players {
		id, err := newIdentity(config.JWTSecret, userID, []string{model.RolePlayer})
		if err != nil {
			return nil, identity{}, err
		}
		ids[userID] = id
	}

	coachID := "coach-" + uuid.New().String()
	coach, err := newIdentity(config.JWTSecret, coachID, []string{model.RoleCoach})
	if err != nil {
		return nil, identity{}, err
	}

	mode := "identity headers"
	if config.JWTSecret != "" {
		mode = "bearer tokens"
	}
	logger.Get().Info(ctx, "identities ready",
		logger.Int("players", len(ids)),
		logger.String("coach", coachID),
		logger.String("mode", mode))

	return ids, coach, nil
}

// saveSubmissionsToFile saves the submitted payloads to a JSON file.
func saveSubmissionsToFile(ctx context.Context, config *Config, submissions []Submission) error {
	if len(submissions) == 0 {
		return fmt.Errorf("no submissions to save")
	}

	// Determine output filename
	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "seeded_results_" + timestamp + ".json"
	}

	// Ensure the directory exists
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write submissions to file
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	// Write JSON array; each record carries the submitting player too.
	if _, err := file.WriteString("[\n"); err != nil {
		return fmt.Errorf("failed to write opening bracket: %w", err)
	}

	for i, sub := range submissions {
		record := struct {
			UserID string `json:"user_id"`
			Submission
		}{UserID: sub.UserID, Submission: sub}

		jsonData, err := marshalJSON(record)
		if err != nil {
			return fmt.Errorf("failed to marshal submission %d: %w", i, err)
		}

		if _, err := file.Write(jsonData); err != nil {
			return fmt.Errorf("failed to write submission %d: %w", i, err)
		}

		// Add comma except for last submission
		if i < len(submissions)-1 {
			if _, err := file.WriteString(","); err != nil {
				return fmt.Errorf("failed to write comma: %w", err)
			}
		}
		_, _ = file.WriteString("\n")
	}

	if _, err := file.WriteString("]\n"); err != nil {
		return fmt.Errorf("failed to write closing bracket: %w", err)
	}

	logger.Get().Info(ctx, "submissions saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final run statistics.
func displayFinalStats(stats *Stats) {
	var successRate, resultsPerSecond float64

	if stats.ResultsSubmitted > 0 {
		successRate = float64(stats.ResultsSuccessful) / float64(stats.ResultsSubmitted) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		resultsPerSecond = float64(stats.ResultsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("playersSeeded", stats.PlayersSeeded),
		logger.Int("resultsGenerated", stats.ResultsGenerated),
		logger.Int("resultsSubmitted", stats.ResultsSubmitted),
		logger.Int("resultsSuccessful", stats.ResultsSuccessful),
		logger.Int("resultsDuplicate", stats.ResultsDuplicate),
		logger.Int("resultsFailed", stats.ResultsFailed),
		logger.Int("resultsVerified", stats.ResultsVerified),
		logger.Int("verificationsFailed", stats.VerificationsFailed),
		logger.Int("statisticsRetrieved", stats.StatisticsRetrieved),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("resultsPerSecond", resultsPerSecond))
}
