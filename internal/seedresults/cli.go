package seedresults

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/lfalegacy/pitchrank/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init("text"); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "seed_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the seed results tool.
func ShowHelp() {
	os.Stdout.WriteString(`Pitchrank Result Seeding Tool
=============================

A concurrent tool for seeding the results service with realistic game
submissions and checking the statistics and leaderboard read paths.

The run submits results for a set of generated players, verifies the
pending queue as a seeded coach, then reads back per-player statistics
and the leaderboard and checks them for consistency.

Usage:
  go run cmd/seed-results/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -players int
        Number of distinct players to seed (default 200)
  -results int
        Number of results to submit per player (default 5)
  -top int
        Number of top entries to fetch from leaderboard (default 50)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -secret string
        JWT secret for minting bearer tokens (default: identity headers)
  -output string
        Output file for submitted results (default: seeded_results_TIMESTAMP.json)
  -log string
        Log file for run output (default: seed_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Seed with default settings
  go run cmd/seed-results/main.go

  # Seed a larger league with custom parameters
  go run cmd/seed-results/main.go -players 1000 -results 10 -workers 16

  # Seed against a deployment that checks bearer tokens
  go run cmd/seed-results/main.go -secret my-dev-secret -url http://localhost:8080

  # Seed with verbose output and a custom log file
  go run cmd/seed-results/main.go -verbose -players 500 -log my_seed.log
`)
}
