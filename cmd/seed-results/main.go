package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/lfalegacy/pitchrank/internal/seedresults"
)

// Default configuration constants.
const (
	defaultNumPlayers       = 200
	defaultResultsPerPlayer = 5
	defaultTopN             = 50
	defaultWorkers          = 2 // multiplier for runtime.NumCPU()
	defaultTimeout          = 30 * time.Second
	defaultRunTimeout       = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		players    = flag.Int("players", defaultNumPlayers, "Number of distinct players to seed")
		perPlayer  = flag.Int("results", defaultResultsPerPlayer, "Number of results to submit per player")
		topN       = flag.Int("top", defaultTopN, "Number of top entries to fetch from leaderboard")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		secret     = flag.String("secret", "", "JWT secret for minting bearer tokens (default: identity headers)")
		outputFile = flag.String("output", "", "Output file for submitted results (default: seeded_results_TIMESTAMP.json)")
		logFile    = flag.String("log", "", "Log file for run output (default: seed_log_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seedresults.ShowHelp()
		return
	}

	// Setup logging
	if err := seedresults.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	// Create run configuration
	config := &seedresults.Config{
		BaseURL:          *baseURL,
		NumPlayers:       *players,
		ResultsPerPlayer: *perPlayer,
		TopN:             *topN,
		Workers:          *workers,
		Timeout:          *timeout,
		JWTSecret:        *secret,
		OutputFile:       *outputFile,
		LogFile:          *logFile,
		Verbose:          *verbose,
	}

	// Run the seeding
	if err := seedresults.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Seed run failed: " + err.Error() + "\n")
		return
	}
}
