package seedresults

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// retrieveStatistics fetches the season rollup for every seeded player
// concurrently, each request made with that player's own identity.
func retrieveStatistics(ctx context.Context, config *Config, players []string, ids map[string]identity, stats *Stats) ([]PlayerStats, error) {
	log.Printf("🏆 Retrieving statistics for %d players with %d workers...", len(players), config.Workers)

	client := newHTTPClient(config.Timeout)

	// Results storage
	rollups := make([]PlayerStats, len(players))
	var (
		retrieved int64
		failed    int64
	)

	// Progress reporting
	var lastReportNanos int64
	reportInterval := 1 * time.Second

	// Create worker pool
	playerChan := make(chan int, config.Workers*WorkerChannelMultiplier) // Send indices instead of IDs
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for index := range playerChan {
				select {
				case <-ctx.Done():
					return
				default:
					userID := players[index]
					rollup, err := retrieveSingleStatistics(ctx, client, config.BaseURL, ids[userID])

					if err != nil {
						atomic.AddInt64(&failed, 1)
						if config.Verbose {
							log.Printf("⚠️  Failed to get statistics for %s: %v", userID, err)
						}
					} else {
						rollups[index] = rollup
						atomic.AddInt64(&retrieved, 1)
					}

					// Progress reporting
					last := atomic.LoadInt64(&lastReportNanos)
					now := time.Now().UnixNano()
					if now-last >= int64(reportInterval) && atomic.CompareAndSwapInt64(&lastReportNanos, last, now) {
						total := atomic.LoadInt64(&retrieved) + atomic.LoadInt64(&failed)
						ret := atomic.LoadInt64(&retrieved)
						fail := atomic.LoadInt64(&failed)

						if config.Verbose {
							log.Printf("📊 Statistics progress: %d/%d retrieved (success: %d, failed: %d)",
								total, len(players), ret, fail)
						} else {
							log.Printf("\r🏆 Statistics: %d/%d retrieved (success: %d, failed: %d)",
								total, len(players), ret, fail)
						}
					}
				}
			}
		}(i)
	}

	// Send player indices to workers
	go func() {
		defer close(playerChan)
		for i := range players {
			select {
			case <-ctx.Done():
				return
			case playerChan <- i:
			}
		}
	}()

	// Wait for all workers to complete
	wg.Wait()

	// Final progress report
	if !config.Verbose {
		log.Println() // New line after progress indicator
	}

	// Filter out empty entries (failed retrievals)
	validRollups := make([]PlayerStats, 0, len(rollups))
	for _, rollup := range rollups {
		if rollup.UserID != "" { // Empty UserID indicates failed retrieval
			validRollups = append(validRollups, rollup)
		}
	}

	// Update stats
	stats.StatisticsRetrieved = len(validRollups)

	log.Printf(`✅ Statistics retrieval completed:
   Retrieved: %d
   Failed: %d
`, len(validRollups), int(atomic.LoadInt64(&failed)))

	return validRollups, nil
}

// retrieveSingleStatistics retrieves the rollup for a single player.
func retrieveSingleStatistics(ctx context.Context, client *HTTPClient, baseURL string, id identity) (PlayerStats, error) {
	url := baseURL + "/statistics/me"

	resp, err := client.Get(ctx, url, id)
	if err != nil {
		return PlayerStats{}, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return PlayerStats{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != StatusOK {
		return PlayerStats{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var rollup PlayerStats
	if err := unmarshalJSON(body, &rollup); err != nil {
		return PlayerStats{}, fmt.Errorf("failed to parse response: %w", err)
	}

	return rollup, nil
}

// fetchLeaderboard retrieves the top N leaderboard entries.
func fetchLeaderboard(ctx context.Context, config *Config, id identity, stats *Stats) (*Board, error) {
	log.Printf("🥇 Getting top %d leaderboard entries...", config.TopN)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/leaderboard?limit=" + strconv.Itoa(config.TopN)

	resp, err := client.Get(ctx, url, id)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var board Board
	if err := unmarshalJSON(body, &board); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	stats.LeaderboardEntries = len(board.Entries)
	log.Printf("✅ Retrieved %d leaderboard entries (%d ranked overall)", len(board.Entries), board.Total)

	return &board, nil
}
