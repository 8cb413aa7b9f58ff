package seedresults

import (
	"fmt"
	"log"
	"sort"
)

// checkConsistency verifies the read-back statistics and leaderboard
// against each other and against what the run seeded.
func checkConsistency(config *Config, rollups []PlayerStats, board *Board, seeded map[string]bool) error {
	log.Println("🔍 Checking consistency...")

	if len(rollups) == 0 {
		return fmt.Errorf("no statistics to check")
	}

	// Sort rollups by overall average (descending) to get top performers
	sortedRollups := make([]PlayerStats, len(rollups))
	copy(sortedRollups, rollups)
	sort.Slice(sortedRollups, func(i, j int) bool {
		return sortedRollups[i].OverallAverage > sortedRollups[j].OverallAverage
	})

	// Every seeded player's rollup should have results counted once the
	// verification pass went through.
	empty := 0
	for _, rollup := range rollups {
		if rollup.TotalGames == 0 {
			empty++
		}
	}
	if empty > 0 {
		log.Printf("⚠️  Statistics warning: %d of %d players still show zero games", empty, len(rollups))
	} else {
		log.Println("✅ All seeded players have games counted")
	}

	// Verify leaderboard shape if we have leaderboard data
	if board != nil && len(board.Entries) > 0 {
		if err := checkBoardShape(board, seeded); err != nil {
			log.Printf("⚠️  Leaderboard consistency warning: %v", err)
		} else {
			log.Println("✅ Leaderboard consistency verified")
		}
	}

	// Display top performers
	displayTopPerformers(sortedRollups, board, config.Verbose)

	log.Println("✅ Consistency check completed")
	return nil
}

// checkBoardShape checks ordering, rank numbering, and membership of the
// returned leaderboard page.
func checkBoardShape(board *Board, seeded map[string]bool) error {
	entries := board.Entries
	if len(entries) == 0 {
		return fmt.Errorf("empty leaderboard")
	}

	seen := make(map[string]bool, len(entries))
	for i, entry := range entries {
		// Ranks count up from the top of the page without gaps.
		if entry.Rank != entries[0].Rank+i {
			return fmt.Errorf("rank sequence broken at position %d: got rank %d", i, entry.Rank)
		}

		// Scores never increase as rank worsens.
		if i > 0 && entry.Score > entries[i-1].Score {
			return fmt.Errorf("leaderboard not properly sorted: entry %d has higher score than entry %d", i, i-1)
		}

		if seen[entry.UserID] {
			return fmt.Errorf("player %s appears twice on the board", entry.UserID)
		}
		seen[entry.UserID] = true
	}

	// The board may include players from earlier runs; only flag an entry
	// set with no seeded player at all.
	anySeeded := false
	for _, entry := range entries {
		if seeded[entry.UserID] {
			anySeeded = true
			break
		}
	}
	if !anySeeded {
		return fmt.Errorf("none of the %d seeded players made the top %d", len(seeded), len(entries))
	}

	return nil
}

// displayTopPerformers shows the top performers from rollups and leaderboard.
func displayTopPerformers(sortedRollups []PlayerStats, board *Board, verbose bool) {
	topN := 10
	if len(sortedRollups) < topN {
		topN = len(sortedRollups)
	}

	log.Printf("🏆 Top %d performers by season average:", topN)
	for i := 0; i < topN; i++ {
		rollup := sortedRollups[i]
		log.Printf("   %d. %s - Average: %.2f (%s, %d games)",
			i+1, rollup.UserID, rollup.OverallAverage, rollup.PerformanceLevel, rollup.TotalGames)
	}

	if board != nil && len(board.Entries) > 0 {
		boardTopN := topN
		if len(board.Entries) < boardTopN {
			boardTopN = len(board.Entries)
		}

		log.Printf("🥇 Top %d performers from leaderboard:", boardTopN)
		for i := 0; i < boardTopN; i++ {
			entry := board.Entries[i]
			log.Printf("   %d. %s - Score: %.3f (%d games, percentile %.1f)",
				entry.Rank, entry.UserID, entry.Score, entry.Games, entry.Percentile)
		}
	}

	if verbose {
		// Show some statistics
		if len(sortedRollups) > 0 {
			avgScore := calculateAverageScore(sortedRollups)
			maxScore := sortedRollups[0].OverallAverage
			minScore := sortedRollups[len(sortedRollups)-1].OverallAverage

			log.Printf(`📊 Season average statistics:
   Average: %.3f
   Maximum: %.3f
   Minimum: %.3f
`, avgScore, maxScore, minScore)
		}
	}
}

// calculateAverageScore calculates the mean season average across rollups.
func calculateAverageScore(rollups []PlayerStats) float64 {
	if len(rollups) == 0 {
		return 0
	}

	sum := 0.0
	for _, rollup := range rollups {
		sum += rollup.OverallAverage
	}

	return sum / float64(len(rollups))
}
