package seedresults

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"
	"sync/atomic"
)

// verifyBody is the verification request payload.
type verifyBody struct {
	Resolution string `json:"resolution"`
}

// verifyPendingResults drains the pending verification queue as the seeded
// coach. Submitted results only count toward statistics and boards once a
// coach has verified them, so the read-back steps depend on this pass.
func verifyPendingResults(ctx context.Context, config *Config, coach identity, stats *Stats) error {
	log.Printf("📋 Verifying pending results with %d workers...", config.Workers)

	client := newHTTPClient(config.Timeout)

	var (
		verified int64
		failed   int64
	)

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during verification: %w", ctx.Err())
		default:
		}

		page, err := fetchPendingPage(ctx, client, config.BaseURL, coach)
		if err != nil {
			return fmt.Errorf("failed to list pending results: %w", err)
		}
		if len(page.Results) == 0 {
			break
		}

		// Verify this page concurrently before fetching the next one;
		// verified results drop out of the pending listing.
		before := atomic.LoadInt64(&verified)

		idChan := make(chan string, config.Workers*WorkerChannelMultiplier)
		var wg sync.WaitGroup

		for i := 0; i < config.Workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				for resultID := range idChan {
					select {
					case <-ctx.Done():
						return
					default:
						if err := verifySingleResult(ctx, client, config.BaseURL, coach, resultID); err != nil {
							atomic.AddInt64(&failed, 1)
							if config.Verbose {
								log.Printf("⚠️  Failed to verify %s: %v", resultID, err)
							}
							continue
						}
						atomic.AddInt64(&verified, 1)
					}
				}
			}()
		}

		for _, r := range page.Results {
			select {
			case <-ctx.Done():
				close(idChan)
				wg.Wait()
				return fmt.Errorf("context cancelled during verification: %w", ctx.Err())
			case idChan <- r.ID:
			}
		}
		close(idChan)
		wg.Wait()

		if atomic.LoadInt64(&verified) == before {
			return fmt.Errorf("pending queue is not draining: %d results keep failing verification", len(page.Results))
		}

		if config.Verbose {
			log.Printf("📊 Verification progress: %d verified, %d failed, %d still pending",
				atomic.LoadInt64(&verified), atomic.LoadInt64(&failed), page.Total-len(page.Results))
		}
	}

	// Update stats
	stats.ResultsVerified = int(atomic.LoadInt64(&verified))
	stats.VerificationsFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`✅ Verification pass completed:
   Verified: %d
   Failed: %d
`, stats.ResultsVerified, stats.VerificationsFailed)

	return nil
}

// fetchPendingPage retrieves one page of pending results for the coach.
func fetchPendingPage(ctx context.Context, client *HTTPClient, baseURL string, coach identity) (*PendingPage, error) {
	url := baseURL + "/verifications/pending?limit=" + strconv.Itoa(PendingPageLimit)

	resp, err := client.Get(ctx, url, coach)
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

	var page PendingPage
	if err := unmarshalJSON(body, &page); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &page, nil
}

// verifySingleResult confirms one pending result as the coach.
func verifySingleResult(ctx context.Context, client *HTTPClient, baseURL string, coach identity, resultID string) error {
	url := baseURL + "/results/" + resultID + "/verify"

	resp, err := client.Post(ctx, url, coach, verifyBody{Resolution: "verified"})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
