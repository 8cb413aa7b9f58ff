package seedresults

import "time"

// HTTP status code constants.
const (
	StatusOK      = 200
	StatusCreated = 201
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	// BoardSettleDelay covers the refresh workers draining plus one
	// snapshot TTL, so the leaderboard reflects every verified result.
	BoardSettleDelay     = 6 * time.Second
	PercentageMultiplier = 100
)

// Identity constants.
const (
	TokenTTL         = 2 * time.Hour
	PendingPageLimit = 100
)
