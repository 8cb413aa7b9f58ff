// Package repository persists game results and per-player statistics rollups.
package repository

import (
	"context"
	"time"

	"github.com/lfalegacy/pitchrank/internal/domain/model"
)

// ResultFilter narrows a result listing. Zero-valued fields match
// everything. From is inclusive, To is inclusive, and both compare
// against the result's recorded_at. Statuses matches any of its
// entries and takes precedence over Status when set. A Limit of zero
// or less returns every match and ignores Offset.
type ResultFilter struct {
	UserID     string
	LocationID string
	GameType   model.GameType
	Status     model.ResultStatus
	Statuses   []model.ResultStatus
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}

// Store provides durable access to game results and statistics rollups.
type Store interface {
	// InsertResult appends a new result. A second result for the same
	// (user, session) pair fails with ErrDuplicateSession.
	InsertResult(ctx context.Context, r *model.GameResult) error
	// GetResult returns one result by id, or model.ErrNotFound.
	GetResult(ctx context.Context, id string) (*model.GameResult, error)
	// GetBySession returns the result stored for a (user, session) pair,
	// or model.ErrNotFound.
	GetBySession(ctx context.Context, userID, sessionID string) (*model.GameResult, error)
	// UpdateResult persists the mutable fields of an existing result:
	// status, coach, feedback and dispute reason. Unknown ids fail with
	// model.ErrNotFound.
	UpdateResult(ctx context.Context, r *model.GameResult) error
	// ListResults returns matching results newest first, plus the total
	// match count independent of paging.
	ListResults(ctx context.Context, f ResultFilter) ([]model.GameResult, int, error)
	// ListUserResults returns every result for one player, oldest first.
	ListUserResults(ctx context.Context, userID string) ([]model.GameResult, error)
	// ListVerifiedSince returns verified results recorded at or after
	// since, oldest first. A zero since returns all verified results.
	ListVerifiedSince(ctx context.Context, since time.Time) ([]model.GameResult, error)
	// LastTransitionAt returns the time of the user's most recent result
	// status transition, or the zero time when none has happened.
	LastTransitionAt(ctx context.Context, userID string) (time.Time, error)

	// GetStatistics returns a player's rollup, or model.ErrNotFound.
	GetStatistics(ctx context.Context, userID string) (*model.PlayerStatistics, error)
	// SaveStatistics inserts or updates a rollup guarded by its version.
	// A stale version fails with model.ErrConflict; on success the
	// rollup's Version is advanced to the stored value.
	SaveStatistics(ctx context.Context, st *model.PlayerStatistics) error
	// ListStatistics returns every stored rollup ordered by user id.
	ListStatistics(ctx context.Context) ([]model.PlayerStatistics, error)

	// Ping verifies the backing database is reachable.
	Ping(ctx context.Context) error
	// Close releases the underlying database handles.
	Close() error
}
