package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lfalegacy/pitchrank/internal/adapters/snapshot"
	"github.com/lfalegacy/pitchrank/internal/domain/model"
	"github.com/lfalegacy/pitchrank/internal/domain/types"
	"github.com/lfalegacy/pitchrank/pkg/logger"
	"github.com/lfalegacy/pitchrank/pkg/metrics"
)

// Leaderboard returns a page of the requested ranking partition. Fresh
// snapshots serve directly; stale ones serve immediately with a rebuild
// queued behind them; the first read of a partition builds it inline.
// Category defaults to overall and period to all_time.
func (s *Service) Leaderboard(ctx context.Context, actor model.Actor, q types.LeaderboardQuery) (*types.LeaderboardPage, error) {
	if q.Category == "" {
		q.Category = string(model.CategoryOverall)
	}
	if q.Period == "" {
		q.Period = string(model.PeriodAllTime)
	}

	category, err := categoryFromQuery(q)
	if err != nil {
		return nil, err
	}
	period := model.Period(q.Period)
	if !period.Valid() {
		return nil, fmt.Errorf("%w: unknown period %q", model.ErrValidation, q.Period)
	}
	limit, offset := clampPage(q.Limit, q.Offset, s.boardDefault, s.boardMax)

	key := model.NewPartitionKey(category, period)
	snap, status := s.cache.Get(ctx, key)
	switch status {
	case snapshot.StatusFresh:
	case snapshot.StatusStale:
		// Serve the stale snapshot now; rebuild behind the response.
		s.queue.Enqueue(ctx, key)
	default:
		if err := s.Rebuild(ctx, key); err != nil {
			return nil, err
		}
		snap, status = s.cache.Get(ctx, key)
		if snap == nil {
			return nil, fmt.Errorf("leaderboard partition %s unavailable", key)
		}
	}

	page := &types.LeaderboardPage{
		Category:    string(category.Kind),
		Qualifier:   categoryQualifier(category),
		Period:      string(period),
		WindowStart: snap.WindowStart,
		BuiltAt:     snap.BuiltAt,
		Stale:       status == snapshot.StatusStale,
		Total:       len(snap.Entries),
		Limit:       limit,
		Offset:      offset,
	}

	lo := offset
	if lo > len(snap.Entries) {
		lo = len(snap.Entries)
	}
	hi := lo + limit
	if hi > len(snap.Entries) {
		hi = len(snap.Entries)
	}
	page.Entries = snap.Entries[lo:hi]
	if page.Entries == nil {
		page.Entries = []model.LeaderboardEntry{}
	}

	// The caller's own row rides along even when it falls outside the page.
	if actor.UserID != "" {
		for i := range snap.Entries {
			if snap.Entries[i].UserID == actor.UserID {
				me := snap.Entries[i]
				page.RequestingUser = &me
				break
			}
		}
	}

	return page, nil
}

// Rebuild recomputes one partition's snapshot from stored results and
// publishes it. It is the rebuild target for the refresh pool.
func (s *Service) Rebuild(ctx context.Context, key model.PartitionKey) error {
	category, period, err := model.ParsePartitionKey(key)
	if err != nil {
		return err
	}

	start := time.Now()
	now := s.clock()
	prev := s.cache.PreviousRanks(key)

	var entries []model.LeaderboardEntry
	var windowStart time.Time

	if ws, windowed := period.WindowStart(now); windowed {
		windowStart = ws
		results, err := s.store.ListVerifiedSince(ctx, windowStart)
		if err != nil {
			metrics.RecordLeaderboardError()
			return fmt.Errorf("load window for %s: %w", key, err)
		}
		entries = s.builder.BuildWindowed(category, results, prev)
	} else {
		rollups, err := s.store.ListStatistics(ctx)
		if err != nil {
			metrics.RecordLeaderboardError()
			return fmt.Errorf("load rollups for %s: %w", key, err)
		}
		entries = s.builder.BuildAllTime(category, rollups, prev)
	}

	s.cache.Put(ctx, &snapshot.Snapshot{
		Key:         key,
		Category:    category,
		Period:      period,
		Entries:     entries,
		WindowStart: windowStart,
		BuiltAt:     now,
	})

	metrics.RecordLeaderboardBuild()
	metrics.RecordLeaderboardBuildDuration(float64(time.Since(start).Milliseconds()))
	s.logger.Debug(ctx, "leaderboard partition rebuilt",
		logger.String("partition", string(key)),
		logger.Int("players", len(entries)),
		logger.Duration("took", time.Since(start)),
	)
	return nil
}

// refreshAffected queues rebuilds for every cached partition the result
// contributes to. Partitions nobody has read stay cold; their next read
// rebuilds inline.
func (s *Service) refreshAffected(ctx context.Context, r *model.GameResult) {
	for _, key := range s.cache.Keys() {
		category, _, err := model.ParsePartitionKey(key)
		if err != nil {
			continue
		}
		if categoryCovers(category, r) {
			s.queue.Enqueue(ctx, key)
		}
	}
}

// categoryCovers reports whether a result can move the given category's
// ranking.
func categoryCovers(c model.Category, r *model.GameResult) bool {
	switch c.Kind {
	case model.CategoryOverall:
		return true
	case model.CategoryGameType:
		return c.GameType == r.GameType
	case model.CategorySkill:
		_, ok := r.SkillScores[c.Skill]
		return ok
	case model.CategoryLocation:
		return c.LocationID == r.LocationID
	default:
		return false
	}
}

// categoryFromQuery binds a raw category/qualifier pair to the domain
// vocabulary.
func categoryFromQuery(q types.LeaderboardQuery) (model.Category, error) {
	c := model.Category{Kind: model.CategoryKind(q.Category)}
	switch c.Kind {
	case model.CategoryGameType:
		c.GameType = model.GameType(q.Qualifier)
	case model.CategorySkill:
		c.Skill = model.Skill(q.Qualifier)
	case model.CategoryLocation:
		c.LocationID = q.Qualifier
	}
	if err := c.Validate(); err != nil {
		return model.Category{}, err
	}
	return c, nil
}

func categoryQualifier(c model.Category) string {
	switch c.Kind {
	case model.CategoryGameType:
		return string(c.GameType)
	case model.CategorySkill:
		return string(c.Skill)
	case model.CategoryLocation:
		return c.LocationID
	default:
		return ""
	}
}
