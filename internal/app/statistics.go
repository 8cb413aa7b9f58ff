package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lfalegacy/pitchrank/internal/domain/model"
	"github.com/lfalegacy/pitchrank/pkg/logger"
	"github.com/lfalegacy/pitchrank/pkg/metrics"
)

// recomputeAttempts bounds the optimistic save loop: the initial write
// plus one retry on a version conflict.
const recomputeAttempts = 2

// MyStatistics returns the acting player's rollup. A player with no
// rollup yet gets one computed and stored on first read; a stored
// rollup older than the player's latest result transition is rebuilt
// before it is served.
func (s *Service) MyStatistics(ctx context.Context, actor model.Actor) (*model.PlayerStatistics, error) {
	st, err := s.store.GetStatistics(ctx, actor.UserID)
	switch {
	case err == nil:
		last, err := s.store.LastTransitionAt(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		if !last.After(st.UpdatedAt) {
			return st, nil
		}
		// A transition outran its recompute; rebuild before serving.
	case !errors.Is(err, model.ErrNotFound):
		return nil, err
	}
	return s.recomputeUser(ctx, actor.UserID)
}

// recomputeUser rebuilds one player's rollup from their full result
// history and saves it under the optimistic version guard. Concurrent
// recomputes for the same player serialize on a striped lock.
func (s *Service) recomputeUser(ctx context.Context, userID string) (*model.PlayerStatistics, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	st, err := s.recomputeLocked(ctx, userID)
	metrics.RecordRecomputeDuration(float64(time.Since(start).Milliseconds()))
	if err != nil {
		if !errors.Is(err, model.ErrConflict) {
			metrics.RecordRecomputeError()
		}
		s.logger.Error(ctx, "statistics recompute failed",
			logger.String("userID", userID),
			logger.Error(err),
		)
		return nil, err
	}

	metrics.RecordRecompute()
	s.logger.Debug(ctx, "statistics recomputed",
		logger.String("userID", userID),
		logger.Int("totalGames", st.TotalGames),
		logger.String("level", string(st.PerformanceLevel)),
	)
	return st, nil
}

func (s *Service) recomputeLocked(ctx context.Context, userID string) (*model.PlayerStatistics, error) {
	for attempt := 0; attempt < recomputeAttempts; attempt++ {
		var version int64
		current, err := s.store.GetStatistics(ctx, userID)
		switch {
		case err == nil:
			version = current.Version
		case errors.Is(err, model.ErrNotFound):
			version = 0
		default:
			return nil, err
		}

		results, err := s.store.ListUserResults(ctx, userID)
		if err != nil {
			return nil, err
		}

		st := s.agg.Aggregate(userID, results)
		st.Version = version
		if err := s.store.SaveStatistics(ctx, st); err != nil {
			if errors.Is(err, model.ErrConflict) {
				metrics.RecordRecomputeConflict()
				continue
			}
			return nil, err
		}
		return st, nil
	}
	return nil, fmt.Errorf("%w: statistics recompute for user %s", model.ErrConflict, userID)
}
