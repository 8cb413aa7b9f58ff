package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/lfalegacy/pitchrank/internal/adapters/repository"
	"github.com/lfalegacy/pitchrank/internal/domain/model"
	"github.com/lfalegacy/pitchrank/internal/domain/types"
	"github.com/lfalegacy/pitchrank/pkg/logger"
	"github.com/lfalegacy/pitchrank/pkg/metrics"
)

// SubmitResult records a finished game attempt for the acting player.
// Resubmitting a session returns the stored result with duplicate set
// instead of recording a second attempt.
func (s *Service) SubmitResult(ctx context.Context, actor model.Actor, sub *model.GameResult) (*model.GameResult, bool, error) {
	now := s.clock()

	r := *sub
	r.ID = uuid.NewString()
	r.UserID = actor.UserID
	r.Status = model.StatusPending
	r.CoachID = ""
	r.Feedback = ""
	r.DisputeReason = ""
	if r.RecordedAt.IsZero() {
		r.RecordedAt = now
	}
	r.CreatedAt = now
	r.UpdatedAt = now

	if err := r.Validate(); err != nil {
		return nil, false, err
	}

	// The deduper is advisory: a hit still gets confirmed against the
	// store before the submission is treated as a duplicate.
	if s.deduper.SeenAndRecord(ctx, r.UserID, r.SessionID) {
		existing, err := s.store.GetBySession(ctx, r.UserID, r.SessionID)
		if err == nil {
			metrics.RecordResultDuplicate()
			s.logger.Debug(ctx, "duplicate session submission",
				logger.String("userID", r.UserID),
				logger.String("sessionID", r.SessionID),
			)
			return existing, true, nil
		}
		if !errors.Is(err, model.ErrNotFound) {
			return nil, false, err
		}
		// False positive: fall through to the insert.
	}

	if err := s.store.InsertResult(ctx, &r); err != nil {
		if errors.Is(err, repository.ErrDuplicateSession) {
			// Lost a race against a concurrent submit for the same
			// session; serve whatever won.
			existing, getErr := s.store.GetBySession(ctx, r.UserID, r.SessionID)
			if getErr != nil {
				return nil, false, getErr
			}
			metrics.RecordResultDuplicate()
			return existing, true, nil
		}
		s.deduper.Unrecord(ctx, r.UserID, r.SessionID)
		return nil, false, err
	}

	metrics.RecordResultSubmitted()
	s.logger.Info(ctx, "result submitted",
		logger.String("resultID", r.ID),
		logger.String("userID", r.UserID),
		logger.String("gameType", string(r.GameType)),
		logger.Float64("score", r.FinalScore),
	)
	return &r, false, nil
}

// VerifyResult resolves a pending or disputed result. An empty
// resolution verifies; "invalid" voids a disputed result.
func (s *Service) VerifyResult(ctx context.Context, actor model.Actor, resultID, resolution, feedback string) (*model.GameResult, error) {
	if !actor.CanVerify() {
		return nil, fmt.Errorf("%w: verification requires the coach or admin role", model.ErrForbidden)
	}

	var target model.ResultStatus
	switch resolution {
	case "", string(model.StatusVerified):
		target = model.StatusVerified
	case string(model.StatusInvalid):
		target = model.StatusInvalid
	default:
		return nil, fmt.Errorf("%w: resolution must be %q or %q", model.ErrValidation, model.StatusVerified, model.StatusInvalid)
	}

	r, err := s.store.GetResult(ctx, resultID)
	if err != nil {
		return nil, err
	}
	if !r.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %s result cannot become %s", model.ErrInvalidTransition, r.Status, target)
	}

	r.Status = target
	r.CoachID = actor.UserID
	if feedback != "" {
		r.Feedback = feedback
	}
	if err := s.applyTransition(ctx, r); err != nil {
		return nil, err
	}

	metrics.RecordVerification(string(target))
	s.logger.Info(ctx, "result verified",
		logger.String("resultID", r.ID),
		logger.String("coachID", actor.UserID),
		logger.String("resolution", string(target)),
	)
	return r, nil
}

// DisputeResult contests a pending or verified result. Only the owner
// or a coach may dispute, and a reason is required.
func (s *Service) DisputeResult(ctx context.Context, actor model.Actor, resultID, reason string) (*model.GameResult, error) {
	r, err := s.store.GetResult(ctx, resultID)
	if err != nil {
		return nil, err
	}
	if actor.UserID != r.UserID && !actor.CanVerify() {
		return nil, fmt.Errorf("%w: only the owner or a coach may dispute a result", model.ErrForbidden)
	}
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: dispute reason is required", model.ErrValidation)
	}
	if !r.Status.CanTransitionTo(model.StatusDisputed) {
		return nil, fmt.Errorf("%w: %s result cannot be disputed", model.ErrInvalidTransition, r.Status)
	}

	r.Status = model.StatusDisputed
	r.DisputeReason = reason
	if err := s.applyTransition(ctx, r); err != nil {
		return nil, err
	}

	metrics.RecordDispute()
	s.logger.Info(ctx, "result disputed",
		logger.String("resultID", r.ID),
		logger.String("by", actor.UserID),
	)
	return r, nil
}

// ArchiveResult retires a result from active play history. Admin only;
// archival is terminal.
func (s *Service) ArchiveResult(ctx context.Context, actor model.Actor, resultID string) (*model.GameResult, error) {
	if !actor.CanArchive() {
		return nil, fmt.Errorf("%w: archival requires the admin role", model.ErrForbidden)
	}

	r, err := s.store.GetResult(ctx, resultID)
	if err != nil {
		return nil, err
	}
	if !r.Status.CanTransitionTo(model.StatusArchived) {
		return nil, fmt.Errorf("%w: %s result cannot be archived", model.ErrInvalidTransition, r.Status)
	}

	r.Status = model.StatusArchived
	if err := s.applyTransition(ctx, r); err != nil {
		return nil, err
	}

	metrics.RecordArchival()
	s.logger.Info(ctx, "result archived",
		logger.String("resultID", r.ID),
		logger.String("adminID", actor.UserID),
	)
	return r, nil
}

// ListResults returns a page of the acting player's own results,
// newest first.
func (s *Service) ListResults(ctx context.Context, actor model.Actor, q types.ResultQuery) (*types.ResultPage, error) {
	f := repository.ResultFilter{
		UserID:     actor.UserID,
		LocationID: q.LocationID,
		From:       q.From,
		To:         q.To,
	}
	if q.GameType != "" {
		gt := model.GameType(q.GameType)
		if !gt.Valid() {
			return nil, fmt.Errorf("%w: unknown game_type %q", model.ErrValidation, q.GameType)
		}
		f.GameType = gt
	}
	if q.Status != "" {
		st := model.ResultStatus(q.Status)
		if !st.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", model.ErrValidation, q.Status)
		}
		f.Status = st
	}
	f.Limit, f.Offset = clampPage(q.Limit, q.Offset, defaultPageSize, s.pageMax)

	results, total, err := s.store.ListResults(ctx, f)
	if err != nil {
		return nil, err
	}
	return newResultPage(results, total, f.Limit, f.Offset), nil
}

// PendingVerifications returns results awaiting review, newest first,
// optionally narrowed to one location. Coach or admin only. Disputed
// results sit in the same queue: both states wait on a coach ruling.
func (s *Service) PendingVerifications(ctx context.Context, actor model.Actor, locationID string, limit, offset int) (*types.ResultPage, error) {
	if !actor.CanVerify() {
		return nil, fmt.Errorf("%w: the verification queue requires the coach or admin role", model.ErrForbidden)
	}

	limit, offset = clampPage(limit, offset, defaultPageSize, s.pageMax)
	results, total, err := s.store.ListResults(ctx, repository.ResultFilter{
		Statuses:   []model.ResultStatus{model.StatusPending, model.StatusDisputed},
		LocationID: locationID,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, err
	}
	return newResultPage(results, total, limit, offset), nil
}

// applyTransition persists a status change and brings the owner's
// rollup and any cached boards back in line with stored state.
func (s *Service) applyTransition(ctx context.Context, r *model.GameResult) error {
	r.UpdatedAt = s.clock()
	if err := s.store.UpdateResult(ctx, r); err != nil {
		return err
	}
	if _, err := s.recomputeUser(ctx, r.UserID); err != nil {
		return err
	}
	s.refreshAffected(ctx, r)
	return nil
}

func newResultPage(results []model.GameResult, total, limit, offset int) *types.ResultPage {
	if results == nil {
		results = []model.GameResult{}
	}
	return &types.ResultPage{
		Results: results,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}
}
