package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pantheon-social/pantheon/internal/catalog"
	"github.com/pantheon-social/pantheon/internal/database/models"
	"github.com/pantheon-social/pantheon/internal/database/types"
	"github.com/pantheon-social/pantheon/internal/database/types/enum"
	"go.uber.org/zap"
)

// LedgerService records every point-affecting engagement exactly once and
// applies the corresponding delta to the subject user's running total.
// Content-interaction handlers call the On* hooks on state transitions;
// the ledger itself guarantees idempotency for like toggles and exact
// reversal for comment deletions.
type LedgerService struct {
	event  *models.EventModel
	period *PeriodService
	logger *zap.Logger
}

// NewLedger creates a new ledger service.
func NewLedger(event *models.EventModel, period *PeriodService, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		event:  event,
		period: period,
		logger: logger.Named("ledger_service"),
	}
}

// ApplyEvent applies one engagement delta. sign is +1 for the action and
// -1 for its reversal. The active period is resolved once here and
// threaded down explicitly; if none can be resolved the error is surfaced
// rather than the event silently dropped.
func (s *LedgerService) ApplyEvent(
	ctx context.Context, actorID, subjectUserID uint64,
	action enum.ActionType, content enum.ContentType, contentID uint64, sign int,
) error {
	if sign != 1 && sign != -1 {
		return fmt.Errorf("%w: %d", types.ErrInvalidSign, sign)
	}

	if sign == -1 && !action.Reversible() {
		return types.ErrShareNotReversible
	}

	delta, err := engagementDelta(actorID, subjectUserID, action, content)
	if err != nil {
		return err
	}

	period, err := s.period.GetOrCreateActivePeriod(ctx)
	if err != nil {
		return err
	}

	switch {
	case action == enum.ActionTypeLike && sign == 1:
		return s.event.ApplyLike(ctx, s.newEvent(actorID, subjectUserID, action, content, contentID, period.ID, delta))
	case action == enum.ActionTypeLike:
		return s.event.ReverseLike(ctx, actorID, content, contentID, period.ID)
	case action == enum.ActionTypeComment && sign == -1:
		return s.event.ReverseComment(ctx, actorID, content, contentID, period.ID)
	default:
		return s.event.AppendEvent(ctx, s.newEvent(actorID, subjectUserID, action, content, contentID, period.ID, delta))
	}
}

// OnLikeToggled applies or reverses a like depending on the new state.
// The caller toggles like state and invokes this only on transitions.
func (s *LedgerService) OnLikeToggled(
	ctx context.Context, actorID, subjectUserID uint64,
	content enum.ContentType, contentID uint64, liked bool,
) error {
	sign := 1
	if !liked {
		sign = -1
	}

	return s.ApplyEvent(ctx, actorID, subjectUserID, enum.ActionTypeLike, content, contentID, sign)
}

// OnCommentCreated records one point-bearing comment event.
func (s *LedgerService) OnCommentCreated(
	ctx context.Context, actorID, subjectUserID uint64, content enum.ContentType, contentID uint64,
) error {
	return s.ApplyEvent(ctx, actorID, subjectUserID, enum.ActionTypeComment, content, contentID, 1)
}

// OnCommentDeleted reverses exactly one comment event on the content.
func (s *LedgerService) OnCommentDeleted(
	ctx context.Context, actorID, subjectUserID uint64, content enum.ContentType, contentID uint64,
) error {
	return s.ApplyEvent(ctx, actorID, subjectUserID, enum.ActionTypeComment, content, contentID, -1)
}

// OnContentShared records one share event. Shares are not reversible.
func (s *LedgerService) OnContentShared(
	ctx context.Context, actorID, subjectUserID uint64, content enum.ContentType, contentID uint64,
) error {
	return s.ApplyEvent(ctx, actorID, subjectUserID, enum.ActionTypeShare, content, contentID, 1)
}

// Reconcile recomputes every cached total for the period from the event
// log, healing any drift. The overwrite is idempotent.
func (s *LedgerService) Reconcile(ctx context.Context, periodID uuid.UUID) error {
	if err := s.event.RecomputeTotals(ctx, periodID); err != nil {
		return err
	}

	s.logger.Info("Reconciled point totals", zap.String("periodID", periodID.String()))

	return nil
}

// newEvent builds a ledger row for the active period.
func (s *LedgerService) newEvent(
	actorID, subjectUserID uint64, action enum.ActionType, content enum.ContentType,
	contentID uint64, periodID uuid.UUID, delta float64,
) *types.EngagementEvent {
	return &types.EngagementEvent{
		ID:            uuid.New(),
		ActorID:       actorID,
		SubjectUserID: subjectUserID,
		ActionType:    action,
		ContentType:   content,
		ContentID:     contentID,
		PeriodID:      periodID,
		PointsDelta:   delta,
		CreatedAt:     time.Now(),
	}
}

// engagementDelta resolves the point value for an engagement. Engagement
// with the actor's own content is still logged but carries zero points.
func engagementDelta(
	actorID, subjectUserID uint64, action enum.ActionType, content enum.ContentType,
) (float64, error) {
	points, err := catalog.Points(action, content)
	if err != nil {
		return 0, err
	}

	if actorID == subjectUserID {
		return 0, nil
	}

	return points, nil
}
