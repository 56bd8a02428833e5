package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pantheon-social/pantheon/internal/database/dbretry"
	"github.com/pantheon-social/pantheon/internal/database/types"
	"github.com/pantheon-social/pantheon/internal/database/types/enum"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// EventModel handles database operations for the engagement ledger and
// the materialized per-user point totals. Every point-affecting write
// runs as one transaction covering the event row and the total upsert.
type EventModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewEvent creates a new event model.
func NewEvent(db *bun.DB, logger *zap.Logger) *EventModel {
	return &EventModel{
		db:     db,
		logger: logger.Named("db_event"),
	}
}

// ApplyLike records a like event, or reactivates a previously reversed
// like of the same content. Re-liking already-liked content is a no-op:
// the partial unique index on (actor, content, action) holds one row per
// like and the conflict path only reactivates reversed rows. A
// reactivated like moves to the incoming event's period, so a
// like-unlike-relike cycle spanning a rollover credits the current
// period and never reopens a closed one.
func (m *EventModel) ApplyLike(ctx context.Context, event *types.EngagementEvent) error {
	return dbretry.Transaction(ctx, m.db, func(ctx context.Context, tx bun.Tx) error {
		var existing types.EngagementEvent

		err := tx.NewSelect().
			Model(&existing).
			Where("actor_id = ?", event.ActorID).
			Where("content_id = ?", event.ContentID).
			Where("content_type = ?", event.ContentType).
			Where("action_type = ?", enum.ActionTypeLike).
			For("UPDATE").
			Scan(ctx)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			if _, err := tx.NewInsert().Model(event).Exec(ctx); err != nil {
				return fmt.Errorf("failed to insert like event: %w", err)
			}

			return m.applyDelta(ctx, tx, event.SubjectUserID, event.PeriodID, event.PointsDelta, event.CreatedAt)
		case err != nil:
			return fmt.Errorf("failed to check existing like: %w", err)
		}

		if !existing.Reversed {
			// Already liked: idempotent no-op.
			return nil
		}

		_, err = tx.NewUpdate().
			Model(&existing).
			Set("reversed = false").
			Set("period_id = ?", event.PeriodID).
			Set("points_delta = ?", event.PointsDelta).
			Set("created_at = ?", event.CreatedAt).
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to reactivate like event: %w", err)
		}

		return m.applyDelta(ctx, tx, existing.SubjectUserID, event.PeriodID, event.PointsDelta, event.CreatedAt)
	})
}

// ReverseLike reverses the actor's like of the given content, returning
// the points the original event carried. Unliking content that was never
// liked, is already unliked, or was liked in an earlier (closed) period
// is a no-op; closed leaderboards are immutable.
func (m *EventModel) ReverseLike(
	ctx context.Context, actorID uint64, contentType enum.ContentType, contentID uint64, periodID uuid.UUID,
) error {
	return dbretry.Transaction(ctx, m.db, func(ctx context.Context, tx bun.Tx) error {
		var existing types.EngagementEvent

		err := tx.NewSelect().
			Model(&existing).
			Where("actor_id = ?", actorID).
			Where("content_id = ?", contentID).
			Where("content_type = ?", contentType).
			Where("action_type = ?", enum.ActionTypeLike).
			Where("period_id = ?", periodID).
			Where("reversed = false").
			For("UPDATE").
			Scan(ctx)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil
		case err != nil:
			return fmt.Errorf("failed to find like event: %w", err)
		}

		_, err = tx.NewUpdate().
			Model(&existing).
			Set("reversed = true").
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to reverse like event: %w", err)
		}

		return m.applyDelta(ctx, tx, existing.SubjectUserID, existing.PeriodID, -existing.PointsDelta, time.Now())
	})
}

// AppendEvent records an append-only engagement event (comment or share);
// each distinct comment or share is its own point-bearing row.
func (m *EventModel) AppendEvent(ctx context.Context, event *types.EngagementEvent) error {
	return dbretry.Transaction(ctx, m.db, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(event).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}

		return m.applyDelta(ctx, tx, event.SubjectUserID, event.PeriodID, event.PointsDelta, event.CreatedAt)
	})
}

// ReverseComment reverses exactly one of the actor's non-reversed comment
// events on the given content, matching the original event's contribution.
// Deleting a comment whose event is in a closed period is a no-op.
func (m *EventModel) ReverseComment(
	ctx context.Context, actorID uint64, contentType enum.ContentType, contentID uint64, periodID uuid.UUID,
) error {
	return dbretry.Transaction(ctx, m.db, func(ctx context.Context, tx bun.Tx) error {
		var existing types.EngagementEvent

		err := tx.NewSelect().
			Model(&existing).
			Where("actor_id = ?", actorID).
			Where("content_id = ?", contentID).
			Where("content_type = ?", contentType).
			Where("action_type = ?", enum.ActionTypeComment).
			Where("period_id = ?", periodID).
			Where("reversed = false").
			Order("created_at DESC").
			Limit(1).
			For("UPDATE").
			Scan(ctx)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil
		case err != nil:
			return fmt.Errorf("failed to find comment event: %w", err)
		}

		_, err = tx.NewUpdate().
			Model(&existing).
			Set("reversed = true").
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to reverse comment event: %w", err)
		}

		return m.applyDelta(ctx, tx, existing.SubjectUserID, existing.PeriodID, -existing.PointsDelta, time.Now())
	})
}

// applyDelta upserts the subject user's running total inside the caller's
// transaction. Zero deltas (self-engagement) skip the aggregate entirely.
// FirstEventAt is set once and never overwritten; it breaks ranking ties.
func (m *EventModel) applyDelta(
	ctx context.Context, tx bun.Tx, userID uint64, periodID uuid.UUID, delta float64, at time.Time,
) error {
	if delta == 0 {
		return nil
	}

	total := &types.UserPointTotal{
		UserID:       userID,
		PeriodID:     periodID,
		TotalPoints:  delta,
		FirstEventAt: at,
		UpdatedAt:    at,
	}

	_, err := tx.NewInsert().
		Model(total).
		On("CONFLICT (user_id, period_id) DO UPDATE").
		Set("total_points = upt.total_points + EXCLUDED.total_points").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert point total: %w", err)
	}

	return nil
}

// GetTotal retrieves a user's running total for a period. A user with no
// events has a zero total.
func (m *EventModel) GetTotal(ctx context.Context, userID uint64, periodID uuid.UUID) (*types.UserPointTotal, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.UserPointTotal, error) {
		var total types.UserPointTotal

		err := m.db.NewSelect().
			Model(&total).
			Where("user_id = ?", userID).
			Where("period_id = ?", periodID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return &types.UserPointTotal{UserID: userID, PeriodID: periodID}, nil
			}

			return nil, fmt.Errorf("failed to get point total: %w", err)
		}

		return &total, nil
	})
}

// GetTopTotals returns the period's totals in ranking order: points
// descending, then earliest first event, then user ID ascending. The
// ordering is total, so repeated reads of the same snapshot produce
// identical output.
func (m *EventModel) GetTopTotals(ctx context.Context, periodID uuid.UUID, limit int) ([]*types.UserPointTotal, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.UserPointTotal, error) {
		var totals []*types.UserPointTotal

		err := m.db.NewSelect().
			Model(&totals).
			Where("period_id = ?", periodID).
			Where("total_points > 0").
			Order("total_points DESC", "first_event_at ASC", "user_id ASC").
			Limit(limit).
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get top totals: %w", err)
		}

		return totals, nil
	})
}

// RecomputeTotals overwrites every cached total for the period with the
// sum of its non-reversed ledger events. The overwrite is idempotent and
// never double-applies; the event log is the source of truth.
func (m *EventModel) RecomputeTotals(ctx context.Context, periodID uuid.UUID) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := m.db.NewRaw(`
			UPDATE user_point_totals AS t
			SET total_points = COALESCE((
				SELECT SUM(e.points_delta)
				FROM engagement_events AS e
				WHERE e.subject_user_id = t.user_id
					AND e.period_id = t.period_id
					AND e.reversed = false
			), 0),
			updated_at = NOW()
			WHERE t.period_id = ?
		`, periodID).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to recompute totals: %w", err)
		}

		return nil
	})
}
