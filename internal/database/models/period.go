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

// periodLockKey is the advisory lock key serializing period rollover.
// Every check-and-create takes this lock so two concurrent callers can
// never create two active periods.
const periodLockKey = 0x70616E01 // "pan" + table tag

// PeriodModel handles database operations for ranking periods.
type PeriodModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewPeriod creates a new period model.
func NewPeriod(db *bun.DB, logger *zap.Logger) *PeriodModel {
	return &PeriodModel{
		db:     db,
		logger: logger.Named("db_period"),
	}
}

// GetOrCreateActive returns the current active period, creating one if
// none exists or rolling over if the active period has expired. Returns
// the periods that were closed by this call so the caller can distribute
// their rewards. The whole check-and-create runs under an advisory
// transaction lock; a racing caller blocks and then re-reads the winner's
// row.
func (m *PeriodModel) GetOrCreateActive(ctx context.Context, now time.Time) (*types.Period, []*types.Period, error) {
	var (
		active *types.Period
		closed []*types.Period
	)

	err := dbretry.Transaction(ctx, m.db, func(ctx context.Context, tx bun.Tx) error {
		active = nil
		closed = nil

		if _, err := tx.NewRaw("SELECT pg_advisory_xact_lock(?)", periodLockKey).Exec(ctx); err != nil {
			return fmt.Errorf("failed to acquire period lock: %w", err)
		}

		var current types.Period

		err := tx.NewSelect().
			Model(&current).
			Where("status = ?", enum.PeriodStatusActive).
			Scan(ctx)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			// First period ever: anchor it at now.
			active = types.NewPeriod(now)

			if _, err := tx.NewInsert().Model(active).Exec(ctx); err != nil {
				return fmt.Errorf("failed to create initial period: %w", err)
			}

			m.logger.Info("Created initial period",
				zap.String("periodID", active.ID.String()),
				zap.Time("startTime", active.StartTime),
				zap.Time("endTime", active.EndTime))

			return nil
		case err != nil:
			return fmt.Errorf("failed to get active period: %w", err)
		}

		active = &current

		// Roll forward until the active period covers now. Periods stay
		// contiguous even if the system was down across several windows.
		for active.Expired(now) {
			completed := active
			completed.Status = enum.PeriodStatusCompleted

			_, err := tx.NewUpdate().
				Model(completed).
				Column("status").
				WherePK().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to complete period: %w", err)
			}

			closed = append(closed, completed)

			next := completed.NextPeriod()
			if _, err := tx.NewInsert().Model(next).Exec(ctx); err != nil {
				return fmt.Errorf("failed to create next period: %w", err)
			}

			m.logger.Info("Rolled over period",
				zap.String("completedID", completed.ID.String()),
				zap.String("nextID", next.ID.String()),
				zap.Time("nextEndTime", next.EndTime))

			active = next
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return active, closed, nil
}

// GetActive retrieves the currently active period without rolling over.
// Read paths use this; write paths go through GetOrCreateActive.
func (m *PeriodModel) GetActive(ctx context.Context) (*types.Period, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.Period, error) {
		var period types.Period

		err := m.db.NewSelect().
			Model(&period).
			Where("status = ?", enum.PeriodStatusActive).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, types.ErrNoActivePeriod
			}

			return nil, fmt.Errorf("failed to get active period: %w", err)
		}

		return &period, nil
	})
}

// GetByID retrieves a period by its ID.
func (m *PeriodModel) GetByID(ctx context.Context, periodID uuid.UUID) (*types.Period, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.Period, error) {
		var period types.Period

		err := m.db.NewSelect().
			Model(&period).
			Where("id = ?", periodID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, types.ErrPeriodNotFound
			}

			return nil, fmt.Errorf("failed to get period: %w", err)
		}

		return &period, nil
	})
}

// GetCompletedPendingRewards returns completed periods whose reward
// distribution never finished. These are re-run by the rollover worker.
func (m *PeriodModel) GetCompletedPendingRewards(ctx context.Context) ([]*types.Period, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Period, error) {
		var periods []*types.Period

		err := m.db.NewSelect().
			Model(&periods).
			Where("status = ?", enum.PeriodStatusCompleted).
			Where("rewards_distributed_at IS NULL").
			Order("end_time ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get pending periods: %w", err)
		}

		return periods, nil
	})
}

// MarkRewardsDistributed records that reward distribution for the period
// ran to completion.
func (m *PeriodModel) MarkRewardsDistributed(ctx context.Context, periodID uuid.UUID, distributedAt time.Time) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := m.db.NewUpdate().
			Model((*types.Period)(nil)).
			Set("rewards_distributed_at = ?", distributedAt).
			Where("id = ?", periodID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to mark rewards distributed: %w", err)
		}

		return nil
	})
}
