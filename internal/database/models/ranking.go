package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pantheon-social/pantheon/internal/database/dbretry"
	"github.com/pantheon-social/pantheon/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// RankingModel handles database operations for the published top-50
// ranking snapshots.
type RankingModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewRanking creates a new ranking model.
func NewRanking(db *bun.DB, logger *zap.Logger) *RankingModel {
	return &RankingModel{
		db:     db,
		logger: logger.Named("db_ranking"),
	}
}

// ReplaceRanking atomically replaces the period's entire snapshot with the
// given entries. Delete and insert run in one transaction under a
// per-period advisory lock, so concurrent refreshes serialize instead of
// interleaving their halves and no stale lower-ranked rows survive.
func (m *RankingModel) ReplaceRanking(ctx context.Context, periodID uuid.UUID, entries []*types.RankingEntry) error {
	if len(entries) > types.TopRankedCount {
		return fmt.Errorf("%w: %d entries", types.ErrRankingOverflow, len(entries))
	}

	return dbretry.Transaction(ctx, m.db, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewRaw(
			"SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", periodID.String(),
		).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire ranking lock: %w", err)
		}

		_, err = tx.NewDelete().
			Model((*types.RankingEntry)(nil)).
			Where("period_id = ?", periodID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to clear ranking: %w", err)
		}

		if len(entries) == 0 {
			return nil
		}

		if _, err := tx.NewInsert().Model(&entries).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert ranking entries: %w", err)
		}

		return nil
	})
}

// GetRanking retrieves the period's snapshot ordered by rank position.
func (m *RankingModel) GetRanking(ctx context.Context, periodID uuid.UUID) ([]*types.RankingEntry, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.RankingEntry, error) {
		var entries []*types.RankingEntry

		err := m.db.NewSelect().
			Model(&entries).
			Where("period_id = ?", periodID).
			Order("rank_position ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get ranking: %w", err)
		}

		return entries, nil
	})
}

// PruneHistory removes ranking snapshots of completed periods beyond the
// keep most recent ones. The active period's snapshot is never touched.
// Returns the number of entries removed.
func (m *RankingModel) PruneHistory(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		keep = 1
	}

	return dbretry.Operation(ctx, func(ctx context.Context) (int64, error) {
		res, err := m.db.NewRaw(`
			DELETE FROM ranking_entries
			WHERE period_id IN (
				SELECT id FROM periods
				WHERE status = 1
				ORDER BY end_time DESC
				OFFSET ?
			)`, keep).Exec(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to prune ranking history: %w", err)
		}

		removed, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to count pruned entries: %w", err)
		}

		return removed, nil
	})
}

// GetUserEntry retrieves a single user's ranking entry for the period.
// Returns nil without error when the user is outside the top-50.
func (m *RankingModel) GetUserEntry(ctx context.Context, periodID uuid.UUID, userID uint64) (*types.RankingEntry, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.RankingEntry, error) {
		var entry types.RankingEntry

		err := m.db.NewSelect().
			Model(&entry).
			Where("period_id = ?", periodID).
			Where("user_id = ?", userID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, nil
			}

			return nil, fmt.Errorf("failed to get ranking entry: %w", err)
		}

		return &entry, nil
	})
}
