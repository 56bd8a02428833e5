package models

import (
	"context"
	"fmt"

	"github.com/pantheon-social/pantheon/internal/database/dbretry"
	"github.com/pantheon-social/pantheon/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// RewardModel handles database operations for period-close rewards.
type RewardModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewReward creates a new reward model.
func NewReward(db *bun.DB, logger *zap.Logger) *RewardModel {
	return &RewardModel{
		db:     db,
		logger: logger.Named("db_reward"),
	}
}

// InsertRewards inserts reward records for a closing period. The
// (user_id, period_id) primary key turns retried inserts into no-ops, so
// a re-run close never issues a second reward.
func (m *RewardModel) InsertRewards(ctx context.Context, rewards []*types.UserReward) error {
	if len(rewards) == 0 {
		return nil
	}

	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := m.db.NewInsert().
			Model(&rewards).
			On("CONFLICT (user_id, period_id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to insert rewards: %w", err)
		}

		return nil
	})
}

// GetUserRewards retrieves a user's reward history, most recent first.
func (m *RewardModel) GetUserRewards(ctx context.Context, userID uint64) ([]*types.UserReward, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.UserReward, error) {
		var rewards []*types.UserReward

		err := m.db.NewSelect().
			Model(&rewards).
			Where("user_id = ?", userID).
			Order("earned_at DESC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get rewards: %w", err)
		}

		return rewards, nil
	})
}
