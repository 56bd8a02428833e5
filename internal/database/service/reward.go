package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pantheon-social/pantheon/internal/database/models"
	"github.com/pantheon-social/pantheon/internal/database/types"
	"github.com/pantheon-social/pantheon/internal/database/types/enum"
	"go.uber.org/zap"
)

// RewardService distributes one-time rewards when a period closes. Every
// step is idempotent, so a close that crashed partway is finished by
// re-running the same period.
type RewardService struct {
	period  *models.PeriodModel
	ranking *RankingService
	entries *models.RankingModel
	reward  *models.RewardModel
	profile *models.ProfileModel
	mirror  *ProfileService
	logger  *zap.Logger
}

// NewReward creates a new reward service.
func NewReward(
	period *models.PeriodModel,
	ranking *RankingService,
	entries *models.RankingModel,
	reward *models.RewardModel,
	profile *models.ProfileModel,
	mirror *ProfileService,
	logger *zap.Logger,
) *RewardService {
	return &RewardService{
		period:  period,
		ranking: ranking,
		entries: entries,
		reward:  reward,
		profile: profile,
		mirror:  mirror,
		logger:  logger.Named("reward_service"),
	}
}

// FinalizePeriod flushes the final ranking for a just-completed period
// and distributes its rewards. The synchronous refresh guarantees the
// closing snapshot reflects every engagement event before the period's
// end time rather than waiting for the next batch interval.
func (s *RewardService) FinalizePeriod(ctx context.Context, periodID uuid.UUID) error {
	if _, err := s.ranking.RefreshRanking(ctx, periodID); err != nil {
		return fmt.Errorf("failed to flush final ranking: %w", err)
	}

	return s.ClosePeriod(ctx, periodID)
}

// ClosePeriod issues exactly one reward per ranked user of a completed
// period and publishes the earned tiers onto the profile cache. Safe to
// re-run: the reward insert is uniqueness-guarded and the cache update is
// a pure overwrite.
func (s *RewardService) ClosePeriod(ctx context.Context, periodID uuid.UUID) error {
	period, err := s.period.GetByID(ctx, periodID)
	if err != nil {
		return err
	}

	if period.Status != enum.PeriodStatusCompleted {
		return fmt.Errorf("%w: %s", types.ErrPeriodNotCompleted, periodID)
	}

	if period.RewardsDistributedAt != nil {
		s.logger.Debug("Rewards already distributed",
			zap.String("periodID", periodID.String()))
		return nil
	}

	entries, err := s.entries.GetRanking(ctx, periodID)
	if err != nil {
		return fmt.Errorf("failed to read closing ranking: %w", err)
	}

	now := time.Now()

	rewards := make([]*types.UserReward, 0, len(entries))
	for _, entry := range entries {
		rewards = append(rewards, types.NewRewardFromEntry(entry, now))
	}

	if err := s.reward.InsertRewards(ctx, rewards); err != nil {
		return err
	}

	sync, err := s.profile.SyncFromRanking(ctx, periodID)
	if err != nil {
		return fmt.Errorf("failed to publish earned tiers: %w", err)
	}

	if err := s.mirror.Mirror(ctx, sync); err != nil {
		s.logger.Warn("Failed to mirror earned tiers",
			zap.String("periodID", periodID.String()),
			zap.Error(err))
	}

	if err := s.period.MarkRewardsDistributed(ctx, periodID, now); err != nil {
		return err
	}

	s.logger.Info("Distributed period rewards",
		zap.String("periodID", periodID.String()),
		zap.Int("rewards", len(rewards)))

	return nil
}

// GetUserRewardHistory returns a user's rewards, most recent first.
func (s *RewardService) GetUserRewardHistory(ctx context.Context, userID uint64) ([]*types.UserReward, error) {
	return s.reward.GetUserRewards(ctx, userID)
}
