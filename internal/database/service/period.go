package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pantheon-social/pantheon/internal/database/models"
	"github.com/pantheon-social/pantheon/internal/database/types"
	"go.uber.org/zap"
)

// PeriodService owns the single-active-period invariant and drives
// rollover: when the active period expires it is completed, its rewards
// distributed, and the successor opened for the ledger to write into.
type PeriodService struct {
	model  *models.PeriodModel
	reward *RewardService
	logger *zap.Logger
}

// NewPeriodService creates a new period service.
func NewPeriodService(model *models.PeriodModel, reward *RewardService, logger *zap.Logger) *PeriodService {
	return &PeriodService{
		model:  model,
		reward: reward,
		logger: logger.Named("period_service"),
	}
}

// GetOrCreateActivePeriod resolves the active period, rolling over expired
// ones first. Reward distribution failures for closed periods are logged
// and retried by the rollover worker rather than blocking point-bearing
// writes; a missing active period, however, is fatal to the caller.
func (s *PeriodService) GetOrCreateActivePeriod(ctx context.Context) (*types.Period, error) {
	active, closed, err := s.model.GetOrCreateActive(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrNoActivePeriod, err)
	}

	for _, period := range closed {
		if err := s.reward.FinalizePeriod(ctx, period.ID); err != nil {
			s.logger.Error("Failed to finalize closed period, will retry",
				zap.String("periodID", period.ID.String()),
				zap.Error(err))
		}
	}

	return active, nil
}

// ClosePendingRewards finishes reward distribution for any completed
// period whose close never ran to completion (crash between reward
// issuance and cache update, or a failed finalize during rollover).
func (s *PeriodService) ClosePendingRewards(ctx context.Context) error {
	pending, err := s.model.GetCompletedPendingRewards(ctx)
	if err != nil {
		return err
	}

	for _, period := range pending {
		if err := s.reward.FinalizePeriod(ctx, period.ID); err != nil {
			return fmt.Errorf("failed to finalize period %s: %w", period.ID, err)
		}
	}

	return nil
}
