package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/pantheon-social/pantheon/internal/database/models"
	"github.com/pantheon-social/pantheon/internal/database/types"
	"github.com/pantheon-social/pantheon/internal/database/types/enum"
	"go.uber.org/zap"
)

// RankingService derives the published top-50 view from running point
// totals. Every refresh rebuilds the whole snapshot; entries are never
// patched in place, so positional drift cannot accumulate.
type RankingService struct {
	period  *models.PeriodModel
	event   *models.EventModel
	ranking *models.RankingModel
	profile *models.ProfileModel
	mirror  *ProfileService
	logger  *zap.Logger
}

// NewRanking creates a new ranking service.
func NewRanking(
	period *models.PeriodModel,
	event *models.EventModel,
	ranking *models.RankingModel,
	profile *models.ProfileModel,
	mirror *ProfileService,
	logger *zap.Logger,
) *RankingService {
	return &RankingService{
		period:  period,
		event:   event,
		ranking: ranking,
		profile: profile,
		mirror:  mirror,
		logger:  logger.Named("ranking_service"),
	}
}

// RefreshRanking rebuilds the period's ranking snapshot from a consistent
// read of the point totals and synchronizes the profile tier cache.
// Writes landing mid-refresh are picked up by the next refresh, never
// blended into this one.
func (s *RankingService) RefreshRanking(ctx context.Context, periodID uuid.UUID) ([]*types.RankingEntry, error) {
	totals, err := s.event.GetTopTotals(ctx, periodID, types.TopRankedCount)
	if err != nil {
		return nil, fmt.Errorf("failed to read totals for ranking: %w", err)
	}

	entries, err := buildRankingEntries(periodID, totals, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.ranking.ReplaceRanking(ctx, periodID, entries); err != nil {
		return nil, fmt.Errorf("failed to replace ranking: %w", err)
	}

	sync, err := s.profile.SyncFromRanking(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to sync profile tiers: %w", err)
	}

	if err := s.mirror.Mirror(ctx, sync); err != nil {
		// The Postgres cache row is authoritative; the Redis mirror
		// catches up on the next refresh.
		s.logger.Warn("Failed to mirror tier badges",
			zap.String("periodID", periodID.String()),
			zap.Error(err))
	}

	s.logger.Debug("Refreshed ranking",
		zap.String("periodID", periodID.String()),
		zap.Int("entries", len(entries)))

	return entries, nil
}

// GetCurrentRanking returns the active period's published snapshot in
// rank order.
func (s *RankingService) GetCurrentRanking(ctx context.Context) ([]*types.RankingEntry, error) {
	period, err := s.period.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	return s.ranking.GetRanking(ctx, period.ID)
}

// GetUserStats returns a user's standing in the active period. Rank and
// tier are nil for users outside the published top-50.
func (s *RankingService) GetUserStats(ctx context.Context, userID uint64) (*types.UserStats, error) {
	period, err := s.period.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	total, err := s.event.GetTotal(ctx, userID, period.ID)
	if err != nil {
		return nil, err
	}

	stats := &types.UserStats{
		UserID:      userID,
		TotalPoints: total.TotalPoints,
	}

	entry, err := s.ranking.GetUserEntry(ctx, period.ID, userID)
	if err != nil {
		return nil, err
	}

	if entry != nil {
		stats.RankPosition = &entry.RankPosition
		stats.Tier = &entry.Tier
	}

	return stats, nil
}

// buildRankingEntries orders totals into ranking entries. Ties break by
// earliest first-event timestamp (the user who reached the total first
// ranks higher), then by user ID ascending, so the order is total and
// two runs over the same snapshot produce identical output.
func buildRankingEntries(
	periodID uuid.UUID, totals []*types.UserPointTotal, now time.Time,
) ([]*types.RankingEntry, error) {
	sorted := make([]*types.UserPointTotal, len(totals))
	copy(sorted, totals)

	slices.SortFunc(sorted, func(a, b *types.UserPointTotal) int {
		if c := cmp.Compare(b.TotalPoints, a.TotalPoints); c != 0 {
			return c
		}
		if c := a.FirstEventAt.Compare(b.FirstEventAt); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})

	if len(sorted) > types.TopRankedCount {
		sorted = sorted[:types.TopRankedCount]
	}

	entries := make([]*types.RankingEntry, 0, len(sorted))

	for i, total := range sorted {
		position := i + 1

		tier, err := enum.TierForRank(position)
		if err != nil {
			return nil, err
		}

		entries = append(entries, &types.RankingEntry{
			PeriodID:     periodID,
			UserID:       total.UserID,
			RankPosition: position,
			Tier:         tier,
			TotalPoints:  total.TotalPoints,
			LastUpdated:  now,
		})
	}

	return entries, nil
}
