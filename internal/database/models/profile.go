package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pantheon-social/pantheon/internal/database/dbretry"
	"github.com/pantheon-social/pantheon/internal/database/types"
	"github.com/pantheon-social/pantheon/internal/database/types/enum"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// TierSync describes the outcome of synchronizing the profile tier cache
// against a ranking snapshot: which users gained or kept a tier and which
// fell out of the top-50.
type TierSync struct {
	Set     map[uint64]enum.Tier
	Cleared []uint64
}

// ProfileModel handles database operations for the denormalized profile
// tier cache.
type ProfileModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewProfile creates a new profile model.
func NewProfile(db *bun.DB, logger *zap.Logger) *ProfileModel {
	return &ProfileModel{
		db:     db,
		logger: logger.Named("db_profile"),
	}
}

// SyncFromRanking overwrites the tier cache against the period's current
// ranking snapshot: ranked users get their tier, everyone else holding a
// tier is cleared to null. Both halves are pure overwrites, so re-running
// the sync is unconditionally idempotent.
func (m *ProfileModel) SyncFromRanking(ctx context.Context, periodID uuid.UUID) (*TierSync, error) {
	sync := &TierSync{Set: make(map[uint64]enum.Tier)}

	err := dbretry.Transaction(ctx, m.db, func(ctx context.Context, tx bun.Tx) error {
		sync.Set = make(map[uint64]enum.Tier)
		sync.Cleared = nil

		var set []struct {
			UserID      uint64    `bun:"user_id"`
			CurrentTier enum.Tier `bun:"current_tier"`
		}

		err := tx.NewRaw(`
			INSERT INTO profile_tier_caches (user_id, current_tier, updated_at)
			SELECT user_id, tier, NOW()
			FROM ranking_entries
			WHERE period_id = ?
			ON CONFLICT (user_id) DO UPDATE
			SET current_tier = EXCLUDED.current_tier,
				updated_at = EXCLUDED.updated_at
			RETURNING user_id, current_tier
		`, periodID).Scan(ctx, &set)
		if err != nil {
			return fmt.Errorf("failed to set profile tiers: %w", err)
		}

		var cleared []uint64

		err = tx.NewRaw(`
			UPDATE profile_tier_caches
			SET current_tier = NULL, updated_at = NOW()
			WHERE current_tier IS NOT NULL
				AND user_id NOT IN (
					SELECT user_id FROM ranking_entries WHERE period_id = ?
				)
			RETURNING user_id
		`, periodID).Scan(ctx, &cleared)
		if err != nil {
			return fmt.Errorf("failed to clear dropped profile tiers: %w", err)
		}

		for _, row := range set {
			sync.Set[row.UserID] = row.CurrentTier
		}

		sync.Cleared = cleared

		return nil
	})
	if err != nil {
		return nil, err
	}

	return sync, nil
}

// GetTier retrieves a user's cached tier. Returns nil for users with no
// cache row or with a cleared tier.
func (m *ProfileModel) GetTier(ctx context.Context, userID uint64) (*enum.Tier, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*enum.Tier, error) {
		var cache types.ProfileTierCache

		err := m.db.NewSelect().
			Model(&cache).
			Where("user_id = ?", userID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, nil
			}

			return nil, fmt.Errorf("failed to get profile tier: %w", err)
		}

		return cache.CurrentTier, nil
	})
}
