package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pantheon-social/pantheon/internal/database/models"
	"github.com/pantheon-social/pantheon/internal/database/types/enum"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// tierKeyPrefix namespaces tier badge keys in the cache database.
const tierKeyPrefix = "profile:tier:"

// ProfileService serves the denormalized tier badge: the Postgres row is
// authoritative, and a Redis mirror carries the hot read path so profile
// rendering never joins the ranking tables.
type ProfileService struct {
	model  *models.ProfileModel
	cache  rueidis.Client
	logger *zap.Logger
}

// NewProfile creates a new profile service.
func NewProfile(model *models.ProfileModel, cache rueidis.Client, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		model:  model,
		cache:  cache,
		logger: logger.Named("profile_service"),
	}
}

// Mirror pushes a tier sync outcome into the Redis mirror. Mirror
// failures are logged and returned but never corrupt state: the next
// sync overwrites the same keys.
func (s *ProfileService) Mirror(ctx context.Context, sync *models.TierSync) error {
	if s.cache == nil {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for userID, tier := range sync.Set {
		g.Go(func() error {
			err := s.cache.Do(ctx,
				s.cache.B().Set().Key(tierKey(userID)).Value(tier.String()).Build(),
			).Error()
			if err != nil {
				return fmt.Errorf("failed to mirror tier for user %d: %w", userID, err)
			}

			return nil
		})
	}

	for _, userID := range sync.Cleared {
		g.Go(func() error {
			err := s.cache.Do(ctx,
				s.cache.B().Del().Key(tierKey(userID)).Build(),
			).Error()
			if err != nil {
				return fmt.Errorf("failed to clear mirrored tier for user %d: %w", userID, err)
			}

			return nil
		})
	}

	return g.Wait()
}

// CurrentTier returns the user's current tier badge, or nil when the user
// holds none. Reads through the Redis mirror and falls back to Postgres,
// backfilling the mirror on a hit.
func (s *ProfileService) CurrentTier(ctx context.Context, userID uint64) (*enum.Tier, error) {
	if s.cache != nil {
		value, err := s.cache.Do(ctx, s.cache.B().Get().Key(tierKey(userID)).Build()).ToString()
		if err == nil {
			tier, parseErr := enum.TierString(value)
			if parseErr != nil {
				return nil, fmt.Errorf("corrupt mirrored tier for user %d: %w", userID, parseErr)
			}

			return &tier, nil
		}

		if !rueidis.IsRedisNil(err) {
			s.logger.Warn("Tier mirror read failed, falling back to database",
				zap.Uint64("userID", userID),
				zap.Error(err))
		}
	}

	tier, err := s.model.GetTier(ctx, userID)
	if err != nil {
		return nil, err
	}

	if tier != nil && s.cache != nil {
		err := s.cache.Do(ctx,
			s.cache.B().Set().Key(tierKey(userID)).Value(tier.String()).Build(),
		).Error()
		if err != nil {
			s.logger.Warn("Failed to backfill tier mirror",
				zap.Uint64("userID", userID),
				zap.Error(err))
		}
	}

	return tier, nil
}

// tierKey builds the mirror key for a user.
func tierKey(userID uint64) string {
	return tierKeyPrefix + strconv.FormatUint(userID, 10)
}
