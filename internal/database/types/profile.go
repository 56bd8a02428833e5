package types

import (
	"time"

	"github.com/pantheon-social/pantheon/internal/database/types/enum"
	"github.com/uptrace/bun"
)

// ProfileTierCache is the denormalized per-user tier field read by the
// profile surface without joining the ranking tables. CurrentTier is nil
// when the user is outside the top-50 or no period is active. The row is
// unconditionally overwritten on every sync, so cache updates are
// idempotent by construction.
type ProfileTierCache struct {
	bun.BaseModel `bun:"table:profile_tier_caches"`

	UserID      uint64     `bun:",pk"                    json:"userId"`
	CurrentTier *enum.Tier `bun:""                       json:"currentTier"`
	UpdatedAt   time.Time  `bun:",notnull,default:now()" json:"updatedAt"`
}
