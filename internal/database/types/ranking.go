package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/pantheon-social/pantheon/internal/database/types/enum"
	"github.com/uptrace/bun"
)

// TopRankedCount is the bound on the published ranking.
const TopRankedCount = enum.TierCount * enum.TierBandSize

// RankingEntry is one row of the published top-50 snapshot for a period.
// The whole set for a period is rebuilt atomically on every refresh;
// entries are never patched in place.
type RankingEntry struct {
	bun.BaseModel `bun:"table:ranking_entries"`

	PeriodID     uuid.UUID `bun:",pk,type:uuid"          json:"periodId"`
	UserID       uint64    `bun:",pk"                    json:"userId"`
	RankPosition int       `bun:",notnull"               json:"rankPosition"`
	Tier         enum.Tier `bun:",notnull"               json:"tier"`
	TotalPoints  float64   `bun:",notnull"               json:"totalPoints"`
	LastUpdated  time.Time `bun:",notnull,default:now()" json:"lastUpdated"`
}

// UserStats is the read-side view of a single user's standing in the
// active period. RankPosition and Tier are nil when the user is outside
// the published top-50.
type UserStats struct {
	UserID       uint64     `json:"userId"`
	TotalPoints  float64    `json:"totalPoints"`
	RankPosition *int       `json:"rankPosition"`
	Tier         *enum.Tier `json:"tier"`
}
