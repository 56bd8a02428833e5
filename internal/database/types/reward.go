package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/pantheon-social/pantheon/internal/database/types/enum"
	"github.com/uptrace/bun"
)

// UserReward is the immutable audit record issued exactly once per ranked
// user when a period closes. The (user_id, period_id) primary key makes a
// retried close a no-op on this table.
type UserReward struct {
	bun.BaseModel `bun:"table:user_rewards"`

	UserID       uint64    `bun:",pk"                    json:"userId"`
	PeriodID     uuid.UUID `bun:",pk,type:uuid"          json:"periodId"`
	RankAchieved int       `bun:",notnull"               json:"rankAchieved"`
	Tier         enum.Tier `bun:",notnull"               json:"tier"`
	TitleText    string    `bun:",notnull"               json:"titleText"`
	BadgeIcon    string    `bun:",notnull"               json:"badgeIcon"`
	EarnedAt     time.Time `bun:",notnull,default:now()" json:"earnedAt"`
}

// NewRewardFromEntry builds the reward record for a closing ranking entry.
func NewRewardFromEntry(entry *RankingEntry, earnedAt time.Time) *UserReward {
	return &UserReward{
		UserID:       entry.UserID,
		PeriodID:     entry.PeriodID,
		RankAchieved: entry.RankPosition,
		Tier:         entry.Tier,
		TitleText:    entry.Tier.Title(),
		BadgeIcon:    entry.Tier.Badge(),
		EarnedAt:     earnedAt,
	}
}
