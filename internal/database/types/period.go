package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/pantheon-social/pantheon/internal/database/types/enum"
	"github.com/uptrace/bun"
)

// PeriodLength is the fixed duration of a ranking period.
const PeriodLength = 7 * 24 * time.Hour

// Period is a weekly ranking window. Periods are contiguous and
// non-overlapping: each period starts exactly where the previous one
// ended. At most one period is active at any instant, enforced by a
// partial unique index on status.
type Period struct {
	bun.BaseModel `bun:"table:periods"`

	ID        uuid.UUID         `bun:",pk,type:uuid"          json:"id"`
	StartTime time.Time         `bun:",notnull"               json:"startTime"`
	EndTime   time.Time         `bun:",notnull"               json:"endTime"`
	Status    enum.PeriodStatus `bun:",notnull,default:0"     json:"status"`
	CreatedAt time.Time         `bun:",notnull,default:now()" json:"createdAt"`

	// RewardsDistributedAt marks the completion of reward distribution for
	// this period. A completed period with a nil marker is a partial
	// rollover and gets re-run idempotently.
	RewardsDistributedAt *time.Time `bun:",nullzero" json:"rewardsDistributedAt"`
}

// Expired reports whether the period's window has closed as of now.
func (p *Period) Expired(now time.Time) bool {
	return !now.Before(p.EndTime)
}

// NextPeriod builds the successor period starting at this period's end.
func (p *Period) NextPeriod() *Period {
	return &Period{
		ID:        uuid.New(),
		StartTime: p.EndTime,
		EndTime:   p.EndTime.Add(PeriodLength),
		Status:    enum.PeriodStatusActive,
	}
}

// NewPeriod builds a fresh period starting at the given instant. Used only
// when no period has ever existed.
func NewPeriod(start time.Time) *Period {
	return &Period{
		ID:        uuid.New(),
		StartTime: start,
		EndTime:   start.Add(PeriodLength),
		Status:    enum.PeriodStatusActive,
	}
}
