package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/pantheon-social/pantheon/internal/database/types/enum"
	"github.com/uptrace/bun"
)

// EngagementEvent is one point-affecting ledger entry. A reversal (unlike
// or comment deletion) flips the Reversed flag on the original event and
// withdraws its PointsDelta from the running total; reversed rows stay in
// the ledger and are excluded from reconciliation sums. PointsDelta is
// zero for self-engagement, which is still logged for analytics.
type EngagementEvent struct {
	bun.BaseModel `bun:"table:engagement_events"`

	ID            uuid.UUID        `bun:",pk,type:uuid"          json:"id"`
	ActorID       uint64           `bun:",notnull"               json:"actorId"`
	SubjectUserID uint64           `bun:",notnull"               json:"subjectUserId"`
	ActionType    enum.ActionType  `bun:",notnull"               json:"actionType"`
	ContentType   enum.ContentType `bun:",notnull"               json:"contentType"`
	ContentID     uint64           `bun:",notnull"               json:"contentId"`
	PeriodID      uuid.UUID        `bun:",notnull,type:uuid"     json:"periodId"`
	PointsDelta   float64          `bun:",notnull"               json:"pointsDelta"`
	Reversed      bool             `bun:",notnull,default:false" json:"reversed"`
	CreatedAt     time.Time        `bun:",notnull,default:now()" json:"createdAt"`
}

// SelfEngagement reports whether the actor engaged with their own content.
// Self-engagement carries no points.
func (e *EngagementEvent) SelfEngagement() bool {
	return e.ActorID == e.SubjectUserID
}

// UserPointTotal is the materialized per-user, per-period aggregate of
// engagement deltas. It must always equal the sum of PointsDelta over the
// user's non-reversed events in the period; the event log is the
// reconciliation source of truth. FirstEventAt is the instant the user
// first earned points in the period and breaks ranking ties.
type UserPointTotal struct {
	bun.BaseModel `bun:"table:user_point_totals,alias:upt"`

	UserID       uint64    `bun:",pk"                    json:"userId"`
	PeriodID     uuid.UUID `bun:",pk,type:uuid"          json:"periodId"`
	TotalPoints  float64   `bun:",notnull,default:0"     json:"totalPoints"`
	FirstEventAt time.Time `bun:",notnull"               json:"firstEventAt"`
	UpdatedAt    time.Time `bun:",notnull,default:now()" json:"updatedAt"`
}
