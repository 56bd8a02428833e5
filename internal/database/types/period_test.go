package types_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pantheon-social/pantheon/internal/database/types"
	"github.com/pantheon-social/pantheon/internal/database/types/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPeriod(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	period := types.NewPeriod(start)

	assert.NotEqual(t, uuid.Nil, period.ID)
	assert.Equal(t, start, period.StartTime)
	assert.Equal(t, start.Add(7*24*time.Hour), period.EndTime)
	assert.Equal(t, enum.PeriodStatusActive, period.Status)
}

func TestPeriod_Expired(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	period := types.NewPeriod(start)

	assert.False(t, period.Expired(start))
	assert.False(t, period.Expired(period.EndTime.Add(-time.Second)))
	assert.True(t, period.Expired(period.EndTime))
	assert.True(t, period.Expired(period.EndTime.Add(time.Hour)))
}

// Successive periods must be contiguous and non-overlapping.
func TestPeriod_NextPeriod(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	period := types.NewPeriod(start)

	next := period.NextPeriod()
	require.NotNil(t, next)

	assert.Equal(t, period.EndTime, next.StartTime)
	assert.Equal(t, period.EndTime.Add(types.PeriodLength), next.EndTime)
	assert.Equal(t, enum.PeriodStatusActive, next.Status)
	assert.NotEqual(t, period.ID, next.ID)
}

func TestNewRewardFromEntry(t *testing.T) {
	t.Parallel()

	period := types.NewPeriod(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC))
	earnedAt := period.EndTime

	entry := &types.RankingEntry{
		PeriodID:     period.ID,
		UserID:       7,
		RankPosition: 7,
		Tier:         enum.TierOlympian,
		TotalPoints:  123.0,
	}

	reward := types.NewRewardFromEntry(entry, earnedAt)

	assert.Equal(t, uint64(7), reward.UserID)
	assert.Equal(t, period.ID, reward.PeriodID)
	assert.Equal(t, 7, reward.RankAchieved)
	assert.Equal(t, enum.TierOlympian, reward.Tier)
	assert.Equal(t, "Olympian Champion", reward.TitleText)
	assert.NotEmpty(t, reward.BadgeIcon)
	assert.Equal(t, earnedAt, reward.EarnedAt)
}
