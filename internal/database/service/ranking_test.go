package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pantheon-social/pantheon/internal/database/types"
	"github.com/pantheon-social/pantheon/internal/database/types/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func total(userID uint64, points float64, firstEvent time.Time) *types.UserPointTotal {
	return &types.UserPointTotal{
		UserID:       userID,
		TotalPoints:  points,
		FirstEventAt: firstEvent,
	}
}

func TestBuildRankingEntries_OrdersByPoints(t *testing.T) {
	t.Parallel()

	now := time.Now()
	periodID := uuid.New()
	totals := []*types.UserPointTotal{
		total(1, 5.0, now),
		total(2, 20.0, now),
		total(3, 10.0, now),
	}

	entries, err := buildRankingEntries(periodID, totals, now)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, uint64(2), entries[0].UserID)
	assert.Equal(t, uint64(3), entries[1].UserID)
	assert.Equal(t, uint64(1), entries[2].UserID)

	for i, entry := range entries {
		assert.Equal(t, i+1, entry.RankPosition)
		assert.Equal(t, periodID, entry.PeriodID)
	}
}

func TestBuildRankingEntries_TieBreaks(t *testing.T) {
	t.Parallel()

	now := time.Now()
	earlier := now.Add(-time.Hour)

	// Users 10 and 20 tie on points; 20 reached the total first.
	// Users 30 and 40 tie on both points and timestamp.
	totals := []*types.UserPointTotal{
		total(10, 100.0, now),
		total(20, 100.0, earlier),
		total(40, 50.0, now),
		total(30, 50.0, now),
	}

	entries, err := buildRankingEntries(uuid.New(), totals, now)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, uint64(20), entries[0].UserID)
	assert.Equal(t, uint64(10), entries[1].UserID)
	assert.Equal(t, uint64(30), entries[2].UserID)
	assert.Equal(t, uint64(40), entries[3].UserID)
}

func TestBuildRankingEntries_Deterministic(t *testing.T) {
	t.Parallel()

	now := time.Now()
	periodID := uuid.New()

	totals := make([]*types.UserPointTotal, 0, 30)
	for i := range uint64(30) {
		totals = append(totals, total(i+1, float64((i%5)+1)*10, now.Add(time.Duration(i%3)*time.Minute)))
	}

	first, err := buildRankingEntries(periodID, totals, now)
	require.NoError(t, err)

	second, err := buildRankingEntries(periodID, totals, now)
	require.NoError(t, err)

	require.Len(t, second, len(first))

	for i := range first {
		assert.Equal(t, first[i].UserID, second[i].UserID, "position %d", i+1)
		assert.Equal(t, first[i].RankPosition, second[i].RankPosition)
		assert.Equal(t, first[i].Tier, second[i].Tier)
	}
}

func TestBuildRankingEntries_TruncatesToTopFifty(t *testing.T) {
	t.Parallel()

	now := time.Now()

	totals := make([]*types.UserPointTotal, 0, 60)
	for i := range uint64(60) {
		totals = append(totals, total(i+1, float64(60-i), now))
	}

	entries, err := buildRankingEntries(uuid.New(), totals, now)
	require.NoError(t, err)
	require.Len(t, entries, types.TopRankedCount)

	// Highest scorer is rank 1; user 51 onward fall outside the snapshot.
	assert.Equal(t, uint64(1), entries[0].UserID)
	assert.Equal(t, uint64(50), entries[len(entries)-1].UserID)
}

func TestBuildRankingEntries_TierBoundaries(t *testing.T) {
	t.Parallel()

	now := time.Now()

	totals := make([]*types.UserPointTotal, 0, 50)
	for i := range uint64(50) {
		totals = append(totals, total(i+1, float64(50-i), now))
	}

	entries, err := buildRankingEntries(uuid.New(), totals, now)
	require.NoError(t, err)
	require.Len(t, entries, 50)

	tests := []struct {
		position int
		want     enum.Tier
	}{
		{1, enum.TierOlympian},
		{10, enum.TierOlympian},
		{11, enum.TierTitan},
		{30, enum.TierDemigod},
		{41, enum.TierMortal},
		{50, enum.TierMortal},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("position_%d", tt.position), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, entries[tt.position-1].Tier)
		})
	}
}

func TestBuildRankingEntries_Empty(t *testing.T) {
	t.Parallel()

	entries, err := buildRankingEntries(uuid.New(), nil, time.Now())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
