package service_test

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/pantheon-social/pantheon/internal/database/models"
	"github.com/pantheon-social/pantheon/internal/database/service"
	"github.com/pantheon-social/pantheon/internal/database/types/enum"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupMirrorTest(t *testing.T) (*service.ProfileService, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return service.NewProfile(nil, client, zap.NewNop()), mr
}

func TestMirror_SetsAndClearsTiers(t *testing.T) {
	t.Parallel()

	profile, mr := setupMirrorTest(t)
	ctx := t.Context()

	mr.Set("profile:tier:30", "mortal")

	err := profile.Mirror(ctx, &models.TierSync{
		Set: map[uint64]enum.Tier{
			10: enum.TierOlympian,
			20: enum.TierTitan,
		},
		Cleared: []uint64{30},
	})
	require.NoError(t, err)

	value, err := mr.Get("profile:tier:10")
	require.NoError(t, err)
	assert.Equal(t, "olympian", value)

	value, err = mr.Get("profile:tier:20")
	require.NoError(t, err)
	assert.Equal(t, "titan", value)

	assert.False(t, mr.Exists("profile:tier:30"))
}

func TestMirror_Rerunnable(t *testing.T) {
	t.Parallel()

	profile, mr := setupMirrorTest(t)
	ctx := t.Context()

	sync := &models.TierSync{
		Set:     map[uint64]enum.Tier{10: enum.TierDemigod},
		Cleared: []uint64{20},
	}

	require.NoError(t, profile.Mirror(ctx, sync))
	require.NoError(t, profile.Mirror(ctx, sync))

	value, err := mr.Get("profile:tier:10")
	require.NoError(t, err)
	assert.Equal(t, "demigod", value)
}

func TestCurrentTier_ReadsMirror(t *testing.T) {
	t.Parallel()

	profile, mr := setupMirrorTest(t)
	ctx := t.Context()

	mr.Set("profile:tier:7", "hero")

	tier, err := profile.CurrentTier(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, tier)
	assert.Equal(t, enum.TierHero, *tier)
}

func TestCurrentTier_CorruptMirrorValue(t *testing.T) {
	t.Parallel()

	profile, mr := setupMirrorTest(t)
	ctx := t.Context()

	mr.Set("profile:tier:7", "archon")

	_, err := profile.CurrentTier(ctx, 7)
	require.ErrorIs(t, err, enum.ErrUnknownEnum)
}
