package database_test

import (
	"math"
	"math/rand/v2"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pantheon-social/pantheon/internal/database"
	"github.com/pantheon-social/pantheon/internal/database/types"
	"github.com/pantheon-social/pantheon/internal/database/types/enum"
	"github.com/pantheon-social/pantheon/internal/setup/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupTestDB connects to the Postgres instance named by the
// PANTHEON_TEST_PG_* environment variables and runs migrations. Tests
// are skipped when no instance is configured. Tests isolate themselves
// with random user and content IDs, so a shared database is fine.
func setupTestDB(t *testing.T) database.Client {
	t.Helper()

	host := os.Getenv("PANTHEON_TEST_PG_HOST")
	if host == "" {
		t.Skip("PANTHEON_TEST_PG_HOST not set")
	}

	port := 5432
	if raw := os.Getenv("PANTHEON_TEST_PG_PORT"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		require.NoError(t, err)

		port = parsed
	}

	user := os.Getenv("PANTHEON_TEST_PG_USER")
	if user == "" {
		user = "postgres"
	}

	dbName := os.Getenv("PANTHEON_TEST_PG_NAME")
	if dbName == "" {
		dbName = "pantheon_test"
	}

	client, err := database.NewConnection(t.Context(), &config.PostgreSQL{
		Host:         host,
		Port:         port,
		User:         user,
		Password:     os.Getenv("PANTHEON_TEST_PG_PASSWORD"),
		DBName:       dbName,
		MaxOpenConns: 4,
		MaxIdleConns: 2,
		MaxLifetime:  5,
		MaxIdleTime:  5,
	}, nil, zap.NewNop(), true)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, client.Close())
	})

	return client
}

// insertCompletedPeriod creates a closed period row with a past window so
// tests never collide with the single active period.
func insertCompletedPeriod(t *testing.T, db database.Client, end time.Time) *types.Period {
	t.Helper()

	period := types.NewPeriod(end.Add(-types.PeriodLength))
	period.Status = enum.PeriodStatusCompleted

	_, err := db.DB().NewInsert().Model(period).Exec(t.Context())
	require.NoError(t, err)

	return period
}

// randID returns a random identifier within bigint range.
func randID() uint64 {
	return rand.Uint64N(math.MaxInt64)
}

// likeEvent builds a like ledger row the way the ledger service does.
func likeEvent(actorID, subjectID, contentID uint64, periodID uuid.UUID) *types.EngagementEvent {
	return &types.EngagementEvent{
		ID:            uuid.New(),
		ActorID:       actorID,
		SubjectUserID: subjectID,
		ActionType:    enum.ActionTypeLike,
		ContentType:   enum.ContentTypePost,
		ContentID:     contentID,
		PeriodID:      periodID,
		PointsDelta:   1.0,
		CreatedAt:     time.Now(),
	}
}

func countLikeRows(t *testing.T, db database.Client, actorID, contentID uint64) int {
	t.Helper()

	count, err := db.DB().NewSelect().
		Model((*types.EngagementEvent)(nil)).
		Where("actor_id = ?", actorID).
		Where("content_id = ?", contentID).
		Where("action_type = ?", enum.ActionTypeLike).
		Count(t.Context())
	require.NoError(t, err)

	return count
}

func TestLikeToggle_Idempotent(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := t.Context()

	actorID := randID()
	subjectID := randID()
	contentID := randID()

	ledger := db.Service().Ledger()

	period, err := db.Service().Period().GetOrCreateActivePeriod(ctx)
	require.NoError(t, err)

	// First like credits one point, a duplicate like credits nothing.
	require.NoError(t, ledger.OnLikeToggled(ctx, actorID, subjectID, enum.ContentTypePost, contentID, true))
	require.NoError(t, ledger.OnLikeToggled(ctx, actorID, subjectID, enum.ContentTypePost, contentID, true))

	total, err := db.Model().Event().GetTotal(ctx, subjectID, period.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, total.TotalPoints, 0.0001)
	assert.Equal(t, 1, countLikeRows(t, db, actorID, contentID))

	// Unlike withdraws the point, a duplicate unlike withdraws nothing.
	require.NoError(t, ledger.OnLikeToggled(ctx, actorID, subjectID, enum.ContentTypePost, contentID, false))
	require.NoError(t, ledger.OnLikeToggled(ctx, actorID, subjectID, enum.ContentTypePost, contentID, false))

	total, err = db.Model().Event().GetTotal(ctx, subjectID, period.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, total.TotalPoints, 0.0001)

	// Re-like reactivates the existing row rather than inserting another.
	require.NoError(t, ledger.OnLikeToggled(ctx, actorID, subjectID, enum.ContentTypePost, contentID, true))

	total, err = db.Model().Event().GetTotal(ctx, subjectID, period.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, total.TotalPoints, 0.0001)
	assert.Equal(t, 1, countLikeRows(t, db, actorID, contentID))
}

func TestApplyLike_ReactivationCreditsEventPeriod(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := t.Context()

	actorID := randID()
	subjectID := randID()
	contentID := randID()

	older := insertCompletedPeriod(t, db, time.Now().Add(-2*types.PeriodLength))
	newer := insertCompletedPeriod(t, db, time.Now().Add(-time.Hour))

	events := db.Model().Event()

	// Like and unlike entirely inside the older period.
	require.NoError(t, events.ApplyLike(ctx, likeEvent(actorID, subjectID, contentID, older.ID)))
	require.NoError(t, events.ReverseLike(ctx, actorID, enum.ContentTypePost, contentID, older.ID))

	// Re-like lands in the newer period; the closed one stays at zero.
	require.NoError(t, events.ApplyLike(ctx, likeEvent(actorID, subjectID, contentID, newer.ID)))

	oldTotal, err := events.GetTotal(ctx, subjectID, older.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, oldTotal.TotalPoints, 0.0001)

	newTotal, err := events.GetTotal(ctx, subjectID, newer.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, newTotal.TotalPoints, 0.0001)

	var event types.EngagementEvent

	err = db.DB().NewSelect().
		Model(&event).
		Where("actor_id = ?", actorID).
		Where("content_id = ?", contentID).
		Where("action_type = ?", enum.ActionTypeLike).
		Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, event.PeriodID)
	assert.False(t, event.Reversed)
	assert.Equal(t, 1, countLikeRows(t, db, actorID, contentID))
}

func TestClosePeriod_DistributesRewardsOnce(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := t.Context()

	period := insertCompletedPeriod(t, db, time.Now().Add(-time.Hour))

	firstUser := randID()
	secondUser := randID()

	events := db.Model().Event()

	share := func(subjectID uint64, at time.Time) *types.EngagementEvent {
		return &types.EngagementEvent{
			ID:            uuid.New(),
			ActorID:       randID(),
			SubjectUserID: subjectID,
			ActionType:    enum.ActionTypeShare,
			ContentType:   enum.ContentTypePost,
			ContentID:     randID(),
			PeriodID:      period.ID,
			PointsDelta:   3.0,
			CreatedAt:     at,
		}
	}

	base := period.StartTime.Add(time.Hour)
	require.NoError(t, events.AppendEvent(ctx, share(firstUser, base)))
	require.NoError(t, events.AppendEvent(ctx, share(secondUser, base.Add(time.Minute))))

	reward := db.Service().Reward()
	require.NoError(t, reward.FinalizePeriod(ctx, period.ID))

	rewards, err := reward.GetUserRewardHistory(ctx, firstUser)
	require.NoError(t, err)
	require.Len(t, rewards, 1)
	assert.Equal(t, period.ID, rewards[0].PeriodID)
	assert.Equal(t, 1, rewards[0].RankAchieved)
	assert.Equal(t, enum.TierOlympian, rewards[0].Tier)
	assert.Equal(t, "Olympian Champion", rewards[0].TitleText)

	// Re-running the close must not issue a second reward.
	require.NoError(t, reward.ClosePeriod(ctx, period.ID))
	require.NoError(t, reward.FinalizePeriod(ctx, period.ID))

	rewards, err = reward.GetUserRewardHistory(ctx, firstUser)
	require.NoError(t, err)
	assert.Len(t, rewards, 1)

	rewards, err = reward.GetUserRewardHistory(ctx, secondUser)
	require.NoError(t, err)
	require.Len(t, rewards, 1)
	assert.Equal(t, 2, rewards[0].RankAchieved)

	closed, err := db.Model().Period().GetByID(ctx, period.ID)
	require.NoError(t, err)
	assert.NotNil(t, closed.RewardsDistributedAt)
}

func TestReconcile_HealsDriftedTotals(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := t.Context()

	period := insertCompletedPeriod(t, db, time.Now().Add(-time.Hour))

	actorID := randID()
	subjectID := randID()
	phantomID := randID()

	events := db.Model().Event()

	appendEvent := func(action enum.ActionType, delta float64) {
		require.NoError(t, events.AppendEvent(ctx, &types.EngagementEvent{
			ID:            uuid.New(),
			ActorID:       actorID,
			SubjectUserID: subjectID,
			ActionType:    action,
			ContentType:   enum.ContentTypePost,
			ContentID:     randID(),
			PeriodID:      period.ID,
			PointsDelta:   delta,
			CreatedAt:     time.Now(),
		}))
	}

	appendEvent(enum.ActionTypeComment, 2.0)
	appendEvent(enum.ActionTypeShare, 3.0)

	// A reversed like must stay out of the reconciled sum.
	likeContent := randID()
	require.NoError(t, events.ApplyLike(ctx, likeEvent(actorID, subjectID, likeContent, period.ID)))
	require.NoError(t, events.ReverseLike(ctx, actorID, enum.ContentTypePost, likeContent, period.ID))

	// Drift the cached total and plant a total with no backing events.
	_, err := db.DB().NewUpdate().
		Model((*types.UserPointTotal)(nil)).
		Set("total_points = ?", 99.0).
		Where("user_id = ?", subjectID).
		Where("period_id = ?", period.ID).
		Exec(ctx)
	require.NoError(t, err)

	_, err = db.DB().NewInsert().Model(&types.UserPointTotal{
		UserID:       phantomID,
		PeriodID:     period.ID,
		TotalPoints:  42.0,
		FirstEventAt: time.Now(),
		UpdatedAt:    time.Now(),
	}).Exec(ctx)
	require.NoError(t, err)

	require.NoError(t, db.Service().Ledger().Reconcile(ctx, period.ID))

	total, err := events.GetTotal(ctx, subjectID, period.ID)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, total.TotalPoints, 0.0001)

	phantom, err := events.GetTotal(ctx, phantomID, period.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, phantom.TotalPoints, 0.0001)
}
