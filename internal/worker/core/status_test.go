package core_test

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/pantheon-social/pantheon/internal/worker/core"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTest(t *testing.T) (rueidis.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return client, cleanup
}

func TestReportStatus(t *testing.T) {
	t.Parallel()

	client, cleanup := setupTest(t)
	defer cleanup()

	ctx := t.Context()
	monitor := core.NewMonitor(client, zap.NewNop())

	err := monitor.ReportStatus(ctx, core.Status{
		WorkerID:    "worker-1",
		WorkerType:  "ranking",
		CurrentTask: "Refreshing ranking",
		Progress:    50,
		IsHealthy:   true,
	})
	require.NoError(t, err)

	statuses, err := monitor.GetAllStatuses(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 1)

	assert.Equal(t, "worker-1", statuses[0].WorkerID)
	assert.Equal(t, "ranking", statuses[0].WorkerType)
	assert.Equal(t, "Refreshing ranking", statuses[0].CurrentTask)
	assert.Equal(t, 50, statuses[0].Progress)
	assert.True(t, statuses[0].IsHealthy)
	assert.False(t, statuses[0].LastSeen.IsZero())
}

func TestReportStatus_Overwrites(t *testing.T) {
	t.Parallel()

	client, cleanup := setupTest(t)
	defer cleanup()

	ctx := t.Context()
	monitor := core.NewMonitor(client, zap.NewNop())

	status := core.Status{WorkerID: "worker-1", WorkerType: "rollover", IsHealthy: true}
	require.NoError(t, monitor.ReportStatus(ctx, status))

	status.CurrentTask = "Completed"
	status.Progress = 100
	require.NoError(t, monitor.ReportStatus(ctx, status))

	statuses, err := monitor.GetAllStatuses(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "Completed", statuses[0].CurrentTask)
	assert.Equal(t, 100, statuses[0].Progress)
}

func TestStatusReporter_TracksUpdates(t *testing.T) {
	t.Parallel()

	client, cleanup := setupTest(t)
	defer cleanup()

	reporter := core.NewStatusReporter(client, "reconcile", zap.NewNop())
	defer reporter.Stop()

	assert.NotEmpty(t, reporter.GetWorkerID())

	reporter.UpdateStatus("Recomputing totals", 33)
	reporter.SetHealthy(false)
}
