package config_test

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/pantheon-social/pantheon/internal/setup/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigs(t *testing.T, commonVersion, workerVersion int) {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.Mkdir(filepath.Join(dir, "config"), 0o755))

	common := `
version = ` + strconv.Itoa(commonVersion) + `

[debug]
log_level = "debug"
max_logs_to_keep = 5

[postgresql]
host = "db.internal"
port = 5432
db_name = "pantheon"

[redis]
host = "cache.internal"
port = 6379

[leaderboard]
history_periods = 4
`
	worker := `
version = ` + strconv.Itoa(workerVersion) + `
ranking_interval = 30
rollover_interval = 120
reconcile_interval = 15
`

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "common.toml"), []byte(common), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "worker.toml"), []byte(worker), 0o644))
}

func TestLoadConfig(t *testing.T) {
	writeConfigs(t, config.CurrentCommonVersion, config.CurrentWorkerVersion)

	cfg, usedPath, err := config.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "config", usedPath)

	assert.Equal(t, "debug", cfg.Common.Debug.LogLevel)
	assert.Equal(t, 5, cfg.Common.Debug.MaxLogsToKeep)
	assert.Equal(t, "db.internal", cfg.Common.PostgreSQL.Host)
	assert.Equal(t, "cache.internal", cfg.Common.Redis.Host)
	assert.Equal(t, 4, cfg.Common.Leaderboard.HistoryPeriods)
	assert.Equal(t, 30, cfg.Worker.RankingInterval)
	assert.Equal(t, 120, cfg.Worker.RolloverInterval)
	assert.Equal(t, 15, cfg.Worker.ReconcileInterval)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	// Redirect home lookup away from any real config
	t.Setenv("HOME", t.TempDir())

	_, _, err := config.LoadConfig()
	require.ErrorIs(t, err, config.ErrConfigFileNotFound)
}

func TestLoadConfig_VersionMismatch(t *testing.T) {
	writeConfigs(t, config.CurrentCommonVersion+1, config.CurrentWorkerVersion)

	_, _, err := config.LoadConfig()
	require.ErrorIs(t, err, config.ErrConfigVersionMismatch)
}

func TestLoadConfig_VersionMissing(t *testing.T) {
	writeConfigs(t, 0, config.CurrentWorkerVersion)

	_, _, err := config.LoadConfig()
	require.ErrorIs(t, err, config.ErrConfigVersionMissing)
}
