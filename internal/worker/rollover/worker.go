package rollover

import (
	"context"
	"time"

	"github.com/pantheon-social/pantheon/internal/database"
	"github.com/pantheon-social/pantheon/internal/setup"
	"github.com/pantheon-social/pantheon/internal/worker/core"
	"go.uber.org/zap"
)

// Worker closes expired periods, opens their successors and distributes
// rewards for every completed period that has not been finalized yet.
// Finalization is idempotent, so a crash between steps only delays the
// rewards until the next pass.
type Worker struct {
	db          database.Client
	reporter    *core.StatusReporter
	logger      *zap.Logger
	interval    time.Duration
	historyKeep int
}

// New creates a new rollover worker.
func New(app *setup.App, logger *zap.Logger) *Worker {
	return &Worker{
		db:          app.DB,
		reporter:    core.NewStatusReporter(app.StatusClient, "rollover", logger),
		logger:      logger,
		interval:    time.Duration(app.Config.Worker.RolloverInterval) * time.Second,
		historyKeep: app.Config.Common.Leaderboard.HistoryPeriods,
	}
}

// Start begins the rollover worker's main loop.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Rollover Worker started", zap.String("workerID", w.reporter.GetWorkerID()))
	w.reporter.Start(ctx)
	defer w.reporter.Stop()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.reporter.SetHealthy(true)
		w.rollover(ctx)

		select {
		case <-ticker.C:
		case <-ctx.Done():
			w.logger.Info("Rollover Worker stopped")
			return
		}
	}
}

// rollover advances the period boundary and finalizes any periods whose
// rewards are still pending.
func (w *Worker) rollover(ctx context.Context) {
	w.reporter.UpdateStatus("Advancing period boundary", 25)

	if _, err := w.db.Service().Period().GetOrCreateActivePeriod(ctx); err != nil {
		w.logger.Error("Failed to advance period boundary", zap.Error(err))
		w.reporter.SetHealthy(false)

		return
	}

	w.reporter.UpdateStatus("Finalizing pending periods", 60)

	if err := w.db.Service().Period().ClosePendingRewards(ctx); err != nil {
		w.logger.Error("Failed to finalize pending periods", zap.Error(err))
		w.reporter.SetHealthy(false)

		return
	}

	w.reporter.UpdateStatus("Pruning ranking history", 90)

	removed, err := w.db.Model().Ranking().PruneHistory(ctx, w.historyKeep)
	if err != nil {
		w.logger.Error("Failed to prune ranking history", zap.Error(err))
		w.reporter.SetHealthy(false)

		return
	}

	if removed > 0 {
		w.logger.Info("Pruned ranking history", zap.Int64("entries", removed))
	}

	w.reporter.UpdateStatus("Completed", 100)
}
