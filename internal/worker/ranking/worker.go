package ranking

import (
	"context"
	"errors"
	"time"

	"github.com/pantheon-social/pantheon/internal/database"
	"github.com/pantheon-social/pantheon/internal/database/types"
	"github.com/pantheon-social/pantheon/internal/setup"
	"github.com/pantheon-social/pantheon/internal/worker/core"
	"go.uber.org/zap"
)

// Worker periodically rebuilds the leaderboard for the active period so
// reads always serve a recent snapshot without recomputing on demand.
type Worker struct {
	db       database.Client
	reporter *core.StatusReporter
	logger   *zap.Logger
	interval time.Duration
}

// New creates a new ranking worker.
func New(app *setup.App, logger *zap.Logger) *Worker {
	return &Worker{
		db:       app.DB,
		reporter: core.NewStatusReporter(app.StatusClient, "ranking", logger),
		logger:   logger,
		interval: time.Duration(app.Config.Worker.RankingInterval) * time.Second,
	}
}

// Start begins the ranking worker's main loop.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Ranking Worker started", zap.String("workerID", w.reporter.GetWorkerID()))
	w.reporter.Start(ctx)
	defer w.reporter.Stop()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.reporter.SetHealthy(true)
		w.refresh(ctx)

		select {
		case <-ticker.C:
		case <-ctx.Done():
			w.logger.Info("Ranking Worker stopped")
			return
		}
	}
}

// refresh rebuilds the ranking snapshot for the active period.
func (w *Worker) refresh(ctx context.Context) {
	w.reporter.UpdateStatus("Refreshing ranking", 50)

	period, err := w.db.Service().Period().GetOrCreateActivePeriod(ctx)
	if err != nil {
		if errors.Is(err, types.ErrNoActivePeriod) {
			w.logger.Error("No active period available", zap.Error(err))
		} else {
			w.logger.Error("Failed to resolve active period", zap.Error(err))
		}

		w.reporter.SetHealthy(false)

		return
	}

	if _, err := w.db.Service().Ranking().RefreshRanking(ctx, period.ID); err != nil {
		w.logger.Error("Failed to refresh ranking", zap.Error(err))
		w.reporter.SetHealthy(false)

		return
	}

	w.reporter.UpdateStatus("Completed", 100)
}
