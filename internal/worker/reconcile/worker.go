package reconcile

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

// Worker recomputes the active period's point totals from the event log
// and rebuilds the ranking from the corrected totals. This heals any
// drift between the cached totals and the events that produced them.
type Worker struct {
	db       database.Client
	reporter *core.StatusReporter
	logger   *zap.Logger
	interval time.Duration
}

// New creates a new reconcile worker.
func New(app *setup.App, logger *zap.Logger) *Worker {
	return &Worker{
		db:       app.DB,
		reporter: core.NewStatusReporter(app.StatusClient, "reconcile", logger),
		logger:   logger,
		interval: time.Duration(app.Config.Worker.ReconcileInterval) * time.Minute,
	}
}

// Start begins the reconcile worker's main loop.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Reconcile Worker started", zap.String("workerID", w.reporter.GetWorkerID()))
	w.reporter.Start(ctx)
	defer w.reporter.Stop()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.reporter.SetHealthy(true)
		w.reconcile(ctx)

		select {
		case <-ticker.C:
		case <-ctx.Done():
			w.logger.Info("Reconcile Worker stopped")
			return
		}
	}
}

// reconcile recomputes totals for the active period and refreshes the
// ranking snapshot from the corrected values.
func (w *Worker) reconcile(ctx context.Context) {
	w.reporter.UpdateStatus("Recomputing totals", 33)

	period, err := w.db.Model().Period().GetActive(ctx)
	if err != nil {
		if errors.Is(err, types.ErrNoActivePeriod) {
			w.logger.Info("No active period to reconcile")
		} else {
			w.logger.Error("Failed to get active period", zap.Error(err))
			w.reporter.SetHealthy(false)
		}

		return
	}

	if err := w.db.Service().Ledger().Reconcile(ctx, period.ID); err != nil {
		w.logger.Error("Failed to reconcile totals", zap.Error(err))
		w.reporter.SetHealthy(false)

		return
	}

	w.reporter.UpdateStatus("Rebuilding ranking", 66)

	if _, err := w.db.Service().Ranking().RefreshRanking(ctx, period.ID); err != nil {
		w.logger.Error("Failed to rebuild ranking after reconcile", zap.Error(err))
		w.reporter.SetHealthy(false)

		return
	}

	w.reporter.UpdateStatus("Completed", 100)
}
