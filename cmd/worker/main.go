package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/pantheon-social/pantheon/internal/setup"
	"github.com/pantheon-social/pantheon/internal/worker/ranking"
	"github.com/pantheon-social/pantheon/internal/worker/reconcile"
	"github.com/pantheon-social/pantheon/internal/worker/rollover"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const (
	// WorkerLogDir specifies where worker log files are stored.
	WorkerLogDir = "logs/worker_logs"

	// RankingWorker rebuilds the leaderboard snapshot for the active period.
	RankingWorker = "ranking"

	// RolloverWorker advances the weekly period boundary and distributes rewards.
	RolloverWorker = "rollover"

	// ReconcileWorker recomputes point totals from the event log.
	ReconcileWorker = "reconcile"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.Command{
		Name:  "worker",
		Usage: "Start the pantheon worker",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Value:   1,
				Usage:   "Number of workers to start",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  RankingWorker,
				Usage: "Start ranking refresh workers",
				Action: func(ctx context.Context, c *cli.Command) error {
					runWorkers(ctx, RankingWorker, c.Int("workers"))
					return nil
				},
			},
			{
				Name:  RolloverWorker,
				Usage: "Start period rollover workers",
				Action: func(ctx context.Context, c *cli.Command) error {
					runWorkers(ctx, RolloverWorker, c.Int("workers"))
					return nil
				},
			},
			{
				Name:  ReconcileWorker,
				Usage: "Start reconciliation workers",
				Action: func(ctx context.Context, c *cli.Command) error {
					runWorkers(ctx, ReconcileWorker, c.Int("workers"))
					return nil
				},
			},
		},
	}

	return app.Run(context.Background(), os.Args)
}

// runWorkers starts multiple instances of a worker type.
func runWorkers(ctx context.Context, workerType string, count int64) {
	app, err := setup.InitializeApp(ctx, workerType+"_worker", WorkerLogDir)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Cleanup(ctx)

	if delay := app.Config.Worker.StartupDelay; delay > 0 {
		time.Sleep(time.Duration(delay) * time.Millisecond)
	}

	var wg sync.WaitGroup
	for i := range count {
		wg.Add(1)

		go func(workerID int64) {
			defer wg.Done()

			workerLogger := app.LogManager.GetWorkerLogger(
				fmt.Sprintf("%s_worker_%d", workerType, workerID),
			)

			var w interface{ Start(ctx context.Context) }

			switch workerType {
			case RankingWorker:
				w = ranking.New(app, workerLogger)
			case RolloverWorker:
				w = rollover.New(app, workerLogger)
			case ReconcileWorker:
				w = reconcile.New(app, workerLogger)
			default:
				log.Fatalf("Invalid worker type: %s", workerType)
			}

			runWorker(ctx, w, workerLogger)
		}(i)
	}

	log.Printf("Started %d %s workers", count, workerType)
	wg.Wait()
	log.Println("All workers have finished. Exiting.")
}

// runWorker runs a single worker in a loop with error recovery.
func runWorker(ctx context.Context, w interface{ Start(ctx context.Context) }, logger *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("Context cancelled, stopping worker")
			return
		default:
			func() {
				defer func() {
					if r := recover(); r != nil {
						logger.Error("Worker execution failed",
							zap.String("worker_type", fmt.Sprintf("%T", w)),
							zap.Any("panic", r),
						)
						logger.Info("Restarting worker in 5 seconds...")
						time.Sleep(5 * time.Second)
					}
				}()

				logger.Info("Starting worker")
				w.Start(ctx)
			}()

			if ctx.Err() != nil {
				return
			}

			logger.Warn("Worker stopped unexpectedly",
				zap.String("worker_type", fmt.Sprintf("%T", w)),
			)
			time.Sleep(5 * time.Second)
		}
	}
}
