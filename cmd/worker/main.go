package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"frontsnap_backend/internal/scheduler"
	"frontsnap_backend/platform/config"
	"frontsnap_backend/platform/db"
	"frontsnap_backend/platform/googleplaces"
	"frontsnap_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// The worker drains the background queue: place persistence after a
// resolution, and periodic detail refreshes.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= 5; attempt++ {
		pool, err = db.NewPool(ctx, cfg)
		if err == nil {
			break
		}
		log.Warn("database connection failed", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt*attempt) * 2 * time.Second):
		}
	}
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	placesClient := googleplaces.NewClient(googleplaces.Config{
		APIKey: cfg.GetGooglePlacesAPIKey(),
	})

	worker, err := scheduler.NewWorker(cfg, pool, placesClient, log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	log.Info("worker listening for tasks")
	worker.Run(ctx)
	log.Info("worker stopped")
}
