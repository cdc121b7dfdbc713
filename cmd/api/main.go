package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"frontsnap_backend/internal/adapters/storage"
	"frontsnap_backend/internal/audit"
	"frontsnap_backend/internal/events"
	apphttp "frontsnap_backend/internal/http"
	"frontsnap_backend/internal/http/router"
	"frontsnap_backend/internal/places"
	"frontsnap_backend/internal/places/agent"
	"frontsnap_backend/internal/scheduler"
	"frontsnap_backend/platform/config"
	"frontsnap_backend/platform/db"
	"frontsnap_backend/platform/googleplaces"
	"frontsnap_backend/platform/logger"
	"frontsnap_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Audit trail of resolution outcomes
	auditModule := audit.NewModule(log)
	auditModule.RegisterHandlers(eventBus)

	// Storage service for captured photos (MinIO); optional in dev setups
	var photoStore storage.PhotoStore
	if cfg.IsMinIOEnabled() {
		minioSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		if err := withRetry(ctx, log, "ensure photos bucket", 5, 2*time.Second, func() error {
			return minioSvc.EnsureBucketExists(ctx, cfg.GetMinioBucketPhotos())
		}); err != nil {
			log.Error("failed to ensure photos bucket", "error", err)
			panic("failed to ensure photos bucket: " + err.Error())
		}
		photoStore = minioSvc
		log.Info("storage service initialized", "photosBucket", cfg.GetMinioBucketPhotos())
	} else {
		log.Warn("MINIO_ENDPOINT not configured; captured photos will not be stored")
	}

	// Background persistence via asynq; optional without redis
	persistClient, closePersist := initPersistScheduler(cfg, log)
	if closePersist != nil {
		defer closePersist()
	}

	// Retry sessions in redis; optional without redis
	var sessions *places.SessionStore
	if cfg.GetRedisURL() != "" {
		sessions, err = places.NewSessionStore(cfg)
		if err != nil {
			log.Error("failed to initialize retry session store", "error", err)
			panic("failed to initialize retry session store: " + err.Error())
		}
		defer func() {
			_ = sessions.Close()
		}()
	} else {
		log.Warn("REDIS_URL not configured; wrong-place retries disabled")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	placesClient := googleplaces.NewClient(googleplaces.Config{
		APIKey: cfg.GetGooglePlacesAPIKey(),
	})
	googleSearcher := places.NewGoogleSearcher(placesClient)

	identifier, err := agent.NewStorefrontIdentifier(ctx, cfg.GetGeminiAPIKey(), cfg.GetGeminiModel())
	if err != nil {
		log.Error("failed to initialize storefront identifier", "error", err)
		panic("failed to initialize storefront identifier: " + err.Error())
	}

	knobs := cfg.GetResolutionKnobs()
	searcher := places.NewSearcher(googleSearcher, knobs, log)

	var tasks places.PersistEnqueuer
	if persistClient != nil {
		tasks = persistClient
	}

	resolver := places.NewResolver(places.ResolverConfig{
		Vision:      identifier,
		Searcher:    searcher,
		Details:     googleSearcher,
		Knobs:       knobs,
		Sessions:    sessions,
		Photos:      photoStore,
		PhotoBucket: cfg.GetMinioBucketPhotos(),
		Bus:         eventBus,
		Tasks:       tasks,
		Logger:      log,
	})

	repo := places.NewRepository(pool)
	handler := places.NewHandler(resolver, searcher, repo, cfg.GetPlaceShareBaseURL(), validator.New(), log)
	placesModule := places.NewModule(handler)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Stats:    auditModule,
		Modules: []apphttp.Module{
			placesModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initPersistScheduler(cfg config.SchedulerConfig, log *logger.Logger) (*scheduler.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; background place persistence disabled")
		return nil, nil
	}

	persistClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize persistence scheduler client", "error", err)
		return nil, nil
	}

	return persistClient, func() {
		_ = persistClient.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
