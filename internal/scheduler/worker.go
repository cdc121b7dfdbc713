package scheduler

import (
	"context"
	"fmt"

	"frontsnap_backend/internal/places"
	"frontsnap_backend/platform/config"
	"frontsnap_backend/platform/googleplaces"
	"frontsnap_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	repo      *places.Repository
	placesAPI *googleplaces.Client
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, placesAPI *googleplaces.Client, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		mux:       mux,
		repo:      places.NewRepository(pool),
		placesAPI: placesAPI,
		log:       log,
	}

	mux.HandleFunc(TaskPlacePersist, w.handlePlacePersist)
	mux.HandleFunc(TaskPlaceRefresh, w.handlePlaceRefresh)

	return w, nil
}

// handlePlacePersist materializes a resolved session: fetch the full place
// record from Google, upsert it with its reviews, and link the session to it.
func (w *Worker) handlePlacePersist(ctx context.Context, task *asynq.Task) error {
	payload, err := ParsePlacePersistPayload(task)
	if err != nil {
		return err
	}

	sessionID, err := uuid.Parse(payload.SessionID)
	if err != nil {
		return err
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return err
	}

	details, err := w.placesAPI.Details(ctx, payload.PlaceID)
	if err != nil {
		w.log.CollaboratorError("google_places", "details", err)
		return err
	}

	if err := w.repo.UpsertPlace(ctx, details); err != nil {
		return err
	}
	if err := w.repo.ReplaceReviews(ctx, details.PlaceID, details.Reviews); err != nil {
		return err
	}

	return w.repo.RecordResolution(ctx, places.ResolutionRecord{
		SessionID: sessionID,
		UserID:    userID,
		PlaceID:   payload.PlaceID,
		PhotoKey:  payload.PhotoKey,
	})
}

// handlePlaceRefresh re-fetches details for a previously persisted place.
func (w *Worker) handlePlaceRefresh(ctx context.Context, task *asynq.Task) error {
	payload, err := ParsePlaceRefreshPayload(task)
	if err != nil {
		return err
	}

	details, err := w.placesAPI.Details(ctx, payload.PlaceID)
	if err != nil {
		w.log.CollaboratorError("google_places", "details", err)
		return err
	}

	if err := w.repo.UpsertPlace(ctx, details); err != nil {
		return err
	}
	return w.repo.ReplaceReviews(ctx, details.PlaceID, details.Reviews)
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
