package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"frontsnap_backend/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// refreshAfter is how long a persisted place record is trusted before a
// background refresh re-fetches its details.
const refreshAfter = 24 * time.Hour

type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
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

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueuePlacePersist queues background persistence for a resolved session
// and schedules a details refresh a day out.
func (c *Client) EnqueuePlacePersist(ctx context.Context, sessionID, userID, placeID, photoKey string) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewPlacePersistTask(PlacePersistPayload{
		SessionID: sessionID,
		UserID:    userID,
		PlaceID:   placeID,
		PhotoKey:  photoKey,
	})
	if err != nil {
		return err
	}

	if _, err := c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue)); err != nil {
		return err
	}

	refresh, err := NewPlaceRefreshTask(PlaceRefreshPayload{PlaceID: placeID})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, refresh,
		asynq.ProcessAt(time.Now().Add(refreshAfter)),
		asynq.Queue(c.queue))
	return err
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
