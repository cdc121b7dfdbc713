package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"frontsnap_backend/platform/apperr"
	"frontsnap_backend/platform/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RetrySession holds what a "wrong place" re-search needs: the capture
// location and guess survive only for the session TTL, then expire. The
// photo itself is not kept here.
type RetrySession struct {
	ID               uuid.UUID     `json:"id"`
	UserID           uuid.UUID     `json:"userId"`
	Location         PhotoLocation `json:"location"`
	Guess            BusinessGuess `json:"guess"`
	PhotoKey         string        `json:"photoKey,omitempty"`
	RejectedPlaceIDs []string      `json:"rejectedPlaceIds,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
}

// SessionStore keeps retry sessions in redis with a TTL, so a capture can
// be re-resolved without re-running the image analysis.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(cfg config.RetrySessionConfig) (*SessionStore, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	return &SessionStore{
		client: redis.NewClient(opt),
		ttl:    cfg.GetRetrySessionTTL(),
	}, nil
}

// NewSessionStoreWithClient wires an existing redis client, used by tests.
func NewSessionStoreWithClient(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func sessionKey(id uuid.UUID) string {
	return "places:session:" + id.String()
}

// Save writes the session, resetting its TTL.
func (s *SessionStore) Save(ctx context.Context, session *RetrySession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(session.ID), data, s.ttl).Err()
}

// Get loads a session; a missing or expired session maps to a NotFound error.
func (s *SessionStore) Get(ctx context.Context, id uuid.UUID) (*RetrySession, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperr.NotFound("retry session expired or unknown").WithOp("places.session.get")
	}
	if err != nil {
		return nil, err
	}

	var session RetrySession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Reject marks a place as rejected for the session and persists the update.
func (s *SessionStore) Reject(ctx context.Context, id uuid.UUID, placeID string) (*RetrySession, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	for _, rejected := range session.RejectedPlaceIDs {
		if rejected == placeID {
			return session, nil
		}
	}
	session.RejectedPlaceIDs = append(session.RejectedPlaceIDs, placeID)

	if err := s.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SessionStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
