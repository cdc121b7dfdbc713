package places

import (
	"context"
	"testing"
	"time"

	"frontsnap_backend/platform/apperr"
	"frontsnap_backend/platform/geo"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func testSessionStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionStoreWithClient(client, 15*time.Minute), mr
}

func TestSessionSaveAndGet(t *testing.T) {
	store, _ := testSessionStore(t)
	ctx := context.Background()

	direction := 90.0
	session := &RetrySession{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Location: PhotoLocation{
			Coordinate: geo.Point{Lat: 37.7749, Lng: -122.4194},
			Direction:  &direction,
		},
		Guess:     BusinessGuess{BusinessName: "Blue Bottle", BusinessType: "cafe"},
		CreatedAt: time.Now().UTC(),
	}

	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Guess.BusinessName != "Blue Bottle" {
		t.Fatalf("unexpected guess: %+v", got.Guess)
	}
	if got.Location.Direction == nil || *got.Location.Direction != 90.0 {
		t.Fatalf("direction lost in round trip: %+v", got.Location)
	}
}

func TestSessionGetUnknownIsNotFound(t *testing.T) {
	store, _ := testSessionStore(t)

	_, err := store.Get(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected an error")
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected a not-found error, got %v", err)
	}
}

func TestSessionExpires(t *testing.T) {
	store, mr := testSessionStore(t)
	ctx := context.Background()

	session := &RetrySession{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Location:  PhotoLocation{Coordinate: geo.Point{Lat: 1, Lng: 2}},
		CreatedAt: time.Now().UTC(),
	}
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	mr.FastForward(16 * time.Minute)

	if _, err := store.Get(ctx, session.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected expiry to read as not found, got %v", err)
	}
}

func TestSessionRejectAccumulates(t *testing.T) {
	store, _ := testSessionStore(t)
	ctx := context.Background()

	session := &RetrySession{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Location:  PhotoLocation{Coordinate: geo.Point{Lat: 1, Lng: 2}},
		CreatedAt: time.Now().UTC(),
	}
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := store.Reject(ctx, session.ID, "p1"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	// Rejecting the same place twice must not duplicate it.
	if _, err := store.Reject(ctx, session.ID, "p1"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	got, err := store.Reject(ctx, session.ID, "p2")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}

	if len(got.RejectedPlaceIDs) != 2 {
		t.Fatalf("expected 2 rejected place ids, got %v", got.RejectedPlaceIDs)
	}
}
