package audit

import (
	"context"
	"testing"
	"time"

	"frontsnap_backend/internal/events"
	"frontsnap_backend/platform/logger"

	"github.com/google/uuid"
)

type unknownEvent struct{}

func (unknownEvent) EventName() string     { return "test.unknown" }
func (unknownEvent) OccurredAt() time.Time { return time.Now() }

func TestModuleCountsResolutionOutcomes(t *testing.T) {
	log := logger.New("development")
	bus := events.NewInMemoryBus(log)
	m := NewModule(log)
	m.RegisterHandlers(bus)

	resolved := events.PhotoResolved{
		BaseEvent: events.NewBaseEvent(),
		SessionID: uuid.New(),
		UserID:    uuid.New(),
		PlaceID:   "place-1",
		PlaceName: "Blue Bottle Coffee",
	}
	if err := bus.PublishSync(context.Background(), resolved); err != nil {
		t.Fatalf("publish resolved: %v", err)
	}
	if err := bus.PublishSync(context.Background(), resolved); err != nil {
		t.Fatalf("publish resolved: %v", err)
	}

	failed := events.ResolutionFailed{
		BaseEvent: events.NewBaseEvent(),
		SessionID: uuid.New(),
		UserID:    uuid.New(),
		Reason:    "no candidates",
	}
	if err := bus.PublishSync(context.Background(), failed); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if got := m.ResolvedCount(); got != 2 {
		t.Fatalf("expected 2 resolved, got %d", got)
	}
	if got := m.FailedCount(); got != 1 {
		t.Fatalf("expected 1 failed, got %d", got)
	}
}

func TestModuleIgnoresUnknownEvents(t *testing.T) {
	m := NewModule(logger.New("development"))

	if err := m.Handle(context.Background(), unknownEvent{}); err != nil {
		t.Fatalf("unknown events must not error: %v", err)
	}
	if m.ResolvedCount() != 0 || m.FailedCount() != 0 {
		t.Fatal("unknown events must not move the counters")
	}
}
