// Package audit subscribes to the places domain events and keeps a
// structured trail of resolution outcomes: one log line per outcome plus
// running counters for operational checks.
package audit

import (
	"context"
	"sync/atomic"

	"frontsnap_backend/internal/events"
	"frontsnap_backend/platform/logger"
)

// Module is the audit event subscriber.
type Module struct {
	log *logger.Logger

	resolved atomic.Int64
	failed   atomic.Int64
}

func NewModule(log *logger.Logger) *Module {
	return &Module{log: log}
}

// RegisterHandlers subscribes to all relevant domain events on the event bus.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.PhotoResolved{}.EventName(), m)
	bus.Subscribe(events.ResolutionFailed{}.EventName(), m)

	m.log.Info("audit module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.PhotoResolved:
		return m.handlePhotoResolved(ctx, e)
	case events.ResolutionFailed:
		return m.handleResolutionFailed(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handlePhotoResolved(_ context.Context, e events.PhotoResolved) error {
	m.resolved.Add(1)
	m.log.Info("photo resolved",
		"session_id", e.SessionID,
		"user_id", e.UserID,
		"place_id", e.PlaceID,
		"place_name", e.PlaceName,
		"lat", e.Lat,
		"lng", e.Lng,
		"photo_key", e.PhotoKey,
	)
	return nil
}

func (m *Module) handleResolutionFailed(_ context.Context, e events.ResolutionFailed) error {
	m.failed.Add(1)
	m.log.Warn("resolution failed",
		"session_id", e.SessionID,
		"user_id", e.UserID,
		"reason", e.Reason,
	)
	return nil
}

// ResolvedCount returns how many photos have been matched since startup.
func (m *Module) ResolvedCount() int64 { return m.resolved.Load() }

// FailedCount returns how many resolutions have failed since startup.
func (m *Module) FailedCount() int64 { return m.failed.Load() }

var _ events.Handler = (*Module)(nil)
