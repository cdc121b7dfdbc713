// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"frontsnap_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Places Domain Events
// =============================================================================

// PhotoResolved is published when a captured photo is matched to a place.
type PhotoResolved struct {
	BaseEvent
	SessionID uuid.UUID `json:"sessionId"`
	UserID    uuid.UUID `json:"userId"`
	PlaceID   string    `json:"placeId"`
	PlaceName string    `json:"placeName"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	PhotoKey  string    `json:"photoKey,omitempty"`
}

func (e PhotoResolved) EventName() string { return "places.photo.resolved" }

// ResolutionFailed is published when a photo could not be matched to a place.
type ResolutionFailed struct {
	BaseEvent
	SessionID uuid.UUID `json:"sessionId"`
	UserID    uuid.UUID `json:"userId"`
	Reason    string    `json:"reason"`
}

func (e ResolutionFailed) EventName() string { return "places.resolution.failed" }
