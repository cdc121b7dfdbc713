// Package places implements the photo-to-place resolution pipeline: EXIF
// location extraction, cascading nearby search, bearing-based candidate
// scoring, and the final resolution decision.
package places

import (
	"context"
	"time"

	"frontsnap_backend/platform/geo"
	"frontsnap_backend/platform/googleplaces"

	"github.com/google/uuid"
)

// PhotoLocation is where a photo was captured and, when the capture device
// recorded them, which way the camera faced and how precise the fix was.
// Direction and Accuracy are pointers because zero is a legitimate bearing
// and must not be confused with "absent".
type PhotoLocation struct {
	Coordinate geo.Point `json:"coordinate"`
	// Direction is the compass bearing in degrees [0,360) the camera faced.
	Direction *float64 `json:"direction,omitempty"`
	// Accuracy is the horizontal positioning error in meters.
	Accuracy *float64 `json:"accuracy,omitempty"`
}

// BusinessGuess is the image-understanding output for a storefront photo.
// It is a hint, not ground truth: BusinessName may be a generic placeholder
// like "Unknown Business".
type BusinessGuess struct {
	BusinessName string     `json:"businessName"`
	BusinessType string     `json:"businessType"`
	LocationText string     `json:"locationText,omitempty"`
	Coordinates  *geo.Point `json:"coordinates,omitempty"`
}

// Candidate is a place returned by the search collaborator as a possible
// match for the photographed business.
type Candidate struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Coordinates geo.Point `json:"coordinates"`
	Rating      *float64  `json:"rating,omitempty"`
	Types       []string  `json:"types"`
}

// CandidateDetails is the full detail record fetched for a resolved match.
type CandidateDetails = googleplaces.PlaceDetails

// ResolutionResult is the outcome of one resolution attempt. When Resolved is
// nil the caller must prompt the user for a manual search; Suggestions holds
// runner-up candidates either way.
type ResolutionResult struct {
	SessionID   uuid.UUID         `json:"sessionId"`
	Resolved    *Candidate        `json:"resolved,omitempty"`
	Details     *CandidateDetails `json:"details,omitempty"`
	Suggestions []Candidate       `json:"suggestions"`
	PhotoKey    string            `json:"photoKey,omitempty"`
	PhotoURL    string            `json:"photoUrl,omitempty"`
}

// PlaceSearcher is the geographic search collaborator.
type PlaceSearcher interface {
	SearchNearby(ctx context.Context, location geo.Point, businessName, businessType string, radiusMeters float64) ([]Candidate, error)
	SearchText(ctx context.Context, query string, bias *geo.Point) ([]Candidate, error)
	Details(ctx context.Context, candidateID string) (*CandidateDetails, error)
}

// VisionAnalyzer is the image-understanding collaborator.
type VisionAnalyzer interface {
	Analyze(ctx context.Context, image []byte, contentType string, locationHint *geo.Point) (*BusinessGuess, error)
}

// PersistEnqueuer queues background persistence for a resolved session.
type PersistEnqueuer interface {
	EnqueuePlacePersist(ctx context.Context, sessionID, userID, placeID, photoKey string) error
}

// ResolutionRecord links a capture session to the place it resolved to.
type ResolutionRecord struct {
	SessionID  uuid.UUID
	UserID     uuid.UUID
	PlaceID    string
	PhotoKey   string
	ResolvedAt time.Time
}

// StoredPlace is a persisted place row.
type StoredPlace struct {
	PlaceID         string                `json:"placeId"`
	Name            string                `json:"name"`
	Address         string                `json:"address"`
	Lat             float64               `json:"lat"`
	Lng             float64               `json:"lng"`
	Phone           string                `json:"phone,omitempty"`
	Website         string                `json:"website,omitempty"`
	Rating          *float64              `json:"rating,omitempty"`
	UserRatingCount int                   `json:"userRatingCount"`
	Types           []string              `json:"types"`
	OpeningHours    []string              `json:"openingHours,omitempty"`
	UpdatedAt       time.Time             `json:"updatedAt"`
	Reviews         []googleplaces.Review `json:"reviews,omitempty"`
}
