package places

import (
	"bytes"
	"context"
	"time"

	"frontsnap_backend/internal/adapters/storage"
	"frontsnap_backend/internal/events"
	"frontsnap_backend/platform/apperr"
	"frontsnap_backend/platform/config"
	"frontsnap_backend/platform/geo"
	"frontsnap_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// ResolveInput is one capture: the photo, whatever metadata the client
// could supply, and the device location as a coarse fallback.
type ResolveInput struct {
	Photo          []byte
	ContentType    string
	FileName       string
	Metadata       map[string]any
	DeviceLocation *geo.Point
	UserID         uuid.UUID
}

// ResolverConfig wires the resolver's collaborators. Vision, Searcher and
// Details are required; Sessions, Photos, Bus and Tasks degrade gracefully
// when absent (the CLI runs without them).
type ResolverConfig struct {
	Vision      VisionAnalyzer
	Searcher    *Searcher
	Details     PlaceSearcher
	Knobs       config.ResolutionKnobs
	Sessions    *SessionStore
	Photos      storage.PhotoStore
	PhotoBucket string
	Bus         events.Bus
	Tasks       PersistEnqueuer
	Logger      *logger.Logger
}

// Resolver runs the resolution decision flow. Each call is stateless and
// reentrant; concurrent captures are independent flows.
type Resolver struct {
	vision      VisionAnalyzer
	searcher    *Searcher
	details     PlaceSearcher
	knobs       config.ResolutionKnobs
	sessions    *SessionStore
	photos      storage.PhotoStore
	photoBucket string
	bus         events.Bus
	tasks       PersistEnqueuer
	detailsSF   singleflight.Group
	log         *logger.Logger
}

func NewResolver(cfg ResolverConfig) *Resolver {
	return &Resolver{
		vision:      cfg.Vision,
		searcher:    cfg.Searcher,
		details:     cfg.Details,
		knobs:       cfg.Knobs,
		sessions:    cfg.Sessions,
		photos:      cfg.Photos,
		photoBucket: cfg.PhotoBucket,
		bus:         cfg.Bus,
		tasks:       cfg.Tasks,
		log:         cfg.Logger,
	}
}

// Resolve runs the full pipeline for one captured photo: extract a
// location, analyze the image, search, optionally filter by camera heading,
// then either pick the top candidate (with details) or signal that the user
// must search manually. The two terminal errors are "no location at all"
// and a failed image analysis; everything else degrades.
func (r *Resolver) Resolve(ctx context.Context, input ResolveInput) (*ResolutionResult, error) {
	location := ExtractPhotoLocation(input.Photo, input.Metadata)
	if location == nil {
		if input.DeviceLocation == nil || !input.DeviceLocation.Valid() {
			return nil, apperr.BadRequest("no usable location: photo has no GPS data and no device location was provided").WithOp("places.resolve")
		}
		location = &PhotoLocation{Coordinate: *input.DeviceLocation}
	}

	guess, err := r.vision.Analyze(ctx, input.Photo, input.ContentType, &location.Coordinate)
	if err != nil {
		r.log.CollaboratorError("image_understanding", "analyze", err)
		return nil, apperr.Wrap(apperr.KindUnavailable, "image analysis failed", err).WithOp("places.resolve")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates := r.searcher.ResolveCandidates(ctx, location.Coordinate, guess.BusinessName, guess.BusinessType)
	if location.Direction != nil {
		candidates = ApplyDirectionFilter(candidates, *location, r.knobs)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sessionID := uuid.New()
	result := r.finish(ctx, sessionID, input.UserID, candidates, input, "")

	r.saveSession(ctx, &RetrySession{
		ID:        sessionID,
		UserID:    input.UserID,
		Location:  *location,
		Guess:     *guess,
		PhotoKey:  result.PhotoKey,
		CreatedAt: time.Now().UTC(),
	})

	return result, nil
}

// Retry re-runs the search for a stored session, excluding places the user
// has already rejected. An adjusted query replaces the stored business name
// for this search. The image analysis is not repeated; the session carries
// its guess.
func (r *Resolver) Retry(ctx context.Context, sessionID uuid.UUID, rejectedPlaceID, adjustedQuery string) (*ResolutionResult, error) {
	if r.sessions == nil {
		return nil, apperr.NotFound("retry sessions are not enabled").WithOp("places.retry")
	}

	var session *RetrySession
	var err error
	if rejectedPlaceID != "" {
		session, err = r.sessions.Reject(ctx, sessionID, rejectedPlaceID)
	} else {
		session, err = r.sessions.Get(ctx, sessionID)
	}
	if err != nil {
		return nil, err
	}

	businessName := session.Guess.BusinessName
	if adjustedQuery != "" {
		businessName = adjustedQuery
	}

	candidates := r.searcher.ResolveCandidates(ctx, session.Location.Coordinate, businessName, session.Guess.BusinessType)
	if session.Location.Direction != nil {
		candidates = ApplyDirectionFilter(candidates, session.Location, r.knobs)
	}
	candidates = excludeRejected(candidates, session.RejectedPlaceIDs)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return r.finish(ctx, session.ID, session.UserID, candidates, ResolveInput{UserID: session.UserID}, session.PhotoKey), nil
}

// FetchDetails loads full details for a place, collapsing concurrent
// requests for the same place into one collaborator call.
func (r *Resolver) FetchDetails(ctx context.Context, placeID string) (*CandidateDetails, error) {
	v, err, _ := r.detailsSF.Do(placeID, func() (interface{}, error) {
		return r.details.Details(ctx, placeID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*CandidateDetails), nil
}

// finish turns a ranked candidate list into the terminal result: either a
// resolved top pick with runner-up suggestions, or a manual-search signal.
// photoKey carries an already-stored photo (the retry flow); when empty the
// photo from input is uploaded instead.
func (r *Resolver) finish(ctx context.Context, sessionID, userID uuid.UUID, candidates []Candidate, input ResolveInput, photoKey string) *ResolutionResult {
	if len(candidates) == 0 {
		r.publish(events.ResolutionFailed{
			BaseEvent: events.NewBaseEvent(),
			SessionID: sessionID,
			UserID:    userID,
			Reason:    "no candidates",
		})
		return &ResolutionResult{SessionID: sessionID, PhotoKey: photoKey, Suggestions: []Candidate{}}
	}

	top := candidates[0]
	result := &ResolutionResult{
		SessionID:   sessionID,
		Resolved:    &top,
		Suggestions: suggestions(candidates),
	}

	// A details failure degrades: the caller still gets the match, just
	// without phone/hours/reviews.
	details, err := r.FetchDetails(ctx, top.ID)
	if err != nil {
		r.log.CollaboratorError("google_places", "details", err)
	} else {
		result.Details = details
	}

	if photoKey == "" {
		photoKey = r.uploadPhoto(ctx, userID, sessionID, input)
	}
	result.PhotoKey = photoKey
	result.PhotoURL = r.presignPhoto(ctx, photoKey)

	r.publish(events.PhotoResolved{
		BaseEvent: events.NewBaseEvent(),
		SessionID: sessionID,
		UserID:    userID,
		PlaceID:   top.ID,
		PlaceName: top.Name,
		Lat:       top.Coordinates.Lat,
		Lng:       top.Coordinates.Lng,
		PhotoKey:  result.PhotoKey,
	})

	if r.tasks != nil {
		if err := r.tasks.EnqueuePlacePersist(ctx, sessionID.String(), userID.String(), top.ID, result.PhotoKey); err != nil {
			r.log.Error("failed to enqueue place persistence", "error", err, "place_id", top.ID)
		}
	}

	return result
}

// suggestions returns up to five runner-up candidates after the top pick.
func suggestions(candidates []Candidate) []Candidate {
	rest := candidates[1:]
	if len(rest) > 5 {
		rest = rest[:5]
	}
	out := make([]Candidate, len(rest))
	copy(out, rest)
	return out
}

func excludeRejected(candidates []Candidate, rejected []string) []Candidate {
	if len(rejected) == 0 {
		return candidates
	}
	rejectedSet := make(map[string]struct{}, len(rejected))
	for _, id := range rejected {
		rejectedSet[id] = struct{}{}
	}

	kept := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := rejectedSet[c.ID]; !ok {
			kept = append(kept, c)
		}
	}
	return kept
}

func (r *Resolver) uploadPhoto(ctx context.Context, userID, sessionID uuid.UUID, input ResolveInput) string {
	if r.photos == nil || len(input.Photo) == 0 {
		return ""
	}

	if err := r.photos.ValidateContentType(input.ContentType); err != nil {
		r.log.Warn("photo not stored: unsupported content type", "content_type", input.ContentType, "error", err)
		return ""
	}
	if err := r.photos.ValidateFileSize(int64(len(input.Photo))); err != nil {
		r.log.Warn("photo not stored: size limit exceeded", "size", len(input.Photo), "error", err)
		return ""
	}

	fileName := input.FileName
	if fileName == "" {
		fileName = "capture.jpg"
	}
	folder := userID.String() + "/" + sessionID.String()

	key, err := r.photos.UploadPhoto(ctx, r.photoBucket, folder, fileName, input.ContentType,
		bytes.NewReader(input.Photo), int64(len(input.Photo)))
	if err != nil {
		r.log.CollaboratorError("object_storage", "upload_photo", err)
		return ""
	}
	return key
}

// presignPhoto builds a short-lived download URL for a stored photo so the
// client can render the capture alongside the match.
func (r *Resolver) presignPhoto(ctx context.Context, photoKey string) string {
	if r.photos == nil || photoKey == "" {
		return ""
	}
	presigned, err := r.photos.GenerateDownloadURL(ctx, r.photoBucket, photoKey)
	if err != nil {
		r.log.CollaboratorError("object_storage", "presign_photo", err)
		return ""
	}
	return presigned.URL
}

func (r *Resolver) saveSession(ctx context.Context, session *RetrySession) {
	if r.sessions == nil {
		return
	}
	if err := r.sessions.Save(ctx, session); err != nil {
		r.log.Error("failed to save retry session", "error", err, "session_id", session.ID)
	}
}

func (r *Resolver) publish(event events.Event) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(context.Background(), event)
}
