package places

import (
	"context"
	"strings"

	"frontsnap_backend/platform/config"
	"frontsnap_backend/platform/geo"
	"frontsnap_backend/platform/logger"
)

// Searcher runs the cascading candidate search against the geographic
// search collaborator.
type Searcher struct {
	places PlaceSearcher
	knobs  config.ResolutionKnobs
	log    *logger.Logger
}

func NewSearcher(places PlaceSearcher, knobs config.ResolutionKnobs, log *logger.Logger) *Searcher {
	return &Searcher{
		places: places,
		knobs:  knobs,
		log:    log,
	}
}

// ResolveCandidates executes the search cascade: type-aware nearby searches
// at progressively wider radii, then a text search as the last resort. The
// first stage that yields at least one candidate wins. A stage failure is
// treated identically to zero candidates; the cascade just moves on. Only
// when every stage comes up empty does this return an empty list — never an
// error.
func (s *Searcher) ResolveCandidates(ctx context.Context, location geo.Point, businessName, businessType string) []Candidate {
	for _, radius := range s.knobs.CascadeRadiiMeters {
		if err := ctx.Err(); err != nil {
			return nil
		}

		candidates, err := s.places.SearchNearby(ctx, location, businessName, businessType, radius)
		if err != nil {
			s.log.CollaboratorError("google_places", "nearby_search", err)
			continue
		}
		if len(candidates) > 0 {
			return candidates
		}
	}

	if err := ctx.Err(); err != nil {
		return nil
	}

	query := textQuery(businessName, businessType)
	candidates, err := s.places.SearchText(ctx, query, &location)
	if err != nil {
		s.log.CollaboratorError("google_places", "text_search", err)
		return nil
	}
	return candidates
}

// NearbyAll returns every place around a coordinate without any name or type
// narrowing. This backs the manual-override flow where the user browses the
// neighborhood instead of trusting the resolver.
func (s *Searcher) NearbyAll(ctx context.Context, location geo.Point, radiusMeters float64) ([]Candidate, error) {
	if radiusMeters <= 0 {
		radiusMeters = s.knobs.CascadeRadiiMeters[len(s.knobs.CascadeRadiiMeters)-1]
	}
	return s.places.SearchNearby(ctx, location, "", "", radiusMeters)
}

// textQuery builds the text-search fallback query. A generic business name
// would pollute the query with the literal word "Unknown", so it degrades
// the query to the business type alone.
func textQuery(businessName, businessType string) string {
	if isGenericName(businessName) {
		return businessType
	}
	return businessName + " " + businessType
}

func isGenericName(businessName string) bool {
	name := strings.ToLower(strings.TrimSpace(businessName))
	return name == "" || name == "unknown" || name == "unknown business"
}
