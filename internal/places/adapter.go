package places

import (
	"context"

	"frontsnap_backend/platform/geo"
	"frontsnap_backend/platform/googleplaces"
)

// GoogleSearcher adapts the Places Web Service client to the PlaceSearcher
// port, translating its result records into Candidates at the boundary.
type GoogleSearcher struct {
	client *googleplaces.Client
}

func NewGoogleSearcher(client *googleplaces.Client) *GoogleSearcher {
	return &GoogleSearcher{client: client}
}

var _ PlaceSearcher = (*GoogleSearcher)(nil)

func (g *GoogleSearcher) SearchNearby(ctx context.Context, location geo.Point, businessName, businessType string, radiusMeters float64) ([]Candidate, error) {
	results, err := g.client.SearchNearby(ctx, location.Lat, location.Lng, businessName, businessType, radiusMeters)
	if err != nil {
		return nil, err
	}
	return toCandidates(results), nil
}

func (g *GoogleSearcher) SearchText(ctx context.Context, query string, bias *geo.Point) ([]Candidate, error) {
	var biasLat, biasLng *float64
	if bias != nil {
		biasLat = &bias.Lat
		biasLng = &bias.Lng
	}
	results, err := g.client.SearchText(ctx, query, biasLat, biasLng)
	if err != nil {
		return nil, err
	}
	return toCandidates(results), nil
}

func (g *GoogleSearcher) Details(ctx context.Context, candidateID string) (*CandidateDetails, error) {
	return g.client.Details(ctx, candidateID)
}

func toCandidates(results []googleplaces.Place) []Candidate {
	if len(results) == 0 {
		return nil
	}
	candidates := make([]Candidate, 0, len(results))
	for _, r := range results {
		candidates = append(candidates, Candidate{
			ID:          r.PlaceID,
			Name:        r.Name,
			Address:     r.Address,
			Coordinates: geo.Point{Lat: r.Lat, Lng: r.Lng},
			Rating:      r.Rating,
			Types:       r.Types,
		})
	}
	return candidates
}
