package places

import (
	"context"
	"errors"
	"strings"
	"testing"

	"frontsnap_backend/platform/config"
	"frontsnap_backend/platform/geo"
	"frontsnap_backend/platform/logger"
)

// fakeSearcher scripts per-radius nearby results and records every call.
type fakeSearcher struct {
	nearbyResults map[float64][]Candidate
	nearbyErr     map[float64]error
	textResults   []Candidate
	textErr       error

	nearbyCalls []float64
	textQueries []string
	textBias    *geo.Point
}

func (f *fakeSearcher) SearchNearby(ctx context.Context, location geo.Point, businessName, businessType string, radiusMeters float64) ([]Candidate, error) {
	f.nearbyCalls = append(f.nearbyCalls, radiusMeters)
	if err := f.nearbyErr[radiusMeters]; err != nil {
		return nil, err
	}
	return f.nearbyResults[radiusMeters], nil
}

func (f *fakeSearcher) SearchText(ctx context.Context, query string, bias *geo.Point) ([]Candidate, error) {
	f.textQueries = append(f.textQueries, query)
	f.textBias = bias
	if f.textErr != nil {
		return nil, f.textErr
	}
	return f.textResults, nil
}

func (f *fakeSearcher) Details(ctx context.Context, candidateID string) (*CandidateDetails, error) {
	return nil, errors.New("not scripted")
}

func testSearcher(fake *fakeSearcher) *Searcher {
	return NewSearcher(fake, config.DefaultResolutionKnobs(), logger.New("development"))
}

var testLocation = geo.Point{Lat: 37.7749, Lng: -122.4194}

func TestCascadeShortCircuitsOnFirstHit(t *testing.T) {
	fake := &fakeSearcher{
		nearbyResults: map[float64][]Candidate{
			50: {{ID: "close", Name: "Close Cafe"}},
		},
	}

	got := testSearcher(fake).ResolveCandidates(context.Background(), testLocation, "Close Cafe", "cafe")

	if len(got) != 1 || got[0].ID != "close" {
		t.Fatalf("unexpected candidates: %+v", got)
	}
	if len(fake.nearbyCalls) != 1 || fake.nearbyCalls[0] != 50 {
		t.Fatalf("expected exactly one 50m call, got %v", fake.nearbyCalls)
	}
	if len(fake.textQueries) != 0 {
		t.Fatalf("text search must not run after a nearby hit")
	}
}

func TestCascadeWidensThroughAllRadii(t *testing.T) {
	fake := &fakeSearcher{
		nearbyResults: map[float64][]Candidate{
			500: {{ID: "far", Name: "Far Bar"}},
		},
	}

	got := testSearcher(fake).ResolveCandidates(context.Background(), testLocation, "Far Bar", "bar")

	if len(got) != 1 || got[0].ID != "far" {
		t.Fatalf("unexpected candidates: %+v", got)
	}
	want := []float64{50, 200, 500}
	if len(fake.nearbyCalls) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, fake.nearbyCalls)
	}
	for i, radius := range want {
		if fake.nearbyCalls[i] != radius {
			t.Fatalf("expected calls %v, got %v", want, fake.nearbyCalls)
		}
	}
}

func TestCascadeStageFailureAdvances(t *testing.T) {
	fake := &fakeSearcher{
		nearbyErr: map[float64]error{
			50: errors.New("timeout"),
		},
		nearbyResults: map[float64][]Candidate{
			200: {{ID: "second", Name: "Second Chance"}},
		},
	}

	got := testSearcher(fake).ResolveCandidates(context.Background(), testLocation, "Second Chance", "restaurant")

	if len(got) != 1 || got[0].ID != "second" {
		t.Fatalf("a failed stage must behave like zero candidates, got %+v", got)
	}
}

func TestCascadeFallsBackToTextSearch(t *testing.T) {
	fake := &fakeSearcher{
		textResults: []Candidate{{ID: "text-hit", Name: "Blue Bottle Coffee"}},
	}

	got := testSearcher(fake).ResolveCandidates(context.Background(), testLocation, "Blue Bottle", "cafe")

	if len(got) != 1 || got[0].ID != "text-hit" {
		t.Fatalf("unexpected candidates: %+v", got)
	}
	if len(fake.textQueries) != 1 || fake.textQueries[0] != "Blue Bottle cafe" {
		t.Fatalf("unexpected text queries: %v", fake.textQueries)
	}
	if fake.textBias == nil || fake.textBias.Lat != testLocation.Lat {
		t.Fatalf("text search must be biased toward the photo location")
	}
}

func TestGenericNameDegradesToTypeOnlyQuery(t *testing.T) {
	for _, name := range []string{"Unknown Business", "unknown", "UNKNOWN BUSINESS", "", "  "} {
		fake := &fakeSearcher{}
		testSearcher(fake).ResolveCandidates(context.Background(), testLocation, name, "cafe")

		if len(fake.textQueries) != 1 {
			t.Fatalf("expected one text query for name %q", name)
		}
		if fake.textQueries[0] != "cafe" {
			t.Fatalf("name %q: expected query %q, got %q", name, "cafe", fake.textQueries[0])
		}
		if strings.Contains(strings.ToLower(fake.textQueries[0]), "unknown") {
			t.Fatalf("query must not contain the placeholder name, got %q", fake.textQueries[0])
		}
	}
}

func TestCascadeAllStagesEmptyReturnsEmpty(t *testing.T) {
	fake := &fakeSearcher{textErr: errors.New("quota exceeded")}

	got := testSearcher(fake).ResolveCandidates(context.Background(), testLocation, "Ghost Shop", "store")

	if len(got) != 0 {
		t.Fatalf("expected no candidates, got %+v", got)
	}
}

func TestCascadeStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fake := &fakeSearcher{
		nearbyResults: map[float64][]Candidate{
			50: {{ID: "close"}},
		},
	}

	got := testSearcher(fake).ResolveCandidates(ctx, testLocation, "Close Cafe", "cafe")

	if len(got) != 0 {
		t.Fatalf("cancelled cascade must yield nothing, got %+v", got)
	}
	if len(fake.nearbyCalls) != 0 {
		t.Fatalf("cancelled cascade must not call collaborators, got %v", fake.nearbyCalls)
	}
}

func TestNearbyAllDefaultsToWidestRadius(t *testing.T) {
	fake := &fakeSearcher{
		nearbyResults: map[float64][]Candidate{
			500: {{ID: "browse"}},
		},
	}

	got, err := testSearcher(fake).NearbyAll(context.Background(), testLocation, 0)
	if err != nil {
		t.Fatalf("nearby all: %v", err)
	}
	if len(got) != 1 || got[0].ID != "browse" {
		t.Fatalf("unexpected candidates: %+v", got)
	}
	if len(fake.nearbyCalls) != 1 || fake.nearbyCalls[0] != 500 {
		t.Fatalf("expected a single 500m call, got %v", fake.nearbyCalls)
	}
}
