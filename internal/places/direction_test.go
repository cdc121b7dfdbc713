package places

import (
	"math"
	"testing"

	"frontsnap_backend/platform/config"
	"frontsnap_backend/platform/geo"
)

// destination computes the point at a given bearing and distance from a
// start point, so tests can place candidates at exact offsets.
func destination(from geo.Point, bearingDeg, distanceMeters float64) geo.Point {
	delta := distanceMeters / geo.EarthRadiusMeters
	theta := bearingDeg * math.Pi / 180
	phi1 := from.Lat * math.Pi / 180
	lambda1 := from.Lng * math.Pi / 180

	phi2 := math.Asin(math.Sin(phi1)*math.Cos(delta) + math.Cos(phi1)*math.Sin(delta)*math.Cos(theta))
	lambda2 := lambda1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(phi1),
		math.Cos(delta)-math.Sin(phi1)*math.Sin(phi2),
	)

	return geo.Point{
		Lat: phi2 * 180 / math.Pi,
		Lng: lambda2 * 180 / math.Pi,
	}
}

func floatPtr(f float64) *float64 { return &f }

func TestAngleDiffWraparound(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{350, 10, 20},
		{10, 350, 20},
		{0, 180, 180},
		{90, 90, 0},
		{359, 1, 2},
		{45, 315, 90},
	}

	for _, tt := range tests {
		if got := angleDiff(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("angleDiff(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestDirectionFilterNoHeadingIsNoOp(t *testing.T) {
	candidates := []Candidate{{ID: "a"}, {ID: "b"}}
	photo := PhotoLocation{Coordinate: testLocation}

	got := ApplyDirectionFilter(candidates, photo, config.DefaultResolutionKnobs())

	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("expected input unchanged, got %+v", got)
	}
}

func TestDirectionFilterEmptyInput(t *testing.T) {
	photo := PhotoLocation{Coordinate: testLocation, Direction: floatPtr(90)}

	if got := ApplyDirectionFilter(nil, photo, config.DefaultResolutionKnobs()); len(got) != 0 {
		t.Fatalf("expected empty, got %+v", got)
	}
}

// Camera faces east; candidates sit at bearings 88, 95 and 270 degrees at
// distances 10m, 40m and 5m. The 270 candidate is excluded (angle diff 180),
// the others rank by combined score: 0.7*2+0.3*10 = 4.4 beats 0.7*5+0.3*40
// = 15.5.
func TestDirectionFilterRoundTrip(t *testing.T) {
	origin := geo.Point{Lat: 37.7749, Lng: -122.4194}
	candidates := []Candidate{
		{ID: "east-ish", Coordinates: destination(origin, 88, 10)},
		{ID: "east-far", Coordinates: destination(origin, 95, 40)},
		{ID: "behind", Coordinates: destination(origin, 270, 5)},
	}
	photo := PhotoLocation{Coordinate: origin, Direction: floatPtr(90)}

	got := ApplyDirectionFilter(candidates, photo, config.DefaultResolutionKnobs())

	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %+v", got)
	}
	if got[0].ID != "east-ish" || got[1].ID != "east-far" {
		t.Fatalf("unexpected ranking: [%s, %s]", got[0].ID, got[1].ID)
	}
}

func TestDirectionFilterDegeneracyFallsBackToNearest(t *testing.T) {
	origin := geo.Point{Lat: 37.7749, Lng: -122.4194}
	// Everything is behind the camera.
	candidates := []Candidate{
		{ID: "d30", Coordinates: destination(origin, 180, 30)},
		{ID: "d10", Coordinates: destination(origin, 185, 10)},
		{ID: "d50", Coordinates: destination(origin, 175, 50)},
		{ID: "d20", Coordinates: destination(origin, 190, 20)},
		{ID: "d60", Coordinates: destination(origin, 170, 60)},
		{ID: "d40", Coordinates: destination(origin, 180, 40)},
	}
	photo := PhotoLocation{Coordinate: origin, Direction: floatPtr(0)}

	got := ApplyDirectionFilter(candidates, photo, config.DefaultResolutionKnobs())

	if len(got) != 5 {
		t.Fatalf("expected the 5 nearest, got %d candidates", len(got))
	}
	want := []string{"d10", "d20", "d30", "d40", "d50"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("expected order %v, got %+v", want, got)
		}
	}
}

func TestDirectionFilterIdempotent(t *testing.T) {
	origin := geo.Point{Lat: 37.7749, Lng: -122.4194}
	candidates := []Candidate{
		{ID: "a", Coordinates: destination(origin, 85, 20)},
		{ID: "b", Coordinates: destination(origin, 100, 15)},
		{ID: "c", Coordinates: destination(origin, 200, 5)},
	}
	photo := PhotoLocation{Coordinate: origin, Direction: floatPtr(90)}
	knobs := config.DefaultResolutionKnobs()

	once := ApplyDirectionFilter(candidates, photo, knobs)
	twice := ApplyDirectionFilter(once, photo, knobs)

	if len(once) != len(twice) {
		t.Fatalf("second pass changed the set: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].ID != twice[i].ID {
			t.Fatalf("second pass reordered: %+v vs %+v", once, twice)
		}
	}
}

func TestDirectionFilterStableTieBreak(t *testing.T) {
	origin := geo.Point{Lat: 37.7749, Lng: -122.4194}
	samePoint := destination(origin, 90, 25)
	candidates := []Candidate{
		{ID: "first", Coordinates: samePoint},
		{ID: "second", Coordinates: samePoint},
	}
	photo := PhotoLocation{Coordinate: origin, Direction: floatPtr(90)}

	got := ApplyDirectionFilter(candidates, photo, config.DefaultResolutionKnobs())

	if len(got) != 2 || got[0].ID != "first" || got[1].ID != "second" {
		t.Fatalf("tie must retain input order, got %+v", got)
	}
}
