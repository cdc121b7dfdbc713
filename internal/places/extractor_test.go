package places

import (
	"math"
	"testing"
)

func TestExtractHemisphereCorrection(t *testing.T) {
	metadata := map[string]any{
		"GPS": map[string]any{
			"Latitude":     37.7749,
			"Longitude":    122.4194,
			"LatitudeRef":  "N",
			"LongitudeRef": "W",
		},
	}

	loc := ExtractPhotoLocation(nil, metadata)
	if loc == nil {
		t.Fatal("expected a location")
	}
	if loc.Coordinate.Lat != 37.7749 {
		t.Fatalf("expected lat 37.7749, got %f", loc.Coordinate.Lat)
	}
	if loc.Coordinate.Lng != -122.4194 {
		t.Fatalf("expected lng -122.4194, got %f", loc.Coordinate.Lng)
	}
}

func TestExtractSouthernHemisphere(t *testing.T) {
	metadata := map[string]any{
		"GPSLatitude":     33.8688,
		"GPSLongitude":    151.2093,
		"GPSLatitudeRef":  "S",
		"GPSLongitudeRef": "E",
	}

	loc := ExtractPhotoLocation(nil, metadata)
	if loc == nil {
		t.Fatal("expected a location")
	}
	if loc.Coordinate.Lat != -33.8688 {
		t.Fatalf("expected lat -33.8688, got %f", loc.Coordinate.Lat)
	}
	if loc.Coordinate.Lng != 151.2093 {
		t.Fatalf("expected lng 151.2093, got %f", loc.Coordinate.Lng)
	}
}

func TestExtractPrefersNestedGroup(t *testing.T) {
	metadata := map[string]any{
		"GPS": map[string]any{
			"Latitude":  10.0,
			"Longitude": 20.0,
		},
		"GPSLatitude":  50.0,
		"GPSLongitude": 60.0,
	}

	loc := ExtractPhotoLocation(nil, metadata)
	if loc == nil {
		t.Fatal("expected a location")
	}
	if loc.Coordinate.Lat != 10.0 || loc.Coordinate.Lng != 20.0 {
		t.Fatalf("expected nested coordinates, got %+v", loc.Coordinate)
	}
}

func TestExtractNoGPSFieldsReturnsNil(t *testing.T) {
	if loc := ExtractPhotoLocation(nil, map[string]any{"Make": "Apple"}); loc != nil {
		t.Fatalf("expected nil, got %+v", loc)
	}
	if loc := ExtractPhotoLocation(nil, nil); loc != nil {
		t.Fatalf("expected nil for missing metadata, got %+v", loc)
	}
}

func TestExtractRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]any
	}{
		{"out of range latitude", map[string]any{"GPSLatitude": 91.0, "GPSLongitude": 0.0}},
		{"out of range longitude", map[string]any{"GPSLatitude": 0.0, "GPSLongitude": 181.0}},
		{"NaN latitude", map[string]any{"GPSLatitude": math.NaN(), "GPSLongitude": 0.0}},
		{"non-numeric longitude", map[string]any{"GPSLatitude": 1.0, "GPSLongitude": "east-ish"}},
		{"missing longitude", map[string]any{"GPSLatitude": 1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if loc := ExtractPhotoLocation(nil, tt.metadata); loc != nil {
				t.Fatalf("expected nil, got %+v", loc)
			}
		})
	}
}

func TestExtractDirectionAndAccuracy(t *testing.T) {
	metadata := map[string]any{
		"GPS": map[string]any{
			"Latitude":          1.0,
			"Longitude":         2.0,
			"ImgDirection":      90.5,
			"HPositioningError": 12.0,
		},
	}

	loc := ExtractPhotoLocation(nil, metadata)
	if loc == nil {
		t.Fatal("expected a location")
	}
	if loc.Direction == nil || *loc.Direction != 90.5 {
		t.Fatalf("expected direction 90.5, got %v", loc.Direction)
	}
	if loc.Accuracy == nil || *loc.Accuracy != 12.0 {
		t.Fatalf("expected accuracy 12, got %v", loc.Accuracy)
	}
}

func TestExtractZeroDirectionIsKept(t *testing.T) {
	metadata := map[string]any{
		"GPSLatitude":     1.0,
		"GPSLongitude":    2.0,
		"GPSImgDirection": 0.0,
	}

	loc := ExtractPhotoLocation(nil, metadata)
	if loc == nil {
		t.Fatal("expected a location")
	}
	if loc.Direction == nil || *loc.Direction != 0.0 {
		t.Fatalf("expected direction 0 to be present, got %v", loc.Direction)
	}
}

func TestExtractInvalidDirectionOmitted(t *testing.T) {
	metadata := map[string]any{
		"GPSLatitude":     1.0,
		"GPSLongitude":    2.0,
		"GPSImgDirection": 400.0,
	}

	loc := ExtractPhotoLocation(nil, metadata)
	if loc == nil {
		t.Fatal("expected a location")
	}
	if loc.Direction != nil {
		t.Fatalf("expected out-of-range direction to be omitted, got %v", loc.Direction)
	}
}

func TestExtractStringCoordinates(t *testing.T) {
	metadata := map[string]any{
		"GPSLatitude":     "37.7749",
		"GPSLongitude":    "122.4194",
		"GPSLatitudeRef":  "N",
		"GPSLongitudeRef": "W",
	}

	loc := ExtractPhotoLocation(nil, metadata)
	if loc == nil {
		t.Fatal("expected a location")
	}
	if loc.Coordinate.Lng != -122.4194 {
		t.Fatalf("expected lng -122.4194, got %f", loc.Coordinate.Lng)
	}
}

func TestExtractGarbageImageBytesReturnsNil(t *testing.T) {
	if loc := ExtractPhotoLocation([]byte("not a jpeg"), nil); loc != nil {
		t.Fatalf("expected nil for undecodable image, got %+v", loc)
	}
}
