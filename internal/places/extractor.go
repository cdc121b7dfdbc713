package places

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"frontsnap_backend/platform/geo"

	"github.com/rwcarlsen/goexif/exif"
)

// ExtractPhotoLocation produces a best-effort capture location for a photo.
// Capture clients send structured metadata when their platform exposes it;
// otherwise the EXIF block embedded in the image bytes is the fallback
// source. Returns nil when neither yields a valid coordinate, so the caller
// can fall back to the device-reported location.
//
// Any parse failure (missing fields, non-numeric values, out-of-range
// coordinates) is non-fatal and degrades to nil.
func ExtractPhotoLocation(image []byte, metadata map[string]any) *PhotoLocation {
	if metadata != nil {
		if loc := fromMetadata(metadata); loc != nil {
			return loc
		}
	}
	if len(image) > 0 {
		return fromEXIF(image)
	}
	return nil
}

// fromMetadata reads GPS fields from client-supplied metadata. Two layouts
// occur in the wild: a nested "GPS" group (iOS) and flat GPS-prefixed keys
// (Android). The nested form is tried first.
func fromMetadata(metadata map[string]any) *PhotoLocation {
	if gps, ok := metadata["GPS"].(map[string]any); ok {
		if loc := assembleLocation(gps, "Latitude", "Longitude", "LatitudeRef", "LongitudeRef", "ImgDirection", "HPositioningError"); loc != nil {
			return loc
		}
	}
	return assembleLocation(metadata, "GPSLatitude", "GPSLongitude", "GPSLatitudeRef", "GPSLongitudeRef", "GPSImgDirection", "GPSHPositioningError")
}

func assembleLocation(fields map[string]any, latKey, lngKey, latRefKey, lngRefKey, directionKey, accuracyKey string) *PhotoLocation {
	lat, ok := toFloat(fields[latKey])
	if !ok {
		return nil
	}
	lng, ok := toFloat(fields[lngKey])
	if !ok {
		return nil
	}

	// Hemisphere correction: refs override whatever sign the raw value has.
	if ref, ok := fields[latRefKey].(string); ok && strings.EqualFold(strings.TrimSpace(ref), "S") {
		lat = -math.Abs(lat)
	}
	if ref, ok := fields[lngRefKey].(string); ok && strings.EqualFold(strings.TrimSpace(ref), "W") {
		lng = -math.Abs(lng)
	}

	point := geo.Point{Lat: lat, Lng: lng}
	if !point.Valid() {
		return nil
	}

	loc := &PhotoLocation{Coordinate: point}

	if direction, ok := toFloat(fields[directionKey]); ok && direction >= 0 && direction <= 360 {
		normalized := math.Mod(direction, 360)
		loc.Direction = &normalized
	}
	if accuracy, ok := toFloat(fields[accuracyKey]); ok && accuracy > 0 {
		loc.Accuracy = &accuracy
	}

	return loc
}

// fromEXIF decodes the EXIF block embedded in the image itself.
func fromEXIF(image []byte) *PhotoLocation {
	x, err := exif.Decode(bytes.NewReader(image))
	if err != nil {
		return nil
	}

	lat, lng, err := x.LatLong()
	if err != nil {
		return nil
	}

	point := geo.Point{Lat: lat, Lng: lng}
	if !point.Valid() {
		return nil
	}

	loc := &PhotoLocation{Coordinate: point}

	if tag, err := x.Get(exif.GPSImgDirection); err == nil {
		if num, den, err := tag.Rat2(0); err == nil && den != 0 {
			direction := float64(num) / float64(den)
			if direction >= 0 && direction <= 360 {
				normalized := math.Mod(direction, 360)
				loc.Direction = &normalized
			}
		}
	}

	return loc
}

// toFloat coerces the loosely-typed values JSON metadata carries. EXIF refs
// and some Android vendors ship coordinates as strings.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
