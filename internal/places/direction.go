package places

import (
	"math"
	"sort"

	"frontsnap_backend/platform/config"
	"frontsnap_backend/platform/geo"
)

// scoredCandidate augments a candidate with the directional scoring fields.
// It never leaves this file; callers only ever see plain Candidates.
type scoredCandidate struct {
	candidate      Candidate
	bearingToPlace float64
	angleDiff      float64
	distanceMeters float64
	combinedScore  float64
	inDirection    bool
}

// ApplyDirectionFilter ranks candidates by how well they line up with the
// camera heading. Candidates outside the angular tolerance are dropped; the
// survivors are sorted by a weighted direction+distance score, ascending
// (lower is better). When filtering would eliminate every candidate — a
// noisy compass reading — the directional result is discarded and the
// nearest originals by plain distance are returned instead.
//
// Without a camera heading (or without candidates) this is a no-op.
func ApplyDirectionFilter(candidates []Candidate, photo PhotoLocation, knobs config.ResolutionKnobs) []Candidate {
	if photo.Direction == nil || len(candidates) == 0 {
		return candidates
	}

	cameraDirection := *photo.Direction
	scored := make([]scoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, scoreCandidate(c, photo.Coordinate, cameraDirection, knobs))
	}

	inDirection := make([]scoredCandidate, 0, len(scored))
	for _, s := range scored {
		if s.inDirection {
			inDirection = append(inDirection, s)
		}
	}

	if len(inDirection) == 0 {
		return nearestByDistance(scored, knobs.NearestFallbackCount)
	}

	sort.SliceStable(inDirection, func(i, j int) bool {
		return inDirection[i].combinedScore < inDirection[j].combinedScore
	})

	return strip(inDirection)
}

func scoreCandidate(c Candidate, from geo.Point, cameraDirection float64, knobs config.ResolutionKnobs) scoredCandidate {
	bearing := geo.BearingDegrees(from, c.Coordinates)
	distance := geo.DistanceMeters(from, c.Coordinates)
	diff := angleDiff(bearing, cameraDirection)

	directionScore := diff
	distanceScore := math.Min(distance, knobs.DistanceCapMeters)

	return scoredCandidate{
		candidate:      c,
		bearingToPlace: bearing,
		angleDiff:      diff,
		distanceMeters: distance,
		combinedScore:  knobs.DirectionWeight*directionScore + knobs.DistanceWeight*distanceScore,
		inDirection:    diff <= knobs.DirectionToleranceDegrees,
	}
}

// angleDiff is the shortest angular distance between two bearings, handling
// wraparound at the 0/360 seam.
func angleDiff(a, b float64) float64 {
	diff := math.Abs(a - b)
	if diff > 180 {
		diff = 360 - diff
	}
	return diff
}

// nearestByDistance returns up to n candidates sorted by plain distance.
func nearestByDistance(scored []scoredCandidate, n int) []Candidate {
	sorted := make([]scoredCandidate, len(scored))
	copy(sorted, scored)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].distanceMeters < sorted[j].distanceMeters
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return strip(sorted)
}

func strip(scored []scoredCandidate) []Candidate {
	candidates := make([]Candidate, 0, len(scored))
	for _, s := range scored {
		candidates = append(candidates, s.candidate)
	}
	return candidates
}
