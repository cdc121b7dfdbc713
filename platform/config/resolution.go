package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ResolutionKnobs are the tunable constants of the place resolution pipeline.
// The defaults are load-bearing for behavioral compatibility with the mobile
// client; override them only via a RESOLUTION_CONFIG file.
type ResolutionKnobs struct {
	// CascadeRadiiMeters are the nearby-search radii tried in order.
	CascadeRadiiMeters []float64 `yaml:"cascadeRadiiMeters"`
	// DirectionToleranceDegrees is the angular window around the camera
	// heading that keeps a candidate "in direction".
	DirectionToleranceDegrees float64 `yaml:"directionToleranceDegrees"`
	// DirectionWeight and DistanceWeight combine the two scores.
	DirectionWeight float64 `yaml:"directionWeight"`
	DistanceWeight  float64 `yaml:"distanceWeight"`
	// DistanceCapMeters bounds the distance contribution to the score.
	DistanceCapMeters float64 `yaml:"distanceCapMeters"`
	// NearestFallbackCount is how many candidates survive when direction
	// filtering eliminates everything.
	NearestFallbackCount int `yaml:"nearestFallbackCount"`
}

// DefaultResolutionKnobs returns the pipeline constants.
func DefaultResolutionKnobs() ResolutionKnobs {
	return ResolutionKnobs{
		CascadeRadiiMeters:        []float64{50, 200, 500},
		DirectionToleranceDegrees: 45,
		DirectionWeight:           0.7,
		DistanceWeight:            0.3,
		DistanceCapMeters:         100,
		NearestFallbackCount:      5,
	}
}

// LoadResolutionKnobs returns the defaults, overridden by the YAML file at
// path when one is configured.
func LoadResolutionKnobs(path string) (ResolutionKnobs, error) {
	knobs := DefaultResolutionKnobs()
	if path == "" {
		return knobs, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ResolutionKnobs{}, err
	}
	if err := yaml.Unmarshal(data, &knobs); err != nil {
		return ResolutionKnobs{}, err
	}
	if err := knobs.Validate(); err != nil {
		return ResolutionKnobs{}, err
	}
	return knobs, nil
}

// Validate rejects knob combinations the pipeline cannot run with.
func (k ResolutionKnobs) Validate() error {
	if len(k.CascadeRadiiMeters) == 0 {
		return fmt.Errorf("cascadeRadiiMeters must not be empty")
	}
	prev := 0.0
	for _, r := range k.CascadeRadiiMeters {
		if r <= prev {
			return fmt.Errorf("cascadeRadiiMeters must be positive and ascending")
		}
		prev = r
	}
	if k.DirectionToleranceDegrees <= 0 || k.DirectionToleranceDegrees > 180 {
		return fmt.Errorf("directionToleranceDegrees must be in (0,180]")
	}
	if k.DirectionWeight < 0 || k.DistanceWeight < 0 {
		return fmt.Errorf("score weights must be non-negative")
	}
	if k.DirectionWeight+k.DistanceWeight == 0 {
		return fmt.Errorf("score weights must not both be zero")
	}
	if k.DistanceCapMeters <= 0 {
		return fmt.Errorf("distanceCapMeters must be positive")
	}
	if k.NearestFallbackCount < 1 {
		return fmt.Errorf("nearestFallbackCount must be at least 1")
	}
	return nil
}
