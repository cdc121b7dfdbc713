package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultResolutionKnobs(t *testing.T) {
	knobs := DefaultResolutionKnobs()

	if len(knobs.CascadeRadiiMeters) != 3 {
		t.Fatalf("expected 3 cascade radii, got %d", len(knobs.CascadeRadiiMeters))
	}
	want := []float64{50, 200, 500}
	for i, r := range want {
		if knobs.CascadeRadiiMeters[i] != r {
			t.Fatalf("radius %d: expected %f, got %f", i, r, knobs.CascadeRadiiMeters[i])
		}
	}
	if knobs.DirectionToleranceDegrees != 45 {
		t.Fatalf("expected tolerance 45, got %f", knobs.DirectionToleranceDegrees)
	}
	if knobs.DirectionWeight != 0.7 || knobs.DistanceWeight != 0.3 {
		t.Fatalf("expected weights 0.7/0.3, got %f/%f", knobs.DirectionWeight, knobs.DistanceWeight)
	}
	if knobs.DistanceCapMeters != 100 {
		t.Fatalf("expected distance cap 100, got %f", knobs.DistanceCapMeters)
	}
	if knobs.NearestFallbackCount != 5 {
		t.Fatalf("expected fallback count 5, got %d", knobs.NearestFallbackCount)
	}
	if err := knobs.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadResolutionKnobsOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resolution.yaml")
	payload := []byte("cascadeRadiiMeters: [100, 400]\ndirectionToleranceDegrees: 30\ndirectionWeight: 0.6\ndistanceWeight: 0.4\ndistanceCapMeters: 150\nnearestFallbackCount: 3\n")
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	knobs, err := LoadResolutionKnobs(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(knobs.CascadeRadiiMeters) != 2 || knobs.CascadeRadiiMeters[1] != 400 {
		t.Fatalf("expected overridden radii [100 400], got %v", knobs.CascadeRadiiMeters)
	}
	if knobs.DirectionToleranceDegrees != 30 {
		t.Fatalf("expected tolerance 30, got %f", knobs.DirectionToleranceDegrees)
	}
	if knobs.NearestFallbackCount != 3 {
		t.Fatalf("expected fallback count 3, got %d", knobs.NearestFallbackCount)
	}
}

func TestLoadResolutionKnobsRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resolution.yaml")
	// Descending radii are invalid.
	payload := []byte("cascadeRadiiMeters: [500, 50]\n")
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := LoadResolutionKnobs(path); err == nil {
		t.Fatalf("expected error for descending radii")
	}
}

func TestResolutionKnobsValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ResolutionKnobs)
	}{
		{"empty radii", func(k *ResolutionKnobs) { k.CascadeRadiiMeters = nil }},
		{"zero tolerance", func(k *ResolutionKnobs) { k.DirectionToleranceDegrees = 0 }},
		{"tolerance over 180", func(k *ResolutionKnobs) { k.DirectionToleranceDegrees = 181 }},
		{"negative weight", func(k *ResolutionKnobs) { k.DirectionWeight = -1 }},
		{"both weights zero", func(k *ResolutionKnobs) { k.DirectionWeight = 0; k.DistanceWeight = 0 }},
		{"zero cap", func(k *ResolutionKnobs) { k.DistanceCapMeters = 0 }},
		{"zero fallback", func(k *ResolutionKnobs) { k.NearestFallbackCount = 0 }},
	}

	for _, tc := range cases {
		knobs := DefaultResolutionKnobs()
		tc.mutate(&knobs)
		if err := knobs.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}
