package config

import "testing"

func TestLoadPipelineNeedsOnlyAPIKeys(t *testing.T) {
	t.Setenv("GOOGLE_PLACES_API_KEY", "places-key")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_ACCESS_SECRET", "")

	cfg, err := LoadPipeline()
	if err != nil {
		t.Fatalf("pipeline config must not require server settings: %v", err)
	}
	if cfg.GeminiModel == "" {
		t.Fatal("expected a default gemini model")
	}
	if len(cfg.Resolution.CascadeRadiiMeters) == 0 {
		t.Fatal("expected default resolution knobs")
	}
}

func TestLoadPipelineRequiresPlacesKey(t *testing.T) {
	t.Setenv("GOOGLE_PLACES_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gemini-key")

	if _, err := LoadPipeline(); err == nil {
		t.Fatal("expected an error without a places api key")
	}
}
