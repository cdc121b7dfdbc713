// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SchedulerConfig provides settings for the asynq scheduler/worker.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// PlacesAPIConfig provides settings for the Google Places client.
type PlacesAPIConfig interface {
	GetGooglePlacesAPIKey() string
}

// VisionConfig provides settings for the storefront identification agent.
type VisionConfig interface {
	GetGeminiAPIKey() string
	GetGeminiModel() string
}

// RetrySessionConfig provides settings for the transient re-search store.
type RetrySessionConfig interface {
	GetRedisURL() string
	GetRetrySessionTTL() time.Duration
}

// ShareConfig provides settings for place share links.
type ShareConfig interface {
	GetPlaceShareBaseURL() string
}

// ResolutionConfig provides the resolution pipeline policy knobs.
type ResolutionConfig interface {
	GetResolutionKnobs() ResolutionKnobs
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                string
	HTTPAddr           string
	DatabaseURL        string
	JWTAccessSecret    string
	CORSAllowAll       bool
	CORSOrigins        []string
	CORSAllowCreds     bool
	GooglePlacesAPIKey string
	GeminiAPIKey       string
	GeminiModel        string
	RedisURL           string
	RedisTLSInsecure   bool
	AsynqQueueName     string
	AsynqConcurrency   int
	MinIOEndpoint      string
	MinIOAccessKey     string
	MinIOSecretKey     string
	MinIOUseSSL        bool
	MinIOMaxFileSize   int64
	MinioBucketPhotos  string
	PlaceShareBaseURL  string
	RetrySessionTTL    time.Duration
	Resolution         ResolutionKnobs
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string      { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// PlacesAPIConfig implementation
func (c *Config) GetGooglePlacesAPIKey() string { return c.GooglePlacesAPIKey }

// VisionConfig implementation
func (c *Config) GetGeminiAPIKey() string { return c.GeminiAPIKey }
func (c *Config) GetGeminiModel() string  { return c.GeminiModel }

// RetrySessionConfig implementation
func (c *Config) GetRetrySessionTTL() time.Duration { return c.RetrySessionTTL }

// ShareConfig implementation
func (c *Config) GetPlaceShareBaseURL() string { return c.PlaceShareBaseURL }

// ResolutionConfig implementation
func (c *Config) GetResolutionKnobs() ResolutionKnobs { return c.Resolution }

// Storage config (interface declared by internal/adapters/storage)
func (c *Config) GetMinIOEndpoint() string       { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string      { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string      { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool           { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64     { return c.MinIOMaxFileSize }
func (c *Config) IsMinIOEnabled() bool           { return c.MinIOEndpoint != "" }
func (c *Config) GetMinioBucketPhotos() string   { return c.MinioBucketPhotos }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:19006"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	knobs, err := LoadResolutionKnobs(getEnv("RESOLUTION_CONFIG", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid resolution config: %w", err)
	}

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTAccessSecret:    getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:       corsAllowAll,
		CORSOrigins:        corsOrigins,
		CORSAllowCreds:     strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		GooglePlacesAPIKey: getEnv("GOOGLE_PLACES_API_KEY", ""),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		RedisURL:           getEnv("REDIS_URL", ""),
		RedisTLSInsecure:   strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:     getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:   mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		MinIOEndpoint:      getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:     getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:     getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:        strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:   mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "26214400")),
		MinioBucketPhotos:  getEnv("MINIO_BUCKET_CAPTURED_PHOTOS", "captured-photos"),
		PlaceShareBaseURL:  getEnv("PLACE_SHARE_BASE_URL", "https://frontsnap.app/place"),
		RetrySessionTTL:    mustDuration(getEnv("RETRY_SESSION_TTL", "15m")),
		Resolution:         knobs,
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.GooglePlacesAPIKey == "" {
		return nil, fmt.Errorf("GOOGLE_PLACES_API_KEY is required")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

// PipelineConfig is the subset of configuration the offline resolution
// tooling needs: the external API keys and the pipeline knobs, without the
// server's database and auth requirements.
type PipelineConfig struct {
	GooglePlacesAPIKey string
	GeminiAPIKey       string
	GeminiModel        string
	Resolution         ResolutionKnobs
}

// LoadPipeline reads only the pipeline configuration from the environment.
func LoadPipeline() (*PipelineConfig, error) {
	_ = godotenv.Load()

	knobs, err := LoadResolutionKnobs(getEnv("RESOLUTION_CONFIG", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid resolution config: %w", err)
	}

	cfg := &PipelineConfig{
		GooglePlacesAPIKey: getEnv("GOOGLE_PLACES_API_KEY", ""),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		Resolution:         knobs,
	}

	if cfg.GooglePlacesAPIKey == "" {
		return nil, fmt.Errorf("GOOGLE_PLACES_API_KEY is required")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
