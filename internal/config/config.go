package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Memory store backends.
const (
	MemoryBackendS3  = "s3"
	MemoryBackendGCS = "gcs"
)

// Config holds all configuration for the application
type Config struct {
	// Server settings
	Port string `json:"port"`
	Host string `json:"host"`

	// Congress.gov API settings
	CongressAPIKey string `json:"-"` // Don't expose in JSON

	// NewsAPI settings
	NewsAPIKey string `json:"-"` // Don't expose in JSON

	// OpenAI settings (optional; absence means fallback summaries only)
	OpenAIAPIKey string `json:"-"` // Don't expose in JSON
	OpenAIModel  string `json:"openai_model"`

	// User memory store settings
	MemoryBackend      string `json:"memory_backend"`
	MemoryPrefix       string `json:"memory_prefix"`
	MemoryCacheTTLSecs int    `json:"memory_cache_ttl_seconds"`
	S3Bucket           string `json:"s3_bucket"`
	AWSRegion          string `json:"aws_region"`
	AWSAccessKeyID     string `json:"-"` // Don't expose in JSON
	AWSSecretAccessKey string `json:"-"` // Don't expose in JSON
	GCSBucket          string `json:"gcs_bucket"`
}

// Load reads configuration from environment variables and .env file.
// API credentials are not required at load time: the server boots without
// them and each collaborator surfaces their absence per request.
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	config := &Config{
		Port:               getEnvOrDefault("PORT", "8080"),
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		CongressAPIKey:     getEnvOrDefault("API_DATA_GOV_KEY", ""),
		NewsAPIKey:         getEnvOrDefault("NEWS_API_KEY", ""),
		OpenAIAPIKey:       getEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIModel:        getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		MemoryBackend:      getEnvOrDefault("MEMORY_BACKEND", MemoryBackendS3),
		MemoryPrefix:       getEnvOrDefault("MEMORY_S3_PREFIX", "memories/"),
		MemoryCacheTTLSecs: getEnvOrDefaultInt("MEMORY_CACHE_TTL_SECONDS", 60),
		S3Bucket:           getEnvOrDefault("S3_BUCKET_NAME", ""),
		AWSRegion:          getEnvOrDefault("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     getEnvOrDefault("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnvOrDefault("AWS_SECRET_ACCESS_KEY", ""),
		GCSBucket:          getEnvOrDefault("MEMORY_GCS_BUCKET", ""),
	}

	return config, config.validate()
}

// validate checks configuration values that must be well-formed
func (c *Config) validate() error {
	if c.MemoryBackend != MemoryBackendS3 && c.MemoryBackend != MemoryBackendGCS {
		return &ConfigError{Field: "MEMORY_BACKEND", Message: "must be s3 or gcs"}
	}
	if c.MemoryCacheTTLSecs <= 0 {
		return &ConfigError{Field: "MEMORY_CACHE_TTL_SECONDS", Message: "must be positive"}
	}
	return nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default if not set
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
