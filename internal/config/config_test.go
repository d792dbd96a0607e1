package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_DATA_GOV_KEY", "")
	t.Setenv("NEWS_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("MEMORY_BACKEND", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.MemoryBackend != MemoryBackendS3 {
		t.Errorf("Expected default memory backend s3, got %s", cfg.MemoryBackend)
	}
	if cfg.MemoryPrefix != "memories/" {
		t.Errorf("Expected default memory prefix memories/, got %s", cfg.MemoryPrefix)
	}
	if cfg.MemoryCacheTTLSecs != 60 {
		t.Errorf("Expected default memory cache TTL 60, got %d", cfg.MemoryCacheTTLSecs)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("Expected default model gpt-4o-mini, got %s", cfg.OpenAIModel)
	}
	if cfg.AWSRegion != "us-east-1" {
		t.Errorf("Expected default region us-east-1, got %s", cfg.AWSRegion)
	}
}

func TestLoadMissingCredentialsIsNotAnError(t *testing.T) {
	t.Setenv("API_DATA_GOV_KEY", "")
	t.Setenv("NEWS_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load should not fail on missing credentials: %v", err)
	}
	if cfg.CongressAPIKey != "" || cfg.NewsAPIKey != "" {
		t.Error("Expected empty credentials")
	}
}

func TestLoadRejectsUnknownMemoryBackend(t *testing.T) {
	t.Setenv("MEMORY_BACKEND", "dynamo")

	_, err := Load()
	if err == nil {
		t.Fatal("Expected error for unknown memory backend")
	}
	cfgErr, ok := err.(*ConfigError)
	if !ok {
		t.Fatalf("Expected *ConfigError, got %T", err)
	}
	if cfgErr.Field != "MEMORY_BACKEND" {
		t.Errorf("Expected field MEMORY_BACKEND, got %s", cfgErr.Field)
	}
}

func TestLoadRejectsNonPositiveCacheTTL(t *testing.T) {
	t.Setenv("MEMORY_BACKEND", "")
	t.Setenv("MEMORY_CACHE_TTL_SECONDS", "-5")

	_, err := Load()
	if err == nil {
		t.Fatal("Expected error for negative cache TTL")
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("API_DATA_GOV_KEY", "congress-key")
	t.Setenv("NEWS_API_KEY", "news-key")
	t.Setenv("MEMORY_BACKEND", "gcs")
	t.Setenv("MEMORY_GCS_BUCKET", "poltracker-memories")
	t.Setenv("MEMORY_CACHE_TTL_SECONDS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.CongressAPIKey != "congress-key" {
		t.Errorf("Expected congress-key, got %s", cfg.CongressAPIKey)
	}
	if cfg.NewsAPIKey != "news-key" {
		t.Errorf("Expected news-key, got %s", cfg.NewsAPIKey)
	}
	if cfg.MemoryBackend != MemoryBackendGCS {
		t.Errorf("Expected gcs backend, got %s", cfg.MemoryBackend)
	}
	if cfg.GCSBucket != "poltracker-memories" {
		t.Errorf("Expected bucket poltracker-memories, got %s", cfg.GCSBucket)
	}
}
