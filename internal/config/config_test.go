package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "5000" {
		t.Errorf("expected port 5000, got %q", cfg.Port)
	}
	if cfg.StorageBackend != StorageMemory {
		t.Errorf("expected memory backend, got %q", cfg.StorageBackend)
	}
	if cfg.MaxRecursionDepth != 1000 {
		t.Errorf("expected recursion depth 1000, got %d", cfg.MaxRecursionDepth)
	}
	if cfg.Redis.RunTTL != 24*time.Hour {
		t.Errorf("expected run TTL 24h, got %v", cfg.Redis.RunTTL)
	}
	if cfg.Address() != "0.0.0.0:5000" {
		t.Errorf("unexpected address %q", cfg.Address())
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric timeout", "REQUEST_TIMEOUT_SECONDS", "soon"},
		{"zero max length", "MAX_STRING_LENGTH", "0"},
		{"unknown backend", "STORAGE_BACKEND", "postgres"},
		{"non-numeric redis db", "REDIS_DB", "one"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestLoadClient(t *testing.T) {
	t.Setenv("STRINGLAB_API_URL", "http://example.test/api/")
	t.Setenv("STRINGLAB_TIMEOUT_SECONDS", "3")

	cfg, err := LoadClient()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIBaseURL != "http://example.test/api" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.APIBaseURL)
	}
	if cfg.Timeout != 3*time.Second {
		t.Errorf("expected 3s timeout, got %v", cfg.Timeout)
	}
}

func TestParseHosts(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"a:9042, b:9042", []string{"a:9042", "b:9042"}},
		{" , ", []string{"localhost:9042"}},
		{"single", []string{"single"}},
	}

	for _, tt := range tests {
		if got := parseHosts(tt.input); !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("parseHosts(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}
