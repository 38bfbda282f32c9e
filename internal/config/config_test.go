package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_NoFile(t *testing.T) {
	t.Parallel()

	log := slog.Default()
	path, err := Load("/nonexistent/path/config.yaml", log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "" {
		t.Errorf("expected empty path, got %q", path)
	}
}

func TestLoad_ValidFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := []byte(`
model:
  provider: openai
  max_tokens: 8192
  temperature: 0.3
  openai:
    model: gpt-4o-mini
embedding:
  provider: openai
  model: text-embedding-3-small
  dimensions: 512
qdrant:
  host: qdrant.internal
  port: 6334
  collection: immigration-kb
fallback:
  keywords: ice,warrant,rights
server:
  host: 0.0.0.0
  port: 9090
reports:
  db_path: /var/lib/immiai/reports.db
email:
  from_email: alerts@example.org
logging:
  level: debug
  format: text
`)

	if err := os.WriteFile(cfgPath, content, 0o644); err != nil {
		t.Fatal(err)
	}

	// Clear env vars that the YAML should set.
	envKeys := []string{
		"MODEL_PROVIDER", "MODEL_MAX_TOKENS", "MODEL_TEMPERATURE",
		"OPENAI_MODEL",
		"EMBEDDING_PROVIDER", "EMBEDDING_MODEL", "EMBEDDING_DIMENSIONS",
		"QDRANT_HOST", "QDRANT_PORT", "QDRANT_COLLECTION",
		"FALLBACK_KEYWORDS", "REPORTS_DB", "RESEND_FROM_EMAIL",
		"LOG_LEVEL", "LOG_FORMAT",
	}
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	log := slog.Default()
	loaded, err := Load(cfgPath, log)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != cfgPath {
		t.Errorf("loaded path: got %q, want %q", loaded, cfgPath)
	}

	checks := map[string]string{
		"MODEL_PROVIDER":       "openai",
		"MODEL_MAX_TOKENS":     "8192",
		"OPENAI_MODEL":         "gpt-4o-mini",
		"EMBEDDING_PROVIDER":   "openai",
		"EMBEDDING_MODEL":      "text-embedding-3-small",
		"EMBEDDING_DIMENSIONS": "512",
		"QDRANT_HOST":          "qdrant.internal",
		"QDRANT_PORT":          "6334",
		"QDRANT_COLLECTION":    "immigration-kb",
		"FALLBACK_KEYWORDS":    "ice,warrant,rights",
		"REPORTS_DB":           "/var/lib/immiai/reports.db",
		"RESEND_FROM_EMAIL":    "alerts@example.org",
		"LOG_LEVEL":            "debug",
		"LOG_FORMAT":           "text",
	}
	for k, want := range checks {
		got := os.Getenv(k)
		if got != want {
			t.Errorf("%s: got %q, want %q", k, got, want)
		}
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := []byte(`
model:
  provider: ollama
`)
	if err := os.WriteFile(cfgPath, content, 0o644); err != nil {
		t.Fatal(err)
	}

	// Set env var BEFORE loading — it should NOT be overwritten.
	t.Setenv("MODEL_PROVIDER", "openai")

	log := slog.Default()
	_, err := Load(cfgPath, log)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := os.Getenv("MODEL_PROVIDER"); got != "openai" {
		t.Errorf("MODEL_PROVIDER: expected env override %q, got %q", "openai", got)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(cfgPath, []byte("{{invalid yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	log := slog.Default()
	_, err := Load(cfgPath, log)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestFloat32Str(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   float32
		want string
	}{
		{0.0, ""},
		{0.2, "0.2"},
		{0.3, "0.3"},
		{1.0, "1"},
	}
	for _, tt := range tests {
		if got := float32Str(tt.in); got != tt.want {
			t.Errorf("float32Str(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
