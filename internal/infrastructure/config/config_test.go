package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// unsetEnv clears key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadMissingAPIKey(t *testing.T) {
	unsetEnv(t, "OPENAI_API_KEY")

	_, err := Load(noEnvFile(t))
	if err == nil {
		t.Fatal("expected an error without OPENAI_API_KEY")
	}

	var missing *MissingVarsError
	if !errors.As(err, &missing) {
		t.Fatalf("got %T, want *MissingVarsError", err)
	}
	if !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Errorf("error %q does not name OPENAI_API_KEY", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	for _, k := range []string{"ENV", "MODEL_NAME", "MAX_TOKENS", "TEMPERATURE", "HTTP_ADDR", "NUM_WORKERS", "SUBSCRIPTION_ID", "GOOGLE_CLOUD_PROJECT"} {
		unsetEnv(t, k)
	}

	cfg, err := Load(noEnvFile(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.OpenAIAPIKey != "sk-test" {
		t.Errorf("OpenAIAPIKey = %q", cfg.OpenAIAPIKey)
	}
	if cfg.Environment != "development" {
		t.Errorf("Environment = %q, want development", cfg.Environment)
	}
	if cfg.ModelName != "gpt-4o-mini" {
		t.Errorf("ModelName = %q", cfg.ModelName)
	}
	if cfg.MaxTokens != 200 {
		t.Errorf("MaxTokens = %d", cfg.MaxTokens)
	}
	if cfg.Temperature != 0.3 {
		t.Errorf("Temperature = %v", cfg.Temperature)
	}
	if cfg.HTTPAddr != ":8000" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.NumWorkers != 5 {
		t.Errorf("NumWorkers = %d", cfg.NumWorkers)
	}
	if cfg.PubSubEnabled() {
		t.Error("PubSubEnabled without project and subscription")
	}
	if cfg.IsProduction() {
		t.Error("IsProduction in development")
	}
}

func TestLoadEnvFileOverlay(t *testing.T) {
	unsetEnv(t, "OPENAI_API_KEY")
	unsetEnv(t, "MODEL_NAME")
	t.Setenv("ENV", "production")

	path := filepath.Join(t.TempDir(), ".env")
	content := "OPENAI_API_KEY=sk-from-file\nENV=staging\nMODEL_NAME=gpt-4o\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.OpenAIAPIKey != "sk-from-file" {
		t.Errorf("OpenAIAPIKey = %q, want value from file", cfg.OpenAIAPIKey)
	}
	if cfg.ModelName != "gpt-4o" {
		t.Errorf("ModelName = %q, want value from file", cfg.ModelName)
	}
	if !cfg.IsProduction() {
		t.Errorf("Environment = %q, process env should win over the file", cfg.Environment)
	}
}

func TestLoadLabelMap(t *testing.T) {
	m, err := LoadLabelMap("")
	if err != nil {
		t.Fatalf("LoadLabelMap: %v", err)
	}
	if got := len(m.Candidates()); got != 6 {
		t.Errorf("got %d candidates, want 6", got)
	}

	path := filepath.Join(t.TempDir(), "labels.yaml")
	bad := "productive:\n  - thank you\nunproductive:\n  - thank you\n"
	if err := os.WriteFile(path, []byte(bad), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadLabelMap(path); err == nil {
		t.Error("expected an error for a label in two buckets")
	}
}

func TestLoadRejectsInvalidNumbers(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"MAX_TOKENS", "lots"},
		{"MAX_TOKENS", "-5"},
		{"MAX_TOKENS", "0"},
		{"TEMPERATURE", "warm"},
		{"TEMPERATURE", "-0.1"},
		{"TEMPERATURE", "2.5"},
		{"MAX_UPLOAD_BYTES", "10MB"},
		{"MAX_UPLOAD_BYTES", "-1"},
		{"NUM_WORKERS", "five"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv("OPENAI_API_KEY", "sk-test")
			t.Setenv(tt.key, tt.value)

			_, err := Load(noEnvFile(t))
			if err == nil {
				t.Fatalf("expected an error for %s=%q", tt.key, tt.value)
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("error %q does not name %s", err, tt.key)
			}
		})
	}
}

func TestLoadParsesNumbers(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("MAX_TOKENS", "512")
	t.Setenv("TEMPERATURE", "0")
	t.Setenv("MAX_UPLOAD_BYTES", "1048576")
	t.Setenv("NUM_WORKERS", "0")

	cfg, err := Load(noEnvFile(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxTokens != 512 {
		t.Errorf("MaxTokens = %d, want 512", cfg.MaxTokens)
	}
	if cfg.Temperature != 0 {
		t.Errorf("Temperature = %v, want 0", cfg.Temperature)
	}
	if cfg.MaxUploadBytes != 1<<20 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if cfg.NumWorkers != 1 {
		t.Errorf("NumWorkers = %d, want clamped to 1", cfg.NumWorkers)
	}
}
