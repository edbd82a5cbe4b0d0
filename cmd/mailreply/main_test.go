package main

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
)

const completionJSON = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-mini",
  "choices": [{
    "index": 0,
    "message": {"role": "assistant", "content": "De nada!"},
    "finish_reason": "stop"
  }]
}`

// setTestEnv points the config at fake upstreams and a temporary database.
func setTestEnv(t *testing.T, openAIURL, zeroShotURL string) {
	t.Helper()

	dir := t.TempDir()
	prev := envFile
	envFile = filepath.Join(dir, "missing.env")
	t.Cleanup(func() { envFile = prev })

	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", openAIURL)
	t.Setenv("ZEROSHOT_URL", zeroShotURL)
	t.Setenv("DATABASE_PATH", filepath.Join(dir, "test.db"))
	t.Setenv("ENV", "test")
	t.Setenv("LABELS_FILE", "")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")
	t.Setenv("SUBSCRIPTION_ID", "")
}

func fakeOpenAI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionJSON))
	}))
	t.Cleanup(srv.Close)
	return srv
}
