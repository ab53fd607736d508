package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arena.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultValues(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "https://api.openai.com/v1", cfg.AI.BaseURL)
	assert.Equal(t, "ARENA_API_KEY", cfg.AI.APIKeyEnv)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.DefaultModel)
	assert.Equal(t, 30*time.Second, cfg.Scheduler.TurnTimeout())
	assert.Equal(t, 10*time.Millisecond, cfg.Scheduler.YieldDelay())
	assert.Equal(t, 3, cfg.Scheduler.MaxAIRetries)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "arena.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadCustomFile(t *testing.T) {
	path := writeConfig(t, `
ai:
  base_url: http://localhost:11434/v1
  default_model: llama3
  temperature: 0.2
scheduler:
  turn_timeout_seconds: 5
server:
  address: ":9090"
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434/v1", cfg.AI.BaseURL)
	assert.Equal(t, "llama3", cfg.AI.DefaultModel)
	assert.Equal(t, 0.2, cfg.AI.Temperature)
	assert.Equal(t, 5*time.Second, cfg.Scheduler.TurnTimeout())
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  address: \":7000\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Address)
	// Everything the file omits stays at the baseline.
	assert.Equal(t, "gpt-4o-mini", cfg.AI.DefaultModel)
	assert.Equal(t, 3, cfg.Scheduler.MaxAIRetries)
	assert.Equal(t, "arena.db", cfg.Storage.DatabasePath)
}

func TestLoadMissingCustomFileErrors(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	// The defaults still come back so the caller may choose to continue.
	assert.Equal(t, ":8080", cfg.Server.Address)
}

func TestLoadMalformedCustomFileErrors(t *testing.T) {
	path := writeConfig(t, "ai: [not a mapping")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestAPIKeyResolvesEnvVar(t *testing.T) {
	t.Setenv("ARENA_TEST_KEY", "sk-test-123")

	cfg := Default()
	cfg.AI.APIKeyEnv = "ARENA_TEST_KEY"
	assert.Equal(t, "sk-test-123", cfg.AI.APIKey())

	cfg.AI.APIKeyEnv = ""
	assert.Equal(t, "", cfg.AI.APIKey())

	cfg.AI.APIKeyEnv = "ARENA_TEST_KEY_UNSET"
	assert.Equal(t, "", cfg.AI.APIKey())
}
