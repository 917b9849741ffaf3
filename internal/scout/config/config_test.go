package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ParsesAndAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
postgres:
  dsn: "postgres://localhost/rootsignal"
mongo:
  uri: "mongodb://localhost"
llm:
  provider: anthropic
  apiKeyEnv: ANTHROPIC_API_KEY
  model: claude-sonnet
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/rootsignal", cfg.Postgres.DSN)
	assert.EqualValues(t, 10, cfg.Postgres.MaxConns)
	assert.Equal(t, "rootsignal", cfg.Mongo.Database)
	assert.Equal(t, 4096, cfg.LLM.MaxTokens)
	assert.EqualValues(t, 1, cfg.Cron.FloorHours)
	assert.EqualValues(t, 168, cfg.Cron.CeilingHours)
}

func TestLLMConfig_APIKey_ReadsNamedEnvVar(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "sk-test-123")
	c := LLMConfig{APIKeyEnv: "TEST_LLM_KEY"}
	key, err := c.APIKey()
	require.NoError(t, err)
	assert.Equal(t, "sk-test-123", key)
}

func TestLLMConfig_APIKey_ErrorsWhenEnvVarUnset(t *testing.T) {
	c := LLMConfig{APIKeyEnv: "ROOTSIGNAL_DOES_NOT_EXIST"}
	_, err := c.APIKey()
	assert.Error(t, err)
}

func TestLoad_MissingFileErrors(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}
