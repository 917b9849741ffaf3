// Package config loads the engine's runtime configuration: backing-store
// connection strings, LLM provider selection, cron defaults, and the
// Slack webhook notify uses for run summaries and quarantine alerts.
// Region profiles are configured separately — see internal/scout/region —
// since they change far more often than infrastructure settings.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the engine's top-level runtime configuration.
type Config struct {
	Postgres  PostgresConfig  `yaml:"postgres"`
	Mongo     MongoConfig     `yaml:"mongo"`
	Redis     RedisConfig     `yaml:"redis"`
	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cron      CronConfig      `yaml:"cron"`
	Slack     SlackConfig     `yaml:"slack"`
	Temporal  TemporalConfig  `yaml:"temporal"`
}

// PostgresConfig configures the event log connection (internal/scout/eventlog).
type PostgresConfig struct {
	DSN         string `yaml:"dsn"`
	MaxConns    int32  `yaml:"maxConns"`
	MinConns    int32  `yaml:"minConns"`
}

// MongoConfig configures the graph store connection (internal/scout/graph).
type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// RedisConfig configures the embedding cache (internal/scout/embedding).
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LLMConfig selects and configures the model providers extraction,
// synthesis, and lint use (internal/scout/llm).
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // anthropic | openai
	APIKeyEnv   string  `yaml:"apiKeyEnv"`
	Model       string  `yaml:"model"`
	HighModel   string  `yaml:"highModel"` // stronger model for Gate 2 / situation synthesis
	MaxTokens   int     `yaml:"maxTokens"`
	Temperature float32 `yaml:"temperature"`
}

// APIKey reads the provider API key from the environment variable named
// by APIKeyEnv.
func (c LLMConfig) APIKey() (string, error) {
	if c.APIKeyEnv == "" {
		return "", fmt.Errorf("config: llm.apiKeyEnv is not set")
	}
	key := os.Getenv(c.APIKeyEnv)
	if key == "" {
		return "", fmt.Errorf("config: environment variable %s is not set", c.APIKeyEnv)
	}
	return key, nil
}

// EmbeddingConfig configures the embedding provider and its Redis cache
// (internal/scout/embedding). Uses the same API key as LLMConfig; the model
// differs since embedding and chat models are distinct.
type EmbeddingConfig struct {
	Model    string `yaml:"model"`
	CacheTTL string `yaml:"cacheTtl"` // e.g. "720h"; empty means entries never expire
}

// TemporalConfig configures the durable-workflow connection the
// orchestration shell's worker and CLI trigger both use
// (internal/scout/orchestration).
type TemporalConfig struct {
	HostPort  string `yaml:"hostPort"`
	Namespace string `yaml:"namespace"`
	TaskQueue string `yaml:"taskQueue"`
}

// CronConfig configures the scheduler's default cadence bounds
// (internal/scout/scheduler).
type CronConfig struct {
	FloorHours   float32 `yaml:"floorHours"`
	CeilingHours float32 `yaml:"ceilingHours"`
}

// SlackConfig configures run-summary/quarantine notifications
// (internal/scout/notify).
type SlackConfig struct {
	WebhookURL       string `yaml:"webhookUrl"`
	QuarantineChannel string `yaml:"quarantineChannel"`
	SummaryChannel    string `yaml:"summaryChannel"`
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Postgres.MaxConns == 0 {
		c.Postgres.MaxConns = 10
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "rootsignal"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 4096
	}
	if c.Cron.FloorHours == 0 {
		c.Cron.FloorHours = 1
	}
	if c.Cron.CeilingHours == 0 {
		c.Cron.CeilingHours = 168
	}
	if c.Temporal.TaskQueue == "" {
		c.Temporal.TaskQueue = "scout-engine"
	}
	if c.Temporal.HostPort == "" {
		c.Temporal.HostPort = "127.0.0.1:7233"
	}
}
