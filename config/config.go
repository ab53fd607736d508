// Package config provides YAML-based configuration loading for the
// arena: AI model routing, scheduler timing, server address and score
// storage. Built once at process start and passed into the factories
// that need it; no ambient global lookup.
package config

import (
	"time"

	"arena-engine/models"
)

// Config is the full process configuration.
type Config struct {
	AI        AIConfig        `yaml:"ai"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// AIConfig routes decision requests to an OpenAI-compatible endpoint.
type AIConfig struct {
	BaseURL      string             `yaml:"base_url"`
	APIKeyEnv    string             `yaml:"api_key_env"` // env var holding the key, never the key itself
	DefaultModel string             `yaml:"default_model"`
	Temperature  float64            `yaml:"temperature"`
	MaxTokens    int                `yaml:"max_tokens"`
	Personality  models.Personality `yaml:"personality"`
}

// SchedulerConfig tunes the per-game manager loop.
type SchedulerConfig struct {
	TurnTimeoutSeconds int `yaml:"turn_timeout_seconds"`
	MaxAIRetries       int `yaml:"max_ai_retries"`
	YieldDelayMillis   int `yaml:"yield_delay_ms"`
	MaxIdenticalTicks  int `yaml:"max_identical_ticks"`
}

// TurnTimeout converts the configured seconds to a duration.
func (s SchedulerConfig) TurnTimeout() time.Duration {
	return time.Duration(s.TurnTimeoutSeconds) * time.Second
}

// YieldDelay converts the configured milliseconds to a duration.
func (s SchedulerConfig) YieldDelay() time.Duration {
	return time.Duration(s.YieldDelayMillis) * time.Millisecond
}

// ServerConfig is the TCP bridge listen address.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// StorageConfig locates the match result database.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig selects the log level: debug, info, warn or error.
type LoggingConfig struct {
	Level string `yaml:"level"`
}
