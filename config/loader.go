package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"arena-engine/models"
)

// Load reads the arena configuration.
// Search order: customPath -> ~/.arena/config.yaml -> ./configs/arena.yaml -> defaults.
func Load(customPath string) (Config, error) {
	if customPath != "" {
		cfg := Default()
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	if userPath := userConfigPath(); userPath != "" {
		if cfg, ok := tryLoad(userPath); ok {
			return cfg, nil
		}
	}
	if cfg, ok := tryLoad(filepath.Join("configs", "arena.yaml")); ok {
		return cfg, nil
	}
	return Default(), nil
}

func tryLoad(path string) (Config, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, false
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, false
	}
	return cfg, true
}

func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".arena", "config.yaml")
}

// Default is the hardcoded baseline every load starts from, so partial
// YAML files only override what they mention.
func Default() Config {
	return Config{
		AI: AIConfig{
			BaseURL:      "https://api.openai.com/v1",
			APIKeyEnv:    "ARENA_API_KEY",
			DefaultModel: "gpt-4o-mini",
			Temperature:  0.7,
			MaxTokens:    512,
			Personality:  models.DefaultPersonality(),
		},
		Scheduler: SchedulerConfig{
			TurnTimeoutSeconds: 30,
			MaxAIRetries:       3,
			YieldDelayMillis:   10,
			MaxIdenticalTicks:  10,
		},
		Server: ServerConfig{
			Address: ":8080",
		},
		Storage: StorageConfig{
			DatabasePath: "arena.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// APIKey resolves the configured key environment variable.
func (a AIConfig) APIKey() string {
	if a.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(a.APIKeyEnv)
}
