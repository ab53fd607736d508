package hangman

import (
	"fmt"

	"arena-engine/engine"
	"arena-engine/registry"
	"arena-engine/scoring"
)

func init() {
	registry.Register(registry.Descriptor{
		ID:         GameType,
		Title:      "Reverse Hangman",
		MinPlayers: 1,
		MaxPlayers: 4,
		DefaultConfig: map[string]interface{}{
			"seed":        int64(0),
			"maxAttempts": DefaultMaxAttempts,
		},
		ValidateConfig: func(cfg map[string]interface{}) error {
			if n := configInt(cfg, "maxAttempts"); n < 0 {
				return fmt.Errorf("maxAttempts must be positive, got %d", n)
			}
			return nil
		},
		NewRules: func(cfg map[string]interface{}) (engine.Rules, error) {
			rules := NewRules(Config{
				Seed:        configInt64(cfg, "seed"),
				MaxAttempts: configInt(cfg, "maxAttempts"),
				Pairs:       configPairs(cfg, "pairs"),
			})
			return rules, nil
		},
		NewHooks: func(_ map[string]interface{}) scoring.Hooks {
			return NewHooks()
		},
	})
}

func configInt(cfg map[string]interface{}, key string) int {
	switch n := cfg[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func configInt64(cfg map[string]interface{}, key string) int64 {
	switch n := cfg[key].(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func configPairs(cfg map[string]interface{}, key string) []PromptPair {
	switch v := cfg[key].(type) {
	case []PromptPair:
		return v
	default:
		return nil
	}
}
