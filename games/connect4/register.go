package connect4

import (
	"arena-engine/engine"
	"arena-engine/registry"
	"arena-engine/scoring"
)

func init() {
	registry.Register(registry.Descriptor{
		ID:         GameType,
		Title:      "Connect Four",
		MinPlayers: 2,
		MaxPlayers: 2,
		Obfuscate:  true,
		NewRules: func(_ map[string]interface{}) (engine.Rules, error) {
			return NewRules(), nil
		},
		NewHooks: func(_ map[string]interface{}) scoring.Hooks {
			return NewHooks()
		},
	})
}
