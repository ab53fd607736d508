package models

// Player is a participant in one game instance. Game-specific fields
// (board symbol, guess history, chip stack) live in Data and are opaque
// to the core.
type Player struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	IsAI     bool                   `json:"isAI"`
	IsActive bool                   `json:"isActive"`
	Score    int                    `json:"score,omitempty"`
	Data     map[string]interface{} `json:"data,omitempty"`
}

func NewPlayer(id, name string, isAI bool) *Player {
	return &Player{
		ID:       id,
		Name:     name,
		IsAI:     isAI,
		IsActive: true,
		Data:     make(map[string]interface{}),
	}
}

func (p *Player) Clone() *Player {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Data = deepCopyMap(p.Data)
	return &cp
}

// Personality is a fixed trait tuple driving an agent's heuristic
// fallback. Each trait is in [0,1]; set at agent creation, never
// mutated mid-game.
type Personality struct {
	Aggressiveness   float64 `json:"aggressiveness" yaml:"aggressiveness"`
	RiskTolerance    float64 `json:"riskTolerance" yaml:"risk_tolerance"`
	BluffingTendency float64 `json:"bluffingTendency" yaml:"bluffing_tendency"`
	Adaptability     float64 `json:"adaptability" yaml:"adaptability"`
}

// DefaultPersonality is a balanced middle-of-the-road profile.
func DefaultPersonality() Personality {
	return Personality{
		Aggressiveness:   0.5,
		RiskTolerance:    0.5,
		BluffingTendency: 0.5,
		Adaptability:     0.5,
	}
}
