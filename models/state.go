package models

import "time"

// GameState is the shared state contract every concrete game extends.
// Game-specific data lives in Metadata (and per-player Data); the core
// treats those as opaque, but they must be built from JSON-compatible
// shapes (maps, slices, primitives) so snapshots stay deep copies.
type GameState struct {
	GameID      string                 `json:"gameId"`
	GameType    string                 `json:"gameType"`
	Phase       string                 `json:"phase"`
	StartTime   time.Time              `json:"startTime"`
	EndTime     *time.Time             `json:"endTime,omitempty"`
	CurrentTurn string                 `json:"currentTurn,omitempty"`
	TurnCount   int                    `json:"turnCount"`
	Players     []*Player              `json:"players"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// NewGameState builds a blank state for a roster. The engine fills in
// GameID and StartTime when the game starts.
func NewGameState(gameType string, players []*Player) *GameState {
	return &GameState{
		GameType: gameType,
		Players:  players,
		Metadata: make(map[string]interface{}),
	}
}

// Clone returns a deep, independent copy of the state. Callers can never
// corrupt engine-internal state through the returned value, and the engine
// uses the same copy as its rollback snapshot.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	cp := *s
	if s.EndTime != nil {
		t := *s.EndTime
		cp.EndTime = &t
	}
	cp.Players = make([]*Player, len(s.Players))
	for i, p := range s.Players {
		cp.Players[i] = p.Clone()
	}
	cp.Metadata = deepCopyMap(s.Metadata)
	return &cp
}

// PlayerByID returns the player with the given id, or nil.
func (s *GameState) PlayerByID(id string) *Player {
	for _, p := range s.Players {
		if p != nil && p.ID == id {
			return p
		}
	}
	return nil
}

// ActivePlayers counts players still in the game.
func (s *GameState) ActivePlayers() int {
	n := 0
	for _, p := range s.Players {
		if p != nil && p.IsActive {
			n++
		}
	}
	return n
}

func deepCopyMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	cp := make(map[string]interface{}, len(m))
	for k, v := range m {
		cp[k] = deepCopyValue(v)
	}
	return cp
}

// deepCopyValue copies the JSON-compatible shapes games are allowed to
// store in Metadata and Player.Data. Unknown types are assumed immutable.
func deepCopyValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return deepCopyMap(t)
	case []interface{}:
		cp := make([]interface{}, len(t))
		for i, e := range t {
			cp[i] = deepCopyValue(e)
		}
		return cp
	case []string:
		cp := make([]string, len(t))
		copy(cp, t)
		return cp
	case []int:
		cp := make([]int, len(t))
		copy(cp, t)
		return cp
	case [][]int:
		cp := make([][]int, len(t))
		for i, row := range t {
			r := make([]int, len(row))
			copy(r, row)
			cp[i] = r
		}
		return cp
	case map[string]int:
		cp := make(map[string]int, len(t))
		for k, n := range t {
			cp[k] = n
		}
		return cp
	default:
		return v
	}
}
