package models

import "time"

// Generic action types the core understands. Concrete games define their
// own on top of these.
const (
	ActionTimeout = "timeout"
	ActionSkip    = "skip"
)

// Action is an immutable value object describing one player move.
// The engine never mutates an action after receiving it.
type Action struct {
	PlayerID  string                 `json:"playerId"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// NewAction stamps an action with the current time.
func NewAction(playerID, actionType string, payload map[string]interface{}) Action {
	return Action{
		PlayerID:  playerID,
		Type:      actionType,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

// Clone returns an independent copy, payload included.
func (a Action) Clone() Action {
	cp := a
	cp.Payload = deepCopyMap(a.Payload)
	return cp
}

// PayloadInt reads an integer payload field, tolerating the float64 that
// JSON decoding produces.
func (a Action) PayloadInt(key string) (int, bool) {
	v, ok := a.Payload[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// PayloadString reads a string payload field.
func (a Action) PayloadString(key string) (string, bool) {
	v, ok := a.Payload[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Decision is an agent's chosen action plus how sure it was and why.
// Produced once per AI turn; never partially applied.
type Decision struct {
	Action     Action                 `json:"action"`
	Confidence float64                `json:"confidence"`
	Reasoning  string                 `json:"reasoning"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}
