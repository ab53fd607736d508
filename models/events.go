package models

import "time"

// Event topics emitted by the core. The event stream is append-only,
// ordered by emission time, and is the sole input to the scoring system.
const (
	EventGameInitialized     = "game:initialized"
	EventGameStarted         = "game:started"
	EventGamePaused          = "game:paused"
	EventGameResumed         = "game:resumed"
	EventGameEnded           = "game:ended"
	EventTurnChanged         = "turn:changed"
	EventActionExecuted      = "action:executed"
	EventActionInvalid       = "action:invalid"
	EventActionSubmitted     = "action:submitted"
	EventAIThinkingStart     = "ai:thinking:start"
	EventAIThinkingEnd       = "ai:thinking:end"
	EventAIDecision          = "ai:decision"
	EventAIFallback          = "ai:fallback"
	EventAITurnFailed        = "ai:turn:failed"
	EventHumanTurnStart      = "human:turn:start"
	EventHumanTurnEnd        = "human:turn:end"
	EventScoresUpdated       = "scores:updated"
	EventAchievementUnlocked = "achievements:unlocked"
)

// GameEvent is one entry in a game's event stream.
type GameEvent struct {
	Type      string                 `json:"type"`
	GameID    string                 `json:"gameId,omitempty"`
	PlayerID  string                 `json:"playerId,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

func NewGameEvent(eventType, gameID, playerID string, data map[string]interface{}) GameEvent {
	return GameEvent{
		Type:      eventType,
		GameID:    gameID,
		PlayerID:  playerID,
		Timestamp: time.Now(),
		Data:      data,
	}
}
