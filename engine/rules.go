package engine

import "arena-engine/models"

// Rules holds the game-specific hooks of the engine state machine.
// The engine owns the shared bookkeeping (validation, rollback, turn
// rotation, events); a concrete game only supplies its own transitions.
type Rules interface {
	// GameType identifies the game ("connect4", "reverse-hangman").
	GameType() string

	// PlayerLimits returns the allowed player count range, inclusive.
	PlayerLimits() (min, max int)

	// InitialState builds the starting state for the given roster.
	// The engine has already checked the roster against PlayerLimits.
	InitialState(players []*models.Player) (*models.GameState, error)

	// ValidateAction appends rule-specific checks. The engine has
	// already applied the base checks (player exists, is active, holds
	// the turn). May be nil-result for "nothing to add".
	ValidateAction(state *models.GameState, action models.Action) *models.ValidationResult

	// ApplyAction mutates state for a validated action. Any error (or
	// panic) rolls the state back to the pre-action snapshot.
	ApplyAction(state *models.GameState, action models.Action) error

	// ValidActions lists what the player may do right now. The engine
	// guarantees a fallback action is present in what callers see.
	ValidActions(state *models.GameState, playerID string) []models.Action

	// IsGameOver and Winners are pure queries over state.
	IsGameOver(state *models.GameState) bool
	Winners(state *models.GameState) []string

	// AdvanceTurn lets a game take over turn assignment after an
	// action. Return true when handled; false keeps the generic seat
	// rotation. Reverse-Hangman keeps the same player across attempts.
	AdvanceTurn(state *models.GameState) bool

	// PhaseTick advances an engine-driven phase (no player holds the
	// turn, or the current holder cannot act).
	PhaseTick(state *models.GameState) error
}
