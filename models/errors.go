package models

import (
	"errors"
	"fmt"
	"strings"
)

// Shared error vocabulary. Validation failures are returned as values
// (ValidationResult) where the caller can retry with corrected input;
// these errors mark caller-contract violations and unrecoverable states.
var (
	// ErrIllegalState marks an operation attempted in a state that
	// forbids it (double initialize, action after game over, resume
	// while playing).
	ErrIllegalState = errors.New("illegal state")

	// ErrInvalidConfiguration marks a bad setup (player count outside
	// the game's limits, malformed game config).
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrAITurnFailed marks a recoverable AI failure; the manager
	// retries, then degrades to a fallback action.
	ErrAITurnFailed = errors.New("ai turn failed")

	// ErrPromptUnavailable marks a missing content source for a round.
	ErrPromptUnavailable = errors.New("prompt content unavailable")
)

// InvalidActionError carries the validation errors of a rejected action.
// Game state is untouched when this is returned.
type InvalidActionError struct {
	ActionType string
	Errors     []string
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("invalid action %q: %s", e.ActionType, strings.Join(e.Errors, "; "))
}

// ActionExecutionError wraps a failure inside a nominally-valid action's
// application. State has been rolled back when this is returned.
type ActionExecutionError struct {
	ActionType string
	Err        error
}

func (e *ActionExecutionError) Error() string {
	return fmt.Sprintf("action %q failed during execution: %v", e.ActionType, e.Err)
}

func (e *ActionExecutionError) Unwrap() error {
	return e.Err
}
