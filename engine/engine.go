// Package engine implements the generic turn-based game state machine.
// An Engine owns one game's authoritative state; all legal transitions go
// through ExecuteAction, and callers only ever see cloned snapshots.
package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"arena-engine/events"
	"arena-engine/models"
)

type Engine struct {
	rules Rules
	bus   *events.Bus
	state *models.GameState
	mu    sync.Mutex
}

func New(rules Rules, bus *events.Bus) *Engine {
	if bus == nil {
		bus = events.NewBus()
	}
	return &Engine{rules: rules, bus: bus}
}

// Bus returns the event bus this engine publishes on.
func (e *Engine) Bus() *events.Bus {
	return e.bus
}

// Initialize builds the initial state from the game hook. Calling it
// twice is a caller-contract violation.
func (e *Engine) Initialize(players []*models.Player) error {
	e.mu.Lock()
	pending, err := e.initializeLocked(players)
	e.mu.Unlock()
	e.flush(pending)
	return err
}

func (e *Engine) initializeLocked(players []*models.Player) ([]models.GameEvent, error) {
	if e.state != nil {
		return nil, fmt.Errorf("%w: engine already initialized", models.ErrIllegalState)
	}

	min, max := e.rules.PlayerLimits()
	if len(players) < min || len(players) > max {
		return nil, fmt.Errorf("%w: %s needs %d-%d players, got %d",
			models.ErrInvalidConfiguration, e.rules.GameType(), min, max, len(players))
	}

	state, err := e.rules.InitialState(players)
	if err != nil {
		return nil, err
	}
	if state.GameID == "" {
		state.GameID = uuid.New().String()
	}
	if state.GameType == "" {
		state.GameType = e.rules.GameType()
	}
	if state.StartTime.IsZero() {
		state.StartTime = time.Now()
	}
	e.state = state

	return []models.GameEvent{e.event(models.EventGameInitialized, "", map[string]interface{}{
		"gameType": state.GameType,
		"players":  len(state.Players),
	})}, nil
}

// State returns a deep, independent snapshot. Nil before Initialize.
func (e *Engine) State() *models.GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// ValidateAction applies the base checks, then the game's own. Pure; no
// side effects.
func (e *Engine) ValidateAction(action models.Action) *models.ValidationResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.validateLocked(action)
}

func (e *Engine) validateLocked(action models.Action) *models.ValidationResult {
	result := models.ValidResult()

	if e.state == nil {
		result.AddError("game not initialized")
		return result
	}
	if action.PlayerID == "" {
		result.AddError("action has no player id")
	}
	if action.Type == "" {
		result.AddError("action has no type")
	}
	if !result.Valid {
		return result
	}

	player := e.state.PlayerByID(action.PlayerID)
	if player == nil {
		result.AddError(fmt.Sprintf("unknown player %q", action.PlayerID))
		return result
	}
	if !player.IsActive {
		result.AddError(fmt.Sprintf("player %q is not active", action.PlayerID))
		return result
	}
	if e.state.CurrentTurn != "" && e.state.CurrentTurn != action.PlayerID {
		result.AddError(fmt.Sprintf("not player %q's turn (current: %q)", action.PlayerID, e.state.CurrentTurn))
		return result
	}

	result.Merge(e.rules.ValidateAction(e.state, action))
	return result
}

// ExecuteAction validates and applies one action. On any failure inside
// the game transition the state is restored from the pre-action snapshot
// and the failure is returned; a failed action never leaves state
// half-mutated.
func (e *Engine) ExecuteAction(action models.Action) error {
	e.mu.Lock()
	pending, err := e.executeLocked(action)
	e.mu.Unlock()
	e.flush(pending)
	return err
}

func (e *Engine) executeLocked(action models.Action) ([]models.GameEvent, error) {
	if e.state == nil {
		return nil, fmt.Errorf("%w: game not initialized", models.ErrIllegalState)
	}
	if e.gameOverLocked() {
		return nil, fmt.Errorf("%w: game has ended", models.ErrIllegalState)
	}

	if result := e.validateLocked(action); !result.Valid {
		return nil, &models.InvalidActionError{ActionType: action.Type, Errors: result.Errors}
	}

	before := e.state.Clone()
	if err := e.applyRecovering(action); err != nil {
		e.state = before
		return nil, &models.ActionExecutionError{ActionType: action.Type, Err: err}
	}
	e.state.TurnCount++

	pending := []models.GameEvent{e.event(models.EventActionExecuted, action.PlayerID, map[string]interface{}{
		"action": action,
		"before": before,
		"after":  e.state.Clone(),
	})}

	if e.gameOverLocked() {
		if ev, ok := e.finishLocked(); ok {
			pending = append(pending, ev)
		}
		return pending, nil
	}

	if !e.rules.AdvanceTurn(e.state) {
		e.rotateTurnLocked(action.PlayerID)
		pending = append(pending, e.event(models.EventTurnChanged, e.state.CurrentTurn, map[string]interface{}{
			"turnCount": e.state.TurnCount,
		}))
	}
	return pending, nil
}

// applyRecovering shields the engine from panics in a game transition so
// the rollback guarantee also covers programmer errors in rules code.
func (e *Engine) applyRecovering(action models.Action) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s transition: %v", e.rules.GameType(), r)
		}
	}()
	return e.rules.ApplyAction(e.state, action)
}

// rotateTurnLocked scans forward in seat order from the actor for the
// next active player, wrapping around and skipping inactive seats. If no
// other active player is reachable the turn is left unassigned and the
// game enters an engine-driven phase.
func (e *Engine) rotateTurnLocked(fromPlayerID string) {
	players := e.state.Players
	n := len(players)
	idx := -1
	for i, p := range players {
		if p != nil && p.ID == fromPlayerID {
			idx = i
			break
		}
	}
	if idx < 0 || n == 0 {
		e.state.CurrentTurn = ""
		return
	}
	for i := 1; i < n; i++ {
		candidate := players[(idx+i)%n]
		if candidate != nil && candidate.IsActive {
			e.state.CurrentTurn = candidate.ID
			return
		}
	}
	e.state.CurrentTurn = ""
}

// ValidActions lists what the player may do right now; empty when it is
// not their turn or the game has ended. A fallback action is always
// present so the manager can make progress.
func (e *Engine) ValidActions(playerID string) []models.Action {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == nil || e.gameOverLocked() {
		return nil
	}
	player := e.state.PlayerByID(playerID)
	if player == nil || !player.IsActive {
		return nil
	}
	if e.state.CurrentTurn != "" && e.state.CurrentTurn != playerID {
		return nil
	}

	actions := e.rules.ValidActions(e.state, playerID)
	if !hasFallback(actions) {
		actions = append(actions, models.NewAction(playerID, models.ActionTimeout, nil))
	}
	return actions
}

func hasFallback(actions []models.Action) bool {
	for _, a := range actions {
		if a.Type == models.ActionTimeout || a.Type == models.ActionSkip {
			return true
		}
	}
	return false
}

// FallbackAction picks the deterministic default the manager substitutes
// when an AI repeatedly fails: defer-style actions first, else the first
// valid one.
func (e *Engine) FallbackAction(playerID string) (models.Action, bool) {
	actions := e.ValidActions(playerID)
	if len(actions) == 0 {
		return models.Action{}, false
	}
	for _, preferred := range []string{"check", "call", models.ActionSkip, models.ActionTimeout} {
		for _, a := range actions {
			if a.Type == preferred {
				return a, true
			}
		}
	}
	return actions[0], true
}

// PhaseTick runs the game's engine-driven advance. Used by the manager
// when no player holds the turn or the holder cannot act.
func (e *Engine) PhaseTick() error {
	e.mu.Lock()
	pending, err := e.phaseTickLocked()
	e.mu.Unlock()
	e.flush(pending)
	return err
}

func (e *Engine) phaseTickLocked() ([]models.GameEvent, error) {
	if e.state == nil {
		return nil, fmt.Errorf("%w: game not initialized", models.ErrIllegalState)
	}
	if e.state.EndTime != nil {
		return nil, nil
	}

	prevTurn := e.state.CurrentTurn
	if err := e.rules.PhaseTick(e.state); err != nil {
		return nil, err
	}

	if e.gameOverLocked() {
		if ev, ok := e.finishLocked(); ok {
			return []models.GameEvent{ev}, nil
		}
		return nil, nil
	}
	if e.state.CurrentTurn != prevTurn {
		return []models.GameEvent{e.event(models.EventTurnChanged, e.state.CurrentTurn, map[string]interface{}{
			"turnCount": e.state.TurnCount,
		})}, nil
	}
	return nil, nil
}

func (e *Engine) IsGameOver() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gameOverLocked()
}

func (e *Engine) gameOverLocked() bool {
	if e.state == nil {
		return false
	}
	return e.state.EndTime != nil || e.rules.IsGameOver(e.state)
}

// Winners returns the winning player ids; empty on a draw or before the
// game ends.
func (e *Engine) Winners() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return nil
	}
	return e.rules.Winners(e.state)
}

// finishLocked runs end-of-game handling exactly once: stamps EndTime and
// builds the game:ended event.
func (e *Engine) finishLocked() (models.GameEvent, bool) {
	if e.state.EndTime != nil {
		return models.GameEvent{}, false
	}
	now := time.Now()
	e.state.EndTime = &now
	e.state.CurrentTurn = ""

	return e.event(models.EventGameEnded, "", map[string]interface{}{
		"winners":    e.rules.Winners(e.state),
		"durationMs": now.Sub(e.state.StartTime).Milliseconds(),
		"turnCount":  e.state.TurnCount,
	}), true
}

func (e *Engine) event(eventType, playerID string, data map[string]interface{}) models.GameEvent {
	gameID := ""
	if e.state != nil {
		gameID = e.state.GameID
	}
	return models.NewGameEvent(eventType, gameID, playerID, data)
}

// flush publishes pending events outside the state lock so subscribers
// may safely read back engine state.
func (e *Engine) flush(pending []models.GameEvent) {
	for _, ev := range pending {
		e.bus.Publish(ev)
	}
}
