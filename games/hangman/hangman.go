// Package hangman implements reverse hangman: players see the output a
// secret prompt produced and try to guess the prompt itself. One engine
// instance runs one round over one secret prompt; the guessing player
// keeps the turn across failed attempts.
package hangman

import (
	"fmt"
	"math/rand"

	"arena-engine/models"
)

const (
	GameType = "reverse-hangman"

	ActionGuess = "guess"

	PhaseGuessing      = "guessing"
	PhaseWon           = "won"
	PhaseLost          = "lost"
	PhaseRoundComplete = "round-complete"

	DefaultMaxAttempts = 3
)

// PromptPair is one secret prompt and the output it produced.
type PromptPair struct {
	Prompt string `json:"prompt" yaml:"prompt"`
	Output string `json:"output" yaml:"output"`
}

// Config selects the round content. A zero Seed still yields a valid
// (deterministic) round; supply Pairs to override the built-in set.
type Config struct {
	Seed        int64
	MaxAttempts int
	Pairs       []PromptPair
}

// Rules is the reverse-hangman strategy plugged into the engine. The
// secret prompt lives here, not in game state, so snapshots handed to
// agents never leak it.
type Rules struct {
	cfg    Config
	secret PromptPair
}

func NewRules(cfg Config) *Rules {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	return &Rules{cfg: cfg}
}

func (r *Rules) GameType() string { return GameType }

func (r *Rules) PlayerLimits() (int, int) { return 1, 4 }

// InitialState picks the round's prompt pair with a seeded PRNG and
// shows only the output. The first seat guesses for the whole round.
func (r *Rules) InitialState(players []*models.Player) (*models.GameState, error) {
	pairs := r.cfg.Pairs
	if len(pairs) == 0 {
		pairs = builtinPairs
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: no prompt pairs to play", models.ErrPromptUnavailable)
	}
	rng := rand.New(rand.NewSource(r.cfg.Seed))
	r.secret = pairs[rng.Intn(len(pairs))]

	for _, p := range players {
		p.Data["attempts"] = 0
		p.Data["bestMatch"] = 0
	}

	state := models.NewGameState(GameType, players)
	state.Phase = PhaseGuessing
	state.CurrentTurn = players[0].ID
	state.Metadata["output"] = r.secret.Output
	state.Metadata["maxAttempts"] = r.cfg.MaxAttempts
	state.Metadata["attempts"] = []interface{}{}
	return state, nil
}

func (r *Rules) ValidateAction(state *models.GameState, action models.Action) *models.ValidationResult {
	result := models.ValidResult()
	switch action.Type {
	case ActionGuess:
		guess, ok := action.PayloadString("guess")
		if !ok || guess == "" {
			result.AddError("guess requires a non-empty guess string")
		}
	case models.ActionTimeout:
		// Burns an attempt.
	default:
		result.AddError(fmt.Sprintf("unknown action %q", action.Type))
	}
	if state.Phase != PhaseGuessing {
		result.AddError(fmt.Sprintf("round is not accepting guesses in phase %q", state.Phase))
	}
	return result
}

// ApplyAction scores one guess (a timeout scores as an empty guess).
// An exact match wins the round; exhausting the attempt budget loses
// it. Either way the turn is released and a phase tick completes the
// round.
func (r *Rules) ApplyAction(state *models.GameState, action models.Action) error {
	player := state.PlayerByID(action.PlayerID)
	if player == nil {
		return fmt.Errorf("player %s not seated", action.PlayerID)
	}

	guess, _ := action.PayloadString("guess")
	result := Match(guess, r.secret.Prompt)

	attempts := dataInt(player, "attempts") + 1
	player.Data["attempts"] = attempts
	if result.Percentage > dataInt(player, "bestMatch") {
		player.Data["bestMatch"] = result.Percentage
	}

	log, _ := state.Metadata["attempts"].([]interface{})
	state.Metadata["attempts"] = append(log, map[string]interface{}{
		"playerId":   player.ID,
		"guess":      guess,
		"percentage": result.Percentage,
		"type":       result.Type,
	})

	switch {
	case result.Type == MatchExact:
		state.Phase = PhaseWon
		state.Metadata["winner"] = player.ID
		state.Metadata["prompt"] = r.secret.Prompt
		state.CurrentTurn = ""
	case attempts >= r.cfg.MaxAttempts:
		state.Phase = PhaseLost
		state.Metadata["prompt"] = r.secret.Prompt
		state.CurrentTurn = ""
	}
	return nil
}

// ValidActions offers the guess template; the model fills in the guess
// text. The engine adds the timeout fallback itself.
func (r *Rules) ValidActions(state *models.GameState, playerID string) []models.Action {
	if state.Phase != PhaseGuessing {
		return nil
	}
	return []models.Action{
		models.NewAction(playerID, ActionGuess, map[string]interface{}{
			"guess": "",
		}),
	}
}

func (r *Rules) IsGameOver(state *models.GameState) bool {
	return state.Phase == PhaseRoundComplete
}

func (r *Rules) Winners(state *models.GameState) []string {
	winner, _ := state.Metadata["winner"].(string)
	if winner == "" {
		return nil
	}
	return []string{winner}
}

// AdvanceTurn always reports handled: the guessing player keeps the
// turn across attempts, and a decided round has no turn at all.
func (r *Rules) AdvanceTurn(state *models.GameState) bool { return true }

// PhaseTick closes out a decided round.
func (r *Rules) PhaseTick(state *models.GameState) error {
	switch state.Phase {
	case PhaseWon, PhaseLost:
		state.Phase = PhaseRoundComplete
		return nil
	case PhaseGuessing:
		if state.CurrentTurn == "" {
			return fmt.Errorf("guessing round lost its turn holder")
		}
		return nil
	default:
		return nil
	}
}

func dataInt(player *models.Player, key string) int {
	switch n := player.Data[key].(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}
