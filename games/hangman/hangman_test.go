package hangman

import (
	"testing"

	"arena-engine/engine"
	"arena-engine/models"
)

var testPair = PromptPair{
	Prompt: "write a haiku about the moon",
	Output: "Silver light above\nthe quiet field holds its breath\nmoonrise, slow and pale",
}

func onePlayer() []*models.Player {
	return []*models.Player{models.NewPlayer("g1", "Guesser", true)}
}

func newRound(t *testing.T, cfg Config) (*Rules, *models.GameState) {
	t.Helper()
	if cfg.Pairs == nil {
		cfg.Pairs = []PromptPair{testPair}
	}
	rules := NewRules(cfg)
	state, err := rules.InitialState(onePlayer())
	if err != nil {
		t.Fatalf("InitialState failed: %v", err)
	}
	return rules, state
}

func guess(playerID, text string) models.Action {
	return models.NewAction(playerID, ActionGuess, map[string]interface{}{"guess": text})
}

func TestInitialStateHidesPrompt(t *testing.T) {
	_, state := newRound(t, Config{})

	if state.Metadata["output"] != testPair.Output {
		t.Fatal("the output must be visible to players")
	}
	if _, leaked := state.Metadata["prompt"]; leaked {
		t.Fatal("the secret prompt must not appear in game state")
	}
	if state.CurrentTurn != "g1" {
		t.Fatalf("first seat guesses, got %q", state.CurrentTurn)
	}
	if state.Metadata["maxAttempts"] != DefaultMaxAttempts {
		t.Fatalf("maxAttempts = %v, want default %d", state.Metadata["maxAttempts"], DefaultMaxAttempts)
	}
}

func TestSeedSelectsDeterministically(t *testing.T) {
	first, err := NewRules(Config{Seed: 42}).InitialState(onePlayer())
	if err != nil {
		t.Fatalf("InitialState failed: %v", err)
	}
	second, err := NewRules(Config{Seed: 42}).InitialState(onePlayer())
	if err != nil {
		t.Fatalf("InitialState failed: %v", err)
	}
	if first.Metadata["output"] != second.Metadata["output"] {
		t.Fatal("same seed must select the same prompt pair")
	}
}

func TestExactGuessWinsRound(t *testing.T) {
	rules, state := newRound(t, Config{})

	if err := rules.ApplyAction(state, guess("g1", "Write a HAIKU about the moon.")); err != nil {
		t.Fatalf("guess failed: %v", err)
	}
	if state.Phase != PhaseWon {
		t.Fatalf("phase = %q, want won", state.Phase)
	}
	if state.Metadata["winner"] != "g1" {
		t.Fatalf("winner = %v", state.Metadata["winner"])
	}
	if state.Metadata["prompt"] != testPair.Prompt {
		t.Fatal("a decided round reveals the prompt")
	}
	if state.CurrentTurn != "" {
		t.Fatal("a decided round releases the turn")
	}
	if got := rules.Winners(state); len(got) != 1 || got[0] != "g1" {
		t.Fatalf("Winners() = %v", got)
	}

	// The round completes on the next phase tick.
	if rules.IsGameOver(state) {
		t.Fatal("round must not be over before the closing tick")
	}
	if err := rules.PhaseTick(state); err != nil {
		t.Fatalf("PhaseTick failed: %v", err)
	}
	if state.Phase != PhaseRoundComplete || !rules.IsGameOver(state) {
		t.Fatalf("phase = %q, want round-complete", state.Phase)
	}
}

func TestThreeMissesLoseRound(t *testing.T) {
	rules, state := newRound(t, Config{MaxAttempts: 3})

	misses := []string{"describe the weather", "a sonnet about stars", "tell me a joke"}
	for i, text := range misses {
		if err := rules.ApplyAction(state, guess("g1", text)); err != nil {
			t.Fatalf("guess %d failed: %v", i, err)
		}
		if i < len(misses)-1 && state.Phase != PhaseGuessing {
			t.Fatalf("round decided early on guess %d: %q", i, state.Phase)
		}
	}

	if state.Phase != PhaseLost {
		t.Fatalf("phase = %q, want lost", state.Phase)
	}
	if state.Metadata["prompt"] != testPair.Prompt {
		t.Fatal("a lost round still reveals the prompt")
	}
	if got := rules.Winners(state); got != nil {
		t.Fatalf("a lost round has no winners, got %v", got)
	}
	if err := rules.PhaseTick(state); err != nil {
		t.Fatalf("PhaseTick failed: %v", err)
	}
	if state.Phase != PhaseRoundComplete {
		t.Fatalf("phase = %q, want round-complete", state.Phase)
	}

	attempts, _ := state.Metadata["attempts"].([]interface{})
	if len(attempts) != 3 {
		t.Fatalf("attempt log has %d entries, want 3", len(attempts))
	}
}

func TestGuesserKeepsTurnAcrossAttempts(t *testing.T) {
	rules, state := newRound(t, Config{})

	if err := rules.ApplyAction(state, guess("g1", "something wrong entirely")); err != nil {
		t.Fatalf("guess failed: %v", err)
	}
	if state.CurrentTurn != "g1" {
		t.Fatalf("turn moved to %q after a miss", state.CurrentTurn)
	}
	if !rules.AdvanceTurn(state) {
		t.Fatal("rotation must stay under game control")
	}
}

func TestTimeoutBurnsAttempt(t *testing.T) {
	rules, state := newRound(t, Config{MaxAttempts: 2})

	if err := rules.ApplyAction(state, models.NewAction("g1", models.ActionTimeout, nil)); err != nil {
		t.Fatalf("timeout failed: %v", err)
	}
	p := state.PlayerByID("g1")
	if dataInt(p, "attempts") != 1 {
		t.Fatalf("attempts = %d, want 1", dataInt(p, "attempts"))
	}
	if err := rules.ApplyAction(state, models.NewAction("g1", models.ActionTimeout, nil)); err != nil {
		t.Fatalf("timeout failed: %v", err)
	}
	if state.Phase != PhaseLost {
		t.Fatalf("exhausted attempts via timeouts should lose, got %q", state.Phase)
	}
}

func TestBestMatchTracksHighWaterMark(t *testing.T) {
	rules, state := newRound(t, Config{})

	if err := rules.ApplyAction(state, guess("g1", "a haiku moon")); err != nil {
		t.Fatalf("guess failed: %v", err)
	}
	p := state.PlayerByID("g1")
	first := dataInt(p, "bestMatch")
	if first != 50 {
		t.Fatalf("bestMatch = %d, want 50", first)
	}

	// A worse follow-up must not lower the mark.
	if err := rules.ApplyAction(state, guess("g1", "nothing related")); err != nil {
		t.Fatalf("guess failed: %v", err)
	}
	if got := dataInt(p, "bestMatch"); got != first {
		t.Fatalf("bestMatch dropped to %d", got)
	}
}

func TestValidateActionRejections(t *testing.T) {
	rules, state := newRound(t, Config{})

	cases := []struct {
		name   string
		action models.Action
		ok     bool
	}{
		{"valid guess", guess("g1", "a prompt"), true},
		{"empty guess", guess("g1", ""), false},
		{"missing payload", models.NewAction("g1", ActionGuess, nil), false},
		{"timeout", models.NewAction("g1", models.ActionTimeout, nil), true},
		{"unknown action", models.NewAction("g1", "peek", nil), false},
	}
	for _, tc := range cases {
		result := rules.ValidateAction(state, tc.action)
		if result.Valid != tc.ok {
			t.Errorf("%s: expected valid=%v, got %v (%v)", tc.name, tc.ok, result.Valid, result.Errors)
		}
	}

	state.Phase = PhaseWon
	if rules.ValidateAction(state, guess("g1", "late")).Valid {
		t.Fatal("a decided round must reject further guesses")
	}
}

// Full engine round: one miss, then the winning guess.
func TestEngineRoundToWin(t *testing.T) {
	rules := NewRules(Config{Pairs: []PromptPair{testPair}})
	eng := engine.New(rules, nil)
	if err := eng.Initialize(onePlayer()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if err := eng.ExecuteAction(guess("g1", "a poem about stars")); err != nil {
		t.Fatalf("miss failed: %v", err)
	}
	if eng.State().CurrentTurn != "g1" {
		t.Fatal("guesser must keep the turn after a miss")
	}
	if err := eng.ExecuteAction(guess("g1", testPair.Prompt)); err != nil {
		t.Fatalf("winning guess failed: %v", err)
	}
	if err := eng.PhaseTick(); err != nil {
		t.Fatalf("PhaseTick failed: %v", err)
	}

	state := eng.State()
	if state.Phase != PhaseRoundComplete {
		t.Fatalf("phase = %q, want round-complete", state.Phase)
	}
	if state.EndTime == nil {
		t.Fatal("engine must stamp endTime when the round completes")
	}
	if got := eng.Winners(); len(got) != 1 || got[0] != "g1" {
		t.Fatalf("Winners() = %v", got)
	}
}

func TestScoringValues(t *testing.T) {
	hooks := NewHooks()
	rules, state := newRound(t, Config{MaxAttempts: 3})

	if err := rules.ApplyAction(state, guess("g1", testPair.Prompt)); err != nil {
		t.Fatalf("guess failed: %v", err)
	}

	base := total(hooks.BasePoints(state, "g1"))
	if base != basePoints+100*pointsPerMatchPct {
		t.Fatalf("base = %d, want %d", base, basePoints+100*pointsPerMatchPct)
	}
	// Win on attempt 1 of 3 spares two attempts.
	bonus := total(hooks.BonusPoints(state, "g1", nil))
	if bonus != winBonus+2*sparedAttemptPts {
		t.Fatalf("bonus = %d, want %d", bonus, winBonus+2*sparedAttemptPts)
	}

	timeout := models.NewAction("g1", models.ActionTimeout, nil)
	log := []models.GameEvent{
		models.NewGameEvent(models.EventActionExecuted, "g", "g1", map[string]interface{}{"action": timeout}),
	}
	if penalty := total(hooks.PenaltyPoints(state, "g1", log)); penalty != timeoutPenalty {
		t.Fatalf("penalty = %d, want %d", penalty, timeoutPenalty)
	}
}

func TestMindReaderAchievement(t *testing.T) {
	hooks := NewHooks()
	rules, state := newRound(t, Config{})
	if err := rules.ApplyAction(state, guess("g1", testPair.Prompt)); err != nil {
		t.Fatalf("guess failed: %v", err)
	}

	event := models.NewGameEvent(models.EventActionExecuted, "g", "g1", map[string]interface{}{
		"after": state,
	})
	if got := hooks.DetectAchievements(event, nil); len(got) != 1 || got[0] != "mind-reader" {
		t.Fatalf("expected mind-reader, got %v", got)
	}

	// A second-attempt win earns nothing.
	state.PlayerByID("g1").Data["attempts"] = 2
	if got := hooks.DetectAchievements(event, nil); got != nil {
		t.Fatalf("expected no achievement, got %v", got)
	}
}

func total(breakdown []models.ScoreBreakdown) int {
	sum := 0
	for _, b := range breakdown {
		sum += b.Points
	}
	return sum
}
