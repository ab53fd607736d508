package registry

import (
	"errors"
	"strings"
	"testing"

	"arena-engine/engine"
	"arena-engine/manager"
	"arena-engine/models"
)

// trivialRules is the minimal playable game for catalog tests.
type trivialRules struct {
	limit int
}

func (r *trivialRules) GameType() string                   { return "trivial" }
func (r *trivialRules) PlayerLimits() (int, int)           { return 1, 4 }
func (r *trivialRules) AdvanceTurn(*models.GameState) bool { return false }

func (r *trivialRules) InitialState(players []*models.Player) (*models.GameState, error) {
	state := models.NewGameState("trivial", players)
	state.Phase = "open"
	state.CurrentTurn = players[0].ID
	state.Metadata["limit"] = r.limit
	return state, nil
}

func (r *trivialRules) ValidateAction(*models.GameState, models.Action) *models.ValidationResult {
	return models.ValidResult()
}
func (r *trivialRules) ApplyAction(*models.GameState, models.Action) error { return nil }
func (r *trivialRules) ValidActions(state *models.GameState, playerID string) []models.Action {
	return []models.Action{models.NewAction(playerID, "noop", nil)}
}
func (r *trivialRules) IsGameOver(*models.GameState) bool  { return false }
func (r *trivialRules) Winners(*models.GameState) []string { return nil }
func (r *trivialRules) PhaseTick(*models.GameState) error  { return nil }

func descriptorFor(id string) Descriptor {
	return Descriptor{
		ID:         id,
		Title:      strings.ToUpper(id),
		MinPlayers: 2,
		MaxPlayers: 3,
		DefaultConfig: map[string]interface{}{
			"limit": 10,
		},
		ValidateConfig: func(cfg map[string]interface{}) error {
			if n, ok := cfg["limit"].(int); ok && n < 0 {
				return errors.New("limit must not be negative")
			}
			return nil
		},
		NewRules: func(cfg map[string]interface{}) (engine.Rules, error) {
			limit, _ := cfg["limit"].(int)
			return &trivialRules{limit: limit}, nil
		},
	}
}

func specs(n int) []manager.PlayerSpec {
	out := make([]manager.PlayerSpec, n)
	for i := range out {
		out[i] = manager.PlayerSpec{ID: string(rune('a' + i)), Name: "P"}
	}
	return out
}

func TestRegisterAndLookup(t *testing.T) {
	Register(descriptorFor("lookup-game"))

	d, ok := Get("lookup-game")
	if !ok {
		t.Fatal("registered game not found")
	}
	if d.Title != "LOOKUP-GAME" {
		t.Fatalf("Title = %q", d.Title)
	}
	if !Exists("lookup-game") || Exists("no-such-game") {
		t.Fatal("Exists disagrees with Get")
	}

	found := false
	for _, entry := range List() {
		if entry.ID == "lookup-game" {
			found = true
		}
	}
	if !found {
		t.Fatal("List() omits a registered game")
	}
}

func TestListIsSorted(t *testing.T) {
	Register(descriptorFor("zz-sort-b"))
	Register(descriptorFor("aa-sort-a"))

	entries := List()
	for i := 1; i < len(entries); i++ {
		if entries[i-1].ID > entries[i].ID {
			t.Fatalf("List() not sorted: %q before %q", entries[i-1].ID, entries[i].ID)
		}
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register(descriptorFor("dup-game"))
	defer func() {
		if recover() == nil {
			t.Fatal("duplicate registration must panic")
		}
	}()
	Register(descriptorFor("dup-game"))
}

func TestRegisterWithoutRulesPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("registration without a rules factory must panic")
		}
	}()
	Register(Descriptor{ID: "no-rules-game"})
}

func TestBuildWiresTable(t *testing.T) {
	Register(descriptorFor("build-game"))

	m, err := Build("build-game", specs(2), map[string]interface{}{"limit": 25}, manager.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if m.Status() != manager.StatusSetup {
		t.Fatalf("fresh table status = %q", m.Status())
	}
	if err := m.StartGame(); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	defer m.EndGame()

	state := m.Engine().State()
	if state.GameType != "trivial" {
		t.Fatalf("GameType = %q", state.GameType)
	}
	// The override must reach the rules factory over the default.
	if state.Metadata["limit"] != 25 {
		t.Fatalf("limit = %v, want override 25", state.Metadata["limit"])
	}
}

func TestBuildErrors(t *testing.T) {
	Register(descriptorFor("guard-game"))

	if _, err := Build("missing-game", specs(2), nil, manager.DefaultConfig(), nil); err == nil {
		t.Fatal("unknown game must fail")
	}
	if _, err := Build("guard-game", specs(1), nil, manager.DefaultConfig(), nil); err == nil {
		t.Fatal("roster below minimum must fail")
	}
	if _, err := Build("guard-game", specs(4), nil, manager.DefaultConfig(), nil); err == nil {
		t.Fatal("roster above maximum must fail")
	}
	if _, err := Build("guard-game", specs(2), map[string]interface{}{"limit": -1}, manager.DefaultConfig(), nil); err == nil {
		t.Fatal("rejected config must fail")
	}
}
