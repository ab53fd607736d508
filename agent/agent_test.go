package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arena-engine/models"
)

func agentState() *models.GameState {
	you := models.NewPlayer("p1", "Alpha", true)
	them := models.NewPlayer("p2", "Beta", true)
	them.Data["secret"] = "hidden hand"
	state := models.NewGameState("connect4", []*models.Player{you, them})
	state.Phase = "playing"
	state.CurrentTurn = "p1"
	return state
}

func dropActions(columns ...int) []models.Action {
	actions := make([]models.Action, len(columns))
	for i, c := range columns {
		actions[i] = models.NewAction("p1", "drop", map[string]interface{}{"column": c})
	}
	return actions
}

func newTestAgent(client DecisionClient, personality models.Personality) *Agent {
	return New(Config{
		PlayerID:    "p1",
		PlayerName:  "Alpha",
		GameType:    "connect4",
		Model:       "test-model",
		Personality: personality,
		Obfuscate:   true,
	}, client, nil)
}

func TestMakeDecisionUsesModelResponse(t *testing.T) {
	client := &StaticClient{Responses: []string{
		`{"action": "drop", "column": 5, "confidence": 0.8, "reasoning": "block"}`,
	}}
	a := newTestAgent(client, models.DefaultPersonality())

	decision, err := a.MakeDecision(context.Background(), agentState(), dropActions(0, 1, 5))
	require.NoError(t, err)
	assert.Equal(t, "drop", decision.Action.Type)
	assert.Equal(t, "p1", decision.Action.PlayerID)
	// The model's column overrides the template value.
	column, ok := decision.Action.PayloadInt("column")
	require.True(t, ok)
	assert.Equal(t, 5, column)
	assert.Equal(t, 0.8, decision.Confidence)
	assert.Equal(t, "block", decision.Reasoning)
}

func TestMakeDecisionEmptyActionsFails(t *testing.T) {
	a := newTestAgent(&StaticClient{}, models.DefaultPersonality())
	_, err := a.MakeDecision(context.Background(), agentState(), nil)
	assert.ErrorIs(t, err, models.ErrAITurnFailed)
}

func TestMakeDecisionFallsBackOnRequestError(t *testing.T) {
	client := &StaticClient{Err: errors.New("network down")}
	a := newTestAgent(client, models.DefaultPersonality())

	decision, err := a.MakeDecision(context.Background(), agentState(), dropActions(0, 1, 2))
	require.NoError(t, err, "request failures degrade, never propagate")
	assert.Equal(t, "drop", decision.Action.Type)
	assert.Equal(t, true, decision.Metadata["fallback"])
}

func TestMakeDecisionFallsBackOnUnknownAction(t *testing.T) {
	client := &StaticClient{Responses: []string{`{"action": "teleport"}`}}
	a := newTestAgent(client, models.DefaultPersonality())

	decision, err := a.MakeDecision(context.Background(), agentState(), dropActions(0, 1))
	require.NoError(t, err)
	assert.Equal(t, true, decision.Metadata["fallback"])
	assert.Equal(t, "drop", decision.Action.Type)
}

func TestMakeDecisionFallsBackOnGarbage(t *testing.T) {
	client := &StaticClient{Responses: []string{"I would rather not say."}}
	a := newTestAgent(client, models.DefaultPersonality())

	decision, err := a.MakeDecision(context.Background(), agentState(), dropActions(0))
	require.NoError(t, err)
	assert.Equal(t, true, decision.Metadata["fallback"])
}

func TestFallbackIsPersonalityWeighted(t *testing.T) {
	timid := newTestAgent(nil, models.Personality{})
	bold := newTestAgent(nil, models.Personality{Aggressiveness: 1, RiskTolerance: 1, Adaptability: 1})
	actions := dropActions(0, 1, 2, 3)

	timidPick := timid.fallbackDecision(actions, "test")
	boldPick := bold.fallbackDecision(actions, "test")

	timidCol, _ := timidPick.Action.PayloadInt("column")
	boldCol, _ := boldPick.Action.PayloadInt("column")
	assert.Equal(t, 0, timidCol, "zero traits pick the first action")
	assert.Equal(t, 3, boldCol, "max traits pick the last action")
}

func TestFallbackAvoidsTimeoutWhenPossible(t *testing.T) {
	a := newTestAgent(nil, models.Personality{Aggressiveness: 1, RiskTolerance: 1})
	actions := []models.Action{
		models.NewAction("p1", "drop", map[string]interface{}{"column": 0}),
		models.NewAction("p1", models.ActionTimeout, nil),
	}
	decision := a.fallbackDecision(actions, "test")
	assert.Equal(t, "drop", decision.Action.Type)

	onlyTimeout := []models.Action{models.NewAction("p1", models.ActionTimeout, nil)}
	decision = a.fallbackDecision(onlyTimeout, "test")
	assert.Equal(t, models.ActionTimeout, decision.Action.Type)
}

func TestConfidenceClamped(t *testing.T) {
	client := &StaticClient{Responses: []string{`{"action": "drop", "confidence": 7.5}`}}
	a := newTestAgent(client, models.DefaultPersonality())

	decision, err := a.MakeDecision(context.Background(), agentState(), dropActions(0))
	require.NoError(t, err)
	assert.Equal(t, 1.0, decision.Confidence)
}

func TestCollectDataObfuscatesOpponents(t *testing.T) {
	a := newTestAgent(nil, models.DefaultPersonality())
	view := a.collectData(agentState(), dropActions(0))

	you, ok := view["you"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, you, "data")

	opponents, ok := view["opponents"].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, opponents, 1)
	assert.NotContains(t, opponents[0], "data", "opponent private data must be redacted")
}

func TestCollectDataWithoutObfuscation(t *testing.T) {
	a := New(Config{PlayerID: "p1", GameType: "reverse-hangman"}, nil, nil)
	view := a.collectData(agentState(), nil)

	opponents := view["opponents"].([]map[string]interface{})
	require.Len(t, opponents, 1)
	assert.Contains(t, opponents[0], "data")
}

func TestMatchActionIsStrictOnType(t *testing.T) {
	parsed := &ParsedDecision{ActionType: "DROP", Fields: map[string]interface{}{"column": float64(2), "bogus": "x"}}
	action, ok := matchAction("p1", parsed, dropActions(0))
	require.True(t, ok, "type match is case-insensitive")
	column, _ := action.PayloadInt("column")
	assert.Equal(t, 2, column)
	assert.NotContains(t, action.Payload, "bogus", "only declared payload keys are copied")
}
