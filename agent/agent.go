// Package agent wraps a decision-making policy behind one MakeDecision
// contract, whether backed by an external model call or the built-in
// personality heuristic.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/log"

	"arena-engine/models"
)

// Config fixes an agent's identity at creation. Personality is never
// mutated mid-game.
type Config struct {
	PlayerID     string
	PlayerName   string
	GameType     string
	Model        string
	Temperature  float64
	MaxTokens    int
	Personality  models.Personality
	Obfuscate    bool   // redact other players' private data from prompts
	SystemPrompt string // optional override of the default template
}

type Agent struct {
	cfg    Config
	client DecisionClient
	log    *log.Logger
}

func New(cfg Config, client DecisionClient, logger *log.Logger) *Agent {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 512
	}
	return &Agent{cfg: cfg, client: client, log: logger}
}

// Personality exposes the agent's fixed trait tuple.
func (a *Agent) Personality() models.Personality {
	return a.cfg.Personality
}

// MakeDecision produces exactly one decision for the given state and
// valid-action set. Every failure along the model path (request error,
// malformed response, unknown action) degrades to the deterministic
// personality heuristic; the only hard error is an empty action set.
func (a *Agent) MakeDecision(ctx context.Context, state *models.GameState, validActions []models.Action) (*models.Decision, error) {
	if len(validActions) == 0 {
		return nil, fmt.Errorf("%w: no valid actions for player %s", models.ErrAITurnFailed, a.cfg.PlayerID)
	}

	view := a.collectData(state, validActions)
	systemPrompt := a.systemPrompt()
	userPrompt, err := a.userPrompt(view)
	if err != nil {
		a.log.Warn("prompt build failed, using fallback", "player", a.cfg.PlayerID, "err", err)
		return a.fallbackDecision(validActions, "prompt build failed"), nil
	}

	raw, err := a.client.Request(ctx, Request{
		Model:          a.cfg.Model,
		SystemPrompt:   systemPrompt,
		UserPrompt:     userPrompt,
		Temperature:    a.cfg.Temperature,
		MaxTokens:      a.cfg.MaxTokens,
		ResponseFormat: "json",
	})
	if err != nil {
		a.log.Warn("decision request failed, using fallback", "player", a.cfg.PlayerID, "model", a.cfg.Model, "err", err)
		return a.fallbackDecision(validActions, "request failed"), nil
	}

	parsed, err := ParseResponse(raw)
	if err != nil {
		a.log.Warn("unparseable model response, using fallback", "player", a.cfg.PlayerID, "err", err)
		return a.fallbackDecision(validActions, "malformed response"), nil
	}

	action, ok := matchAction(a.cfg.PlayerID, parsed, validActions)
	if !ok {
		a.log.Warn("model chose an unknown action, using fallback", "player", a.cfg.PlayerID, "action", parsed.ActionType)
		return a.fallbackDecision(validActions, "unknown action "+parsed.ActionType), nil
	}

	return &models.Decision{
		Action:     action,
		Confidence: clamp01(parsed.Confidence),
		Reasoning:  parsed.Reasoning,
		Metadata: map[string]interface{}{
			"model": a.cfg.Model,
		},
	}, nil
}

// collectData builds the neutral, game-agnostic projection of state for
// this player. With obfuscation on, other players' private Data is
// dropped; reverse-hangman disables obfuscation since nothing is hidden.
func (a *Agent) collectData(state *models.GameState, validActions []models.Action) map[string]interface{} {
	var you map[string]interface{}
	others := make([]map[string]interface{}, 0, len(state.Players))
	for _, p := range state.Players {
		if p == nil {
			continue
		}
		entry := map[string]interface{}{
			"id":       p.ID,
			"name":     p.Name,
			"isActive": p.IsActive,
		}
		if p.ID == a.cfg.PlayerID {
			entry["data"] = p.Data
			you = entry
			continue
		}
		if !a.cfg.Obfuscate {
			entry["data"] = p.Data
		}
		others = append(others, entry)
	}

	actions := make([]map[string]interface{}, len(validActions))
	for i, act := range validActions {
		actions[i] = map[string]interface{}{"type": act.Type}
		if len(act.Payload) > 0 {
			actions[i]["payload"] = act.Payload
		}
	}

	return map[string]interface{}{
		"gameType":     state.GameType,
		"phase":        state.Phase,
		"turnCount":    state.TurnCount,
		"you":          you,
		"opponents":    others,
		"metadata":     state.Metadata,
		"validActions": actions,
	}
}

func (a *Agent) systemPrompt() string {
	if a.cfg.SystemPrompt != "" {
		return a.cfg.SystemPrompt
	}
	return fmt.Sprintf(
		"You are %s, a competitive player in a game of %s. "+
			"Traits: aggressiveness %.1f, risk tolerance %.1f, bluffing %.1f, adaptability %.1f. "+
			"Choose exactly one of the listed valid actions.",
		a.cfg.PlayerName, a.cfg.GameType,
		a.cfg.Personality.Aggressiveness, a.cfg.Personality.RiskTolerance,
		a.cfg.Personality.BluffingTendency, a.cfg.Personality.Adaptability)
}

func (a *Agent) userPrompt(view map[string]interface{}) (string, error) {
	blob, err := json.Marshal(view)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"Game state:\n%s\n\nReply with a single JSON object: "+
			`{"action": "<type>", "confidence": <0..1>, "reasoning": "<short>"}`+
			". Include any action parameters (column, guess, amount) as extra keys.",
		blob), nil
}

// matchAction validates the parsed response against the valid-action
// set: strict on type, permissive on auxiliary fields. Free-form fields
// the template declares (a guess string, a bet amount) are copied over
// from the response.
func matchAction(playerID string, parsed *ParsedDecision, validActions []models.Action) (models.Action, bool) {
	for _, candidate := range validActions {
		if !strings.EqualFold(candidate.Type, parsed.ActionType) {
			continue
		}
		action := candidate.Clone()
		action.PlayerID = playerID
		for key := range candidate.Payload {
			if v, ok := parsed.Fields[key]; ok {
				action.Payload[key] = v
			}
		}
		return action, true
	}
	return models.Action{}, false
}

// fallbackDecision is the deterministic personality heuristic: a
// weighted pick over the non-defer actions (defer actions only when
// nothing else exists). Aggressive, risk-tolerant agents land on later,
// bolder entries of the action set.
func (a *Agent) fallbackDecision(validActions []models.Action, reason string) *models.Decision {
	pool := make([]models.Action, 0, len(validActions))
	for _, act := range validActions {
		if act.Type != models.ActionTimeout {
			pool = append(pool, act)
		}
	}
	if len(pool) == 0 {
		pool = validActions
	}

	weight := a.cfg.Personality.Aggressiveness*0.6 + a.cfg.Personality.RiskTolerance*0.4
	idx := int(math.Round(weight * float64(len(pool)-1)))
	chosen := pool[idx].Clone()
	chosen.PlayerID = a.cfg.PlayerID

	return &models.Decision{
		Action:     chosen,
		Confidence: 0.2 + a.cfg.Personality.Adaptability*0.3,
		Reasoning:  "personality fallback: " + reason,
		Metadata: map[string]interface{}{
			"fallback": true,
		},
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
