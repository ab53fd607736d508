package connect4

import (
	"fmt"

	"arena-engine/models"
	"arena-engine/scoring"
)

// Point values for one connect4 match.
const (
	basePoints     = 100
	pointsPerMove  = 10
	winBonus       = 500
	drawBonus      = 200
	timeoutPenalty = 50
)

// Hooks scores a match: participation plus per-move points, big bonus
// for the win, smaller for a draw, and a penalty per burned turn.
type Hooks struct{}

func NewHooks() *Hooks { return &Hooks{} }

var _ scoring.Hooks = (*Hooks)(nil)

func (h *Hooks) BasePoints(state *models.GameState, playerID string) []models.ScoreBreakdown {
	breakdown := []models.ScoreBreakdown{
		{Category: "base", Description: "participation", Points: basePoints},
	}
	if p := state.PlayerByID(playerID); p != nil {
		if moves := dataInt(p, "moves"); moves > 0 {
			breakdown = append(breakdown, models.ScoreBreakdown{
				Category:    "base",
				Description: fmt.Sprintf("%d moves played", moves),
				Points:      moves * pointsPerMove,
			})
		}
	}
	return breakdown
}

func (h *Hooks) BonusPoints(state *models.GameState, playerID string, log []models.GameEvent) []models.ScoreBreakdown {
	switch state.Phase {
	case PhaseWon:
		if winner, _ := state.Metadata["winner"].(string); winner == playerID {
			return []models.ScoreBreakdown{{Category: "bonus", Description: "victory", Points: winBonus}}
		}
	case PhaseDraw:
		return []models.ScoreBreakdown{{Category: "bonus", Description: "draw", Points: drawBonus}}
	}
	return nil
}

func (h *Hooks) PenaltyPoints(state *models.GameState, playerID string, log []models.GameEvent) []models.ScoreBreakdown {
	timeouts := 0
	for _, ev := range log {
		if ev.Type != models.EventActionExecuted || ev.PlayerID != playerID {
			continue
		}
		if action, ok := ev.Data["action"].(models.Action); ok && action.Type == models.ActionTimeout {
			timeouts++
		}
	}
	if timeouts == 0 {
		return nil
	}
	return []models.ScoreBreakdown{{
		Category:    "penalty",
		Description: fmt.Sprintf("%d timed-out turns", timeouts),
		Points:      timeouts * timeoutPenalty,
	}}
}

// DetectAchievements flags the fastest possible win (a connect in the
// player's first four placements).
func (h *Hooks) DetectAchievements(event models.GameEvent, log []models.GameEvent) []string {
	if event.Type != models.EventActionExecuted {
		return nil
	}
	after, ok := event.Data["after"].(*models.GameState)
	if !ok || after.Phase != PhaseWon {
		return nil
	}
	winner, _ := after.Metadata["winner"].(string)
	if winner == "" || winner != event.PlayerID {
		return nil
	}
	if p := after.PlayerByID(winner); p != nil && dataInt(p, "moves") <= 4 {
		return []string{"perfect-line"}
	}
	return nil
}
