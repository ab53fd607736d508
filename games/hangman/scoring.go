package hangman

import (
	"fmt"

	"arena-engine/models"
	"arena-engine/scoring"
)

const (
	basePoints        = 100
	pointsPerMatchPct = 2
	winBonus          = 500
	sparedAttemptPts  = 100
	timeoutPenalty    = 50
)

// Hooks scores a round: participation, closeness of the best guess,
// win bonus scaled by spared attempts, penalty per timed-out attempt.
type Hooks struct{}

func NewHooks() *Hooks { return &Hooks{} }

var _ scoring.Hooks = (*Hooks)(nil)

func (h *Hooks) BasePoints(state *models.GameState, playerID string) []models.ScoreBreakdown {
	breakdown := []models.ScoreBreakdown{
		{Category: "base", Description: "participation", Points: basePoints},
	}
	if p := state.PlayerByID(playerID); p != nil {
		if best := dataInt(p, "bestMatch"); best > 0 {
			breakdown = append(breakdown, models.ScoreBreakdown{
				Category:    "base",
				Description: fmt.Sprintf("best match %d%%", best),
				Points:      best * pointsPerMatchPct,
			})
		}
	}
	return breakdown
}

func (h *Hooks) BonusPoints(state *models.GameState, playerID string, log []models.GameEvent) []models.ScoreBreakdown {
	winner, _ := state.Metadata["winner"].(string)
	if winner != playerID {
		return nil
	}
	breakdown := []models.ScoreBreakdown{
		{Category: "bonus", Description: "guessed the prompt", Points: winBonus},
	}
	p := state.PlayerByID(playerID)
	maxAttempts := metaInt(state, "maxAttempts")
	if p != nil && maxAttempts > 0 {
		if spared := maxAttempts - dataInt(p, "attempts"); spared > 0 {
			breakdown = append(breakdown, models.ScoreBreakdown{
				Category:    "bonus",
				Description: fmt.Sprintf("%d attempts to spare", spared),
				Points:      spared * sparedAttemptPts,
			})
		}
	}
	return breakdown
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
		Description: fmt.Sprintf("%d timed-out attempts", timeouts),
		Points:      timeouts * timeoutPenalty,
	}}
}

// DetectAchievements flags an exact guess on the very first attempt.
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
	if p := after.PlayerByID(winner); p != nil && dataInt(p, "attempts") == 1 {
		return []string{"mind-reader"}
	}
	return nil
}

func metaInt(state *models.GameState, key string) int {
	switch n := state.Metadata[key].(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}
