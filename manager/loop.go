package manager

import (
	"context"
	"fmt"

	"arena-engine/models"
)

type aiResult struct {
	decision *models.Decision
	err      error
}

// run is the scheduling loop. Exactly one instance is live per playing
// phase; stopCh ends it, done signals the exit to ResumeGame.
func (m *Manager) run(stopCh, done chan struct{}) {
	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
		close(done)
	}()

	for {
		if m.Status() != StatusPlaying {
			return
		}
		if m.engine.IsGameOver() {
			m.EndGame()
			return
		}

		state := m.engine.State()
		if state == nil {
			m.log.Error("scheduler running without an initialized game")
			m.EndGame()
			return
		}

		switch {
		case state.CurrentTurn == "":
			// No seat holds the turn: the game advances through phase
			// ticks (round transitions, dealer steps).
			if !m.phaseTick(state.Phase) {
				return
			}
		default:
			player := state.PlayerByID(state.CurrentTurn)
			if player == nil || !player.IsActive {
				if !m.phaseTick(state.Phase) {
					return
				}
			} else if player.IsAI {
				m.aiTurn(stopCh, state, player)
			} else {
				if !m.humanTurn(stopCh, player) {
					return
				}
			}
		}

		if m.Status() != StatusPlaying {
			return
		}

		// Cooperative yield keeps the loop preemptible and testable with
		// a mock clock.
		timer := m.clk.Timer(m.cfg.YieldDelay)
		select {
		case <-timer.C:
		case <-stopCh:
			timer.Stop()
			return
		}
	}
}

// phaseTick advances phase-driven progress and watches for a stuck
// game: too many consecutive ticks without a phase change aborts the
// match instead of spinning forever. Returns false when the loop must
// stop.
func (m *Manager) phaseTick(phase string) bool {
	m.mu.Lock()
	if m.ticking {
		m.mu.Unlock()
		return true
	}
	m.ticking = true
	if phase == m.lastTickPhase {
		m.tickRepeats++
	} else {
		m.lastTickPhase = phase
		m.tickRepeats = 1
	}
	repeats := m.tickRepeats
	m.mu.Unlock()

	if repeats > m.cfg.MaxIdenticalTicks {
		m.clearTicking()
		m.log.Error("phase stuck, aborting game", "phase", phase, "ticks", repeats)
		m.EndGame()
		return false
	}

	err := m.engine.PhaseTick()
	m.clearTicking()
	if err != nil {
		m.log.Error("phase tick failed", "phase", phase, "err", err)
		m.EndGame()
		return false
	}
	return true
}

func (m *Manager) clearTicking() {
	m.mu.Lock()
	m.ticking = false
	m.mu.Unlock()
}

// aiTurn runs one AI decision attempt: think under a timeout, execute,
// and on repeated failure degrade to the engine's fallback action. The
// game survives every agent failure mode.
func (m *Manager) aiTurn(stopCh chan struct{}, state *models.GameState, player *models.Player) {
	m.mu.Lock()
	retries := m.retries[player.ID]
	decider := m.agents[player.ID]
	m.mu.Unlock()

	if decider == nil {
		m.log.Error("ai player has no agent", "player", player.ID)
		m.executeFallback(player)
		return
	}

	// A counter already at the limit means the previous fallback did not
	// move the game either; force a phase tick instead of retrying.
	if retries >= m.cfg.MaxAIRetries {
		m.mu.Lock()
		m.retries[player.ID] = 0
		m.mu.Unlock()
		m.phaseTick(state.Phase)
		return
	}

	validActions := m.engine.ValidActions(player.ID)
	m.publish(models.EventAIThinkingStart, player.ID, nil)
	start := m.clk.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	resultCh := make(chan aiResult, 1)
	go func() {
		d, err := decider.MakeDecision(ctx, state, validActions)
		resultCh <- aiResult{decision: d, err: err}
	}()

	timer := m.clk.Timer(m.cfg.TurnTimeout)
	var decision *models.Decision
	var decisionErr error
	select {
	case res := <-resultCh:
		timer.Stop()
		decision, decisionErr = res.decision, res.err
	case <-timer.C:
		decisionErr = fmt.Errorf("%w: player %s exceeded %s thinking time",
			models.ErrAITurnFailed, player.ID, m.cfg.TurnTimeout)
	case <-stopCh:
		// Paused or ended mid-thought; the attempt is abandoned without
		// touching the retry counter.
		timer.Stop()
		return
	}

	if decisionErr == nil && decision != nil {
		m.publish(models.EventAIThinkingEnd, player.ID, map[string]interface{}{
			"elapsedMs": m.clk.Since(start).Milliseconds(),
		})
		m.publish(models.EventAIDecision, player.ID, map[string]interface{}{
			"action":     decision.Action,
			"confidence": decision.Confidence,
			"reasoning":  decision.Reasoning,
		})
		err := m.engine.ExecuteAction(decision.Action)
		if err == nil {
			m.mu.Lock()
			m.retries[player.ID] = 0
			m.mu.Unlock()
			return
		}
		decisionErr = err
	}

	m.mu.Lock()
	m.retries[player.ID]++
	attempt := m.retries[player.ID]
	m.mu.Unlock()
	m.log.Warn("ai turn failed", "player", player.ID, "attempt", attempt, "err", decisionErr)

	if attempt >= m.cfg.MaxAIRetries {
		m.executeFallback(player)
		m.mu.Lock()
		m.retries[player.ID] = 0
		m.mu.Unlock()
	}
}

// executeFallback plays the engine's safe default action for the seat.
// When even that fails the turn is surrendered via ai:turn:failed; the
// scheduler never crashes the game on an agent's behalf.
func (m *Manager) executeFallback(player *models.Player) {
	action, ok := m.engine.FallbackAction(player.ID)
	if !ok {
		m.publish(models.EventAITurnFailed, player.ID, map[string]interface{}{
			"reason": "no fallback action available",
		})
		return
	}

	m.publish(models.EventAIFallback, player.ID, map[string]interface{}{
		"action": action,
	})
	if err := m.engine.ExecuteAction(action); err != nil {
		m.log.Error("fallback action rejected", "player", player.ID, "action", action.Type, "err", err)
		m.publish(models.EventAITurnFailed, player.ID, map[string]interface{}{
			"reason": err.Error(),
		})
	}
}

// humanTurn blocks until the seat's owner submits a valid action or the
// loop stops. Invalid submissions emit action:invalid and keep the turn
// open. Returns false when the loop must stop.
func (m *Manager) humanTurn(stopCh chan struct{}, player *models.Player) bool {
	m.publish(models.EventHumanTurnStart, player.ID, nil)

	for {
		select {
		case action := <-m.actionCh:
			if action.PlayerID != player.ID {
				m.publish(models.EventActionInvalid, action.PlayerID, map[string]interface{}{
					"errors": []string{"not your turn"},
				})
				continue
			}
			if err := m.engine.ExecuteAction(action); err != nil {
				m.publish(models.EventActionInvalid, player.ID, map[string]interface{}{
					"errors": []string{err.Error()},
				})
				continue
			}
			m.publish(models.EventHumanTurnEnd, player.ID, nil)
			return true
		case <-stopCh:
			return false
		}
	}
}
