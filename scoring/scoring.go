// Package scoring derives per-player scores and a leaderboard from the
// game's event stream plus state snapshots. It is independent of turn
// order; the event log is its only history.
package scoring

import (
	"sort"
	"sync"

	"arena-engine/events"
	"arena-engine/models"
)

// Hooks supplies the game-specific point rules. Base, bonus and penalty
// are computed per player; the tracker combines them as
// base + bonus - penalty.
type Hooks interface {
	BasePoints(state *models.GameState, playerID string) []models.ScoreBreakdown
	BonusPoints(state *models.GameState, playerID string, log []models.GameEvent) []models.ScoreBreakdown
	PenaltyPoints(state *models.GameState, playerID string, log []models.GameEvent) []models.ScoreBreakdown

	// DetectAchievements inspects one tracked event against the log so
	// far. Achievements are informational; they never change the score
	// unless a game's bonus hook reads them.
	DetectAchievements(event models.GameEvent, log []models.GameEvent) []string
}

// Tracker accumulates events and computes scores on demand.
type Tracker struct {
	hooks Hooks
	bus   *events.Bus

	mu           sync.Mutex
	log          []models.GameEvent
	scores       map[string]int
	names        map[string]string
	order        []string // player ids in first-seen order, keeps sorting stable
	achievements map[string][]string
}

func NewTracker(hooks Hooks, bus *events.Bus) *Tracker {
	if bus == nil {
		bus = events.NewBus()
	}
	return &Tracker{
		hooks:        hooks,
		bus:          bus,
		scores:       make(map[string]int),
		names:        make(map[string]string),
		achievements: make(map[string][]string),
	}
}

// TrackEvent appends to the event log and runs achievement detection.
// No dedup is performed; callers must not submit the same event twice.
func (t *Tracker) TrackEvent(event models.GameEvent) {
	t.mu.Lock()
	t.log = append(t.log, event)
	unlocked := t.hooks.DetectAchievements(event, t.log)
	if len(unlocked) > 0 && event.PlayerID != "" {
		t.achievements[event.PlayerID] = append(t.achievements[event.PlayerID], unlocked...)
	}
	gameID := event.GameID
	playerID := event.PlayerID
	t.mu.Unlock()

	if len(unlocked) > 0 {
		t.bus.Publish(models.NewGameEvent(models.EventAchievementUnlocked, gameID, playerID, map[string]interface{}{
			"achievements": unlocked,
		}))
	}
}

// CalculateScore recomputes every player's score from the state and the
// accumulated log, updates the internal score map, and publishes
// scores:updated with the fresh leaderboard.
func (t *Tracker) CalculateScore(state *models.GameState) []models.ScoreResult {
	t.mu.Lock()

	results := make([]models.ScoreResult, 0, len(state.Players))
	for _, p := range state.Players {
		if p == nil {
			continue
		}
		breakdown := append([]models.ScoreBreakdown{}, t.hooks.BasePoints(state, p.ID)...)
		breakdown = append(breakdown, t.hooks.BonusPoints(state, p.ID, t.log)...)
		breakdown = append(breakdown, t.hooks.PenaltyPoints(state, p.ID, t.log)...)

		total := 0
		for _, b := range breakdown {
			if b.Category == "penalty" {
				total -= b.Points
			} else {
				total += b.Points
			}
		}

		if _, seen := t.scores[p.ID]; !seen {
			t.order = append(t.order, p.ID)
		}
		t.scores[p.ID] = total
		t.names[p.ID] = p.Name
		results = append(results, models.ScoreResult{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			Total:      total,
			Breakdown:  breakdown,
		})
	}

	board := t.leaderboardLocked()
	gameID := state.GameID
	t.mu.Unlock()

	t.bus.Publish(models.NewGameEvent(models.EventScoresUpdated, gameID, "", map[string]interface{}{
		"leaderboard": board,
	}))
	return results
}

// Leaderboard sorts current scores descending and assigns 1-based ranks.
// Ranking rule (pinned deliberately, see DESIGN.md): equal scores share
// the rank of the first tied position and the next distinct score gets
// its sequential sort index, so [80 80 50 10] ranks as [1 1 3 4]. The
// sort is stable over first-seen player order.
func (t *Tracker) Leaderboard() []models.LeaderboardEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.leaderboardLocked()
}

func (t *Tracker) leaderboardLocked() []models.LeaderboardEntry {
	ids := make([]string, len(t.order))
	copy(ids, t.order)
	sort.SliceStable(ids, func(i, j int) bool {
		return t.scores[ids[i]] > t.scores[ids[j]]
	})

	board := make([]models.LeaderboardEntry, len(ids))
	for i, id := range ids {
		rank := i + 1
		if i > 0 && t.scores[id] == t.scores[ids[i-1]] {
			rank = board[i-1].Rank
		}
		board[i] = models.LeaderboardEntry{
			Rank:       rank,
			PlayerID:   id,
			PlayerName: t.names[id],
			Score:      t.scores[id],
		}
	}
	return board
}

// Achievements returns what a player has unlocked so far.
func (t *Tracker) Achievements(playerID string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.achievements[playerID]))
	copy(out, t.achievements[playerID])
	return out
}

// Events returns a copy of the tracked log.
func (t *Tracker) Events() []models.GameEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.GameEvent, len(t.log))
	copy(out, t.log)
	return out
}

// Reset clears scores, events and trackers; used between rounds within
// the same game instance.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.log = nil
	t.order = nil
	t.scores = make(map[string]int)
	t.names = make(map[string]string)
	t.achievements = make(map[string][]string)
}
