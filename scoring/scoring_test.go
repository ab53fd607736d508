package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arena-engine/events"
	"arena-engine/models"
)

// fixedHooks assigns a preset base score per player and flags an
// achievement on a marker event.
type fixedHooks struct {
	base    map[string]int
	bonus   map[string]int
	penalty map[string]int
}

func (h *fixedHooks) BasePoints(state *models.GameState, playerID string) []models.ScoreBreakdown {
	return []models.ScoreBreakdown{{Category: "base", Description: "preset", Points: h.base[playerID]}}
}

func (h *fixedHooks) BonusPoints(state *models.GameState, playerID string, log []models.GameEvent) []models.ScoreBreakdown {
	if p, ok := h.bonus[playerID]; ok {
		return []models.ScoreBreakdown{{Category: "bonus", Description: "preset", Points: p}}
	}
	return nil
}

func (h *fixedHooks) PenaltyPoints(state *models.GameState, playerID string, log []models.GameEvent) []models.ScoreBreakdown {
	if p, ok := h.penalty[playerID]; ok {
		return []models.ScoreBreakdown{{Category: "penalty", Description: "preset", Points: p}}
	}
	return nil
}

func (h *fixedHooks) DetectAchievements(event models.GameEvent, log []models.GameEvent) []string {
	if event.Type == "marker" {
		return []string{"marked"}
	}
	return nil
}

func stateWith(scores map[string]int) (*models.GameState, []string) {
	ids := []string{"p1", "p2", "p3", "p4"}
	players := make([]*models.Player, 0, len(scores))
	for _, id := range ids {
		if _, ok := scores[id]; ok {
			players = append(players, models.NewPlayer(id, "Player "+id, true))
		}
	}
	return models.NewGameState("test", players), ids
}

func TestCalculateScoreCombinesCategories(t *testing.T) {
	hooks := &fixedHooks{
		base:    map[string]int{"p1": 100},
		bonus:   map[string]int{"p1": 50},
		penalty: map[string]int{"p1": 30},
	}
	tracker := NewTracker(hooks, nil)
	state, _ := stateWith(map[string]int{"p1": 0})

	results := tracker.CalculateScore(state)
	require.Len(t, results, 1)
	assert.Equal(t, 120, results[0].Total, "base + bonus - penalty")
	assert.Len(t, results[0].Breakdown, 3)
}

func TestLeaderboardTieRanking(t *testing.T) {
	// Scores p1=80 p2=80 p3=50 p4=10: tied top entries share rank 1,
	// the next distinct score takes its sort position.
	hooks := &fixedHooks{base: map[string]int{"p1": 80, "p2": 80, "p3": 50, "p4": 10}}
	tracker := NewTracker(hooks, nil)
	state, _ := stateWith(map[string]int{"p1": 0, "p2": 0, "p3": 0, "p4": 0})
	tracker.CalculateScore(state)

	board := tracker.Leaderboard()
	require.Len(t, board, 4)
	assert.Equal(t, []int{1, 1, 3, 4}, []int{board[0].Rank, board[1].Rank, board[2].Rank, board[3].Rank})
	assert.Equal(t, []int{80, 80, 50, 10}, []int{board[0].Score, board[1].Score, board[2].Score, board[3].Score})
	// Stable over first-seen order for the tied pair.
	assert.Equal(t, "p1", board[0].PlayerID)
	assert.Equal(t, "p2", board[1].PlayerID)
}

func TestTrackEventAppendsAndDetectsAchievements(t *testing.T) {
	bus := events.NewBus()
	var unlocked []models.GameEvent
	bus.Subscribe(models.EventAchievementUnlocked, func(ev models.GameEvent) {
		unlocked = append(unlocked, ev)
	})

	tracker := NewTracker(&fixedHooks{base: map[string]int{}}, bus)
	tracker.TrackEvent(models.NewGameEvent("marker", "g", "p1", nil))
	tracker.TrackEvent(models.NewGameEvent("other", "g", "p1", nil))

	assert.Len(t, tracker.Events(), 2)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "p1", unlocked[0].PlayerID)
	assert.Equal(t, []string{"marked"}, tracker.Achievements("p1"))
}

func TestCalculateScorePublishesLeaderboard(t *testing.T) {
	bus := events.NewBus()
	var got []models.GameEvent
	bus.Subscribe(models.EventScoresUpdated, func(ev models.GameEvent) {
		got = append(got, ev)
	})

	tracker := NewTracker(&fixedHooks{base: map[string]int{"p1": 10}}, bus)
	state, _ := stateWith(map[string]int{"p1": 0})
	tracker.CalculateScore(state)

	require.Len(t, got, 1)
	board, ok := got[0].Data["leaderboard"].([]models.LeaderboardEntry)
	require.True(t, ok)
	require.Len(t, board, 1)
	assert.Equal(t, 10, board[0].Score)
}

func TestResetClearsEverything(t *testing.T) {
	tracker := NewTracker(&fixedHooks{base: map[string]int{"p1": 10}}, nil)
	state, _ := stateWith(map[string]int{"p1": 0})
	tracker.CalculateScore(state)
	tracker.TrackEvent(models.NewGameEvent("marker", "g", "p1", nil))

	tracker.Reset()
	assert.Empty(t, tracker.Events())
	assert.Empty(t, tracker.Leaderboard())
	assert.Empty(t, tracker.Achievements("p1"))
}
