package models

// ScoreBreakdown is one line of a player's score for transparency.
type ScoreBreakdown struct {
	Category    string `json:"category"` // "base", "bonus" or "penalty"
	Description string `json:"description"`
	Points      int    `json:"points"`
}

// ScoreResult is a player's derived score. Recomputed on demand; never
// authoritative game state.
type ScoreResult struct {
	PlayerID   string           `json:"playerId"`
	PlayerName string           `json:"playerName"`
	Total      int              `json:"total"`
	Breakdown  []ScoreBreakdown `json:"breakdown"`
}

// LeaderboardEntry is one ranked row of the current leaderboard.
type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Score      int    `json:"score"`
}
