// Package storage provides SQLite-based persistence for finished match
// results. Uses the pure-Go modernc.org/sqlite driver to avoid CGO
// dependencies. The core never writes here on its own; callers persist
// results when a game ends.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"arena-engine/models"
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// MatchResult is the persisted outcome of one finished game.
type MatchResult struct {
	ID           int64
	GameID       string
	GameType     string
	Winners      string // comma-joined player ids, empty on draw
	TurnCount    int
	DurationSecs int
	CreatedAt    time.Time
}

// ScoreEntry is one player's final score for one match.
type ScoreEntry struct {
	ID         int64
	GameID     string
	GameType   string
	PlayerID   string
	PlayerName string
	Score      int
	Rank       int
	CreatedAt  time.Time
}

// Open creates or opens the database at the given path, creating parent
// directories and running migrations.
func Open(dbPath string) (*Store, error) {
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	return store, nil
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL UNIQUE,
			game_type TEXT NOT NULL,
			winners TEXT NOT NULL DEFAULT '',
			turn_count INTEGER NOT NULL DEFAULT 0,
			duration_secs INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_matches_game_type ON matches(game_type);

		CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL,
			game_type TEXT NOT NULL,
			player_id TEXT NOT NULL,
			player_name TEXT NOT NULL,
			score INTEGER NOT NULL,
			rank INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_scores_game_id ON scores(game_id);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(game_type, score DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveMatch records one finished game with its final leaderboard.
func (s *Store) SaveMatch(state *models.GameState, winners []string, board []models.LeaderboardEntry) error {
	duration := 0
	if state.EndTime != nil {
		duration = int(state.EndTime.Sub(state.StartTime).Seconds())
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO matches (game_id, game_type, winners, turn_count, duration_secs) VALUES (?, ?, ?, ?, ?)",
		state.GameID, state.GameType, joinIDs(winners), state.TurnCount, duration,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save match: %w", err)
	}

	for _, entry := range board {
		_, err = tx.Exec(
			"INSERT INTO scores (game_id, game_type, player_id, player_name, score, rank) VALUES (?, ?, ?, ?, ?, ?)",
			state.GameID, state.GameType, entry.PlayerID, entry.PlayerName, entry.Score, entry.Rank,
		)
		if err != nil {
			return fmt.Errorf("storage: cannot save score: %w", err)
		}
	}
	return tx.Commit()
}

// TopScores retrieves the best recorded scores for a game type,
// descending.
func (s *Store) TopScores(gameType string, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(
		"SELECT id, game_id, game_type, player_id, player_name, score, rank, created_at FROM scores WHERE game_type = ? ORDER BY score DESC, created_at ASC LIMIT ?",
		gameType, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		if err := rows.Scan(&e.ID, &e.GameID, &e.GameType, &e.PlayerID, &e.PlayerName, &e.Score, &e.Rank, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan score: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MatchByGameID loads one persisted match result.
func (s *Store) MatchByGameID(gameID string) (*MatchResult, error) {
	row := s.db.QueryRow(
		"SELECT id, game_id, game_type, winners, turn_count, duration_secs, created_at FROM matches WHERE game_id = ?",
		gameID,
	)
	var m MatchResult
	if err := row.Scan(&m.ID, &m.GameID, &m.GameType, &m.Winners, &m.TurnCount, &m.DurationSecs, &m.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: cannot load match: %w", err)
	}
	return &m, nil
}

// RecentMatches lists the latest finished games, newest first.
func (s *Store) RecentMatches(limit int) ([]MatchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		"SELECT id, game_id, game_type, winners, turn_count, duration_secs, created_at FROM matches ORDER BY created_at DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query matches: %w", err)
	}
	defer rows.Close()

	var matches []MatchResult
	for rows.Next() {
		var m MatchResult
		if err := rows.Scan(&m.ID, &m.GameID, &m.GameType, &m.Winners, &m.TurnCount, &m.DurationSecs, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func joinIDs(ids []string) string {
	return strings.Join(ids, ",")
}
