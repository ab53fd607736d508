// Package connect4 implements gravity-drop four-in-a-row on an 8x8
// board, strictly alternating between exactly two players.
package connect4

import (
	"fmt"

	"arena-engine/models"
)

const (
	GameType = "connect4"

	Rows = 8
	Cols = 8

	ActionDrop = "drop"

	PhasePlaying = "playing"
	PhaseWon     = "won"
	PhaseDraw    = "draw"
)

// Rules is the connect4 strategy plugged into the engine.
type Rules struct{}

func NewRules() *Rules { return &Rules{} }

func (r *Rules) GameType() string { return GameType }

func (r *Rules) PlayerLimits() (int, int) { return 2, 2 }

// InitialState seats both players, assigns pieces 1 and 2 in roster
// order and hands the first turn to seat 0.
func (r *Rules) InitialState(players []*models.Player) (*models.GameState, error) {
	board := make([][]int, Rows)
	for row := range board {
		board[row] = make([]int, Cols)
	}

	for i, p := range players {
		p.Data["piece"] = i + 1
		p.Data["moves"] = 0
		p.Data["timeouts"] = 0
	}

	state := models.NewGameState(GameType, players)
	state.Phase = PhasePlaying
	state.CurrentTurn = players[0].ID
	state.Metadata["board"] = board
	return state, nil
}

func (r *Rules) ValidateAction(state *models.GameState, action models.Action) *models.ValidationResult {
	result := models.ValidResult()
	switch action.Type {
	case ActionDrop:
		column, ok := action.PayloadInt("column")
		if !ok {
			result.AddError("drop requires a column")
			return result
		}
		if column < 0 || column >= Cols {
			result.AddError(fmt.Sprintf("column %d out of range 0..%d", column, Cols-1))
			return result
		}
		if boardOf(state)[0][column] != 0 {
			result.AddError(fmt.Sprintf("column %d is full", column))
		}
	case models.ActionTimeout:
		// Forfeits the move; always acceptable.
	default:
		result.AddError(fmt.Sprintf("unknown action %q", action.Type))
	}
	return result
}

// ApplyAction places a piece with gravity and runs the win scan from
// the landed cell. A timeout burns the turn without a placement.
func (r *Rules) ApplyAction(state *models.GameState, action models.Action) error {
	player := state.PlayerByID(action.PlayerID)
	if player == nil {
		return fmt.Errorf("player %s not seated", action.PlayerID)
	}

	if action.Type == models.ActionTimeout {
		player.Data["timeouts"] = dataInt(player, "timeouts") + 1
		return nil
	}

	column, _ := action.PayloadInt("column")
	board := boardOf(state)

	row := -1
	for candidate := Rows - 1; candidate >= 0; candidate-- {
		if board[candidate][column] == 0 {
			row = candidate
			break
		}
	}
	if row < 0 {
		return fmt.Errorf("column %d is full", column)
	}

	piece := dataInt(player, "piece")
	board[row][column] = piece
	player.Data["moves"] = dataInt(player, "moves") + 1

	if cells := winningLine(board, row, column, piece); len(cells) >= 4 {
		state.Phase = PhaseWon
		state.Metadata["winner"] = player.ID
		state.Metadata["winningCells"] = cells
		return nil
	}
	if boardFull(board) {
		state.Phase = PhaseDraw
	}
	return nil
}

// ValidActions offers one drop per open column; the template payload
// carries the column so a model response only needs to pick one.
func (r *Rules) ValidActions(state *models.GameState, playerID string) []models.Action {
	board := boardOf(state)
	actions := make([]models.Action, 0, Cols)
	for column := 0; column < Cols; column++ {
		if board[0][column] == 0 {
			actions = append(actions, models.NewAction(playerID, ActionDrop, map[string]interface{}{
				"column": column,
			}))
		}
	}
	return actions
}

func (r *Rules) IsGameOver(state *models.GameState) bool {
	return state.Phase == PhaseWon || state.Phase == PhaseDraw
}

func (r *Rules) Winners(state *models.GameState) []string {
	if state.Phase != PhaseWon {
		return nil
	}
	winner, _ := state.Metadata["winner"].(string)
	if winner == "" {
		return nil
	}
	return []string{winner}
}

// AdvanceTurn defers to the generic two-seat rotation.
func (r *Rules) AdvanceTurn(state *models.GameState) bool { return false }

// PhaseTick only recovers a dropped turn assignment; connect4 has no
// engine-driven phases of its own.
func (r *Rules) PhaseTick(state *models.GameState) error {
	if r.IsGameOver(state) || state.CurrentTurn != "" {
		return nil
	}
	for _, p := range state.Players {
		if p != nil && p.IsActive {
			state.CurrentTurn = p.ID
			return nil
		}
	}
	return fmt.Errorf("no active player left to take the turn")
}

// winningLine scans the four directions through (row, column) and
// returns the connected run of the player's pieces when it reaches
// four, as [row, column] pairs.
func winningLine(board [][]int, row, column, piece int) [][]int {
	directions := [4][2]int{
		{0, 1},  // horizontal
		{1, 0},  // vertical
		{1, 1},  // diagonal down-right
		{1, -1}, // diagonal down-left
	}

	for _, dir := range directions {
		cells := [][]int{{row, column}}
		for _, sign := range []int{1, -1} {
			r, c := row+dir[0]*sign, column+dir[1]*sign
			for r >= 0 && r < Rows && c >= 0 && c < Cols && board[r][c] == piece {
				cells = append(cells, []int{r, c})
				r += dir[0] * sign
				c += dir[1] * sign
			}
		}
		if len(cells) >= 4 {
			return cells
		}
	}
	return nil
}

func boardFull(board [][]int) bool {
	for column := 0; column < Cols; column++ {
		if board[0][column] == 0 {
			return false
		}
	}
	return true
}

func boardOf(state *models.GameState) [][]int {
	board, _ := state.Metadata["board"].([][]int)
	return board
}

func dataInt(player *models.Player, key string) int {
	switch n := player.Data[key].(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}
