package server

import (
	"fmt"
	"strconv"

	"arena-engine/models"
	"arena-engine/registry"
	"arena-engine/storage"
)

// CommandHandler dispatches line-delimited JSON commands to the session
// registry.
type CommandHandler struct {
	sessions *Sessions
	store    *storage.Store
}

func NewCommandHandler(sessions *Sessions, store *storage.Store) *CommandHandler {
	return &CommandHandler{sessions: sessions, store: store}
}

func (h *CommandHandler) Handle(cmd models.Command) models.Response {
	switch cmd.Command {
	case "game.catalog":
		return h.handleCatalog()
	case "game.create":
		return h.handleCreate(cmd.Data)
	case "game.start":
		return h.handleStart(cmd.Data)
	case "game.action":
		return h.handleAction(cmd.Data)
	case "game.pause":
		return h.handlePause(cmd.Data)
	case "game.resume":
		return h.handleResume(cmd.Data)
	case "game.end":
		return h.handleEnd(cmd.Data)
	case "game.get":
		return h.handleGet(cmd.Data)
	case "game.list":
		return h.handleList()
	case "game.remove":
		return h.handleRemove(cmd.Data)
	case "scores.top":
		return h.handleTopScores(cmd.Data)
	default:
		return models.Response{Success: false, Error: fmt.Sprintf("unknown command: %s", cmd.Command)}
	}
}

func (h *CommandHandler) handleCatalog() models.Response {
	type entry struct {
		ID         string `json:"id"`
		Title      string `json:"title"`
		MinPlayers int    `json:"minPlayers"`
		MaxPlayers int    `json:"maxPlayers"`
	}
	catalog := make([]entry, 0)
	for _, d := range registry.List() {
		catalog = append(catalog, entry{ID: d.ID, Title: d.Title, MinPlayers: d.MinPlayers, MaxPlayers: d.MaxPlayers})
	}
	return models.Response{Success: true, Data: map[string]interface{}{"games": catalog}}
}

func (h *CommandHandler) handleCreate(data map[string]interface{}) models.Response {
	gameType := getString(data, "gameType")
	rawPlayers, _ := data["players"].([]interface{})

	players := make([]PlayerRequest, 0, len(rawPlayers))
	for _, raw := range rawPlayers {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			return models.Response{Success: false, Error: "players must be a list of objects"}
		}
		p := PlayerRequest{
			ID:          getString(entry, "id"),
			Name:        getString(entry, "name"),
			IsAI:        getBool(entry, "isAI"),
			Model:       getString(entry, "model"),
			Personality: models.DefaultPersonality(),
		}
		if traits, ok := entry["personality"].(map[string]interface{}); ok {
			p.Personality = models.Personality{
				Aggressiveness:   getFloat(traits, "aggressiveness"),
				RiskTolerance:    getFloat(traits, "riskTolerance"),
				BluffingTendency: getFloat(traits, "bluffingTendency"),
				Adaptability:     getFloat(traits, "adaptability"),
			}
		}
		players = append(players, p)
	}

	overrides, _ := data["config"].(map[string]interface{})
	sess, err := h.sessions.Create(gameType, players, overrides)
	if err != nil {
		return models.Response{Success: false, Error: err.Error()}
	}
	return models.Response{Success: true, Data: map[string]string{"sessionId": sess.ID}}
}

func (h *CommandHandler) handleStart(data map[string]interface{}) models.Response {
	sess, resp := h.session(data)
	if sess == nil {
		return resp
	}
	if err := sess.Manager.StartGame(); err != nil {
		return models.Response{Success: false, Error: err.Error()}
	}
	return models.Response{Success: true, Data: map[string]string{"gameId": sess.Manager.GameID()}}
}

func (h *CommandHandler) handleAction(data map[string]interface{}) models.Response {
	sess, resp := h.session(data)
	if sess == nil {
		return resp
	}
	playerID := getString(data, "playerId")
	actionType := getString(data, "action")
	if playerID == "" || actionType == "" {
		return models.Response{Success: false, Error: "action requires playerId and action"}
	}
	payload, _ := data["payload"].(map[string]interface{})
	sess.Manager.SubmitAction(models.NewAction(playerID, actionType, payload))
	return models.Response{Success: true}
}

func (h *CommandHandler) handlePause(data map[string]interface{}) models.Response {
	sess, resp := h.session(data)
	if sess == nil {
		return resp
	}
	if err := sess.Manager.PauseGame(); err != nil {
		return models.Response{Success: false, Error: err.Error()}
	}
	return models.Response{Success: true}
}

func (h *CommandHandler) handleResume(data map[string]interface{}) models.Response {
	sess, resp := h.session(data)
	if sess == nil {
		return resp
	}
	if err := sess.Manager.ResumeGame(); err != nil {
		return models.Response{Success: false, Error: err.Error()}
	}
	return models.Response{Success: true}
}

func (h *CommandHandler) handleEnd(data map[string]interface{}) models.Response {
	sess, resp := h.session(data)
	if sess == nil {
		return resp
	}
	if err := sess.Manager.EndGame(); err != nil {
		return models.Response{Success: false, Error: err.Error()}
	}
	return models.Response{Success: true, Data: map[string]interface{}{
		"leaderboard": sess.Manager.Leaderboard(),
	}}
}

func (h *CommandHandler) handleGet(data map[string]interface{}) models.Response {
	sess, resp := h.session(data)
	if sess == nil {
		return resp
	}
	return models.Response{Success: true, Data: map[string]interface{}{
		"sessionId":   sess.ID,
		"gameType":    sess.GameType,
		"status":      sess.Manager.Status(),
		"state":       sess.Manager.Engine().State(),
		"leaderboard": sess.Manager.Leaderboard(),
	}}
}

func (h *CommandHandler) handleList() models.Response {
	return models.Response{Success: true, Data: map[string]interface{}{"sessions": h.sessions.List()}}
}

func (h *CommandHandler) handleRemove(data map[string]interface{}) models.Response {
	if err := h.sessions.Remove(getString(data, "sessionId")); err != nil {
		return models.Response{Success: false, Error: err.Error()}
	}
	return models.Response{Success: true}
}

func (h *CommandHandler) handleTopScores(data map[string]interface{}) models.Response {
	if h.store == nil {
		return models.Response{Success: false, Error: "score storage is not enabled"}
	}
	entries, err := h.store.TopScores(getString(data, "gameType"), getInt(data, "limit"))
	if err != nil {
		return models.Response{Success: false, Error: err.Error()}
	}
	return models.Response{Success: true, Data: map[string]interface{}{"scores": entries}}
}

func (h *CommandHandler) session(data map[string]interface{}) (*Session, models.Response) {
	id := getString(data, "sessionId")
	sess, ok := h.sessions.Get(id)
	if !ok {
		return nil, models.Response{Success: false, Error: fmt.Sprintf("unknown session %q", id)}
	}
	return sess, models.Response{}
}

func getString(data map[string]interface{}, key string) string {
	if val, ok := data[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

func getInt(data map[string]interface{}, key string) int {
	if val, ok := data[key]; ok {
		switch v := val.(type) {
		case float64:
			return int(v)
		case int:
			return v
		case string:
			if i, err := strconv.Atoi(v); err == nil {
				return i
			}
		}
	}
	return 0
}

func getFloat(data map[string]interface{}, key string) float64 {
	if val, ok := data[key]; ok {
		switch v := val.(type) {
		case float64:
			return v
		case int:
			return float64(v)
		}
	}
	return 0
}

func getBool(data map[string]interface{}, key string) bool {
	if val, ok := data[key]; ok {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return false
}
