package server

import (
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"arena-engine/agent"
	"arena-engine/config"
	"arena-engine/events"
	"arena-engine/manager"
	"arena-engine/models"
	"arena-engine/registry"
	"arena-engine/storage"
)

// Session is one live game table: a manager plus its private bus.
type Session struct {
	ID       string
	GameType string
	Manager  *manager.Manager
	Bus      *events.Bus
}

// SessionInfo is the listing view of a session.
type SessionInfo struct {
	ID       string `json:"id"`
	GameType string `json:"gameType"`
	Status   string `json:"status"`
}

// PlayerRequest is one seat in a create command.
type PlayerRequest struct {
	ID          string
	Name        string
	IsAI        bool
	Model       string
	Personality models.Personality
}

// Sessions owns all live games for the server process. Finished games
// are persisted through the store (when present) and kept queryable
// until explicitly removed.
type Sessions struct {
	cfg    config.Config
	store  *storage.Store
	client agent.DecisionClient
	log    *log.Logger
	events chan models.GameEvent

	mu    sync.Mutex
	games map[string]*Session
}

func NewSessions(cfg config.Config, store *storage.Store, client agent.DecisionClient, logger *log.Logger) *Sessions {
	if logger == nil {
		logger = log.Default()
	}
	return &Sessions{
		cfg:    cfg,
		store:  store,
		client: client,
		log:    logger,
		events: make(chan models.GameEvent, 256),
		games:  make(map[string]*Session),
	}
}

// Events is the merged stream of every session's bus, for broadcast to
// connected clients. Slow consumers drop events rather than block play.
func (s *Sessions) Events() <-chan models.GameEvent {
	return s.events
}

// Create wires a new game table for the roster. The session id is
// server-assigned; the game itself is not started yet.
func (s *Sessions) Create(gameType string, players []PlayerRequest, overrides map[string]interface{}) (*Session, error) {
	descriptor, ok := registry.Get(gameType)
	if !ok {
		return nil, fmt.Errorf("unknown game type %q", gameType)
	}

	specs := make([]manager.PlayerSpec, len(players))
	hasAI := false
	for i, p := range players {
		if p.ID == "" {
			return nil, fmt.Errorf("player %d has no id", i)
		}
		model := p.Model
		if model == "" {
			model = s.cfg.AI.DefaultModel
		}
		specs[i] = manager.PlayerSpec{
			ID:          p.ID,
			Name:        p.Name,
			IsAI:        p.IsAI,
			Model:       model,
			Personality: p.Personality,
		}
		hasAI = hasAI || p.IsAI
	}
	if hasAI && s.client == nil {
		return nil, fmt.Errorf("%w: AI players configured but no decision client", models.ErrInvalidConfiguration)
	}

	bus := events.NewBus()
	sess := &Session{
		ID:       uuid.New().String(),
		GameType: gameType,
		Bus:      bus,
	}
	bus.SubscribeAll(func(ev models.GameEvent) {
		select {
		case s.events <- ev:
		default:
		}
	})

	mgrCfg := manager.Config{
		TurnTimeout:       s.cfg.Scheduler.TurnTimeout(),
		MaxAIRetries:      s.cfg.Scheduler.MaxAIRetries,
		YieldDelay:        s.cfg.Scheduler.YieldDelay(),
		MaxIdenticalTicks: s.cfg.Scheduler.MaxIdenticalTicks,
	}

	opts := []manager.Option{
		manager.WithLogger(s.log.With("session", sess.ID, "game", gameType)),
		manager.WithCleanup(func() { s.persist(sess) }),
	}
	if hasAI {
		opts = append(opts, manager.WithDecisionClient(
			s.client, gameType, descriptor.Obfuscate, s.cfg.AI.Temperature, s.log))
	}

	mgr, err := registry.Build(gameType, specs, overrides, mgrCfg, bus, opts...)
	if err != nil {
		return nil, err
	}
	sess.Manager = mgr

	s.mu.Lock()
	s.games[sess.ID] = sess
	s.mu.Unlock()
	return sess, nil
}

// Get finds a session by server-assigned id.
func (s *Sessions) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.games[id]
	return sess, ok
}

// List returns all sessions sorted by id.
func (s *Sessions) List() []SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	infos := make([]SessionInfo, 0, len(s.games))
	for _, sess := range s.games {
		infos = append(infos, SessionInfo{
			ID:       sess.ID,
			GameType: sess.GameType,
			Status:   string(sess.Manager.Status()),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Remove ends a session if needed and forgets it.
func (s *Sessions) Remove(id string) error {
	s.mu.Lock()
	sess, ok := s.games[id]
	delete(s.games, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown session %q", id)
	}
	return sess.Manager.EndGame()
}

// Shutdown ends every live game.
func (s *Sessions) Shutdown() {
	s.mu.Lock()
	all := make([]*Session, 0, len(s.games))
	for _, sess := range s.games {
		all = append(all, sess)
	}
	s.mu.Unlock()
	for _, sess := range all {
		if err := sess.Manager.EndGame(); err != nil {
			s.log.Warn("failed to end game on shutdown", "session", sess.ID, "err", err)
		}
	}
}

func (s *Sessions) persist(sess *Session) {
	if s.store == nil {
		return
	}
	state := sess.Manager.Engine().State()
	if state == nil {
		return
	}
	err := s.store.SaveMatch(state, sess.Manager.Engine().Winners(), sess.Manager.Leaderboard())
	if err != nil {
		s.log.Warn("failed to persist match", "session", sess.ID, "err", err)
	}
}
