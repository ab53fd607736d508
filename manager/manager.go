// Package manager drives the turn-taking loop of one game instance:
// dispatching AI turns with timeout/retry/fallback semantics, waiting on
// human actions, and owning the setup/playing/paused/finished lifecycle.
package manager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/log"

	"arena-engine/agent"
	"arena-engine/engine"
	"arena-engine/events"
	"arena-engine/models"
	"arena-engine/scoring"
)

// Status is the manager lifecycle state. Finished is terminal; playing
// and paused may cycle.
type Status string

const (
	StatusSetup    Status = "setup"
	StatusPlaying  Status = "playing"
	StatusPaused   Status = "paused"
	StatusFinished Status = "finished"
)

// PlayerSpec configures one seat.
type PlayerSpec struct {
	ID          string
	Name        string
	IsAI        bool
	Model       string
	Personality models.Personality
}

// Config tunes the scheduling loop.
type Config struct {
	TurnTimeout       time.Duration // per-AI-turn thinking budget
	MaxAIRetries      int           // consecutive failures before fallback
	YieldDelay        time.Duration // cooperative pause between iterations
	MaxIdenticalTicks int           // identical-phase ticks before aborting
}

func DefaultConfig() Config {
	return Config{
		TurnTimeout:       30 * time.Second,
		MaxAIRetries:      3,
		YieldDelay:        10 * time.Millisecond,
		MaxIdenticalTicks: 10,
	}
}

// Decider is the slice of the agent contract the scheduler needs.
// *agent.Agent satisfies it; tests inject fakes.
type Decider interface {
	MakeDecision(ctx context.Context, state *models.GameState, validActions []models.Action) (*models.Decision, error)
}

// AgentFactory builds the decider for one AI seat.
type AgentFactory func(spec PlayerSpec) Decider

// Manager schedules one game. Exactly one loop goroutine is live while
// playing; the running flag guards re-entry.
type Manager struct {
	engine  *engine.Engine
	tracker *scoring.Tracker
	bus     *events.Bus
	clk     clock.Clock
	log     *log.Logger
	cfg     Config
	specs   []PlayerSpec

	agentFactory AgentFactory
	cleanup      func()

	mu            sync.Mutex
	status        Status
	running       bool
	ticking       bool
	gameID        string
	agents        map[string]Decider
	retries       map[string]int
	stopCh        chan struct{}
	loopDone      chan struct{}
	actionCh      chan models.Action
	unsubscribe   []func()
	lastTickPhase string
	tickRepeats   int
}

// Option tweaks a Manager at construction.
type Option func(*Manager)

func WithClock(c clock.Clock) Option {
	return func(m *Manager) { m.clk = c }
}

func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithAgentFactory overrides how AI deciders are built.
func WithAgentFactory(f AgentFactory) Option {
	return func(m *Manager) { m.agentFactory = f }
}

// WithDecisionClient installs the default agent factory backed by the
// given client. gameType and obfuscate flow into every built agent.
func WithDecisionClient(client agent.DecisionClient, gameType string, obfuscate bool, temperature float64, logger *log.Logger) Option {
	return func(m *Manager) {
		m.agentFactory = func(spec PlayerSpec) Decider {
			return agent.New(agent.Config{
				PlayerID:    spec.ID,
				PlayerName:  spec.Name,
				GameType:    gameType,
				Model:       spec.Model,
				Temperature: temperature,
				Personality: spec.Personality,
				Obfuscate:   obfuscate,
			}, client, logger)
		}
	}
}

// WithCleanup registers a hook run once when the game ends.
func WithCleanup(f func()) Option {
	return func(m *Manager) { m.cleanup = f }
}

func New(eng *engine.Engine, tracker *scoring.Tracker, bus *events.Bus, specs []PlayerSpec, cfg Config, opts ...Option) *Manager {
	if bus == nil {
		bus = events.NewBus()
	}
	m := &Manager{
		engine:   eng,
		tracker:  tracker,
		bus:      bus,
		clk:      clock.New(),
		log:      log.Default(),
		cfg:      cfg,
		specs:    specs,
		status:   StatusSetup,
		agents:   make(map[string]Decider),
		retries:  make(map[string]int),
		actionCh: make(chan models.Action, 16),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Manager) Engine() *engine.Engine    { return m.engine }
func (m *Manager) Tracker() *scoring.Tracker { return m.tracker }
func (m *Manager) Bus() *events.Bus          { return m.bus }

// GameID is set once StartGame has initialized the engine.
func (m *Manager) GameID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gameID
}

// StartGame initializes players and agents, transitions to playing and
// launches the scheduling loop. Only valid from setup.
func (m *Manager) StartGame() error {
	m.mu.Lock()
	if m.status != StatusSetup {
		m.mu.Unlock()
		return fmt.Errorf("%w: cannot start game from %q", models.ErrIllegalState, m.status)
	}

	players := make([]*models.Player, len(m.specs))
	for i, spec := range m.specs {
		p := models.NewPlayer(spec.ID, spec.Name, spec.IsAI)
		players[i] = p
		if spec.IsAI {
			if m.agentFactory == nil {
				m.mu.Unlock()
				return fmt.Errorf("%w: AI player %s configured without an agent factory",
					models.ErrInvalidConfiguration, spec.ID)
			}
			m.agents[spec.ID] = m.agentFactory(spec)
		}
	}
	m.mu.Unlock()

	if err := m.engine.Initialize(players); err != nil {
		return err
	}

	m.mu.Lock()
	m.gameID = m.engine.State().GameID
	m.status = StatusPlaying
	m.running = true
	m.stopCh = make(chan struct{})
	m.loopDone = make(chan struct{})
	stopCh, loopDone := m.stopCh, m.loopDone

	// Scoring consumes the engine's event stream; external actions
	// arrive over the bus.
	if m.tracker != nil {
		for _, topic := range []string{
			models.EventActionExecuted,
			models.EventTurnChanged,
			models.EventGameEnded,
			models.EventAIFallback,
		} {
			m.unsubscribe = append(m.unsubscribe, m.bus.Subscribe(topic, m.tracker.TrackEvent))
		}
	}
	m.unsubscribe = append(m.unsubscribe, m.bus.Subscribe(models.EventActionSubmitted, m.enqueueSubmitted))
	m.mu.Unlock()

	m.publish(models.EventGameStarted, "", map[string]interface{}{
		"players": len(players),
	})
	go m.run(stopCh, loopDone)
	return nil
}

// PauseGame suspends the loop and cancels any in-flight thinking wait.
// The external model request itself cannot be cancelled, only the local
// wait on it.
func (m *Manager) PauseGame() error {
	m.mu.Lock()
	if m.status != StatusPlaying {
		m.mu.Unlock()
		return fmt.Errorf("%w: cannot pause from %q", models.ErrIllegalState, m.status)
	}
	m.status = StatusPaused
	close(m.stopCh)
	m.mu.Unlock()

	m.publish(models.EventGamePaused, "", nil)
	return nil
}

// ResumeGame restarts the loop from paused.
func (m *Manager) ResumeGame() error {
	m.mu.Lock()
	if m.status != StatusPaused {
		m.mu.Unlock()
		return fmt.Errorf("%w: cannot resume from %q", models.ErrIllegalState, m.status)
	}
	prevDone := m.loopDone
	m.mu.Unlock()

	// Wait for the previous loop goroutine to drain; the running guard
	// forbids two live loops.
	<-prevDone

	m.mu.Lock()
	if m.status != StatusPaused {
		m.mu.Unlock()
		return fmt.Errorf("%w: cannot resume from %q", models.ErrIllegalState, m.status)
	}
	m.status = StatusPlaying
	m.running = true
	m.stopCh = make(chan struct{})
	m.loopDone = make(chan struct{})
	stopCh, loopDone := m.stopCh, m.loopDone
	m.mu.Unlock()

	m.publish(models.EventGameResumed, "", nil)
	go m.run(stopCh, loopDone)
	return nil
}

// EndGame finishes the game: idempotent, safe from any state. Stops the
// loop, clears retry counters, computes the final leaderboard and runs
// the cleanup hook.
func (m *Manager) EndGame() error {
	m.mu.Lock()
	if m.status == StatusFinished {
		m.mu.Unlock()
		return nil
	}
	wasPlaying := m.status == StatusPlaying
	m.status = StatusFinished
	if wasPlaying && m.stopCh != nil {
		close(m.stopCh)
	}
	m.retries = make(map[string]int)
	unsubs := m.unsubscribe
	m.unsubscribe = nil
	cleanup := m.cleanup
	m.mu.Unlock()

	var board []models.LeaderboardEntry
	if m.tracker != nil {
		if state := m.engine.State(); state != nil {
			m.tracker.CalculateScore(state)
		}
		board = m.tracker.Leaderboard()
	}

	// The engine emits its own game:ended when play finishes naturally;
	// only a forced early end emits it here.
	if state := m.engine.State(); state != nil && state.EndTime == nil {
		m.publish(models.EventGameEnded, "", map[string]interface{}{
			"winners":     m.engine.Winners(),
			"leaderboard": board,
			"forced":      true,
		})
	}

	for _, unsub := range unsubs {
		unsub()
	}
	if cleanup != nil {
		cleanup()
	}
	return nil
}

// SubmitAction feeds an external (human) action into the scheduler via
// the bus, so UIs may also publish action:submitted directly.
func (m *Manager) SubmitAction(action models.Action) {
	m.publish(models.EventActionSubmitted, action.PlayerID, map[string]interface{}{
		"action": action,
	})
}

// Leaderboard returns the current standings.
func (m *Manager) Leaderboard() []models.LeaderboardEntry {
	if m.tracker == nil {
		return nil
	}
	return m.tracker.Leaderboard()
}

func (m *Manager) enqueueSubmitted(ev models.GameEvent) {
	raw, ok := ev.Data["action"]
	if !ok {
		return
	}
	action, ok := raw.(models.Action)
	if !ok {
		return
	}
	select {
	case m.actionCh <- action:
	default:
		m.log.Warn("action queue full, dropping submission", "player", action.PlayerID)
	}
}

func (m *Manager) publish(eventType, playerID string, data map[string]interface{}) {
	m.mu.Lock()
	gameID := m.gameID
	m.mu.Unlock()
	m.bus.Publish(models.NewGameEvent(eventType, gameID, playerID, data))
}
