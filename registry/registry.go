// Package registry is the global catalog of playable games. Games
// register a descriptor in init(), so callers can discover and build a
// fully wired table (engine, scoring, manager) without hardcoded
// dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"arena-engine/engine"
	"arena-engine/events"
	"arena-engine/manager"
	"arena-engine/scoring"
)

// Descriptor describes one registered game and how to build it.
type Descriptor struct {
	ID         string
	Title      string
	MinPlayers int
	MaxPlayers int

	// Obfuscate hides other players' private data from AI prompts.
	// False for games with no hidden information.
	Obfuscate bool

	// DefaultConfig is the game's knob set with default values; keys
	// are game-defined. ValidateConfig (optional) rejects bad overrides
	// before anything is constructed.
	DefaultConfig  map[string]interface{}
	ValidateConfig func(cfg map[string]interface{}) error

	// NewRules and NewHooks build fresh per-game-instance strategy
	// objects from the merged config.
	NewRules func(cfg map[string]interface{}) (engine.Rules, error)
	NewHooks func(cfg map[string]interface{}) scoring.Hooks
}

var (
	mu          sync.RWMutex
	descriptors = make(map[string]Descriptor)
)

// Register adds a game descriptor. Typically called from a game
// package's init(); panics on a duplicate ID.
func Register(d Descriptor) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := descriptors[d.ID]; exists {
		panic(fmt.Sprintf("registry: game %q already registered", d.ID))
	}
	if d.NewRules == nil {
		panic(fmt.Sprintf("registry: game %q registered without a rules factory", d.ID))
	}
	descriptors[d.ID] = d
}

// Get returns the descriptor for a game ID.
func Get(id string) (Descriptor, bool) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok := descriptors[id]
	return d, ok
}

// List returns all registered descriptors sorted by ID.
func List() []Descriptor {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Descriptor, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Exists checks whether a game ID is registered.
func Exists(id string) bool {
	_, ok := Get(id)
	return ok
}

// Build wires a complete table for one game: engine with the game's
// rules, scoring tracker with its hooks, and a manager for the roster,
// all sharing the given bus. Config overrides are merged over the
// game's defaults and validated.
func Build(id string, specs []manager.PlayerSpec, overrides map[string]interface{}, mgrCfg manager.Config, bus *events.Bus, opts ...manager.Option) (*manager.Manager, error) {
	d, ok := Get(id)
	if !ok {
		return nil, fmt.Errorf("registry: unknown game %q", id)
	}
	if len(specs) < d.MinPlayers || len(specs) > d.MaxPlayers {
		return nil, fmt.Errorf("registry: %s needs %d-%d players, got %d",
			d.ID, d.MinPlayers, d.MaxPlayers, len(specs))
	}

	cfg := mergeConfig(d.DefaultConfig, overrides)
	if d.ValidateConfig != nil {
		if err := d.ValidateConfig(cfg); err != nil {
			return nil, fmt.Errorf("registry: bad %s config: %w", d.ID, err)
		}
	}

	rules, err := d.NewRules(cfg)
	if err != nil {
		return nil, err
	}
	if bus == nil {
		bus = events.NewBus()
	}

	eng := engine.New(rules, bus)
	var tracker *scoring.Tracker
	if d.NewHooks != nil {
		tracker = scoring.NewTracker(d.NewHooks(cfg), bus)
	}
	return manager.New(eng, tracker, bus, specs, mgrCfg, opts...), nil
}

func mergeConfig(defaults, overrides map[string]interface{}) map[string]interface{} {
	cfg := make(map[string]interface{}, len(defaults)+len(overrides))
	for k, v := range defaults {
		cfg[k] = v
	}
	for k, v := range overrides {
		cfg[k] = v
	}
	return cfg
}
