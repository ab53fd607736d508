package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"arena-engine/events"
	"arena-engine/manager"
	"arena-engine/models"
	"arena-engine/registry"
	"arena-engine/storage"
)

var (
	flagSeed  int64
	flagModel string
	flagSave  bool
)

var playCmd = &cobra.Command{
	Use:   "play <game>",
	Short: "Run a game locally between AI agents",
	Long: `Runs one game to completion with AI agents in every seat, printing
the action stream and the final leaderboard.

Examples:
  arena play connect4
  arena play reverse-hangman --seed 42
  arena play connect4 --save`,
	Args: cobra.ExactArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().Int64Var(&flagSeed, "seed", 0, "RNG seed for game content")
	playCmd.Flags().StringVar(&flagModel, "model", "", "Model override for all agents")
	playCmd.Flags().BoolVar(&flagSave, "save", false, "Persist the result to the score database")
}

var seatNames = []string{"Alpha", "Beta", "Gamma", "Delta"}

func runPlay(cmd *cobra.Command, args []string) {
	gameID := args[0]
	descriptor, ok := registry.Get(gameID)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown game %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'arena list' to see available games.")
		os.Exit(1)
	}

	cfg := loadConfig()
	logger := newLogger(cfg)
	client := newDecisionClient(cfg, logger)

	model := flagModel
	if model == "" {
		model = cfg.AI.DefaultModel
	}
	specs := make([]manager.PlayerSpec, descriptor.MinPlayers)
	for i := range specs {
		specs[i] = manager.PlayerSpec{
			ID:          fmt.Sprintf("player-%d", i+1),
			Name:        seatNames[i%len(seatNames)],
			IsAI:        true,
			Model:       model,
			Personality: cfg.AI.Personality,
		}
	}

	bus := events.NewBus()
	done := make(chan struct{})
	bus.Subscribe(models.EventActionExecuted, func(ev models.GameEvent) {
		if action, ok := ev.Data["action"].(models.Action); ok {
			fmt.Printf("  %s -> %s %v\n", ev.PlayerID, action.Type, action.Payload)
		}
	})
	bus.Subscribe(models.EventAIFallback, func(ev models.GameEvent) {
		fmt.Printf("  %s fell back to a default action\n", ev.PlayerID)
	})
	var endOnce sync.Once
	bus.Subscribe(models.EventGameEnded, func(ev models.GameEvent) {
		endOnce.Do(func() { close(done) })
	})

	mgrCfg := manager.Config{
		TurnTimeout:       cfg.Scheduler.TurnTimeout(),
		MaxAIRetries:      cfg.Scheduler.MaxAIRetries,
		YieldDelay:        cfg.Scheduler.YieldDelay(),
		MaxIdenticalTicks: cfg.Scheduler.MaxIdenticalTicks,
	}
	overrides := map[string]interface{}{"seed": flagSeed}

	mgr, err := registry.Build(gameID, specs, overrides, mgrCfg, bus,
		manager.WithLogger(logger),
		manager.WithDecisionClient(client, gameID, descriptor.Obfuscate, cfg.AI.Temperature, logger),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building game: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Playing %s with %d agents...\n\n", descriptor.Title, len(specs))
	if err := mgr.StartGame(); err != nil {
		fmt.Fprintf(os.Stderr, "Error starting game: %v\n", err)
		os.Exit(1)
	}

	select {
	case <-done:
	case <-time.After(10 * time.Minute):
		fmt.Fprintln(os.Stderr, "Game did not finish in time, forcing end.")
		mgr.EndGame()
	}

	printResult(mgr)

	if flagSave {
		saveResult(cfg.Storage.DatabasePath, mgr)
	}
}

func printResult(mgr *manager.Manager) {
	state := mgr.Engine().State()
	fmt.Println()
	if winners := mgr.Engine().Winners(); len(winners) > 0 {
		fmt.Printf("Winners: %v\n", winners)
	} else if state != nil {
		fmt.Printf("No winner (phase %q)\n", state.Phase)
	}

	fmt.Println("Final standings:")
	for _, entry := range mgr.Leaderboard() {
		fmt.Printf("  %d. %-12s %d\n", entry.Rank, entry.PlayerName, entry.Score)
	}
}

func saveResult(dbPath string, mgr *manager.Manager) {
	state := mgr.Engine().State()
	if state == nil {
		return
	}
	store, err := storage.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening score database: %v\n", err)
		return
	}
	defer store.Close()
	if err := store.SaveMatch(state, mgr.Engine().Winners(), mgr.Leaderboard()); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving result: %v\n", err)
		return
	}
	fmt.Println("Result saved.")
}
