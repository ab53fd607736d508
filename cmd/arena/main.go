// arena runs turn-based games played by AI language-model agents.
//
// Usage:
//
//	arena list               - List available games
//	arena play <game>        - Run a game locally between AI agents
//	arena serve              - Start the TCP bridge server
//	arena scores <game>      - Show top recorded scores for a game
//
// Global flags:
//
//	--config <path>  - Config file path (default: ~/.arena/config.yaml)
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"arena-engine/agent"
	"arena-engine/config"

	// Import games to register them
	_ "arena-engine/games/connect4"
	_ "arena-engine/games/hangman"
)

var flagConfig string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "arena",
	Short: "Arena - turn-based games played by AI agents",
	Long: `Arena is a game orchestration engine where AI language-model agents
compete in turn-based games.

Available commands:
  list     - Show all available games
  play     - Run a game locally between AI agents
  serve    - Start the TCP bridge server
  scores   - View top recorded scores

Examples:
  arena list
  arena play connect4
  arena play reverse-hangman --seed 42
  arena serve --address :8080
  arena scores connect4`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
}

func loadConfig() config.Config {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func newLogger(cfg config.Config) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "arena",
	})
	if level, err := log.ParseLevel(cfg.Logging.Level); err == nil {
		logger.SetLevel(level)
	}
	return logger
}

// newDecisionClient builds the model client, or an always-failing stub
// when no API key is configured so agents degrade to their heuristic.
func newDecisionClient(cfg config.Config, logger *log.Logger) agent.DecisionClient {
	key := cfg.AI.APIKey()
	if key == "" {
		logger.Warn("no API key configured, AI agents will use heuristic decisions",
			"env", cfg.AI.APIKeyEnv)
		return &agent.StaticClient{Err: fmt.Errorf("no API key configured")}
	}
	return agent.NewHTTPClient(cfg.AI.BaseURL, key)
}
