package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"arena-engine/registry"
	"arena-engine/storage"
)

var flagLimit int

var scoresCmd = &cobra.Command{
	Use:   "scores <game>",
	Short: "Show top recorded scores for a game",
	Long: `Display the best recorded scores for the specified game.

Examples:
  arena scores connect4
  arena scores reverse-hangman --limit 5`,
	Args: cobra.ExactArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of entries to show")
}

func runScores(cmd *cobra.Command, args []string) {
	gameID := args[0]

	descriptor, ok := registry.Get(gameID)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown game %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'arena list' to see available games.")
		os.Exit(1)
	}

	cfg := loadConfig()
	store, err := storage.Open(cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening score database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	entries, err := store.TopScores(gameID, flagLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving scores: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Top Scores - %s\n\n", descriptor.Title)
	if len(entries) == 0 {
		fmt.Println("No scores recorded yet.")
		return
	}
	for i, e := range entries {
		fmt.Printf("  %2d. %-16s %6d  (%s)\n", i+1, e.PlayerName, e.Score, e.CreatedAt.Format("2006-01-02"))
	}
}
