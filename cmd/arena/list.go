package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"arena-engine/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available games",
	Long:  `Shows a list of all games registered in the arena.`,
	Run:   runList,
}

func runList(cmd *cobra.Command, args []string) {
	games := registry.List()

	if len(games) == 0 {
		fmt.Println("No games available.")
		return
	}

	fmt.Println("Available games:")
	fmt.Println()

	maxIDLen := 2
	for _, g := range games {
		if len(g.ID) > maxIDLen {
			maxIDLen = len(g.ID)
		}
	}

	fmt.Printf("  %-*s  %-8s  %s\n", maxIDLen, "ID", "Players", "Title")
	fmt.Printf("  %-*s  %-8s  %s\n", maxIDLen, "--", "-------", "-----")
	for _, g := range games {
		players := fmt.Sprintf("%d-%d", g.MinPlayers, g.MaxPlayers)
		if g.MinPlayers == g.MaxPlayers {
			players = fmt.Sprintf("%d", g.MinPlayers)
		}
		fmt.Printf("  %-*s  %-8s  %s\n", maxIDLen, g.ID, players, g.Title)
	}

	fmt.Println()
	fmt.Println("Run 'arena play <id>' to run a game.")
}
