package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"arena-engine/server"
	"arena-engine/storage"
)

var flagAddress string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the TCP bridge server",
	Long: `Starts the line-delimited JSON TCP bridge. Clients send commands
(game.create, game.start, game.action, ...) and receive responses plus a
stream of game events.

Examples:
  arena serve
  arena serve --address :9000`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddress, "address", "", "Listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	logger := newLogger(cfg)
	client := newDecisionClient(cfg, logger)

	address := cfg.Server.Address
	if flagAddress != "" {
		address = flagAddress
	}

	store, err := storage.Open(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Warn("score storage unavailable, results will not persist", "err", err)
		store = nil
	} else {
		defer store.Close()
	}

	sessions := server.NewSessions(cfg, store, client, logger)
	srv := server.NewTCPServer(address, sessions, store, logger)

	go func() {
		if err := srv.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	srv.Stop()
}
