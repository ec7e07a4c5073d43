package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lawnchairsociety/dungeongen/internal/config"
	"github.com/lawnchairsociety/dungeongen/internal/database"
	"github.com/lawnchairsociety/dungeongen/internal/logger"
	"github.com/lawnchairsociety/dungeongen/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configFile := flag.String("config", "data/dungeond.yaml", "Path to server config YAML file")
	seed := flag.Int64("seed", 0, "Base dungeon seed (default: config value, or random when unset)")
	noJournal := flag.Bool("no-journal", false, "Run without the visit journal database")
	flag.Parse()

	if err := run(*configFile, *seed, *noJournal); err != nil {
		log.Fatalf("dungeond: %v", err)
	}
}

func run(configFile string, seed int64, noJournal bool) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return err
	}
	if seed != 0 {
		cfg.Dungeon.BaseSeed = seed
	}
	randomSeed := cfg.Dungeon.BaseSeed == 0
	if randomSeed {
		cfg.Dungeon.BaseSeed = time.Now().UnixNano()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Initialize logger first (before any logging)
	if err := logger.Initialize(cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Starting dungeon server")
	logger.Info("Base seed selected", "seed", cfg.Dungeon.BaseSeed, "random", randomSeed)

	var journal server.Journal
	if noJournal {
		logger.Info("Visit journal disabled")
	} else {
		db, err := database.OpenWithConfig(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer db.Close()
		journal = db
		logger.Info("Visit journal initialized", "driver", cfg.Database.Driver)
	}

	switch {
	case len(cfg.Server.AllowedOrigins) == 0:
		logger.Info("WebSocket CORS policy", "mode", "same-origin")
	case len(cfg.Server.AllowedOrigins) == 1 && cfg.Server.AllowedOrigins[0] == "*":
		logger.Warning("WebSocket CORS allows all origins (not recommended for production)")
	default:
		logger.Info("WebSocket CORS policy", "allowed_origins", cfg.Server.AllowedOrigins)
	}

	srv := server.New(cfg, journal)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("Press Ctrl+C to shutdown")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
	return nil
}
