package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/greyhaven/greyhavenmud/server/internal/config"
	"github.com/greyhaven/greyhavenmud/server/internal/logger"
	"github.com/greyhaven/greyhavenmud/server/internal/server"
	"github.com/greyhaven/greyhavenmud/server/internal/store"
	"github.com/greyhaven/greyhavenmud/server/internal/world"
)

func main() {
	addr := flag.String("addr", envOr("MUD_ADDR", ":4000"), "listen address")
	dataDir := flag.String("data", envOr("MUD_DATA_DIR", "data"), "content data directory")
	persistDir := flag.String("persist", envOr("MUD_PERSIST_DIR", "players"), "player save directory")
	logConfig := flag.String("log-config", envOr("MUD_LOG_CONFIG", ""), "logging config YAML path")
	flag.Parse()

	logCfg, err := logger.LoadConfig(*logConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load logging config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Initialize(logCfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(filepath.Join(*dataDir, "config.json"))
	if err != nil {
		logger.Error("Failed to load game config", "error", err)
		os.Exit(1)
	}

	catalog, err := world.LoadCatalog(*dataDir)
	if err != nil {
		logger.Error("Failed to load content", "error", err)
		os.Exit(1)
	}
	playerStore, err := store.Open(*persistDir, catalog.Items, cfg)
	if err != nil {
		logger.Error("Failed to open player store", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(world.NewWorld(catalog), cfg, playerStore)
	if err := srv.Run(ctx, *addr); err != nil {
		logger.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
