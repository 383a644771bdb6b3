// Package main implements the entry point for the NexusLearn engine API
// server, which tracks per-student mastery over a curriculum knowledge
// graph and serves scoring, branching, review and gamification state.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"

	"github.com/nexuslearn/nexus-api/internal/config"
	"github.com/nexuslearn/nexus-api/internal/platform/logger"
)

func main() {
	migrateOnly := flag.Bool("migrate", false, "apply pending database migrations and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	appLogger.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Bool("llm_enabled", cfg.LLM.GeminiAPIKey != ""))

	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := runMigrations(db, appLogger); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}
	if *migrateOnly {
		appLogger.Info("migrations applied, exiting")
		return
	}

	ctx := context.Background()
	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
