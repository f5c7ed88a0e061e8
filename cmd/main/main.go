package main

import (
	"context"

	"pcsense/buylinks/internal/config"
	"pcsense/buylinks/internal/container"

	log "github.com/sirupsen/logrus"
)

func main() {
	// Load configuration using viper
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Invalid log level %q: %v", cfg.Log.Level, err)
	}
	log.SetLevel(level)

	log.Debugf("Enriching catalog %s", cfg.Catalog.Path)

	ctx := context.Background()

	// Initialize container with all dependencies
	app, err := container.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	if err := app.Run(ctx); err != nil {
		app.Close()
		log.Fatalf("Buy link enrichment failed: %v", err)
	}

	if err := app.Close(); err != nil {
		log.Warnf("⚠️ %v", err)
	}
}
