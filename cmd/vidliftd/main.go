package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"vidlift/internal/config"
	"vidlift/internal/daemon"
	"vidlift/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	d, err := daemon.New(cfg, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		os.Exit(1)
	}

	if err := d.Run(ctx); err != nil {
		logger.Error("daemon exited", logging.Error(err))
		os.Exit(1)
	}
	logger.Info("vidliftd shut down")
}
