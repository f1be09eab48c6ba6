package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"chalktalk/internal/config"
	"chalktalk/internal/daemon"
	"chalktalk/internal/logging"
	"chalktalk/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configFlag := flag.String("config", "", "configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Secrets may live in a local .env during development; absence is fine.
	_ = godotenv.Load()

	cfg, _, _, err := config.Load(*configFlag)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	pipe, err := pipeline.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}

	d, err := daemon.New(cfg, pipe, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}

	if err := d.Start(ctx); err != nil {
		return fmt.Errorf("daemon start: %w", err)
	}
	defer d.Stop()

	for _, dep := range pipe.CheckTools() {
		if !dep.Available {
			logger.Warn("required tool unavailable",
				slog.String("tool", dep.Command),
				slog.String("hint", dep.InstallHint))
		}
	}

	<-ctx.Done()
	logger.Info("chalktalkd shutting down")
	return nil
}
