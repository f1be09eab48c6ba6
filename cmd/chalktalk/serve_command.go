package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"chalktalk/internal/daemon"
	"chalktalk/internal/logging"
	"chalktalk/internal/pipeline"
)

// newServeCommand runs the daemon in the foreground, equivalent to launching
// chalktalkd with the same configuration.
func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

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

			if err := d.Start(signalCtx); err != nil {
				return fmt.Errorf("daemon start: %w", err)
			}
			defer d.Stop()

			<-signalCtx.Done()
			return nil
		},
	}
}
