package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bridge/internal/daemon"
	"bridge/internal/handoff"
	"bridge/internal/logging"
	"bridge/internal/notifications"
	"bridge/internal/pod"
)

func newServeCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bridge daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, err := pod.Open(runCtx, cfg)
			if err != nil {
				return err
			}

			engine := handoff.NewEngine(store, notifications.NewService(cfg), logger,
				handoff.WithDefaultOrder(cfg.DefaultWorkflow))

			d, err := daemon.New(cfg, store, engine, logger)
			if err != nil {
				_ = store.Close()
				return err
			}
			defer func() { _ = d.Close() }()

			if err := d.Start(runCtx); err != nil {
				return err
			}

			<-runCtx.Done()
			d.Stop()
			return nil
		},
	}
}
