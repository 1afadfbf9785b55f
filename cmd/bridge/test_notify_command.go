package main

import (
	"strings"

	"github.com/spf13/cobra"

	"bridge/internal/notifications"
)

func newTestNotifyCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification to the configured ntfy topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.NtfyTopic) == "" {
				cmd.Println("No ntfy topic configured; nothing to send.")
				return nil
			}

			svc := notifications.NewService(cfg)
			if err := svc.TestNotification(cmd.Context()); err != nil {
				return err
			}
			cmd.Println("Test notification sent.")
			return nil
		},
	}
}
