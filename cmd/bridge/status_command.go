package main

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"bridge/internal/api"
	"bridge/internal/pod"
)

func newStatusCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show pod counts and storage location",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}

			return cctx.withService(cmd.Context(), func(ctx context.Context, svc *api.PodService) error {
				counts, err := svc.Health(ctx)
				if err != nil {
					return err
				}

				cmd.Printf("Database: %s\n\n", cfg.DatabasePath())
				rows := [][]string{
					{statusLabel(string(pod.StatusPlanning)), formatCount(counts[string(pod.StatusPlanning)])},
					{statusLabel(string(pod.StatusInProgress)), formatCount(counts[string(pod.StatusInProgress)])},
					{statusLabel(string(pod.StatusCompleted)), formatCount(counts[string(pod.StatusCompleted)])},
					{"Total", formatCount(counts["total"])},
				}
				cmd.Println(renderTable(
					[]string{"Status", "Pods"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}

func formatCount(n int) string {
	if n < 0 {
		n = 0
	}
	return strconv.Itoa(n)
}
