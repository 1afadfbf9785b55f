package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bridge/internal/api"
	"bridge/internal/pod"
)

func newPodCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pod",
		Short: "Manage pods",
	}
	cmd.AddCommand(newPodListCommand(ctx))
	cmd.AddCommand(newPodShowCommand(ctx))
	cmd.AddCommand(newPodCreateCommand(ctx))
	cmd.AddCommand(newPodHandoffCommand(ctx))
	cmd.AddCommand(newPodDeleteCommand(ctx))
	return cmd
}

func newPodListCommand(cctx *commandContext) *cobra.Command {
	var statusFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pods",
		RunE: func(cmd *cobra.Command, args []string) error {
			var statuses []pod.Status
			if trimmed := strings.TrimSpace(statusFlag); trimmed != "" {
				parsed, ok := pod.ParseStatus(trimmed)
				if !ok {
					return fmt.Errorf("unknown status %q", trimmed)
				}
				statuses = append(statuses, parsed)
			}

			return cctx.withService(cmd.Context(), func(ctx context.Context, svc *api.PodService) error {
				pods, err := svc.List(ctx, statuses...)
				if err != nil {
					return err
				}
				if len(pods) == 0 {
					cmd.Println("No pods found.")
					return nil
				}

				rows := make([][]string, 0, len(pods))
				for _, p := range pods {
					rows = append(rows, []string{
						shortID(p.ID),
						p.Name,
						statusLabel(p.Status),
						activeStageLabel(p),
						activeMemberLabel(p),
						activeDaysLabel(p),
						p.Owner,
					})
				}
				cmd.Println(renderTable(
					[]string{"ID", "Name", "Status", "Stage", "Member", "Days", "Owner"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", "", "Filter by status (planning, in-progress, completed)")
	return cmd
}

func newPodShowCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <pod-id>",
		Short: "Show a pod and its stage sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withService(cmd.Context(), func(ctx context.Context, svc *api.PodService) error {
				dto, err := resolvePod(ctx, svc, args[0])
				if err != nil {
					return err
				}

				cmd.Printf("Pod:    %s (%s)\n", dto.Name, dto.ID)
				cmd.Printf("Status: %s  Tag: %s\n", statusLabel(dto.Status), statusLabel(dto.Tag))
				if dto.Owner != "" {
					cmd.Printf("Owner:  %s\n", dto.Owner)
				}
				if dto.Description != "" {
					cmd.Printf("About:  %s\n", dto.Description)
				}
				cmd.Println()

				rows := make([][]string, 0, len(dto.Members))
				for i, m := range dto.Members {
					marker := " "
					switch {
					case m.Completed:
						marker = "done"
					case i == dto.CurrentStageIndex:
						marker = "active"
					}
					rows = append(rows, []string{
						strconv.Itoa(i + 1),
						m.Role,
						m.Name,
						marker,
						formatDays(m.ActualDays),
						m.HandoffLink,
					})
				}
				cmd.Println(renderTable(
					[]string{"#", "Stage", "Member", "State", "Days", "Handoff"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))

				if len(dto.Tasks) > 0 {
					cmd.Println()
					taskRows := make([][]string, 0, len(dto.Tasks))
					for _, t := range dto.Tasks {
						taskRows = append(taskRows, []string{t.Title, statusLabel(t.Status), t.AssignedTo})
					}
					cmd.Println(renderTable(
						[]string{"Task", "Status", "Assigned"},
						taskRows,
						[]columnAlignment{alignLeft, alignLeft, alignLeft},
					))
				}
				return nil
			})
		},
	}
}

func newPodCreateCommand(cctx *commandContext) *cobra.Command {
	var (
		name        string
		description string
		owner       string
		tag         string
		orderFlag   string
		startFlag   string
		endFlag     string
		memberFlags []string
		taskFlags   []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a pod",
		Example: `  bridge pod create --name "Checkout" --owner priya \
    --member "Ben:Product" --member "Asha:Design" --member "Caro:QA" \
    --order "Product,Design,QA"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			members, err := parseMemberSpecs(memberFlags)
			if err != nil {
				return err
			}

			req := api.CreatePodRequest{
				Name:        name,
				Description: description,
				Owner:       owner,
				Tag:         tag,
				StartDate:   startFlag,
				EndDate:     endFlag,
				Members:     members,
			}
			if trimmed := strings.TrimSpace(orderFlag); trimmed != "" {
				for _, stage := range strings.Split(trimmed, ",") {
					req.StageOrder = append(req.StageOrder, strings.TrimSpace(stage))
				}
			}
			for _, title := range taskFlags {
				if strings.TrimSpace(title) == "" {
					continue
				}
				req.Tasks = append(req.Tasks, api.CreateTaskRequest{Title: title})
			}

			return cctx.withService(cmd.Context(), func(ctx context.Context, svc *api.PodService) error {
				created, err := svc.Create(ctx, req)
				if err != nil {
					return err
				}
				cmd.Printf("Created pod %s (%s) with %d stages\n", created.Name, created.ID, len(created.Members))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Pod name (required)")
	cmd.Flags().StringVar(&description, "description", "", "Pod description")
	cmd.Flags().StringVar(&owner, "owner", "", "Pod owner")
	cmd.Flags().StringVar(&tag, "tag", "", "Pod tag (Feature or Go-Live)")
	cmd.Flags().StringVar(&orderFlag, "order", "", "Comma-separated stage roles; defaults to the configured workflow")
	cmd.Flags().StringVar(&startFlag, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endFlag, "end", "", "Target end date (YYYY-MM-DD)")
	cmd.Flags().StringArrayVar(&memberFlags, "member", nil, "Member as \"Name:Role\" (repeatable)")
	cmd.Flags().StringArrayVar(&taskFlags, "task", nil, "Task title (repeatable)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("member")
	return cmd
}

func newPodHandoffCommand(cctx *commandContext) *cobra.Command {
	var link string

	cmd := &cobra.Command{
		Use:   "handoff <pod-id>",
		Short: "Record the active member's handoff link and advance the pod",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(link) == "" {
				return fmt.Errorf("--link is required")
			}

			return cctx.withService(cmd.Context(), func(ctx context.Context, svc *api.PodService) error {
				dto, err := resolvePod(ctx, svc, args[0])
				if err != nil {
					return err
				}
				if dto.Status == string(pod.StatusCompleted) {
					return fmt.Errorf("pod %s is already completed", dto.Name)
				}
				if dto.CurrentStageIndex < 0 || dto.CurrentStageIndex >= len(dto.Members) {
					return fmt.Errorf("pod %s has no active stage", dto.Name)
				}

				active := &dto.Members[dto.CurrentStageIndex]
				if strings.TrimSpace(active.HandoffLink) != "" {
					return fmt.Errorf("member %s already supplied a handoff link", active.Name)
				}
				active.HandoffLink = link

				updated, err := svc.Update(ctx, *dto)
				if err != nil {
					return err
				}

				if updated.Status == string(pod.StatusCompleted) {
					cmd.Printf("%s handed off; pod %s is complete\n", active.Name, updated.Name)
					return nil
				}
				next := updated.Members[updated.CurrentStageIndex]
				cmd.Printf("%s handed off to %s (%s)\n", active.Name, next.Name, next.Role)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&link, "link", "", "Handoff evidence link (required)")
	return cmd
}

func newPodDeleteCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <pod-id>",
		Short: "Delete a pod",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withService(cmd.Context(), func(ctx context.Context, svc *api.PodService) error {
				dto, err := resolvePod(ctx, svc, args[0])
				if err != nil {
					return err
				}
				removed, err := svc.Remove(ctx, dto.ID)
				if err != nil {
					return err
				}
				if removed {
					cmd.Printf("Deleted pod %s\n", dto.Name)
				} else {
					cmd.Printf("Pod %s was already gone\n", dto.Name)
				}
				return nil
			})
		},
	}
}

// resolvePod accepts a full id or an unambiguous prefix.
func resolvePod(ctx context.Context, svc *api.PodService, ref string) (*api.Pod, error) {
	ref = strings.TrimSpace(ref)
	if dto, err := svc.Describe(ctx, ref); err == nil {
		return dto, nil
	}

	pods, err := svc.List(ctx)
	if err != nil {
		return nil, err
	}
	var matches []api.Pod
	for _, p := range pods {
		if strings.HasPrefix(p.ID, ref) || strings.EqualFold(p.Name, ref) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 1:
		return &matches[0], nil
	case 0:
		return nil, fmt.Errorf("pod %q: %w", ref, pod.ErrNotFound)
	default:
		return nil, fmt.Errorf("pod reference %q is ambiguous (%d matches)", ref, len(matches))
	}
}

func parseMemberSpecs(values []string) ([]api.CreateMemberSpec, error) {
	specs := make([]api.CreateMemberSpec, 0, len(values))
	for _, value := range values {
		name, role, ok := strings.Cut(value, ":")
		name = strings.TrimSpace(name)
		role = strings.TrimSpace(role)
		if !ok || name == "" || role == "" {
			return nil, fmt.Errorf("invalid member %q: expected \"Name:Role\"", value)
		}
		specs = append(specs, api.CreateMemberSpec{Name: name, Role: role})
	}
	return specs, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatDays(days float64) string {
	return strconv.FormatFloat(days, 'f', 1, 64)
}

func activeStageLabel(p api.Pod) string {
	if p.CurrentStageIndex >= 0 && p.CurrentStageIndex < len(p.Members) {
		return p.Members[p.CurrentStageIndex].Role
	}
	return "-"
}

func activeMemberLabel(p api.Pod) string {
	if p.CurrentStageIndex >= 0 && p.CurrentStageIndex < len(p.Members) {
		return p.Members[p.CurrentStageIndex].Name
	}
	return "-"
}

func activeDaysLabel(p api.Pod) string {
	if p.CurrentStageIndex >= 0 && p.CurrentStageIndex < len(p.Members) {
		return formatDays(p.Members[p.CurrentStageIndex].ActualDays)
	}
	return "-"
}
