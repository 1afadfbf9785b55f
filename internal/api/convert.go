package api

import (
	"fmt"
	"strings"
	"time"

	"bridge/internal/handoff"
	"bridge/internal/pod"
)

// FromPod converts a stored pod record to its API representation.
func FromPod(p *pod.Pod) Pod {
	if p == nil {
		return Pod{}
	}

	dto := Pod{
		ID:                p.ID,
		Name:              p.Name,
		Description:       p.Description,
		Owner:             p.Owner,
		Tag:               string(p.Tag),
		Status:            string(p.Status),
		CurrentStageIndex: p.CurrentStageIndex,
		StageOrder:        append([]string(nil), p.StageOrder...),
		Members:           fromMembers(p.Members),
		Tasks:             fromTasks(p.Tasks),
		CreatedAt:         formatTimestamp(p.CreatedAt),
		StartDate:         formatTimestamp(p.StartDate),
		EndDate:           formatTimestamp(p.EndDate),
		UpdatedAt:         formatTimestamp(p.UpdatedAt),
	}
	return dto
}

// FromPods converts a slice of pod records into API DTOs.
func FromPods(pods []*pod.Pod) []Pod {
	if len(pods) == 0 {
		return nil
	}
	out := make([]Pod, 0, len(pods))
	for _, p := range pods {
		out = append(out, FromPod(p))
	}
	return out
}

func fromMembers(members []pod.Member) []Member {
	out := make([]Member, 0, len(members))
	for _, m := range members {
		out = append(out, Member{
			ID:              m.ID,
			Name:            m.Name,
			Role:            m.Role,
			TaskDescription: m.TaskDescription,
			PlannedStart:    formatTimestamp(m.PlannedStart),
			PlannedEnd:      formatTimestamp(m.PlannedEnd),
			HandoffLink:     m.HandoffLink,
			Completed:       m.Completed,
			WorkStartedAt:   formatTimestampPtr(m.WorkStartedAt),
			WorkCompletedAt: formatTimestampPtr(m.WorkCompletedAt),
			ActualDays:      m.ActualDays,
		})
	}
	return out
}

func fromTasks(tasks []pod.Task) []Task {
	if len(tasks) == 0 {
		return nil
	}
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, Task{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			AssignedTo:  t.AssignedTo,
			AssignedBy:  t.AssignedBy,
			Status:      string(t.Status),
			Link:        t.Link,
			CreatedAt:   formatTimestamp(t.CreatedAt),
			CompletedAt: formatTimestampPtr(t.CompletedAt),
		})
	}
	return out
}

// ToProposal converts an API pod payload into a record the engine can
// reconcile. Machine-owned fields travel along but the engine discards them.
func ToProposal(dto Pod) (*pod.Pod, error) {
	startDate, err := parseTimestamp(dto.StartDate)
	if err != nil {
		return nil, fmt.Errorf("startDate: %w", err)
	}
	endDate, err := parseTimestamp(dto.EndDate)
	if err != nil {
		return nil, fmt.Errorf("endDate: %w", err)
	}

	p := &pod.Pod{
		ID:          strings.TrimSpace(dto.ID),
		Name:        dto.Name,
		Description: dto.Description,
		Owner:       dto.Owner,
		Tag:         pod.Tag(dto.Tag),
		StartDate:   startDate,
		EndDate:     endDate,
	}

	for _, m := range dto.Members {
		plannedStart, err := parseTimestamp(m.PlannedStart)
		if err != nil {
			return nil, fmt.Errorf("member %s plannedStart: %w", m.ID, err)
		}
		plannedEnd, err := parseTimestamp(m.PlannedEnd)
		if err != nil {
			return nil, fmt.Errorf("member %s plannedEnd: %w", m.ID, err)
		}
		p.Members = append(p.Members, pod.Member{
			ID:              m.ID,
			Name:            m.Name,
			Role:            m.Role,
			TaskDescription: m.TaskDescription,
			PlannedStart:    plannedStart,
			PlannedEnd:      plannedEnd,
			HandoffLink:     m.HandoffLink,
		})
	}

	for _, task := range dto.Tasks {
		converted, err := toTask(task)
		if err != nil {
			return nil, err
		}
		p.Tasks = append(p.Tasks, converted)
	}
	return p, nil
}

// ToCreateSpec converts a create request into an engine spec.
func ToCreateSpec(req CreatePodRequest) (handoff.CreateSpec, error) {
	startDate, err := parseTimestamp(req.StartDate)
	if err != nil {
		return handoff.CreateSpec{}, fmt.Errorf("startDate: %w", err)
	}
	endDate, err := parseTimestamp(req.EndDate)
	if err != nil {
		return handoff.CreateSpec{}, fmt.Errorf("endDate: %w", err)
	}

	spec := handoff.CreateSpec{
		Name:        req.Name,
		Description: req.Description,
		Owner:       req.Owner,
		Tag:         req.Tag,
		StageOrder:  req.StageOrder,
		StartDate:   startDate,
		EndDate:     endDate,
	}

	for _, m := range req.Members {
		plannedStart, err := parseTimestamp(m.PlannedStart)
		if err != nil {
			return handoff.CreateSpec{}, fmt.Errorf("member %s plannedStart: %w", m.Name, err)
		}
		plannedEnd, err := parseTimestamp(m.PlannedEnd)
		if err != nil {
			return handoff.CreateSpec{}, fmt.Errorf("member %s plannedEnd: %w", m.Name, err)
		}
		spec.Members = append(spec.Members, handoff.MemberSpec{
			Name:            m.Name,
			Role:            m.Role,
			TaskDescription: m.TaskDescription,
			PlannedStart:    plannedStart,
			PlannedEnd:      plannedEnd,
		})
	}

	for _, t := range req.Tasks {
		spec.Tasks = append(spec.Tasks, handoff.TaskSpec{
			Title:       t.Title,
			Description: t.Description,
			AssignedTo:  t.AssignedTo,
			AssignedBy:  t.AssignedBy,
			Link:        t.Link,
		})
	}
	return spec, nil
}

// MergeHealth produces a string-keyed representation of pod counts.
func MergeHealth(summary pod.HealthSummary) map[string]int {
	return map[string]int{
		"total":                      summary.Total,
		string(pod.StatusPlanning):   summary.Planning,
		string(pod.StatusInProgress): summary.InProgress,
		string(pod.StatusCompleted):  summary.Completed,
	}
}

func toTask(dto Task) (pod.Task, error) {
	createdAt, err := parseTimestamp(dto.CreatedAt)
	if err != nil {
		return pod.Task{}, fmt.Errorf("task %s createdAt: %w", dto.ID, err)
	}
	completedAt, err := parseTimestamp(dto.CompletedAt)
	if err != nil {
		return pod.Task{}, fmt.Errorf("task %s completedAt: %w", dto.ID, err)
	}

	task := pod.Task{
		ID:          dto.ID,
		Title:       dto.Title,
		Description: dto.Description,
		AssignedTo:  dto.AssignedTo,
		AssignedBy:  dto.AssignedBy,
		Status:      pod.TaskStatus(dto.Status),
		Link:        dto.Link,
		CreatedAt:   createdAt,
	}
	if !completedAt.IsZero() {
		task.CompletedAt = &completedAt
	}
	return task, nil
}

func formatTimestamp(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(dateTimeFormat)
}

func formatTimestampPtr(value *time.Time) string {
	if value == nil {
		return ""
	}
	return formatTimestamp(*value)
}

func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339Nano, dateTimeFormat, "2006-01-02"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}
