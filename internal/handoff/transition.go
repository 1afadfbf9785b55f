package handoff

import (
	"math"
	"strings"
	"time"

	"bridge/internal/pod"
)

// Transition describes what an update did to a pod's stage machine.
type Transition struct {
	// Handoff reports whether the active member handed off in this update.
	Handoff bool

	// PodCompleted reports whether the handoff finished the final stage.
	PodCompleted bool

	// CompletedMember is the member who handed off, after stamping.
	CompletedMember pod.Member

	// NextMember is the newly activated member, nil when the pod completed.
	NextMember *pod.Member

	// Link is the handoff evidence supplied by the completed member.
	Link string
}

// Advance reconciles a proposed pod snapshot against the stored one and
// applies at most one stage transition. Editable fields are taken from the
// proposal; machine-owned fields always start from the stored snapshot, so
// clients cannot move the cursor, complete members, or alter timestamps
// directly. The returned pod is a new value; neither input is mutated.
func Advance(prev, proposed *pod.Pod, now time.Time) (*pod.Pod, Transition) {
	next := prev.Clone()
	mergeEditable(next, proposed)

	var tr Transition
	idx := prev.CurrentStageIndex
	if prev.Status == pod.StatusCompleted || idx < 0 || idx >= len(prev.Members) {
		return next, tr
	}
	if prev.Members[idx].Completed {
		return next, tr
	}

	prevLink := strings.TrimSpace(prev.Members[idx].HandoffLink)
	current := &next.Members[idx]
	newLink := strings.TrimSpace(current.HandoffLink)
	if prevLink != "" || newLink == "" {
		return next, tr
	}

	// Empty to non-empty edge on the active member: hand off.
	if current.WorkStartedAt == nil {
		started := now
		current.WorkStartedAt = &started
	}
	completedAt := now
	current.Completed = true
	current.WorkCompletedAt = &completedAt
	current.ActualDays = ElapsedDays(now.Sub(*current.WorkStartedAt))

	tr.Handoff = true
	tr.CompletedMember = current.Clone()
	tr.Link = newLink

	next.CurrentStageIndex = idx + 1
	if next.CurrentStageIndex >= len(next.Members) {
		next.Status = pod.StatusCompleted
		tr.PodCompleted = true
		return next, tr
	}

	activated := &next.Members[next.CurrentStageIndex]
	startedAt := now
	activated.WorkStartedAt = &startedAt
	next.Status = pod.StatusInProgress

	nm := activated.Clone()
	tr.NextMember = &nm
	return next, tr
}

// mergeEditable copies client-editable fields from the proposal onto next.
// Member fields merge by id so a reordered or truncated proposal can never
// disturb the stored stage sequence.
func mergeEditable(next, proposed *pod.Pod) {
	if proposed == nil {
		return
	}
	if name := strings.TrimSpace(proposed.Name); name != "" {
		next.Name = name
	}
	next.Description = proposed.Description
	next.Owner = proposed.Owner
	if proposed.Tag != "" {
		next.Tag = pod.ParseTag(string(proposed.Tag))
	}
	if !proposed.StartDate.IsZero() {
		next.StartDate = proposed.StartDate
	}
	next.EndDate = proposed.EndDate
	next.Tasks = cloneTasks(proposed.Tasks)

	for i := range next.Members {
		incoming := memberByID(proposed.Members, next.Members[i].ID)
		if incoming == nil {
			continue
		}
		member := &next.Members[i]
		if name := strings.TrimSpace(incoming.Name); name != "" {
			member.Name = name
		}
		member.TaskDescription = incoming.TaskDescription
		member.PlannedStart = incoming.PlannedStart
		member.PlannedEnd = incoming.PlannedEnd
		member.HandoffLink = incoming.HandoffLink
	}
}

// ElapsedDays converts a working duration into days rounded to one decimal.
func ElapsedDays(d time.Duration) float64 {
	if d < 0 {
		d = 0
	}
	return math.Round(d.Hours()/24*10) / 10
}

func memberByID(members []pod.Member, id string) *pod.Member {
	for i := range members {
		if members[i].ID == id {
			return &members[i]
		}
	}
	return nil
}

func cloneTasks(tasks []pod.Task) []pod.Task {
	if tasks == nil {
		return nil
	}
	out := make([]pod.Task, len(tasks))
	copy(out, tasks)
	for i := range out {
		if out[i].CompletedAt != nil {
			cp := *out[i].CompletedAt
			out[i].CompletedAt = &cp
		}
	}
	return out
}
