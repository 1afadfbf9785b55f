package pod

import (
	"errors"
	"strings"
	"time"
)

// Status represents the lifecycle of a pod.
type Status string

const (
	StatusPlanning   Status = "planning"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

var allStatuses = []Status{
	StatusPlanning,
	StatusInProgress,
	StatusCompleted,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// Tag classifies what kind of initiative a pod tracks.
type Tag string

const (
	TagFeature Tag = "Feature"
	TagGoLive  Tag = "Go-Live"
)

// TaskStatus represents the lifecycle of an informational task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in-progress"
	TaskCompleted  TaskStatus = "completed"
)

// ErrNotFound indicates an operation referenced a pod id absent from the store.
var ErrNotFound = errors.New("pod not found")

// ErrInvalidStageSequence indicates a workflow order names a role with no
// matching members. Creation is rejected rather than producing an empty stage.
var ErrInvalidStageSequence = errors.New("invalid stage sequence")

// Pod is the unit of work tracked by Bridge.
type Pod struct {
	ID          string
	Name        string
	Description string
	Owner       string
	Tag         Tag
	Status      Status

	// CurrentStageIndex is the cursor into Members. It equals len(Members)
	// once the pod has completed.
	CurrentStageIndex int

	// StageOrder is the role sequence the pod was created with. Roles may
	// repeat when several members share a stage.
	StageOrder []string

	// Members are positionally aligned with the expanded stage order.
	Members []Member

	Tasks []Task

	CreatedAt time.Time
	StartDate time.Time
	EndDate   time.Time
	UpdatedAt time.Time
}

// Member occupies one stage position of a pod.
type Member struct {
	ID              string
	Name            string
	Role            string
	TaskDescription string

	PlannedStart time.Time
	PlannedEnd   time.Time

	// HandoffLink is empty until the member supplies handoff evidence; the
	// empty to non-empty edge is what drives stage advancement.
	HandoffLink string

	Completed       bool
	WorkStartedAt   *time.Time
	WorkCompletedAt *time.Time

	// ActualDays is derived by the accountant tick and never feeds back
	// into transition decisions.
	ActualDays float64
}

// Task is an informational work item attached to a pod.
type Task struct {
	ID          string
	Title       string
	Description string
	AssignedTo  string
	AssignedBy  string
	Status      TaskStatus
	Link        string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// AllStatuses returns the ordered list of known pod statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// ParseTag converts a string into a known Tag. Unknown values fall back to
// Feature so editorial typos never block a pod update.
func ParseTag(value string) Tag {
	if strings.EqualFold(strings.TrimSpace(value), string(TagGoLive)) {
		return TagGoLive
	}
	return TagFeature
}

// ActiveMember returns the member at the stage cursor, or nil once the pod has
// completed or when the cursor member has already handed off.
func (p *Pod) ActiveMember() *Member {
	if p == nil || p.Status == StatusCompleted {
		return nil
	}
	if p.CurrentStageIndex < 0 || p.CurrentStageIndex >= len(p.Members) {
		return nil
	}
	member := &p.Members[p.CurrentStageIndex]
	if member.Completed {
		return nil
	}
	return member
}

// MemberByID returns the member with the given id, or nil.
func (p *Pod) MemberByID(id string) *Member {
	if p == nil {
		return nil
	}
	for i := range p.Members {
		if p.Members[i].ID == id {
			return &p.Members[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the pod. The handoff engine clones snapshots
// before reconciling them so callers never observe partial mutation.
func (p *Pod) Clone() *Pod {
	if p == nil {
		return nil
	}
	cp := *p
	cp.StageOrder = append([]string(nil), p.StageOrder...)
	cp.Members = make([]Member, len(p.Members))
	for i, member := range p.Members {
		cp.Members[i] = member.Clone()
	}
	cp.Tasks = make([]Task, len(p.Tasks))
	for i, task := range p.Tasks {
		cp.Tasks[i] = task.clone()
	}
	return &cp
}

// Clone returns a deep copy of the member.
func (m Member) Clone() Member {
	cp := m
	cp.WorkStartedAt = cloneTime(m.WorkStartedAt)
	cp.WorkCompletedAt = cloneTime(m.WorkCompletedAt)
	return cp
}

func (t Task) clone() Task {
	cp := t
	cp.CompletedAt = cloneTime(t.CompletedAt)
	return cp
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	cp := *value
	return &cp
}

// HealthSummary describes aggregated pod counts per lifecycle state.
type HealthSummary struct {
	Total      int
	Planning   int
	InProgress int
	Completed  int
}
