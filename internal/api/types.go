package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Pod describes a pod in a transport-friendly format.
type Pod struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Description       string   `json:"description,omitempty"`
	Owner             string   `json:"owner,omitempty"`
	Tag               string   `json:"tag"`
	Status            string   `json:"status"`
	CurrentStageIndex int      `json:"currentStageIndex"`
	StageOrder        []string `json:"stageOrder"`
	Members           []Member `json:"members"`
	Tasks             []Task   `json:"tasks,omitempty"`
	CreatedAt         string   `json:"createdAt,omitempty"`
	StartDate         string   `json:"startDate,omitempty"`
	EndDate           string   `json:"endDate,omitempty"`
	UpdatedAt         string   `json:"updatedAt,omitempty"`
}

// Member describes one stage position of a pod.
type Member struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Role            string  `json:"role"`
	TaskDescription string  `json:"taskDescription,omitempty"`
	PlannedStart    string  `json:"plannedStart,omitempty"`
	PlannedEnd      string  `json:"plannedEnd,omitempty"`
	HandoffLink     string  `json:"handoffLink,omitempty"`
	Completed       bool    `json:"completed"`
	WorkStartedAt   string  `json:"workStartedAt,omitempty"`
	WorkCompletedAt string  `json:"workCompletedAt,omitempty"`
	ActualDays      float64 `json:"actualDays"`
}

// Task describes an informational work item attached to a pod.
type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	AssignedTo  string `json:"assignedTo,omitempty"`
	AssignedBy  string `json:"assignedBy,omitempty"`
	Status      string `json:"status"`
	Link        string `json:"link,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	CompletedAt string `json:"completedAt,omitempty"`
}

// CreatePodRequest carries the fields needed to create a pod.
type CreatePodRequest struct {
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Owner       string              `json:"owner,omitempty"`
	Tag         string              `json:"tag,omitempty"`
	StageOrder  []string            `json:"stageOrder,omitempty"`
	StartDate   string              `json:"startDate,omitempty"`
	EndDate     string              `json:"endDate,omitempty"`
	Members     []CreateMemberSpec  `json:"members"`
	Tasks       []CreateTaskRequest `json:"tasks,omitempty"`
}

// CreateMemberSpec carries one member of a create request.
type CreateMemberSpec struct {
	Name            string `json:"name"`
	Role            string `json:"role"`
	TaskDescription string `json:"taskDescription,omitempty"`
	PlannedStart    string `json:"plannedStart,omitempty"`
	PlannedEnd      string `json:"plannedEnd,omitempty"`
}

// CreateTaskRequest carries one task of a create request.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	AssignedTo  string `json:"assignedTo,omitempty"`
	AssignedBy  string `json:"assignedBy,omitempty"`
	Link        string `json:"link,omitempty"`
}

// PodListResponse wraps a collection of pods for API responses.
type PodListResponse struct {
	Pods []Pod `json:"pods"`
}

// PodResponse wraps a single pod.
type PodResponse struct {
	Pod Pod `json:"pod"`
}

// StatusResponse aggregates daemon runtime information for API consumers.
type StatusResponse struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	DatabasePath string         `json:"databasePath"`
	LockFilePath string         `json:"lockFilePath"`
	Pods         map[string]int `json:"pods"`
}
