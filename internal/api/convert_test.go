package api_test

import (
	"testing"
	"time"

	"bridge/internal/api"
	"bridge/internal/pod"
)

func TestFromPodFormatsTimestamps(t *testing.T) {
	created := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	started := created.Add(time.Hour)
	p := &pod.Pod{
		ID:                "pod-1",
		Name:              "Checkout",
		Tag:               pod.TagFeature,
		Status:            pod.StatusInProgress,
		CurrentStageIndex: 0,
		StageOrder:        []string{"Product"},
		Members: []pod.Member{
			{ID: "m1", Name: "Ben", Role: "Product", WorkStartedAt: &started, ActualDays: 1.5},
		},
		CreatedAt: created,
		StartDate: created,
		UpdatedAt: created,
	}

	dto := api.FromPod(p)
	if dto.CreatedAt != "2026-03-02T09:30:00.000Z" {
		t.Fatalf("createdAt = %q", dto.CreatedAt)
	}
	if dto.EndDate != "" {
		t.Fatalf("zero end date should serialize empty, got %q", dto.EndDate)
	}
	if dto.Members[0].WorkStartedAt != "2026-03-02T10:30:00.000Z" {
		t.Fatalf("workStartedAt = %q", dto.Members[0].WorkStartedAt)
	}
	if dto.Members[0].WorkCompletedAt != "" {
		t.Fatal("nil completion time should serialize empty")
	}
	if dto.Members[0].ActualDays != 1.5 {
		t.Fatalf("actualDays = %v", dto.Members[0].ActualDays)
	}
}

func TestToProposalRoundTrip(t *testing.T) {
	dto := api.Pod{
		ID:    "pod-1",
		Name:  "Checkout",
		Owner: "priya",
		Tag:   "Feature",
		// Machine-owned fields in the payload are carried but ignored by
		// the engine.
		Status:            "completed",
		CurrentStageIndex: 9,
		StartDate:         "2026-03-02T09:30:00.000Z",
		Members: []api.Member{
			{ID: "m1", Name: "Ben", Role: "Product", HandoffLink: "https://docs.example.com/prd"},
		},
	}

	p, err := api.ToProposal(dto)
	if err != nil {
		t.Fatalf("ToProposal: %v", err)
	}
	if p.ID != "pod-1" || p.Owner != "priya" {
		t.Fatalf("proposal = %+v", p)
	}
	want := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	if !p.StartDate.Equal(want) {
		t.Fatalf("startDate = %v", p.StartDate)
	}
	if len(p.Members) != 1 || p.Members[0].HandoffLink != "https://docs.example.com/prd" {
		t.Fatalf("members = %+v", p.Members)
	}
}

func TestToProposalRejectsBadTimestamp(t *testing.T) {
	_, err := api.ToProposal(api.Pod{ID: "pod-1", StartDate: "yesterday"})
	if err == nil {
		t.Fatal("expected error for malformed timestamp")
	}
}

func TestToCreateSpecAcceptsDateOnly(t *testing.T) {
	spec, err := api.ToCreateSpec(api.CreatePodRequest{
		Name:      "Checkout",
		StartDate: "2026-03-02",
		Members:   []api.CreateMemberSpec{{Name: "Ben", Role: "Product"}},
	})
	if err != nil {
		t.Fatalf("ToCreateSpec: %v", err)
	}
	if spec.StartDate.IsZero() {
		t.Fatal("date-only start date should parse")
	}
	if len(spec.Members) != 1 || spec.Members[0].Role != "Product" {
		t.Fatalf("members = %+v", spec.Members)
	}
}

func TestMergeHealth(t *testing.T) {
	merged := api.MergeHealth(pod.HealthSummary{Total: 4, Planning: 1, InProgress: 2, Completed: 1})
	if merged["total"] != 4 || merged["planning"] != 1 || merged["in-progress"] != 2 || merged["completed"] != 1 {
		t.Fatalf("merged = %v", merged)
	}
}
