package handoff

import (
	"testing"
	"time"

	"bridge/internal/pod"
)

func twoStagePod(now time.Time) *pod.Pod {
	started := now.Add(-24 * time.Hour)
	return &pod.Pod{
		ID:                "pod-1",
		Name:              "Checkout",
		Status:            pod.StatusInProgress,
		Tag:               pod.TagFeature,
		CurrentStageIndex: 0,
		StageOrder:        []string{"Product", "Design"},
		Members: []pod.Member{
			{ID: "m1", Name: "Ben", Role: "Product", WorkStartedAt: &started},
			{ID: "m2", Name: "Asha", Role: "Design"},
		},
		CreatedAt: started,
		StartDate: started,
		UpdatedAt: started,
	}
}

func TestAdvanceHandsOffOnLinkEdge(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	prev := twoStagePod(now)

	proposed := prev.Clone()
	proposed.Members[0].HandoffLink = "https://docs.example.com/prd"

	next, tr := Advance(prev, proposed, now)

	if !tr.Handoff {
		t.Fatal("expected a handoff")
	}
	if tr.PodCompleted {
		t.Fatal("pod should not be completed after first stage")
	}
	if tr.CompletedMember.ID != "m1" || tr.Link != "https://docs.example.com/prd" {
		t.Fatalf("transition = %+v", tr)
	}
	if tr.NextMember == nil || tr.NextMember.ID != "m2" {
		t.Fatalf("next member = %+v", tr.NextMember)
	}

	if next.CurrentStageIndex != 1 {
		t.Fatalf("cursor = %d, want 1", next.CurrentStageIndex)
	}
	if !next.Members[0].Completed || next.Members[0].WorkCompletedAt == nil {
		t.Fatalf("completed member not stamped: %+v", next.Members[0])
	}
	if next.Members[0].ActualDays != 1.0 {
		t.Fatalf("actual days = %v, want 1.0", next.Members[0].ActualDays)
	}
	if next.Members[1].WorkStartedAt == nil || !next.Members[1].WorkStartedAt.Equal(now) {
		t.Fatalf("next member clock not started: %+v", next.Members[1])
	}
	if next.Status != pod.StatusInProgress {
		t.Fatalf("status = %s", next.Status)
	}
}

func TestAdvanceIgnoresLinkOnInactiveMember(t *testing.T) {
	now := time.Now()
	prev := twoStagePod(now)

	proposed := prev.Clone()
	proposed.Members[1].HandoffLink = "https://figma.com/file/abc"

	next, tr := Advance(prev, proposed, now)
	if tr.Handoff {
		t.Fatal("link on an inactive member must not advance the stage")
	}
	if next.CurrentStageIndex != 0 {
		t.Fatalf("cursor moved to %d", next.CurrentStageIndex)
	}
	// The link itself is still an editable field and persists.
	if next.Members[1].HandoffLink == "" {
		t.Fatal("inactive member's link should still be stored")
	}
}

func TestAdvanceNoEdgeWhenLinkAlreadySet(t *testing.T) {
	now := time.Now()
	prev := twoStagePod(now)
	prev.Members[0].HandoffLink = "https://docs.example.com/prd"

	proposed := prev.Clone()
	proposed.Members[0].HandoffLink = "https://docs.example.com/prd-v2"

	_, tr := Advance(prev, proposed, now)
	if tr.Handoff {
		t.Fatal("changing an existing link is not an edge")
	}
}

func TestAdvanceTreatsWhitespaceLinkAsEmpty(t *testing.T) {
	now := time.Now()
	prev := twoStagePod(now)

	proposed := prev.Clone()
	proposed.Members[0].HandoffLink = "   "

	_, tr := Advance(prev, proposed, now)
	if tr.Handoff {
		t.Fatal("whitespace-only link must not trigger a handoff")
	}
}

func TestAdvanceCompletesPodOnFinalStage(t *testing.T) {
	now := time.Now()
	prev := twoStagePod(now)
	started := now.Add(-12 * time.Hour)
	prev.CurrentStageIndex = 1
	prev.Members[0].Completed = true
	prev.Members[0].HandoffLink = "https://docs.example.com/prd"
	prev.Members[1].WorkStartedAt = &started

	proposed := prev.Clone()
	proposed.Members[1].HandoffLink = "https://figma.com/file/abc"

	next, tr := Advance(prev, proposed, now)
	if !tr.Handoff || !tr.PodCompleted {
		t.Fatalf("transition = %+v", tr)
	}
	if tr.NextMember != nil {
		t.Fatal("completed pod has no next member")
	}
	if next.Status != pod.StatusCompleted {
		t.Fatalf("status = %s", next.Status)
	}
	if next.CurrentStageIndex != len(next.Members) {
		t.Fatalf("cursor = %d, want %d", next.CurrentStageIndex, len(next.Members))
	}
}

func TestAdvanceRestoresMachineOwnedFields(t *testing.T) {
	now := time.Now()
	prev := twoStagePod(now)

	proposed := prev.Clone()
	proposed.Status = pod.StatusCompleted
	proposed.CurrentStageIndex = 5
	proposed.Members[0].Completed = true
	completedAt := now
	proposed.Members[0].WorkCompletedAt = &completedAt
	proposed.Members[0].ActualDays = 99
	proposed.Members[1].WorkStartedAt = &completedAt

	next, tr := Advance(prev, proposed, now)
	if tr.Handoff {
		t.Fatal("no link edge, no handoff")
	}
	if next.Status != pod.StatusInProgress || next.CurrentStageIndex != 0 {
		t.Fatalf("machine fields leaked from proposal: status=%s cursor=%d", next.Status, next.CurrentStageIndex)
	}
	if next.Members[0].Completed || next.Members[0].WorkCompletedAt != nil || next.Members[0].ActualDays != 0 {
		t.Fatalf("member machine fields leaked: %+v", next.Members[0])
	}
	if next.Members[1].WorkStartedAt != nil {
		t.Fatal("inactive member start time leaked from proposal")
	}
}

func TestAdvanceMergesEditableFields(t *testing.T) {
	now := time.Now()
	prev := twoStagePod(now)

	proposed := prev.Clone()
	proposed.Name = "Checkout v2"
	proposed.Description = "updated scope"
	proposed.Owner = "priya"
	proposed.Members[1].Name = "Asha K"
	proposed.Members[1].TaskDescription = "high fidelity mocks"

	next, tr := Advance(prev, proposed, now)
	if tr.Handoff {
		t.Fatal("editable-only update must not advance")
	}
	if next.Name != "Checkout v2" || next.Description != "updated scope" || next.Owner != "priya" {
		t.Fatalf("pod fields not merged: %+v", next)
	}
	if next.Members[1].Name != "Asha K" || next.Members[1].TaskDescription != "high fidelity mocks" {
		t.Fatalf("member fields not merged: %+v", next.Members[1])
	}
}

func TestAdvanceIgnoresUnknownAndReorderedMembers(t *testing.T) {
	now := time.Now()
	prev := twoStagePod(now)

	proposed := prev.Clone()
	// Reverse the members and smuggle in an extra one.
	proposed.Members = []pod.Member{
		proposed.Members[1],
		proposed.Members[0],
		{ID: "intruder", Name: "Eve", Role: "QA"},
	}
	proposed.Members[1].HandoffLink = "https://docs.example.com/prd"

	next, tr := Advance(prev, proposed, now)
	if !tr.Handoff {
		t.Fatal("active member's link edge should survive reordering")
	}
	if len(next.Members) != 2 {
		t.Fatalf("member count changed: %d", len(next.Members))
	}
	if next.Members[0].ID != "m1" || next.Members[1].ID != "m2" {
		t.Fatal("stored member order must be preserved")
	}
}

func TestAdvanceDoesNotMutateInputs(t *testing.T) {
	now := time.Now()
	prev := twoStagePod(now)
	proposed := prev.Clone()
	proposed.Members[0].HandoffLink = "https://docs.example.com/prd"

	_, _ = Advance(prev, proposed, now)

	if prev.CurrentStageIndex != 0 || prev.Members[0].Completed {
		t.Fatal("Advance mutated the stored snapshot")
	}
	if proposed.Members[0].Completed {
		t.Fatal("Advance mutated the proposal")
	}
}

func TestAdvanceNoopOnCompletedPod(t *testing.T) {
	now := time.Now()
	prev := twoStagePod(now)
	prev.Status = pod.StatusCompleted
	prev.CurrentStageIndex = 2
	prev.Members[0].Completed = true
	prev.Members[1].Completed = true

	proposed := prev.Clone()
	proposed.Members[1].HandoffLink = "https://late.example.com"

	_, tr := Advance(prev, proposed, now)
	if tr.Handoff {
		t.Fatal("completed pod must not advance")
	}
}

func TestElapsedDaysRounding(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want float64
	}{
		{0, 0},
		{-time.Hour, 0},
		{24 * time.Hour, 1.0},
		{12 * time.Hour, 0.5},
		{time.Duration(2.45 * 24 * float64(time.Hour)), 2.5},
		{36 * time.Hour, 1.5},
		{time.Duration(0.04 * 24 * float64(time.Hour)), 0},
	}
	for _, tc := range tests {
		if got := ElapsedDays(tc.d); got != tc.want {
			t.Errorf("ElapsedDays(%v) = %v, want %v", tc.d, got, tc.want)
		}
	}
}
