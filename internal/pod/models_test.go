package pod

import (
	"testing"
	"time"
)

func TestActiveMember(t *testing.T) {
	now := time.Now()
	p := &Pod{
		Status:            StatusInProgress,
		CurrentStageIndex: 1,
		Members: []Member{
			{ID: "m1", Completed: true},
			{ID: "m2", WorkStartedAt: &now},
			{ID: "m3"},
		},
	}

	active := p.ActiveMember()
	if active == nil || active.ID != "m2" {
		t.Fatalf("expected active member m2, got %v", active)
	}
}

func TestActiveMemberNilOnCompletedPod(t *testing.T) {
	p := &Pod{
		Status:            StatusCompleted,
		CurrentStageIndex: 2,
		Members:           []Member{{ID: "m1"}, {ID: "m2"}},
	}
	if p.ActiveMember() != nil {
		t.Fatal("completed pod should have no active member")
	}
}

func TestActiveMemberNilWhenCursorMemberDone(t *testing.T) {
	p := &Pod{
		Status:            StatusInProgress,
		CurrentStageIndex: 0,
		Members:           []Member{{ID: "m1", Completed: true}},
	}
	if p.ActiveMember() != nil {
		t.Fatal("handed-off member should not be active")
	}
}

func TestCloneIsDeep(t *testing.T) {
	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	p := &Pod{
		ID:         "pod-1",
		StageOrder: []string{"Product", "Design"},
		Members: []Member{
			{ID: "m1", WorkStartedAt: &started},
			{ID: "m2"},
		},
		Tasks: []Task{{ID: "t1", Title: "kickoff"}},
	}

	cp := p.Clone()
	cp.StageOrder[0] = "changed"
	cp.Members[0].HandoffLink = "https://example.com/doc"
	*cp.Members[0].WorkStartedAt = started.Add(time.Hour)
	cp.Tasks[0].Title = "changed"

	if p.StageOrder[0] != "Product" {
		t.Fatal("stage order aliased between clone and original")
	}
	if p.Members[0].HandoffLink != "" {
		t.Fatal("members aliased between clone and original")
	}
	if !p.Members[0].WorkStartedAt.Equal(started) {
		t.Fatal("member timestamps aliased between clone and original")
	}
	if p.Tasks[0].Title != "kickoff" {
		t.Fatal("tasks aliased between clone and original")
	}
}

func TestParseStatus(t *testing.T) {
	status, ok := ParseStatus(" In-Progress ")
	if !ok || status != StatusInProgress {
		t.Fatalf("ParseStatus = %q, %v", status, ok)
	}
	if _, ok := ParseStatus("archived"); ok {
		t.Fatal("unknown status should not parse")
	}
}

func TestParseTagFallsBackToFeature(t *testing.T) {
	if got := ParseTag("go-live"); got != TagGoLive {
		t.Fatalf("ParseTag(go-live) = %q", got)
	}
	if got := ParseTag("whatever"); got != TagFeature {
		t.Fatalf("ParseTag fallback = %q", got)
	}
}
