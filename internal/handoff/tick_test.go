package handoff_test

import (
	"context"
	"testing"
	"time"

	"bridge/internal/handoff"
	"bridge/internal/pod"
)

func TestTickUpdatesElapsedDays(t *testing.T) {
	engine, _, clock := newTestEngine(t)
	p := createCheckoutPod(t, engine)
	ctx := context.Background()

	clock.Advance(time.Duration(2.45 * 24 * float64(time.Hour)))

	if err := engine.Tick(ctx, clock.Now()); err != nil {
		t.Fatalf("tick: %v", err)
	}

	stored, err := engine.GetPod(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Members[0].ActualDays != 2.5 {
		t.Fatalf("actual days = %v, want 2.5", stored.Members[0].ActualDays)
	}
	if stored.Members[1].ActualDays != 0 {
		t.Fatal("inactive members must not accrue time")
	}
}

func TestTickSkipsCompletedPods(t *testing.T) {
	engine, _, clock := newTestEngine(t)
	ctx := context.Background()

	p, err := engine.CreatePod(ctx, handoff.CreateSpec{
		Name:       "One Stage",
		StageOrder: []string{"Product"},
		Members:    []handoff.MemberSpec{{Name: "Ben", Role: "Product"}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	proposal := p.Clone()
	proposal.Members[0].HandoffLink = "https://docs.example.com/prd"
	done, err := engine.UpdatePod(ctx, proposal)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if done.Status != pod.StatusCompleted {
		t.Fatalf("status = %s", done.Status)
	}
	frozen := done.Members[0].ActualDays

	clock.Advance(72 * time.Hour)
	if err := engine.Tick(ctx, clock.Now()); err != nil {
		t.Fatalf("tick: %v", err)
	}

	stored, err := engine.GetPod(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Members[0].ActualDays != frozen {
		t.Fatalf("completed member accrued time: %v -> %v", frozen, stored.Members[0].ActualDays)
	}
}

func TestTickPromotesPlanningPodAtStartDate(t *testing.T) {
	engine, _, clock := newTestEngine(t)
	ctx := context.Background()

	start := clock.Now().Add(24 * time.Hour)
	p, err := engine.CreatePod(ctx, handoff.CreateSpec{
		Name:       "Q3 Launch",
		StageOrder: []string{"Product"},
		StartDate:  start,
		Members:    []handoff.MemberSpec{{Name: "Ben", Role: "Product"}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Before the start date nothing changes.
	if err := engine.Tick(ctx, clock.Now()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	stored, err := engine.GetPod(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != pod.StatusPlanning {
		t.Fatalf("status = %s before start date", stored.Status)
	}

	clock.Advance(36 * time.Hour)
	if err := engine.Tick(ctx, clock.Now()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	stored, err = engine.GetPod(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != pod.StatusInProgress {
		t.Fatalf("status = %s after start date", stored.Status)
	}
	if stored.Members[0].WorkStartedAt == nil || !stored.Members[0].WorkStartedAt.Equal(start) {
		t.Fatalf("member clock should start at the pod start date: %+v", stored.Members[0])
	}
	// 12 hours of work since the start date.
	if stored.Members[0].ActualDays != 0.5 {
		t.Fatalf("actual days = %v, want 0.5", stored.Members[0].ActualDays)
	}
}

func TestTickIgnoresDeletedPods(t *testing.T) {
	engine, _, clock := newTestEngine(t)
	p := createCheckoutPod(t, engine)
	ctx := context.Background()

	if _, err := engine.DeletePod(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	clock.Advance(24 * time.Hour)
	if err := engine.Tick(ctx, clock.Now()); err != nil {
		t.Fatalf("tick after delete: %v", err)
	}
}

func TestRunnerStartStop(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	createCheckoutPod(t, engine)

	runner := handoff.NewRunner(engine, time.Second, nil)
	runner.Start(context.Background())
	runner.Stop()
	// Stop again must not panic or hang.
	runner.Stop()
}
