package handoff

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bridge/internal/logging"
	"bridge/internal/pod"
)

// Tick runs one accountant pass. Planning pods whose start date has arrived
// are promoted to in-progress, and every active member's elapsed-day figure
// is recomputed from their work start time. A failure on one pod never stops
// the pass; all per-pod errors are joined and returned.
func (e *Engine) Tick(ctx context.Context, now time.Time) error {
	pods, err := e.store.List(ctx, pod.StatusPlanning, pod.StatusInProgress)
	if err != nil {
		return fmt.Errorf("list pods for tick: %w", err)
	}

	var errs []error
	for _, p := range pods {
		if err := e.tickPod(ctx, p, now); err != nil {
			errs = append(errs, fmt.Errorf("pod %s: %w", p.ID, err))
			e.logger.Warn("tick failed for pod",
				logging.String(logging.FieldPodID, p.ID),
				logging.Error(err))
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) tickPod(ctx context.Context, p *pod.Pod, now time.Time) error {
	unlock := e.lockPod(p.ID)
	defer unlock()

	// The listing snapshot may be stale by the time the lock is held.
	current, err := e.store.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if current == nil {
		return nil
	}

	if current.Status == pod.StatusPlanning {
		if current.StartDate.After(now) {
			return nil
		}
		promoted, err := e.promote(ctx, current)
		if err != nil {
			return err
		}
		current = promoted
	}

	active := current.ActiveMember()
	if active == nil || active.WorkStartedAt == nil {
		return nil
	}

	days := ElapsedDays(now.Sub(*active.WorkStartedAt))
	if days == active.ActualDays {
		return nil
	}
	return e.store.UpdateMemberTime(ctx, active.ID, days)
}

// promote moves a planning pod into progress, starting the first member's
// clock at the pod's start date rather than the tick instant.
func (e *Engine) promote(ctx context.Context, p *pod.Pod) (*pod.Pod, error) {
	next := p.Clone()
	next.Status = pod.StatusInProgress
	if next.CurrentStageIndex >= 0 && next.CurrentStageIndex < len(next.Members) {
		member := &next.Members[next.CurrentStageIndex]
		if member.WorkStartedAt == nil {
			started := next.StartDate
			member.WorkStartedAt = &started
		}
	}
	next.UpdatedAt = e.clock.Now()

	if err := e.store.Save(ctx, next); err != nil {
		return nil, err
	}
	e.logger.Info("pod started",
		logging.String(logging.FieldPodID, next.ID),
		logging.String(logging.FieldPodName, next.Name))
	return next, nil
}
