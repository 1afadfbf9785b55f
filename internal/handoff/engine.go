package handoff

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"bridge/internal/logging"
	"bridge/internal/notifications"
	"bridge/internal/pod"
)

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Engine coordinates pod lifecycle operations against the store and publishes
// handoff notifications. All mutations of a given pod are serialized so
// concurrent updates and accountant ticks cannot interleave.
type Engine struct {
	store        *pod.Store
	notifier     notifications.Service
	logger       *slog.Logger
	clock        Clock
	defaultOrder []string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option adjusts engine construction.
type Option func(*Engine)

// WithClock substitutes the time source.
func WithClock(clock Clock) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithDefaultOrder sets the workflow order used when a create request does
// not supply one.
func WithDefaultOrder(order []string) Option {
	return func(e *Engine) {
		e.defaultOrder = pod.NormalizeOrder(order)
	}
}

// NewEngine builds an engine. The notifier may be a noop service but must not
// be nil.
func NewEngine(store *pod.Store, notifier notifications.Service, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	e := &Engine{
		store:    store,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "handoff"),
		clock:    systemClock{},
		locks:    make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateSpec describes a pod to create. MemberSpecs carry no machine state;
// ids, the stage cursor, and work timestamps are assigned here.
type CreateSpec struct {
	Name        string
	Description string
	Owner       string
	Tag         string
	StageOrder  []string
	StartDate   time.Time
	EndDate     time.Time
	Members     []MemberSpec
	Tasks       []TaskSpec
}

// MemberSpec describes one member of a new pod.
type MemberSpec struct {
	Name            string
	Role            string
	TaskDescription string
	PlannedStart    time.Time
	PlannedEnd      time.Time
}

// TaskSpec describes one informational task of a new pod.
type TaskSpec struct {
	Title       string
	Description string
	AssignedTo  string
	AssignedBy  string
	Link        string
}

// CreatePod validates the spec, expands the stage sequence, and persists the
// new pod. Pods whose start date lies in the future begin in planning;
// otherwise the first member's clock starts immediately.
func (e *Engine) CreatePod(ctx context.Context, spec CreateSpec) (*pod.Pod, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return nil, fmt.Errorf("pod name is required")
	}

	order := pod.NormalizeOrder(spec.StageOrder)
	if len(order) == 0 {
		order = append([]string(nil), e.defaultOrder...)
	}

	members := make([]pod.Member, 0, len(spec.Members))
	for _, ms := range spec.Members {
		members = append(members, pod.Member{
			ID:              uuid.NewString(),
			Name:            strings.TrimSpace(ms.Name),
			Role:            ms.Role,
			TaskDescription: ms.TaskDescription,
			PlannedStart:    ms.PlannedStart,
			PlannedEnd:      ms.PlannedEnd,
		})
	}

	sequence, err := pod.BuildSequence(order, members)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	start := spec.StartDate
	if start.IsZero() {
		start = now
	}

	p := &pod.Pod{
		ID:                uuid.NewString(),
		Name:              name,
		Description:       spec.Description,
		Owner:             spec.Owner,
		Tag:               pod.ParseTag(spec.Tag),
		Status:            pod.StatusInProgress,
		CurrentStageIndex: 0,
		StageOrder:        order,
		Members:           sequence,
		CreatedAt:         now,
		StartDate:         start,
		EndDate:           spec.EndDate,
		UpdatedAt:         now,
	}

	for _, ts := range spec.Tasks {
		title := strings.TrimSpace(ts.Title)
		if title == "" {
			continue
		}
		p.Tasks = append(p.Tasks, pod.Task{
			ID:          uuid.NewString(),
			Title:       title,
			Description: ts.Description,
			AssignedTo:  ts.AssignedTo,
			AssignedBy:  ts.AssignedBy,
			Status:      pod.TaskPending,
			Link:        ts.Link,
			CreatedAt:   now,
		})
	}

	if start.After(now) {
		p.Status = pod.StatusPlanning
	} else {
		started := start
		p.Members[0].WorkStartedAt = &started
	}

	if err := e.store.Create(ctx, p); err != nil {
		return nil, err
	}

	e.logger.Info("pod created",
		logging.String(logging.FieldPodID, p.ID),
		logging.String(logging.FieldPodName, p.Name),
		logging.Int("stages", len(p.Members)))
	return p, nil
}

// UpdatePod reconciles a proposed snapshot against the stored pod, applies at
// most one stage transition, persists the result, and publishes any handoff
// notifications. A notification failure is logged but never rolls back the
// transition.
func (e *Engine) UpdatePod(ctx context.Context, proposed *pod.Pod) (*pod.Pod, error) {
	if proposed == nil || strings.TrimSpace(proposed.ID) == "" {
		return nil, fmt.Errorf("pod id is required")
	}

	unlock := e.lockPod(proposed.ID)
	defer unlock()

	prev, err := e.store.GetByID(ctx, proposed.ID)
	if err != nil {
		return nil, err
	}
	if prev == nil {
		return nil, fmt.Errorf("pod %s: %w", proposed.ID, pod.ErrNotFound)
	}

	now := e.clock.Now()
	next, tr := Advance(prev, proposed, now)
	next.UpdatedAt = now

	if err := e.store.Save(ctx, next); err != nil {
		return nil, err
	}

	if tr.Handoff {
		e.logger.Info("stage handed off",
			logging.String(logging.FieldPodID, next.ID),
			logging.String(logging.FieldPodName, next.Name),
			logging.String(logging.FieldMember, tr.CompletedMember.Name),
			logging.Int(logging.FieldStageIndex, next.CurrentStageIndex))

		// The handoff notification addresses the newly activated member;
		// the final handoff has no recipient and announces completion
		// instead.
		if tr.NextMember != nil {
			if err := e.notifier.NotifyHandoff(ctx, tr.NextMember.Name, next.Name, tr.Link); err != nil {
				e.logger.Warn("handoff notification failed",
					logging.String(logging.FieldPodID, next.ID),
					logging.Error(err))
			}
		}
		if tr.PodCompleted {
			if err := e.notifier.NotifyPodCompleted(ctx, next.Name); err != nil {
				e.logger.Warn("completion notification failed",
					logging.String(logging.FieldPodID, next.ID),
					logging.Error(err))
			}
		}
	}

	return next, nil
}

// DeletePod removes a pod. Deleting an unknown id is a no-op; the returned
// bool reports whether anything was removed.
func (e *Engine) DeletePod(ctx context.Context, id string) (bool, error) {
	unlock := e.lockPod(id)
	defer unlock()

	removed, err := e.store.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if removed {
		e.logger.Info("pod deleted", logging.String(logging.FieldPodID, id))
	}
	return removed, nil
}

// GetPod returns the stored snapshot of a pod or ErrNotFound.
func (e *Engine) GetPod(ctx context.Context, id string) (*pod.Pod, error) {
	p, err := e.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("pod %s: %w", id, pod.ErrNotFound)
	}
	return p, nil
}

// ListPods returns stored pods, optionally filtered by status.
func (e *Engine) ListPods(ctx context.Context, statuses ...pod.Status) ([]*pod.Pod, error) {
	return e.store.List(ctx, statuses...)
}

func (e *Engine) lockPod(id string) func() {
	e.mu.Lock()
	lock, ok := e.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[id] = lock
	}
	e.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
