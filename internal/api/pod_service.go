package api

import (
	"context"

	"bridge/internal/handoff"
	"bridge/internal/pod"
)

// HealthReader abstracts the aggregate query the status endpoint needs.
type HealthReader interface {
	Health(ctx context.Context) (pod.HealthSummary, error)
}

// PodService exposes pod operations returning API DTOs. The CLI and the HTTP
// server both sit on top of it so engine semantics apply uniformly.
type PodService struct {
	engine *handoff.Engine
	health HealthReader
}

// NewPodService constructs a PodService around the engine and health reader.
func NewPodService(engine *handoff.Engine, health HealthReader) *PodService {
	if engine == nil {
		return nil
	}
	return &PodService{engine: engine, health: health}
}

// List returns pods filtered by status.
func (s *PodService) List(ctx context.Context, statuses ...pod.Status) ([]Pod, error) {
	if s == nil || s.engine == nil {
		return nil, nil
	}
	pods, err := s.engine.ListPods(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	return FromPods(pods), nil
}

// Describe fetches a single pod.
func (s *PodService) Describe(ctx context.Context, id string) (*Pod, error) {
	if s == nil || s.engine == nil {
		return nil, nil
	}
	p, err := s.engine.GetPod(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromPod(p)
	return &dto, nil
}

// Create validates and persists a new pod.
func (s *PodService) Create(ctx context.Context, req CreatePodRequest) (*Pod, error) {
	if s == nil || s.engine == nil {
		return nil, nil
	}
	spec, err := ToCreateSpec(req)
	if err != nil {
		return nil, err
	}
	p, err := s.engine.CreatePod(ctx, spec)
	if err != nil {
		return nil, err
	}
	dto := FromPod(p)
	return &dto, nil
}

// Update reconciles a proposed pod snapshot through the handoff engine.
func (s *PodService) Update(ctx context.Context, dto Pod) (*Pod, error) {
	if s == nil || s.engine == nil {
		return nil, nil
	}
	proposal, err := ToProposal(dto)
	if err != nil {
		return nil, err
	}
	updated, err := s.engine.UpdatePod(ctx, proposal)
	if err != nil {
		return nil, err
	}
	out := FromPod(updated)
	return &out, nil
}

// Remove deletes a pod, reporting whether anything was removed.
func (s *PodService) Remove(ctx context.Context, id string) (bool, error) {
	if s == nil || s.engine == nil {
		return false, nil
	}
	return s.engine.DeletePod(ctx, id)
}

// Health returns aggregated pod counts keyed by status string.
func (s *PodService) Health(ctx context.Context) (map[string]int, error) {
	if s == nil || s.health == nil {
		return nil, nil
	}
	summary, err := s.health.Health(ctx)
	if err != nil {
		return nil, err
	}
	return MergeHealth(summary), nil
}
