// Package testsupport provides helpers shared by package tests.
package testsupport

import (
	"context"
	"testing"

	"bridge/internal/config"
	"bridge/internal/pod"
)

// NewConfig returns a validated configuration rooted in per-test temp
// directories with a short tick interval.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.LogDir = t.TempDir()
	cfg.TickInterval = 1

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate config: %v", err)
	}
	return &cfg
}

// MustOpenStore opens a pod store for the given configuration and registers
// cleanup.
func MustOpenStore(t *testing.T, cfg *config.Config) *pod.Store {
	t.Helper()

	store, err := pod.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}
