package daemon_test

import (
	"context"
	"log/slog"
	"testing"

	"bridge/internal/config"
	"bridge/internal/daemon"
	"bridge/internal/handoff"
	"bridge/internal/logging"
	"bridge/internal/notifications"
	"bridge/internal/pod"
	"bridge/internal/testsupport"
)

func newTestDaemon(t *testing.T, cfg *config.Config) (*daemon.Daemon, *pod.Store) {
	t.Helper()
	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()
	engine := newDaemonEngine(store, logger, cfg)

	d, err := daemon.New(cfg, store, engine, logger)
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	return d, store
}

func newDaemonEngine(store *pod.Store, logger *slog.Logger, cfg *config.Config) *handoff.Engine {
	return handoff.NewEngine(store, notifications.NewService(cfg), logger,
		handoff.WithDefaultOrder(cfg.DefaultWorkflow))
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.APIBind = "127.0.0.1:0"
	d, _ := newTestDaemon(t, cfg)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if addr := d.APIAddr(); addr == "" {
		t.Fatal("expected API listener address while running")
	}

	status := d.Status(context.Background())
	if !status.Running {
		t.Fatal("status should report running")
	}
	if status.DatabasePath != cfg.DatabasePath() {
		t.Fatalf("database path = %q", status.DatabasePath)
	}

	d.Stop()
	if d.Status(context.Background()).Running {
		t.Fatal("status should report stopped")
	}
	// Stop again is a no-op.
	d.Stop()
}

func TestDaemonRejectsSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.APIBind = ""
	first, _ := newTestDaemon(t, cfg)

	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("start first: %v", err)
	}
	defer first.Stop()

	store := testsupport.MustOpenStore(t, cfg)
	second, err := daemon.New(cfg, store, newDaemonEngine(store, logging.NewNop(), cfg), logging.NewNop())
	if err != nil {
		t.Fatalf("new second daemon: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("second instance should fail to acquire the lock")
	}
}
