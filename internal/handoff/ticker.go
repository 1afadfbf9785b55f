package handoff

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"bridge/internal/logging"
)

// Runner drives the accountant tick on a fixed interval.
type Runner struct {
	engine   *Engine
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewRunner builds a tick runner. Intervals below one second are clamped.
func NewRunner(engine *Engine, interval time.Duration, logger *slog.Logger) *Runner {
	if interval < time.Second {
		interval = time.Second
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		engine:   engine,
		interval: interval,
		logger:   logging.NewComponentLogger(logger, "tick"),
	}
}

// Start launches the tick loop. It runs one pass immediately so freshly
// started daemons report elapsed time without waiting a full interval.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.started = true

	go r.loop(runCtx)
}

// Stop halts the loop and waits for the in-flight pass to finish.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	cancel := r.cancel
	done := r.done
	r.started = false
	r.mu.Unlock()

	cancel()
	<-done
}

func (r *Runner) loop(ctx context.Context) {
	defer close(r.done)

	r.tick(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Runner) tick(ctx context.Context) {
	if err := r.engine.Tick(ctx, time.Now()); err != nil {
		if ctx.Err() != nil {
			return
		}
		r.logger.Warn("tick pass reported errors", logging.Error(err))
	}
}
