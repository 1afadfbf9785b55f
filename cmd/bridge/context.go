package main

import (
	"context"
	"strings"
	"sync"

	"bridge/internal/api"
	"bridge/internal/config"
	"bridge/internal/handoff"
	"bridge/internal/logging"
	"bridge/internal/notifications"
	"bridge/internal/pod"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// withService opens the store, builds the engine, and hands a pod service to
// fn. The store is closed when fn returns.
func (c *commandContext) withService(ctx context.Context, fn func(context.Context, *api.PodService) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	store, err := pod.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	engine := handoff.NewEngine(store, notifications.NewService(cfg), logging.NewNop(),
		handoff.WithDefaultOrder(cfg.DefaultWorkflow))
	return fn(ctx, api.NewPodService(engine, store))
}
