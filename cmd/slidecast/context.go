package main

import (
	"log/slog"
	"strings"
	"sync"

	"slidecast/internal/api"
	"slidecast/internal/config"
	"slidecast/internal/logging"
	"slidecast/internal/pipeline"
	"slidecast/internal/queue"
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

// withService opens the job store, wires the pipeline, runs fn, and closes
// everything down afterwards. Each CLI invocation is one short-lived session.
func (c *commandContext) withService(fn func(*api.Service, *config.Config, *slog.Logger) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	store, err := queue.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	orch, err := pipeline.New(cfg, store, logger)
	if err != nil {
		return err
	}

	return fn(api.NewService(orch, store), cfg, logger)
}
