package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"medialib/internal/config"
	"medialib/internal/disk"
	"medialib/internal/logging"
	"medialib/internal/mediastore"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	verboseFlag  *bool
	stderr       io.Writer

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag, logLevelFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		verboseFlag:  verboseFlag,
	}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
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

// loggerValue returns the file logger, falling back to a no-op logger when
// the log file cannot be opened. --verbose mirrors it to stderr.
func (c *commandContext) loggerValue() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		level := ""
		if c.logLevelFlag != nil {
			level = *c.logLevelFlag
		}
		logger, err := logging.NewFromConfig(cfg, level)
		if err != nil {
			logger = logging.NewNop()
		}
		if c.verboseFlag != nil && *c.verboseFlag && c.stderr != nil {
			if level == "" {
				level = cfg.Logging.Level
			}
			logger = logging.Mirror(logger, c.stderr, level)
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) withStore(ctx context.Context, fn func(mediastore.Repository) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := mediastore.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open media store: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func (c *commandContext) disks(ctx context.Context) (*disk.Registry, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	reg, err := disk.NewRegistry(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("configure disks: %w", err)
	}
	return reg, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
