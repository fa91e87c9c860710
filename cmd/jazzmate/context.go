package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"jazzmate/internal/config"
	"jazzmate/internal/logging"
	"jazzmate/internal/services"
	"jazzmate/internal/services/aiservice"
	"jazzmate/internal/services/jazzmate"
	"jazzmate/internal/services/transport"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
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

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// loggerValue returns the configured logger, falling back to a no-op logger
// when the log file cannot be opened.
func (c *commandContext) loggerValue() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.configValue())
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) backend() (*jazzmate.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return jazzmate.NewFromConfig(cfg, transport.WithLogger(c.loggerValue())), nil
}

func (c *commandContext) aiService() (*aiservice.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return aiservice.NewFromConfig(cfg, transport.WithLogger(c.loggerValue())), nil
}

// userID resolves the reviewer: an explicit flag wins over the configured id.
func (c *commandContext) userID(flagValue string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	if cfg := c.configValue(); cfg != nil {
		return cfg.User.ID
	}
	return ""
}

func commandCtx(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func parseIDArg(arg, what string) (jazzmate.ID, error) {
	id, err := jazzmate.ParseID(arg)
	if err != nil {
		return "", fmt.Errorf("invalid %s id %q: %w", what, arg, err)
	}
	return id, nil
}

// describeError turns classified service errors into a short user-facing
// sentence while keeping the wrapped detail.
func describeError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrNotFound):
		return fmt.Errorf("%s not found: %w", what, err)
	case errors.Is(err, services.ErrUnavailable):
		return fmt.Errorf("backend temporarily unavailable, try again shortly: %w", err)
	case errors.Is(err, services.ErrTransient), errors.Is(err, services.ErrTimeout):
		return fmt.Errorf("could not reach the backend: %w", err)
	default:
		return err
	}
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
