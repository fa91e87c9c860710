package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeBackend()
	c.normalizeAIService()
	c.normalizeRecommendations()
	c.normalizeUser()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeBackend() {
	if value, ok := os.LookupEnv("JAZZMATE_BACKEND_URL"); ok && strings.TrimSpace(value) != "" {
		c.Backend.BaseURL = value
	}
	c.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(c.Backend.BaseURL), "/")
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = defaultBackendURL
	}
	if c.Backend.TimeoutSeconds <= 0 {
		c.Backend.TimeoutSeconds = defaultBackendTimeoutSeconds
	}
	if c.Backend.Burst <= 0 {
		c.Backend.Burst = defaultBurst
	}
	if c.Backend.BreakerCooldownSeconds <= 0 {
		c.Backend.BreakerCooldownSeconds = defaultBreakerCooldownSeconds
	}
}

func (c *Config) normalizeAIService() {
	if value, ok := os.LookupEnv("JAZZMATE_AI_SERVICE_URL"); ok && strings.TrimSpace(value) != "" {
		c.AIService.BaseURL = value
	}
	c.AIService.BaseURL = strings.TrimRight(strings.TrimSpace(c.AIService.BaseURL), "/")
	if c.AIService.BaseURL == "" {
		c.AIService.BaseURL = c.Backend.BaseURL
	}
	if c.AIService.TimeoutSeconds <= 0 {
		c.AIService.TimeoutSeconds = defaultAIServiceTimeoutSeconds
	}
}

func (c *Config) normalizeRecommendations() {
	if c.Recommendations.Limit <= 0 {
		c.Recommendations.Limit = defaultRecommendationLimit
	}
	if c.Recommendations.LookupConcurrency <= 0 {
		c.Recommendations.LookupConcurrency = defaultLookupConcurrency
	}
}

func (c *Config) normalizeUser() {
	c.User.ID = strings.TrimSpace(c.User.ID)
	if c.User.ID == "" {
		if value, ok := os.LookupEnv("JAZZMATE_USER_ID"); ok {
			c.User.ID = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
