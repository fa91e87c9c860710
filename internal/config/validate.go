package config

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEndpoints(); err != nil {
		return err
	}
	if err := c.validateBackend(); err != nil {
		return err
	}
	if err := c.validateRecommendations(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateEndpoints() error {
	for key, raw := range map[string]string{
		"backend.base_url":    c.Backend.BaseURL,
		"ai_service.base_url": c.AIService.BaseURL,
	} {
		parsed, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("%s must use http or https, got %q", key, raw)
		}
		if parsed.Host == "" {
			return fmt.Errorf("%s must include a host, got %q", key, raw)
		}
	}
	return nil
}

func (c *Config) validateBackend() error {
	if c.Backend.RequestsPerSecond < 0 {
		return errors.New("backend.requests_per_second must not be negative")
	}
	if c.Backend.BreakerFailures < 0 {
		return errors.New("backend.breaker_failures must not be negative")
	}
	return nil
}

func (c *Config) validateRecommendations() error {
	if err := ensurePositiveMap(map[string]int{
		"recommendations.poll_interval_seconds": c.Recommendations.PollIntervalSeconds,
		"recommendations.max_attempts":          c.Recommendations.MaxAttempts,
	}); err != nil {
		return err
	}
	if c.Recommendations.Limit > 50 {
		return errors.New("recommendations.limit must be at most 50")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
