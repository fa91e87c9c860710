package preflight

import (
	"context"

	"jazzmate/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes every preflight check for the given config. The AI
// service is skipped when it shares the backend's base URL.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckBackend(ctx, cfg.Backend.BaseURL),
	}
	if cfg.AIService.BaseURL != cfg.Backend.BaseURL {
		results = append(results, CheckAIService(ctx, cfg.AIService.BaseURL))
	}
	results = append(results, CheckNotifications(cfg.Notifications.NtfyTopic))
	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
