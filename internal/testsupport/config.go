package testsupport

import (
	"path/filepath"
	"testing"

	"jazzmate/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Rate limiting and the circuit breaker are disabled so tests observe every
// request.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Backend.RequestsPerSecond = 0
	cfgVal.Backend.BreakerFailures = 0
	cfgVal.User.ID = "test-user-001"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithBackend points both the backend and the AI service at baseURL.
func WithBackend(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Backend.BaseURL = baseURL
		b.cfg.AIService.BaseURL = baseURL
	}
}

// WithPolling overrides the poll interval and attempt budget.
func WithPolling(intervalSeconds, maxAttempts int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Recommendations.PollIntervalSeconds = intervalSeconds
		b.cfg.Recommendations.MaxAttempts = maxAttempts
	}
}

// WithNtfyTopic enables notifications against the given topic URL.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
