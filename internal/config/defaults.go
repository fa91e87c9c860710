package config

const (
	defaultConfigPath              = "~/.config/jazzmate/config.toml"
	defaultDataDir                 = "~/.local/share/jazzmate"
	defaultLogDir                  = "~/.local/share/jazzmate/logs"
	defaultBackendURL              = "http://localhost:8080"
	defaultAIServiceURL            = "http://localhost:8000"
	defaultBackendTimeoutSeconds   = 10
	defaultAIServiceTimeoutSeconds = 60
	defaultRequestsPerSecond       = 5
	defaultBurst                   = 5
	defaultBreakerFailures         = 5
	defaultBreakerCooldownSeconds  = 30
	defaultPollIntervalSeconds     = 10
	defaultMaxAttempts             = 30
	defaultRecommendationLimit     = 3
	defaultLookupConcurrency       = 4
	defaultNotifyRequestTimeout    = 10
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
	defaultLogRetentionDays        = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Backend: Backend{
			BaseURL:                defaultBackendURL,
			TimeoutSeconds:         defaultBackendTimeoutSeconds,
			RequestsPerSecond:      defaultRequestsPerSecond,
			Burst:                  defaultBurst,
			BreakerFailures:        defaultBreakerFailures,
			BreakerCooldownSeconds: defaultBreakerCooldownSeconds,
		},
		AIService: AIService{
			BaseURL:        defaultAIServiceURL,
			TimeoutSeconds: defaultAIServiceTimeoutSeconds,
		},
		Recommendations: Recommendations{
			PollIntervalSeconds: defaultPollIntervalSeconds,
			MaxAttempts:         defaultMaxAttempts,
			Limit:               defaultRecommendationLimit,
			TriggerGeneration:   true,
			LookupConcurrency:   defaultLookupConcurrency,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
