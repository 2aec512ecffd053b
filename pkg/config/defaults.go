package config

import "time"

// Default values for configuration fields.
const (
	DefaultEnvironment = EnvDevelopment

	// Caching defaults
	DefaultCachingEnabled = true
	DefaultCacheTTL       = 10 * time.Minute
	DefaultCacheEntries   = 1000

	// Rate limiting defaults
	DefaultRateLimitingEnabled = true
	DefaultRequestsPerMinute   = 60
	DefaultRequestsPerHour     = 1000

	// Feature defaults
	DefaultLearningEnabled = true
	DefaultFallbackEnabled = true

	// Security defaults
	DefaultMaxMemoryUsageMB = 128
	DefaultMaxExecutionTime = 30 * time.Second

	// Learning defaults
	DefaultLearningBackend    = "memory"
	DefaultLearningMaxRecords = 10000
	DefaultLearningRetention  = 90
	DefaultPruneSchedule      = "0 3 * * *"

	// Telemetry defaults
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "json"
	DefaultMetricsEnabled = true
)

// DefaultConfig returns a fully populated default configuration.
// Loading unmarshals the YAML file over this, so unset keys keep
// their defaults.
func DefaultConfig() *Config {
	return &Config{
		Environment: DefaultEnvironment,
		Caching: CachingConfig{
			Enabled:    DefaultCachingEnabled,
			DefaultTTL: DefaultCacheTTL,
			MaxEntries: DefaultCacheEntries,
		},
		RateLimiting: RateLimitingConfig{
			Enabled:           DefaultRateLimitingEnabled,
			RequestsPerMinute: DefaultRequestsPerMinute,
			RequestsPerHour:   DefaultRequestsPerHour,
		},
		Features: FeaturesConfig{
			LearningEnabled: DefaultLearningEnabled,
			FallbackEnabled: DefaultFallbackEnabled,
		},
		Security: SecurityConfig{
			AllowNetworkAccess: true,
			MaxMemoryUsageMB:   DefaultMaxMemoryUsageMB,
			MaxExecutionTime:   DefaultMaxExecutionTime,
		},
		Learning: LearningConfig{
			Backend:       DefaultLearningBackend,
			MaxRecords:    DefaultLearningMaxRecords,
			RetentionDays: DefaultLearningRetention,
			PruneSchedule: DefaultPruneSchedule,
		},
		Telemetry: TelemetryConfig{
			LogLevel:       DefaultLogLevel,
			LogFormat:      DefaultLogFormat,
			MetricsEnabled: DefaultMetricsEnabled,
		},
	}
}

// ApplyDefaults fills zero-valued numeric and string fields on a
// programmatically constructed Config. Boolean toggles are left as
// set; construct via DefaultConfig to get enabled-by-default behavior.
// Idempotent.
func ApplyDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = DefaultEnvironment
	}
	if cfg.Caching.DefaultTTL == 0 {
		cfg.Caching.DefaultTTL = DefaultCacheTTL
	}
	if cfg.Caching.MaxEntries == 0 {
		cfg.Caching.MaxEntries = DefaultCacheEntries
	}
	if cfg.RateLimiting.RequestsPerMinute == 0 {
		cfg.RateLimiting.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if cfg.RateLimiting.RequestsPerHour == 0 {
		cfg.RateLimiting.RequestsPerHour = DefaultRequestsPerHour
	}
	if cfg.Security.MaxMemoryUsageMB == 0 {
		cfg.Security.MaxMemoryUsageMB = DefaultMaxMemoryUsageMB
	}
	if cfg.Security.MaxExecutionTime == 0 {
		cfg.Security.MaxExecutionTime = DefaultMaxExecutionTime
	}
	if cfg.Learning.Backend == "" {
		cfg.Learning.Backend = DefaultLearningBackend
	}
	if cfg.Learning.MaxRecords == 0 {
		cfg.Learning.MaxRecords = DefaultLearningMaxRecords
	}
	if cfg.Telemetry.LogLevel == "" {
		cfg.Telemetry.LogLevel = DefaultLogLevel
	}
	if cfg.Telemetry.LogFormat == "" {
		cfg.Telemetry.LogFormat = DefaultLogFormat
	}
}
