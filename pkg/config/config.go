package config

import (
	"time"

	"augur-hq/augur/pkg/security"
)

// Environment names recognized by Validate.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Config is the full engine configuration.
type Config struct {
	// Environment selects operational policy; plugin security
	// validation is enforced only in production.
	Environment string `yaml:"environment"`

	// Providers restricts which upstream providers plugins may
	// consult. Empty means no restriction.
	Providers []string `yaml:"providers,omitempty"`

	Caching      CachingConfig      `yaml:"caching"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting"`
	Features     FeaturesConfig     `yaml:"features"`
	Security     SecurityConfig     `yaml:"security"`
	Learning     LearningConfig     `yaml:"learning"`
	Rules        RulesConfig        `yaml:"rules"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
}

// CachingConfig controls the result cache.
type CachingConfig struct {
	Enabled bool `yaml:"enabled"`

	// DefaultTTL applies to analysis types without a specific TTL.
	DefaultTTL time.Duration `yaml:"default_ttl"`

	// TypeTTLs overrides the TTL per analysis type.
	TypeTTLs map[string]time.Duration `yaml:"type_ttls,omitempty"`

	// MaxEntries bounds the cache; oldest entries are evicted past it.
	MaxEntries int `yaml:"max_entries"`
}

// RateLimitingConfig controls request admission.
type RateLimitingConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	RequestsPerHour   int  `yaml:"requests_per_hour"`
}

// FeaturesConfig toggles optional engine behavior.
type FeaturesConfig struct {
	// LearningEnabled records analysis outcomes in the learning store.
	LearningEnabled bool `yaml:"learning_enabled"`

	// FallbackEnabled honors per-request fallback strategies.
	FallbackEnabled bool `yaml:"fallback_enabled"`

	// RuleWatchingEnabled reloads the standing rule file on change.
	RuleWatchingEnabled bool `yaml:"rule_watching_enabled"`
}

// SecurityConfig mirrors the plugin security policy.
type SecurityConfig struct {
	AllowDynamicImports   bool          `yaml:"allow_dynamic_imports"`
	AllowNetworkAccess    bool          `yaml:"allow_network_access"`
	AllowFileSystemAccess bool          `yaml:"allow_file_system_access"`
	AllowExecute          bool          `yaml:"allow_execute"`
	MaxMemoryUsageMB      int           `yaml:"max_memory_usage_mb"`
	MaxExecutionTime      time.Duration `yaml:"max_execution_time"`
	RequiredSignature     bool          `yaml:"required_signature"`
	TrustedSources        []string      `yaml:"trusted_sources,omitempty"`
	TrustedPlugins        []string      `yaml:"trusted_plugins,omitempty"`
}

// Policy converts the section into the security package's policy type.
func (s SecurityConfig) Policy() security.Policy {
	return security.Policy{
		AllowDynamicImports:   s.AllowDynamicImports,
		AllowNetworkAccess:    s.AllowNetworkAccess,
		AllowFileSystemAccess: s.AllowFileSystemAccess,
		AllowExecute:          s.AllowExecute,
		MaxMemoryUsageMB:      s.MaxMemoryUsageMB,
		MaxExecutionTime:      s.MaxExecutionTime,
		RequiredSignature:     s.RequiredSignature,
		TrustedSources:        append([]string(nil), s.TrustedSources...),
	}
}

// LearningConfig controls learning persistence.
type LearningConfig struct {
	// Backend is "memory" or "sqlite".
	Backend string `yaml:"backend"`

	// Path is the SQLite database file (sqlite backend only).
	Path string `yaml:"path,omitempty"`

	// MaxRecords caps the stored trace.
	MaxRecords int `yaml:"max_records"`

	// RetentionDays prunes records older than this many days; 0 keeps
	// them forever.
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is the cron expression for scheduled pruning.
	PruneSchedule string `yaml:"prune_schedule,omitempty"`
}

// RulesConfig points at an optional standing rule file.
type RulesConfig struct {
	// File is a YAML rule file loaded at startup. Empty disables
	// standing rules; rules can still be passed per call.
	File string `yaml:"file,omitempty"`
}

// TelemetryConfig controls logging and metrics.
type TelemetryConfig struct {
	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// LogFormat is "json" or "text".
	LogFormat string `yaml:"log_format"`

	// MetricsEnabled exposes Prometheus collectors.
	MetricsEnabled bool `yaml:"metrics_enabled"`
}

// IsProduction reports whether the production environment is selected.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}
