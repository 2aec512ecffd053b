package config

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Validate checks the configuration for internal consistency. It
// returns the first problem found.
func Validate(cfg *Config) error {
	switch cfg.Environment {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		return fmt.Errorf("environment %q is not one of %s, %s, %s",
			cfg.Environment, EnvDevelopment, EnvStaging, EnvProduction)
	}

	if cfg.Caching.Enabled {
		if cfg.Caching.DefaultTTL <= 0 {
			return fmt.Errorf("caching.default_ttl must be positive, got %s", cfg.Caching.DefaultTTL)
		}
		if cfg.Caching.MaxEntries <= 0 {
			return fmt.Errorf("caching.max_entries must be positive, got %d", cfg.Caching.MaxEntries)
		}
		for name, ttl := range cfg.Caching.TypeTTLs {
			if ttl <= 0 {
				return fmt.Errorf("caching.type_ttls[%s] must be positive, got %s", name, ttl)
			}
		}
	}

	if cfg.RateLimiting.Enabled {
		if cfg.RateLimiting.RequestsPerMinute < 0 || cfg.RateLimiting.RequestsPerHour < 0 {
			return fmt.Errorf("rate limits cannot be negative")
		}
		if perMin, perHour := cfg.RateLimiting.RequestsPerMinute, cfg.RateLimiting.RequestsPerHour; perMin > 0 && perHour > 0 && perHour < perMin {
			return fmt.Errorf("rate_limiting.requests_per_hour (%d) below requests_per_minute (%d)", perHour, perMin)
		}
	}

	if cfg.Security.MaxMemoryUsageMB < 0 {
		return fmt.Errorf("security.max_memory_usage_mb cannot be negative")
	}
	if cfg.Security.MaxExecutionTime < 0 {
		return fmt.Errorf("security.max_execution_time cannot be negative")
	}
	if cfg.Security.MaxExecutionTime > 0 && cfg.Security.MaxExecutionTime < 10*time.Millisecond {
		return fmt.Errorf("security.max_execution_time %s is below the 10ms floor", cfg.Security.MaxExecutionTime)
	}

	switch cfg.Learning.Backend {
	case "memory":
	case "sqlite":
		if cfg.Learning.Path == "" {
			return fmt.Errorf("learning.path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("learning.backend %q is not one of memory, sqlite", cfg.Learning.Backend)
	}
	if cfg.Learning.MaxRecords < 0 {
		return fmt.Errorf("learning.max_records cannot be negative")
	}
	if cfg.Learning.RetentionDays < 0 {
		return fmt.Errorf("learning.retention_days cannot be negative")
	}
	if cfg.Learning.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Learning.PruneSchedule); err != nil {
			return fmt.Errorf("learning.prune_schedule: %w", err)
		}
	}

	switch cfg.Telemetry.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("telemetry.log_level %q is not one of debug, info, warn, error", cfg.Telemetry.LogLevel)
	}
	switch cfg.Telemetry.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("telemetry.log_format %q is not one of json, text", cfg.Telemetry.LogFormat)
	}

	return nil
}
