package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a YAML file, applies environment
// overrides (AUGUR_SECTION_FIELD), and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read configuration file %q: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a configuration from YAML bytes. Unset keys keep their
// defaults; AUGUR_* environment variables take precedence over the
// file.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	ApplyDefaults(cfg)
	applyEnvOverrides(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies AUGUR_SECTION_FIELD environment variables.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("AUGUR_ENVIRONMENT"); val != "" {
		cfg.Environment = val
	}
	if val := os.Getenv("AUGUR_PROVIDERS"); val != "" {
		cfg.Providers = splitList(val)
	}

	if val, ok := envBool("AUGUR_CACHING_ENABLED"); ok {
		cfg.Caching.Enabled = val
	}
	if val, ok := envDuration("AUGUR_CACHING_DEFAULT_TTL"); ok {
		cfg.Caching.DefaultTTL = val
	}
	if val, ok := envInt("AUGUR_CACHING_MAX_ENTRIES"); ok {
		cfg.Caching.MaxEntries = val
	}

	if val, ok := envBool("AUGUR_RATE_LIMITING_ENABLED"); ok {
		cfg.RateLimiting.Enabled = val
	}
	if val, ok := envInt("AUGUR_RATE_LIMITING_REQUESTS_PER_MINUTE"); ok {
		cfg.RateLimiting.RequestsPerMinute = val
	}
	if val, ok := envInt("AUGUR_RATE_LIMITING_REQUESTS_PER_HOUR"); ok {
		cfg.RateLimiting.RequestsPerHour = val
	}

	if val, ok := envBool("AUGUR_FEATURES_LEARNING_ENABLED"); ok {
		cfg.Features.LearningEnabled = val
	}
	if val, ok := envBool("AUGUR_FEATURES_FALLBACK_ENABLED"); ok {
		cfg.Features.FallbackEnabled = val
	}
	if val, ok := envBool("AUGUR_FEATURES_RULE_WATCHING_ENABLED"); ok {
		cfg.Features.RuleWatchingEnabled = val
	}

	if val, ok := envBool("AUGUR_SECURITY_ALLOW_NETWORK_ACCESS"); ok {
		cfg.Security.AllowNetworkAccess = val
	}
	if val, ok := envBool("AUGUR_SECURITY_REQUIRED_SIGNATURE"); ok {
		cfg.Security.RequiredSignature = val
	}
	if val, ok := envInt("AUGUR_SECURITY_MAX_MEMORY_USAGE_MB"); ok {
		cfg.Security.MaxMemoryUsageMB = val
	}
	if val, ok := envDuration("AUGUR_SECURITY_MAX_EXECUTION_TIME"); ok {
		cfg.Security.MaxExecutionTime = val
	}
	if val := os.Getenv("AUGUR_SECURITY_TRUSTED_SOURCES"); val != "" {
		cfg.Security.TrustedSources = splitList(val)
	}

	if val := os.Getenv("AUGUR_LEARNING_BACKEND"); val != "" {
		cfg.Learning.Backend = val
	}
	if val := os.Getenv("AUGUR_LEARNING_PATH"); val != "" {
		cfg.Learning.Path = val
	}
	if val, ok := envInt("AUGUR_LEARNING_MAX_RECORDS"); ok {
		cfg.Learning.MaxRecords = val
	}

	if val := os.Getenv("AUGUR_RULES_FILE"); val != "" {
		cfg.Rules.File = val
	}

	if val := os.Getenv("AUGUR_LOG_LEVEL"); val != "" {
		cfg.Telemetry.LogLevel = val
	}
	if val := os.Getenv("AUGUR_LOG_FORMAT"); val != "" {
		cfg.Telemetry.LogFormat = val
	}
	if val, ok := envBool("AUGUR_METRICS_ENABLED"); ok {
		cfg.Telemetry.MetricsEnabled = val
	}
}

func envBool(name string) (bool, bool) {
	val := os.Getenv(name)
	if val == "" {
		return false, false
	}
	b, err := strconv.ParseBool(val)
	return b, err == nil
}

func envInt(name string) (int, bool) {
	val := os.Getenv(name)
	if val == "" {
		return 0, false
	}
	i, err := strconv.Atoi(val)
	return i, err == nil
}

func envDuration(name string) (time.Duration, bool) {
	val := os.Getenv(name)
	if val == "" {
		return 0, false
	}
	d, err := time.ParseDuration(val)
	return d, err == nil
}

func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
