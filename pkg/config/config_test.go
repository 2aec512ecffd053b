package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate(DefaultConfig()) error = %v", err)
	}
	if !cfg.Caching.Enabled || !cfg.RateLimiting.Enabled {
		t.Error("caching and rate limiting are not enabled by default")
	}
	if cfg.RateLimiting.RequestsPerMinute != 60 || cfg.RateLimiting.RequestsPerHour != 1000 {
		t.Errorf("rate limit defaults = %d/%d", cfg.RateLimiting.RequestsPerMinute, cfg.RateLimiting.RequestsPerHour)
	}
	if cfg.IsProduction() {
		t.Error("default environment is production")
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
environment: production
caching:
  enabled: false
rate_limiting:
  requests_per_minute: 10
security:
  max_execution_time: 5s
learning:
  backend: sqlite
  path: data/learning.db
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("environment override lost")
	}
	if cfg.Caching.Enabled {
		t.Error("caching.enabled override lost")
	}
	if cfg.RateLimiting.RequestsPerMinute != 10 {
		t.Errorf("RequestsPerMinute = %d, want 10", cfg.RateLimiting.RequestsPerMinute)
	}
	// Unset keys keep defaults.
	if cfg.RateLimiting.RequestsPerHour != DefaultRequestsPerHour {
		t.Errorf("RequestsPerHour = %d, want default %d", cfg.RateLimiting.RequestsPerHour, DefaultRequestsPerHour)
	}
	if cfg.Security.MaxExecutionTime != 5*time.Second {
		t.Errorf("MaxExecutionTime = %s, want 5s", cfg.Security.MaxExecutionTime)
	}
	if cfg.Learning.Backend != "sqlite" || cfg.Learning.Path != "data/learning.db" {
		t.Errorf("learning = %+v", cfg.Learning)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad environment", "environment: qa", "environment"},
		{"hour below minute", "rate_limiting:\n  requests_per_minute: 100\n  requests_per_hour: 50", "requests_per_hour"},
		{"sqlite without path", "learning:\n  backend: sqlite", "learning.path"},
		{"unknown backend", "learning:\n  backend: redis", "learning.backend"},
		{"bad log level", "telemetry:\n  log_level: loud", "log_level"},
		{"bad cron", "learning:\n  prune_schedule: whenever", "prune_schedule"},
		{"tiny execution time", "security:\n  max_execution_time: 1ms", "max_execution_time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() error = nil, want validation failure")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "augur.yaml")
	content := "environment: staging\ncaching:\n  max_entries: 50\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Environment != EnvStaging || cfg.Caching.MaxEntries != 50 {
		t.Errorf("loaded config = %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load() error = nil, want read failure")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AUGUR_ENVIRONMENT", "production")
	t.Setenv("AUGUR_RATE_LIMITING_REQUESTS_PER_MINUTE", "5")
	t.Setenv("AUGUR_CACHING_ENABLED", "false")
	t.Setenv("AUGUR_CACHING_DEFAULT_TTL", "1m")
	t.Setenv("AUGUR_SECURITY_TRUSTED_SOURCES", "https://plugins.augur.dev, https://internal.example.com")

	cfg, err := Parse([]byte("environment: development\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("AUGUR_ENVIRONMENT did not take precedence over the file")
	}
	if cfg.RateLimiting.RequestsPerMinute != 5 {
		t.Errorf("RequestsPerMinute = %d, want 5", cfg.RateLimiting.RequestsPerMinute)
	}
	if cfg.Caching.Enabled {
		t.Error("AUGUR_CACHING_ENABLED=false ignored")
	}
	if cfg.Caching.DefaultTTL != time.Minute {
		t.Errorf("DefaultTTL = %s, want 1m", cfg.Caching.DefaultTTL)
	}
	if len(cfg.Security.TrustedSources) != 2 || cfg.Security.TrustedSources[1] != "https://internal.example.com" {
		t.Errorf("TrustedSources = %v", cfg.Security.TrustedSources)
	}
}

func TestSecurityConfigPolicy(t *testing.T) {
	sc := SecurityConfig{
		AllowNetworkAccess: true,
		MaxMemoryUsageMB:   64,
		MaxExecutionTime:   2 * time.Second,
		RequiredSignature:  true,
		TrustedSources:     []string{"https://plugins.augur.dev"},
	}
	policy := sc.Policy()
	if !policy.AllowNetworkAccess || policy.MaxMemoryUsageMB != 64 ||
		policy.MaxExecutionTime != 2*time.Second || !policy.RequiredSignature {
		t.Errorf("Policy() = %+v", policy)
	}

	// The converted policy owns its slice.
	policy.TrustedSources[0] = "mutated"
	if sc.TrustedSources[0] != "https://plugins.augur.dev" {
		t.Error("Policy() aliases the config's TrustedSources slice")
	}
}
