package security

import (
	"context"
	"strings"
	"testing"

	"augur-hq/augur/pkg/analyzer"
)

// fakePlugin is a minimal plugin for validator tests.
type fakePlugin struct {
	analyzer.Capabilities
	name        string
	version     string
	meta        analyzer.PluginMetadata
	analyzeFunc func(ctx context.Context, req *analyzer.AnalysisRequest) (*analyzer.AnalysisResult, error)
}

func (p *fakePlugin) Name() string                      { return p.name }
func (p *fakePlugin) Version() string                   { return p.version }
func (p *fakePlugin) Metadata() analyzer.PluginMetadata { return p.meta }

func (p *fakePlugin) Analyze(ctx context.Context, req *analyzer.AnalysisRequest) (*analyzer.AnalysisResult, error) {
	if p.analyzeFunc != nil {
		return p.analyzeFunc(ctx, req)
	}
	return &analyzer.AnalysisResult{Success: true, Provider: p.name}, nil
}

func goodPlugin() *fakePlugin {
	return &fakePlugin{
		Capabilities: analyzer.Capabilities{Types: []analyzer.AnalysisType{analyzer.TypeSentiment}},
		name:         "fake-plugin",
		version:      "1.0.0",
		meta: analyzer.PluginMetadata{
			Author:      "Test Author",
			Description: "a well formed plugin",
		},
	}
}

func goodManifest() *Manifest {
	return &Manifest{
		Name:        "fake-plugin",
		Version:     "1.0.0",
		Author:      "Test Author",
		Permissions: []Permission{},
	}
}

func hasViolation(r *Result, code string) bool {
	for _, v := range r.Violations {
		if v.Code == code {
			return true
		}
	}
	return false
}

func TestValidator_TrustedPluginPasses(t *testing.T) {
	v := NewValidator(DefaultPolicy(), nil)
	v.Trust("fake-plugin")

	result := v.ValidatePlugin(goodPlugin(), nil)
	if !result.IsValid {
		t.Fatalf("trusted well-formed plugin should pass, violations: %+v", result.Violations)
	}
}

func TestValidator_NilPluginFails(t *testing.T) {
	v := NewValidator(DefaultPolicy(), nil)

	var p *fakePlugin // typed nil: analyze is not callable
	result := v.ValidatePlugin(p, nil)
	if result.IsValid {
		t.Fatal("nil plugin must fail validation")
	}
	if !hasViolation(result, "STRUCT_NIL_PLUGIN") {
		t.Errorf("expected STRUCT_NIL_PLUGIN violation, got %+v", result.Violations)
	}
}

func TestValidator_MetadataChecks(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*fakePlugin)
		wantCode string
	}{
		{
			name:     "uppercase name rejected",
			mutate:   func(p *fakePlugin) { p.name = "BadName" },
			wantCode: "META_INVALID_NAME",
		},
		{
			name:     "invalid semver rejected",
			mutate:   func(p *fakePlugin) { p.version = "1.0" },
			wantCode: "META_INVALID_VERSION",
		},
		{
			name:     "empty name rejected",
			mutate:   func(p *fakePlugin) { p.name = "" },
			wantCode: "STRUCT_MISSING_NAME",
		},
		{
			name:     "no supported types rejected",
			mutate:   func(p *fakePlugin) { p.Capabilities.Types = nil },
			wantCode: "STRUCT_NO_SUPPORTED_TYPES",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator(DefaultPolicy(), nil)
			p := goodPlugin()
			v.Trust(p.name)
			tt.mutate(p)
			v.Trust(p.name) // name may have changed

			result := v.ValidatePlugin(p, nil)
			if result.IsValid {
				t.Fatal("expected validation failure")
			}
			if !hasViolation(result, tt.wantCode) {
				t.Errorf("expected %s violation, got %+v", tt.wantCode, result.Violations)
			}
		})
	}
}

func TestValidator_MissingAuthorWarnsOnly(t *testing.T) {
	v := NewValidator(DefaultPolicy(), nil)
	p := goodPlugin()
	p.meta.Author = ""
	v.Trust(p.name)

	result := v.ValidatePlugin(p, nil)
	if !result.IsValid {
		t.Fatalf("missing author must warn, not fail: %+v", result.Violations)
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a warning for missing author")
	}
}

func TestValidator_NetworkPermissionUnderClosedPolicy(t *testing.T) {
	policy := DefaultPolicy()
	policy.AllowNetworkAccess = false
	v := NewValidator(policy, nil)

	m := goodManifest()
	m.Permissions = []Permission{PermissionNetworkUnrestricted}

	result := v.ValidatePlugin(goodPlugin(), m)
	if result.IsValid {
		t.Fatal("NETWORK_UNRESTRICTED under allow_network_access=false must fail")
	}
	if !hasViolation(result, "PERM_DENIED") {
		t.Errorf("expected PERM_DENIED violation, got %+v", result.Violations)
	}
}

func TestValidator_NetworkPermissionUnderOpenPolicyWarns(t *testing.T) {
	policy := DefaultPolicy()
	policy.AllowNetworkAccess = true
	v := NewValidator(policy, nil)

	m := goodManifest()
	m.Permissions = []Permission{PermissionNetworkUnrestricted}

	result := v.ValidatePlugin(goodPlugin(), m)
	if hasViolation(result, "PERM_DENIED") {
		t.Error("network permission under an open policy should only warn")
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, string(PermissionNetworkUnrestricted)) {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a warning naming the permission, got %v", result.Warnings)
	}
}

func TestValidator_UntrustedWithoutManifestFails(t *testing.T) {
	v := NewValidator(DefaultPolicy(), nil)

	result := v.ValidatePlugin(goodPlugin(), nil)
	if result.IsValid {
		t.Fatal("untrusted plugin without manifest must fail")
	}
	if !hasViolation(result, "TRUST_NO_MANIFEST") {
		t.Errorf("expected TRUST_NO_MANIFEST violation, got %+v", result.Violations)
	}
}

func TestValidator_ManifestChecks(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Manifest)
		wantCode string
	}{
		{
			name:     "missing author",
			mutate:   func(m *Manifest) { m.Author = "" },
			wantCode: "MANIFEST_INCOMPLETE",
		},
		{
			name:     "name mismatch",
			mutate:   func(m *Manifest) { m.Name = "other-plugin" },
			wantCode: "MANIFEST_NAME_MISMATCH",
		},
		{
			name:     "bad checksum",
			mutate:   func(m *Manifest) { m.Checksum = "zz11" },
			wantCode: "MANIFEST_BAD_CHECKSUM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator(DefaultPolicy(), nil)
			m := goodManifest()
			tt.mutate(m)

			result := v.ValidatePlugin(goodPlugin(), m)
			if !hasViolation(result, tt.wantCode) {
				t.Errorf("expected %s violation, got %+v", tt.wantCode, result.Violations)
			}
		})
	}
}

func TestValidator_SignatureRequired(t *testing.T) {
	policy := DefaultPolicy()
	policy.RequiredSignature = true
	policy.TrustedSources = []string{"https://plugins.example.com/"}
	v := NewValidator(policy, nil)

	t.Run("missing signature", func(t *testing.T) {
		result := v.ValidatePlugin(goodPlugin(), goodManifest())
		if !hasViolation(result, "SIG_MISSING") {
			t.Errorf("expected SIG_MISSING, got %+v", result.Violations)
		}
	})

	t.Run("bad signature format", func(t *testing.T) {
		m := goodManifest()
		m.Signature = "nothex"
		result := v.ValidatePlugin(goodPlugin(), m)
		if !hasViolation(result, "SIG_BAD_FORMAT") {
			t.Errorf("expected SIG_BAD_FORMAT, got %+v", result.Violations)
		}
	})

	t.Run("untrusted source recorded", func(t *testing.T) {
		m := goodManifest()
		m.Signature = strings.Repeat("ab", 64)
		m.Source = "https://evil.example.net/plugin"
		result := v.ValidatePlugin(goodPlugin(), m)
		if !hasViolation(result, "SIG_UNTRUSTED_SOURCE") {
			t.Errorf("expected SIG_UNTRUSTED_SOURCE, got %+v", result.Violations)
		}
	})

	t.Run("trusted source accepted", func(t *testing.T) {
		m := goodManifest()
		m.Signature = strings.Repeat("ab", 64)
		m.Source = "https://plugins.example.com/fake-plugin"
		result := v.ValidatePlugin(goodPlugin(), m)
		if hasViolation(result, "SIG_UNTRUSTED_SOURCE") {
			t.Errorf("trusted source should not be flagged, got %+v", result.Violations)
		}
	})
}

func TestValidator_PatternScan(t *testing.T) {
	v := NewValidator(DefaultPolicy(), nil)
	p := goodPlugin()
	v.Trust(p.name)
	p.meta.Description = `helper that calls eval("payload") at runtime`

	result := v.ValidatePlugin(p, nil)
	if result.IsValid {
		t.Fatal("dangerous pattern in plugin surface must fail validation")
	}
	if !hasViolation(result, "PATTERN_EVAL") {
		t.Errorf("expected PATTERN_EVAL violation, got %+v", result.Violations)
	}
}
