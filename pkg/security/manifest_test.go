package security

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plugin.yaml")
	content := `name: fake-plugin
version: 1.0.0
author: Test Author
permissions:
  - FILE_SYSTEM_READ
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}
	if m.Name != "fake-plugin" || m.Version != "1.0.0" || m.Author != "Test Author" {
		t.Errorf("LoadManifest() = %+v", m)
	}
	if len(m.Permissions) != 1 || m.Permissions[0] != PermissionFileSystemRead {
		t.Errorf("Permissions = %v, want [FILE_SYSTEM_READ]", m.Permissions)
	}

	if _, err := LoadManifest(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadManifest(missing) should fail")
	}
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("permissions: [unterminated"), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	if _, err := LoadManifest(bad); err == nil {
		t.Error("LoadManifest(malformed) should fail")
	}
}

func TestValidateManifestStandalone(t *testing.T) {
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
			name:     "uppercase name",
			mutate:   func(m *Manifest) { m.Name = "BadName" },
			wantCode: "META_INVALID_NAME",
		},
		{
			name:     "invalid semver",
			mutate:   func(m *Manifest) { m.Version = "1.0" },
			wantCode: "META_INVALID_VERSION",
		},
		{
			name:     "bad checksum",
			mutate:   func(m *Manifest) { m.Checksum = "zz11" },
			wantCode: "MANIFEST_BAD_CHECKSUM",
		},
		{
			name:     "denied permission",
			mutate:   func(m *Manifest) { m.Permissions = []Permission{PermissionExecuteCommands} },
			wantCode: "PERM_DENIED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator(DefaultPolicy(), nil)
			m := goodManifest()
			tt.mutate(m)

			result := v.ValidateManifest(m)
			if result.IsValid {
				t.Error("ValidateManifest() should report the manifest invalid")
			}
			if !hasViolation(result, tt.wantCode) {
				t.Errorf("expected %s violation, got %+v", tt.wantCode, result.Violations)
			}
		})
	}

	t.Run("well formed manifest passes", func(t *testing.T) {
		v := NewValidator(DefaultPolicy(), nil)
		if result := v.ValidateManifest(goodManifest()); !result.IsValid {
			t.Errorf("violations: %+v", result.Violations)
		}
	})

	t.Run("nil manifest fails", func(t *testing.T) {
		v := NewValidator(DefaultPolicy(), nil)
		result := v.ValidateManifest(nil)
		if result.IsValid || !hasViolation(result, "MANIFEST_MISSING") {
			t.Errorf("nil manifest: %+v", result)
		}
	})
}
