package security

import "time"

// Permission is a capability a plugin manifest may declare.
type Permission string

const (
	PermissionFileSystemRead      Permission = "FILE_SYSTEM_READ"
	PermissionFileSystemWrite     Permission = "FILE_SYSTEM_WRITE"
	PermissionNetworkHTTP         Permission = "NETWORK_HTTP"
	PermissionNetworkUnrestricted Permission = "NETWORK_UNRESTRICTED"
	PermissionExecuteCommands     Permission = "EXECUTE_COMMANDS"
	PermissionDynamicImports      Permission = "DYNAMIC_IMPORTS"
	PermissionEvalCode            Permission = "EVAL_CODE"
)

// dangerousPermissions is the fixed set of permissions that always
// draw scrutiny during validation.
var dangerousPermissions = map[Permission]bool{
	PermissionFileSystemWrite:     true,
	PermissionNetworkUnrestricted: true,
	PermissionExecuteCommands:     true,
	PermissionDynamicImports:      true,
	PermissionEvalCode:            true,
}

// IsDangerous reports whether the permission is in the dangerous set.
func (p Permission) IsDangerous() bool {
	return dangerousPermissions[p]
}

// IsNetworkClass reports whether the permission grants network access.
func (p Permission) IsNetworkClass() bool {
	return p == PermissionNetworkHTTP || p == PermissionNetworkUnrestricted
}

// Policy is the process-wide security configuration. It is set once
// at construction and read-only thereafter; nothing in the engine
// mutates it at runtime.
type Policy struct {
	// AllowDynamicImports permits DYNAMIC_IMPORTS without violation.
	AllowDynamicImports bool `yaml:"allow_dynamic_imports"`

	// AllowNetworkAccess permits network-class permissions. When
	// false, any network-class permission is a hard violation;
	// otherwise it is recorded as a warning only.
	AllowNetworkAccess bool `yaml:"allow_network_access"`

	// AllowFileSystemAccess permits filesystem permissions.
	AllowFileSystemAccess bool `yaml:"allow_file_system_access"`

	// AllowExecute permits EXECUTE_COMMANDS.
	AllowExecute bool `yaml:"allow_execute"`

	// MaxMemoryUsageMB is the sandbox heap-growth budget per call.
	MaxMemoryUsageMB int `yaml:"max_memory_usage_mb"`

	// MaxExecutionTime is the sandbox wall-clock deadline per call.
	MaxExecutionTime time.Duration `yaml:"max_execution_time"`

	// RequiredSignature makes a manifest signature mandatory for
	// non-core plugins.
	RequiredSignature bool `yaml:"required_signature"`

	// TrustedSources are source URL prefixes accepted for signed
	// manifests that declare a source.
	TrustedSources []string `yaml:"trusted_sources"`
}

// DefaultPolicy returns a restrictive default policy.
func DefaultPolicy() Policy {
	return Policy{
		AllowDynamicImports:   false,
		AllowNetworkAccess:    true,
		AllowFileSystemAccess: false,
		AllowExecute:          false,
		MaxMemoryUsageMB:      128,
		MaxExecutionTime:      30 * time.Second,
		RequiredSignature:     false,
		TrustedSources:        nil,
	}
}
