package security

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"augur-hq/augur/pkg/analyzer"
)

// Severity grades a validation violation.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// fatal reports whether a violation of this severity fails validation.
// Low and medium violations are recorded for the report but do not by
// themselves flip IsValid.
func (s Severity) fatal() bool {
	return s == SeverityHigh || s == SeverityCritical
}

// Violation is a single validation finding.
type Violation struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
}

// Result is the outcome of one validation call. It is transient:
// produced per call and never retained by the validator.
type Result struct {
	// IsValid is false iff any violation of fatal severity was recorded.
	IsValid bool `json:"is_valid"`

	// Violations are the recorded findings, in check order.
	Violations []Violation `json:"violations,omitempty"`

	// Warnings are non-fatal findings.
	Warnings []string `json:"warnings,omitempty"`

	// Recommendations suggest how to clear the findings.
	Recommendations []string `json:"recommendations,omitempty"`
}

func (r *Result) addViolation(sev Severity, code, message string) {
	r.Violations = append(r.Violations, Violation{Severity: sev, Code: code, Message: message})
	if sev.fatal() {
		r.IsValid = false
	}
}

func (r *Result) addWarning(message string) {
	r.Warnings = append(r.Warnings, message)
}

func (r *Result) recommend(message string) {
	r.Recommendations = append(r.Recommendations, message)
}

var (
	nameRe      = regexp.MustCompile(`^[a-z0-9-]+$`)
	semverRe    = regexp.MustCompile(`^\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?$`)
	checksumRe  = regexp.MustCompile(`^[a-f0-9]{64}$`)
	signatureRe = regexp.MustCompile(`^[a-f0-9]{128}$`)
)

// Validator gates plugin admission. It holds the process security
// policy, the static scan rules, and the trusted-plugin allowlist.
// It is safe for concurrent use.
type Validator struct {
	policy   Policy
	patterns []PatternRule

	mu      sync.RWMutex
	trusted map[string]bool

	logger *slog.Logger
}

// NewValidator creates a validator with the given policy and the
// default pattern rules.
func NewValidator(policy Policy, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		policy:   policy,
		patterns: DefaultPatternRules(),
		trusted:  make(map[string]bool),
		logger:   logger.With("component", "security.validator"),
	}
}

// SetPatternRules replaces the static scan rules.
func (v *Validator) SetPatternRules(rules []PatternRule) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.patterns = rules
}

// Policy returns the validator's security policy.
func (v *Validator) Policy() Policy {
	return v.policy
}

// Trust adds a plugin name to the trusted allowlist. Trusted plugins
// do not require a manifest and bypass the sandbox.
func (v *Validator) Trust(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.trusted[name] = true
}

// Untrust removes a plugin name from the allowlist.
func (v *Validator) Untrust(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.trusted, name)
}

// IsTrusted reports whether a plugin name is on the allowlist.
func (v *Validator) IsTrusted(name string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.trusted[name]
}

// ValidatePlugin runs every check against the plugin and its optional
// manifest. Checks contribute findings independently; none
// short-circuits the others, so one call reports everything wrong at
// once.
func (v *Validator) ValidatePlugin(p analyzer.Plugin, manifest *Manifest) *Result {
	result := &Result{IsValid: true}

	if !v.checkStructural(p, result) {
		// Nothing callable to inspect further.
		return result
	}

	v.checkMetadata(p, result)
	if manifest != nil {
		v.checkManifest(p, manifest, result)
		v.checkPermissions(manifest, result)
	}
	v.checkSignature(manifest, result)
	v.checkPatterns(p, manifest, result)
	v.checkSerializability(p, result)
	v.checkTrust(p, manifest, result)

	if !result.IsValid {
		v.logger.Warn("plugin failed validation",
			"plugin", p.Name(),
			"violations", len(result.Violations),
			"warnings", len(result.Warnings),
		)
	}
	return result
}

// ValidateManifest checks a manifest on its own, without a plugin
// instance to compare it against. Tooling uses it to vet a manifest
// file before the plugin is ever loaded; the name-match and
// plugin-surface checks only run in ValidatePlugin.
func (v *Validator) ValidateManifest(m *Manifest) *Result {
	result := &Result{IsValid: true}
	if m == nil {
		result.addViolation(SeverityCritical, "MANIFEST_MISSING", "no manifest to validate")
		return result
	}

	if m.Name == "" || m.Version == "" || m.Author == "" || m.Permissions == nil {
		result.addViolation(SeverityHigh, "MANIFEST_INCOMPLETE",
			"manifest requires name, version, author and permissions")
	}
	if m.Name != "" && !nameRe.MatchString(m.Name) {
		result.addViolation(SeverityHigh, "META_INVALID_NAME",
			fmt.Sprintf("manifest name %q must match %s", m.Name, nameRe.String()))
	}
	if m.Version != "" && !semverRe.MatchString(m.Version) {
		result.addViolation(SeverityHigh, "META_INVALID_VERSION",
			fmt.Sprintf("manifest version %q is not valid semver", m.Version))
	}
	if m.Checksum != "" && !checksumRe.MatchString(m.Checksum) {
		result.addViolation(SeverityHigh, "MANIFEST_BAD_CHECKSUM",
			"manifest checksum must be 64 lowercase hex characters (SHA-256)")
	}
	v.checkPermissions(m, result)
	v.checkSignature(m, result)
	return result
}

// checkStructural verifies the plugin instance is usable at all.
// Returns false when the remaining checks cannot run.
func (v *Validator) checkStructural(p analyzer.Plugin, result *Result) bool {
	if p == nil || isNilValue(p) {
		result.addViolation(SeverityCritical, "STRUCT_NIL_PLUGIN",
			"plugin instance is nil; analyze is not callable")
		return false
	}
	if p.Name() == "" {
		result.addViolation(SeverityHigh, "STRUCT_MISSING_NAME", "plugin name is required")
	}
	if p.Version() == "" {
		result.addViolation(SeverityHigh, "STRUCT_MISSING_VERSION", "plugin version is required")
	}
	if len(p.SupportedTypes()) == 0 {
		result.addViolation(SeverityHigh, "STRUCT_NO_SUPPORTED_TYPES",
			"plugin declares no supported analysis types")
	}
	return true
}

func (v *Validator) checkMetadata(p analyzer.Plugin, result *Result) {
	if name := p.Name(); name != "" && !nameRe.MatchString(name) {
		result.addViolation(SeverityHigh, "META_INVALID_NAME",
			fmt.Sprintf("plugin name %q must match %s", name, nameRe.String()))
	}
	if version := p.Version(); version != "" && !semverRe.MatchString(version) {
		result.addViolation(SeverityHigh, "META_INVALID_VERSION",
			fmt.Sprintf("plugin version %q is not valid semver", version))
	}

	meta := p.Metadata()
	if meta.Author == "" {
		result.addWarning("plugin metadata has no author")
	}
	if meta.Description == "" {
		result.addWarning("plugin metadata has no description")
		result.recommend("add a description to the plugin metadata")
	}
}

func (v *Validator) checkManifest(p analyzer.Plugin, m *Manifest, result *Result) {
	if m.Name == "" || m.Version == "" || m.Author == "" || m.Permissions == nil {
		result.addViolation(SeverityHigh, "MANIFEST_INCOMPLETE",
			"manifest requires name, version, author and permissions")
	}
	if m.Name != "" && m.Name != p.Name() {
		result.addViolation(SeverityHigh, "MANIFEST_NAME_MISMATCH",
			fmt.Sprintf("manifest name %q does not match plugin name %q", m.Name, p.Name()))
	}
	if m.Checksum != "" && !checksumRe.MatchString(m.Checksum) {
		result.addViolation(SeverityHigh, "MANIFEST_BAD_CHECKSUM",
			"manifest checksum must be 64 lowercase hex characters (SHA-256)")
	}
}

func (v *Validator) checkPermissions(m *Manifest, result *Result) {
	for _, perm := range m.Permissions {
		if !perm.IsDangerous() {
			continue
		}
		if v.permissionAllowed(perm) {
			result.addWarning(fmt.Sprintf("plugin declares dangerous permission %s", perm))
			continue
		}
		result.addViolation(SeverityHigh, "PERM_DENIED",
			fmt.Sprintf("permission %s is not allowed by the security policy", perm))
		result.recommend(fmt.Sprintf("remove the %s permission or adjust the security policy", perm))
	}
}

// permissionAllowed maps a dangerous permission to the policy flag
// that would permit it.
func (v *Validator) permissionAllowed(perm Permission) bool {
	switch {
	case perm.IsNetworkClass():
		return v.policy.AllowNetworkAccess
	case perm == PermissionFileSystemWrite:
		return v.policy.AllowFileSystemAccess
	case perm == PermissionExecuteCommands:
		return v.policy.AllowExecute
	case perm == PermissionDynamicImports, perm == PermissionEvalCode:
		return v.policy.AllowDynamicImports
	default:
		return false
	}
}

func (v *Validator) checkSignature(m *Manifest, result *Result) {
	if !v.policy.RequiredSignature {
		return
	}
	if m == nil {
		// The trust check reports the missing manifest; a signature
		// cannot exist without one.
		return
	}
	if m.Signature == "" {
		result.addViolation(SeverityHigh, "SIG_MISSING",
			"security policy requires a manifest signature")
		result.recommend("sign the plugin manifest with a trusted key")
		return
	}
	if !signatureRe.MatchString(m.Signature) {
		result.addViolation(SeverityHigh, "SIG_BAD_FORMAT",
			"manifest signature must be 128 lowercase hex characters")
	}
	if m.Source != "" && !v.sourceTrusted(m.Source) {
		result.addViolation(SeverityMedium, "SIG_UNTRUSTED_SOURCE",
			fmt.Sprintf("manifest source %q is not prefixed by any trusted source", m.Source))
	}
}

func (v *Validator) sourceTrusted(source string) bool {
	for _, prefix := range v.policy.TrustedSources {
		if strings.HasPrefix(source, prefix) {
			return true
		}
	}
	return false
}

// checkPatterns scans the plugin's textual surface against the
// pattern rules. The surface is the plugin's reflected value plus its
// metadata and manifest strings, which is where embedded scripts,
// prompt templates and config fragments live.
func (v *Validator) checkPatterns(p analyzer.Plugin, m *Manifest, result *Result) {
	v.mu.RLock()
	rules := v.patterns
	v.mu.RUnlock()

	surface := pluginSurface(p, m)
	for _, rule := range rules {
		if rule.Pattern.MatchString(surface) {
			result.addViolation(SeverityHigh, rule.Code,
				fmt.Sprintf("plugin surface matches dangerous pattern: %s", rule.Description))
		}
	}
}

func pluginSurface(p analyzer.Plugin, m *Manifest) string {
	meta := p.Metadata()
	var sb strings.Builder
	sb.WriteString(p.Name())
	sb.WriteByte('\n')
	sb.WriteString(meta.Author)
	sb.WriteByte('\n')
	sb.WriteString(meta.Description)
	sb.WriteByte('\n')
	sb.WriteString(strings.Join(meta.Tags, "\n"))
	sb.WriteByte('\n')
	fmt.Fprintf(&sb, "%#v", p)
	if m != nil {
		fmt.Fprintf(&sb, "\n%#v", *m)
	}
	return sb.String()
}

// checkSerializability verifies the plugin's metadata serializes
// cleanly, guarding against pathological self-referential structures.
// A Go type name that does not resemble the plugin name is only worth
// a warning.
func (v *Validator) checkSerializability(p analyzer.Plugin, result *Result) {
	if _, err := json.Marshal(p.Metadata()); err != nil {
		result.addViolation(SeverityMedium, "SERIALIZE_FAILED",
			fmt.Sprintf("plugin metadata does not serialize: %v", err))
	}

	typeName := sanitizeIdent(reflect.TypeOf(p).String())
	pluginName := sanitizeIdent(p.Name())
	if pluginName != "" && !strings.Contains(typeName, pluginName) {
		result.addWarning(fmt.Sprintf("plugin type %T does not resemble plugin name %q", p, p.Name()))
	}
}

func sanitizeIdent(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// checkTrust requires a manifest from any plugin not on the trusted
// allowlist.
func (v *Validator) checkTrust(p analyzer.Plugin, m *Manifest, result *Result) {
	if v.IsTrusted(p.Name()) {
		return
	}
	if m == nil {
		result.addViolation(SeverityHigh, "TRUST_NO_MANIFEST",
			fmt.Sprintf("plugin %q is not trusted and supplied no manifest", p.Name()))
		result.recommend("supply a plugin manifest, or add the plugin to the trusted allowlist")
	}
}

// isNilValue detects a typed-nil interface value, which would pass a
// plain nil check but panic on the first method call.
func isNilValue(p analyzer.Plugin) bool {
	rv := reflect.ValueOf(p)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
