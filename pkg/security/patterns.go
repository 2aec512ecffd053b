package security

import "regexp"

// PatternRule is one advisory scan rule applied to the plugin's
// textual representation. A match contributes a high-severity
// violation; the scan never claims to be a security guarantee.
type PatternRule struct {
	// Code is the violation code reported on match.
	Code string

	// Description explains what the pattern detects.
	Description string

	// Pattern is the compiled regular expression.
	Pattern *regexp.Regexp
}

// DefaultPatternRules returns the built-in dangerous-call patterns.
// The list is coarse: it scans embedded scripts, prompt templates and
// config strings a plugin carries, looking for call shapes that should
// never appear in analyzer code.
func DefaultPatternRules() []PatternRule {
	return []PatternRule{
		{
			Code:        "PATTERN_EVAL",
			Description: "dynamic code evaluation",
			Pattern:     regexp.MustCompile(`\beval\s*\(`),
		},
		{
			Code:        "PATTERN_FUNCTION_CONSTRUCTOR",
			Description: "dynamic function construction",
			Pattern:     regexp.MustCompile(`\bnew\s+Function\s*\(|\bFunction\s*\(\s*["']`),
		},
		{
			Code:        "PATTERN_TIMER_INJECTION",
			Description: "string-argument timer scheduling",
			Pattern:     regexp.MustCompile(`\bset(?:Timeout|Interval)\s*\(\s*["']`),
		},
		{
			Code:        "PATTERN_DYNAMIC_IMPORT",
			Description: "dynamic module loading",
			Pattern:     regexp.MustCompile(`\bimport\s*\(|\brequire\s*\(`),
		},
		{
			Code:        "PATTERN_PROCESS_EXIT",
			Description: "process termination call",
			Pattern:     regexp.MustCompile(`\b(?:process\.exit|os\.Exit)\s*\(`),
		},
		{
			Code:        "PATTERN_SUBPROCESS",
			Description: "subprocess spawning",
			Pattern:     regexp.MustCompile(`\b(?:child_process|exec\.Command|execSync|spawnSync|spawn)\s*[.(]`),
		},
		{
			Code:        "PATTERN_FS_WRITE",
			Description: "raw filesystem write or delete",
			Pattern:     regexp.MustCompile(`\b(?:writeFileSync|unlinkSync|rmdirSync|os\.Remove(?:All)?|os\.WriteFile)\s*\(`),
		},
	}
}
