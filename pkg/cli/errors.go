package cli

import (
	"fmt"

	"augur-hq/augur/pkg/analyzer"
)

// Shell exit codes for analysis failures, keyed by error class.
const (
	ExitOK          = 0
	ExitError       = 1
	ExitUsage       = 2
	ExitRateLimited = 3
	ExitTimeout     = 4
	ExitNoAnalyzer  = 5
)

// ExitCode maps an engine error onto a shell exit code so scripts can
// branch on the failure class without parsing output.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch analyzer.CodeOf(err) {
	case "":
		return ExitError
	case analyzer.CodeInvalidInput, analyzer.CodeInvalidConfig:
		return ExitUsage
	case analyzer.CodeRateLimitExceeded:
		return ExitRateLimited
	case analyzer.CodeAnalysisTimeout:
		return ExitTimeout
	case analyzer.CodeNoSuitableAnalyzer:
		return ExitNoAnalyzer
	default:
		return ExitError
	}
}

// CommandError wraps a failed command execution with its name.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{Command: command, Err: err}
}
