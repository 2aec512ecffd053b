package registry

import (
	"errors"
	"fmt"
)

// Sentinel errors for registry operations. Callers should match with
// errors.Is rather than comparing strings.
var (
	// ErrPluginExists indicates a plugin with the same name is already
	// registered. Plugins must be unloaded before they can be replaced.
	ErrPluginExists = errors.New("plugin already registered")

	// ErrPluginNotFound indicates no plugin with the given name is
	// registered.
	ErrPluginNotFound = errors.New("plugin not found")
)

// NoSuitableAnalyzerError is returned by the router when no loaded
// plugin accepts a request's analysis type and blockchain.
type NoSuitableAnalyzerError struct {
	AnalysisType string
	Blockchain   string
	Loaded       int
}

func (e *NoSuitableAnalyzerError) Error() string {
	if e.Blockchain != "" {
		return fmt.Sprintf("no suitable analyzer for type %q on blockchain %q (%d plugins loaded)",
			e.AnalysisType, e.Blockchain, e.Loaded)
	}
	return fmt.Sprintf("no suitable analyzer for type %q (%d plugins loaded)", e.AnalysisType, e.Loaded)
}
