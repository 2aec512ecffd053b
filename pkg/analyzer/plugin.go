package analyzer

import "context"

// Plugin is the interface every analyzer plugin must implement.
//
// Plugins are held by the registry under their Name, uniquely. The
// engine routes a request to a plugin only when Supports reports the
// request's type (and blockchain, when constrained) as handled.
//
// Analyze must respect context cancellation: when the sandbox deadline
// fires, the context passed to Analyze is cancelled and the plugin is
// expected to return promptly. A plugin that keeps working past
// cancellation violates the contract; the engine stops waiting on it
// either way.
//
// Plugins are treated as potentially non-reentrant black boxes. The
// engine serializes nothing on their behalf: a plugin that cannot
// tolerate concurrent Analyze calls must lock internally.
type Plugin interface {
	// Name returns the unique plugin name (lowercase, [a-z0-9-]).
	Name() string

	// Version returns the plugin version (semver "x.y.z[-pre]").
	Version() string

	// SupportedTypes returns the analysis types this plugin handles.
	SupportedTypes() []AnalysisType

	// SupportedBlockchains returns the blockchains this plugin
	// handles. Empty means no blockchain constraint.
	SupportedBlockchains() []string

	// Supports is the capability probe used by the router: it reports
	// whether the plugin handles the given type and blockchain. An
	// empty blockchain argument means the request carries no chain
	// constraint.
	Supports(t AnalysisType, blockchain string) bool

	// Analyze performs the analysis and returns a result.
	Analyze(ctx context.Context, req *AnalysisRequest) (*AnalysisResult, error)

	// Metadata returns descriptive plugin metadata.
	Metadata() PluginMetadata
}

// RequestValidator is an optional refinement a plugin may implement to
// pre-screen requests before Analyze is invoked. The router skips
// plugins whose ValidateRequest rejects the request.
type RequestValidator interface {
	ValidateRequest(req *AnalysisRequest) bool
}

// PluginMetadata describes a plugin for validation and introspection.
type PluginMetadata struct {
	// Author identifies the plugin author. Missing author produces a
	// validation warning, not a failure.
	Author string `json:"author,omitempty"`

	// Description is a human-readable plugin description.
	Description string `json:"description,omitempty"`

	// Tags are free-form classification tags.
	Tags []string `json:"tags,omitempty"`
}

// Capabilities is an embeddable capability set implementing the
// SupportedTypes/SupportedBlockchains/Supports portion of Plugin.
// Plugins typically embed it and declare their sets at construction.
type Capabilities struct {
	Types       []AnalysisType
	Blockchains []string
}

// SupportedTypes returns the declared analysis types.
func (c Capabilities) SupportedTypes() []AnalysisType {
	return c.Types
}

// SupportedBlockchains returns the declared blockchains.
func (c Capabilities) SupportedBlockchains() []string {
	return c.Blockchains
}

// Supports reports whether the capability set covers the given type
// and blockchain. A plugin with no declared blockchains accepts any
// chain; a request with no chain constraint matches any plugin.
func (c Capabilities) Supports(t AnalysisType, blockchain string) bool {
	typeOK := false
	for _, st := range c.Types {
		if st == t {
			typeOK = true
			break
		}
	}
	if !typeOK {
		return false
	}
	if blockchain == "" || len(c.Blockchains) == 0 {
		return true
	}
	for _, b := range c.Blockchains {
		if b == blockchain {
			return true
		}
	}
	return false
}
