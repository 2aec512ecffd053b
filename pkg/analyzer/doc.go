// Package analyzer defines the contract between the Augur engine and
// pluggable analyzer components.
//
// An analyzer plugin receives an AnalysisRequest, applies whatever
// domain-specific reasoning it implements (heuristics, an external LLM
// call, a statistical model), and returns an AnalysisResult carrying an
// AIDecision. The engine treats plugins as opaque collaborators: it
// routes requests to them by capability, enforces trust and resource
// boundaries around them, and caches their decisions.
//
// The package also defines the shared error taxonomy used across the
// engine. Every error produced by the engine is an *Error carrying a
// machine-readable code, the component that produced it, and optional
// remediation suggestions.
package analyzer
