// Package engine is the orchestrator facade: it validates requests,
// enforces rate limits, consults the decision cache, routes to a
// capable plugin (through the sandbox when the plugin is untrusted),
// records outcomes, emits lifecycle events, and applies per-request
// fallback strategies. It is an in-process library; the host
// application owns the outer surface.
package engine
