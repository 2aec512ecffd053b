// Package plugins ships the engine's built-in analyzers: sentiment,
// proposal, market and risk. They are heuristic (lexicon and field
// scoring, no model calls), so the engine is usable offline and the
// plugin contract has reference implementations.
//
// Built-ins are core plugins: the engine pre-seeds them into the
// security validator's trusted set and they execute outside the
// sandbox.
package plugins
