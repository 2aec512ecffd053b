// Package cache implements the engine's decision cache: a thread-safe
// store of AnalysisResult copies keyed by a deterministic hash of the
// request fields that affect analysis output.
//
// Every entry has two lifetimes. The store itself evicts entries after
// a store-level TTL (background sweep, LRU at capacity), and each
// analysis type carries its own maximum age reflecting the volatility
// of its domain: market decisions go stale in minutes, sentiment holds
// for half an hour. Reads double-check the type-specific age and evict
// early, so an entry is never returned past its type TTL even when the
// store has not yet expired it.
package cache
