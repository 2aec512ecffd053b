// Package security implements the trust boundary between the engine
// and analyzer plugins: a validator that gates registry admission and
// a sandbox that bounds plugin execution.
//
// The validator runs independent checks (structural, metadata,
// manifest, permissions, signature, static pattern scan, trust level)
// and accumulates violations and warnings rather than short-circuiting
// on the first problem. The static pattern scan is advisory pattern
// matching over a textual representation of the plugin, not static
// analysis; false positives and negatives are expected and acceptable.
//
// The sandbox enforces a wall-clock deadline by cancelling the context
// passed to the plugin, and measures heap growth across the call. The
// heap check is post-hoc detection rather than preventive containment:
// it can only flag a breach after the allocation already happened.
// Genuine isolation would need a resource-limited worker process,
// which is out of scope for an in-process library.
package security
