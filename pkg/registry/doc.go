// Package registry holds loaded analyzer plugins by name and routes
// analysis requests to them.
//
// Routing is deliberately simple and deterministic: candidates are the
// loaded plugins whose capability probe accepts the request's type and
// blockchain, in insertion order. The first candidate is invoked; if
// it fails and a second candidate exists, that one is tried exactly
// once. This is an explicit two-tier fallback, not a general retry
// loop; a request never touches more than two plugins.
//
// Admission is gated by the security validator: in production, a
// plugin that fails validation never enters the registry.
package registry
