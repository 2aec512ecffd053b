// Package learning records analysis outcomes and user feedback, and
// derives aggregate insights from the trace.
//
// Two stores are provided: a bounded in-memory ring buffer for
// ephemeral deployments, and a SQLite-backed store for persistence
// across restarts. Both enforce a record cap; the ring buffer evicts
// the oldest record in O(1) when full.
//
// A Pruner can run on a cron schedule to trim aged records from
// persistent stores.
package learning
