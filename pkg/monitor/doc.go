// Package monitor maintains rolling statistics over completed
// analyses: bounded windows of processing times (globally and per
// analysis type), running success and failure totals, and a rolling
// average and peak.
//
// The monitor only ever emits advisory warnings, never errors: a slow
// analysis, a slow rolling average for a type, or a sagging global
// success rate is logged and surfaced through the report, but never
// affects request processing.
package monitor
