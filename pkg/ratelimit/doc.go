// Package ratelimit implements the engine's admission gate: two
// independent fixed windows (per-minute and per-hour), each with its
// own counter and reset timestamp.
//
// Unlike a sliding window, a fixed window resets its counter in full
// when its boundary passes. Both windows must have remaining capacity
// for a request to be admitted; a request that would exceed the hourly
// limit is rejected even when the minute window has room, and neither
// counter is incremented on rejection.
package ratelimit
