package ratelimit

import (
	"sync"
	"time"
)

// Config contains the limiter configuration.
//
// A zero limit disables that window: only configured windows are
// enforced. Disabled limiting (Enabled=false) admits everything.
type Config struct {
	// Enabled controls whether limiting is enforced at all.
	Enabled bool

	// RequestsPerMinute is the per-minute window limit (0 = no limit).
	RequestsPerMinute int

	// RequestsPerHour is the per-hour window limit (0 = no limit).
	RequestsPerHour int
}

// Status is a point-in-time snapshot of the limiter state, exposed
// through the engine's status introspection surface.
type Status struct {
	// RequestsThisMinute is the count admitted in the current minute window.
	RequestsThisMinute int

	// MinuteLimit is the per-minute limit (0 = unlimited).
	MinuteLimit int

	// MinuteResetsAt is when the minute window rolls over.
	MinuteResetsAt time.Time

	// RequestsThisHour is the count admitted in the current hour window.
	RequestsThisHour int

	// HourLimit is the per-hour limit (0 = unlimited).
	HourLimit int

	// HourResetsAt is when the hour window rolls over.
	HourResetsAt time.Time
}

// window is a single fixed admission window.
type window struct {
	count   int
	limit   int
	span    time.Duration
	resetAt time.Time
}

// roll lazily advances the window past its reset time, zeroing the
// counter. A window that lapsed several spans ago re-anchors at now
// rather than stepping span by span.
func (w *window) roll(now time.Time) {
	if now.Before(w.resetAt) {
		return
	}
	w.count = 0
	w.resetAt = now.Add(w.span)
}

// hasCapacity reports whether the window can admit one more request.
func (w *window) hasCapacity() bool {
	return w.limit <= 0 || w.count < w.limit
}

// Limiter is the dual fixed-window admission gate. It is safe for
// concurrent use; both counters are mutated under a single mutex so an
// admission check is atomic across windows.
type Limiter struct {
	mu     sync.Mutex
	minute window
	hour   window
	config Config

	// now is the clock source, replaceable in tests.
	now func() time.Time
}

// NewLimiter creates a limiter from the given configuration.
func NewLimiter(config Config) *Limiter {
	l := &Limiter{
		config: config,
		now:    time.Now,
	}
	start := l.now()
	l.minute = window{limit: config.RequestsPerMinute, span: time.Minute, resetAt: start.Add(time.Minute)}
	l.hour = window{limit: config.RequestsPerHour, span: time.Hour, resetAt: start.Add(time.Hour)}
	return l
}

// Allow checks admission for one request.
//
// Both windows are rolled forward past their reset times first, then
// checked. Counters are incremented only when both windows have
// remaining capacity; a rejection leaves both counters untouched.
func (l *Limiter) Allow() bool {
	if !l.config.Enabled {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.minute.roll(now)
	l.hour.roll(now)

	if !l.minute.hasCapacity() || !l.hour.hasCapacity() {
		return false
	}

	l.minute.count++
	l.hour.count++
	return true
}

// Status returns a snapshot of the current limiter state. The windows
// are rolled forward first so the snapshot reflects live counts.
func (l *Limiter) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.minute.roll(now)
	l.hour.roll(now)

	return Status{
		RequestsThisMinute: l.minute.count,
		MinuteLimit:        l.minute.limit,
		MinuteResetsAt:     l.minute.resetAt,
		RequestsThisHour:   l.hour.count,
		HourLimit:          l.hour.limit,
		HourResetsAt:       l.hour.resetAt,
	}
}

// Reset zeroes both windows. This is primarily for testing.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.minute.count = 0
	l.minute.resetAt = now.Add(l.minute.span)
	l.hour.count = 0
	l.hour.resetAt = now.Add(l.hour.span)
}
