package events

import (
	"log/slog"
	"sync"
	"time"
)

// Handler consumes one event. Handlers run synchronously on the
// publishing goroutine and should return quickly.
type Handler func(Event)

// Subscription identifies one registered handler so it can be removed.
type Subscription struct {
	eventType Type
	id        uint64
}

// Bus is the engine-owned observer registry. It is safe for
// concurrent use.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Type]map[uint64]Handler
	nextID   uint64
	closed   bool
	logger   *slog.Logger
}

// NewBus creates an event bus.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		handlers: make(map[Type]map[uint64]Handler),
		logger:   logger.With("component", "events"),
	}
}

// Subscribe registers a handler for an event type and returns its
// subscription handle.
func (b *Bus) Subscribe(t Type, h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return Subscription{}
	}

	b.nextID++
	id := b.nextID
	if b.handlers[t] == nil {
		b.handlers[t] = make(map[uint64]Handler)
	}
	b.handlers[t][id] = h

	return Subscription{eventType: t, id: id}
}

// Unsubscribe removes a previously registered handler. Unknown
// subscriptions are ignored.
func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if hs, ok := b.handlers[sub.eventType]; ok {
		delete(hs, sub.id)
	}
}

// Publish dispatches an event to all handlers subscribed to its type.
// The event's Time is stamped here if unset. Handler panics are
// recovered and logged.
func (b *Bus) Publish(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	b.mu.RLock()
	hs := b.handlers[e.Type]
	handlers := make([]Handler, 0, len(hs))
	for _, h := range hs {
		handlers = append(handlers, h)
	}
	closed := b.closed
	b.mu.RUnlock()

	if closed {
		return
	}

	for _, h := range handlers {
		b.dispatch(h, e)
	}
}

// SubscriberCount returns the number of handlers for an event type.
func (b *Bus) SubscriberCount(t Type) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[t])
}

// Close detaches all listeners and stops accepting new ones. Idempotent.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.handlers = make(map[Type]map[uint64]Handler)
}

func (b *Bus) dispatch(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				"event_type", e.Type,
				"panic", r,
			)
		}
	}()
	h(e)
}
