// Package events implements the engine's lifecycle notification
// surface: an explicit observer registry with typed event payloads.
//
// Consumers subscribe per event type and receive a Subscription they
// can later cancel. Dispatch is synchronous in publish order; a
// panicking handler is recovered and logged so one misbehaving
// consumer cannot take down the engine or starve other subscribers.
package events
