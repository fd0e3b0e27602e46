// Package ports define the EventBus interface for event-driven communication.
// The event bus replaces callbacks and enables loose coupling between components.
package ports

import (
	"github.com/stellarsound/ringlight/internal/domain"
)

// EventBus is the interface for publishing and subscribing to events.
//
// The event bus decouples event producers (the engine) from event consumers
// (scene driver, transport UI, logging). Multiple subscribers can listen to
// the same event, and subscribers don't know about publishers.
//
// Thread-safety: Implementations must be thread-safe as events may be
// published and subscribed from multiple goroutines simultaneously.
//
// Example usage:
//
//	// In engine: Publish an event
//	bus.Publish(domain.NewTrackStartedEvent(track, index))
//
//	// In a consumer: Subscribe to events
//	subID := bus.Subscribe(domain.EventTrackStarted, func(event domain.Event) {
//	    e := event.(domain.TrackStartedEvent)
//	    _ = e
//	})
//
//	// Later: Unsubscribe
//	bus.Unsubscribe(subID)
type EventBus interface {
	// Publish publishes an event to all subscribers of that event type.
	// The event is delivered to handlers synchronously in the order they
	// subscribed. This method must not block for long periods; handlers
	// should process events quickly or dispatch to a background goroutine.
	Publish(event domain.Event)

	// Subscribe registers a handler for events of the specified type.
	// The same handler can be registered multiple times, resulting in
	// multiple calls. Each subscription gets a unique SubscriptionID.
	//
	// Returns a SubscriptionID that can be used to unsubscribe later.
	Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID

	// Unsubscribe removes a previously registered event handler.
	// If the subscription ID is invalid or already unsubscribed, this is a no-op.
	Unsubscribe(id domain.SubscriptionID)

	// SubscribeAll registers a handler that receives all events regardless of type.
	// This is useful for logging, debugging, or analytics.
	SubscribeAll(handler domain.EventHandler) domain.SubscriptionID

	// HasSubscribers returns true if there are any active subscriptions for
	// the given event type. This can be used to avoid expensive event
	// construction if no one is listening.
	HasSubscribers(eventType domain.EventType) bool

	// Close shuts down the event bus and cleans up resources.
	// After calling Close, no more events should be published or subscribed.
	Close() error
}
