// Package ports define the EventBus interface for event-driven communication.
// Each player session owns one bus; there is no process-wide bus.
package ports

import (
	"github.com/tejashwikalptaru/jamclip/internal/domain"
)

// EventBus is the interface for publishing and subscribing to events.
//
// The event bus decouples event producers (the playback and clipper services) from
// consumers (view window, clip window tracking, the CLI renderer).
//
// Thread-safety: Implementations must be thread-safe as events may be published and
// subscribed from multiple goroutines simultaneously.
//
// Example usage:
//
//	// In a service: publish an event
//	bus.Publish(domain.NewSeekEvent(target, requestID))
//
//	// In a consumer: subscribe to events
//	subID := bus.Subscribe(domain.EventSeek, func(event domain.Event) {
//	    e := event.(domain.SeekEvent)
//	    view.recenter(e.Target)
//	})
//
//	// Later: unsubscribe
//	bus.Unsubscribe(subID)
type EventBus interface {
	// Publish publishes an event to all subscribers of that event type.
	// Handlers run synchronously, in subscription order, on the publishing goroutine.
	Publish(event domain.Event)

	// Subscribe registers a handler for events of the specified type.
	// Each subscription gets a unique SubscriptionID.
	Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID

	// Unsubscribe removes a previously registered event handler.
	// If the subscription ID is invalid or already unsubscribed, this is a no-op.
	Unsubscribe(id domain.SubscriptionID)

	// SubscribeAll registers a handler that receives all events regardless of type.
	SubscribeAll(handler domain.EventHandler) domain.SubscriptionID

	// HasSubscribers returns true if there are any active subscriptions for the given event type.
	// Publishers use it to skip building events no one listens to.
	HasSubscribers(eventType domain.EventType) bool

	// Close shuts down the event bus and cleans up resources.
	// After calling Close, Publish is a no-op.
	Close() error
}
