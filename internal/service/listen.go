package service

import (
	"sync"

	"github.com/tejashwikalptaru/jamclip/internal/domain"
	"github.com/tejashwikalptaru/jamclip/internal/ports"
)

// listen subscribes handler to each event type and returns a function removing all of them.
func listen(bus ports.EventBus, handler domain.EventHandler, eventTypes ...domain.EventType) func() {
	ids := make([]domain.SubscriptionID, 0, len(eventTypes))
	for _, eventType := range eventTypes {
		ids = append(ids, bus.Subscribe(eventType, handler))
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			for _, id := range ids {
				bus.Unsubscribe(id)
			}
		})
	}
}
