package eventbus

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tejashwikalptaru/jamclip/internal/domain"
)

// TestNewSyncEventBus tests event bus creation.
func TestNewSyncEventBus(t *testing.T) {
	bus := NewSyncEventBus()

	if bus == nil {
		t.Fatal("NewSyncEventBus returned nil")
	}

	if bus.SubscriberCount() != 0 {
		t.Errorf("Expected 0 subscribers, got %d", bus.SubscriberCount())
	}

	if bus.closed {
		t.Error("New event bus should not be closed")
	}
}

// TestPublishSubscribe tests basic publish/subscribe functionality.
func TestPublishSubscribe(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var received domain.Event
	var callCount int

	subID := bus.Subscribe(domain.EventSeek, func(event domain.Event) {
		received = event
		callCount++
	})
	if subID == "" {
		t.Fatal("Subscribe returned empty subscription ID")
	}

	bus.Publish(domain.NewSeekEvent(12*time.Second, 3))

	if callCount != 1 {
		t.Errorf("Expected handler to be called once, got %d", callCount)
	}
	if received == nil {
		t.Fatal("Handler did not receive event")
	}

	seek, ok := received.(domain.SeekEvent)
	if !ok {
		t.Fatalf("Expected SeekEvent, got %T", received)
	}
	if seek.Target != 12*time.Second || seek.RequestID != 3 {
		t.Errorf("Unexpected seek payload: %+v", seek)
	}
}

// TestDeliveryOrder tests that handlers run in subscription order, wildcard handlers last.
func TestDeliveryOrder(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var order []string
	bus.SubscribeAll(func(domain.Event) { order = append(order, "all") })
	bus.Subscribe(domain.EventProgress, func(domain.Event) { order = append(order, "first") })
	bus.Subscribe(domain.EventProgress, func(domain.Event) { order = append(order, "second") })

	bus.Publish(domain.NewProgressEvent(time.Second))

	want := []string{"first", "second", "all"}
	if len(order) != len(want) {
		t.Fatalf("Expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, order)
			break
		}
	}
}

// TestUnsubscribe tests removing a subscription.
func TestUnsubscribe(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var callCount int
	subID := bus.Subscribe(domain.EventProgress, func(domain.Event) { callCount++ })

	bus.Publish(domain.NewProgressEvent(0))
	bus.Unsubscribe(subID)
	bus.Publish(domain.NewProgressEvent(0))

	if callCount != 1 {
		t.Errorf("Expected 1 call, got %d", callCount)
	}

	// Unknown IDs are ignored
	bus.Unsubscribe("invalid-id")
	bus.Unsubscribe(subID)
}

// TestUnsubscribePreservesOrder tests that removing a subscriber keeps the others in order.
func TestUnsubscribePreservesOrder(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var order []int
	ids := make([]domain.SubscriptionID, 0, 4)
	for i := 0; i < 4; i++ {
		ids = append(ids, bus.Subscribe(domain.EventSeek, func(domain.Event) { order = append(order, i) }))
	}

	bus.Unsubscribe(ids[1])
	bus.Publish(domain.NewSeekEvent(0, 1))

	want := []int{0, 2, 3}
	if len(order) != len(want) || order[0] != 0 || order[1] != 2 || order[2] != 3 {
		t.Errorf("Expected %v, got %v", want, order)
	}
}

// TestSubscribeAll tests wildcard subscriptions.
func TestSubscribeAll(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var received []domain.EventType
	bus.SubscribeAll(func(event domain.Event) {
		received = append(received, event.Type())
	})

	bus.Publish(domain.NewStatusChangedEvent(domain.StatusIdle, domain.StatusLoading, nil))
	bus.Publish(domain.NewMuteToggledEvent(true))
	bus.Publish(domain.NewClipperChangedEvent(domain.NewClipperState()))

	if len(received) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(received))
	}
	if received[2] != domain.EventClipperChanged {
		t.Errorf("Expected %s, got %s", domain.EventClipperChanged, received[2])
	}
}

// TestHasSubscribers tests subscriber detection.
func TestHasSubscribers(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	if bus.HasSubscribers(domain.EventSeek) {
		t.Error("Expected no subscribers")
	}

	bus.Subscribe(domain.EventSeek, func(domain.Event) {})

	if !bus.HasSubscribers(domain.EventSeek) {
		t.Error("Expected subscribers for seek")
	}
	if bus.HasSubscribers(domain.EventProgress) {
		t.Error("Expected no subscribers for progress")
	}

	bus.SubscribeAll(func(domain.Event) {})
	if !bus.HasSubscribers(domain.EventProgress) {
		t.Error("Wildcard subscriber should count for every type")
	}
}

// TestHandlerPanic tests that a panicking handler does not stop delivery.
func TestHandlerPanic(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var normalCalled bool
	bus.Subscribe(domain.EventSeek, func(domain.Event) { panic("test panic") })
	bus.Subscribe(domain.EventSeek, func(domain.Event) { normalCalled = true })

	bus.Publish(domain.NewSeekEvent(0, 1))

	if !normalCalled {
		t.Error("Normal handler should be called even after another handler panics")
	}
}

// TestReentrantPublish tests publishing and unsubscribing from inside a handler.
func TestReentrantPublish(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var seekSeen int
	var progressID domain.SubscriptionID
	progressID = bus.Subscribe(domain.EventProgress, func(event domain.Event) {
		bus.Unsubscribe(progressID)
		bus.Publish(domain.NewSeekEvent(event.(domain.ProgressEvent).Position, 1))
	})
	bus.Subscribe(domain.EventSeek, func(domain.Event) { seekSeen++ })

	bus.Publish(domain.NewProgressEvent(time.Second))
	bus.Publish(domain.NewProgressEvent(time.Second))

	if seekSeen != 1 {
		t.Errorf("Expected one nested seek, got %d", seekSeen)
	}
}

// TestClose tests closing the event bus.
func TestClose(t *testing.T) {
	bus := NewSyncEventBus()

	var callCount int
	bus.Subscribe(domain.EventSeek, func(domain.Event) { callCount++ })

	if err := bus.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if bus.SubscriberCount() != 0 {
		t.Errorf("Expected 0 subscribers after close, got %d", bus.SubscriberCount())
	}
	if err := bus.Close(); err == nil {
		t.Error("Second close should return an error")
	}

	bus.Publish(domain.NewSeekEvent(0, 1))
	if callCount != 0 {
		t.Error("Handler should not be called after close")
	}
}

// TestNilEventAndHandler tests nil guards.
func TestNilEventAndHandler(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var called bool
	bus.Subscribe(domain.EventSeek, func(domain.Event) { called = true })
	bus.Publish(nil)
	if called {
		t.Error("Handler should not be called for nil event")
	}

	defer func() {
		if recover() == nil {
			t.Error("Expected panic for nil handler")
		}
	}()
	bus.Subscribe(domain.EventSeek, nil)
}

// TestConcurrentPublishAndSubscribe tests thread safety.
func TestConcurrentPublishAndSubscribe(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var callCount int32
	handler := func(domain.Event) { atomic.AddInt32(&callCount, 1) }
	bus.Subscribe(domain.EventProgress, handler)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				bus.Publish(domain.NewProgressEvent(time.Duration(j) * time.Millisecond))
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				id := bus.Subscribe(domain.EventProgress, handler)
				bus.Unsubscribe(id)
			}
		}()
	}
	wg.Wait()

	if atomic.LoadInt32(&callCount) < 1000 {
		t.Errorf("Expected at least 1000 calls, got %d", callCount)
	}
}
