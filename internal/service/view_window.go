package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/jamclip/internal/domain"
	"github.com/tejashwikalptaru/jamclip/internal/ports"
)

// ViewWindow tracks the slice of the track shown on the clip timeline.
//
// The window is derived from a position with domain.GetViewBounds. It is recomputed
// when a seek lands outside it and when a new playable finishes loading.
type ViewWindow struct {
	logger *slog.Logger
	player Player
	bus    ports.EventBus

	mu          sync.RWMutex
	bounds      domain.Bounds
	unsubscribe func()
}

// NewViewWindow creates a view window around the current position and subscribes it to bus.
func NewViewWindow(logger *slog.Logger, player Player, bus ports.EventBus) *ViewWindow {
	w := &ViewWindow{
		logger: logger.With(slog.String("service", "view_window")),
		player: player,
		bus:    bus,
	}
	w.bounds = domain.GetViewBounds(player.Position(), playbackDuration(player.State()))
	w.unsubscribe = listen(bus, w.handleEvent, domain.EventSeek, domain.EventLoaded)
	return w
}

// Bounds returns the displayed window.
func (w *ViewWindow) Bounds() domain.Bounds {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.bounds
}

// Recenter recomputes the window around the live playback position.
func (w *ViewWindow) Recenter() domain.Bounds {
	return w.recenter(w.player.Position())
}

// Close detaches the window from playback events.
func (w *ViewWindow) Close() {
	w.unsubscribe()
}

func (w *ViewWindow) handleEvent(event domain.Event) {
	switch e := event.(type) {
	case domain.SeekEvent:
		if !w.Bounds().Contains(e.Target) {
			w.recenter(e.Target)
		}

	case domain.LoadedEvent:
		w.recenter(w.player.Position())
	}
}

func (w *ViewWindow) recenter(position time.Duration) domain.Bounds {
	next := domain.GetViewBounds(position, playbackDuration(w.player.State()))

	w.mu.Lock()
	changed := next != w.bounds
	w.bounds = next
	w.mu.Unlock()

	if changed {
		w.logger.Debug("view window moved",
			slog.Duration("start", next.Start),
			slog.Duration("end", next.End))
		w.bus.Publish(domain.NewViewBoundsChangedEvent(next))
	}
	return next
}
