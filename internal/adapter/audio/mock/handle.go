package mock

import (
	"fmt"
	"sync"
	"time"

	"github.com/tejashwikalptaru/jamclip/internal/domain"
	"github.com/tejashwikalptaru/jamclip/internal/ports"
)

// Handle is a mock loaded source. It records every call made on it.
//
// Trigger helpers invoke callbacks synchronously on the calling goroutine, and keep
// doing so after Unload so tests can exercise stale-callback handling.
type Handle struct {
	backend   *Backend
	url       string
	opts      ports.BackendOptions
	callbacks ports.BackendCallbacks

	mu          sync.Mutex
	calls       []string
	seeks       []float64
	duration    time.Duration
	position    time.Duration
	playingFrom time.Time
	playing     bool
	volume      float64
	muted       bool
	looping     bool
	realtime    bool
	unloadCount int
	unlockFns   []func()
}

// Play starts playback, or reports an autoplay lock when the backend is locked.
func (h *Handle) Play() {
	h.record("play")
	if h.backend.isLocked() {
		if cb := h.callbacks.OnPlayError; cb != nil {
			cb(domain.NewAutoplayLockedError(h.url))
		}
		return
	}

	h.mu.Lock()
	if !h.playing {
		h.playing = true
		h.playingFrom = time.Now()
	}
	h.mu.Unlock()
}

// Pause pauses playback.
func (h *Handle) Pause() {
	h.record("pause")
	h.mu.Lock()
	defer h.mu.Unlock()
	h.position = h.positionLocked()
	h.playing = false
}

// Seek sets the position.
func (h *Handle) Seek(seconds float64) {
	h.record(fmt.Sprintf("seek(%.3f)", seconds))
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seeks = append(h.seeks, seconds)
	h.position = domain.SecondsToDuration(seconds)
	h.playingFrom = time.Now()
}

// Position returns the position in seconds.
func (h *Handle) Position() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return domain.DurationToSeconds(h.positionLocked())
}

// Duration returns the duration in seconds.
func (h *Handle) Duration() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return domain.DurationToSeconds(h.duration)
}

// SetVolume sets the volume factor.
func (h *Handle) SetVolume(factor float64) {
	h.record(fmt.Sprintf("volume(%.2f)", factor))
	h.mu.Lock()
	defer h.mu.Unlock()
	h.volume = factor
}

// Mute mutes or unmutes output.
func (h *Handle) Mute(muted bool) {
	h.record(fmt.Sprintf("mute(%t)", muted))
	h.mu.Lock()
	defer h.mu.Unlock()
	h.muted = muted
}

// Loop enables or disables looping.
func (h *Handle) Loop(loop bool) {
	h.record(fmt.Sprintf("loop(%t)", loop))
	h.mu.Lock()
	defer h.mu.Unlock()
	h.looping = loop
}

// Unload stops playback and marks the handle unloaded.
func (h *Handle) Unload() {
	h.record("unload")
	h.backend.note("unload " + h.url)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.playing = false
	h.unloadCount++
	h.unlockFns = nil
}

// OnceUnlock registers fn to run on the next backend Unlock.
func (h *Handle) OnceUnlock(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unlockFns = append(h.unlockFns, fn)
}

// Test helpers

// TriggerLoad completes loading with the given duration and fires OnLoad.
func (h *Handle) TriggerLoad(duration time.Duration) {
	h.mu.Lock()
	h.duration = duration
	h.mu.Unlock()
	if cb := h.callbacks.OnLoad; cb != nil {
		cb()
	}
}

// TriggerLoadError fires OnLoadError with a backend error carrying code.
func (h *Handle) TriggerLoadError(code int) {
	if cb := h.callbacks.OnLoadError; cb != nil {
		cb(domain.NewAudioBackendError("load", h.url, code, "mock load failure", nil))
	}
}

// TriggerPlayError fires OnPlayError with err.
func (h *Handle) TriggerPlayError(err error) {
	if cb := h.callbacks.OnPlayError; cb != nil {
		cb(err)
	}
}

// TriggerEnd simulates reaching the end of the source.
// A looping handle restarts from zero without raising OnEnd.
func (h *Handle) TriggerEnd() {
	h.mu.Lock()
	if h.looping {
		h.position = 0
		h.playingFrom = time.Now()
		h.mu.Unlock()
		return
	}
	h.position = h.duration
	h.playing = false
	h.mu.Unlock()

	if cb := h.callbacks.OnEnd; cb != nil {
		cb()
	}
}

// SetPosition moves the position without recording a seek, simulating playback progress.
func (h *Handle) SetPosition(position time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.position = position
	h.playingFrom = time.Now()
}

// URL returns the source URL the handle was opened with.
func (h *Handle) URL() string { return h.url }

// Options returns the options the handle was opened with.
func (h *Handle) Options() ports.BackendOptions { return h.opts }

// Calls returns the recorded method calls, in order.
func (h *Handle) Calls() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...)
}

// Seeks returns the seek targets received, in seconds.
func (h *Handle) Seeks() []float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]float64(nil), h.seeks...)
}

// IsPlaying reports whether the handle is playing.
func (h *Handle) IsPlaying() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.playing
}

// Volume returns the current volume factor.
func (h *Handle) Volume() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.volume
}

// IsMuted reports whether the handle is muted.
func (h *Handle) IsMuted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.muted
}

// IsLooping reports whether the handle loops.
func (h *Handle) IsLooping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.looping
}

// UnloadCount returns how many times Unload was called.
func (h *Handle) UnloadCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.unloadCount
}

func (h *Handle) record(call string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, call)
}

func (h *Handle) positionLocked() time.Duration {
	if h.realtime && h.playing {
		p := h.position + time.Since(h.playingFrom)
		if h.duration > 0 {
			p = min(p, h.duration)
		}
		return p
	}
	return h.position
}

func (h *Handle) fireUnlock() {
	h.mu.Lock()
	fns := h.unlockFns
	h.unlockFns = nil
	h.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Verify that Handle implements the AudioHandle interface
var _ ports.AudioHandle = (*Handle)(nil)
