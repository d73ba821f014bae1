package ebiten

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/tejashwikalptaru/jamclip/internal/domain"
	"github.com/tejashwikalptaru/jamclip/internal/ports"
)

// handle is one source opened on a Backend.
type handle struct {
	backend   *Backend
	url       string
	callbacks ports.BackendCallbacks

	mu        sync.Mutex
	player    *audio.Player
	duration  float64
	volume    float64
	muted     bool
	looping   bool
	playing   bool
	unloaded  bool
	unlocking bool
	unlockFns []func()
	stop      chan struct{}
}

// load fetches and decodes the source, then reports OnLoad or OnLoadError.
func (h *handle) load(ctx context.Context) {
	b := h.backend

	data, err := fetch(ctx, b.client, h.url)
	if err != nil {
		h.failLoad(err)
		return
	}

	s, err := decode(h.url, data, b.sampleRate)
	if err != nil {
		h.failLoad(err)
		return
	}

	player, err := b.audio.NewPlayer(s)
	if err != nil {
		h.failLoad(loadError(h.url, domain.CodeDecode, err))
		return
	}

	h.mu.Lock()
	if h.unloaded {
		h.mu.Unlock()
		_ = player.Close()
		return
	}
	h.player = player
	h.duration = streamDuration(s, b.sampleRate)
	h.applyVolumeLocked()
	h.mu.Unlock()

	b.logger.Debug("source loaded", slog.String("url", h.url), slog.Float64("duration", h.duration))

	go h.watch()
	h.fire(h.callbacks.OnLoad)
}

func (h *handle) failLoad(err error) {
	h.backend.logger.Debug("source failed to load", slog.String("url", h.url), slog.Any("error", err))
	if cb := h.callbacks.OnLoadError; cb != nil && !h.isUnloaded() {
		cb(err)
	}
}

// Play starts playback. While the audio device is not ready it reports an autoplay lock.
func (h *handle) Play() {
	h.mu.Lock()
	if h.unloaded || h.player == nil {
		h.mu.Unlock()
		return
	}

	if !h.backend.audio.IsReady() {
		h.mu.Unlock()
		if cb := h.callbacks.OnPlayError; cb != nil {
			cb(domain.NewAutoplayLockedError(h.url))
		}
		return
	}

	h.playing = true
	h.player.Play()
	h.mu.Unlock()
}

// Pause pauses playback.
func (h *handle) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.unloaded || h.player == nil {
		return
	}
	h.playing = false
	h.player.Pause()
}

// Seek moves the playback position.
func (h *handle) Seek(seconds float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.unloaded || h.player == nil {
		return
	}
	if err := h.player.SetPosition(domain.SecondsToDuration(seconds)); err != nil {
		h.backend.logger.Warn("seek failed", slog.String("url", h.url), slog.Any("error", err))
	}
}

// Position returns the playback position in seconds.
func (h *handle) Position() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.player == nil {
		return 0
	}
	return domain.DurationToSeconds(h.player.Position())
}

// Duration returns the source duration in seconds.
func (h *handle) Duration() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.duration
}

// SetVolume sets the volume factor.
func (h *handle) SetVolume(factor float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.volume = factor
	h.applyVolumeLocked()
}

// Mute silences output. The volume factor is kept for unmute.
func (h *handle) Mute(muted bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.muted = muted
	h.applyVolumeLocked()
}

// Loop enables or disables restarting at the end of the source.
func (h *handle) Loop(loop bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.looping = loop
}

// Unload stops playback and releases the player. No callback fires afterwards.
func (h *handle) Unload() {
	h.mu.Lock()
	if h.unloaded {
		h.mu.Unlock()
		return
	}
	h.unloaded = true
	h.playing = false
	h.unlockFns = nil
	close(h.stop)
	player := h.player
	h.player = nil
	h.mu.Unlock()

	if player != nil {
		if err := player.Close(); err != nil {
			h.backend.logger.Warn("close player", slog.String("url", h.url), slog.Any("error", err))
		}
	}
	h.backend.forget(h)
}

// OnceUnlock registers fn to run when the audio device becomes ready.
func (h *handle) OnceUnlock(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.unloaded {
		return
	}
	h.unlockFns = append(h.unlockFns, fn)
	if !h.unlocking {
		h.unlocking = true
		go h.backend.waitUnlocked(h.stop, h.fireUnlock)
	}
}

// watch reports the end of the source, or rewinds it while looping.
func (h *handle) watch() {
	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			if h.reachedEnd() {
				h.fire(h.callbacks.OnEnd)
			}
		}
	}
}

// reachedEnd reports whether a playing, non-looping source just finished.
// A looping source is rewound and keeps playing.
func (h *handle) reachedEnd() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.unloaded || !h.playing || h.player == nil || h.player.IsPlaying() {
		return false
	}

	if h.looping {
		if err := h.player.Rewind(); err != nil {
			h.backend.logger.Warn("rewind failed", slog.String("url", h.url), slog.Any("error", err))
			return false
		}
		h.player.Play()
		return false
	}

	h.playing = false
	return true
}

func (h *handle) fireUnlock() {
	h.mu.Lock()
	fns := h.unlockFns
	h.unlockFns = nil
	h.unlocking = false
	h.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (h *handle) fire(cb func()) {
	if cb != nil && !h.isUnloaded() {
		cb()
	}
}

func (h *handle) isUnloaded() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.unloaded
}

func (h *handle) applyVolumeLocked() {
	if h.player == nil {
		return
	}
	if h.muted {
		h.player.SetVolume(0)
		return
	}
	h.player.SetVolume(h.volume)
}
