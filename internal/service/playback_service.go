// Package service provides the playback, clipping and timeline logic of jamclip.
package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/tejashwikalptaru/jamclip/internal/domain"
	"github.com/tejashwikalptaru/jamclip/internal/ports"
)

// DefaultProgressInterval is the progress sampling period, roughly one display frame.
const DefaultProgressInterval = 16 * time.Millisecond

// PlaybackConfig configures a PlaybackService.
type PlaybackConfig struct {
	// ProgressInterval is how often position is sampled while playing
	ProgressInterval time.Duration

	// HTML5 asks the backend to stream instead of fully decoding up front
	HTML5 bool
}

// PlaybackService owns the playback state machine of one session and drives the audio backend from it.
//
// Every action is reduced on a serial executor. Effects run after the state has been
// replaced and compare the previous and next state, so an action that leaves the state
// unchanged has no effect. Callbacks from a handle that has since been replaced are ignored.
type PlaybackService struct {
	// Dependencies (injected)
	logger  *slog.Logger
	backend ports.AudioBackend
	bus     ports.EventBus
	config  PlaybackConfig

	exec     *serialExecutor
	progress *progressEmitter

	// State
	mu         sync.RWMutex
	state      domain.PlaybackState
	handle     ports.AudioHandle
	generation uint64
	closed     bool
}

// NewPlaybackService creates a new playback service in the idle state.
func NewPlaybackService(
	logger *slog.Logger,
	backend ports.AudioBackend,
	bus ports.EventBus,
	config PlaybackConfig,
) *PlaybackService {
	if config.ProgressInterval <= 0 {
		config.ProgressInterval = DefaultProgressInterval
	}

	logger = logger.With(slog.String("service", "playback"))

	s := &PlaybackService{
		logger:  logger,
		backend: backend,
		bus:     bus,
		config:  config,
		exec:    newSerialExecutor(logger),
		state:   domain.NewPlaybackState(),
	}
	s.progress = newProgressEmitter(config.ProgressInterval, s.exec.Post, s.emitProgress)

	logger.Debug("playback service initialized", slog.Duration("progress_interval", config.ProgressInterval))
	return s
}

// Load replaces the current playable. Loading the playable that is already loaded does nothing.
func (s *PlaybackService) Load(playable domain.Playable) {
	s.dispatch(domain.LoadAction{Playable: playable})
}

// Play resumes playback.
func (s *PlaybackService) Play() {
	s.dispatch(domain.PlayAction{})
}

// Pause pauses playback.
func (s *PlaybackService) Pause() {
	s.dispatch(domain.PauseAction{})
}

// Seek moves playback to target, clamped to [0, duration].
// Every call reaches the backend, including repeats of the same target.
func (s *PlaybackService) Seek(target time.Duration) {
	s.dispatch(domain.SeekAction{Target: target})
}

// SetVolume sets the volume in percent, clamped to [0, 100].
func (s *PlaybackService) SetVolume(volume int) {
	s.dispatch(domain.VolumeChangeAction{Volume: volume})
}

// Mute mutes output without changing the volume.
func (s *PlaybackService) Mute() {
	s.dispatch(domain.MuteAction{})
}

// Unmute restores output.
func (s *PlaybackService) Unmute() {
	s.dispatch(domain.UnmuteAction{})
}

// Loop makes the playable restart when it ends.
func (s *PlaybackService) Loop() {
	s.dispatch(domain.LoopAction{})
}

// Unloop disables looping.
func (s *PlaybackService) Unloop() {
	s.dispatch(domain.UnloopAction{})
}

// Retry reloads the current playable after a failure.
func (s *PlaybackService) Retry() error {
	state := s.State()
	if state.Status != domain.StatusError || state.Playable == nil {
		return errors.Wrapf(domain.ErrActionNotAllowed, "retry in %s", state.Status)
	}
	s.logger.Debug("retrying playable", slog.String("playable", state.Playable.Key()))
	s.dispatch(domain.LoadAction{Playable: *state.Playable})
	return nil
}

// State returns a snapshot of the playback state.
func (s *PlaybackService) State() domain.PlaybackState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Derived returns the convenience flags of the current state.
func (s *PlaybackService) Derived() domain.PlaybackDerived {
	return s.State().Derive()
}

// Position returns the live backend position, or 0 when nothing is loaded.
func (s *PlaybackService) Position() time.Duration {
	s.mu.RLock()
	h := s.handle
	s.mu.RUnlock()

	if h == nil {
		return 0
	}
	return domain.SecondsToDuration(h.Position())
}

// Subscribe registers handler for progress and seek events.
// The returned function removes the subscription; calling it again does nothing.
func (s *PlaybackService) Subscribe(handler domain.EventHandler) func() {
	return listen(s.bus, handler, domain.EventProgress, domain.EventSeek)
}

// Shutdown stops progress sampling, unloads the current handle and rejects further actions.
func (s *PlaybackService) Shutdown() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.Wrap(domain.ErrClosed, "playback service")
	}
	s.closed = true
	s.mu.Unlock()

	s.logger.Debug("shutting down playback service")

	// A task already running on the executor may still try to arm progress: Close makes that a no-op.
	s.progress.Close()
	s.exec.Close()
	s.progress.Wait()

	s.mu.Lock()
	h := s.handle
	s.handle = nil
	s.generation++
	s.mu.Unlock()

	if h != nil {
		h.Unload()
	}
	return nil
}

// dispatch reduces action on the executor.
func (s *PlaybackService) dispatch(action domain.PlaybackAction) {
	s.exec.Post(func() { s.apply(action) })
}

// apply must only run on the executor.
func (s *PlaybackService) apply(action domain.PlaybackAction) {
	s.mu.Lock()
	prev := s.state
	next, err := domain.ReducePlayback(prev, action)
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn("playback action rejected",
			slog.String("action", string(action.Kind())),
			slog.String("status", prev.Status.String()),
			slog.Any("error", err))
		return
	}
	s.state = next
	s.mu.Unlock()

	if next == prev {
		return
	}
	s.applyEffects(prev, next)
}

func (s *PlaybackService) applyEffects(prev, next domain.PlaybackState) {
	if prev.Playable != next.Playable {
		s.open(next)
		s.publishStatus(prev, next)
		return
	}

	h := s.currentHandle()

	if prev.Status != next.Status {
		s.applyStatus(h, prev, next)
	}

	if prev.SeekRequestID != next.SeekRequestID {
		if h != nil {
			h.Seek(domain.DurationToSeconds(next.SeekTarget))
		}
		s.bus.Publish(domain.NewSeekEvent(next.SeekTarget, next.SeekRequestID))
	}

	if prev.Volume != next.Volume {
		if h != nil {
			h.SetVolume(float64(next.Volume) / 100)
		}
		s.bus.Publish(domain.NewVolumeChangedEvent(next.Volume))
	}

	if prev.IsMuted != next.IsMuted {
		if h != nil {
			h.Mute(next.IsMuted)
		}
		s.bus.Publish(domain.NewMuteToggledEvent(next.IsMuted))
	}

	if prev.IsLooping != next.IsLooping {
		if h != nil {
			h.Loop(next.IsLooping)
		}
		s.bus.Publish(domain.NewLoopToggledEvent(next.IsLooping))
	}
}

func (s *PlaybackService) applyStatus(h ports.AudioHandle, prev, next domain.PlaybackState) {
	switch next.Status {
	case domain.StatusPlaying:
		if h != nil {
			h.Play()
		}
		s.progress.Start()

	case domain.StatusPaused:
		// Loading to Paused is the Loaded step: the handle has not started, so there is nothing to pause.
		if prev.Status == domain.StatusPlaying {
			s.progress.Stop()
			if h != nil {
				h.Pause()
			}
		}

	case domain.StatusError:
		s.progress.Stop()
	}

	s.publishStatus(prev, next)

	if next.Status == domain.StatusError {
		s.bus.Publish(domain.NewPlaybackErrorEvent(next.ErrorMessage, nil))
	}
}

// open tears down the previous handle and opens the playable of next.
func (s *PlaybackService) open(next domain.PlaybackState) {
	s.progress.Stop()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	old := s.handle
	s.handle = nil
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	if old != nil {
		old.Unload()
	}

	playable := *next.Playable
	s.logger.Debug("opening playable",
		slog.String("playable", playable.Key()),
		slog.String("url", playable.URL),
		slog.Uint64("generation", gen))

	opts := ports.BackendOptions{
		HTML5:  s.config.HTML5,
		Loop:   next.IsLooping,
		Volume: float64(next.Volume) / 100,
		Muted:  next.IsMuted,
	}
	callbacks := ports.BackendCallbacks{
		OnLoad:      s.fromHandle(gen, s.onLoad),
		OnLoadError: s.errFromHandle(gen, s.onLoadError),
		OnPlayError: s.errFromHandle(gen, func(err error) { s.onPlayError(gen, err) }),
		OnEnd:       s.fromHandle(gen, s.onEnd),
	}

	h := s.backend.Open(playable.URL, opts, callbacks)

	s.mu.Lock()
	if s.generation == gen && !s.closed {
		s.handle = h
		h = nil
	}
	s.mu.Unlock()

	// Superseded or shut down while opening.
	if h != nil {
		h.Unload()
	}
}

// fromHandle wraps a backend callback so that it runs on the executor and only
// while the handle of generation gen is still current.
func (s *PlaybackService) fromHandle(gen uint64, fn func()) func() {
	return func() {
		s.exec.Post(func() {
			if !s.isCurrent(gen) {
				s.logger.Debug("stale backend callback ignored", slog.Uint64("generation", gen))
				return
			}
			fn()
		})
	}
}

func (s *PlaybackService) errFromHandle(gen uint64, fn func(error)) func(error) {
	return func(err error) {
		s.fromHandle(gen, func() { fn(err) })()
	}
}

func (s *PlaybackService) onLoad() {
	h := s.currentHandle()
	if h == nil {
		return
	}
	duration := domain.SecondsToDuration(h.Duration())

	s.apply(domain.LoadedAction{Duration: duration})

	state := s.State()
	if state.Playable != nil && state.Status == domain.StatusPaused {
		s.bus.Publish(domain.NewLoadedEvent(*state.Playable, state.Duration))
	}

	s.apply(domain.PlayAction{})
}

func (s *PlaybackService) onLoadError(err error) {
	message := domain.AudioErrorMessage(domain.ErrorCode(err))
	s.logger.Warn("failed to load playable", slog.Any("error", err), slog.String("message", message))
	s.apply(domain.SetErrorAction{Message: message})
}

func (s *PlaybackService) onPlayError(gen uint64, err error) {
	if domain.IsAutoplayLocked(err) {
		// Output is locked until a user gesture: pause and resume once it unlocks.
		s.logger.Debug("playback locked, waiting for unlock")
		s.apply(domain.PauseAction{})
		if h := s.currentHandle(); h != nil {
			h.OnceUnlock(s.fromHandle(gen, func() { s.apply(domain.PlayAction{}) }))
		}
		return
	}

	message := domain.AudioErrorMessage(domain.ErrorCode(err))
	s.logger.Warn("failed to play playable", slog.Any("error", err), slog.String("message", message))
	s.apply(domain.SetErrorAction{Message: message})
}

func (s *PlaybackService) onEnd() {
	if s.State().IsLooping {
		return
	}
	s.logger.Debug("playable ended")
	s.apply(domain.PauseAction{})
}

func (s *PlaybackService) emitProgress() {
	if s.State().Status != domain.StatusPlaying || !s.bus.HasSubscribers(domain.EventProgress) {
		return
	}
	s.bus.Publish(domain.NewProgressEvent(s.Position()))
}

func (s *PlaybackService) publishStatus(prev, next domain.PlaybackState) {
	if prev.Status == next.Status {
		return
	}
	s.logger.Debug("playback status changed",
		slog.String("from", prev.Status.String()),
		slog.String("to", next.Status.String()))
	s.bus.Publish(domain.NewStatusChangedEvent(prev.Status, next.Status, next.Playable))
}

func (s *PlaybackService) currentHandle() ports.AudioHandle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handle
}

func (s *PlaybackService) isCurrent(gen uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation == gen && !s.closed
}
