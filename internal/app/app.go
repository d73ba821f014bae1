// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the session lifecycle.
package app

import (
	"log/slog"
	"sync"

	"github.com/cockroachdb/errors"

	ebitenaudio "github.com/tejashwikalptaru/jamclip/internal/adapter/audio/ebiten"
	"github.com/tejashwikalptaru/jamclip/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/jamclip/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/jamclip/internal/adapter/metadata"
	"github.com/tejashwikalptaru/jamclip/internal/adapter/repository/memory"
	"github.com/tejashwikalptaru/jamclip/internal/config"
	"github.com/tejashwikalptaru/jamclip/internal/domain"
	"github.com/tejashwikalptaru/jamclip/internal/logger"
	"github.com/tejashwikalptaru/jamclip/internal/ports"
	"github.com/tejashwikalptaru/jamclip/internal/service"
)

// Session is one player session: a backend, its playback core and the clip editor on top.
//
// The Session struct is responsible for:
// - Creating and wiring all dependencies
// - Managing the session lifecycle (startup, shutdown)
// - Providing a clean entry point for main.go
//
// Accessors panic with domain.ErrNotInitialized when called on a session that was not
// created by NewSession.
type Session struct {
	// Core dependencies
	logger *slog.Logger
	config *config.Config

	// Infrastructure
	bus     *eventbus.SyncEventBus
	backend ports.AudioBackend
	reader  *metadata.Reader
	clips   *memory.ClipRepository

	// Services
	playback *service.PlaybackService
	clipper  *service.ClipperService
	view     *service.ViewWindow
	timeline *service.Timeline
	library  *service.LibraryService

	mu      sync.Mutex
	started bool
	closed  bool
}

// NewSession creates a session with all dependencies wired.
// A nil log builds a logger from cfg.
func NewSession(cfg *config.Config, log *slog.Logger) (*Session, error) {
	if cfg == nil {
		return nil, errors.Wrap(domain.ErrNotInitialized, "nil config")
	}
	if log == nil {
		log = logger.NewLogger(cfg.Logger())
	}

	s := &Session{
		logger: log,
		config: cfg,
		reader: metadata.NewReader(),
		clips:  memory.NewClipRepository(),
	}

	log.Info("initializing session",
		slog.String("version", GetVersionInfo().Version),
		slog.String("backend", cfg.Backend.Kind))

	// Step 1: Create an event bus
	s.bus = eventbus.NewSyncEventBus()
	s.bus.SetLogger(log.With(slog.String("component", "eventbus")))

	// Step 2: Create an audio backend
	backend, err := newBackend(cfg, log)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize audio backend")
	}
	s.backend = backend

	// Step 3: Create services (with dependency injection)
	s.playback = service.NewPlaybackService(log, s.backend, s.bus, service.PlaybackConfig{
		ProgressInterval: cfg.Playback.ProgressInterval,
		HTML5:            cfg.UseHTML5(),
	})
	s.clipper = service.NewClipperService(log, s.playback, s.bus, s.clips)
	s.view = service.NewViewWindow(log, s.playback, s.bus)
	s.timeline = service.NewTimeline(log, s.clipper, s.playback, s.view)
	s.library = service.NewLibraryService(log, s.reader, s.bus)

	s.started = true
	log.Info("session initialized")
	return s, nil
}

func newBackend(cfg *config.Config, log *slog.Logger) (ports.AudioBackend, error) {
	switch cfg.Backend.Kind {
	case config.BackendMock:
		backend := mock.NewBackend()
		backend.SetLogger(log.With(slog.String("backend", "mock")))
		return backend, nil
	case config.BackendEbiten:
		return ebitenaudio.NewBackend(log, cfg.Backend.SampleRate)
	default:
		return nil, errors.Newf("unknown backend %q", cfg.Backend.Kind)
	}
}

// Playback returns the playback service.
func (s *Session) Playback() *service.PlaybackService {
	s.mustBeStarted()
	return s.playback
}

// Clipper returns the clip editor.
func (s *Session) Clipper() *service.ClipperService {
	s.mustBeStarted()
	return s.clipper
}

// View returns the timeline view window.
func (s *Session) View() *service.ViewWindow {
	s.mustBeStarted()
	return s.view
}

// Timeline returns the timeline controller.
func (s *Session) Timeline() *service.Timeline {
	s.mustBeStarted()
	return s.timeline
}

// Library returns the catalogue scanner.
func (s *Session) Library() *service.LibraryService {
	s.mustBeStarted()
	return s.library
}

// Clips returns the store that receives submitted clips.
func (s *Session) Clips() ports.ClipRepository {
	s.mustBeStarted()
	return s.clips
}

// EventBus returns the session event bus.
func (s *Session) EventBus() ports.EventBus {
	s.mustBeStarted()
	return s.bus
}

// Backend returns the audio backend.
func (s *Session) Backend() ports.AudioBackend {
	s.mustBeStarted()
	return s.backend
}

// OpenFile reads the audio file at path and loads it for playback.
func (s *Session) OpenFile(path string) (domain.Playable, error) {
	s.mustBeStarted()

	playable, err := s.reader.ReadPlayable(path)
	if err != nil {
		return domain.Playable{}, errors.Wrapf(err, "open %s", path)
	}
	s.playback.Load(playable)
	return playable, nil
}

// Shutdown gracefully shuts down the session in reverse order of creation.
// Calling it again is a no-op.
func (s *Session) Shutdown() error {
	s.mustBeStarted()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.logger.Info("shutting down session")

	var errs error
	if s.library.IsScanning() {
		_ = s.library.CancelScan()
	}
	s.view.Close()
	s.clipper.Shutdown()

	if err := s.playback.Shutdown(); err != nil {
		errs = errors.CombineErrors(errs, errors.Wrap(err, "playback service"))
	}
	if err := s.backend.Shutdown(); err != nil {
		errs = errors.CombineErrors(errs, errors.Wrap(err, "audio backend"))
	}
	if err := s.bus.Close(); err != nil {
		errs = errors.CombineErrors(errs, errors.Wrap(err, "event bus"))
	}

	if errs != nil {
		s.logger.Warn("session shutdown incomplete", slog.Any("error", errs))
	} else {
		s.logger.Info("session shutdown complete")
	}
	return errs
}

func (s *Session) mustBeStarted() {
	if s == nil || !s.started {
		panic(errors.Wrap(domain.ErrNotInitialized, "session"))
	}
}
