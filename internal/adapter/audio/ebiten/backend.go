// Package ebiten provides an audio backend built on the Ebitengine audio package.
//
// Sources are read fully into memory, decoded to 16-bit stereo PCM at the backend's
// sample rate and played through the shared audio.Context.
package ebiten

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/tejashwikalptaru/jamclip/internal/domain"
	"github.com/tejashwikalptaru/jamclip/internal/ports"
)

const (
	// DefaultSampleRate is the output sample rate used when none is configured.
	DefaultSampleRate = 44100

	// watchInterval is how often a playing handle checks for the end of its source.
	watchInterval = 50 * time.Millisecond
)

var contextMu sync.Mutex

// sharedContext returns the process-wide audio context, creating it on first use.
// Ebitengine allows a single context per process.
func sharedContext(sampleRate int) (*audio.Context, error) {
	contextMu.Lock()
	defer contextMu.Unlock()

	if current := audio.CurrentContext(); current != nil {
		if current.SampleRate() != sampleRate {
			return nil, errors.Newf("audio context already running at %d Hz, requested %d Hz",
				current.SampleRate(), sampleRate)
		}
		return current, nil
	}
	return audio.NewContext(sampleRate), nil
}

// Backend is the Ebitengine implementation of ports.AudioBackend.
//
// Thread-safety: This implementation is thread-safe.
type Backend struct {
	logger     *slog.Logger
	sampleRate int
	audio      *audio.Context
	client     *http.Client

	// loads are cancelled on shutdown
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	handles  map[*handle]struct{}
	shutdown bool
}

// NewBackend creates a backend playing at sampleRate (DefaultSampleRate when zero).
func NewBackend(logger *slog.Logger, sampleRate int) (*Backend, error) {
	if sampleRate == 0 {
		sampleRate = DefaultSampleRate
	}

	audioContext, err := sharedContext(sampleRate)
	if err != nil {
		return nil, errors.Wrap(err, "create audio context")
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &Backend{
		logger:     logger.With(slog.String("backend", "ebiten")),
		sampleRate: sampleRate,
		audio:      audioContext,
		client:     &http.Client{Timeout: time.Minute},
		ctx:        ctx,
		cancel:     cancel,
		handles:    make(map[*handle]struct{}),
	}

	b.logger.Debug("audio backend initialized", slog.Int("sample_rate", sampleRate))
	return b, nil
}

// Open starts loading url in the background. See ports.AudioBackend.
func (b *Backend) Open(url string, opts ports.BackendOptions, callbacks ports.BackendCallbacks) ports.AudioHandle {
	h := &handle{
		backend:   b,
		url:       url,
		callbacks: callbacks,
		volume:    opts.Volume,
		muted:     opts.Muted,
		looping:   opts.Loop,
		stop:      make(chan struct{}),
	}

	b.mu.Lock()
	if b.shutdown {
		b.mu.Unlock()
		go h.failLoad(loadError(url, domain.CodeAborted, domain.ErrClosed))
		return h
	}
	b.handles[h] = struct{}{}
	b.mu.Unlock()

	b.logger.Debug("opening source", slog.String("url", url), slog.Bool("html5", opts.HTML5))
	go h.load(b.ctx)
	return h
}

// Shutdown cancels pending loads and unloads every open handle.
func (b *Backend) Shutdown() error {
	b.mu.Lock()
	if b.shutdown {
		b.mu.Unlock()
		return domain.ErrNotInitialized
	}
	b.shutdown = true
	handles := make([]*handle, 0, len(b.handles))
	for h := range b.handles {
		handles = append(handles, h)
	}
	b.mu.Unlock()

	b.cancel()
	for _, h := range handles {
		h.Unload()
	}

	b.logger.Debug("audio backend shut down")
	return nil
}

func (b *Backend) forget(h *handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handles, h)
}

// waitUnlocked polls until the audio device is ready, then runs fn.
// It gives up when stop is closed.
func (b *Backend) waitUnlocked(stop <-chan struct{}, fn func()) {
	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if b.audio.IsReady() {
				fn()
				return
			}
		}
	}
}

var _ ports.AudioBackend = (*Backend)(nil)
