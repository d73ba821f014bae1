// Package mock provides a mock implementation of the AudioBackend interface.
// This is used for testing services without decoding or playing real audio.
package mock

import (
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/jamclip/internal/domain"
	"github.com/tejashwikalptaru/jamclip/internal/ports"
)

// Backend is a scriptable mock implementation of the AudioBackend interface.
// Loading never completes on its own: tests drive every callback through the
// Trigger* helpers on the returned Handle, unless SetAutoLoad is used.
//
// Thread-safety: This implementation is thread-safe.
type Backend struct {
	// Dependencies
	logger *slog.Logger

	handles  []*Handle
	journal  []string
	shutdown bool
	mu       sync.Mutex

	// Behavior configuration (for testing error scenarios)
	locked       bool
	autoLoad     bool
	autoDuration time.Duration
	realtime     bool
}

// NewBackend creates a new mock audio backend.
func NewBackend() *Backend {
	return &Backend{}
}

// SetLogger sets the logger for this backend.
func (b *Backend) SetLogger(logger *slog.Logger) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logger = logger
}

// SetLocked simulates an autoplay lock: while locked, Play reports an autoplay-locked play error.
func (b *Backend) SetLocked(locked bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.locked = locked
}

// Unlock clears the autoplay lock and runs every pending OnceUnlock callback.
func (b *Backend) Unlock() {
	b.mu.Lock()
	b.locked = false
	handles := append([]*Handle(nil), b.handles...)
	b.mu.Unlock()

	for _, h := range handles {
		h.fireUnlock()
	}
}

// SetAutoLoad makes Open report a successful load of the given duration immediately.
func (b *Backend) SetAutoLoad(duration time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.autoLoad = true
	b.autoDuration = duration
}

// SetRealtime makes handle positions advance with the wall clock while playing.
func (b *Backend) SetRealtime(realtime bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.realtime = realtime
}

// Open creates a handle for url. See ports.AudioBackend.
func (b *Backend) Open(url string, opts ports.BackendOptions, callbacks ports.BackendCallbacks) ports.AudioHandle {
	b.mu.Lock()
	h := &Handle{
		backend:   b,
		url:       url,
		opts:      opts,
		callbacks: callbacks,
		volume:    opts.Volume,
		muted:     opts.Muted,
		looping:   opts.Loop,
		realtime:  b.realtime,
	}
	b.handles = append(b.handles, h)
	b.journal = append(b.journal, "open "+url)
	autoLoad, autoDuration := b.autoLoad, b.autoDuration
	logger := b.logger
	b.mu.Unlock()

	if logger != nil {
		logger.Debug("mock handle opened", slog.String("url", url))
	}

	if autoLoad {
		h.TriggerLoad(autoDuration)
	}
	return h
}

// Shutdown marks the backend as shut down.
func (b *Backend) Shutdown() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.shutdown {
		return domain.ErrNotInitialized
	}
	b.shutdown = true
	return nil
}

// Handles returns every handle opened so far, oldest first.
func (b *Backend) Handles() []*Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Handle(nil), b.handles...)
}

// Last returns the most recently opened handle, or nil.
func (b *Backend) Last() *Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.handles) == 0 {
		return nil
	}
	return b.handles[len(b.handles)-1]
}

// OpenCount returns how many handles were opened.
func (b *Backend) OpenCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handles)
}

// Journal returns every open and unload across all handles, in call order,
// as "open <url>" and "unload <url>" entries.
func (b *Backend) Journal() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.journal...)
}

func (b *Backend) note(entry string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.journal = append(b.journal, entry)
}

// IsShutdown reports whether Shutdown was called.
func (b *Backend) IsShutdown() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shutdown
}

func (b *Backend) isLocked() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.locked
}

// Verify that Backend implements the AudioBackend interface
var _ ports.AudioBackend = (*Backend)(nil)
