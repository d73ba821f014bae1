// Package ports define interfaces for dependency inversion.
// These interfaces allow the playback core to remain independent of audio libraries and storage.
package ports

// AudioBackend is the interface for audio decoding and output backends.
// This abstracts the underlying audio library and allows for testing with mocks.
//
// Implementations must be thread-safe as they may be called from multiple goroutines.
type AudioBackend interface {
	// Open starts loading the source at url and returns a handle immediately.
	// Loading is asynchronous: exactly one of callbacks.OnLoad or callbacks.OnLoadError
	// is invoked later, possibly from another goroutine.
	//
	// url: http(s) URL, file:// URL or local path
	// opts: initial output options
	// callbacks: notifications raised by the returned handle
	Open(url string, opts BackendOptions, callbacks BackendCallbacks) AudioHandle

	// Shutdown releases all backend resources.
	// Handles opened before Shutdown must not be used afterwards.
	//
	// Returns an error if shutdown fails.
	Shutdown() error
}

// BackendOptions configures a newly opened handle.
type BackendOptions struct {
	// HTML5 requests streaming playback instead of decoding the whole source up front
	HTML5 bool

	// Loop restarts playback when the source ends
	Loop bool

	// Volume is the initial volume factor (0.0 to 1.0)
	Volume float64

	// Muted starts the handle muted
	Muted bool
}

// BackendCallbacks are the notifications an AudioHandle raises.
// Nil callbacks are skipped. Callbacks are delivered in the order the backend raises them.
type BackendCallbacks struct {
	// OnLoad is called once the source is decoded and ready to play
	OnLoad func()

	// OnLoadError is called when loading fails; the error carries a backend code
	// (see domain.ErrorCode)
	OnLoadError func(err error)

	// OnPlayError is called when Play cannot start output.
	// An autoplay lock is reported with an error matched by domain.IsAutoplayLocked.
	OnPlayError func(err error)

	// OnEnd is called when playback reaches the end of the source while not looping
	OnEnd func()
}

// AudioHandle is a single loaded source.
// Positions are in seconds, matching what audio libraries report.
//
// After Unload every method is a no-op and no further callbacks are raised.
type AudioHandle interface {
	// Play starts or resumes playback. Failures are reported through OnPlayError.
	Play()

	// Pause pauses playback, keeping the position.
	Pause()

	// Seek moves the playback position to seconds.
	Seek(seconds float64)

	// Position returns the current playback position in seconds.
	Position() float64

	// Duration returns the source duration in seconds (0 until loaded).
	Duration() float64

	// SetVolume sets the volume factor (0.0 to 1.0).
	SetVolume(factor float64)

	// Mute mutes or unmutes output without changing the volume.
	Mute(muted bool)

	// Loop enables or disables looping at the end of the source.
	Loop(loop bool)

	// Unload stops playback and frees the decoder.
	Unload()

	// OnceUnlock registers fn to run once, the next time output becomes unlocked
	// after an autoplay-locked play attempt.
	OnceUnlock(fn func())
}
