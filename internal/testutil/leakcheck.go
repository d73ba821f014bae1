// Package testutil provides testing utilities for the jamclip packages.
package testutil

import (
	"testing"

	"go.uber.org/goleak"
)

// VerifyNoLeaks should be deferred at the start of tests that spawn goroutines.
// It verifies that no goroutines were leaked during the test.
func VerifyNoLeaks(t *testing.T, opts ...goleak.Option) {
	t.Helper()
	goleak.VerifyNone(t, append(opts, IgnoreAudioGoroutines()...)...)
}

// IgnoreAudioGoroutines returns goleak options for the goroutines the audio device
// driver keeps for the lifetime of the process once an audio context exists.
func IgnoreAudioGoroutines() []goleak.Option {
	return []goleak.Option{
		goleak.IgnoreAnyFunction("github.com/ebitengine/oto/v3/internal/mux.(*Mux).loop"),
		goleak.IgnoreAnyFunction("github.com/hajimehoshi/ebiten/v2/audio.(*playerFactory).updatePlayers"),
	}
}
