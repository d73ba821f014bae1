package domain

import (
	"slices"
	"time"

	"github.com/cockroachdb/errors"
)

// PlaybackActionKind names a playback action.
type PlaybackActionKind string

// Playback action kinds.
const (
	ActionLoad         PlaybackActionKind = "LOAD"
	ActionLoaded       PlaybackActionKind = "LOADED"
	ActionPlay         PlaybackActionKind = "PLAY"
	ActionPause        PlaybackActionKind = "PAUSE"
	ActionSeek         PlaybackActionKind = "SEEK"
	ActionVolumeChange PlaybackActionKind = "VOLUME_CHANGE"
	ActionMute         PlaybackActionKind = "MUTE"
	ActionUnmute       PlaybackActionKind = "UNMUTE"
	ActionLoop         PlaybackActionKind = "LOOP"
	ActionUnloop       PlaybackActionKind = "UNLOOP"
	ActionSetError     PlaybackActionKind = "SET_ERROR"
)

// PlaybackAction is an input to ReducePlayback.
type PlaybackAction interface {
	Kind() PlaybackActionKind
}

// LoadAction loads a playable, replacing the session unless it is already loaded.
type LoadAction struct{ Playable Playable }

// LoadedAction reports the decoded duration once the backend has loaded.
type LoadedAction struct{ Duration time.Duration }

// PlayAction starts playback.
type PlayAction struct{}

// PauseAction pauses playback.
type PauseAction struct{}

// SeekAction requests a seek to Target.
type SeekAction struct{ Target time.Duration }

// VolumeChangeAction sets the volume in percent.
type VolumeChangeAction struct{ Volume int }

// MuteAction mutes output.
type MuteAction struct{}

// UnmuteAction unmutes output.
type UnmuteAction struct{}

// LoopAction enables looping.
type LoopAction struct{}

// UnloopAction disables looping.
type UnloopAction struct{}

// SetErrorAction moves playback to the error status.
type SetErrorAction struct{ Message string }

func (LoadAction) Kind() PlaybackActionKind         { return ActionLoad }
func (LoadedAction) Kind() PlaybackActionKind       { return ActionLoaded }
func (PlayAction) Kind() PlaybackActionKind         { return ActionPlay }
func (PauseAction) Kind() PlaybackActionKind        { return ActionPause }
func (SeekAction) Kind() PlaybackActionKind         { return ActionSeek }
func (VolumeChangeAction) Kind() PlaybackActionKind { return ActionVolumeChange }
func (MuteAction) Kind() PlaybackActionKind         { return ActionMute }
func (UnmuteAction) Kind() PlaybackActionKind       { return ActionUnmute }
func (LoopAction) Kind() PlaybackActionKind         { return ActionLoop }
func (UnloopAction) Kind() PlaybackActionKind       { return ActionUnloop }
func (SetErrorAction) Kind() PlaybackActionKind     { return ActionSetError }

// playbackTransitions lists the actions each status accepts.
var playbackTransitions = map[PlaybackStatus][]PlaybackActionKind{
	StatusIdle: {ActionLoad},
	StatusLoading: {
		ActionLoad, ActionLoaded, ActionSetError,
	},
	StatusPlaying: {
		ActionLoad, ActionPause, ActionSeek, ActionVolumeChange,
		ActionMute, ActionUnmute, ActionLoop, ActionUnloop, ActionSetError,
	},
	StatusPaused: {
		ActionLoad, ActionPlay, ActionSeek, ActionVolumeChange,
		ActionMute, ActionUnmute, ActionLoop, ActionUnloop, ActionSetError,
	},
	StatusError: {ActionLoad},
}

// PlaybackActionAllowed reports whether kind is legal in status.
func PlaybackActionAllowed(status PlaybackStatus, kind PlaybackActionKind) bool {
	return slices.Contains(playbackTransitions[status], kind)
}

// ReducePlayback applies action to state and returns the next state.
// An illegal action leaves the state unchanged and returns an error wrapping ErrActionNotAllowed.
// Loading the playable that is already loaded returns state unchanged with no error,
// unless the session is in StatusError.
func ReducePlayback(state PlaybackState, action PlaybackAction) (PlaybackState, error) {
	if !PlaybackActionAllowed(state.Status, action.Kind()) {
		return state, errors.Wrapf(ErrActionNotAllowed, "%s in %s", action.Kind(), state.Status)
	}

	switch a := action.(type) {
	case LoadAction:
		// Reloading the same playable is only meaningful as a retry after an error.
		if state.Status != StatusError && SamePlayable(state.Playable, &a.Playable) {
			return state, nil
		}
		playable := a.Playable
		next := NewPlaybackState()
		next.Status = StatusLoading
		next.Playable = &playable
		return next, nil

	case LoadedAction:
		state.Status = StatusPaused
		state.Duration = max(0, RoundToMillisecond(a.Duration))
		return state, nil

	case PlayAction:
		state.Status = StatusPlaying
		return state, nil

	case PauseAction:
		state.Status = StatusPaused
		return state, nil

	case SeekAction:
		state.SeekTarget = ClampPosition(a.Target, state.Duration)
		state.SeekRequestID++
		return state, nil

	case VolumeChangeAction:
		state.Volume = ClampVolume(a.Volume)
		return state, nil

	case MuteAction:
		state.IsMuted = true
		return state, nil

	case UnmuteAction:
		state.IsMuted = false
		return state, nil

	case LoopAction:
		state.IsLooping = true
		return state, nil

	case UnloopAction:
		state.IsLooping = false
		return state, nil

	case SetErrorAction:
		state.Status = StatusError
		state.ErrorMessage = a.Message
		return state, nil

	default:
		return state, errors.Wrapf(ErrActionNotAllowed, "unknown action %T", action)
	}
}

// ClampPosition clamps a raw position to [0, duration] at millisecond granularity.
func ClampPosition(raw, duration time.Duration) time.Duration {
	return min(max(RoundToMillisecond(raw), 0), max(duration, 0))
}

// ClampVolume clamps a raw volume to [0, 100].
func ClampVolume(raw int) int {
	return min(max(raw, 0), 100)
}
