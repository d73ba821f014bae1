// Package domain contains core playback and clipping models and logic with no infrastructure dependencies.
// This package defines the fundamental entities of the jamclip workstation core.
package domain

import (
	"math"
	"time"
)

// PlayableKind distinguishes the two kinds of audio the core can play.
type PlayableKind string

const (
	// KindTrack is a full uploaded track.
	KindTrack PlayableKind = "track"

	// KindClip is a bounded region previously cut from a track.
	KindClip PlayableKind = "clip"
)

// Playable is a loadable audio source handed to the core by upstream fetch collaborators.
// Two playables are the same when kind and ID match; see SamePlayable.
type Playable struct {
	// Kind is the playable variant (track or clip)
	Kind PlayableKind

	// ID identifies the playable within its kind
	ID string

	// Title is the display title
	Title string

	// URL is the audio source location (http(s), file:// or a local path)
	URL string

	// Duration is the duration reported by the catalogue (0 if unknown)
	Duration time.Duration

	// TrackID is the source track of a clip (empty for tracks)
	TrackID string

	// Start is the clip start within its source track (clips only)
	Start time.Duration

	// End is the clip end within its source track (clips only)
	End time.Duration
}

// NewTrack creates a track playable.
func NewTrack(id, title, url string, duration time.Duration) Playable {
	return Playable{
		Kind:     KindTrack,
		ID:       id,
		Title:    title,
		URL:      url,
		Duration: duration,
	}
}

// NewClip creates a clip playable cut from the given track.
func NewClip(id, trackID, title, url string, start, end time.Duration) Playable {
	return Playable{
		Kind:     KindClip,
		ID:       id,
		Title:    title,
		URL:      url,
		Duration: end - start,
		TrackID:  trackID,
		Start:    start,
		End:      end,
	}
}

// IsTrack reports whether the playable is a full track.
func (p Playable) IsTrack() bool {
	return p.Kind == KindTrack
}

// Key returns the identity of the playable as "kind:id".
func (p Playable) Key() string {
	return string(p.Kind) + ":" + p.ID
}

// SamePlayable reports whether a and b refer to the same playable.
// Identity is by kind and ID only, never by pointer.
func SamePlayable(a, b *Playable) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Kind == b.Kind && a.ID == b.ID
}

// PlaybackStatus represents the current status of the playback state machine.
type PlaybackStatus int

const (
	// StatusIdle indicates nothing has been loaded yet
	StatusIdle PlaybackStatus = iota

	// StatusLoading indicates the backend is decoding the playable
	StatusLoading

	// StatusPlaying indicates playback is active
	StatusPlaying

	// StatusPaused indicates playback is paused
	StatusPaused

	// StatusError indicates loading or playback failed
	StatusError
)

// String returns a human-readable representation of the playback status.
func (s PlaybackStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// DefaultVolume is the volume of a fresh playback session, in percent.
const DefaultVolume = 75

// PlaybackState is the canonical playback state.
// It is replaced wholesale when a different playable is loaded and mutated field by field otherwise.
// PlaybackState is comparable; an unchanged state compares equal to its predecessor.
type PlaybackState struct {
	// Status is the current playback status
	Status PlaybackStatus

	// Playable is the loaded playable (nil while idle)
	Playable *Playable

	// Duration is the decoded duration, known after load
	Duration time.Duration

	// SeekTarget is the last requested seek position, clamped to [0, Duration]
	SeekTarget time.Duration

	// SeekRequestID increments on every seek so repeated targets still take effect
	SeekRequestID uint64

	// Volume is the volume in percent (0 to 100)
	Volume int

	// IsMuted indicates if audio is muted
	IsMuted bool

	// IsLooping indicates if the playable restarts when it ends
	IsLooping bool

	// ErrorMessage is the user-facing error (empty unless Status is StatusError)
	ErrorMessage string
}

// NewPlaybackState returns the idle state a session starts in.
func NewPlaybackState() PlaybackState {
	return PlaybackState{
		Status: StatusIdle,
		Volume: DefaultVolume,
	}
}

// PlaybackDerived holds convenience flags computed from a PlaybackState.
type PlaybackDerived struct {
	IsIdle    bool
	IsLoading bool
	IsPlaying bool
	IsPaused  bool
	IsError   bool
}

// Derive computes the convenience flags for the state.
func (s PlaybackState) Derive() PlaybackDerived {
	return PlaybackDerived{
		IsIdle:    s.Status == StatusIdle,
		IsLoading: s.Status == StatusLoading,
		IsPlaying: s.Status == StatusPlaying,
		IsPaused:  s.Status == StatusPaused,
		IsError:   s.Status == StatusError,
	}
}

// ClipperStatus represents the status of a clip editing session.
type ClipperStatus int

const (
	// ClipperIdle indicates no clip is being edited
	ClipperIdle ClipperStatus = iota

	// ClipperActive indicates a clip is being edited
	ClipperActive

	// ClipperSubmitting indicates the clip is being uploaded
	ClipperSubmitting
)

// String returns a human-readable representation of the clipper status.
func (s ClipperStatus) String() string {
	switch s {
	case ClipperIdle:
		return "idle"
	case ClipperActive:
		return "active"
	case ClipperSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// ClipperState is the state of the clip editing session.
// While active: 0 <= Start < End <= duration and End-Start <= MaxClipDuration.
type ClipperState struct {
	Status       ClipperStatus
	Start        time.Duration
	End          time.Duration
	Title        string
	ErrorMessage string
}

// NewClipperState returns the idle clipper defaults.
func NewClipperState() ClipperState {
	return ClipperState{Status: ClipperIdle}
}

// Bounds returns the clip bounds.
func (s ClipperState) Bounds() Bounds {
	return Bounds{Start: s.Start, End: s.End}
}

// ClipperDerived holds convenience flags for the clipper.
type ClipperDerived struct {
	IsIdle       bool
	IsActive     bool
	IsSubmitting bool
	IsClippable  bool
}

// Bounds is a [Start, End] time range, used both for clip bounds and the view window.
type Bounds struct {
	Start time.Duration
	End   time.Duration
}

// Contains reports whether t lies within the bounds, inclusive.
func (b Bounds) Contains(t time.Duration) bool {
	return b.Start <= t && t <= b.End
}

// Length returns End - Start.
func (b Bounds) Length() time.Duration {
	return b.End - b.Start
}

// DraggingThumb identifies which clip bound the user is dragging on the timeline.
type DraggingThumb int

const (
	// ThumbNone means no thumb is captured
	ThumbNone DraggingThumb = iota

	// ThumbStart is the clip start handle
	ThumbStart

	// ThumbEnd is the clip end handle
	ThumbEnd
)

// String returns a human-readable representation of the thumb.
func (t DraggingThumb) String() string {
	switch t {
	case ThumbNone:
		return "none"
	case ThumbStart:
		return "start"
	case ThumbEnd:
		return "end"
	default:
		return "unknown"
	}
}

// NudgeDirection is the direction a bound is nudged in.
type NudgeDirection int

const (
	// NudgeBackward moves a bound earlier
	NudgeBackward NudgeDirection = -1

	// NudgeForward moves a bound later
	NudgeForward NudgeDirection = 1
)

// Clip is a clip created by a successful submission.
type Clip struct {
	// ID is a unique identifier for the clip (UUID)
	ID string

	// TrackID is the source track
	TrackID string

	// Title is the sanitized clip title
	Title string

	// Start is the clip start within the track
	Start time.Duration

	// End is the clip end within the track
	End time.Duration

	// CreatedAt is when the clip was stored
	CreatedAt time.Time
}

// Duration returns the clip length.
func (c Clip) Duration() time.Duration {
	return c.End - c.Start
}

// ClipDraft is the payload handed to the clip submitter.
type ClipDraft struct {
	TrackID string        `validate:"required"`
	Title   string        `validate:"required,max=255"`
	Start   time.Duration `validate:"gte=0"`
	End     time.Duration `validate:"gtfield=Start"`
}

// SecondsToDuration converts backend seconds to a duration rounded to the nearest millisecond.
func SecondsToDuration(seconds float64) time.Duration {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return 0
	}
	return time.Duration(math.Round(seconds*1000)) * time.Millisecond
}

// DurationToSeconds converts a duration to backend seconds.
func DurationToSeconds(d time.Duration) float64 {
	return d.Seconds()
}

// RoundToMillisecond rounds d to millisecond granularity.
func RoundToMillisecond(d time.Duration) time.Duration {
	return d.Round(time.Millisecond)
}
