// Package domain defines events for the event-driven architecture.
// Events decouple the playback core from its observers.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
// All events must implement this interface to be published via the event bus.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Playback stream events
	EventProgress EventType = "playback.progress"
	EventSeek     EventType = "playback.seek"

	// Playback lifecycle events
	EventStatusChanged EventType = "playback.status_changed"
	EventLoaded        EventType = "playback.loaded"
	EventPlaybackError EventType = "playback.error"

	// Output events
	EventVolumeChanged EventType = "volume.changed"
	EventMuteToggled   EventType = "mute.toggled"
	EventLoopToggled   EventType = "loop.toggled"

	// Clipper events
	EventClipperChanged EventType = "clipper.changed"
	EventClipSubmitted  EventType = "clipper.submitted"

	// Timeline events
	EventViewBoundsChanged EventType = "timeline.view_changed"

	// Library events
	EventLibraryScanned EventType = "library.scanned"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
// All concrete events should embed this struct.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

// newBaseEvent creates a new base event with the current timestamp.
func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// ProgressEvent is published on every progress tick while playing.
type ProgressEvent struct {
	baseEvent
	Position time.Duration
}

// Type returns the event type.
func (e ProgressEvent) Type() EventType {
	return EventProgress
}

// NewProgressEvent creates a new ProgressEvent.
func NewProgressEvent(position time.Duration) ProgressEvent {
	return ProgressEvent{
		baseEvent: newBaseEvent(),
		Position:  position,
	}
}

// SeekEvent is published once per applied seek request, even when the target repeats.
type SeekEvent struct {
	baseEvent
	Target    time.Duration
	RequestID uint64
}

// Type returns the event type.
func (e SeekEvent) Type() EventType {
	return EventSeek
}

// NewSeekEvent creates a new SeekEvent.
func NewSeekEvent(target time.Duration, requestID uint64) SeekEvent {
	return SeekEvent{
		baseEvent: newBaseEvent(),
		Target:    target,
		RequestID: requestID,
	}
}

// StatusChangedEvent is published when the playback status changes.
type StatusChangedEvent struct {
	baseEvent
	From     PlaybackStatus
	To       PlaybackStatus
	Playable *Playable
}

// Type returns the event type.
func (e StatusChangedEvent) Type() EventType {
	return EventStatusChanged
}

// NewStatusChangedEvent creates a new StatusChangedEvent.
func NewStatusChangedEvent(from, to PlaybackStatus, playable *Playable) StatusChangedEvent {
	return StatusChangedEvent{
		baseEvent: newBaseEvent(),
		From:      from,
		To:        to,
		Playable:  playable,
	}
}

// LoadedEvent is published when the backend finishes loading a playable.
type LoadedEvent struct {
	baseEvent
	Playable Playable
	Duration time.Duration
}

// Type returns the event type.
func (e LoadedEvent) Type() EventType {
	return EventLoaded
}

// NewLoadedEvent creates a new LoadedEvent.
func NewLoadedEvent(playable Playable, duration time.Duration) LoadedEvent {
	return LoadedEvent{
		baseEvent: newBaseEvent(),
		Playable:  playable,
		Duration:  duration,
	}
}

// PlaybackErrorEvent is published when playback enters the error status.
type PlaybackErrorEvent struct {
	baseEvent
	Message string
	Err     error
}

// Type returns the event type.
func (e PlaybackErrorEvent) Type() EventType {
	return EventPlaybackError
}

// NewPlaybackErrorEvent creates a new PlaybackErrorEvent.
func NewPlaybackErrorEvent(message string, err error) PlaybackErrorEvent {
	return PlaybackErrorEvent{
		baseEvent: newBaseEvent(),
		Message:   message,
		Err:       err,
	}
}

// VolumeChangedEvent is published when the volume changes.
type VolumeChangedEvent struct {
	baseEvent
	Volume int // 0 to 100
}

// Type returns the event type.
func (e VolumeChangedEvent) Type() EventType {
	return EventVolumeChanged
}

// NewVolumeChangedEvent creates a new VolumeChangedEvent.
func NewVolumeChangedEvent(volume int) VolumeChangedEvent {
	return VolumeChangedEvent{
		baseEvent: newBaseEvent(),
		Volume:    volume,
	}
}

// MuteToggledEvent is published when mute is toggled.
type MuteToggledEvent struct {
	baseEvent
	Muted bool
}

// Type returns the event type.
func (e MuteToggledEvent) Type() EventType {
	return EventMuteToggled
}

// NewMuteToggledEvent creates a new MuteToggledEvent.
func NewMuteToggledEvent(muted bool) MuteToggledEvent {
	return MuteToggledEvent{
		baseEvent: newBaseEvent(),
		Muted:     muted,
	}
}

// LoopToggledEvent is published when loop mode is toggled.
type LoopToggledEvent struct {
	baseEvent
	Looping bool
}

// Type returns the event type.
func (e LoopToggledEvent) Type() EventType {
	return EventLoopToggled
}

// NewLoopToggledEvent creates a new LoopToggledEvent.
func NewLoopToggledEvent(looping bool) LoopToggledEvent {
	return LoopToggledEvent{
		baseEvent: newBaseEvent(),
		Looping:   looping,
	}
}

// ClipperChangedEvent is published whenever the clipper state changes.
type ClipperChangedEvent struct {
	baseEvent
	State ClipperState
}

// Type returns the event type.
func (e ClipperChangedEvent) Type() EventType {
	return EventClipperChanged
}

// NewClipperChangedEvent creates a new ClipperChangedEvent.
func NewClipperChangedEvent(state ClipperState) ClipperChangedEvent {
	return ClipperChangedEvent{
		baseEvent: newBaseEvent(),
		State:     state,
	}
}

// ClipSubmittedEvent is published after a clip was stored by the submitter.
type ClipSubmittedEvent struct {
	baseEvent
	Clip Clip
}

// Type returns the event type.
func (e ClipSubmittedEvent) Type() EventType {
	return EventClipSubmitted
}

// NewClipSubmittedEvent creates a new ClipSubmittedEvent.
func NewClipSubmittedEvent(clip Clip) ClipSubmittedEvent {
	return ClipSubmittedEvent{
		baseEvent: newBaseEvent(),
		Clip:      clip,
	}
}

// ViewBoundsChangedEvent is published when the timeline view window is recentered.
type ViewBoundsChangedEvent struct {
	baseEvent
	Bounds Bounds
}

// Type returns the event type.
func (e ViewBoundsChangedEvent) Type() EventType {
	return EventViewBoundsChanged
}

// NewViewBoundsChangedEvent creates a new ViewBoundsChangedEvent.
func NewViewBoundsChangedEvent(bounds Bounds) ViewBoundsChangedEvent {
	return ViewBoundsChangedEvent{
		baseEvent: newBaseEvent(),
		Bounds:    bounds,
	}
}

// LibraryScannedEvent is published when a folder scan completes.
type LibraryScannedEvent struct {
	baseEvent
	Path   string
	Tracks []Playable
}

// Type returns the event type.
func (e LibraryScannedEvent) Type() EventType {
	return EventLibraryScanned
}

// NewLibraryScannedEvent creates a new LibraryScannedEvent.
func NewLibraryScannedEvent(path string, tracks []Playable) LibraryScannedEvent {
	return LibraryScannedEvent{
		baseEvent: newBaseEvent(),
		Path:      path,
		Tracks:    tracks,
	}
}
