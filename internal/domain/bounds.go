package domain

import (
	"time"
)

// Clip editing constants.
const (
	// ClipStartOffset is how far before the current position a new clip starts
	ClipStartOffset = 5 * time.Second

	// ClipEndOffset is how far after the current position a new clip ends
	ClipEndOffset = 60 * time.Second

	// SeekEndOffset is how far before the clip end playback seeks to preview the out-point
	SeekEndOffset = 1 * time.Second

	// MinClipDuration is the shortest clip span
	MinClipDuration = 15 * time.Second

	// MaxClipDuration is the longest clip span
	MaxClipDuration = 3 * time.Minute

	// MaxTitleLength is the maximum clip title length in characters
	MaxTitleLength = 255

	// ViewPadding is the margin shown before the current position on the timeline
	ViewPadding = 30 * time.Second

	// NudgeStep is how far a nudge moves a bound
	NudgeStep = 500 * time.Millisecond
)

// GetBounds clamps raw bounds so that start >= 0 and end <= duration.
// When the clamped start is not before the clamped end the result is returned
// together with ErrAmbiguousBounds and must not be committed.
func GetBounds(rawStart, rawEnd, duration time.Duration) (Bounds, error) {
	b := Bounds{
		Start: max(0, rawStart),
		End:   min(duration, rawEnd),
	}
	if b.Start >= b.End {
		return b, ErrAmbiguousBounds
	}
	return b, nil
}

// InitialBounds returns the clip window opened around position.
func InitialBounds(position, duration time.Duration) (Bounds, error) {
	start := max(0, position-ClipStartOffset)
	end := ClampEnd(position+ClipEndOffset, start, duration)
	return GetBounds(start, end, duration)
}

// ClampStart keeps a start candidate between MinClipDuration and MaxClipDuration before end.
func ClampStart(rawStart, end time.Duration) time.Duration {
	lower := max(0, end-MaxClipDuration)
	upper := end - MinClipDuration
	return RoundToMillisecond(clamp(rawStart, lower, upper))
}

// ClampEnd keeps an end candidate between MinClipDuration and MaxClipDuration after start,
// and no later than duration.
func ClampEnd(rawEnd, start, duration time.Duration) time.Duration {
	lower := start + MinClipDuration
	upper := min(duration, start+MaxClipDuration)
	return RoundToMillisecond(clamp(rawEnd, lower, upper))
}

// GetViewBounds returns the timeline window shown around position.
func GetViewBounds(position, duration time.Duration) Bounds {
	window := MaxClipDuration + 2*ViewPadding
	start := max(0, position-ViewPadding)
	return Bounds{
		Start: start,
		End:   min(duration, start+window),
	}
}

// Nudge moves value by one NudgeStep in direction, staying within view.
func Nudge(value time.Duration, direction NudgeDirection, view Bounds) time.Duration {
	return clamp(value+time.Duration(direction)*NudgeStep, view.Start, view.End)
}

// clamp bounds value to [lo, hi]; hi wins when the range is empty.
func clamp(value, lo, hi time.Duration) time.Duration {
	return min(max(value, lo), hi)
}
