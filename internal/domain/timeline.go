package domain

import (
	"fmt"
	"strings"
	"time"
)

// DefaultMarkerDistance is the spacing of major ruler markers.
const DefaultMarkerDistance = 60 * time.Second

// FormatDuration renders d as MM:SS, or H:MM:SS once it reaches an hour.
// Sub-second remainders are truncated.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	seconds := total % 60
	minutes := (total / 60) % 60
	hours := total / 3600

	var b strings.Builder
	if hours > 0 {
		fmt.Fprintf(&b, "%d:", hours)
	}
	fmt.Fprintf(&b, "%02d:%02d", minutes, seconds)
	return b.String()
}

// TimeToPositionPercent maps t to a percentage of [start, end].
// Times before start map to 0 and times after end map to 100.
func TimeToPositionPercent(t, start, end time.Duration) float64 {
	if t < start {
		return 0
	}
	if t > end {
		return 100
	}
	if end == start {
		return 0
	}
	return float64(t-start) / float64(end-start) * 100
}

// PercentToTime maps a percentage of [start, end] back to a time, rounded to the millisecond.
func PercentToTime(percent float64, start, end time.Duration) time.Duration {
	offset := time.Duration(percent / 100 * float64(end-start))
	return RoundToMillisecond(start + offset)
}

// RulerMarker is a tick on the timeline ruler.
type RulerMarker struct {
	Time    time.Duration
	Percent float64
	Major   bool
	Label   string
}

// RulerMarkers returns ticks every half markerDistance across view.
// Ticks on a multiple of markerDistance are major and carry a label.
func RulerMarkers(view Bounds, markerDistance time.Duration) []RulerMarker {
	step := markerDistance / 2
	if step <= 0 || view.End < view.Start {
		return nil
	}

	first := ceilTo(view.Start, step)
	last := (view.End / step) * step

	var markers []RulerMarker
	for t := first; t <= last; t += step {
		m := RulerMarker{
			Time:    t,
			Percent: TimeToPositionPercent(t, view.Start, view.End),
			Major:   t%markerDistance == 0,
		}
		if m.Major {
			m.Label = FormatDuration(t)
		}
		markers = append(markers, m)
	}
	return markers
}

func ceilTo(d, step time.Duration) time.Duration {
	if d%step == 0 {
		return d
	}
	return (d/step + 1) * step
}
