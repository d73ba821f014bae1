package service

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/jamclip/internal/domain"
	"github.com/tejashwikalptaru/jamclip/internal/logger"
)

// countingEditor counts commits made through the clipper.
type countingEditor struct {
	*ClipperService
	starts int
	ends   int
}

func (c *countingEditor) SetStart(raw time.Duration) error {
	c.starts++
	return c.ClipperService.SetStart(raw)
}

func (c *countingEditor) SetEnd(raw time.Duration) error {
	c.ends++
	return c.ClipperService.SetEnd(raw)
}

type timelineFixture struct {
	*clipperFixture
	editor   *countingEditor
	view     *ViewWindow
	timeline *Timeline
}

// newTimelineFixture has an active clip [35s, 100s] in the view [10s, 250s] of a ten minute track.
func newTimelineFixture(t *testing.T) *timelineFixture {
	t.Helper()
	f := newClipperFixture(t)
	require.NoError(t, f.clipper.StartClipping())

	view := NewViewWindow(logger.NewTestLogger(), f.playback, f.bus)
	t.Cleanup(view.Close)

	editor := &countingEditor{ClipperService: f.clipper}
	return &timelineFixture{
		clipperFixture: f,
		editor:         editor,
		view:           view,
		timeline:       NewTimeline(logger.NewTestLogger(), editor, f.playback, view),
	}
}

func TestTimeline_BeginDragRequiresActiveClip(t *testing.T) {
	f := newTimelineFixture(t)
	require.NoError(t, f.clipper.CancelClipping())

	err := f.timeline.BeginDrag(domain.ThumbStart)
	assert.True(t, errors.Is(err, domain.ErrActionNotAllowed))
	assert.Equal(t, domain.ThumbNone, f.timeline.Dragging())

	assert.Error(t, f.timeline.BeginDrag(domain.ThumbNone))
}

func TestTimeline_DragStartCommitsOnce(t *testing.T) {
	f := newTimelineFixture(t)

	require.NoError(t, f.timeline.BeginDrag(domain.ThumbStart))
	f.timeline.MoveDrag(0.125)
	f.timeline.MoveDrag(0.25)
	f.timeline.MoveDrag(0.0625)

	assert.Equal(t, domain.Bounds{Start: 25 * time.Second, End: 100 * time.Second}, f.timeline.Display())
	assert.Equal(t, 35*time.Second, f.clipper.State().Start, "nothing committed while dragging")
	assert.Empty(t, f.handle.Seeks(), "no seek while dragging")

	require.NoError(t, f.timeline.EndDrag())

	assert.Equal(t, 1, f.editor.starts)
	assert.Zero(t, f.editor.ends)
	assert.Equal(t, 25*time.Second, f.clipper.State().Start)
	assert.Equal(t, []float64{25}, f.handle.Seeks())
	assert.Equal(t, domain.ThumbNone, f.timeline.Dragging())
}

func TestTimeline_DragWithoutChange(t *testing.T) {
	f := newTimelineFixture(t)

	require.NoError(t, f.timeline.BeginDrag(domain.ThumbStart))
	require.NoError(t, f.timeline.EndDrag())

	require.NoError(t, f.timeline.BeginDrag(domain.ThumbStart))
	f.timeline.MoveDrag(0.5)
	f.timeline.MoveDrag(25.0 / 240.0)
	require.NoError(t, f.timeline.EndDrag())

	assert.Zero(t, f.editor.starts)
	assert.Empty(t, f.handle.Seeks())
}

func TestTimeline_DragEndIsClamped(t *testing.T) {
	f := newTimelineFixture(t)

	require.NoError(t, f.timeline.BeginDrag(domain.ThumbEnd))
	f.timeline.MoveDrag(1)

	assert.Equal(t, 35*time.Second+domain.MaxClipDuration, f.timeline.Display().End)

	require.NoError(t, f.timeline.EndDrag())
	assert.Equal(t, 1, f.editor.ends)
	assert.Equal(t, 215*time.Second, f.clipper.State().End)
	assert.Equal(t, []float64{214}, f.handle.Seeks())
}

func TestTimeline_ClickSeek(t *testing.T) {
	f := newTimelineFixture(t)

	assert.True(t, f.timeline.ClickSeek(0.125))
	assert.Equal(t, []float64{40}, f.handle.Seeks())

	assert.False(t, f.timeline.ClickSeek(0.5), "outside the clip")

	require.NoError(t, f.timeline.BeginDrag(domain.ThumbEnd))
	assert.False(t, f.timeline.ClickSeek(0.125), "ignored while dragging")

	assert.Len(t, f.handle.Seeks(), 1)
}

func TestTimeline_Nudge(t *testing.T) {
	f := newTimelineFixture(t)

	require.NoError(t, f.timeline.NudgeStart(domain.NudgeBackward))
	require.NoError(t, f.timeline.NudgeEnd(domain.NudgeForward))

	state := f.clipper.State()
	assert.Equal(t, 34500*time.Millisecond, state.Start)
	assert.Equal(t, 100500*time.Millisecond, state.End)
	assert.Equal(t, state.Bounds(), f.timeline.Display())

	// The view window limits a nudge.
	require.NoError(t, f.clipper.SetStart(10*time.Second))
	require.NoError(t, f.timeline.NudgeStart(domain.NudgeBackward))
	assert.Equal(t, 10*time.Second, f.clipper.State().Start)
}

func TestTimeline_Markers(t *testing.T) {
	f := newTimelineFixture(t)

	markers := f.timeline.Markers()
	require.Len(t, markers, 8)
	assert.Equal(t, 30*time.Second, markers[0].Time)
	assert.False(t, markers[0].Major)
	assert.Equal(t, time.Minute, markers[1].Time)
	assert.True(t, markers[1].Major)
	assert.Equal(t, "01:00", markers[1].Label)
	assert.Equal(t, 240*time.Second, markers[7].Time)
}
