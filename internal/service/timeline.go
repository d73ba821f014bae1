package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/tejashwikalptaru/jamclip/internal/domain"
)

// ClipEditor is the clip surface the timeline commits edits through.
type ClipEditor interface {
	State() domain.ClipperState
	SetStart(raw time.Duration) error
	SetEnd(raw time.Duration) error
}

// ViewBounds provides the displayed timeline window.
type ViewBounds interface {
	Bounds() domain.Bounds
}

// Timeline is the pointer-driven controller of the clip timeline.
//
// Dragging a thumb only stages a target; the committed clip bounds change once, when
// the drag ends, and only if the staged value differs from the committed one.
type Timeline struct {
	logger *slog.Logger
	clip   ClipEditor
	player Player
	view   ViewBounds

	mu          sync.Mutex
	dragging    domain.DraggingThumb
	startTarget time.Duration
	endTarget   time.Duration
}

// NewTimeline creates a timeline controller.
func NewTimeline(logger *slog.Logger, clip ClipEditor, player Player, view ViewBounds) *Timeline {
	state := clip.State()
	return &Timeline{
		logger:      logger.With(slog.String("service", "timeline")),
		clip:        clip,
		player:      player,
		view:        view,
		startTarget: state.Start,
		endTarget:   state.End,
	}
}

// Dragging returns the captured thumb.
func (t *Timeline) Dragging() domain.DraggingThumb {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dragging
}

// BeginDrag captures thumb. Dragging requires an active clip.
func (t *Timeline) BeginDrag(thumb domain.DraggingThumb) error {
	if thumb == domain.ThumbNone {
		return errors.New("no thumb to drag")
	}
	state := t.clip.State()
	if state.Status != domain.ClipperActive {
		return errors.Wrapf(domain.ErrActionNotAllowed, "drag in clipper %s", state.Status)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.dragging = thumb
	t.startTarget = state.Start
	t.endTarget = state.End
	return nil
}

// MoveDrag stages the dragged thumb at factor (0 to 1) across the view window.
// Nothing is committed and playback does not move.
func (t *Timeline) MoveDrag(factor float64) {
	view := t.view.Bounds()
	at := domain.PercentToTime(factor*100, view.Start, view.End)
	duration := playbackDuration(t.player.State())

	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.dragging {
	case domain.ThumbStart:
		t.startTarget = domain.ClampStart(at, t.endTarget)
	case domain.ThumbEnd:
		t.endTarget = domain.ClampEnd(at, t.startTarget, duration)
	}
}

// EndDrag releases the thumb and commits its staged target if it moved.
func (t *Timeline) EndDrag() error {
	t.mu.Lock()
	thumb := t.dragging
	startTarget, endTarget := t.startTarget, t.endTarget
	t.dragging = domain.ThumbNone
	t.mu.Unlock()

	committed := t.clip.State()

	var err error
	switch {
	case thumb == domain.ThumbStart && startTarget != committed.Start:
		err = t.clip.SetStart(startTarget)
	case thumb == domain.ThumbEnd && endTarget != committed.End:
		err = t.clip.SetEnd(endTarget)
	}
	if err != nil {
		t.logger.Warn("drag not committed", slog.String("thumb", thumb.String()), slog.Any("error", err))
	}

	t.sync()
	return err
}

// Display returns the bounds to draw: the staged value for the dragged thumb, committed values otherwise.
func (t *Timeline) Display() domain.Bounds {
	committed := t.clip.State()

	t.mu.Lock()
	defer t.mu.Unlock()

	display := committed.Bounds()
	switch t.dragging {
	case domain.ThumbStart:
		display.Start = t.startTarget
	case domain.ThumbEnd:
		display.End = t.endTarget
	}
	return display
}

// ClickSeek seeks to the time under factor (0 to 1) when it falls inside the clip.
// Clicks while dragging are ignored.
func (t *Timeline) ClickSeek(factor float64) bool {
	if t.Dragging() != domain.ThumbNone {
		return false
	}

	view := t.view.Bounds()
	at := domain.PercentToTime(factor*100, view.Start, view.End)
	if !t.Display().Contains(at) {
		return false
	}

	t.player.Seek(at)
	return true
}

// NudgeStart moves the clip start one step, staying inside the view window.
func (t *Timeline) NudgeStart(direction domain.NudgeDirection) error {
	state := t.clip.State()
	err := t.clip.SetStart(domain.Nudge(state.Start, direction, t.view.Bounds()))
	t.sync()
	return err
}

// NudgeEnd moves the clip end one step, staying inside the view window.
func (t *Timeline) NudgeEnd(direction domain.NudgeDirection) error {
	state := t.clip.State()
	err := t.clip.SetEnd(domain.Nudge(state.End, direction, t.view.Bounds()))
	t.sync()
	return err
}

// Markers returns the ruler ticks for the current view window.
func (t *Timeline) Markers() []domain.RulerMarker {
	return domain.RulerMarkers(t.view.Bounds(), domain.DefaultMarkerDistance)
}

// sync resets the staged targets to the committed bounds.
func (t *Timeline) sync() {
	state := t.clip.State()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.dragging == domain.ThumbNone {
		t.startTarget = state.Start
		t.endTarget = state.End
	}
}
