package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/tejashwikalptaru/jamclip/internal/app"
	"github.com/tejashwikalptaru/jamclip/internal/domain"
)

const helpText = `commands:
  status                      show playback and clip state
  play | pause | retry        control playback
  seek <sec>                  jump to a position
  volume <0-100>              set the volume
  mute | unmute | loop | unloop
  clip                        start a clip around the current position
  start <sec> | end <sec>     move a clip bound
  nudge <start|end> <+|->     move a clip bound by half a second
  drag <start|end> <0-1>      drag a bound to a point on the timeline
  click <0-1>                 seek to a point on the timeline inside the clip
  preview <start|end>         hear the clip start or end
  title <text>                name the clip
  submit | cancel             finish or discard the clip
  view                        show the timeline window and ruler
  clips                       list saved clips
  quit`

// repl is the interactive command loop of the play command.
type repl struct {
	session *app.Session
	in      io.Reader
	out     io.Writer
}

func newREPL(session *app.Session, in io.Reader, out io.Writer) *repl {
	return &repl{session: session, in: in, out: out}
}

// Run reads commands until quit, end of input or ctx is done.
func (r *repl) Run(ctx context.Context) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	r.printf("%s\n", helpText)
	for {
		r.printf("> ")
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := r.exec(ctx, line)
			if err != nil {
				r.printf("error: %v\n", err)
			}
			if quit {
				return nil
			}
		}
	}
}

// exec runs one command line. It reports whether the loop should stop.
func (r *repl) exec(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	playback := r.session.Playback()
	clipper := r.session.Clipper()
	timeline := r.session.Timeline()

	switch cmd {
	case "quit", "exit":
		return true, nil
	case "help":
		r.printf("%s\n", helpText)
	case "status":
		r.printStatus()
	case "play":
		playback.Play()
	case "pause":
		playback.Pause()
	case "retry":
		return false, playback.Retry()
	case "seek":
		at, err := secondsArg(args)
		if err != nil {
			return false, err
		}
		playback.Seek(at)
	case "volume":
		if len(args) != 1 {
			return false, errors.New("usage: volume <0-100>")
		}
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return false, errors.Wrap(err, "volume")
		}
		playback.SetVolume(v)
	case "mute":
		playback.Mute()
	case "unmute":
		playback.Unmute()
	case "loop":
		playback.Loop()
	case "unloop":
		playback.Unloop()
	case "clip":
		return false, clipper.StartClipping()
	case "cancel":
		return false, clipper.CancelClipping()
	case "start", "end":
		at, err := secondsArg(args)
		if err != nil {
			return false, err
		}
		if cmd == "start" {
			return false, clipper.SetStart(at)
		}
		return false, clipper.SetEnd(at)
	case "nudge":
		return false, r.nudge(args)
	case "drag":
		return false, r.drag(args)
	case "click":
		factor, err := factorArg(args, 0)
		if err != nil {
			return false, err
		}
		if !timeline.ClickSeek(factor) {
			r.printf("outside the clip\n")
		}
	case "preview":
		if len(args) == 1 && args[0] == "end" {
			clipper.PlayEnd()
		} else {
			clipper.PlayStart()
		}
	case "title":
		return false, clipper.SetTitle(strings.Join(args, " "))
	case "submit":
		clip, err := clipper.SubmitClip(ctx)
		if err != nil {
			return false, err
		}
		r.printf("saved clip %q (%s - %s)\n", clip.Title,
			domain.FormatDuration(clip.Start), domain.FormatDuration(clip.End))
	case "view":
		r.printView()
	case "clips":
		return false, r.printClips(ctx)
	default:
		return false, errors.Newf("unknown command %q", cmd)
	}
	return false, nil
}

func (r *repl) nudge(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: nudge <start|end> <+|->")
	}
	direction := domain.NudgeForward
	if args[1] == "-" {
		direction = domain.NudgeBackward
	}

	timeline := r.session.Timeline()
	switch args[0] {
	case "start":
		return timeline.NudgeStart(direction)
	case "end":
		return timeline.NudgeEnd(direction)
	default:
		return errors.Newf("unknown bound %q", args[0])
	}
}

func (r *repl) drag(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: drag <start|end> <0-1>")
	}
	thumb := domain.ThumbStart
	if args[0] == "end" {
		thumb = domain.ThumbEnd
	}
	factor, err := factorArg(args, 1)
	if err != nil {
		return err
	}

	timeline := r.session.Timeline()
	if err := timeline.BeginDrag(thumb); err != nil {
		return err
	}
	timeline.MoveDrag(factor)
	return timeline.EndDrag()
}

func (r *repl) printStatus() {
	state := r.session.Playback().State()
	title := "-"
	if state.Playable != nil {
		title = state.Playable.Title
	}
	r.printf("%s  %s  %s / %s  vol %d%%", state.Status, title,
		domain.FormatDuration(r.session.Playback().Position()),
		domain.FormatDuration(state.Duration), state.Volume)
	if state.IsMuted {
		r.printf("  muted")
	}
	if state.IsLooping {
		r.printf("  loop")
	}
	if state.ErrorMessage != "" {
		r.printf("  %s", state.ErrorMessage)
	}
	r.printf("\n")

	clip := r.session.Clipper().State()
	if clip.Status != domain.ClipperIdle {
		r.printf("clip %s  %s - %s  %q", clip.Status,
			domain.FormatDuration(clip.Start), domain.FormatDuration(clip.End), clip.Title)
		if clip.ErrorMessage != "" {
			r.printf("  %s", clip.ErrorMessage)
		}
		r.printf("\n")
	}
}

func (r *repl) printView() {
	view := r.session.View().Bounds()
	r.printf("view %s - %s\n", domain.FormatDuration(view.Start), domain.FormatDuration(view.End))
	for _, marker := range r.session.Timeline().Markers() {
		if marker.Major {
			r.printf("  %5.1f%%  %s\n", marker.Percent, marker.Label)
		}
	}
}

func (r *repl) printClips(ctx context.Context) error {
	state := r.session.Playback().State()
	if state.Playable == nil {
		return domain.ErrNoPlayable
	}
	clips, err := r.session.Clips().ListByTrack(ctx, state.Playable.ID)
	if err != nil {
		return err
	}
	for _, clip := range clips {
		r.printf("%s  %s - %s  %s\n", clip.ID,
			domain.FormatDuration(clip.Start), domain.FormatDuration(clip.End), clip.Title)
	}
	return nil
}

func (r *repl) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

func secondsArg(args []string) (time.Duration, error) {
	if len(args) != 1 {
		return 0, errors.New("expected a position in seconds")
	}
	seconds, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, errors.Wrapf(err, "position %q", args[0])
	}
	return domain.SecondsToDuration(seconds), nil
}

func factorArg(args []string, i int) (float64, error) {
	if len(args) <= i {
		return 0, errors.New("expected a timeline point between 0 and 1")
	}
	factor, err := strconv.ParseFloat(args[i], 64)
	if err != nil || factor < 0 || factor > 1 {
		return 0, errors.Newf("timeline point %q must be between 0 and 1", args[i])
	}
	return factor, nil
}
