package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/tejashwikalptaru/jamclip/internal/domain"
	"github.com/tejashwikalptaru/jamclip/internal/ports"
)

// submitFailureMessage is shown when a submission fails for a reason other than validation.
const submitFailureMessage = "Sorry, something went wrong."

// Player is the part of the playback surface the clip editor drives.
type Player interface {
	State() domain.PlaybackState
	Position() time.Duration
	Seek(target time.Duration)
}

// ClipperService owns the clip editing session of one player session.
//
// Edits commit through the clipper reducer and then move playback so the user hears
// the edited bound. While a clip is being edited the service also keeps playback
// inside the clip window: progress past the end jumps back to the start, and a seek
// outside the window moves the window to the seek target.
type ClipperService struct {
	// Dependencies (injected)
	logger    *slog.Logger
	player    Player
	bus       ports.EventBus
	submitter ports.ClipSubmitter

	mu          sync.RWMutex
	state       domain.ClipperState
	unsubscribe func()
}

// NewClipperService creates a clipper bound to player and subscribes it to playback events on bus.
func NewClipperService(
	logger *slog.Logger,
	player Player,
	bus ports.EventBus,
	submitter ports.ClipSubmitter,
) *ClipperService {
	s := &ClipperService{
		logger:    logger.With(slog.String("service", "clipper")),
		player:    player,
		bus:       bus,
		submitter: submitter,
		state:     domain.NewClipperState(),
	}

	s.unsubscribe = listen(bus, s.handleEvent,
		domain.EventStatusChanged, domain.EventProgress, domain.EventSeek)

	s.logger.Debug("clipper service initialized")
	return s
}

// State returns a snapshot of the clipper state.
func (s *ClipperService) State() domain.ClipperState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Derived returns the clipper convenience flags.
func (s *ClipperService) Derived() domain.ClipperDerived {
	state := s.State()
	return domain.ClipperDerived{
		IsIdle:       state.Status == domain.ClipperIdle,
		IsActive:     state.Status == domain.ClipperActive,
		IsSubmitting: state.Status == domain.ClipperSubmitting,
		IsClippable:  s.IsClippable(),
	}
}

// IsClippable reports whether a clip can be cut from what is playing: a track longer
// than the longest clip that is playing or paused.
func (s *ClipperService) IsClippable() bool {
	playback := s.player.State()
	if playback.Playable == nil || !playback.Playable.IsTrack() {
		return false
	}
	if playback.Status != domain.StatusPlaying && playback.Status != domain.StatusPaused {
		return false
	}
	return playbackDuration(playback) > domain.MaxClipDuration
}

// StartClipping opens an editing session around the current position.
func (s *ClipperService) StartClipping() error {
	if !s.IsClippable() {
		return domain.ErrNotClippable
	}

	position := s.player.Position()
	bounds, err := domain.InitialBounds(position, s.duration())
	if err != nil {
		return errors.Wrapf(err, "initial bounds at %s", position)
	}

	return s.apply(domain.StartClippingAction{Bounds: bounds})
}

// CancelClipping discards the editing session.
func (s *ClipperService) CancelClipping() error {
	return s.apply(domain.CancelClippingAction{})
}

// SetStart moves the clip start and seeks playback to it.
// Ambiguous bounds are rejected with domain.ErrAmbiguousBounds and leave the clip unchanged.
func (s *ClipperService) SetStart(raw time.Duration) error {
	duration := s.duration()
	next, err := s.update(func(current domain.ClipperState) (domain.ClipperAction, error) {
		if current.Status != domain.ClipperActive {
			return nil, errors.Wrapf(domain.ErrActionNotAllowed, "set start in clipper %s", current.Status)
		}
		start := domain.ClampStart(raw, current.End)
		bounds, err := domain.GetBounds(start, current.End, duration)
		if err != nil {
			return nil, err
		}
		return domain.SetBoundsAction{Bounds: bounds}, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrAmbiguousBounds) {
			s.logger.Warn("clip start rejected", slog.Duration("start", raw), slog.Any("error", err))
		}
		return err
	}

	s.player.Seek(next.Start)
	return nil
}

// SetEnd moves the clip end and seeks playback to just before it.
// Ambiguous bounds are rejected with domain.ErrAmbiguousBounds and leave the clip unchanged.
func (s *ClipperService) SetEnd(raw time.Duration) error {
	duration := s.duration()
	next, err := s.update(func(current domain.ClipperState) (domain.ClipperAction, error) {
		if current.Status != domain.ClipperActive {
			return nil, errors.Wrapf(domain.ErrActionNotAllowed, "set end in clipper %s", current.Status)
		}
		end := domain.ClampEnd(raw, current.Start, duration)
		bounds, err := domain.GetBounds(current.Start, end, duration)
		if err != nil {
			return nil, err
		}
		return domain.SetBoundsAction{Bounds: bounds}, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrAmbiguousBounds) {
			s.logger.Warn("clip end rejected", slog.Duration("end", raw), slog.Any("error", err))
		}
		return err
	}

	s.player.Seek(next.End - domain.SeekEndOffset)
	return nil
}

// SetTitle stores the raw title. An invalid title is reported through the state's error message.
func (s *ClipperService) SetTitle(title string) error {
	return s.apply(domain.SetTitleAction{Title: title})
}

// PlayStart seeks playback to the clip start.
func (s *ClipperService) PlayStart() {
	s.player.Seek(s.State().Start)
}

// PlayEnd seeks playback to just before the clip end.
func (s *ClipperService) PlayEnd() {
	s.player.Seek(s.State().End - domain.SeekEndOffset)
}

// SubmitClip validates the session and hands the clip to the submitter.
// On failure the session returns to active with an error message; on success it resets to idle.
func (s *ClipperService) SubmitClip(ctx context.Context) (domain.Clip, error) {
	current := s.State()
	if current.Status != domain.ClipperActive {
		return domain.Clip{}, errors.Wrapf(domain.ErrActionNotAllowed, "submit in clipper %s", current.Status)
	}

	if verr := domain.ValidateClipTitle(current.Title); verr != nil {
		_ = s.apply(domain.ClipSetErrorAction{Message: verr.Message})
		return domain.Clip{}, verr
	}

	playable := s.player.State().Playable
	if playable == nil || !playable.IsTrack() {
		s.logger.Warn("no playable track available for clipping")
		return domain.Clip{}, domain.ErrNotClippable
	}

	if err := s.apply(domain.SubmitClipAction{}); err != nil {
		return domain.Clip{}, err
	}

	draft := domain.ClipDraft{
		TrackID: playable.ID,
		Title:   domain.SanitizeClipTitle(current.Title),
		Start:   current.Start,
		End:     current.End,
	}

	s.logger.Debug("submitting clip",
		slog.String("track_id", draft.TrackID),
		slog.Duration("start", draft.Start),
		slog.Duration("end", draft.End))

	clip, err := s.submitter.Submit(ctx, draft)
	if err != nil {
		message := submitErrorMessage(err)
		s.logger.Error("clip submission failed", slog.Any("error", err))
		_ = s.apply(domain.ClipSetErrorAction{Message: message})
		return domain.Clip{}, domain.NewServiceError("ClipperService", "SubmitClip", message, err)
	}

	_ = s.apply(domain.SubmitSuccessAction{})
	s.bus.Publish(domain.NewClipSubmittedEvent(clip))

	s.logger.Info("clip created", slog.String("clip_id", clip.ID), slog.String("title", clip.Title))
	return clip, nil
}

// Shutdown detaches the clipper from playback events.
func (s *ClipperService) Shutdown() {
	s.unsubscribe()
}

// apply reduces action and publishes the new state when it changed.
func (s *ClipperService) apply(action domain.ClipperAction) error {
	_, err := s.update(func(domain.ClipperState) (domain.ClipperAction, error) {
		return action, nil
	})
	return err
}

// update builds an action from the current state and reduces it in one critical section,
// so an edit never overwrites a change made between reading the state and applying it.
// A nil action leaves the state untouched.
func (s *ClipperService) update(
	build func(current domain.ClipperState) (domain.ClipperAction, error),
) (domain.ClipperState, error) {
	s.mu.Lock()
	prev := s.state
	action, err := build(prev)
	if err != nil || action == nil {
		s.mu.Unlock()
		return prev, err
	}

	next, err := domain.ReduceClipper(prev, action)
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn("clipper action rejected",
			slog.String("action", string(action.Kind())),
			slog.String("status", prev.Status.String()),
			slog.Any("error", err))
		return prev, err
	}
	s.state = next
	s.mu.Unlock()

	s.logger.Debug("clipper action applied", slog.String("action", string(action.Kind())))

	if next != prev {
		s.bus.Publish(domain.NewClipperChangedEvent(next))
	}
	return next, nil
}

func (s *ClipperService) handleEvent(event domain.Event) {
	current := s.State()
	if current.Status == domain.ClipperIdle {
		return
	}

	switch e := event.(type) {
	case domain.StatusChangedEvent:
		if e.To != domain.StatusLoading {
			return
		}
		// A different playable is loading: the clip no longer applies.
		_, _ = s.update(func(current domain.ClipperState) (domain.ClipperAction, error) {
			if current.Status != domain.ClipperActive {
				return nil, nil
			}
			s.logger.Debug("playable changed, cancelling clip")
			return domain.CancelClippingAction{}, nil
		})

	case domain.ProgressEvent:
		if e.Position > current.End {
			s.player.Seek(current.Start)
		}

	case domain.SeekEvent:
		if current.Bounds().Contains(e.Target) {
			return
		}
		duration := s.duration()
		_, _ = s.update(func(current domain.ClipperState) (domain.ClipperAction, error) {
			if current.Status != domain.ClipperActive || current.Bounds().Contains(e.Target) {
				return nil, nil
			}
			bounds, err := domain.InitialBounds(e.Target, duration)
			if err != nil {
				s.logger.Debug("cannot move clip window", slog.Duration("target", e.Target), slog.Any("error", err))
				return nil, nil
			}
			return domain.SetBoundsAction{Bounds: bounds}, nil
		})
	}
}

func (s *ClipperService) duration() time.Duration {
	return playbackDuration(s.player.State())
}

// playbackDuration prefers the decoded duration and falls back to the catalogue duration.
func playbackDuration(state domain.PlaybackState) time.Duration {
	if state.Duration > 0 || state.Playable == nil {
		return state.Duration
	}
	return state.Playable.Duration
}

func submitErrorMessage(err error) string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return submitFailureMessage
}
