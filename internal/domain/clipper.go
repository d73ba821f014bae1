package domain

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// ClipperActionKind names a clipper action.
type ClipperActionKind string

// Clipper action kinds.
const (
	ActionStartClipping  ClipperActionKind = "START_CLIPPING"
	ActionSubmitClip     ClipperActionKind = "SUBMIT_CLIP"
	ActionSubmitSuccess  ClipperActionKind = "SUBMIT_SUCCESS"
	ActionCancelClipping ClipperActionKind = "CANCEL_CLIPPING"
	ActionSetBounds      ClipperActionKind = "SET_BOUNDS"
	ActionSetTitle       ClipperActionKind = "SET_TITLE"
	ActionClipSetError   ClipperActionKind = "SET_ERROR"
)

// ClipperAction is an input to ReduceClipper.
type ClipperAction interface {
	Kind() ClipperActionKind
}

// StartClippingAction opens an editing session with the given initial bounds.
type StartClippingAction struct{ Bounds Bounds }

// SubmitClipAction moves an active session to submitting.
type SubmitClipAction struct{}

// SubmitSuccessAction ends a submission successfully.
type SubmitSuccessAction struct{}

// CancelClippingAction discards the session.
type CancelClippingAction struct{}

// SetBoundsAction replaces the committed clip bounds.
type SetBoundsAction struct{ Bounds Bounds }

// SetTitleAction stores the raw title and its validation result.
type SetTitleAction struct{ Title string }

// ClipSetErrorAction records an error. During submission it returns the session to active.
type ClipSetErrorAction struct{ Message string }

func (StartClippingAction) Kind() ClipperActionKind  { return ActionStartClipping }
func (SubmitClipAction) Kind() ClipperActionKind     { return ActionSubmitClip }
func (SubmitSuccessAction) Kind() ClipperActionKind  { return ActionSubmitSuccess }
func (CancelClippingAction) Kind() ClipperActionKind { return ActionCancelClipping }
func (SetBoundsAction) Kind() ClipperActionKind      { return ActionSetBounds }
func (SetTitleAction) Kind() ClipperActionKind       { return ActionSetTitle }
func (ClipSetErrorAction) Kind() ClipperActionKind   { return ActionClipSetError }

// clipperTransitions lists the actions each clipper status accepts.
var clipperTransitions = map[ClipperStatus][]ClipperActionKind{
	ClipperIdle: {ActionStartClipping},
	ClipperActive: {
		ActionSubmitClip, ActionCancelClipping, ActionSetBounds, ActionSetTitle, ActionClipSetError,
	},
	ClipperSubmitting: {ActionClipSetError, ActionSubmitSuccess},
}

// ClipperActionAllowed reports whether kind is legal in status.
func ClipperActionAllowed(status ClipperStatus, kind ClipperActionKind) bool {
	return slices.Contains(clipperTransitions[status], kind)
}

// ReduceClipper applies action to state and returns the next state.
// An illegal action leaves the state unchanged and returns an error wrapping ErrActionNotAllowed.
func ReduceClipper(state ClipperState, action ClipperAction) (ClipperState, error) {
	if !ClipperActionAllowed(state.Status, action.Kind()) {
		return state, errors.Wrapf(ErrActionNotAllowed, "%s in clipper %s", action.Kind(), state.Status)
	}

	switch a := action.(type) {
	case StartClippingAction:
		return ClipperState{
			Status: ClipperActive,
			Start:  a.Bounds.Start,
			End:    a.Bounds.End,
		}, nil

	case SubmitClipAction:
		state.Status = ClipperSubmitting
		state.ErrorMessage = ""
		return state, nil

	case SubmitSuccessAction, CancelClippingAction:
		return NewClipperState(), nil

	case SetBoundsAction:
		state.Start = a.Bounds.Start
		state.End = a.Bounds.End
		return state, nil

	case SetTitleAction:
		state.Title = a.Title
		state.ErrorMessage = ""
		if err := ValidateClipTitle(a.Title); err != nil {
			state.ErrorMessage = err.Message
		}
		return state, nil

	case ClipSetErrorAction:
		state.Status = ClipperActive
		state.ErrorMessage = a.Message
		return state, nil

	default:
		return state, errors.Wrapf(ErrActionNotAllowed, "unknown clipper action %T", action)
	}
}

// SanitizeClipTitle trims surrounding whitespace from a title.
func SanitizeClipTitle(title string) string {
	return strings.TrimSpace(title)
}

// ValidateClipTitle checks the sanitized title. It returns nil when the title is acceptable.
func ValidateClipTitle(title string) *ValidationError {
	sanitized := SanitizeClipTitle(title)
	if sanitized == "" {
		return NewValidationError("title", title, "Title cannot be empty")
	}
	if utf8.RuneCountInString(sanitized) > MaxTitleLength {
		return NewValidationError("title", title, "Title is too long")
	}
	return nil
}
