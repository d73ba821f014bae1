// Package ports define the clip submission interface.
// Uploading clips is handled by an external collaborator behind this interface.
package ports

import (
	"context"

	"github.com/tejashwikalptaru/jamclip/internal/domain"
)

// ClipSubmitter stores a finished clip.
//
// Thread-safety: Implementations must be thread-safe.
type ClipSubmitter interface {
	// Submit validates and stores the draft.
	// A rejected draft returns an error wrapping a *domain.ValidationError.
	//
	// Returns the stored clip, or an error if submission fails or ctx is done.
	Submit(ctx context.Context, draft domain.ClipDraft) (domain.Clip, error)
}

// ClipRepository is a ClipSubmitter that can also list what it stored.
type ClipRepository interface {
	ClipSubmitter

	// Get retrieves a clip by ID.
	// If the clip doesn't exist, returns domain.ErrClipNotFound.
	Get(ctx context.Context, id string) (domain.Clip, error)

	// ListByTrack returns the clips cut from a track, oldest first.
	ListByTrack(ctx context.Context, trackID string) ([]domain.Clip, error)
}
