// Package memory provides in-memory repository implementations.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/tejashwikalptaru/jamclip/internal/domain"
	"github.com/tejashwikalptaru/jamclip/internal/ports"
)

// ClipRepository implements ports.ClipRepository in memory.
// It stands in for the clip upload API in tests and in the CLI.
//
// Thread-safe: All operations protected by sync.RWMutex.
type ClipRepository struct {
	validate *validator.Validate
	now      func() time.Time

	mu    sync.RWMutex
	clips map[string]domain.Clip
}

// NewClipRepository creates an empty clip repository.
func NewClipRepository() *ClipRepository {
	return &ClipRepository{
		validate: validator.New(),
		now:      time.Now,
		clips:    make(map[string]domain.Clip),
	}
}

// SetClock replaces the creation timestamp source.
func (r *ClipRepository) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// Submit validates draft and stores it as a new clip with a fresh UUID.
func (r *ClipRepository) Submit(ctx context.Context, draft domain.ClipDraft) (domain.Clip, error) {
	if err := ctx.Err(); err != nil {
		return domain.Clip{}, errors.Wrap(err, "submit clip")
	}

	draft.Title = domain.SanitizeClipTitle(draft.Title)
	if err := r.validateDraft(draft); err != nil {
		return domain.Clip{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	clip := domain.Clip{
		ID:        uuid.NewString(),
		TrackID:   draft.TrackID,
		Title:     draft.Title,
		Start:     draft.Start,
		End:       draft.End,
		CreatedAt: r.now(),
	}
	r.clips[clip.ID] = clip

	return clip, nil
}

// Get returns the clip with the given ID.
func (r *ClipRepository) Get(ctx context.Context, id string) (domain.Clip, error) {
	if err := ctx.Err(); err != nil {
		return domain.Clip{}, errors.Wrap(err, "get clip")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	clip, ok := r.clips[id]
	if !ok {
		return domain.Clip{}, errors.Wrapf(domain.ErrClipNotFound, "id %s", id)
	}
	return clip, nil
}

// ListByTrack returns the clips cut from trackID, ordered by start time.
func (r *ClipRepository) ListByTrack(ctx context.Context, trackID string) ([]domain.Clip, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "list clips")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	clips := make([]domain.Clip, 0)
	for _, clip := range r.clips {
		if clip.TrackID == trackID {
			clips = append(clips, clip)
		}
	}
	slices.SortFunc(clips, func(a, b domain.Clip) int {
		return cmp.Or(cmp.Compare(a.Start, b.Start), a.CreatedAt.Compare(b.CreatedAt))
	})
	return clips, nil
}

// validateDraft checks struct tags first, then the clip length limits.
func (r *ClipRepository) validateDraft(draft domain.ClipDraft) error {
	if err := r.validate.Struct(draft); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return domain.NewValidationError(strings.ToLower(fe.Field()), fe.Value(), fieldMessage(fe))
		}
		return errors.Wrap(err, "validate clip draft")
	}

	length := draft.End - draft.Start
	switch {
	case length < domain.MinClipDuration:
		return domain.NewValidationError("end", draft.End, "Clip is too short")
	case length > domain.MaxClipDuration:
		return domain.NewValidationError("end", draft.End, "Clip is too long")
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s cannot be empty", fe.Field())
	case "max":
		return fmt.Sprintf("%s is too long", fe.Field())
	case "gte":
		return fmt.Sprintf("%s cannot be negative", fe.Field())
	case "gtfield":
		return fmt.Sprintf("%s must be after %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// Verify that ClipRepository implements the ClipRepository interface
var _ ports.ClipRepository = (*ClipRepository)(nil)
