package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/jamclip/internal/domain"
)

// Helper to create a valid draft
func createTestDraft(trackID string, start time.Duration) domain.ClipDraft {
	return domain.ClipDraft{
		TrackID: trackID,
		Title:   "  Chorus ",
		Start:   start,
		End:     start + time.Minute,
	}
}

func TestClipRepository_SubmitAndGet(t *testing.T) {
	repo := NewClipRepository()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.SetClock(func() time.Time { return created })

	clip, err := repo.Submit(context.Background(), createTestDraft("t1", 30*time.Second))
	require.NoError(t, err)

	_, err = uuid.Parse(clip.ID)
	assert.NoError(t, err, "clip ID should be a UUID")
	assert.Equal(t, "Chorus", clip.Title)
	assert.Equal(t, "t1", clip.TrackID)
	assert.Equal(t, time.Minute, clip.Duration())
	assert.Equal(t, created, clip.CreatedAt)

	got, err := repo.Get(context.Background(), clip.ID)
	require.NoError(t, err)
	assert.Equal(t, clip, got)
}

func TestClipRepository_GetMissing(t *testing.T) {
	repo := NewClipRepository()

	_, err := repo.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrClipNotFound))
}

func TestClipRepository_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *domain.ClipDraft)
		field   string
		message string
	}{
		{"missing track", func(d *domain.ClipDraft) { d.TrackID = "" }, "trackid", "TrackID cannot be empty"},
		{"blank title", func(d *domain.ClipDraft) { d.Title = "   " }, "title", "Title cannot be empty"},
		{"negative start", func(d *domain.ClipDraft) { d.Start = -time.Second }, "start", "Start cannot be negative"},
		{"end before start", func(d *domain.ClipDraft) { d.End = d.Start }, "end", "End must be after Start"},
		{"too short", func(d *domain.ClipDraft) { d.End = d.Start + 5*time.Second }, "end", "Clip is too short"},
		{"too long", func(d *domain.ClipDraft) { d.End = d.Start + 4*time.Minute }, "end", "Clip is too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewClipRepository()
			draft := createTestDraft("t1", 10*time.Second)
			tt.mutate(&draft)

			_, err := repo.Submit(context.Background(), draft)

			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.message, verr.Message)
		})
	}
}

func TestClipRepository_ListByTrack(t *testing.T) {
	repo := NewClipRepository()
	ctx := context.Background()

	_, err := repo.Submit(ctx, createTestDraft("t1", 2*time.Minute))
	require.NoError(t, err)
	_, err = repo.Submit(ctx, createTestDraft("t2", 0))
	require.NoError(t, err)
	_, err = repo.Submit(ctx, createTestDraft("t1", 0))
	require.NoError(t, err)

	clips, err := repo.ListByTrack(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, clips, 2)
	assert.Equal(t, time.Duration(0), clips[0].Start)
	assert.Equal(t, 2*time.Minute, clips[1].Start)

	none, err := repo.ListByTrack(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestClipRepository_CancelledContext(t *testing.T) {
	repo := NewClipRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Submit(ctx, createTestDraft("t1", 0))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestClipRepository_ConcurrentSubmit(t *testing.T) {
	repo := NewClipRepository()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Submit(context.Background(), createTestDraft("t1", 0))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	clips, err := repo.ListByTrack(context.Background(), "t1")
	require.NoError(t, err)
	assert.Len(t, clips, 50)
}
