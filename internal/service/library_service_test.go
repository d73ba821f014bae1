package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/jamclip/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/jamclip/internal/adapter/metadata"
	"github.com/tejashwikalptaru/jamclip/internal/domain"
	"github.com/tejashwikalptaru/jamclip/internal/logger"
)

// Helper to create a test library service
func newTestLibraryService(reader PlayableReader) (*LibraryService, *eventbus.SyncEventBus) {
	bus := eventbus.NewSyncEventBus()
	return NewLibraryService(logger.NewTestLogger(), reader, bus), bus
}

// Helper to create a temporary test directory with audio files
func createTestMusicFolder(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	for _, file := range []string{
		"song1.mp3",
		"song2.flac",
		"track.wav",
		"readme.txt",
		"subdir/nested.ogg",
	} {
		fullPath := filepath.Join(dir, file)
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(t, os.WriteFile(fullPath, nil, 0o644))
	}
	return dir
}

// blockingReader holds every read until release is closed.
type blockingReader struct {
	started chan struct{}
	release chan struct{}
}

func newBlockingReader() *blockingReader {
	return &blockingReader{started: make(chan struct{}, 16), release: make(chan struct{})}
}

func (r *blockingReader) ReadPlayable(path string) (domain.Playable, error) {
	r.started <- struct{}{}
	<-r.release
	return domain.NewTrack(path, filepath.Base(path), "file://"+path, 0), nil
}

func titles(tracks []domain.Playable) []string {
	out := make([]string, 0, len(tracks))
	for _, track := range tracks {
		out = append(out, track.Title)
	}
	return out
}

func TestLibraryService_ScanFolder(t *testing.T) {
	service, bus := newTestLibraryService(metadata.NewReader())
	recorder := recordEvents(bus)
	dir := createTestMusicFolder(t)

	tracks, err := service.ScanFolder(context.Background(), dir)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"song1", "track", "nested"}, titles(tracks))
	for _, track := range tracks {
		assert.True(t, track.IsTrack())
		assert.NotEmpty(t, track.ID)
	}

	events := recorder.ofType(domain.EventLibraryScanned)
	require.Len(t, events, 1)
	scanned := events[0].(domain.LibraryScannedEvent)
	assert.Equal(t, dir, scanned.Path)
	assert.Len(t, scanned.Tracks, 3)
	assert.False(t, service.IsScanning())
}

func TestLibraryService_ScanFolderMissing(t *testing.T) {
	service, bus := newTestLibraryService(metadata.NewReader())
	recorder := recordEvents(bus)

	_, err := service.ScanFolder(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Empty(t, recorder.ofType(domain.EventLibraryScanned))
	assert.False(t, service.IsScanning())
}

func TestLibraryService_ScanFiles(t *testing.T) {
	service, _ := newTestLibraryService(metadata.NewReader())
	dir := createTestMusicFolder(t)

	tracks, err := service.ScanFiles(context.Background(), []string{
		filepath.Join(dir, "song1.mp3"),
		filepath.Join(dir, "readme.txt"),
		filepath.Join(dir, "gone.mp3"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"song1"}, titles(tracks))
}

func TestLibraryService_CancelScan(t *testing.T) {
	reader := newBlockingReader()
	service, _ := newTestLibraryService(reader)
	dir := createTestMusicFolder(t)

	err := service.CancelScan()
	require.Error(t, err, "cancel without a scan")

	result := make(chan error, 1)
	go func() {
		_, err := service.ScanFolder(context.Background(), dir)
		result <- err
	}()

	<-reader.started
	assert.True(t, service.IsScanning())
	require.NoError(t, service.CancelScan())
	close(reader.release)

	select {
	case err := <-result:
		assert.True(t, errors.Is(err, domain.ErrScanCancelled))
	case <-time.After(5 * time.Second):
		t.Fatal("scan did not stop after cancel")
	}
	assert.False(t, service.IsScanning())
}

func TestLibraryService_ConcurrentScan(t *testing.T) {
	reader := newBlockingReader()
	service, _ := newTestLibraryService(reader)
	dir := createTestMusicFolder(t)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = service.ScanFolder(context.Background(), dir)
	}()
	<-reader.started

	_, err := service.ScanFiles(context.Background(), []string{filepath.Join(dir, "song1.mp3")})
	var serr *domain.ServiceError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "scan already in progress", serr.Message)

	close(reader.release)
	<-done
}

func TestLibraryService_ContextCancelled(t *testing.T) {
	service, _ := newTestLibraryService(metadata.NewReader())
	dir := createTestMusicFolder(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tracks, err := service.ScanFolder(ctx, dir)
	assert.True(t, errors.Is(err, domain.ErrScanCancelled))
	assert.Empty(t, tracks)
}
