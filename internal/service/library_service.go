package service

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/tejashwikalptaru/jamclip/internal/domain"
	"github.com/tejashwikalptaru/jamclip/internal/ports"
)

// PlayableReader builds a playable from a file on disk.
type PlayableReader interface {
	ReadPlayable(path string) (domain.Playable, error)
}

// LibraryService builds the catalogue of local tracks the player can load.
// Only one scan runs at a time.
type LibraryService struct {
	// Dependencies (injected)
	logger *slog.Logger
	reader PlayableReader
	bus    ports.EventBus

	// State
	scanning   bool
	cancelScan context.CancelFunc

	mu sync.RWMutex
}

// NewLibraryService creates a new library service.
func NewLibraryService(logger *slog.Logger, reader PlayableReader, bus ports.EventBus) *LibraryService {
	return &LibraryService{
		logger: logger.With(slog.String("service", "library")),
		reader: reader,
		bus:    bus,
	}
}

// ScanFolder walks dir recursively and returns a playable for every supported audio file.
// Files the reader rejects are skipped.
func (s *LibraryService) ScanFolder(ctx context.Context, dir string) ([]domain.Playable, error) {
	ctx, done, err := s.begin(ctx, "ScanFolder")
	if err != nil {
		return nil, err
	}
	defer done()

	var tracks []domain.Playable
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}

		if track, ok := s.read(path); ok {
			tracks = append(tracks, track)
		}
		return nil
	})

	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			s.logger.Info("library scan cancelled", slog.String("path", dir), slog.Int("tracks", len(tracks)))
			return tracks, errors.WithStack(domain.ErrScanCancelled)
		}
		return nil, errors.Wrapf(walkErr, "scan %s", dir)
	}

	s.logger.Info("library scanned", slog.String("path", dir), slog.Int("tracks", len(tracks)))
	s.bus.Publish(domain.NewLibraryScannedEvent(dir, tracks))
	return tracks, nil
}

// ScanFiles reads the given files and returns the playables that could be built.
func (s *LibraryService) ScanFiles(ctx context.Context, paths []string) ([]domain.Playable, error) {
	ctx, done, err := s.begin(ctx, "ScanFiles")
	if err != nil {
		return nil, err
	}
	defer done()

	tracks := make([]domain.Playable, 0, len(paths))
	for _, path := range paths {
		if ctx.Err() != nil {
			return tracks, errors.WithStack(domain.ErrScanCancelled)
		}
		if track, ok := s.read(path); ok {
			tracks = append(tracks, track)
		}
	}
	return tracks, nil
}

// CancelScan cancels the running scan.
func (s *LibraryService) CancelScan() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.scanning {
		return domain.NewServiceError("LibraryService", "CancelScan", "no scan in progress", nil)
	}
	s.cancelScan()
	return nil
}

// IsScanning returns true if a scan is currently in progress.
func (s *LibraryService) IsScanning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scanning
}

// begin marks a scan as running. The returned func must be called when the scan ends.
func (s *LibraryService) begin(parent context.Context, op string) (context.Context, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scanning {
		return nil, nil, domain.NewServiceError("LibraryService", op, "scan already in progress", nil)
	}

	ctx, cancel := context.WithCancel(parent)
	s.scanning = true
	s.cancelScan = cancel

	return ctx, func() {
		cancel()
		s.mu.Lock()
		s.scanning = false
		s.cancelScan = nil
		s.mu.Unlock()
	}, nil
}

func (s *LibraryService) read(path string) (domain.Playable, bool) {
	track, err := s.reader.ReadPlayable(path)
	switch {
	case err == nil:
		return track, true
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return domain.Playable{}, false
	default:
		s.logger.Warn("skipping unreadable file", slog.String("path", path), slog.Any("error", err))
		return domain.Playable{}, false
	}
}
