// Package metadata builds track playables from local audio files.
package metadata

import (
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dhowden/tag"
	"github.com/google/uuid"

	"github.com/tejashwikalptaru/jamclip/internal/domain"
)

// supportedFormats lists the extensions the audio backends can decode.
var supportedFormats = []string{".mp3", ".wav", ".ogg", ".oga"}

// IsSupported reports whether the file extension is a supported audio format.
func IsSupported(path string) bool {
	return slices.Contains(supportedFormats, strings.ToLower(filepath.Ext(path)))
}

// SupportedFormats returns the supported file extensions.
func SupportedFormats() []string {
	return slices.Clone(supportedFormats)
}

// Reader reads track playables from disk.
type Reader struct{}

// NewReader creates a metadata reader.
func NewReader() *Reader {
	return &Reader{}
}

// ReadPlayable builds a track playable for the audio file at path.
//
// The ID is derived from the absolute file URL, so reading the same file twice yields
// the same playable. The title comes from the file's tags, falling back to the file
// name. Duration is left at zero: it is only known once the backend decodes the file.
func (r *Reader) ReadPlayable(path string) (domain.Playable, error) {
	if path == "" {
		return domain.Playable{}, errors.Wrap(domain.ErrFileNotFound, "empty path")
	}
	if !IsSupported(path) {
		return domain.Playable{}, errors.Wrapf(domain.ErrUnsupportedFormat, "%s", filepath.Ext(path))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return domain.Playable{}, errors.Wrapf(err, "resolve %s", path)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Playable{}, errors.Wrapf(domain.ErrFileNotFound, "%s", abs)
		}
		return domain.Playable{}, errors.Wrapf(err, "stat %s", abs)
	}
	if info.IsDir() {
		return domain.Playable{}, errors.Wrapf(domain.ErrUnsupportedFormat, "%s is a directory", abs)
	}

	fileURL := (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(fileURL)).String()

	return domain.NewTrack(id, readTitle(abs), fileURL, 0), nil
}

// readTitle returns the tagged title, or the file name without extension.
func readTitle(path string) string {
	fallback := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	file, err := os.Open(path)
	if err != nil {
		return fallback
	}
	defer file.Close()

	metadata, err := tag.ReadFrom(file)
	if err != nil || metadata == nil {
		return fallback
	}

	title := strings.TrimSpace(metadata.Title())
	if title == "" {
		return fallback
	}
	if artist := strings.TrimSpace(metadata.Artist()); artist != "" {
		return artist + " - " + title
	}
	return title
}
