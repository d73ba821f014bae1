package metadata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/jamclip/internal/domain"
)

// id3Title returns a minimal ID3v2.3 tag holding a single title frame.
func id3Title(title string) []byte {
	frameSize := len(title) + 1
	frame := []byte{'T', 'I', 'T', '2', 0, 0, 0, byte(frameSize), 0, 0, 0}
	frame = append(frame, title...)

	header := []byte{'I', 'D', '3', 3, 0, 0, 0, 0, 0, byte(len(frame))}
	return append(header, frame...)
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestIsSupported(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"song.mp3", true},
		{"SONG.MP3", true},
		{"loop.wav", true},
		{"take.ogg", true},
		{"notes.txt", false},
		{"noext", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsSupported(tt.path), tt.path)
	}
}

func TestSupportedFormats_ReturnsCopy(t *testing.T) {
	formats := SupportedFormats()
	formats[0] = ".xyz"
	assert.True(t, IsSupported("a.mp3"))
}

func TestReader_FallbackTitle(t *testing.T) {
	path := writeFile(t, t.TempDir(), "Night Drive.mp3", []byte("not really audio"))

	playable, err := NewReader().ReadPlayable(path)
	require.NoError(t, err)

	assert.Equal(t, domain.KindTrack, playable.Kind)
	assert.Equal(t, "Night Drive", playable.Title)
	assert.True(t, strings.HasPrefix(playable.URL, "file://"))
	assert.True(t, strings.HasSuffix(playable.URL, "/Night%20Drive.mp3"))
	assert.Zero(t, playable.Duration)
}

func TestReader_TaggedTitle(t *testing.T) {
	data := append(id3Title("Tagged Title"), make([]byte, 64)...)
	path := writeFile(t, t.TempDir(), "track01.mp3", data)

	playable, err := NewReader().ReadPlayable(path)
	require.NoError(t, err)

	assert.Equal(t, "Tagged Title", playable.Title)
}

func TestReader_StableID(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.wav", []byte("RIFF"))
	b := writeFile(t, dir, "b.wav", []byte("RIFF"))

	reader := NewReader()
	first, err := reader.ReadPlayable(a)
	require.NoError(t, err)
	again, err := reader.ReadPlayable(a)
	require.NoError(t, err)
	other, err := reader.ReadPlayable(b)
	require.NoError(t, err)

	assert.Equal(t, first.ID, again.ID)
	assert.NotEqual(t, first.ID, other.ID)
	assert.True(t, domain.SamePlayable(&first, &again))
}

func TestReader_Errors(t *testing.T) {
	dir := t.TempDir()
	reader := NewReader()

	_, err := reader.ReadPlayable("")
	assert.True(t, errors.Is(err, domain.ErrFileNotFound))

	_, err = reader.ReadPlayable(filepath.Join(dir, "missing.mp3"))
	assert.True(t, errors.Is(err, domain.ErrFileNotFound))

	txt := writeFile(t, dir, "notes.txt", []byte("hello"))
	_, err = reader.ReadPlayable(txt)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedFormat))

	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.mp3"), 0o755))
	_, err = reader.ReadPlayable(filepath.Join(dir, "folder.mp3"))
	assert.True(t, errors.Is(err, domain.ErrUnsupportedFormat))
}
