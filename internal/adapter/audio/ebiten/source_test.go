package ebiten

import (
	"bytes"
	"context"
	"encoding/binary"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/jamclip/internal/domain"
)

// silentWAV builds a 16-bit stereo PCM WAV file of frames silent frames.
func silentWAV(t *testing.T, sampleRate, frames int) []byte {
	t.Helper()
	dataSize := frames * bytesPerFrame

	var buf bytes.Buffer
	write := func(v any) { require.NoError(t, binary.Write(&buf, binary.LittleEndian, v)) }

	buf.WriteString("RIFF")
	write(uint32(36 + dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	write(uint32(16))
	write(uint16(1)) // PCM
	write(uint16(2))
	write(uint32(sampleRate))
	write(uint32(sampleRate * bytesPerFrame))
	write(uint16(bytesPerFrame))
	write(uint16(16))
	buf.WriteString("data")
	write(uint32(dataSize))
	buf.Write(make([]byte, dataSize))
	return buf.Bytes()
}

func TestFetch_LocalFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "tone.wav")
	require.NoError(t, os.WriteFile(file, []byte("pcm"), 0o644))

	data, err := fetch(context.Background(), http.DefaultClient, file)
	require.NoError(t, err)
	assert.Equal(t, []byte("pcm"), data)

	data, err = fetch(context.Background(), http.DefaultClient, "file://"+filepath.ToSlash(file))
	require.NoError(t, err)
	assert.Equal(t, []byte("pcm"), data)
}

func TestFetch_MissingFile(t *testing.T) {
	_, err := fetch(context.Background(), http.DefaultClient, filepath.Join(t.TempDir(), "gone.mp3"))
	require.Error(t, err)
	assert.Equal(t, domain.CodeSourceNotSupport, domain.ErrorCode(err))
}

func TestFetch_HTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/track.mp3" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("remote"))
	}))
	defer server.Close()

	data, err := fetch(context.Background(), server.Client(), server.URL+"/track.mp3")
	require.NoError(t, err)
	assert.Equal(t, []byte("remote"), data)

	_, err = fetch(context.Background(), server.Client(), server.URL+"/missing.mp3")
	require.Error(t, err)
	assert.Equal(t, domain.CodeSourceNotSupport, domain.ErrorCode(err))
}

func TestFetch_Cancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("remote"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fetch(ctx, server.Client(), server.URL+"/track.mp3")
	require.Error(t, err)
	assert.Equal(t, domain.CodeAborted, domain.ErrorCode(err))
	assert.Equal(t, domain.MessageAborted, domain.AudioErrorMessage(domain.ErrorCode(err)))
}

func TestFetch_UnsupportedScheme(t *testing.T) {
	_, err := fetch(context.Background(), http.DefaultClient, "ftp://example.com/a.mp3")
	require.Error(t, err)
	assert.Equal(t, domain.CodeSourceNotSupport, domain.ErrorCode(err))
}

func TestDecode_WAV(t *testing.T) {
	const sampleRate = 44100
	s, err := decode("file:///tone.wav", silentWAV(t, sampleRate, sampleRate), sampleRate)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, streamDuration(s, sampleRate), 0.001)
}

func TestDecode_Errors(t *testing.T) {
	_, err := decode("file:///notes.txt", []byte("text"), DefaultSampleRate)
	require.Error(t, err)
	assert.Equal(t, domain.CodeSourceNotSupport, domain.ErrorCode(err))
	assert.True(t, errors.Is(err, domain.ErrUnsupportedFormat))

	_, err = decode("file:///broken.wav", []byte("not a wav file"), DefaultSampleRate)
	require.Error(t, err)
	assert.Equal(t, domain.CodeDecode, domain.ErrorCode(err))
	assert.Equal(t, domain.MessageUnplayable, domain.AudioErrorMessage(domain.ErrorCode(err)))
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".mp3", extension("https://cdn.example.com/a/Track.MP3?sig=abc"))
	assert.Equal(t, ".ogg", extension("/music/song.ogg"))
	assert.Equal(t, ".wav", extension("file:///music/My%20Song.wav"))
	assert.Equal(t, "", extension("https://cdn.example.com/stream"))
}

func TestFetch_DriveLetterPath(t *testing.T) {
	for _, raw := range []string{`C:\jamclip\gone.mp3`, "d:/jamclip/gone.mp3"} {
		_, err := fetch(context.Background(), http.DefaultClient, raw)
		require.Error(t, err, raw)
		assert.Equal(t, domain.CodeSourceNotSupport, domain.ErrorCode(err), raw)
		assert.ErrorIs(t, err, os.ErrNotExist, "%s is read as a local file", raw)
	}

	assert.True(t, hasDriveLetter(`C:\a.mp3`))
	assert.False(t, hasDriveLetter("c:"))
	assert.False(t, hasDriveLetter("ftp://example.com/a.mp3"))
	assert.Equal(t, ".mp3", extension(`C:\Music\Song.MP3`))
}
