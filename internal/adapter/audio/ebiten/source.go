package ebiten

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"

	"github.com/tejashwikalptaru/jamclip/internal/domain"
)

// bytesPerFrame is the size of one decoded frame: 16-bit samples, two channels.
const bytesPerFrame = 4

// stream is a decoded PCM stream with a known length in bytes.
type stream interface {
	io.ReadSeeker
	Length() int64
}

// fetch reads the whole source at rawURL into memory.
// file:// URLs and bare paths are read from disk; http(s) URLs are downloaded.
func fetch(ctx context.Context, client *http.Client, rawURL string) ([]byte, error) {
	if hasDriveLetter(rawURL) {
		return readLocal(rawURL, rawURL)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, loadError(rawURL, domain.CodeSourceNotSupport, err)
	}

	switch u.Scheme {
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, loadError(rawURL, domain.CodeNetwork, err)
		}
		resp, err := client.Do(req)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil, loadError(rawURL, domain.CodeAborted, err)
			}
			return nil, loadError(rawURL, domain.CodeNetwork, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, loadError(rawURL, domain.CodeSourceNotSupport,
				errors.Newf("unexpected status %s", resp.Status))
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, loadError(rawURL, domain.CodeNetwork, err)
		}
		return data, nil

	case "file":
		return readLocal(rawURL, u.Path)

	case "":
		return readLocal(rawURL, rawURL)

	default:
		return nil, loadError(rawURL, domain.CodeSourceNotSupport, errors.Newf("unsupported scheme %q", u.Scheme))
	}
}

// decode picks a decoder from the source's extension and resamples to sampleRate.
func decode(rawURL string, data []byte, sampleRate int) (stream, error) {
	src := bytes.NewReader(data)

	var (
		s   stream
		err error
	)
	switch extension(rawURL) {
	case ".mp3":
		s, err = mp3.DecodeWithSampleRate(sampleRate, src)
	case ".wav":
		s, err = wav.DecodeWithSampleRate(sampleRate, src)
	case ".ogg", ".oga":
		s, err = vorbis.DecodeWithSampleRate(sampleRate, src)
	default:
		return nil, loadError(rawURL, domain.CodeSourceNotSupport, domain.ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, loadError(rawURL, domain.CodeDecode, err)
	}
	return s, nil
}

// streamDuration converts a stream length in bytes to seconds.
func streamDuration(s stream, sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return float64(s.Length()/bytesPerFrame) / float64(sampleRate)
}

func readLocal(rawURL, name string) ([]byte, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, loadError(rawURL, domain.CodeSourceNotSupport, err)
	}
	return data, nil
}

// hasDriveLetter reports whether rawURL is a Windows path such as C:\a.mp3,
// which url.Parse would read as scheme "c".
func hasDriveLetter(rawURL string) bool {
	if len(rawURL) < 3 || rawURL[1] != ':' || (rawURL[2] != '\\' && rawURL[2] != '/') {
		return false
	}
	c := rawURL[0] | 0x20
	return c >= 'a' && c <= 'z'
}

func extension(rawURL string) string {
	if hasDriveLetter(rawURL) {
		return strings.ToLower(path.Ext(strings.ReplaceAll(rawURL, "\\", "/")))
	}
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		p = u.Path
	}
	return strings.ToLower(path.Ext(p))
}

func loadError(rawURL string, code int, err error) error {
	return domain.NewAudioBackendError("load", rawURL, code, domain.AudioErrorMessage(code), err)
}
