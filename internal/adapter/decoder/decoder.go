// Package decoder provides the beep-based StemDecoder implementation.
// It resolves stem references (local paths or HTTP URLs), decodes the
// compressed audio fully into memory, and resamples to the engine rate.
package decoder

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/stellarsound/ringlight/internal/domain"
	"github.com/stellarsound/ringlight/internal/ports"
)

// chunkFrames is the decode granularity; context cancellation is checked
// between chunks so superseded decodes abort promptly.
const chunkFrames = 4096

// Decoder decodes stems to PCM buffers at a fixed target sample rate.
type Decoder struct {
	logger     *slog.Logger
	client     *http.Client
	sampleRate beep.SampleRate
}

// New creates a decoder that resamples everything to sampleRate.
func New(logger *slog.Logger, sampleRate int) *Decoder {
	return &Decoder{
		logger:     logger,
		client:     &http.Client{Timeout: 60 * time.Second},
		sampleRate: beep.SampleRate(sampleRate),
	}
}

// Decode fetches and fully decodes one stem.
func (d *Decoder) Decode(ctx context.Context, ref string) (*domain.StemBuffer, error) {
	raw, err := d.fetch(ctx, ref)
	if err != nil {
		return nil, domain.NewDecodeError(ref, err)
	}

	streamer, format, err := decodeBytes(ref, raw)
	if err != nil {
		return nil, domain.NewDecodeError(ref, err)
	}
	defer func() {
		if closeErr := streamer.Close(); closeErr != nil {
			d.logger.Warn("failed to close stem streamer", slog.String("ref", ref), slog.Any("error", closeErr))
		}
	}()

	var src beep.Streamer = streamer
	if format.SampleRate != d.sampleRate {
		src = beep.Resample(4, format.SampleRate, d.sampleRate, src)
	}

	samples, err := drainStreamer(ctx, src)
	if err != nil {
		return nil, domain.NewDecodeError(ref, err)
	}

	d.logger.Debug("stem decoded",
		slog.String("ref", ref),
		slog.Int("frames", len(samples)),
		slog.Int("source_rate", int(format.SampleRate)))

	return &domain.StemBuffer{
		Samples:    samples,
		SampleRate: int(d.sampleRate),
	}, nil
}

// fetch reads the raw bytes of a stem from disk or over HTTP.
func (d *Decoder) fetch(ctx context.Context, ref string) ([]byte, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
		if err != nil {
			return nil, err
		}
		resp, err := d.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %s", resp.Status)
		}
		return io.ReadAll(resp.Body)
	}

	return os.ReadFile(ref)
}

// readSeekCloser adapts an in-memory byte slice to the interfaces the beep
// format decoders expect.
type readSeekCloser struct {
	*bytes.Reader
}

func (readSeekCloser) Close() error { return nil }

// decodeBytes picks a format decoder by file extension.
func decodeBytes(ref string, raw []byte) (beep.StreamSeekCloser, beep.Format, error) {
	rsc := readSeekCloser{bytes.NewReader(raw)}

	switch strings.ToLower(filepath.Ext(strippedQuery(ref))) {
	case ".wav":
		return wav.Decode(rsc)
	case ".flac":
		return flac.Decode(rsc)
	case ".ogg":
		return vorbis.Decode(rsc)
	case ".mp3":
		return mp3.Decode(rsc)
	default:
		return nil, beep.Format{}, domain.ErrUnsupportedFormat
	}
}

// strippedQuery removes a URL query string so extension detection works on
// signed URLs.
func strippedQuery(ref string) string {
	if i := strings.IndexByte(ref, '?'); i >= 0 {
		return ref[:i]
	}
	return ref
}

// drainStreamer pulls the whole stream into memory, checking ctx between chunks.
func drainStreamer(ctx context.Context, src beep.Streamer) ([][2]float64, error) {
	var samples [][2]float64
	buf := make([][2]float64, chunkFrames)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, ok := src.Stream(buf)
		samples = append(samples, buf[:n]...)
		if !ok {
			if err := src.Err(); err != nil {
				return nil, err
			}
			return samples, nil
		}
	}
}

// Verify that Decoder implements the StemDecoder port
var _ ports.StemDecoder = (*Decoder)(nil)
