// Package mock provides in-memory implementations of the StemDecoder and
// Output ports. They simulate decoding and playback without touching the
// audio device, and are used for testing the engine and scene driver.
package mock

import (
	"context"
	"errors"
	"math"
	"sync"

	"github.com/stellarsound/ringlight/internal/domain"
	"github.com/stellarsound/ringlight/internal/ports"
)

// Decoder is a mock StemDecoder that synthesizes PCM instead of decoding
// files. Unknown refs get a default sine buffer; specific refs can be given
// fixed buffers or forced failures.
type Decoder struct {
	mu sync.Mutex

	sampleRate    int
	defaultFrames int

	buffers map[string]*domain.StemBuffer
	fail    map[string]error

	decodeCount int
	started     chan string // non-nil: receives each ref as decode begins
	gate        chan struct{}
}

// NewDecoder creates a mock decoder producing one-second buffers at 1000 Hz
// by default.
func NewDecoder() *Decoder {
	return &Decoder{
		sampleRate:    1000,
		defaultFrames: 1000,
		buffers:       make(map[string]*domain.StemBuffer),
		fail:          make(map[string]error),
	}
}

// SetBuffer fixes the buffer returned for ref.
func (d *Decoder) SetBuffer(ref string, buf *domain.StemBuffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buffers[ref] = buf
}

// SetFrames sets the default synthesized buffer length in frames.
func (d *Decoder) SetFrames(frames int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.defaultFrames = frames
}

// SetFail makes decoding of ref fail with err (nil err clears the failure).
func (d *Decoder) SetFail(ref string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.fail, ref)
		return
	}
	d.fail[ref] = err
}

// Gate makes every decode block until Release is called, for testing
// supersede-while-loading behavior.
func (d *Decoder) Gate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gate = make(chan struct{})
}

// Release unblocks gated decodes.
func (d *Decoder) Release() {
	d.mu.Lock()
	gate := d.gate
	d.gate = nil
	d.mu.Unlock()
	if gate != nil {
		close(gate)
	}
}

// DecodeCount returns the number of Decode calls seen so far.
func (d *Decoder) DecodeCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.decodeCount
}

// Decode returns the configured or synthesized buffer for ref.
func (d *Decoder) Decode(ctx context.Context, ref string) (*domain.StemBuffer, error) {
	d.mu.Lock()
	d.decodeCount++
	gate := d.gate
	failErr := d.fail[ref]
	fixed := d.buffers[ref]
	rate := d.sampleRate
	frames := d.defaultFrames
	d.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if failErr != nil {
		return nil, domain.NewDecodeError(ref, failErr)
	}
	if fixed != nil {
		return fixed, nil
	}

	return SineBuffer(rate, frames, 50), nil
}

// SineBuffer synthesizes a full-scale stereo sine with the given period in
// samples.
func SineBuffer(sampleRate, frames int, period float64) *domain.StemBuffer {
	samples := make([][2]float64, frames)
	for i := range samples {
		v := math.Sin(2 * math.Pi * float64(i) / period)
		samples[i][0] = v
		samples[i][1] = v
	}
	return &domain.StemBuffer{Samples: samples, SampleRate: sampleRate}
}

// ErrRefUnavailable is a convenient failure cause for tests.
var ErrRefUnavailable = errors.New("stem unavailable")

// Verify that Decoder implements the StemDecoder port
var _ ports.StemDecoder = (*Decoder)(nil)
