package mock

import (
	"sync"

	"github.com/gopxl/beep/v2"

	"github.com/stellarsound/ringlight/internal/domain"
	"github.com/stellarsound/ringlight/internal/ports"
)

// Output is a mock Output port: a silent device whose clock only moves when
// a test calls Advance, pulling frames through the playing streamers.
type Output struct {
	mu sync.Mutex

	inited   bool
	rate     beep.SampleRate
	failInit bool

	streams []beep.Streamer
}

// NewOutput creates a mock output device.
func NewOutput() *Output {
	return &Output{}
}

// SetFailInit makes the next Init call fail (for testing).
func (o *Output) SetFailInit(fail bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failInit = fail
}

// Init opens the fake device.
func (o *Output) Init(sampleRate beep.SampleRate, bufferSize int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.failInit {
		return domain.NewAudioEngineError("initialize", "", "mock output failure", nil)
	}
	if o.inited {
		return nil
	}
	o.inited = true
	o.rate = sampleRate
	return nil
}

// Initialized reports whether Init succeeded.
func (o *Output) Initialized() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inited
}

// Play adds streamers to the fake mixer.
func (o *Output) Play(streamers ...beep.Streamer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.streams = append(o.streams, streamers...)
}

// Lock pauses the fake mixer (pairs with Advance's internal locking).
func (o *Output) Lock() {
	o.mu.Lock()
}

// Unlock resumes the fake mixer.
func (o *Output) Unlock() {
	o.mu.Unlock()
}

// Clear drops all playing streamers.
func (o *Output) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.streams = nil
}

// Close releases the fake device.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.streams = nil
	o.inited = false
	return nil
}

// StreamCount returns the number of streamers currently playing.
func (o *Output) StreamCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.streams)
}

// Advance pulls n frames through every playing streamer, discarding the
// audio. Drained streamers are removed, firing any beep.Callback chained
// after them, exactly as the real mixer would.
func (o *Output) Advance(n int) {
	buf := make([][2]float64, 512)

	for n > 0 {
		chunk := len(buf)
		if n < chunk {
			chunk = n
		}

		o.mu.Lock()
		kept := o.streams[:0]
		for _, s := range o.streams {
			got, ok := s.Stream(buf[:chunk])
			_ = got
			if ok {
				kept = append(kept, s)
			}
		}
		o.streams = kept
		o.mu.Unlock()

		n -= chunk
	}
}

// Verify that Output implements the Output port
var _ ports.Output = (*Output)(nil)
