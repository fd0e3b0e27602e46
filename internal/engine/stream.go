package engine

import (
	"math"
	"sync/atomic"

	"github.com/gopxl/beep/v2"

	"github.com/stellarsound/ringlight/internal/domain"
)

// bufferStreamer streams a decoded stem buffer from a fixed start frame.
//
// A streamer is single-use: once drained or abandoned it is never rewound.
// Seek and replay allocate a fresh bufferStreamer against the same buffer.
type bufferStreamer struct {
	buf *domain.StemBuffer
	pos int
}

// newBufferStreamer creates a streamer over buf starting at frame from.
func newBufferStreamer(buf *domain.StemBuffer, from int) *bufferStreamer {
	if from < 0 {
		from = 0
	}
	if from > buf.Len() {
		from = buf.Len()
	}
	return &bufferStreamer{buf: buf, pos: from}
}

// Stream copies buffered frames out until the buffer is exhausted.
func (b *bufferStreamer) Stream(samples [][2]float64) (int, bool) {
	if b.pos >= b.buf.Len() {
		return 0, false
	}
	n := copy(samples, b.buf.Samples[b.pos:])
	b.pos += n
	return n, true
}

// Err always returns nil; an in-memory buffer cannot fail.
func (b *bufferStreamer) Err() error { return nil }

// atomicFloat is a lock-free float64 cell, readable from the audio goroutine.
type atomicFloat struct {
	bits atomic.Uint64
}

func (f *atomicFloat) Store(v float64) {
	f.bits.Store(math.Float64bits(v))
}

func (f *atomicFloat) Load() float64 {
	return math.Float64frombits(f.bits.Load())
}

// gainStreamer applies the master gain to everything flowing to the output.
// The level is read atomically per Stream call, so SetVolume takes effect
// on the next mixer pull without locking the audio path.
type gainStreamer struct {
	s     beep.Streamer
	level *atomicFloat
}

func (g *gainStreamer) Stream(samples [][2]float64) (int, bool) {
	n, ok := g.s.Stream(samples)
	lv := g.level.Load()
	for i := 0; i < n; i++ {
		samples[i][0] *= lv
		samples[i][1] *= lv
	}
	return n, ok
}

func (g *gainStreamer) Err() error { return g.s.Err() }
