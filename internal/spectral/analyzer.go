// Package spectral implements real-time frequency analysis of audio streams.
//
// An Analyzer sits in the playback pipeline as a pass-through streamer,
// capturing a mono mix of the samples that flow to the output device. On
// demand it computes a windowed FFT over the most recent samples and
// returns dB-scale magnitudes, time-smoothed so consecutive reads animate
// without flicker.
package spectral

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep/v2"
	"gonum.org/v1/gonum/dsp/fourier"
)

// FloorDB is the silence floor: magnitudes below this are clamped.
const FloorDB = -140.0

// Analyzer is a frequency-domain magnitude tap on an audio stream.
//
// It wraps a beep.Streamer, recording samples into a ring buffer as they
// pass through. FrequencyData computes the spectrum of the buffered window.
// The analyzer also counts consumed samples, which the engine uses as the
// playback clock: the count freezes exactly when the output stops pulling.
type Analyzer struct {
	src beep.Streamer

	mu       sync.Mutex
	buf      []float64 // mono ring buffer, len == fftSize
	pos      int
	window   []float64 // Hann coefficients
	fft      *fourier.FFT
	smoothed []float64 // per-bin linear magnitudes after time smoothing
	alpha    float64   // smoothing constant: prev*alpha + cur*(1-alpha)

	consumed atomic.Int64
}

// NewAnalyzer wraps src with an analysis tap.
// fftSize must be a power of two; smoothing is the per-bin time smoothing
// constant in [0, 1) (0 disables smoothing).
func NewAnalyzer(src beep.Streamer, fftSize int, smoothing float64) *Analyzer {
	if fftSize < 2 {
		fftSize = 2
	}
	if smoothing < 0 || smoothing >= 1 {
		smoothing = 0
	}

	window := make([]float64, fftSize)
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(fftSize-1)))
	}

	return &Analyzer{
		src:      src,
		buf:      make([]float64, fftSize),
		window:   window,
		fft:      fourier.NewFFT(fftSize),
		smoothed: make([]float64, fftSize/2),
		alpha:    smoothing,
	}
}

// Stream passes audio through while capturing a mono mix into the ring buffer.
func (a *Analyzer) Stream(samples [][2]float64) (int, bool) {
	n, ok := a.src.Stream(samples)

	a.mu.Lock()
	for i := 0; i < n; i++ {
		a.buf[a.pos] = (samples[i][0] + samples[i][1]) / 2
		a.pos = (a.pos + 1) % len(a.buf)
	}
	a.mu.Unlock()

	a.consumed.Add(int64(n))
	return n, ok
}

// Err returns the underlying streamer's error.
func (a *Analyzer) Err() error {
	return a.src.Err()
}

// Consumed returns the total number of frames that have flowed through the tap.
func (a *Analyzer) Consumed() int64 {
	return a.consumed.Load()
}

// Bins returns the number of frequency bins FrequencyData produces.
func (a *Analyzer) Bins() int {
	return len(a.smoothed)
}

// FrequencyData computes the current spectrum and returns dB-scale
// magnitudes, one per bin, lowest frequency first. Values lie in
// [FloorDB, 0]. Before any audio has flowed through the tap, every bin
// sits at the floor.
//
// Each call returns a fresh slice; callers may keep or mutate it freely.
func (a *Analyzer) FrequencyData() []float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := len(a.buf)
	seq := make([]float64, n)
	for i := 0; i < n; i++ {
		seq[i] = a.buf[(a.pos+i)%n] * a.window[i]
	}

	coeffs := a.fft.Coefficients(nil, seq)

	// Normalize so a full-scale sine lands near 0 dB. The Hann window has
	// a coherent gain of 0.5, hence the factor of 4/n instead of 2/n.
	scale := 4.0 / float64(n)

	out := make([]float64, len(a.smoothed))
	for i := range a.smoothed {
		mag := math.Hypot(real(coeffs[i]), imag(coeffs[i])) * scale
		a.smoothed[i] = a.smoothed[i]*a.alpha + mag*(1-a.alpha)

		db := FloorDB
		if a.smoothed[i] > 0 {
			db = 20 * math.Log10(a.smoothed[i])
			if db < FloorDB {
				db = FloorDB
			}
			if db > 0 {
				db = 0
			}
		}
		out[i] = db
	}

	return out
}
