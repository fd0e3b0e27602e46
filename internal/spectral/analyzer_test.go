package spectral

import (
	"math"
	"testing"

	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sineStreamer produces an endless stereo sine wave with the given period
// in samples.
type sineStreamer struct {
	period float64
	phase  float64
}

func (s *sineStreamer) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		v := math.Sin(2 * math.Pi * s.phase / s.period)
		samples[i][0] = v
		samples[i][1] = v
		s.phase++
	}
	return len(samples), true
}

func (s *sineStreamer) Err() error { return nil }

// drain pulls n frames through a streamer, discarding the audio.
func drain(t *testing.T, s beep.Streamer, n int) {
	t.Helper()
	buf := make([][2]float64, 512)
	for n > 0 {
		chunk := buf
		if n < len(buf) {
			chunk = buf[:n]
		}
		got, ok := s.Stream(chunk)
		require.True(t, ok)
		n -= got
	}
}

func TestAnalyzer_SilentBeforeAnyAudio(t *testing.T) {
	a := NewAnalyzer(&sineStreamer{period: 64}, 1024, 0.8)

	data := a.FrequencyData()
	require.Len(t, data, 512)
	for _, v := range data {
		assert.Equal(t, FloorDB, v)
	}
	assert.EqualValues(t, 0, a.Consumed())
}

func TestAnalyzer_DetectsSinePeak(t *testing.T) {
	const fftSize = 1024
	const bin = 16 // period = fftSize / bin samples

	a := NewAnalyzer(&sineStreamer{period: float64(fftSize) / bin}, fftSize, 0)
	drain(t, a, fftSize)

	data := a.FrequencyData()
	require.Len(t, data, fftSize/2)

	peak := 0
	for i, v := range data {
		if v > data[peak] {
			peak = i
		}
	}

	assert.InDelta(t, bin, peak, 1, "peak should land on the sine's bin")
	assert.Greater(t, data[peak], -6.0, "full-scale sine should be near 0 dB")
	assert.Less(t, data[bin+20], -40.0, "bins far from the peak stay quiet")
}

func TestAnalyzer_CountsConsumedFrames(t *testing.T) {
	a := NewAnalyzer(&sineStreamer{period: 64}, 256, 0)

	drain(t, a, 1000)
	assert.EqualValues(t, 1000, a.Consumed())

	drain(t, a, 24)
	assert.EqualValues(t, 1024, a.Consumed())
}

func TestAnalyzer_SmoothingRampsUp(t *testing.T) {
	const fftSize = 512
	const bin = 8

	a := NewAnalyzer(&sineStreamer{period: float64(fftSize) / bin}, fftSize, 0.8)
	drain(t, a, fftSize)

	// With alpha=0.8 the first read only carries 20% of the magnitude.
	first := a.FrequencyData()[bin]
	var last float64
	for i := 0; i < 20; i++ {
		last = a.FrequencyData()[bin]
	}

	assert.Greater(t, last, first, "repeated reads converge upward")
	assert.Greater(t, last, -3.0)
}

func TestAnalyzer_ReturnsFreshSnapshot(t *testing.T) {
	a := NewAnalyzer(&sineStreamer{period: 64}, 256, 0)

	first := a.FrequencyData()
	first[0] = 123.0

	second := a.FrequencyData()
	assert.NotEqual(t, 123.0, second[0], "caller mutation must not leak into later reads")
}

func TestAnalyzer_PassesAudioThrough(t *testing.T) {
	a := NewAnalyzer(&sineStreamer{period: 4}, 64, 0)

	buf := make([][2]float64, 8)
	n, ok := a.Stream(buf)
	require.True(t, ok)
	require.Equal(t, 8, n)

	// period 4 sine: samples 0,1,0,-1 repeating
	assert.InDelta(t, 0.0, buf[0][0], 1e-9)
	assert.InDelta(t, 1.0, buf[1][0], 1e-9)
	assert.InDelta(t, -1.0, buf[3][0], 1e-9)
}
