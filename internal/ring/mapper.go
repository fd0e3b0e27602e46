package ring

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Scale constants for the primary (inner) ring: vertical stretch dominates,
// radial stretch is secondary, lateral stretch is subtle.
const (
	primaryScaleX = 1.1
	primaryScaleY = 5.5
	primaryScaleZ = 4.0
)

// Scale constants for the secondary (outer) ring, reduced to create visual
// hierarchy between the two rings.
const (
	secondaryScaleX = 0.8
	secondaryScaleY = 3.5
	secondaryScaleZ = 2.0
)

// Quartile equalization boosts. Magnitude decays across the bucketed
// frequency axis, so later segments get a progressively larger boost.
// Tunable constants, not physically derived values.
var quartileBoost = [4]float64{1.03125, 1.0625, 1.125, 1.25}

// Config controls the wave modulation, silence floor, gradient, and
// emissive response of the mapper. Start from DefaultConfig and override
// individual fields; zero-valued fields fall back to the defaults.
type Config struct {
	// InnerWaveAmplitude is the ripple amplitude of the inner ring
	InnerWaveAmplitude float64

	// InnerWaveFrequency is the ripple cycle count around the inner ring
	InnerWaveFrequency float64

	// OuterWaveAmplitude is the ripple amplitude of the outer ring
	OuterWaveAmplitude float64

	// OuterWaveFrequency is the ripple cycle count around the outer ring
	OuterWaveFrequency float64

	// TimeScale converts elapsed milliseconds to wave phase (per ms)
	TimeScale float64

	// SilenceFloor is the magnitude (positive dB count) treated as silence
	SilenceFloor float64

	// Gradient supplies the three color stops
	Gradient Gradient

	// EmissiveBase is the emissive intensity at zero intensity
	EmissiveBase float64

	// EmissiveGain scales emissive intensity with audio intensity
	EmissiveGain float64
}

// DefaultConfig returns the mapper defaults: a 7-cycle ripple at amplitude
// 0.6 on the inner ring, 6 cycles at 0.5 on the outer, a 70 dB silence
// floor, and a blue→purple→amber gradient.
func DefaultConfig() Config {
	return Config{
		InnerWaveAmplitude: 0.6,
		InnerWaveFrequency: 7,
		OuterWaveAmplitude: 0.5,
		OuterWaveFrequency: 6,
		TimeScale:          0.0025,
		SilenceFloor:       70,
		Gradient: Gradient{
			Low:  Color{R: 0.13, G: 0.21, B: 0.66},
			Mid:  Color{R: 0.55, G: 0.17, B: 0.72},
			High: Color{R: 0.98, G: 0.69, B: 0.23},
		},
		EmissiveBase: 0.2,
		EmissiveGain: 1.5,
	}
}

// withDefaults fills zero-valued fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.InnerWaveAmplitude == 0 {
		c.InnerWaveAmplitude = def.InnerWaveAmplitude
	}
	if c.InnerWaveFrequency == 0 {
		c.InnerWaveFrequency = def.InnerWaveFrequency
	}
	if c.OuterWaveAmplitude == 0 {
		c.OuterWaveAmplitude = def.OuterWaveAmplitude
	}
	if c.OuterWaveFrequency == 0 {
		c.OuterWaveFrequency = def.OuterWaveFrequency
	}
	if c.TimeScale == 0 {
		c.TimeScale = def.TimeScale
	}
	if c.SilenceFloor == 0 {
		c.SilenceFloor = def.SilenceFloor
	}
	if c.Gradient.isZero() {
		c.Gradient = def.Gradient
	}
	if c.EmissiveBase == 0 {
		c.EmissiveBase = def.EmissiveBase
	}
	if c.EmissiveGain == 0 {
		c.EmissiveGain = def.EmissiveGain
	}
	return c
}

// scaleSet bundles the per-axis intensity gains of one ring.
type scaleSet struct {
	x, y, z float64
}

var (
	primaryScales   = scaleSet{primaryScaleX, primaryScaleY, primaryScaleZ}
	secondaryScales = scaleSet{secondaryScaleX, secondaryScaleY, secondaryScaleZ}
)

// AnimateSingleRing applies one frame of audio-driven deformation to a
// single ring fed by one data source. elapsedMs is a monotonic
// milliseconds clock driving the traveling ripple.
func AnimateSingleRing(segments []*Segment, data []float64, elapsedMs float64, cfg Config) {
	cfg = cfg.withDefaults()
	animateRing(segments, data, elapsedMs, cfg, primaryScales, cfg.InnerWaveAmplitude, cfg.InnerWaveFrequency)
}

// AnimateDualRing applies one frame of deformation to both rings: vocal
// data drives the inner ring, instrumental data the outer. Both rings use
// the same time sample so their ripples stay phase-locked.
func AnimateDualRing(inner, outer []*Segment, vocalData, instrumentalData []float64, elapsedMs float64, cfg Config) {
	cfg = cfg.withDefaults()
	animateRing(inner, vocalData, elapsedMs, cfg, primaryScales, cfg.InnerWaveAmplitude, cfg.InnerWaveFrequency)
	animateRing(outer, instrumentalData, elapsedMs, cfg, secondaryScales, cfg.OuterWaveAmplitude, cfg.OuterWaveFrequency)
}

// animateRing deforms one ring from one data source.
func animateRing(segments []*Segment, data []float64, elapsedMs float64, cfg Config, scales scaleSet, waveAmp, waveFreq float64) {
	n := len(segments)
	if n == 0 {
		return
	}

	phase := elapsedMs * cfg.TimeScale

	for i, seg := range segments {
		raw := -cfg.SilenceFloor
		if len(data) > 0 {
			raw = data[i%len(data)]
		}

		intensity := Intensity(raw, cfg.SilenceFloor, i, n)

		wave := math.Sin(2*math.Pi*waveFreq*float64(i)/float64(n) + phase)
		waveFactor := 1 + waveAmp*wave

		scaleY := (1 + intensity*scales.y) * waveFactor
		scaleX := 1 + intensity*scales.x
		scaleZ := 1 + intensity*scales.z

		seg.Scale = mgl32.Vec3{float32(scaleX), float32(scaleY), float32(scaleZ)}
		seg.OffsetY = float32((scaleY - 1) * 0.5)
		seg.Color = cfg.Gradient.At(intensity)
		seg.Emissive = cfg.EmissiveBase + intensity*cfg.EmissiveGain
	}
}

// Intensity normalizes a raw dB magnitude to [0, 1] for segment i of n:
// floor-relative normalization, then the segment's quartile boost, then a
// clamp to 1. Any raw input in (-inf, 0] maps inside [0, 1].
func Intensity(raw, floor float64, i, n int) float64 {
	v := (raw + floor) / floor
	if v < 0 || math.IsNaN(v) {
		v = 0
	}

	v *= quartileBoost[quartile(i, n)]
	if v > 1 {
		v = 1
	}
	return v
}

// quartile buckets segment index i of n rings into [0,3].
func quartile(i, n int) int {
	switch {
	case i <= n/4:
		return 0
	case i <= n/2:
		return 1
	case i <= 3*n/4:
		return 2
	default:
		return 3
	}
}
