// Package config loads runtime configuration from environment variables.
package config

import (
	"os"
	"strconv"
)

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Audio
	SampleRate   int // output sample rate in Hz
	BufferMillis int // output device buffer length in milliseconds

	// Spectral analysis
	FFTSize   int     // FFT window length in samples (power of two)
	Smoothing float64 // per-bin time smoothing constant [0,1)

	// Visualization
	InnerSegments int     // segment count of the inner (vocal) ring
	OuterSegments int     // segment count of the outer (instrumental) ring
	FrameRate     int     // scene driver frames per second
	InnerRadius   float64 // inner ring radius in scene units
	OuterRadius   float64 // outer ring radius in scene units

	// Library
	ManifestPath string // playlist manifest (JSON) location
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		SampleRate:   envInt("RINGLIGHT_SAMPLE_RATE", 44100),
		BufferMillis: envInt("RINGLIGHT_BUFFER_MS", 100),

		FFTSize:   envInt("RINGLIGHT_FFT_SIZE", 32768),
		Smoothing: envFloat("RINGLIGHT_SMOOTHING", 0.8),

		InnerSegments: envInt("RINGLIGHT_INNER_SEGMENTS", 512),
		OuterSegments: envInt("RINGLIGHT_OUTER_SEGMENTS", 512),
		FrameRate:     envInt("RINGLIGHT_FRAME_RATE", 60),
		InnerRadius:   envFloat("RINGLIGHT_INNER_RADIUS", 14.0),
		OuterRadius:   envFloat("RINGLIGHT_OUTER_RADIUS", 20.0),

		ManifestPath: envStr("RINGLIGHT_MANIFEST", "playlist.json"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
