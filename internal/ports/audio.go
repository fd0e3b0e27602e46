// Package ports define interfaces for dependency inversion.
// These interfaces allow the core engine to remain independent of the
// concrete audio platform (decoder backends, speaker devices).
package ports

import (
	"context"

	"github.com/gopxl/beep/v2"

	"github.com/stellarsound/ringlight/internal/domain"
)

// StemDecoder fetches and fully decodes one stem into an in-memory PCM buffer.
//
// Decoding is an eager, whole-file operation: the engine never streams a
// stem incrementally because seek and replay always allocate fresh streamers
// against the decoded buffer. Implementations must honor context
// cancellation so that superseded decodes can be abandoned.
type StemDecoder interface {
	// Decode resolves ref (file path or URL), decodes the full stem, and
	// returns its PCM contents. Returns a *domain.DecodeError on failure.
	Decode(ctx context.Context, ref string) (*domain.StemBuffer, error)
}

// Output is the platform audio sink: a process-wide singleton device that
// mixes and plays streamers handed to it.
//
// The lifecycle matches the platform audio context of the original design:
// created once on Init, torn down only when the application exits. Stopping
// playback releases streamers (Clear), never the device itself.
//
// Implementations must be safe for concurrent use. Lock/Unlock guard any
// mutation of streamer state shared with the output's mixing goroutine
// (pausing a Ctrl, reading a position counter).
type Output interface {
	// Init opens the output device at the given sample rate.
	// Calling Init again after a successful call is a no-op returning nil.
	Init(sampleRate beep.SampleRate, bufferSize int) error

	// Initialized reports whether the device has been opened.
	Initialized() bool

	// Play adds a streamer to the device mixer. All streamers passed in a
	// single call start on the same mixer pull (sample-accurate sync).
	Play(s ...beep.Streamer)

	// Lock suspends the mixing goroutine so shared streamer state can be
	// touched safely. Must be paired with Unlock.
	Lock()

	// Unlock resumes the mixing goroutine.
	Unlock()

	// Clear drops all playing streamers without closing the device.
	Clear()

	// Close releases the device.
	Close() error
}
