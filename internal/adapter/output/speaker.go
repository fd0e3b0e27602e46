// Package output provides the speaker-backed Output implementation.
// The speaker device is a process-wide singleton: opened once, closed only
// at application exit. Stopping playback clears streamers, not the device.
package output

import (
	"log/slog"
	"sync"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/stellarsound/ringlight/internal/domain"
	"github.com/stellarsound/ringlight/internal/ports"
)

// Speaker adapts the beep speaker to the Output port.
type Speaker struct {
	logger *slog.Logger

	mu     sync.Mutex
	inited bool
}

// NewSpeaker creates an unopened speaker output.
func NewSpeaker(logger *slog.Logger) *Speaker {
	return &Speaker{logger: logger}
}

// Init opens the device. A second call after success is a no-op.
func (s *Speaker) Init(sampleRate beep.SampleRate, bufferSize int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inited {
		return nil
	}

	if err := speaker.Init(sampleRate, bufferSize); err != nil {
		return domain.NewAudioEngineError("initialize", "", "speaker init failed", err)
	}

	s.inited = true
	s.logger.Debug("speaker initialized",
		slog.Int("sample_rate", int(sampleRate)),
		slog.Int("buffer_size", bufferSize))
	return nil
}

// Initialized reports whether the device is open.
func (s *Speaker) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inited
}

// Play adds streamers to the device mixer.
func (s *Speaker) Play(streamers ...beep.Streamer) {
	speaker.Play(streamers...)
}

// Lock suspends the mixing goroutine.
func (s *Speaker) Lock() {
	speaker.Lock()
}

// Unlock resumes the mixing goroutine.
func (s *Speaker) Unlock() {
	speaker.Unlock()
}

// Clear drops all playing streamers.
func (s *Speaker) Clear() {
	speaker.Clear()
}

// Close releases the device.
func (s *Speaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.inited {
		return nil
	}
	speaker.Close()
	s.inited = false
	return nil
}

// Verify that Speaker implements the Output port
var _ ports.Output = (*Speaker)(nil)
