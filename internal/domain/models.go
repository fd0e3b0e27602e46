// Package domain contains core business models and logic with no external dependencies.
// This package defines the fundamental entities of the ringlight audio engine.
package domain

import (
	"time"
)

// Track represents one playlist entry: a dual-stem mix with the vocal and
// instrumental components stored as separate sources.
// Tracks are immutable once registered; replacing the playlist discards them.
type Track struct {
	// ID is a unique identifier for the track
	ID string

	// Name is the track's unique key within a playlist
	Name string

	// VocalRef is the location of the vocal stem (file path or URL)
	VocalRef string

	// InstrumentalRef is the location of the instrumental stem (file path or URL)
	InstrumentalRef string

	// Title is the display title (from metadata, falls back to Name)
	Title string

	// Artist is the performing artist (from metadata, may be empty)
	Artist string
}

// DisplayName returns the best human-readable name for the track.
func (t Track) DisplayName() string {
	if t.Title != "" {
		return t.Title
	}
	return t.Name
}

// StemBuffer holds one fully decoded stem as interleaved stereo PCM.
// Buffers are immutable after decode; playback always allocates fresh
// streamers against the buffer rather than rewinding a live stream.
type StemBuffer struct {
	// Samples are stereo frames in the range [-1, 1]
	Samples [][2]float64

	// SampleRate is the decode sample rate in Hz
	SampleRate int
}

// Duration returns the playable length of the buffer.
func (b *StemBuffer) Duration() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(b.Samples)) / float64(b.SampleRate) * float64(time.Second))
}

// Len returns the number of stereo frames in the buffer.
func (b *StemBuffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Samples)
}

// PlaybackStatus represents the transport state of the engine.
type PlaybackStatus int

const (
	// StatusStopped indicates no session is producing audio
	StatusStopped PlaybackStatus = iota

	// StatusPlaying indicates an active session is producing audio
	StatusPlaying

	// StatusPaused indicates an active session with a suspended clock
	StatusPaused
)

// String returns a human-readable representation of the playback status.
func (s PlaybackStatus) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// SessionPhase is the explicit tagged state of the engine's playback session.
// It replaces ad hoc nil-checking of stream and analyzer fields.
type SessionPhase int

const (
	// PhaseNoSession indicates no session exists
	PhaseNoSession SessionPhase = iota

	// PhaseLoading indicates stems are being fetched and decoded
	PhaseLoading

	// PhaseActive indicates streams and analyzers are live
	PhaseActive

	// PhaseSuspended indicates a live session with playback paused
	PhaseSuspended
)

// String returns a human-readable representation of the session phase.
func (p SessionPhase) String() string {
	switch p {
	case PhaseNoSession:
		return "no_session"
	case PhaseLoading:
		return "loading"
	case PhaseActive:
		return "active"
	case PhaseSuspended:
		return "suspended"
	default:
		return "unknown"
	}
}

// PlaybackState is a point-in-time snapshot of the engine transport.
type PlaybackState struct {
	// CurrentTrack is the currently loaded track (nil if none)
	CurrentTrack *Track

	// CurrentIndex is the playlist index (-1 before the first PlayNext)
	CurrentIndex int

	// Status is the transport state
	Status PlaybackStatus

	// Phase is the session lifecycle state
	Phase SessionPhase

	// Position is the playback position in seconds
	Position float64

	// Duration is the current track duration in seconds
	Duration float64

	// Volume is the master gain level (0.0 to 1.0)
	Volume float64
}

// ListenerID uniquely identifies a registered end-of-track listener.
type ListenerID uint64
