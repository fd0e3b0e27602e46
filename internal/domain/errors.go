// Package domain defines domain-specific errors.
// These errors represent business logic failures and are independent of infrastructure.
package domain

import (
	"errors"
	"fmt"
)

// Common errors that the engine and adapters can return.
var (
	// ErrNotInitialized is returned when a transport operation is attempted
	// before the output device has been initialized.
	ErrNotInitialized = errors.New("engine not initialized")

	// ErrPlaylistEmpty is returned when an operation requires a non-empty playlist.
	ErrPlaylistEmpty = errors.New("playlist is empty")

	// ErrNoSession is returned when a transport operation requires an active session.
	ErrNoSession = errors.New("no active playback session")

	// ErrDecodeCancelled is returned when a stem decode is superseded by a
	// later transport operation before it could complete.
	ErrDecodeCancelled = errors.New("decode cancelled")

	// ErrUnsupportedFormat is returned when a stem's format cannot be decoded.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// AudioEngineError represents a failure inside the audio subsystem.
// It wraps low-level output and decoder errors with operation context.
type AudioEngineError struct {
	Op      string // Operation that failed (e.g., "initialize", "play_next", "seek")
	Track   string // Track name (if applicable)
	Message string // Error message
	Err     error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *AudioEngineError) Error() string {
	if e.Track != "" {
		return fmt.Sprintf("audio engine %s failed for %q: %s", e.Op, e.Track, e.Message)
	}
	return fmt.Sprintf("audio engine %s failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *AudioEngineError) Unwrap() error {
	return e.Err
}

// NewAudioEngineError creates a new AudioEngineError.
func NewAudioEngineError(op, track, message string, err error) *AudioEngineError {
	return &AudioEngineError{
		Op:      op,
		Track:   track,
		Message: message,
		Err:     err,
	}
}

// DecodeError represents a failure to fetch or decode one stem.
type DecodeError struct {
	Ref string // Stem reference (path or URL)
	Err error  // Underlying error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode failed for %q: %v", e.Ref, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// NewDecodeError creates a new DecodeError.
func NewDecodeError(ref string, err error) *DecodeError {
	return &DecodeError{Ref: ref, Err: err}
}
