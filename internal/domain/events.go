// Package domain defines events for the event-driven architecture.
// Events enable loose coupling between the engine, the scene driver, and
// any outer transport surface.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
// All events must implement this interface to be published via the event bus.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Transport events
	EventTrackStarted   EventType = "track.started"
	EventTrackPaused    EventType = "track.paused"
	EventTrackResumed   EventType = "track.resumed"
	EventTrackStopped   EventType = "track.stopped"
	EventTrackCompleted EventType = "track.completed"
	EventTrackSeeked    EventType = "track.seeked"
	EventTrackError     EventType = "track.error"

	// Volume events
	EventVolumeChanged EventType = "volume.changed"

	// Playlist events
	EventPlaylistRegistered EventType = "playlist.registered"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
// All concrete events should embed this struct.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

// newBaseEvent creates a new base event with the current timestamp.
func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// TrackStartedEvent is published when playback of a track starts.
type TrackStartedEvent struct {
	baseEvent
	Track Track
	Index int
}

// Type returns the event type.
func (e TrackStartedEvent) Type() EventType {
	return EventTrackStarted
}

// NewTrackStartedEvent creates a new TrackStartedEvent.
func NewTrackStartedEvent(track Track, index int) TrackStartedEvent {
	return TrackStartedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
		Index:     index,
	}
}

// TrackPausedEvent is published when playback is paused.
type TrackPausedEvent struct {
	baseEvent
	Track    Track
	Position float64 // seconds
}

// Type returns the event type.
func (e TrackPausedEvent) Type() EventType {
	return EventTrackPaused
}

// NewTrackPausedEvent creates a new TrackPausedEvent.
func NewTrackPausedEvent(track Track, position float64) TrackPausedEvent {
	return TrackPausedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
		Position:  position,
	}
}

// TrackResumedEvent is published when paused playback resumes.
type TrackResumedEvent struct {
	baseEvent
	Track    Track
	Position float64 // seconds
}

// Type returns the event type.
func (e TrackResumedEvent) Type() EventType {
	return EventTrackResumed
}

// NewTrackResumedEvent creates a new TrackResumedEvent.
func NewTrackResumedEvent(track Track, position float64) TrackResumedEvent {
	return TrackResumedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
		Position:  position,
	}
}

// TrackStoppedEvent is published when playback is stopped and the session discarded.
type TrackStoppedEvent struct {
	baseEvent
	Track Track
}

// Type returns the event type.
func (e TrackStoppedEvent) Type() EventType {
	return EventTrackStopped
}

// NewTrackStoppedEvent creates a new TrackStoppedEvent.
func NewTrackStoppedEvent(track Track) TrackStoppedEvent {
	return TrackStoppedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
	}
}

// TrackCompletedEvent is published when the vocal stem reaches its natural end.
type TrackCompletedEvent struct {
	baseEvent
	Track Track
	Index int
}

// Type returns the event type.
func (e TrackCompletedEvent) Type() EventType {
	return EventTrackCompleted
}

// NewTrackCompletedEvent creates a new TrackCompletedEvent.
func NewTrackCompletedEvent(track Track, index int) TrackCompletedEvent {
	return TrackCompletedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
		Index:     index,
	}
}

// TrackSeekedEvent is published after a successful seek.
type TrackSeekedEvent struct {
	baseEvent
	Track    Track
	Position float64 // seconds
}

// Type returns the event type.
func (e TrackSeekedEvent) Type() EventType {
	return EventTrackSeeked
}

// NewTrackSeekedEvent creates a new TrackSeekedEvent.
func NewTrackSeekedEvent(track Track, position float64) TrackSeekedEvent {
	return TrackSeekedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
		Position:  position,
	}
}

// TrackErrorEvent is published when loading or playing a track fails.
type TrackErrorEvent struct {
	baseEvent
	Track Track
	Error error
}

// Type returns the event type.
func (e TrackErrorEvent) Type() EventType {
	return EventTrackError
}

// NewTrackErrorEvent creates a new TrackErrorEvent.
func NewTrackErrorEvent(track Track, err error) TrackErrorEvent {
	return TrackErrorEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
		Error:     err,
	}
}

// VolumeChangedEvent is published when the master gain changes.
type VolumeChangedEvent struct {
	baseEvent
	Volume float64 // 0.0 to 1.0
}

// Type returns the event type.
func (e VolumeChangedEvent) Type() EventType {
	return EventVolumeChanged
}

// NewVolumeChangedEvent creates a new VolumeChangedEvent.
func NewVolumeChangedEvent(volume float64) VolumeChangedEvent {
	return VolumeChangedEvent{
		baseEvent: newBaseEvent(),
		Volume:    volume,
	}
}

// PlaylistRegisteredEvent is published when the playlist is replaced.
type PlaylistRegisteredEvent struct {
	baseEvent
	Tracks []Track
}

// Type returns the event type.
func (e PlaylistRegisteredEvent) Type() EventType {
	return EventPlaylistRegistered
}

// NewPlaylistRegisteredEvent creates a new PlaylistRegisteredEvent.
func NewPlaylistRegisteredEvent(tracks []Track) PlaylistRegisteredEvent {
	return PlaylistRegisteredEvent{
		baseEvent: newBaseEvent(),
		Tracks:    tracks,
	}
}
