package playback

import "time"

// EventKind identifies the kind of event an audio device emits.
type EventKind int

const (
	// EventTimeUpdate reports playback position progress.
	EventTimeUpdate EventKind = iota
	// EventMetadataReady fires once the loaded track's duration is known.
	EventMetadataReady
	// EventEnded fires when the loaded track plays to completion.
	EventEnded
)

// DeviceEvent is an asynchronous notification from an audio device.
type DeviceEvent struct {
	Kind     EventKind
	Position time.Duration
	Duration time.Duration
}

// Device abstracts an audio output. Implementations decode and play a single
// track at a time; the transport sequences tracks on top of it.
type Device interface {
	// Load replaces the current track with the one at src and leaves it
	// paused at position zero.
	Load(src string) error
	// Play resumes output of the loaded track.
	Play()
	// Pause suspends output without unloading the track.
	Pause()
	// SetPosition seeks within the loaded track.
	SetPosition(pos time.Duration) error
	Position() time.Duration
	Duration() time.Duration
	// Events delivers device notifications. The channel is closed by Close.
	Events() <-chan DeviceEvent
	Close() error
}
