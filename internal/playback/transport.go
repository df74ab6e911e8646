// Package playback sequences the song queue over an audio device: play,
// pause, next, previous, seek and repeat, with the queue defaulting to the
// full catalog.
package playback

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Zerofake/musicflow1/internal/library"
	"github.com/Zerofake/musicflow1/internal/models"
	"github.com/Zerofake/musicflow1/internal/shared"
)

// restartThreshold is how far into a track the previous control restarts the
// current track instead of jumping to the previous one.
const restartThreshold = 3 * time.Second

// State is a point-in-time snapshot of the transport.
type State struct {
	Current  *models.Song
	Queue    []models.Song
	Index    int
	Playing  bool
	Repeat   bool
	Position time.Duration
	Duration time.Duration
}

// Transport drives a Device through the queue.
type Transport struct {
	device  Device
	library *library.Service
	logger  *log.Logger

	mu       sync.Mutex
	queue    []models.Song
	index    int
	playing  bool
	repeat   bool
	position time.Duration
	duration time.Duration

	done chan struct{}
}

// NewTransport creates an idle transport over the device. Song deletions in
// the catalog propagate into the queue through the library's delete hooks.
func NewTransport(device Device, lib *library.Service, logger *log.Logger) *Transport {
	t := &Transport{
		device:  device,
		library: lib,
		logger:  logger.With("component", "transport"),
		index:   -1,
		done:    make(chan struct{}),
	}

	lib.OnDelete(t.DropSong)
	go t.watch()
	return t
}

// Close stops the event loop. The device is owned by the caller and is not
// closed here.
func (t *Transport) Close() {
	close(t.done)
}

// watch consumes device events and advances the queue when a track ends.
func (t *Transport) watch() {
	for {
		select {
		case <-t.done:
			return
		case event, ok := <-t.device.Events():
			if !ok {
				return
			}
			switch event.Kind {
			case EventTimeUpdate:
				t.mu.Lock()
				t.position = event.Position
				if event.Duration > 0 {
					t.duration = event.Duration
				}
				t.mu.Unlock()
			case EventMetadataReady:
				t.mu.Lock()
				t.duration = event.Duration
				t.mu.Unlock()
			case EventEnded:
				if err := t.handleTrackEnd(); err != nil {
					t.logger.Error("failed to advance queue", "error", err)
				}
			}
		}
	}
}

// handleTrackEnd restarts the track when repeat is on, otherwise moves to
// the next one.
func (t *Transport) handleTrackEnd() error {
	t.mu.Lock()
	repeat := t.repeat
	index := t.index
	t.mu.Unlock()

	if index < 0 {
		return nil
	}
	if repeat {
		t.mu.Lock()
		defer t.mu.Unlock()
		return t.startAt(index)
	}
	return t.PlayNext()
}

// PlaySong starts the song within the given queue. An empty queue defaults
// to the full catalog; a song absent from its queue plays as a queue of one.
func (t *Transport) PlaySong(song models.Song, queue []models.Song) error {
	if len(queue) == 0 {
		queue = t.library.Songs()
	}

	index := -1
	for i, s := range queue {
		if s.ID == song.ID {
			index = i
			break
		}
	}
	if index == -1 {
		queue = []models.Song{song}
		index = 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.queue = queue
	return t.startAt(index)
}

// TogglePlay pauses or resumes the current song. Without a current song
// nothing starts and the transport stays idle.
func (t *Transport) TogglePlay() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.index < 0 {
		return shared.ErrNoCurrentSong
	}

	if t.playing {
		t.device.Pause()
		t.playing = false
	} else {
		t.device.Play()
		t.playing = true
	}
	return nil
}

// PlayNext advances to the next song, wrapping at the end of the queue.
func (t *Transport) PlayNext() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.queue) == 0 || t.index < 0 {
		return shared.ErrNoCurrentSong
	}
	return t.startAt((t.index + 1) % len(t.queue))
}

// PlayPrev restarts the current song when more than three seconds in,
// otherwise moves to the previous song, wrapping at the start of the queue.
func (t *Transport) PlayPrev() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.queue) == 0 || t.index < 0 {
		return shared.ErrNoCurrentSong
	}

	if t.device.Position() > restartThreshold {
		return t.startAt(t.index)
	}
	return t.startAt((t.index - 1 + len(t.queue)) % len(t.queue))
}

// Seek moves within the current song, clamped to its bounds.
func (t *Transport) Seek(pos time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.index < 0 {
		return shared.ErrNoCurrentSong
	}

	if pos < 0 {
		pos = 0
	}
	if duration := t.device.Duration(); duration > 0 && pos > duration {
		pos = duration
	}

	if err := t.device.SetPosition(pos); err != nil {
		return err
	}
	t.position = pos
	return nil
}

// ToggleRepeat flips single-song repeat and reports the new setting.
func (t *Transport) ToggleRepeat() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.repeat = !t.repeat
	return t.repeat
}

// DropSong removes the song from the queue. Dropping the current song stops
// playback and resets the transport to idle.
func (t *Transport) DropSong(songID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	dropped := -1
	filtered := t.queue[:0:0]
	for i, s := range t.queue {
		if s.ID == songID {
			dropped = i
			continue
		}
		filtered = append(filtered, s)
	}
	if dropped == -1 {
		return
	}
	t.queue = filtered

	switch {
	case dropped == t.index:
		t.device.Pause()
		t.index = -1
		t.playing = false
		t.position = 0
		t.duration = 0
	case dropped < t.index:
		t.index--
	}
}

// Snapshot returns a copy of the transport state.
func (t *Transport) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := State{
		Queue:    append([]models.Song(nil), t.queue...),
		Index:    t.index,
		Playing:  t.playing,
		Repeat:   t.repeat,
		Position: t.position,
		Duration: t.duration,
	}
	if t.index >= 0 && t.index < len(t.queue) {
		song := t.queue[t.index]
		state.Current = &song
	}
	return state
}

// startAt loads and plays the queue entry. Must be called with the lock
// held. A device rejection is recoverable: the entry stays current so the
// user can retry or skip, but playback is stopped.
func (t *Transport) startAt(index int) error {
	song := t.queue[index]

	if err := t.device.Load(song.AudioSrc); err != nil {
		t.index = index
		t.playing = false
		t.position = 0
		t.duration = 0
		return fmt.Errorf("%w: %s: %v", shared.ErrPlaybackFail, song.Title, err)
	}

	t.device.Play()
	t.index = index
	t.playing = true
	t.position = 0
	t.duration = t.device.Duration()

	t.logger.Info("playing", "title", song.Title, "artist", song.Artist)
	return nil
}
