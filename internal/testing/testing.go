// package testing contains shared testing utilities
package testing

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/Zerofake/musicflow1/internal/playback"
)

// FakeDevice is a test double for [playback.Device]. It records loads and
// play state in memory and lets tests drive device events by hand.
type FakeDevice struct {
	mu       sync.Mutex
	events   chan playback.DeviceEvent
	loaded   string
	loads    []string
	playing  bool
	position time.Duration
	duration time.Duration
	loadErr  error
	closed   bool
}

func NewFakeDevice() *FakeDevice {
	return &FakeDevice{events: make(chan playback.DeviceEvent, 8)}
}

// FailNextLoad makes the next Load call return err.
func (d *FakeDevice) FailNextLoad(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loadErr = err
}

// SetTrackLength sets the duration reported for subsequently loaded tracks.
func (d *FakeDevice) SetTrackLength(length time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.duration = length
}

// AdvanceTo fakes playback progress to the given position.
func (d *FakeDevice) AdvanceTo(pos time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.position = pos
}

// EmitEnded signals that the loaded track played to completion.
func (d *FakeDevice) EmitEnded() {
	d.events <- playback.DeviceEvent{Kind: playback.EventEnded}
}

// Loaded returns the src of the currently loaded track.
func (d *FakeDevice) Loaded() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loaded
}

// Loads returns every src passed to Load, in order.
func (d *FakeDevice) Loads() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.loads...)
}

// Playing reports whether the device is un-paused.
func (d *FakeDevice) Playing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.playing
}

func (d *FakeDevice) Load(src string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.loadErr != nil {
		err := d.loadErr
		d.loadErr = nil
		return err
	}

	d.loaded = src
	d.loads = append(d.loads, src)
	d.playing = false
	d.position = 0
	return nil
}

func (d *FakeDevice) Play() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.playing = true
}

func (d *FakeDevice) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.playing = false
}

func (d *FakeDevice) SetPosition(pos time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.position = pos
	return nil
}

func (d *FakeDevice) Position() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.position
}

func (d *FakeDevice) Duration() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.duration
}

func (d *FakeDevice) Events() <-chan playback.DeviceEvent {
	return d.events
}

func (d *FakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.closed {
		d.closed = true
		close(d.events)
	}
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

// NewLimitedWriter creates a writer that fails after maxWrites writes
func NewLimitedWriter(target io.Writer, maxWrites int) *LimitedWriter {
	return &LimitedWriter{maxWrites: maxWrites, target: target}
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}
