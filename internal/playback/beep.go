package playback

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
)

// BeepDevice plays local mp3 files through the system speaker.
type BeepDevice struct {
	events chan DeviceEvent

	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.RWMutex
	isInitialized bool
	file          *os.File
	streamer      beep.StreamSeekCloser
	ctrl          *beep.Ctrl
	format        beep.Format

	// loadGen is atomic so the end-of-track callback, which runs on the
	// mixer goroutine with the speaker mutex held, never touches d.mu.
	loadGen atomic.Int64
}

// NewBeepDevice creates an idle device. The speaker itself is initialized
// lazily on the first Load.
func NewBeepDevice() *BeepDevice {
	ctx, cancel := context.WithCancel(context.Background())
	return &BeepDevice{
		events: make(chan DeviceEvent, 8),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (d *BeepDevice) Events() <-chan DeviceEvent {
	return d.events
}

// Load decodes the file at src and prepares it for playback, paused at the
// start. Any previously loaded track is unloaded first.
func (d *BeepDevice) Load(src string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.unloadInternal()
	gen := d.loadGen.Add(1)

	file, err := os.Open(strings.TrimPrefix(src, "file://"))
	if err != nil {
		return fmt.Errorf("failed to open audio file: %w", err)
	}

	streamer, format, err := mp3.Decode(file)
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to decode mp3: %w", err)
	}

	if !d.isInitialized {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/5)); err != nil {
			streamer.Close()
			file.Close()
			return fmt.Errorf("failed to initialize speaker: %w", err)
		}
		d.isInitialized = true
	}

	d.file = file
	d.streamer = streamer
	d.format = format
	d.ctrl = &beep.Ctrl{Streamer: streamer, Paused: true}

	speaker.Play(beep.Seq(d.ctrl, beep.Callback(func() {
		d.trackEnded(gen)
	})))

	d.emit(DeviceEvent{Kind: EventMetadataReady, Duration: format.SampleRate.D(streamer.Len())})

	go d.monitor(gen)
	return nil
}

func (d *BeepDevice) Play() {
	d.setPaused(false)
}

func (d *BeepDevice) Pause() {
	d.setPaused(true)
}

func (d *BeepDevice) setPaused(paused bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.ctrl != nil {
		speaker.Lock()
		d.ctrl.Paused = paused
		speaker.Unlock()
	}
}

func (d *BeepDevice) SetPosition(pos time.Duration) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.streamer == nil {
		return nil
	}

	speaker.Lock()
	err := d.streamer.Seek(d.format.SampleRate.N(pos))
	speaker.Unlock()
	if err != nil {
		return fmt.Errorf("seek failed: %w", err)
	}
	return nil
}

func (d *BeepDevice) Position() time.Duration {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.streamer == nil {
		return 0
	}

	speaker.Lock()
	defer speaker.Unlock()
	return d.format.SampleRate.D(d.streamer.Position())
}

func (d *BeepDevice) Duration() time.Duration {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.streamer == nil {
		return 0
	}

	speaker.Lock()
	defer speaker.Unlock()
	return d.format.SampleRate.D(d.streamer.Len())
}

func (d *BeepDevice) Close() error {
	d.cancel()

	d.mu.Lock()
	d.unloadInternal()
	d.mu.Unlock()

	close(d.events)
	return nil
}

// unloadInternal must be called with the write lock held.
func (d *BeepDevice) unloadInternal() {
	if d.ctrl != nil {
		speaker.Clear()
		d.ctrl = nil
	}
	if d.streamer != nil {
		d.streamer.Close()
		d.streamer = nil
	}
	if d.file != nil {
		d.file.Close()
		d.file = nil
	}
}

// trackEnded reports the end of the track for generation gen. It runs on the
// mixer goroutine with the speaker mutex held, so it must not acquire d.mu:
// Load holds d.mu while waiting on the speaker mutex in speaker.Clear, and
// taking d.mu here would close the cycle.
func (d *BeepDevice) trackEnded(gen int64) {
	if d.loadGen.Load() != gen {
		return
	}
	d.emit(DeviceEvent{Kind: EventEnded})
}

func (d *BeepDevice) emit(event DeviceEvent) {
	select {
	case <-d.ctx.Done():
	case d.events <- event:
	default:
	}
}

// monitor reports playback position once a second until the track is
// unloaded or superseded by a newer Load.
func (d *BeepDevice) monitor(gen int64) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.mu.RLock()
			if d.streamer == nil || gen != d.loadGen.Load() {
				d.mu.RUnlock()
				return
			}
			speaker.Lock()
			pos := d.format.SampleRate.D(d.streamer.Position())
			total := d.format.SampleRate.D(d.streamer.Len())
			speaker.Unlock()
			d.mu.RUnlock()

			d.emit(DeviceEvent{Kind: EventTimeUpdate, Position: pos, Duration: total})
		}
	}
}
