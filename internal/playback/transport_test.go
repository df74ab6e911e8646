package playback_test

import (
	"errors"
	"testing"
	"time"

	"github.com/Zerofake/musicflow1/internal/library"
	"github.com/Zerofake/musicflow1/internal/models"
	"github.com/Zerofake/musicflow1/internal/playback"
	"github.com/Zerofake/musicflow1/internal/repositories"
	"github.com/Zerofake/musicflow1/internal/shared"
	tu "github.com/Zerofake/musicflow1/internal/testing"
)

type fixture struct {
	lib       *library.Service
	device    *tu.FakeDevice
	transport *playback.Transport
}

func setup(t *testing.T, songs ...models.Song) *fixture {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	logger := shared.NewLogger(nil)
	notifier := repositories.NewNotifier()
	songRepo := repositories.NewSongRepository(db, notifier)
	playlistRepo := repositories.NewPlaylistRepository(db, notifier)

	lib, err := library.NewService(songRepo, playlistRepo, notifier, logger)
	if err != nil {
		t.Fatalf("failed to create library service: %v", err)
	}
	t.Cleanup(lib.Close)

	if len(songs) > 0 {
		if _, err := lib.AddSongs(songs); err != nil {
			t.Fatalf("failed to seed songs: %v", err)
		}
	}

	device := tu.NewFakeDevice()
	t.Cleanup(func() { device.Close() })

	transport := playback.NewTransport(device, lib, logger)
	t.Cleanup(transport.Close)

	return &fixture{lib: lib, device: device, transport: transport}
}

func song(id string) models.Song {
	return models.Song{
		ID:       id,
		Title:    "Title " + id,
		Artist:   "Artist",
		Duration: 180,
		AudioSrc: "file:///music/" + id + ".mp3",
	}
}

// eventually polls for a condition driven by the transport's event loop.
func eventually(t *testing.T, check func() bool, message string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if check() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(message)
}

func TestPlaySong(t *testing.T) {
	t.Run("WithExplicitQueue", func(t *testing.T) {
		f := setup(t)
		queue := []models.Song{song("a"), song("b"), song("c")}

		if err := f.transport.PlaySong(queue[1], queue); err != nil {
			t.Fatalf("play failed: %v", err)
		}

		state := f.transport.Snapshot()
		if state.Index != 1 || state.Current == nil || state.Current.ID != "b" {
			t.Errorf("expected index 1 playing b, got %+v", state)
		}
		if !state.Playing {
			t.Error("expected playing state")
		}
		if f.device.Loaded() != "file:///music/b.mp3" {
			t.Errorf("device loaded %q", f.device.Loaded())
		}
	})

	t.Run("DefaultsToCatalog", func(t *testing.T) {
		f := setup(t, song("a"), song("b"))

		if err := f.transport.PlaySong(song("b"), nil); err != nil {
			t.Fatalf("play failed: %v", err)
		}

		state := f.transport.Snapshot()
		if len(state.Queue) != 2 {
			t.Errorf("expected catalog queue of 2, got %d", len(state.Queue))
		}
		if state.Index != 1 {
			t.Errorf("expected index 1, got %d", state.Index)
		}
	})

	t.Run("AbsentSongPlaysAlone", func(t *testing.T) {
		f := setup(t)
		queue := []models.Song{song("a"), song("b")}

		if err := f.transport.PlaySong(song("x"), queue); err != nil {
			t.Fatalf("play failed: %v", err)
		}

		state := f.transport.Snapshot()
		if len(state.Queue) != 1 || state.Queue[0].ID != "x" {
			t.Errorf("expected single-song queue, got %+v", state.Queue)
		}
	})

	t.Run("LoadFailureKeepsCurrentStopped", func(t *testing.T) {
		f := setup(t)
		f.device.FailNextLoad(errors.New("decode error"))

		err := f.transport.PlaySong(song("a"), []models.Song{song("a")})
		if !errors.Is(err, shared.ErrPlaybackFail) {
			t.Fatalf("expected ErrPlaybackFail, got %v", err)
		}

		state := f.transport.Snapshot()
		if state.Current == nil || state.Current.ID != "a" {
			t.Errorf("expected the attempted song to stay current, got %+v", state.Current)
		}
		if state.Playing {
			t.Error("expected playback stopped after failure")
		}
	})
}

func TestTogglePlay(t *testing.T) {
	t.Run("PausesAndResumes", func(t *testing.T) {
		f := setup(t)
		if err := f.transport.PlaySong(song("a"), []models.Song{song("a")}); err != nil {
			t.Fatalf("play failed: %v", err)
		}

		if err := f.transport.TogglePlay(); err != nil {
			t.Fatalf("toggle failed: %v", err)
		}
		if f.device.Playing() {
			t.Error("expected device paused")
		}
		if f.transport.Snapshot().Playing {
			t.Error("expected paused state")
		}

		if err := f.transport.TogglePlay(); err != nil {
			t.Fatalf("toggle failed: %v", err)
		}
		if !f.device.Playing() {
			t.Error("expected device resumed")
		}
	})

	t.Run("IdleIsNoop", func(t *testing.T) {
		f := setup(t, song("a"), song("b"))

		if err := f.transport.TogglePlay(); !errors.Is(err, shared.ErrNoCurrentSong) {
			t.Fatalf("expected ErrNoCurrentSong, got %v", err)
		}

		state := f.transport.Snapshot()
		if state.Current != nil || state.Playing || state.Index != -1 {
			t.Errorf("expected idle state untouched, got %+v", state)
		}
		if len(f.device.Loads()) != 0 {
			t.Errorf("expected no loads, got %v", f.device.Loads())
		}
	})
}

func TestPlayNext(t *testing.T) {
	f := setup(t)
	queue := []models.Song{song("a"), song("b")}
	if err := f.transport.PlaySong(queue[0], queue); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	if err := f.transport.PlayNext(); err != nil {
		t.Fatalf("next failed: %v", err)
	}
	if got := f.transport.Snapshot().Index; got != 1 {
		t.Errorf("expected index 1, got %d", got)
	}

	// wraps back to the start
	if err := f.transport.PlayNext(); err != nil {
		t.Fatalf("next failed: %v", err)
	}
	if got := f.transport.Snapshot().Index; got != 0 {
		t.Errorf("expected wrap to index 0, got %d", got)
	}
}

func TestPlayPrev(t *testing.T) {
	t.Run("RestartsPastThreshold", func(t *testing.T) {
		f := setup(t)
		queue := []models.Song{song("a"), song("b")}
		if err := f.transport.PlaySong(queue[1], queue); err != nil {
			t.Fatalf("play failed: %v", err)
		}
		f.device.AdvanceTo(5 * time.Second)

		if err := f.transport.PlayPrev(); err != nil {
			t.Fatalf("prev failed: %v", err)
		}
		if got := f.transport.Snapshot().Index; got != 1 {
			t.Errorf("expected restart at index 1, got %d", got)
		}
		if loads := f.device.Loads(); len(loads) != 2 || loads[1] != "file:///music/b.mp3" {
			t.Errorf("expected b reloaded, got %v", loads)
		}
	})

	t.Run("JumpsBackEarlyInTrack", func(t *testing.T) {
		f := setup(t)
		queue := []models.Song{song("a"), song("b")}
		if err := f.transport.PlaySong(queue[1], queue); err != nil {
			t.Fatalf("play failed: %v", err)
		}
		f.device.AdvanceTo(time.Second)

		if err := f.transport.PlayPrev(); err != nil {
			t.Fatalf("prev failed: %v", err)
		}
		if got := f.transport.Snapshot().Index; got != 0 {
			t.Errorf("expected index 0, got %d", got)
		}
	})

	t.Run("WrapsToEndFromFirstSong", func(t *testing.T) {
		f := setup(t)
		queue := []models.Song{song("a"), song("b"), song("c")}
		if err := f.transport.PlaySong(queue[0], queue); err != nil {
			t.Fatalf("play failed: %v", err)
		}

		if err := f.transport.PlayPrev(); err != nil {
			t.Fatalf("prev failed: %v", err)
		}
		if got := f.transport.Snapshot().Index; got != 2 {
			t.Errorf("expected wrap to last index, got %d", got)
		}
	})
}

func TestSeek(t *testing.T) {
	f := setup(t)
	f.device.SetTrackLength(3 * time.Minute)
	if err := f.transport.PlaySong(song("a"), []models.Song{song("a")}); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	if err := f.transport.Seek(-5 * time.Second); err != nil {
		t.Fatalf("seek failed: %v", err)
	}
	if got := f.device.Position(); got != 0 {
		t.Errorf("expected clamp to 0, got %v", got)
	}

	if err := f.transport.Seek(10 * time.Minute); err != nil {
		t.Fatalf("seek failed: %v", err)
	}
	if got := f.device.Position(); got != 3*time.Minute {
		t.Errorf("expected clamp to track length, got %v", got)
	}

	if err := f.transport.Seek(time.Minute); err != nil {
		t.Fatalf("seek failed: %v", err)
	}
	if got := f.device.Position(); got != time.Minute {
		t.Errorf("expected position 1m, got %v", got)
	}
}

func TestTrackEnd(t *testing.T) {
	t.Run("AdvancesToNext", func(t *testing.T) {
		f := setup(t)
		queue := []models.Song{song("a"), song("b")}
		if err := f.transport.PlaySong(queue[0], queue); err != nil {
			t.Fatalf("play failed: %v", err)
		}

		f.device.EmitEnded()
		eventually(t, func() bool {
			return f.transport.Snapshot().Index == 1
		}, "transport did not advance after track end")
	})

	t.Run("RepeatRestartsCurrent", func(t *testing.T) {
		f := setup(t)
		queue := []models.Song{song("a"), song("b")}
		if err := f.transport.PlaySong(queue[0], queue); err != nil {
			t.Fatalf("play failed: %v", err)
		}
		if !f.transport.ToggleRepeat() {
			t.Fatal("expected repeat enabled")
		}

		f.device.EmitEnded()
		eventually(t, func() bool {
			return len(f.device.Loads()) == 2
		}, "transport did not restart the track")

		if got := f.transport.Snapshot().Index; got != 0 {
			t.Errorf("expected index to stay 0, got %d", got)
		}
		if loads := f.device.Loads(); loads[1] != "file:///music/a.mp3" {
			t.Errorf("expected a reloaded, got %v", loads)
		}
	})
}

func TestDropSong(t *testing.T) {
	t.Run("CurrentSongResetsToIdle", func(t *testing.T) {
		f := setup(t)
		queue := []models.Song{song("a"), song("b")}
		if err := f.transport.PlaySong(queue[0], queue); err != nil {
			t.Fatalf("play failed: %v", err)
		}

		f.transport.DropSong("a")

		state := f.transport.Snapshot()
		if state.Index != -1 || state.Playing || state.Current != nil {
			t.Errorf("expected idle state, got %+v", state)
		}
		if len(state.Queue) != 1 {
			t.Errorf("expected queue of 1, got %d", len(state.Queue))
		}
	})

	t.Run("EarlierSongShiftsIndex", func(t *testing.T) {
		f := setup(t)
		queue := []models.Song{song("a"), song("b"), song("c")}
		if err := f.transport.PlaySong(queue[2], queue); err != nil {
			t.Fatalf("play failed: %v", err)
		}

		f.transport.DropSong("a")

		state := f.transport.Snapshot()
		if state.Index != 1 || state.Current == nil || state.Current.ID != "c" {
			t.Errorf("expected c at index 1, got %+v", state)
		}
		if !state.Playing {
			t.Error("drop of another song must not stop playback")
		}
	})

	t.Run("CatalogDeleteReachesQueue", func(t *testing.T) {
		f := setup(t, song("a"), song("b"))
		if err := f.transport.PlaySong(song("a"), nil); err != nil {
			t.Fatalf("play failed: %v", err)
		}

		if err := f.lib.DeleteSong("a"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}

		state := f.transport.Snapshot()
		if state.Index != -1 {
			t.Errorf("expected idle after catalog delete, got index %d", state.Index)
		}
	})

	t.Run("AbsentSongIsNoop", func(t *testing.T) {
		f := setup(t)
		queue := []models.Song{song("a")}
		if err := f.transport.PlaySong(queue[0], queue); err != nil {
			t.Fatalf("play failed: %v", err)
		}

		f.transport.DropSong("zzz")

		if got := f.transport.Snapshot().Index; got != 0 {
			t.Errorf("expected index unchanged, got %d", got)
		}
	})
}
