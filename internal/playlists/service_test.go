package playlists

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/Zerofake/musicflow1/internal/library"
	"github.com/Zerofake/musicflow1/internal/models"
	"github.com/Zerofake/musicflow1/internal/repositories"
	"github.com/Zerofake/musicflow1/internal/shared"
)

type fixture struct {
	db      *sql.DB
	lib     *library.Service
	service *Service
}

func setup(t *testing.T) *fixture {
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
	songs := repositories.NewSongRepository(db, notifier)
	playlistRepo := repositories.NewPlaylistRepository(db, notifier)

	lib, err := library.NewService(songs, playlistRepo, notifier, logger)
	if err != nil {
		t.Fatalf("failed to create library service: %v", err)
	}
	t.Cleanup(lib.Close)

	limits := shared.LimitsConfig{MaxPlaylists: 12, MaxNameLength: 200}
	service, err := NewService(playlistRepo, lib, notifier, limits, logger)
	if err != nil {
		t.Fatalf("failed to create playlist service: %v", err)
	}
	t.Cleanup(service.Close)

	return &fixture{db: db, lib: lib, service: service}
}

func song(id string) models.Song {
	return models.Song{
		ID:       id,
		Title:    "Title " + id,
		Artist:   "Artist",
		Duration: 60,
		AudioSrc: "file:///music/" + id + ".mp3",
	}
}

func firstPlaylist(t *testing.T, f *fixture) models.Playlist {
	t.Helper()
	all := f.service.Playlists()
	if len(all) == 0 {
		t.Fatal("no playlists present")
	}
	return all[0]
}

func TestCreate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := setup(t)

		ok, err := f.service.Create("Workout", "High energy")
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if !ok {
			t.Fatal("expected create to succeed")
		}

		p := firstPlaylist(t, f)
		if p.Name != "Workout" {
			t.Errorf("expected name Workout, got %q", p.Name)
		}
		if len(p.SongIDs) != 0 {
			t.Errorf("new playlist must start empty, got %v", p.SongIDs)
		}
		if p.CoverArt == "" {
			t.Error("expected a placeholder cover")
		}
	})

	t.Run("DeterministicCover", func(t *testing.T) {
		if placeholderCover("Chill") != placeholderCover("Chill") {
			t.Error("cover must be deterministic for the same name")
		}
		if placeholderCover("Chill") == placeholderCover("Focus") {
			t.Error("distinct names should produce distinct covers")
		}
	})

	t.Run("RejectsEmptyName", func(t *testing.T) {
		f := setup(t)
		ok, err := f.service.Create("", "desc")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Error("expected empty name to be rejected")
		}
	})

	t.Run("RejectsLongName", func(t *testing.T) {
		f := setup(t)
		name := ""
		for i := 0; i < 201; i++ {
			name += "x"
		}
		ok, err := f.service.Create(name, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Error("expected 201-char name to be rejected")
		}
	})

	t.Run("EnforcesQuota", func(t *testing.T) {
		f := setup(t)

		for i := 0; i < 12; i++ {
			ok, err := f.service.Create(fmt.Sprintf("Playlist %d", i), "")
			if err != nil || !ok {
				t.Fatalf("create %d failed: ok=%v err=%v", i, ok, err)
			}
		}

		ok, err := f.service.Create("X", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Error("expected create beyond quota to fail")
		}
		if got := len(f.service.Playlists()); got != 12 {
			t.Errorf("expected playlist count to stay 12, got %d", got)
		}

		can, _ := f.service.CanCreate()
		if can {
			t.Error("CanCreate must report false at quota")
		}
	})
}

func TestAddSongs(t *testing.T) {
	t.Run("IdempotentMembership", func(t *testing.T) {
		f := setup(t)
		if ok, err := f.service.Create("Mix", ""); err != nil || !ok {
			t.Fatalf("create failed: ok=%v err=%v", ok, err)
		}
		p := firstPlaylist(t, f)

		for i := 0; i < 2; i++ {
			if err := f.service.AddSongs(p.ID, []models.Song{song("s1")}); err != nil {
				t.Fatalf("add %d failed: %v", i, err)
			}
		}

		got, _ := f.service.Get(p.ID)
		occurrences := 0
		for _, id := range got.SongIDs {
			if id == "s1" {
				occurrences++
			}
		}
		if occurrences != 1 {
			t.Errorf("expected exactly one occurrence of s1, got %d", occurrences)
		}
	})

	t.Run("EnsuresSongsInCatalog", func(t *testing.T) {
		f := setup(t)
		if ok, err := f.service.Create("Mix", ""); err != nil || !ok {
			t.Fatalf("create failed: ok=%v err=%v", ok, err)
		}
		p := firstPlaylist(t, f)

		if err := f.service.AddSongs(p.ID, []models.Song{song("new")}); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if _, ok := f.lib.SongByID("new"); !ok {
			t.Error("song was not added to the catalog first")
		}
	})

	t.Run("PreservesAppendOrder", func(t *testing.T) {
		f := setup(t)
		if ok, err := f.service.Create("Mix", ""); err != nil || !ok {
			t.Fatalf("create failed: ok=%v err=%v", ok, err)
		}
		p := firstPlaylist(t, f)

		if err := f.service.AddSongs(p.ID, []models.Song{song("a"), song("b"), song("c")}); err != nil {
			t.Fatalf("add failed: %v", err)
		}

		got, _ := f.service.Get(p.ID)
		want := []string{"a", "b", "c"}
		for i, id := range want {
			if got.SongIDs[i] != id {
				t.Fatalf("order not preserved: %v", got.SongIDs)
			}
		}
	})
}

func TestRemoveSong(t *testing.T) {
	f := setup(t)
	if ok, err := f.service.Create("Mix", ""); err != nil || !ok {
		t.Fatalf("create failed: ok=%v err=%v", ok, err)
	}
	p := firstPlaylist(t, f)

	if err := f.service.AddSongs(p.ID, []models.Song{song("a"), song("b")}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if err := f.service.RemoveSong(p.ID, "a"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	got, _ := f.service.Get(p.ID)
	if got.Contains("a") {
		t.Error("song still present after removal")
	}
	// song stays in the catalog
	if _, ok := f.lib.SongByID("a"); !ok {
		t.Error("removal from playlist must not delete the song")
	}
}

func TestMoveSong(t *testing.T) {
	twoPlaylists := func(t *testing.T, f *fixture) (models.Playlist, models.Playlist) {
		t.Helper()
		for _, name := range []string{"Source", "Target"} {
			if ok, err := f.service.Create(name, ""); err != nil || !ok {
				t.Fatalf("create %s failed: ok=%v err=%v", name, ok, err)
			}
		}
		all := f.service.Playlists()
		return all[0], all[1]
	}

	t.Run("MoveBetweenPlaylists", func(t *testing.T) {
		f := setup(t)
		source, target := twoPlaylists(t, f)

		if err := f.service.AddSongs(source.ID, []models.Song{song("s")}); err != nil {
			t.Fatalf("seed failed: %v", err)
		}

		if err := f.service.MoveSong(target.ID, song("s"), source.ID); err != nil {
			t.Fatalf("move failed: %v", err)
		}

		gotTarget, _ := f.service.Get(target.ID)
		gotSource, _ := f.service.Get(source.ID)
		if !gotTarget.Contains("s") {
			t.Error("song missing from target after move")
		}
		if gotSource.Contains("s") {
			t.Error("song still in source after move")
		}
	})

	t.Run("FailedAddLeavesSourceIntact", func(t *testing.T) {
		f := setup(t)
		source, _ := twoPlaylists(t, f)

		if err := f.service.AddSongs(source.ID, []models.Song{song("s")}); err != nil {
			t.Fatalf("seed failed: %v", err)
		}

		err := f.service.MoveSong("nonexistent", song("s"), source.ID)
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Fatalf("expected ErrPlaylistNotFound, got %v", err)
		}

		gotSource, _ := f.service.Get(source.ID)
		if !gotSource.Contains("s") {
			t.Error("song vanished from source after failed add to target")
		}
	})

	t.Run("SourceEqualsTargetIsNoop", func(t *testing.T) {
		f := setup(t)
		source, _ := twoPlaylists(t, f)

		if err := f.service.AddSongs(source.ID, []models.Song{song("s")}); err != nil {
			t.Fatalf("seed failed: %v", err)
		}

		if err := f.service.MoveSong(source.ID, song("s"), source.ID); err != nil {
			t.Fatalf("self-move must be a no-op: %v", err)
		}

		got, _ := f.service.Get(source.ID)
		if !got.Contains("s") {
			t.Error("self-move removed the song")
		}
	})

	t.Run("LibraryOriginSkipsRemoval", func(t *testing.T) {
		f := setup(t)
		_, target := twoPlaylists(t, f)

		if err := f.service.MoveSong(target.ID, song("lib"), ""); err != nil {
			t.Fatalf("move from library failed: %v", err)
		}

		got, _ := f.service.Get(target.ID)
		if !got.Contains("lib") {
			t.Error("song missing from target after move from library")
		}
	})
}

func TestSongsFor(t *testing.T) {
	f := setup(t)

	if _, err := f.lib.AddSongs([]models.Song{song("a")}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	// "stale" never existed in the catalog; it stands in for a song deleted
	// after it was added to the playlist
	stale := models.Playlist{ID: "p", Name: "Mix", SongIDs: []string{"a", "stale"}}

	resolved := f.service.SongsFor(stale)
	if len(resolved) != 1 || resolved[0].ID != "a" {
		t.Errorf("expected only resolvable songs, got %v", resolved)
	}
}

func TestUpdate(t *testing.T) {
	f := setup(t)
	if ok, err := f.service.Create("Old", "desc"); err != nil || !ok {
		t.Fatalf("create failed: ok=%v err=%v", ok, err)
	}
	p := firstPlaylist(t, f)

	name := "New"
	if err := f.service.Update(p.ID, repositories.PlaylistPatch{Name: &name}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, _ := f.service.Get(p.ID)
	if got.Name != "New" {
		t.Errorf("expected renamed playlist, got %q", got.Name)
	}
	if got.Description != "desc" {
		t.Errorf("partial update clobbered description: %q", got.Description)
	}

	empty := ""
	if err := f.service.Update(p.ID, repositories.PlaylistPatch{Name: &empty}); !errors.Is(err, shared.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}
