// Package playlists implements playlist CRUD, membership, quota enforcement,
// and the atomic move-between-playlists operation.
package playlists

import (
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/Zerofake/musicflow1/internal/library"
	"github.com/Zerofake/musicflow1/internal/models"
	"github.com/Zerofake/musicflow1/internal/repositories"
	"github.com/Zerofake/musicflow1/internal/shared"
	"github.com/charmbracelet/log"
)

// Service owns user playlists and the membership rules between playlists and
// the catalog.
type Service struct {
	repo    *repositories.PlaylistRepository
	library *library.Service
	logger  *log.Logger

	maxPlaylists  int
	maxNameLength int

	mu          sync.RWMutex
	cache       []models.Playlist
	cancelWatch func()
}

// NewService creates the playlist service and loads the playlist cache.
func NewService(repo *repositories.PlaylistRepository, lib *library.Service, notifier *repositories.Notifier, limits shared.LimitsConfig, logger *log.Logger) (*Service, error) {
	s := &Service{
		repo:          repo,
		library:       lib,
		logger:        shared.WithLogger(logger, "service", "playlists"),
		maxPlaylists:  limits.MaxPlaylists,
		maxNameLength: limits.MaxNameLength,
	}

	if err := s.refresh(); err != nil {
		return nil, err
	}

	events, cancel := notifier.Subscribe()
	s.cancelWatch = cancel
	go s.watch(events)

	return s, nil
}

func (s *Service) watch(events <-chan repositories.Event) {
	for event := range events {
		if event.Table != repositories.TablePlaylists {
			continue
		}
		if err := s.refresh(); err != nil {
			s.logger.Error("failed to refresh playlist cache", "error", err)
		}
	}
}

// Close releases the change subscription.
func (s *Service) Close() {
	if s.cancelWatch != nil {
		s.cancelWatch()
	}
}

func (s *Service) refresh() error {
	playlists, err := s.repo.All()
	if err != nil {
		return fmt.Errorf("failed to load playlists: %w", err)
	}

	s.mu.Lock()
	s.cache = playlists
	s.mu.Unlock()
	return nil
}

// Playlists returns a snapshot of all playlists in creation order.
func (s *Service) Playlists() []models.Playlist {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Playlist, len(s.cache))
	copy(out, s.cache)
	return out
}

// Get looks up a playlist in the cache.
func (s *Service) Get(id string) (models.Playlist, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.cache {
		if p.ID == id {
			return p, true
		}
	}
	return models.Playlist{}, false
}

// CanCreate reports whether the playlist quota allows another playlist, with a
// user-facing message either way. Recomputed from the live count.
func (s *Service) CanCreate() (bool, string) {
	count, err := s.repo.Count()
	if err != nil {
		s.logger.Error("failed to count playlists", "error", err)
		return false, "Não foi possível verificar suas playlists."
	}
	if count < s.maxPlaylists {
		return true, fmt.Sprintf("Você pode criar até %d playlists.", s.maxPlaylists)
	}
	return false, fmt.Sprintf("Você atingiu o limite máximo de %d playlists.", s.maxPlaylists)
}

// Create validates the name and the quota, then persists a fresh empty
// playlist with a deterministic placeholder cover.
//
// The quota is re-checked here at call time even when the UI pre-filters,
// because the count may have changed since the UI last rendered. Returns
// false for every validation failure; state is untouched on failure.
func (s *Service) Create(name, description string) (bool, error) {
	if name == "" || len([]rune(name)) > s.maxNameLength {
		return false, nil
	}

	count, err := s.repo.Count()
	if err != nil {
		return false, fmt.Errorf("failed to check quota: %w", err)
	}
	if count >= s.maxPlaylists {
		return false, nil
	}

	playlist := models.Playlist{
		ID:          shared.NewPlaylistID(),
		Name:        name,
		Description: description,
		CoverArt:    placeholderCover(name),
		SongIDs:     []string{},
	}

	if err := s.repo.Create(playlist); err != nil {
		return false, err
	}

	s.logger.Info("created playlist", "id", playlist.ID, "name", name)
	return true, s.refresh()
}

// Delete removes the playlist record. Songs remain in the catalog.
func (s *Service) Delete(id string) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	return s.refresh()
}

// Update merges a partial set of fields into the playlist record; used for
// metadata edits and for persisting a user-driven reorder of song ids.
func (s *Service) Update(id string, patch repositories.PlaylistPatch) error {
	if patch.Name != nil && (*patch.Name == "" || len([]rune(*patch.Name)) > s.maxNameLength) {
		return fmt.Errorf("%w: name must be 1-%d characters", shared.ErrInvalidName, s.maxNameLength)
	}

	if err := s.repo.Patch(id, patch); err != nil {
		return err
	}
	return s.refresh()
}

// AddSongs adds songs to a playlist in two phases: first the songs are added
// to the catalog (deduplicated there), then the ids not already present are
// appended to the playlist in order, atomically with respect to the playlist
// record.
func (s *Service) AddSongs(playlistID string, songs []models.Song) error {
	if len(songs) == 0 {
		return nil
	}

	if _, err := s.library.AddSongs(songs); err != nil {
		return fmt.Errorf("failed to ensure songs in catalog: %w", err)
	}

	ids := make([]string, len(songs))
	for i, song := range songs {
		ids[i] = song.ID
	}

	if _, err := s.repo.AppendSongs(playlistID, ids); err != nil {
		return err
	}
	return s.refresh()
}

// RemoveSong filters the song id out of the playlist. The song stays in the
// catalog. No-op if the id is absent.
func (s *Service) RemoveSong(playlistID, songID string) error {
	if err := s.repo.RemoveSong(playlistID, songID); err != nil {
		return err
	}
	return s.refresh()
}

// MoveSong adds the song to the target playlist and then, only if a distinct
// source playlist was given, removes it from the source.
//
// The add must succeed before the removal is attempted, so a partial failure
// can leave the song in both places but never in neither. An empty sourceID
// means the song came from the library view and no removal runs.
func (s *Service) MoveSong(targetID string, song models.Song, sourceID string) error {
	if sourceID == targetID {
		return nil
	}

	if err := s.AddSongs(targetID, []models.Song{song}); err != nil {
		return fmt.Errorf("move aborted, add to target failed: %w", err)
	}

	if sourceID == "" {
		return nil
	}
	return s.RemoveSong(sourceID, song.ID)
}

// SongsFor resolves a playlist's song ids against the catalog, silently
// dropping ids that no longer resolve. Stale references are a read-time
// concern, not an error.
func (s *Service) SongsFor(playlist models.Playlist) []models.Song {
	songs := make([]models.Song, 0, len(playlist.SongIDs))
	for _, id := range playlist.SongIDs {
		if song, ok := s.library.SongByID(id); ok {
			songs = append(songs, song)
		}
	}
	return songs
}

// placeholderCover derives a stable placeholder image URI from the name, so
// re-creating a playlist with the same name yields the same cover.
func placeholderCover(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	return fmt.Sprintf("https://picsum.photos/seed/%d/500/500", h.Sum32())
}
