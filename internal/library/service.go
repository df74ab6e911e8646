// Package library implements the media library service: the song catalog with
// deduplicated bulk add, cascading delete, and an in-memory cache kept in sync
// with the persistence layer.
package library

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Zerofake/musicflow1/internal/models"
	"github.com/Zerofake/musicflow1/internal/repositories"
	"github.com/Zerofake/musicflow1/internal/shared"
	"github.com/charmbracelet/log"
)

// Service owns the song catalog.
type Service struct {
	songs     *repositories.SongRepository
	playlists *repositories.PlaylistRepository
	logger    *log.Logger

	mu    sync.RWMutex
	cache []models.Song
	byID  map[string]models.Song

	hookMu   sync.Mutex
	onDelete []func(songID string)

	cancelWatch func()
}

// NewService creates the library service and loads the catalog cache.
func NewService(songs *repositories.SongRepository, playlists *repositories.PlaylistRepository, notifier *repositories.Notifier, logger *log.Logger) (*Service, error) {
	s := &Service{
		songs:     songs,
		playlists: playlists,
		logger:    shared.WithLogger(logger, "service", "library"),
		byID:      make(map[string]models.Song),
	}

	if err := s.refresh(); err != nil {
		return nil, err
	}

	events, cancel := notifier.Subscribe()
	s.cancelWatch = cancel
	go s.watch(events)

	return s, nil
}

// watch refreshes the cache whenever another writer commits to the songs table.
func (s *Service) watch(events <-chan repositories.Event) {
	for event := range events {
		if event.Table != repositories.TableSongs {
			continue
		}
		if err := s.refresh(); err != nil {
			s.logger.Error("failed to refresh catalog cache", "error", err)
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
	songs, err := s.songs.All()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	byID := make(map[string]models.Song, len(songs))
	for _, song := range songs {
		byID[song.ID] = song
	}

	s.mu.Lock()
	s.cache = songs
	s.byID = byID
	s.mu.Unlock()
	return nil
}

// Songs returns a snapshot of the catalog in import order.
func (s *Service) Songs() []models.Song {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Song, len(s.cache))
	copy(out, s.cache)
	return out
}

// SongByID looks up a song in the in-memory cache. Absence is not an error.
func (s *Service) SongByID(id string) (models.Song, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	song, ok := s.byID[id]
	return song, ok
}

// AddSongs persists the songs whose ids are not yet in the catalog.
//
// Safe to call repeatedly with overlapping batches: already-present ids are
// skipped, not errors. Persistence failures on individual songs do not roll
// back songs already written; the combined failure is reported as a partial
// import wrapping ErrPartialImport. Returns the number actually added.
func (s *Service) AddSongs(newSongs []models.Song) (int, error) {
	if len(newSongs) == 0 {
		return 0, nil
	}

	existing, err := s.songs.IDs()
	if err != nil {
		return 0, fmt.Errorf("failed to read catalog ids: %w", err)
	}

	added := 0
	var failures []string
	seen := make(map[string]struct{}, len(newSongs))

	for _, song := range newSongs {
		if _, ok := existing[song.ID]; ok {
			continue
		}
		if _, ok := seen[song.ID]; ok {
			continue
		}
		seen[song.ID] = struct{}{}

		if err := s.songs.Add(song); err != nil {
			s.logger.Warn("failed to persist song", "id", song.ID, "error", err)
			failures = append(failures, fmt.Sprintf("%s: %v", song.ID, err))
			continue
		}
		added++
	}

	if err := s.refresh(); err != nil {
		return added, err
	}

	if len(failures) > 0 {
		return added, fmt.Errorf("%w: %s", shared.ErrPartialImport, strings.Join(failures, "; "))
	}
	return added, nil
}

// DeleteSong removes a song from the catalog and from every playlist that
// references it, then fires the registered delete hooks so the playback
// transport can drop the song from its queue.
func (s *Service) DeleteSong(songID string) error {
	if err := s.songs.Delete(songID); err != nil {
		return err
	}

	if _, err := s.playlists.RemoveSongFromAll(songID); err != nil {
		return fmt.Errorf("failed to cascade delete: %w", err)
	}

	if err := s.refresh(); err != nil {
		return err
	}

	s.hookMu.Lock()
	hooks := make([]func(string), len(s.onDelete))
	copy(hooks, s.onDelete)
	s.hookMu.Unlock()

	for _, hook := range hooks {
		hook(songID)
	}
	return nil
}

// OnDelete registers a hook invoked after a song has been deleted.
func (s *Service) OnDelete(fn func(songID string)) {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	s.onDelete = append(s.onDelete, fn)
}
