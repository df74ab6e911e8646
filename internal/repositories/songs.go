package repositories

import (
	"database/sql"
	"fmt"

	"github.com/Zerofake/musicflow1/internal/models"
	"github.com/Zerofake/musicflow1/internal/shared"
)

// SongRepository handles CRUD for the song catalog table.
type SongRepository struct {
	db       *sql.DB
	notifier *Notifier
}

// NewSongRepository creates a new SongRepository with the given database connection
func NewSongRepository(db *sql.DB, notifier *Notifier) *SongRepository {
	return &SongRepository{db: db, notifier: notifier}
}

// Add inserts a new song. Fails on a duplicate id.
func (r *SongRepository) Add(song models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO songs (id, title, artist, album, duration, cover_art, audio_src)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query, song.ID, song.Title, song.Artist, song.Album, song.Duration, song.CoverArt, song.AudioSrc)
	if err != nil {
		return fmt.Errorf("failed to insert song: %w", err)
	}

	r.notifier.Publish(TableSongs)
	return nil
}

// Put upserts a song by id.
func (r *SongRepository) Put(song models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO songs (id, title, artist, album, duration, cover_art, audio_src)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			artist = excluded.artist,
			album = excluded.album,
			duration = excluded.duration,
			cover_art = excluded.cover_art,
			audio_src = excluded.audio_src
	`

	_, err := r.db.Exec(query, song.ID, song.Title, song.Artist, song.Album, song.Duration, song.CoverArt, song.AudioSrc)
	if err != nil {
		return fmt.Errorf("failed to upsert song: %w", err)
	}

	r.notifier.Publish(TableSongs)
	return nil
}

// Get retrieves a song by id.
func (r *SongRepository) Get(id string) (*models.Song, error) {
	query := `
		SELECT id, title, artist, album, duration, cover_art, audio_src
		FROM songs
		WHERE id = ?
	`

	var song models.Song
	err := r.db.QueryRow(query, id).Scan(&song.ID, &song.Title, &song.Artist, &song.Album, &song.Duration, &song.CoverArt, &song.AudioSrc)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan song: %w", err)
	}

	return &song, nil
}

// All retrieves every song in the catalog in import order.
func (r *SongRepository) All() ([]models.Song, error) {
	query := `
		SELECT id, title, artist, album, duration, cover_art, audio_src
		FROM songs
		ORDER BY rowid ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	var songs []models.Song
	for rows.Next() {
		var song models.Song
		if err := rows.Scan(&song.ID, &song.Title, &song.Artist, &song.Album, &song.Duration, &song.CoverArt, &song.AudioSrc); err != nil {
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return songs, nil
}

// IDs returns the set of song ids currently in the catalog.
func (r *SongRepository) IDs() (map[string]struct{}, error) {
	rows, err := r.db.Query("SELECT id FROM songs")
	if err != nil {
		return nil, fmt.Errorf("failed to query song ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan song id: %w", err)
		}
		ids[id] = struct{}{}
	}

	return ids, rows.Err()
}

// Count returns the number of songs in the catalog.
func (r *SongRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM songs").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count songs: %w", err)
	}
	return count, nil
}

// Delete removes a song from the catalog by id.
func (r *SongRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM songs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}

	r.notifier.Publish(TableSongs)
	return nil
}
