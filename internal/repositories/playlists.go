package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/Zerofake/musicflow1/internal/models"
	"github.com/Zerofake/musicflow1/internal/shared"
)

// PlaylistRepository handles CRUD and membership operations for playlists.
//
// Song membership is stored as a JSON-encoded ordered array of song ids in a
// single column; order is part of the record, not derived from a join table.
type PlaylistRepository struct {
	db       *sql.DB
	notifier *Notifier
}

// PlaylistPatch is a partial update of playlist fields; nil fields are left
// unchanged.
type PlaylistPatch struct {
	Name        *string
	Description *string
	CoverArt    *string
	SongIDs     *[]string
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB, notifier *Notifier) *PlaylistRepository {
	return &PlaylistRepository{db: db, notifier: notifier}
}

// Create inserts a new playlist. The caller is responsible for id generation.
func (r *PlaylistRepository) Create(playlist models.Playlist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	songIDs, err := encodeSongIDs(playlist.SongIDs)
	if err != nil {
		return err
	}

	now := time.Now()
	query := `
		INSERT INTO playlists (id, name, description, cover_art, song_ids, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	if _, err := r.db.Exec(query, playlist.ID, playlist.Name, playlist.Description, playlist.CoverArt, songIDs, now, now); err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}

	r.notifier.Publish(TablePlaylists)
	return nil
}

// Get retrieves a playlist by id.
func (r *PlaylistRepository) Get(id string) (*models.Playlist, error) {
	query := `
		SELECT id, name, description, cover_art, song_ids
		FROM playlists
		WHERE id = ?
	`

	playlist, err := scanPlaylist(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return playlist, nil
}

// All retrieves every playlist in creation order.
func (r *PlaylistRepository) All() ([]models.Playlist, error) {
	query := `
		SELECT id, name, description, cover_art, song_ids
		FROM playlists
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []models.Playlist
	for rows.Next() {
		var p models.Playlist
		var songIDs string
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CoverArt, &songIDs); err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		if p.SongIDs, err = decodeSongIDs(songIDs); err != nil {
			return nil, err
		}
		playlists = append(playlists, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

// Count returns the number of playlists. Quota checks read this at call time.
func (r *PlaylistRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM playlists").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count playlists: %w", err)
	}
	return count, nil
}

// Patch merges the non-nil fields of patch into the stored playlist inside a
// transaction, so interleaved partial updates cannot lose writes.
func (r *PlaylistRepository) Patch(id string, patch PlaylistPatch) error {
	err := WithTx(r.db, func(tx *sql.Tx) error {
		playlist, err := getPlaylistTx(tx, id)
		if err != nil {
			return err
		}

		if patch.Name != nil {
			playlist.Name = *patch.Name
		}
		if patch.Description != nil {
			playlist.Description = *patch.Description
		}
		if patch.CoverArt != nil {
			playlist.CoverArt = *patch.CoverArt
		}
		if patch.SongIDs != nil {
			playlist.SongIDs = *patch.SongIDs
		}

		if err := playlist.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		return putPlaylistTx(tx, *playlist)
	})
	if err != nil {
		return err
	}

	r.notifier.Publish(TablePlaylists)
	return nil
}

// AppendSongs appends the song ids not already present in the playlist,
// preserving append order. Returns the number of ids actually added.
//
// Runs as a transactional read-modify-write: two interleaved appends to the
// same playlist cannot drop each other's additions.
func (r *PlaylistRepository) AppendSongs(id string, songIDs []string) (int, error) {
	added := 0
	err := WithTx(r.db, func(tx *sql.Tx) error {
		playlist, err := getPlaylistTx(tx, id)
		if err != nil {
			return err
		}

		present := make(map[string]struct{}, len(playlist.SongIDs))
		for _, sid := range playlist.SongIDs {
			present[sid] = struct{}{}
		}

		for _, sid := range songIDs {
			if _, ok := present[sid]; ok {
				continue
			}
			playlist.SongIDs = append(playlist.SongIDs, sid)
			present[sid] = struct{}{}
			added++
		}

		if added == 0 {
			return nil
		}
		return putPlaylistTx(tx, *playlist)
	})
	if err != nil {
		return 0, err
	}

	if added > 0 {
		r.notifier.Publish(TablePlaylists)
	}
	return added, nil
}

// RemoveSong filters a song id out of the playlist. No-op if absent.
func (r *PlaylistRepository) RemoveSong(id, songID string) error {
	changed := false
	err := WithTx(r.db, func(tx *sql.Tx) error {
		playlist, err := getPlaylistTx(tx, id)
		if err != nil {
			return err
		}

		filtered := slices.DeleteFunc(slices.Clone(playlist.SongIDs), func(sid string) bool {
			return sid == songID
		})
		if len(filtered) == len(playlist.SongIDs) {
			return nil
		}

		playlist.SongIDs = filtered
		changed = true
		return putPlaylistTx(tx, *playlist)
	})
	if err != nil {
		return err
	}

	if changed {
		r.notifier.Publish(TablePlaylists)
	}
	return nil
}

// RemoveSongFromAll filters a song id out of every playlist referencing it,
// in one transaction. Returns the number of playlists modified.
func (r *PlaylistRepository) RemoveSongFromAll(songID string) (int, error) {
	modified := 0
	err := WithTx(r.db, func(tx *sql.Tx) error {
		rows, err := tx.Query("SELECT id, song_ids FROM playlists")
		if err != nil {
			return fmt.Errorf("failed to query playlists: %w", err)
		}

		type pending struct {
			id      string
			songIDs []string
		}
		var updates []pending

		for rows.Next() {
			var id, raw string
			if err := rows.Scan(&id, &raw); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan playlist: %w", err)
			}
			songIDs, err := decodeSongIDs(raw)
			if err != nil {
				rows.Close()
				return err
			}
			before := len(songIDs)
			filtered := slices.DeleteFunc(songIDs, func(sid string) bool {
				return sid == songID
			})
			if len(filtered) < before {
				updates = append(updates, pending{id: id, songIDs: filtered})
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("row iteration error: %w", err)
		}
		rows.Close()

		for _, u := range updates {
			raw, err := encodeSongIDs(u.songIDs)
			if err != nil {
				return err
			}
			if _, err := tx.Exec("UPDATE playlists SET song_ids = ?, updated_at = ? WHERE id = ?", raw, time.Now(), u.id); err != nil {
				return fmt.Errorf("failed to update playlist %s: %w", u.id, err)
			}
			modified++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if modified > 0 {
		r.notifier.Publish(TablePlaylists)
	}
	return modified, nil
}

// Delete removes a playlist by id. Songs stay in the catalog.
func (r *PlaylistRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM playlists WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}

	r.notifier.Publish(TablePlaylists)
	return nil
}

// getPlaylistTx reads a playlist inside an open transaction.
func getPlaylistTx(tx *sql.Tx, id string) (*models.Playlist, error) {
	query := `
		SELECT id, name, description, cover_art, song_ids
		FROM playlists
		WHERE id = ?
	`

	playlist, err := scanPlaylist(tx.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	return playlist, err
}

// putPlaylistTx writes all mutable fields inside an open transaction.
func putPlaylistTx(tx *sql.Tx, playlist models.Playlist) error {
	songIDs, err := encodeSongIDs(playlist.SongIDs)
	if err != nil {
		return err
	}

	query := `
		UPDATE playlists
		SET name = ?, description = ?, cover_art = ?, song_ids = ?, updated_at = ?
		WHERE id = ?
	`

	if _, err := tx.Exec(query, playlist.Name, playlist.Description, playlist.CoverArt, songIDs, time.Now(), playlist.ID); err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlaylist(row rowScanner) (*models.Playlist, error) {
	var p models.Playlist
	var songIDs string

	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CoverArt, &songIDs)
	if err != nil {
		return nil, err
	}

	if p.SongIDs, err = decodeSongIDs(songIDs); err != nil {
		return nil, err
	}
	return &p, nil
}

func encodeSongIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("failed to encode song ids: %w", err)
	}
	return string(raw), nil
}

func decodeSongIDs(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("failed to decode song ids: %w", err)
	}
	return ids, nil
}
