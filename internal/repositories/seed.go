package repositories

import (
	"database/sql"
	"fmt"

	"github.com/Zerofake/musicflow1/internal/models"
	"github.com/Zerofake/musicflow1/internal/shared"
	"github.com/charmbracelet/log"
)

// seedSongs is the small built-in catalog written on first run.
var seedSongs = []models.Song{
	{
		ID:       "SoundHelix-Song-1",
		Title:    "Energia Cósmica",
		Artist:   "Orion",
		Album:    "Galáxias",
		Duration: 185,
		AudioSrc: "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-1.mp3",
	},
	{
		ID:       "SoundHelix-Song-2",
		Title:    "Ritmos da Noite",
		Artist:   "Luna",
		Album:    "Céu Estrelado",
		Duration: 210,
		AudioSrc: "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-2.mp3",
	},
}

// Seed populates the starter catalog, two starter playlists, and the
// zero-balance ledger row, but only when every table is still empty.
func Seed(db *sql.DB, notifier *Notifier, logger *log.Logger) error {
	songs := NewSongRepository(db, notifier)
	playlists := NewPlaylistRepository(db, notifier)
	ledger := NewLedgerRepository(db, notifier)

	songCount, err := songs.Count()
	if err != nil {
		return fmt.Errorf("failed to check catalog: %w", err)
	}
	playlistCount, err := playlists.Count()
	if err != nil {
		return fmt.Errorf("failed to check playlists: %w", err)
	}

	var ledgerExists bool
	if err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM user_ledger)").Scan(&ledgerExists); err != nil {
		return fmt.Errorf("failed to check ledger: %w", err)
	}

	if songCount > 0 || playlistCount > 0 || ledgerExists {
		return ledger.Ensure()
	}

	logger.Info("empty database, seeding starter catalog")

	for _, song := range seedSongs {
		if err := songs.Add(song); err != nil {
			return fmt.Errorf("failed to seed song %s: %w", song.ID, err)
		}
	}

	starters := []models.Playlist{
		{
			ID:          shared.NewPlaylistID(),
			Name:        "Favoritas",
			Description: "Suas músicas favoritas",
			SongIDs:     []string{seedSongs[0].ID},
		},
		{
			ID:          shared.NewPlaylistID(),
			Name:        "Descobertas",
			Description: "Novidades para explorar",
			SongIDs:     []string{seedSongs[1].ID},
		},
	}
	for _, p := range starters {
		if err := playlists.Create(p); err != nil {
			return fmt.Errorf("failed to seed playlist %s: %w", p.Name, err)
		}
	}

	return ledger.Ensure()
}
