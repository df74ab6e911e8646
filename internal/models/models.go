package models

import (
	"fmt"
	"slices"
	"time"
)

// LedgerID is the fixed key of the singleton user ledger record.
const LedgerID = "main"

// Song represents an imported track in the catalog.
//
// Songs are immutable after import; they are only ever created and deleted.
type Song struct {
	ID       string `json:"id"` // Stable id derived from filename + modification time
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album,omitempty"`
	Duration int    `json:"duration"`           // Duration in seconds
	CoverArt string `json:"coverArt,omitempty"` // URI of cover image, may be empty
	AudioSrc string `json:"audioSrc"`           // URI of the audio source
}

// Validate checks if the song's data is valid and returns an error if not
func (s Song) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("song id is required")
	}
	if s.Title == "" {
		return fmt.Errorf("song title is required")
	}
	if s.AudioSrc == "" {
		return fmt.Errorf("song audio source is required")
	}
	if s.Duration < 0 {
		return fmt.Errorf("song duration must not be negative")
	}
	return nil
}

// Playlist represents a user-created, ordered collection of song ids.
//
// SongIDs order is meaningful and user-controlled; duplicates are forbidden.
type Playlist struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	CoverArt    string   `json:"coverArt,omitempty"`
	SongIDs     []string `json:"songIds"`
}

// Validate checks if the playlist's data is valid and returns an error if not
func (p Playlist) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("playlist id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("playlist name is required")
	}
	seen := make(map[string]struct{}, len(p.SongIDs))
	for _, id := range p.SongIDs {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("duplicate song id %q in playlist", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Contains reports whether the playlist references the given song id.
func (p Playlist) Contains(songID string) bool {
	return slices.Contains(p.SongIDs, songID)
}

// UserLedger is the singleton monetization record: the coin balance and the
// end of the purchased ad-free window.
type UserLedger struct {
	ID          string `json:"id"`
	Coins       int    `json:"coins"`
	AdFreeUntil *int64 `json:"adFreeUntil,omitempty"` // Epoch milliseconds; nil when never purchased
}

// Validate checks if the ledger's data is valid and returns an error if not
func (l UserLedger) Validate() error {
	if l.ID != LedgerID {
		return fmt.Errorf("ledger id must be %q", LedgerID)
	}
	if l.Coins < 0 {
		return fmt.Errorf("ledger coins must not be negative")
	}
	return nil
}

// AdFreeAt reports whether the ad-free window covers the given instant.
//
// Derived, never stored: crossing the threshold requires no ledger write.
func (l UserLedger) AdFreeAt(now time.Time) bool {
	return l.AdFreeUntil != nil && now.UnixMilli() < *l.AdFreeUntil
}
