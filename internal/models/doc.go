// Package models defines the data model for the media library: the song
// catalog, user playlists, and the singleton user ledger.
//
// Playlists reference songs by id rather than embedding song records, so song
// metadata has exactly one authoritative copy in the catalog.
package models
