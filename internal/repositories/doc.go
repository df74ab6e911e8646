// Package repositories provides the persistence layer for the media library.
//
// Three SQLite tables back the system: songs (keyed by song id), playlists
// (keyed by playlist id), and user_ledger (a singleton row). Read-modify-write
// sequences that must not interleave run inside a single SQL transaction via
// WithTx. After every committed write a table-level event is published on the
// shared Notifier, which is the cache-invalidation signal for the in-memory
// service layer and the UI.
package repositories
